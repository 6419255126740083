package assignment

import (
	"math"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
)

// CalculateFairnessScore returns a percentage (0-100) representing how evenly
// weight is distributed. 100% is perfectly fair (Standard Deviation = 0).
func CalculateFairnessScore(previews []models.AssignmentPreview) float64 {
	if len(previews) == 0 {
		return 100.0
	}

	var sum float64
	for _, p := range previews {
		sum += p.TotalWeight
	}

	if sum == 0 {
		return 100.0 // nobody has work, nothing is unfair
	}

	mean := sum / float64(len(previews))

	var varianceSum float64
	for _, p := range previews {
		diff := p.TotalWeight - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(previews)))

	// 100% means SD is 0. 0% means SD is >= mean.
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}

// Summarize totals a set of previews
func Summarize(previews []models.AssignmentPreview) models.Summary {
	var s models.Summary
	if len(previews) == 0 {
		return s
	}
	maxW, minW := math.Inf(-1), math.Inf(1)
	for _, p := range previews {
		s.TotalRooms += len(p.Rooms)
		s.TotalWeight += p.TotalWeight
		s.TotalMinutes += p.EstimatedMinutes
		if p.ExceedsShift {
			s.StaffOverShift++
		}
		maxW = math.Max(maxW, p.TotalWeight)
		minW = math.Min(minW, p.TotalWeight)
	}
	s.MaxWeightImbalance = maxW - minW
	return s
}

// UnassignedRooms lists the ids of rooms that appear in no preview
func UnassignedRooms(rooms []models.Room, previews []models.AssignmentPreview) []string {
	assigned := make(map[string]int)
	for _, p := range previews {
		for _, r := range p.Rooms {
			assigned[r.ID]++
		}
	}
	missing := []string{}
	for _, r := range rooms {
		if assigned[r.ID] > 0 {
			assigned[r.ID]--
			continue
		}
		missing = append(missing, r.ID)
	}
	return missing
}
