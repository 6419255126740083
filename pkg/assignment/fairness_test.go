package assignment

import (
	"testing"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestCalculateFairnessScore(t *testing.T) {
	assert.Equal(t, 100.0, CalculateFairnessScore(nil))
	assert.Equal(t, 100.0, CalculateFairnessScore([]models.AssignmentPreview{{}, {}}))
	assert.Equal(t, 100.0, CalculateFairnessScore([]models.AssignmentPreview{{TotalWeight: 3}, {TotalWeight: 3}}))
	assert.Equal(t, 0.0, CalculateFairnessScore([]models.AssignmentPreview{{TotalWeight: 2}, {TotalWeight: 0}}))
	assert.InDelta(t, 75.0, CalculateFairnessScore([]models.AssignmentPreview{{TotalWeight: 5}, {TotalWeight: 3}}), 1e-9)
}

func TestSummarize(t *testing.T) {
	previews := samplePreviews()
	s := Summarize(previews)
	assert.Equal(t, 3, s.TotalRooms)
	assert.InDelta(t, 3.5, s.TotalWeight, 1e-9)
	assert.Equal(t, 75, s.TotalMinutes)
	assert.Zero(t, s.StaffOverShift)
	assert.InDelta(t, 1.5, s.MaxWeightImbalance, 1e-9)

	assert.Equal(t, models.Summary{}, Summarize(nil))
}

func TestUnassignedRooms(t *testing.T) {
	rooms := []models.Room{dailyRoom("101", ""), dailyRoom("102", "")}
	assert.Equal(t, []string{"r101", "r102"}, UnassignedRooms(rooms, nil))

	previews := AutoAssignRooms(rooms, staffList("a"), nil, nil)
	assert.Empty(t, UnassignedRooms(rooms, previews))
}
