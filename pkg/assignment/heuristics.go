package assignment

import (
	"math"
	"strconv"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
)

// RoomAffinityMap holds normalized co-cleaning scores in [0,1] keyed by PairKey
type RoomAffinityMap map[string]float64

// WingProximityMap holds floorplan distances between wings keyed by PairKey.
// A missing entry means the distance is unknown.
type WingProximityMap map[string]float64

// unknownWingDistance is charged for wing pairs with no floorplan entry
const unknownWingDistance = 999.0

// PairKey canonicalizes an unordered pair as "min|max"
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// Distance looks up the distance between two wings. The same wing is always 0.
func (m WingProximityMap) Distance(a, b string) (float64, bool) {
	if a == b {
		return 0, true
	}
	d, ok := m[PairKey(a, b)]
	return d, ok
}

// BuildWingProximityMap records the euclidean distance between every pair of
// distinct layout entries. When a wing appears more than once the shortest
// distance wins.
func BuildWingProximityMap(layouts []models.WingLayout) WingProximityMap {
	m := make(WingProximityMap)
	for i := range layouts {
		a := layoutKey(layouts[i])
		for j := i + 1; j < len(layouts); j++ {
			b := layoutKey(layouts[j])
			if a == b {
				continue
			}
			d := math.Hypot(layouts[i].X-layouts[j].X, layouts[i].Y-layouts[j].Y)
			key := PairKey(a, b)
			if prev, ok := m[key]; !ok || d < prev {
				m[key] = d
			}
		}
	}
	return m
}

func layoutKey(l models.WingLayout) string {
	if l.Wing != "" {
		return l.Wing
	}
	return floorWingKey(l.FloorNumber)
}

// BuildAffinityMap normalizes historical pair counts by the largest count
func BuildAffinityMap(patterns []models.PairPattern) RoomAffinityMap {
	m := make(RoomAffinityMap)
	maxCount := 0
	for _, p := range patterns {
		if p.PairCount > maxCount {
			maxCount = p.PairCount
		}
	}
	if maxCount <= 0 {
		return m
	}
	for _, p := range patterns {
		if p.PairCount <= 0 || p.RoomNumberA == p.RoomNumberB {
			continue
		}
		key := PairKey(p.RoomNumberA, p.RoomNumberB)
		score := float64(p.PairCount) / float64(maxCount)
		if score > m[key] {
			m[key] = score
		}
	}
	return m
}

// SequenceBonus rewards placing a room next to numerically adjacent rooms
func SequenceBonus(roomNumber string, existing []models.Room) float64 {
	n, ok := parseRoomNumber(roomNumber)
	if !ok {
		return 0
	}
	floor := floorOf(n)

	bonus := 0.0
	for _, r := range existing {
		other, ok := parseRoomNumber(r.RoomNumber)
		if !ok {
			continue
		}
		diff := n - other
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 1:
			bonus += 3
		case diff == 2:
			bonus += 2
		case diff == 3 || diff == 4:
			bonus += 1
		}
		if floorOf(other) == floor {
			bonus += 0.5
		}
	}
	return bonus
}

// AffinityBonus sums the learned affinity between a room and a group of rooms
func AffinityBonus(roomNumber string, others []string, affinity RoomAffinityMap) float64 {
	if len(affinity) == 0 {
		return 0
	}
	total := 0.0
	for _, o := range others {
		total += affinity[PairKey(roomNumber, o)]
	}
	return total
}

// AffinityLoss is the affinity given up when a room leaves its current group
func AffinityLoss(roomNumber string, group []string, affinity RoomAffinityMap) float64 {
	if len(affinity) == 0 {
		return 0
	}
	total := 0.0
	for _, o := range group {
		if o == roomNumber {
			continue
		}
		total += affinity[PairKey(roomNumber, o)]
	}
	return total
}

func floorWingKey(floor int) string {
	return "floor-" + strconv.Itoa(floor)
}

// WingKey is the grouping key of a room: its wing, or a per-floor fallback
func WingKey(room models.Room) string {
	if room.Wing != nil && *room.Wing != "" {
		return *room.Wing
	}
	return floorWingKey(roomFloor(room))
}
