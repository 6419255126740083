package assignment

import (
	"math"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
)

// extremes returns the first staff with the highest and the first with the lowest value
func extremes(loads []*staffLoad, value func(*staffLoad) float64) (high, low *staffLoad) {
	high, low = loads[0], loads[0]
	for _, l := range loads[1:] {
		if value(l) > value(high) {
			high = l
		}
		if value(l) < value(low) {
			low = l
		}
	}
	return high, low
}

func byWeight(l *staffLoad) float64 { return l.weight }

func byRoomCount(l *staffLoad) float64 { return float64(len(l.rooms)) }

// withoutIndex returns a copy of rooms with position i removed
func withoutIndex(rooms []models.Room, i int) []models.Room {
	out := make([]models.Room, 0, len(rooms)-1)
	out = append(out, rooms[:i]...)
	return append(out, rooms[i+1:]...)
}

// transfer moves rooms[i] of from to the end of to
func transfer(from, to *staffLoad, i int) {
	room := from.rooms[i]
	w := CalculateRoomWeight(room)
	from.rooms = withoutIndex(from.rooms, i)
	from.weight -= w
	to.add(room, w)
}

// rebalanceWeights moves daily rooms from the heaviest to the lightest staff
// member until their gap is within tolerance of the average.
func (d *Distributor) rebalanceWeights(loads []*staffLoad, totalWeight float64) {
	if len(loads) < 2 {
		return
	}
	threshold := weightBalanceTolerance * totalWeight / float64(len(loads))

	for iter := 0; iter < d.Options.MaxWeightPasses; iter++ {
		heaviest, lightest := extremes(loads, byWeight)
		gap := heaviest.weight - lightest.weight
		if gap <= threshold {
			return
		}

		heavyNumbers := heaviest.roomNumbers()
		lightWings := lightest.wings()

		best := -1
		bestScore := math.Inf(1)
		for i, r := range heaviest.rooms {
			if r.IsCheckoutRoom {
				continue
			}
			w := CalculateRoomWeight(r)
			newImbalance := math.Abs((heaviest.weight - w) - (lightest.weight + w))
			if newImbalance >= gap {
				continue
			}

			wingPenalty := 10.0
			if lightWings[WingKey(r)] {
				wingPenalty = 0
			}
			affinityPenalty := AffinityLoss(r.RoomNumber, heavyNumbers, d.Affinity)
			sequencePenalty := SequenceBonus(r.RoomNumber, withoutIndex(heaviest.rooms, i))
			sequenceAtTarget := SequenceBonus(r.RoomNumber, lightest.rooms)

			score := newImbalance + wingPenalty + affinityPenalty*5 + sequencePenalty*0.5 - sequenceAtTarget*0.3
			if score < bestScore {
				best = i
				bestScore = score
			}
		}
		if best < 0 {
			return
		}
		transfer(heaviest, lightest, best)
	}
}

// rebalanceCounts evens out room counts without letting the receiving staff
// member drift too far above the average weight.
func (d *Distributor) rebalanceCounts(loads []*staffLoad, totalWeight float64) {
	if len(loads) < 2 {
		return
	}
	avgWeight := totalWeight / float64(len(loads))
	ceiling := avgWeight * (1 + countGuardrail)

	for iter := 0; iter < d.Options.MaxCountPasses; iter++ {
		most, fewest := extremes(loads, byRoomCount)
		if len(most.rooms)-len(fewest.rooms) <= roomCountTolerance {
			return
		}

		mostNumbers := most.roomNumbers()
		targetWings := fewest.wings()

		best := -1
		bestCost := math.Inf(1)
		for i, r := range most.rooms {
			if r.IsCheckoutRoom {
				continue
			}
			w := CalculateRoomWeight(r)
			if fewest.weight+w > ceiling {
				continue
			}

			wingPenalty := 100.0
			if targetWings[WingKey(r)] {
				wingPenalty = 0
			}
			cost := w + wingPenalty +
				AffinityLoss(r.RoomNumber, mostNumbers, d.Affinity)*50 -
				SequenceBonus(r.RoomNumber, fewest.rooms)*10
			if cost < bestCost {
				best = i
				bestCost = cost
			}
		}
		if best < 0 {
			return
		}
		transfer(most, fewest, best)
	}
}
