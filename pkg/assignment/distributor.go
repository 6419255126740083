package assignment

import (
	"math"
	"sort"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
)

// Options tunes the local-search passes that run after initial placement
type Options struct {
	MaxWeightPasses int `yaml:"max_weight_passes"`
	MaxCountPasses  int `yaml:"max_count_passes"`
}

// DefaultOptions are the iteration caps used when none are configured
var DefaultOptions = Options{
	MaxWeightPasses: 20,
	MaxCountPasses:  15,
}

const (
	// wings heavier than this multiple of the per-staff target are split
	splitFactor = 1.4
	// staff within this weight of the lightest are ranked by proximity instead
	proximityTieWeight = 1.5
	// default elevator proximity of a wing with no data
	defaultWingProximity = 2.0
	// proximity of a staff member holding no rooms yet
	noRoomsProximity = 99.0

	weightBalanceTolerance = 0.25
	roomCountTolerance     = 2
	countGuardrail         = 0.3
)

// Distributor assigns dirty rooms to housekeeping staff
type Distributor struct {
	Options   Options
	Proximity WingProximityMap
	Affinity  RoomAffinityMap
}

// NewDistributor creates a new distributor. Both maps are optional.
func NewDistributor(opts Options, proximity WingProximityMap, affinity RoomAffinityMap) *Distributor {
	if opts.MaxWeightPasses < 0 {
		opts.MaxWeightPasses = 0
	}
	if opts.MaxCountPasses < 0 {
		opts.MaxCountPasses = 0
	}
	return &Distributor{
		Options:   opts,
		Proximity: proximity,
		Affinity:  affinity,
	}
}

// AutoAssignRooms runs the distributor with the default options
func AutoAssignRooms(rooms []models.Room, staff []models.Staff, proximity WingProximityMap, affinity RoomAffinityMap) []models.AssignmentPreview {
	return NewDistributor(DefaultOptions, proximity, affinity).AutoAssign(rooms, staff)
}

// staffLoad is the running workload of one staff member during a run
type staffLoad struct {
	staff  models.Staff
	rooms  []models.Room
	weight float64
}

func (l *staffLoad) add(room models.Room, weight float64) {
	l.rooms = append(l.rooms, room)
	l.weight += weight
}

func (l *staffLoad) roomNumbers() []string {
	numbers := make([]string, len(l.rooms))
	for i, r := range l.rooms {
		numbers[i] = r.RoomNumber
	}
	return numbers
}

func (l *staffLoad) wings() map[string]bool {
	set := make(map[string]bool)
	for _, r := range l.rooms {
		set[WingKey(r)] = true
	}
	return set
}

// wingGroup is a physical cluster of rooms placed as one unit when possible
type wingGroup struct {
	key          string
	rooms        []models.Room
	totalWeight  float64
	avgProximity float64
}

// groupRoomsByWing keeps wings in order of first appearance so runs are deterministic
func groupRoomsByWing(rooms []models.Room) []*wingGroup {
	byKey := make(map[string]*wingGroup)
	var groups []*wingGroup
	for _, r := range rooms {
		key := WingKey(r)
		g, ok := byKey[key]
		if !ok {
			g = &wingGroup{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.rooms = append(g.rooms, r)
	}

	for _, g := range groups {
		sum, n := 0.0, 0
		for _, r := range g.rooms {
			g.totalWeight += CalculateRoomWeight(r)
			if r.ElevatorProximity != nil {
				sum += *r.ElevatorProximity
				n++
			}
		}
		g.avgProximity = defaultWingProximity
		if n > 0 {
			g.avgProximity = sum / float64(n)
		}
	}
	return groups
}

func emptyPreviews(staff []models.Staff) []models.AssignmentPreview {
	previews := make([]models.AssignmentPreview, len(staff))
	for i, s := range staff {
		previews[i] = models.AssignmentPreview{
			StaffID:        s.ID,
			StaffName:      s.DisplayName(),
			Rooms:          []models.Room{},
			TimeEstimation: CalculateTimeEstimation(nil),
		}
	}
	return previews
}

// AutoAssign distributes rooms wing by wing, heaviest wing first, and then
// rebalances weight and room counts between staff.
func (d *Distributor) AutoAssign(rooms []models.Room, staff []models.Staff) []models.AssignmentPreview {
	if len(staff) == 0 || len(rooms) == 0 {
		return emptyPreviews(staff)
	}

	loads := make([]*staffLoad, len(staff))
	for i, s := range staff {
		loads[i] = &staffLoad{staff: s}
	}

	groups := groupRoomsByWing(rooms)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].totalWeight > groups[j].totalWeight
	})

	totalWeight := 0.0
	for _, g := range groups {
		totalWeight += g.totalWeight
	}
	avgTarget := totalWeight / float64(len(loads))

	for _, g := range groups {
		lightest := d.pickLightest(loads, g)
		if lightest.weight+g.totalWeight > avgTarget*splitFactor && len(g.rooms) > 3 {
			d.splitWing(loads, g)
			continue
		}
		lightest.rooms = append(lightest.rooms, g.rooms...)
		lightest.weight += g.totalWeight
	}

	d.rebalanceWeights(loads, totalWeight)
	d.rebalanceCounts(loads, totalWeight)

	previews := make([]models.AssignmentPreview, len(loads))
	for i, l := range loads {
		previews[i] = buildPreview(l.staff, l.rooms)
	}
	return previews
}

// pickLightest returns the least loaded staff member. Staff whose weight is
// within proximityTieWeight of the minimum are ranked by how close they
// already work to the wing.
func (d *Distributor) pickLightest(loads []*staffLoad, g *wingGroup) *staffLoad {
	minWeight := math.Inf(1)
	for _, l := range loads {
		if l.weight < minWeight {
			minWeight = l.weight
		}
	}

	var best *staffLoad
	bestScore := 0.0
	for _, l := range loads {
		if l.weight-minWeight >= proximityTieWeight {
			continue
		}
		score := d.proximityScore(l, g)
		if best == nil || score < bestScore || (score == bestScore && l.weight < best.weight) {
			best = l
			bestScore = score
		}
	}
	return best
}

// proximityScore is lower the closer a staff member's current rooms are to a wing
func (d *Distributor) proximityScore(l *staffLoad, g *wingGroup) float64 {
	if len(d.Proximity) > 0 {
		wings := l.wings()
		if len(wings) == 0 {
			return unknownWingDistance
		}
		sum := 0.0
		for w := range wings {
			dist, ok := d.Proximity.Distance(w, g.key)
			if !ok {
				dist = unknownWingDistance
			}
			sum += dist
		}
		return sum / float64(len(wings))
	}

	current := noRoomsProximity
	if len(l.rooms) > 0 {
		sum, n := 0.0, 0
		for _, r := range l.rooms {
			if r.ElevatorProximity != nil {
				sum += *r.ElevatorProximity
				n++
			}
		}
		current = defaultWingProximity
		if n > 0 {
			current = sum / float64(n)
		}
	}
	return math.Abs(current - g.avgProximity)
}

// splitWing places an oversized wing room by room, heaviest first, on the
// staff member with the lowest affinity- and sequence-adjusted load.
func (d *Distributor) splitWing(loads []*staffLoad, g *wingGroup) {
	rooms := make([]models.Room, len(g.rooms))
	copy(rooms, g.rooms)
	weights := make([]float64, len(rooms))
	for i := range rooms {
		weights[i] = CalculateRoomWeight(rooms[i])
	}
	idx := make([]int, len(rooms))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return weights[idx[a]] > weights[idx[b]]
	})

	for _, i := range idx {
		room := rooms[i]
		var best *staffLoad
		bestCost := 0.0
		for _, l := range loads {
			cost := l.weight -
				2*AffinityBonus(room.RoomNumber, l.roomNumbers(), d.Affinity) -
				0.5*SequenceBonus(room.RoomNumber, l.rooms)
			if best == nil || cost < bestCost {
				best = l
				bestCost = cost
			}
		}
		best.add(room, weights[i])
	}
}

func buildPreview(staff models.Staff, rooms []models.Room) models.AssignmentPreview {
	sorted := make([]models.Room, len(rooms))
	copy(sorted, rooms)
	SortRooms(sorted)

	p := models.AssignmentPreview{
		StaffID:   staff.ID,
		StaffName: staff.DisplayName(),
		Rooms:     sorted,
	}
	for _, r := range sorted {
		p.TotalWeight += CalculateRoomWeight(r)
		if r.IsCheckoutRoom {
			p.CheckoutCount++
		} else {
			p.DailyCount++
		}
	}
	p.TimeEstimation = CalculateTimeEstimation(sorted)
	return p
}

// SortRooms orders rooms checkout first, then by floor, then by room number
func SortRooms(rooms []models.Room) {
	sort.SliceStable(rooms, func(i, j int) bool {
		a, b := rooms[i], rooms[j]
		if a.IsCheckoutRoom != b.IsCheckoutRoom {
			return a.IsCheckoutRoom
		}
		if fa, fb := roomFloor(a), roomFloor(b); fa != fb {
			return fa < fb
		}
		na, _ := parseRoomNumber(a.RoomNumber)
		nb, _ := parseRoomNumber(b.RoomNumber)
		if na != nb {
			return na < nb
		}
		return a.RoomNumber < b.RoomNumber
	})
}
