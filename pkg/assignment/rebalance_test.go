package assignment

import (
	"strconv"
	"testing"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func towelOnlyRoom(number, wing string) models.Room {
	r := dailyRoom(number, wing)
	r.TowelChangeRequired = true
	return r
}

func loadOf(id string, rooms ...models.Room) *staffLoad {
	l := &staffLoad{staff: models.Staff{ID: id}}
	for _, r := range rooms {
		l.add(r, CalculateRoomWeight(r))
	}
	return l
}

func loadsWeight(loads ...*staffLoad) float64 {
	sum := 0.0
	for _, l := range loads {
		sum += l.weight
	}
	return sum
}

func TestRebalanceCounts_StopsWithinTolerance(t *testing.T) {
	d := NewDistributor(DefaultOptions, nil, nil)
	a := loadOf("a", dailyRoom("101", "N"), dailyRoom("102", "N"), dailyRoom("103", "N"), dailyRoom("104", "N"), dailyRoom("105", "N"))
	b := loadOf("b", dailyRoom("106", "N"), dailyRoom("107", "N"), dailyRoom("108", "N"))

	d.rebalanceCounts([]*staffLoad{a, b}, loadsWeight(a, b))
	assert.Len(t, a.rooms, 5, "a gap of two rooms is left alone")
	assert.Len(t, b.rooms, 3)
}

func TestRebalanceCounts_ClosesGapToTolerance(t *testing.T) {
	d := NewDistributor(DefaultOptions, nil, nil)
	var rooms []models.Room
	for _, n := range []string{"101", "102", "103", "104", "105", "106", "107"} {
		rooms = append(rooms, dailyRoom(n, "N"))
	}
	a := loadOf("a", rooms...)
	b := loadOf("b", dailyRoom("108", "N"))

	d.rebalanceCounts([]*staffLoad{a, b}, loadsWeight(a, b))
	assert.Len(t, a.rooms, 5)
	assert.Len(t, b.rooms, 3)
	assert.InDelta(t, 5.0, a.weight, 1e-9)
	assert.InDelta(t, 3.0, b.weight, 1e-9)
}

func TestRebalanceCounts_NeverMovesCheckouts(t *testing.T) {
	d := NewDistributor(DefaultOptions, nil, nil)
	a := loadOf("a",
		checkoutRoom("101", "N"), checkoutRoom("102", "N"), checkoutRoom("103", "N"), checkoutRoom("104", "N"),
		dailyRoom("105", "N"),
	)
	b := loadOf("b")

	d.rebalanceCounts([]*staffLoad{a, b}, loadsWeight(a, b))
	require.Len(t, b.rooms, 1)
	assert.Equal(t, "105", b.rooms[0].RoomNumber)
	require.Len(t, a.rooms, 4, "the gap stays at three because only checkouts are left")
	for _, r := range a.rooms {
		assert.True(t, r.IsCheckoutRoom)
	}
}

func TestRebalanceCounts_WeightGuardrail(t *testing.T) {
	d := NewDistributor(DefaultOptions, nil, nil)
	var towels []models.Room
	for _, n := range []string{"101", "103", "105", "107", "109", "111", "113", "115", "117", "119"} {
		towels = append(towels, towelOnlyRoom(n, "N"))
	}
	light := loadOf("light", towels...)
	heavy := loadOf("heavy", checkoutRoom("201", "N"), checkoutRoom("203", "N"), checkoutRoom("205", "N"), checkoutRoom("207", "N"))
	require.InDelta(t, 4.0, light.weight, 1e-9)
	require.InDelta(t, 6.0, heavy.weight, 1e-9)

	// average 5.0 puts the ceiling at 6.5: one towel room fits, a second would not
	d.rebalanceCounts([]*staffLoad{light, heavy}, loadsWeight(light, heavy))
	assert.Len(t, light.rooms, 9)
	assert.Len(t, heavy.rooms, 5)
	assert.InDelta(t, 6.4, heavy.weight, 1e-9)
}

func TestRebalanceCounts_PrefersTargetWing(t *testing.T) {
	d := NewDistributor(DefaultOptions, nil, nil)
	a := loadOf("a",
		dailyRoom("101", "N"), dailyRoom("102", "N"), dailyRoom("103", "N"), dailyRoom("104", "N"), dailyRoom("105", "N"),
		dailyRoom("601", "S"),
	)
	b := loadOf("b", dailyRoom("901", "S"))

	d.rebalanceCounts([]*staffLoad{a, b}, loadsWeight(a, b))
	require.Len(t, b.rooms, 3)
	assert.Equal(t, []string{"901", "601", "101"}, b.roomNumbers())
	assert.Len(t, a.rooms, 4)
}

func TestRebalanceCounts_SingleStaff(t *testing.T) {
	d := NewDistributor(DefaultOptions, nil, nil)
	a := loadOf("a", dailyRoom("101", ""), dailyRoom("102", ""), dailyRoom("103", ""), dailyRoom("104", ""))
	assert.NotPanics(t, func() { d.rebalanceCounts([]*staffLoad{a}, a.weight) })
	assert.Len(t, a.rooms, 4)
}

func TestRebalanceWeights_RequiresStrictImprovement(t *testing.T) {
	d := NewDistributor(DefaultOptions, nil, nil)
	a := loadOf("a", dailyRoom("101", "N"), dailyRoom("102", "N"), dailyRoom("103", "N"))
	b := loadOf("b", dailyRoom("104", "N"), dailyRoom("105", "N"))

	// gap 1 is above the 0.625 tolerance, but moving a room only flips it
	d.rebalanceWeights([]*staffLoad{a, b}, loadsWeight(a, b))
	assert.Len(t, a.rooms, 3)
	assert.Len(t, b.rooms, 2)
}

func TestRebalanceWeights_NeverMovesCheckouts(t *testing.T) {
	d := NewDistributor(DefaultOptions, nil, nil)
	a := loadOf("a", checkoutRoom("101", "N"), checkoutRoom("102", "N"), checkoutRoom("103", "N"))
	b := loadOf("b", dailyRoom("104", "N"))

	d.rebalanceWeights([]*staffLoad{a, b}, loadsWeight(a, b))
	assert.Len(t, a.rooms, 3)
	assert.Len(t, b.rooms, 1)
}

func TestRebalanceWeights_PrefersTargetWing(t *testing.T) {
	d := NewDistributor(DefaultOptions, nil, nil)
	a := loadOf("a", dailyRoom("201", "N"), dailyRoom("401", "N"), dailyRoom("601", "S"), dailyRoom("801", "N"))
	b := loadOf("b", dailyRoom("901", "S"))

	d.rebalanceWeights([]*staffLoad{a, b}, loadsWeight(a, b))
	assert.Equal(t, []string{"901", "601"}, b.roomNumbers())
	assert.Equal(t, []string{"201", "401", "801"}, a.roomNumbers())
}

func TestRebalanceWeights_KeepsAffinityPairs(t *testing.T) {
	rooms := func() (*staffLoad, *staffLoad) {
		return loadOf("a", dailyRoom("201", "N"), dailyRoom("401", "N"), dailyRoom("601", "N")),
			loadOf("b", dailyRoom("901", "N"))
	}

	a, b := rooms()
	NewDistributor(DefaultOptions, nil, nil).rebalanceWeights([]*staffLoad{a, b}, loadsWeight(a, b))
	assert.Equal(t, []string{"901", "201"}, b.roomNumbers(), "without history the first candidate wins")

	affinity := BuildAffinityMap([]models.PairPattern{{RoomNumberA: "201", RoomNumberB: "401", PairCount: 3}})
	a, b = rooms()
	NewDistributor(DefaultOptions, nil, affinity).rebalanceWeights([]*staffLoad{a, b}, loadsWeight(a, b))
	assert.Equal(t, []string{"901", "601"}, b.roomNumbers())
	assert.Equal(t, []string{"201", "401"}, a.roomNumbers())
}

func TestRebalance_TowelRoomsAgainstHeavyRooms(t *testing.T) {
	d := NewDistributor(DefaultOptions, nil, nil)
	var towels []models.Room
	for i := 0; i < 16; i++ {
		towels = append(towels, towelOnlyRoom(strconv.Itoa(102+2*i), "N"))
	}
	many := loadOf("many", towels...)
	var suites []models.Room
	for _, n := range []string{"301", "302", "303", "304"} {
		r := checkoutRoom(n, "N")
		r.RoomSizeSqm = ptr(40.0)
		suites = append(suites, r)
	}
	few := loadOf("few", suites...)
	require.InDelta(t, 6.4, many.weight, 1e-9)
	require.InDelta(t, 10.0, few.weight, 1e-9)

	total := loadsWeight(many, few)
	loads := []*staffLoad{many, few}
	d.rebalanceWeights(loads, total)
	assert.Len(t, few.rooms, 4, "heavy checkouts stay put")

	// average 8.2 caps the receiver at 10.66, so a single towel room moves
	d.rebalanceCounts(loads, total)
	assert.Len(t, many.rooms, 15)
	assert.Len(t, few.rooms, 5)
	assert.InDelta(t, 10.4, few.weight, 1e-9)
	assert.InDelta(t, total, loadsWeight(many, few), 1e-9)
}
