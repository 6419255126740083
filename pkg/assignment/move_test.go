package assignment

import (
	"testing"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePreviews() []models.AssignmentPreview {
	staff := staffList("a", "b")
	return []models.AssignmentPreview{
		buildPreview(staff[0], []models.Room{checkoutRoom("101", ""), dailyRoom("102", "")}),
		buildPreview(staff[1], []models.Room{dailyRoom("201", "")}),
	}
}

func clonePreviews(in []models.AssignmentPreview) []models.AssignmentPreview {
	out := make([]models.AssignmentPreview, len(in))
	copy(out, in)
	for i := range out {
		out[i].Rooms = append([]models.Room{}, in[i].Rooms...)
	}
	return out
}

func TestMoveRoom_Daily(t *testing.T) {
	in := samplePreviews()
	before := clonePreviews(in)

	out := MoveRoom(in, "r102", "a", "b")
	require.Len(t, out, 2)

	assert.Equal(t, before, in, "input must not change")

	a, b := out[0], out[1]
	require.Len(t, a.Rooms, 1)
	assert.Equal(t, "101", a.Rooms[0].RoomNumber)
	assert.Equal(t, 1, a.CheckoutCount)
	assert.Zero(t, a.DailyCount)
	assert.InDelta(t, 1.5, a.TotalWeight, 1e-9)
	assert.Equal(t, 45, a.EstimatedMinutes)

	require.Len(t, b.Rooms, 2)
	assert.Equal(t, "102", b.Rooms[0].RoomNumber)
	assert.Equal(t, "201", b.Rooms[1].RoomNumber)
	assert.Equal(t, 2, b.DailyCount)
	assert.InDelta(t, 2.0, b.TotalWeight, 1e-9)
	assert.Equal(t, 30, b.EstimatedMinutes)
	assert.Equal(t, 60, b.TotalWithBreak)
}

func TestMoveRoom_CheckoutGoesFirst(t *testing.T) {
	out := MoveRoom(samplePreviews(), "r101", "a", "b")

	b := out[1]
	require.Len(t, b.Rooms, 2)
	assert.Equal(t, "101", b.Rooms[0].RoomNumber)
	assert.Equal(t, 1, b.CheckoutCount)
	assert.Equal(t, 1, b.DailyCount)
	assert.Zero(t, out[0].CheckoutCount)
	assertSorted(t, b.Rooms)
}

func TestMoveRoom_NoOp(t *testing.T) {
	in := samplePreviews()
	before := clonePreviews(in)

	assert.Equal(t, before, MoveRoom(in, "missing", "a", "b"))
	assert.Equal(t, before, MoveRoom(in, "r201", "a", "b"), "room belongs to the other staff")
	assert.Equal(t, before, MoveRoom(in, "r102", "a", "nobody"))
	assert.Equal(t, before, MoveRoom(in, "r102", "nobody", "b"))
	assert.Equal(t, before, MoveRoom(in, "r102", "a", "a"))
}

func TestMoveRoom_EmptiesSource(t *testing.T) {
	out := MoveRoom(samplePreviews(), "r201", "b", "a")
	b := out[1]
	assert.Empty(t, b.Rooms)
	assert.Zero(t, b.TotalWeight)
	assert.Equal(t, BreakMinutes, b.TotalWithBreak)
	assert.Len(t, out[0].Rooms, 3)
}

func TestMoveRoom_ConservesWeight(t *testing.T) {
	rooms := mixedRooms()
	previews := AutoAssignRooms(rooms, staffList("a", "b", "c"), nil, nil)
	want := totalRoomWeight(rooms)

	for i := 0; i < 10; i++ {
		from := previews[i%3]
		if len(from.Rooms) == 0 {
			continue
		}
		to := previews[(i+1)%3]
		previews = MoveRoom(previews, from.Rooms[0].ID, from.StaffID, to.StaffID)
		assert.InDelta(t, want, previewWeight(previews), 1e-9)
	}

	assert.Len(t, roomIDs(previews), len(rooms))
	for _, p := range previews {
		assertSorted(t, p.Rooms)
		assertConsistent(t, p)
	}
}
