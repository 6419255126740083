package assignment

import "github.com/arnavshah/housekeeping-api-go/pkg/models"

func findPreview(previews []models.AssignmentPreview, staffID string) int {
	for i := range previews {
		if previews[i].StaffID == staffID {
			return i
		}
	}
	return -1
}

func findRoom(rooms []models.Room, roomID string) int {
	for i := range rooms {
		if rooms[i].ID == roomID {
			return i
		}
	}
	return -1
}

// MoveRoom reassigns one room between two staff members and refreshes their
// derived statistics. The input is never modified; when the room or either
// staff member is not found the input is returned as is.
func MoveRoom(previews []models.AssignmentPreview, roomID, fromStaffID, toStaffID string) []models.AssignmentPreview {
	if fromStaffID == toStaffID {
		return previews
	}
	from := findPreview(previews, fromStaffID)
	to := findPreview(previews, toStaffID)
	if from < 0 || to < 0 {
		return previews
	}
	idx := findRoom(previews[from].Rooms, roomID)
	if idx < 0 {
		return previews
	}

	out := make([]models.AssignmentPreview, len(previews))
	copy(out, previews)
	for i := range out {
		out[i].Rooms = append([]models.Room{}, previews[i].Rooms...)
	}

	src, dst := &out[from], &out[to]
	room := src.Rooms[idx]
	w := CalculateRoomWeight(room)

	src.Rooms = withoutIndex(src.Rooms, idx)
	src.TotalWeight -= w
	if len(src.Rooms) == 0 {
		src.TotalWeight = 0
	}
	dst.Rooms = append(dst.Rooms, room)
	dst.TotalWeight += w
	if room.IsCheckoutRoom {
		src.CheckoutCount--
		dst.CheckoutCount++
	} else {
		src.DailyCount--
		dst.DailyCount++
	}
	SortRooms(dst.Rooms)

	src.TimeEstimation = CalculateTimeEstimation(src.Rooms)
	dst.TimeEstimation = CalculateTimeEstimation(dst.Rooms)
	return out
}
