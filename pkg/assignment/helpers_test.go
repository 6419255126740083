package assignment

import (
	"strconv"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
)

func ptr[T any](v T) *T { return &v }

func dailyRoom(number, wing string) models.Room {
	r := models.Room{ID: "r" + number, RoomNumber: number, Status: "dirty"}
	if wing != "" {
		r.Wing = ptr(wing)
	}
	return r
}

func checkoutRoom(number, wing string) models.Room {
	r := dailyRoom(number, wing)
	r.IsCheckoutRoom = true
	return r
}

func staffList(ids ...string) []models.Staff {
	out := make([]models.Staff, len(ids))
	for i, id := range ids {
		out[i] = models.Staff{ID: id, FullName: "Staff " + id}
	}
	return out
}

func roomIDs(previews []models.AssignmentPreview) map[string]int {
	seen := make(map[string]int)
	for _, p := range previews {
		for _, r := range p.Rooms {
			seen[r.ID]++
		}
	}
	return seen
}

func totalRoomWeight(rooms []models.Room) float64 {
	sum := 0.0
	for _, r := range rooms {
		sum += CalculateRoomWeight(r)
	}
	return sum
}

func previewWeight(previews []models.AssignmentPreview) float64 {
	sum := 0.0
	for _, p := range previews {
		sum += p.TotalWeight
	}
	return sum
}

// mixedRooms builds a hotel floor set with several wings, sizes and task types
func mixedRooms() []models.Room {
	var rooms []models.Room
	wings := []string{"North", "South", ""}
	for floor := 1; floor <= 4; floor++ {
		for n := 1; n <= 9; n++ {
			number := floor*100 + n
			id := strconv.Itoa(number)
			wing := wings[(floor+n)%len(wings)]
			r := dailyRoom(id, wing)
			switch n % 4 {
			case 0:
				r.IsCheckoutRoom = true
				r.RoomSizeSqm = ptr(32.0)
			case 1:
				r.TowelChangeRequired = true
			case 2:
				r.RoomCapacity = ptr(4)
				r.ElevatorProximity = ptr(float64(n))
			}
			if n == 9 {
				r.FloorNumber = ptr(floor)
			}
			rooms = append(rooms, r)
		}
	}
	rooms = append(rooms, dailyRoom("PH-A", "Penthouse"), checkoutRoom("Suite", ""))
	return rooms
}
