package assignment

import (
	"fmt"
	"math"
	"strings"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
)

// Shift budget in minutes
const (
	ShiftMinutes     = 480
	BreakMinutes     = 30
	AvailableMinutes = ShiftMinutes - BreakMinutes
)

const (
	defaultRoomSize     = 20.0
	defaultRoomCapacity = 2
)

func roomSize(room models.Room) float64 {
	if room.RoomSizeSqm == nil {
		return defaultRoomSize
	}
	return *room.RoomSizeSqm
}

func roomCapacity(room models.Room) int {
	if room.RoomCapacity == nil {
		return defaultRoomCapacity
	}
	return *room.RoomCapacity
}

// isTowelOnly reports whether a visit is just a towel swap
func isTowelOnly(room models.Room) bool {
	return room.TowelChangeRequired && !room.IsCheckoutRoom && !room.LinenChangeRequired
}

// CalculateRoomTime estimates the cleaning duration of a room in minutes
func CalculateRoomTime(room models.Room) int {
	if isTowelOnly(room) {
		return 5
	}

	minutes := 15
	if room.IsCheckoutRoom {
		minutes = 45
	}

	size := roomSize(room)
	switch {
	case size >= 40:
		minutes += 15
	case size >= 28:
		minutes += 10
	case size >= 22:
		minutes += 5
	}
	return minutes
}

// CalculateRoomWeight returns the relative cleaning effort used for load balancing
func CalculateRoomWeight(room models.Room) float64 {
	if isTowelOnly(room) {
		return 0.4
	}

	weight := 1.0
	if room.IsCheckoutRoom {
		weight = 1.5
	}

	size := roomSize(room)
	switch {
	case size >= 40:
		weight += 1.0
	case size >= 28:
		weight += 0.6
	case size >= 22:
		weight += 0.3
	}

	capacity := roomCapacity(room)
	switch {
	case capacity >= 4:
		weight += 0.3
	case capacity >= 3:
		weight += 0.15
	}
	return weight
}

// CalculateTimeEstimation sums room durations and checks them against the shift
func CalculateTimeEstimation(rooms []models.Room) models.TimeEstimation {
	estimated := 0
	for _, r := range rooms {
		estimated += CalculateRoomTime(r)
	}
	total := estimated + BreakMinutes
	overage := total - ShiftMinutes
	if overage < 0 {
		overage = 0
	}
	return models.TimeEstimation{
		EstimatedMinutes: estimated,
		TotalWithBreak:   total,
		ExceedsShift:     total > ShiftMinutes,
		OverageMinutes:   overage,
	}
}

// FormatMinutesToTime renders a duration as "7h 30m", "8h" or "45m"
func FormatMinutesToTime(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%s%dh %dm", sign, h, m)
	case h > 0:
		return fmt.Sprintf("%s%dh", sign, h)
	default:
		return fmt.Sprintf("%s%dm", sign, m)
	}
}

// parseRoomNumber reads the leading integer of a room number ("305B" -> 305).
// ok is false when the string does not start with a number.
func parseRoomNumber(roomNumber string) (n int, ok bool) {
	s := strings.TrimLeft(roomNumber, " \t\n\r")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		d := int(s[digits] - '0')
		if n > (math.MaxInt-d)/10 {
			// too long to be a room number
			return 0, false
		}
		n = n*10 + d
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// floorOf follows the hotel convention that room 305 sits on floor 3
func floorOf(n int) int {
	if n < 0 {
		// match floor division for negative numbers
		return -((-n + 99) / 100)
	}
	return n / 100
}

// GetFloorFromRoomNumber derives the floor from a room number, 0 when unparseable
func GetFloorFromRoomNumber(roomNumber string) int {
	n, ok := parseRoomNumber(roomNumber)
	if !ok {
		return 0
	}
	return floorOf(n)
}

// roomFloor prefers the stored floor number over the derived one
func roomFloor(room models.Room) int {
	if room.FloorNumber != nil {
		return *room.FloorNumber
	}
	return GetFloorFromRoomNumber(room.RoomNumber)
}
