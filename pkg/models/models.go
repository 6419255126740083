package models

// Room represents a hotel room that needs cleaning on a given day
type Room struct {
	ID                  string   `json:"id" binding:"required"`
	RoomNumber          string   `json:"room_number" binding:"required"`
	Hotel               string   `json:"hotel,omitempty"`
	FloorNumber         *int     `json:"floor_number,omitempty"`
	Wing                *string  `json:"wing,omitempty"`
	ElevatorProximity   *float64 `json:"elevator_proximity,omitempty"`
	RoomSizeSqm         *float64 `json:"room_size_sqm,omitempty"`
	RoomCapacity        *int     `json:"room_capacity,omitempty"`
	IsCheckoutRoom      bool     `json:"is_checkout_room"`
	TowelChangeRequired bool     `json:"towel_change_required"`
	LinenChangeRequired bool     `json:"linen_change_required"`
	Status              string   `json:"status,omitempty"`
	RoomCategory        string   `json:"room_category,omitempty"`
}

// Staff represents a housekeeper eligible for room assignments
type Staff struct {
	ID       string  `json:"id" binding:"required"`
	FullName string  `json:"full_name"`
	Nickname *string `json:"nickname,omitempty"`
}

// DisplayName prefers the nickname when one is set
func (s Staff) DisplayName() string {
	if s.Nickname != nil && *s.Nickname != "" {
		return *s.Nickname
	}
	return s.FullName
}

// TimeEstimation is the shift budget derived from a list of rooms
type TimeEstimation struct {
	EstimatedMinutes int  `json:"estimated_minutes"`
	TotalWithBreak   int  `json:"total_with_break"`
	ExceedsShift     bool `json:"exceeds_shift"`
	OverageMinutes   int  `json:"overage_minutes"`
}

// AssignmentPreview is the proposed workload of one staff member
type AssignmentPreview struct {
	StaffID       string  `json:"staff_id"`
	StaffName     string  `json:"staff_name"`
	Rooms         []Room  `json:"rooms"`
	TotalWeight   float64 `json:"total_weight"`
	CheckoutCount int     `json:"checkout_count"`
	DailyCount    int     `json:"daily_count"`
	TimeEstimation
}

// WingLayout is one entry of a saved floorplan
type WingLayout struct {
	FloorNumber int     `json:"floor_number"`
	Wing        string  `json:"wing"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// PairPattern counts how often two rooms were cleaned by the same person
type PairPattern struct {
	RoomNumberA string `json:"room_number_a"`
	RoomNumberB string `json:"room_number_b"`
	PairCount   int    `json:"pair_count"`
}

// AutoAssignInput is the data structure for the assignment endpoint
type AutoAssignInput struct {
	Rooms        []Room        `json:"rooms"`
	Staff        []Staff       `json:"staff"`
	Layouts      []WingLayout  `json:"layouts,omitempty"`
	PairPatterns []PairPattern `json:"pair_patterns,omitempty"`
}

// MoveRoomInput describes a manual drag-and-drop adjustment
type MoveRoomInput struct {
	Previews    []AssignmentPreview `json:"previews"`
	RoomID      string              `json:"room_id" binding:"required"`
	FromStaffID string              `json:"from_staff_id" binding:"required"`
	ToStaffID   string              `json:"to_staff_id" binding:"required"`
}

// SaveAssignmentsInput is the final plan an operator commits for a day
type SaveAssignmentsInput struct {
	Date     string              `json:"date" binding:"required"`
	Notes    string              `json:"notes,omitempty"`
	Previews []AssignmentPreview `json:"previews"`
}

// ExportInput is the body of the export endpoints
type ExportInput struct {
	Date     string              `json:"date"`
	Previews []AssignmentPreview `json:"previews"`
}

// Summary aggregates a set of previews
type Summary struct {
	TotalRooms         int     `json:"total_rooms"`
	TotalWeight        float64 `json:"total_weight"`
	TotalMinutes       int     `json:"total_minutes"`
	StaffOverShift     int     `json:"staff_over_shift"`
	MaxWeightImbalance float64 `json:"max_weight_imbalance"`
}

// AssignResponse is the data structure for the assignment result
type AssignResponse struct {
	Previews        []AssignmentPreview `json:"previews"`
	UnassignedRooms []string            `json:"unassigned_rooms"` // room IDs left over when no staff was given
	FairnessScore   float64             `json:"fairness_score"`
	Summary         Summary             `json:"summary"`
}

// AssignmentRecord is a persisted per-room assignment
type AssignmentRecord struct {
	ID               string `json:"id"`
	Hotel            string `json:"hotel"`
	Date             string `json:"date"`
	StaffID          string `json:"staff_id"`
	RoomID           string `json:"room_id"`
	RoomNumber       string `json:"room_number"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Notes            string `json:"notes,omitempty"`
}
