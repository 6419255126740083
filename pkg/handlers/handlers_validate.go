package handlers

import (
	"net/http"

	"github.com/arnavshah/housekeeping-api-go/pkg/assignment"
	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/gin-gonic/gin"
)

// ValidationStats describes an assignment input that passed validation
type ValidationStats struct {
	RoomCount        int      `json:"room_count"`
	StaffCount       int      `json:"staff_count"`
	CheckoutCount    int      `json:"checkout_count"`
	TotalWeight      float64  `json:"total_weight"`
	EstimatedMinutes int      `json:"estimated_minutes"`
	MinStaffNeeded   int      `json:"min_staff_needed"`
	Warnings         []string `json:"warnings,omitempty"`
}

// validateAssignInput returns the first blocking problem, or stats when there is none
func validateAssignInput(input models.AutoAssignInput) (string, ValidationStats) {
	if len(input.Staff) == 0 {
		return "At least one staff member is required", ValidationStats{}
	}
	if len(input.Rooms) == 0 {
		return "At least one room is required", ValidationStats{}
	}

	// Check for duplicate IDs
	staffIDs := make(map[string]bool)
	for _, s := range input.Staff {
		if staffIDs[s.ID] {
			return "Duplicate staff ID: " + s.ID, ValidationStats{}
		}
		staffIDs[s.ID] = true
	}

	stats := ValidationStats{RoomCount: len(input.Rooms), StaffCount: len(input.Staff)}
	roomIDs := make(map[string]bool)
	numbers := make(map[string]bool)
	for _, r := range input.Rooms {
		if roomIDs[r.ID] {
			return "Duplicate room ID: " + r.ID, ValidationStats{}
		}
		roomIDs[r.ID] = true
		if numbers[r.RoomNumber] {
			stats.Warnings = append(stats.Warnings, "Duplicate room number: "+r.RoomNumber)
		}
		numbers[r.RoomNumber] = true

		if r.IsCheckoutRoom {
			stats.CheckoutCount++
		}
		stats.TotalWeight += assignment.CalculateRoomWeight(r)
	}

	stats.EstimatedMinutes = assignment.CalculateTimeEstimation(input.Rooms).EstimatedMinutes
	stats.MinStaffNeeded = (stats.EstimatedMinutes + assignment.AvailableMinutes - 1) / assignment.AvailableMinutes
	if stats.MinStaffNeeded > stats.StaffCount {
		stats.Warnings = append(stats.Warnings, "Not enough staff to finish within one shift each")
	}
	return "", stats
}

// ValidateInput handles the JSON-based validation request
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.AutoAssignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if problem, stats := validateAssignInput(input); problem != "" {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": problem})
	} else {
		c.JSON(http.StatusOK, gin.H{"valid": true, "stats": stats})
	}
}
