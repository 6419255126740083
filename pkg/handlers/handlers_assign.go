package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/arnavshah/housekeeping-api-go/pkg/assignment"
	"github.com/arnavshah/housekeeping-api-go/pkg/export"
	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/arnavshah/housekeeping-api-go/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// runAssignment builds the heuristics maps and distributes the rooms
func (h *Handler) runAssignment(input models.AutoAssignInput) models.AssignResponse {
	var proximity assignment.WingProximityMap
	if len(input.Layouts) > 0 {
		proximity = assignment.BuildWingProximityMap(input.Layouts)
	}
	var affinity assignment.RoomAffinityMap
	if len(input.PairPatterns) > 0 {
		affinity = assignment.BuildAffinityMap(input.PairPatterns)
	}

	d := assignment.NewDistributor(h.Options, proximity, affinity)
	previews := d.AutoAssign(input.Rooms, input.Staff)

	return models.AssignResponse{
		Previews:        previews,
		UnassignedRooms: assignment.UnassignedRooms(input.Rooms, previews),
		FairnessScore:   assignment.CalculateFairnessScore(previews),
		Summary:         assignment.Summarize(previews),
	}
}

func (h *Handler) respondAssignment(c *gin.Context, source string, input models.AutoAssignInput) {
	resp := h.runAssignment(input)
	h.RecordUsage(c, len(input.Rooms), len(input.Staff))
	if h.Metrics != nil {
		h.Metrics.ObserveAssignment(source, resp)
	}
	h.Log.Debug("rooms assigned",
		zap.String("source", source),
		zap.Int("rooms", len(input.Rooms)),
		zap.Int("staff", len(input.Staff)),
		zap.Float64("fairness", resp.FairnessScore),
	)
	c.JSON(http.StatusOK, resp)
}

// Assign distributes the rooms and staff given in the request body
func (h *Handler) Assign(c *gin.Context) {
	var input models.AutoAssignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondAssignment(c, "body", input)
}

// AssignHotel distributes the dirty rooms of a hotel among its active staff,
// using the saved floorplan and pair history
func (h *Handler) AssignHotel(c *gin.Context) {
	ctx := c.Request.Context()
	hotel := c.Param("hotel")

	rooms, err := h.Store.ListRoomsForAssignment(ctx, hotel)
	if err != nil {
		h.internalError(c, "Could not load rooms", err)
		return
	}
	staff, err := h.Store.ListStaff(ctx, hotel)
	if err != nil {
		h.internalError(c, "Could not load staff", err)
		return
	}
	layouts, err := h.Store.ListLayouts(ctx, hotel)
	if err != nil {
		h.internalError(c, "Could not load layouts", err)
		return
	}
	patterns, err := h.Store.ListPairPatterns(ctx, hotel)
	if err != nil {
		h.internalError(c, "Could not load pair patterns", err)
		return
	}

	h.respondAssignment(c, "store", models.AutoAssignInput{
		Rooms:        rooms,
		Staff:        staff,
		Layouts:      layouts,
		PairPatterns: patterns,
	})
}

// MoveRoom applies a manual move to a set of previews
func (h *Handler) MoveRoom(c *gin.Context) {
	var input models.MoveRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	previews := assignment.MoveRoom(input.Previews, input.RoomID, input.FromStaffID, input.ToStaffID)
	applied := moved(input.Previews, previews, input)
	if h.Metrics != nil {
		h.Metrics.ObserveMove(applied)
	}

	c.JSON(http.StatusOK, gin.H{
		"applied":        applied,
		"previews":       previews,
		"fairness_score": assignment.CalculateFairnessScore(previews),
		"summary":        assignment.Summarize(previews),
	})
}

// moved reports whether the room left the source staff member for the destination
func moved(before, after []models.AssignmentPreview, input models.MoveRoomInput) bool {
	if input.FromStaffID == input.ToStaffID {
		return false
	}
	return holds(before, input.FromStaffID, input.RoomID) && holds(after, input.ToStaffID, input.RoomID)
}

func holds(previews []models.AssignmentPreview, staffID, roomID string) bool {
	for _, p := range previews {
		if p.StaffID != staffID {
			continue
		}
		for _, r := range p.Rooms {
			if r.ID == roomID {
				return true
			}
		}
	}
	return false
}

// Estimate returns the time budget of a room list
func (h *Handler) Estimate(c *gin.Context) {
	var req struct {
		Rooms []models.Room `json:"rooms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	est := assignment.CalculateTimeEstimation(req.Rooms)
	var weight float64
	for _, r := range req.Rooms {
		weight += assignment.CalculateRoomWeight(r)
	}

	c.JSON(http.StatusOK, gin.H{
		"estimation":       est,
		"total_weight":     weight,
		"estimated":        assignment.FormatMinutesToTime(est.EstimatedMinutes),
		"total_with_break": assignment.FormatMinutesToTime(est.TotalWithBreak),
		"available":        assignment.FormatMinutesToTime(assignment.AvailableMinutes),
	})
}

func bindExport(c *gin.Context) (models.ExportInput, bool) {
	var input models.ExportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return input, false
	}
	if input.Date == "" {
		input.Date = time.Now().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, input.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return input, false
	}
	return input, true
}

// ExportCSV renders previews as a CSV attachment
func (h *Handler) ExportCSV(c *gin.Context) {
	input, ok := bindExport(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, input.Previews, input.Date); err != nil {
		h.internalError(c, "Could not render CSV", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="assignments-`+input.Date+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX renders previews as an Excel workbook
func (h *Handler) ExportXLSX(c *gin.Context) {
	input, ok := bindExport(c)
	if !ok {
		return
	}

	data, err := export.XLSX(input.Previews, input.Date)
	if err != nil {
		h.internalError(c, "Could not render workbook", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="assignments-`+input.Date+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// PutLayouts replaces the floorplan of a hotel
func (h *Handler) PutLayouts(c *gin.Context) {
	var req struct {
		Layouts []models.WingLayout `json:"layouts"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.ReplaceLayouts(c.Request.Context(), c.Param("hotel"), req.Layouts); err != nil {
		h.internalError(c, "Could not save layouts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"layouts": req.Layouts, "count": len(req.Layouts)})
}

// GetLayouts returns the floorplan of a hotel
func (h *Handler) GetLayouts(c *gin.Context) {
	layouts, err := h.Store.ListLayouts(c.Request.Context(), c.Param("hotel"))
	if err != nil {
		h.internalError(c, "Could not load layouts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"layouts": layouts})
}

// PutRooms inserts or refreshes the rooms of a hotel
func (h *Handler) PutRooms(c *gin.Context) {
	var req struct {
		Rooms []models.Room `json:"rooms" binding:"dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.UpsertRooms(c.Request.Context(), c.Param("hotel"), req.Rooms); err != nil {
		h.internalError(c, "Could not save rooms", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(req.Rooms)})
}

// PutStaff inserts or refreshes the staff of a hotel
func (h *Handler) PutStaff(c *gin.Context) {
	var req struct {
		Staff []models.Staff `json:"staff" binding:"dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.UpsertStaff(c.Request.Context(), c.Param("hotel"), req.Staff); err != nil {
		h.internalError(c, "Could not save staff", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(req.Staff)})
}

// SaveAssignments commits the final plan of a day
func (h *Handler) SaveAssignments(c *gin.Context) {
	var input models.SaveAssignmentsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := time.Parse(dateLayout, input.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	records, err := h.Store.SaveAssignments(c.Request.Context(), c.Param("hotel"), input.Date, input.Previews, input.Notes)
	if err != nil {
		h.internalError(c, "Could not save assignments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": records, "count": len(records)})
}

// ListAssignments returns the saved plan of a day
func (h *Handler) ListAssignments(c *gin.Context) {
	date := c.Query("date")
	if _, err := time.Parse(dateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter must be YYYY-MM-DD"})
		return
	}

	records, err := h.Store.ListAssignments(c.Request.Context(), c.Param("hotel"), date)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No assignments saved for this date"})
		return
	}
	if err != nil {
		h.internalError(c, "Could not load assignments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": records})
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	h.Log.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
