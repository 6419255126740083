package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/arnavshah/housekeeping-api-go/pkg/assignment"
	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/xuri/excelize/v2"
)

const (
	AssignmentSheet = "Assignments"
	SummarySheet    = "Summary"
)

// AssignmentHeader is the column order of the per-room sheet and the CSV
var AssignmentHeader = []string{
	"staff_id",
	"staff_name",
	"room_number",
	"floor",
	"wing",
	"checkout",
	"estimated_minutes",
	"date",
}

// SummaryHeader is the column order of the per-staff summary sheet
var SummaryHeader = []string{
	"Staff ID",
	"Staff Name",
	"Rooms",
	"Checkout",
	"Daily",
	"Weight",
	"Minutes",
	"With Break",
	"Over Shift",
	"Overage",
}

func floorCell(r models.Room) int {
	if r.FloorNumber != nil {
		return *r.FloorNumber
	}
	return assignment.GetFloorFromRoomNumber(r.RoomNumber)
}

func wingCell(r models.Room) string {
	if r.Wing != nil {
		return *r.Wing
	}
	return ""
}

func assignmentRows(previews []models.AssignmentPreview, date string) [][]interface{} {
	var rows [][]interface{}
	for _, p := range previews {
		for _, r := range p.Rooms {
			rows = append(rows, []interface{}{
				p.StaffID,
				p.StaffName,
				r.RoomNumber,
				floorCell(r),
				wingCell(r),
				r.IsCheckoutRoom,
				assignment.CalculateRoomTime(r),
				date,
			})
		}
	}
	return rows
}

// WriteCSV writes one row per assigned room
func WriteCSV(w io.Writer, previews []models.AssignmentPreview, date string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(AssignmentHeader); err != nil {
		return err
	}
	for _, row := range assignmentRows(previews, date) {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// XLSX builds a workbook with the per-room sheet and a per-staff summary sheet
func XLSX(previews []models.AssignmentPreview, date string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(AssignmentSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	overStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#C00000"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create overage style: %w", err)
	}

	if err := writeHeader(f, AssignmentSheet, AssignmentHeader, headerStyle); err != nil {
		return nil, err
	}
	for i, row := range assignmentRows(previews, date) {
		if err := setRow(f, AssignmentSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeHeader(f, SummarySheet, SummaryHeader, headerStyle); err != nil {
		return nil, err
	}
	for i, p := range previews {
		row := i + 2
		over := "No"
		if p.ExceedsShift {
			over = "Yes"
		}
		values := []interface{}{
			p.StaffID,
			p.StaffName,
			len(p.Rooms),
			p.CheckoutCount,
			p.DailyCount,
			p.TotalWeight,
			p.EstimatedMinutes,
			assignment.FormatMinutesToTime(p.TotalWithBreak),
			over,
			p.OverageMinutes,
		}
		if err := setRow(f, SummarySheet, row, values); err != nil {
			return nil, err
		}
		if p.ExceedsShift {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(SummaryHeader), row)
			if err := f.SetCellStyle(SummarySheet, first, last, overStyle); err != nil {
				return nil, fmt.Errorf("failed to style row %d: %w", row, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := setRow(f, sheet, 1, values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
