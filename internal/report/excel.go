// Package report renders branch reservation settings as an Excel workbook
// for offline review by staff.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"tablero/internal/model"
	"tablero/internal/schedule"
)

const (
	branchesSheet = "Branches"
	scheduleSheet = "Schedules"
)

// WriteWorkbook writes two sheets: a branch summary and a per-day schedule
// breakdown, Saturday first.
func WriteWorkbook(branches []*model.Branch, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", branchesSheet)
	if _, err := f.NewSheet(scheduleSheet); err != nil {
		return fmt.Errorf("create schedule sheet: %w", err)
	}

	if err := writeHeader(f, branchesSheet, []string{"Branch", "Reference", "Accepts Reservations", "Duration (min)"}); err != nil {
		return err
	}
	if err := writeHeader(f, scheduleSheet, []string{"Branch", "Day", "Slots"}); err != nil {
		return err
	}

	branchRow, scheduleRow := 2, 2
	for _, b := range branches {
		if b.Deleted() {
			continue
		}
		row := []any{b.Name, b.Reference, b.AcceptsReservations, b.ReservationDuration}
		if err := writeRow(f, branchesSheet, branchRow, row); err != nil {
			return err
		}
		branchRow++

		for _, day := range schedule.Days {
			if err := writeRow(f, scheduleSheet, scheduleRow, []any{b.Name, string(day), formatSlots(b.ReservationTimes[day])}); err != nil {
				return err
			}
			scheduleRow++
		}
	}

	return f.Write(w)
}

func formatSlots(slots []schedule.TimeSlot) string {
	if len(slots) == 0 {
		return "closed"
	}
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = s.From + "-" + s.To
	}
	return strings.Join(parts, ", ")
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	if err := writeCells(f, sheet, 1, toAny(columns)); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil
	}
	start, _ := excelize.CoordinatesToCellName(1, 1)
	end, _ := excelize.CoordinatesToCellName(len(columns), 1)
	return f.SetCellStyle(sheet, start, end, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	return writeCells(f, sheet, row, values)
}

func writeCells(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
