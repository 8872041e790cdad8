package excel

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	attendance "github.com/huoston/attendance-transfer"
)

// FormsData holds the normalized observations read from a Microsoft Forms
// export, plus the count of rows the normalizer dropped.
type FormsData struct {
	Observations []attendance.Observation
	Skipped      int
}

// ReadForms reads a Microsoft Forms attendance export. The class date comes
// from the "Start time" column and the arrival time from "Completion time".
func ReadForms(path string) (*FormsData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFormsFile(f)
}

func ReadFormsFile(f *excelize.File) (*FormsData, error) {
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("forms sheet %q is empty", sheet)
	}

	emailCol, startCol, completionCol := -1, -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "email":
			emailCol = i
		case "start time":
			startCol = i
		case "completion time":
			completionCol = i
		}
	}
	if emailCol < 0 || startCol < 0 || completionCol < 0 {
		return nil, fmt.Errorf("forms sheet %q lacks the Email, Start time and Completion time columns", sheet)
	}

	data := &FormsData{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		email := cellAt(row, emailCol)
		start := cellAt(row, startCol)
		completion := cellAt(row, completionCol)
		if email == "" && start == "" && completion == "" {
			continue
		}

		id, err := attendance.ExtractStudentID(email)
		if err != nil {
			slog.Warn("skipping response row", "row", rowNum, "error", err)
			data.Skipped++
			continue
		}
		date, _, err := parseCellTimestamp(start)
		if err != nil {
			slog.Warn("skipping response row", "row", rowNum, "student", id, "error", err)
			data.Skipped++
			continue
		}
		_, arrival, err := parseCellTimestamp(completion)
		if err != nil {
			slog.Warn("skipping response row", "row", rowNum, "student", id, "error", err)
			data.Skipped++
			continue
		}

		data.Observations = append(data.Observations, attendance.Observation{
			StudentID: id,
			Date:      date,
			Arrival:   arrival,
		})
	}
	return data, nil
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// parseCellTimestamp handles both native Excel datetime cells, which arrive
// as serial numbers when read raw, and text timestamps.
func parseCellTimestamp(raw string) (attendance.Date, attendance.Clock, error) {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return attendance.Date{}, attendance.Clock{}, fmt.Errorf("%w: %q", attendance.ErrBadTimestamp, raw)
		}
		date, clk := attendance.FromTime(t)
		return date, clk, nil
	}
	return attendance.ParseTimestamp(raw)
}
