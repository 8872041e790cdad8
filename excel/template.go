package excel

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	attendance "github.com/huoston/attendance-transfer"
)

// Template layout, 1-based: dates in row 4, Code/Minutes subheaders in
// row 5, one student per row from row 6 with the ID in column A. Each date
// header owns a column pair: the code cell under it and the minutes cell to
// its right.
const (
	dateHeaderRow   = 4
	subHeaderRow    = 5
	firstStudentRow = 6
	studentIDCol    = 1
)

type datePair struct {
	codeCol    int
	minutesCol int
}

// Template is an attendance template workbook opened for updating.
type Template struct {
	file     *excelize.File
	path     string
	sheet    string
	dates    []attendance.Date
	dateCols map[attendance.Date]datePair
	students []string
	rows     map[string]int
	styleID  int
}

// OpenTemplate opens an attendance template workbook and parses its layout.
func OpenTemplate(path string) (*Template, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	t, err := newTemplate(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

func newTemplate(f *excelize.File, path string) (*Template, error) {
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) < firstStudentRow {
		return nil, fmt.Errorf("template sheet %q is too short for the expected layout", sheet)
	}

	t := &Template{
		file:     f,
		path:     path,
		sheet:    sheet,
		dateCols: make(map[attendance.Date]datePair),
		rows:     make(map[string]int),
	}

	for col, val := range rows[dateHeaderRow-1] {
		date, err := attendance.ParseDate(val)
		if err != nil {
			continue
		}
		if _, dup := t.dateCols[date]; dup {
			return nil, fmt.Errorf("template has duplicate date column %v", date)
		}
		t.dates = append(t.dates, date)
		t.dateCols[date] = datePair{codeCol: col + 1, minutesCol: col + 2}
	}
	if len(t.dates) == 0 {
		return nil, fmt.Errorf("template sheet %q has no date columns in row %d", sheet, dateHeaderRow)
	}

	for i := firstStudentRow - 1; i < len(rows); i++ {
		id := canonicalID(cellAt(rows[i], studentIDCol-1))
		if id == "" {
			continue
		}
		if _, dup := t.rows[id]; dup {
			slog.Warn("duplicate student row in template", "student", id, "row", i+1)
			continue
		}
		t.students = append(t.students, id)
		t.rows[id] = i + 1
	}
	if len(t.students) == 0 {
		return nil, fmt.Errorf("template sheet %q has no student rows", sheet)
	}

	return t, nil
}

// canonicalID normalizes a student-ID cell. IDs stored as numbers come back
// as floats when read raw ("4186054" may appear as "4186054.0").
func canonicalID(v string) string {
	if v == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return strconv.Itoa(int(f))
	}
	return v
}

// Roster returns the decision universe the template expects: every student
// crossed with every tracked date, in template order.
func (t *Template) Roster() attendance.Roster {
	return attendance.Roster{
		Students: append([]string(nil), t.students...),
		Dates:    append([]attendance.Date(nil), t.dates...),
	}
}

// Apply writes presence records into the mapped cells, highlighting each
// updated cell. Records for unknown students or dates are skipped with a
// debug log; the applied count is returned.
func (t *Template) Apply(records []attendance.PresenceRecord) (int, error) {
	if t.styleID == 0 {
		id, err := t.file.NewStyle(mergeStyles(highlight(), textAlignment("center")))
		if err != nil {
			return 0, err
		}
		t.styleID = id
	}

	applied := 0
	for _, rec := range records {
		row, ok := t.rows[rec.StudentID]
		if !ok {
			slog.Debug("student not in template", "student", rec.StudentID)
			continue
		}
		cols, ok := t.dateCols[rec.Date]
		if !ok {
			slog.Debug("date not in template", "date", rec.Date)
			continue
		}

		codeCell, err := excelize.CoordinatesToCellName(cols.codeCol, row)
		if err != nil {
			return applied, err
		}
		minutesCell, err := excelize.CoordinatesToCellName(cols.minutesCol, row)
		if err != nil {
			return applied, err
		}

		if err := t.file.SetCellValue(t.sheet, codeCell, rec.Code.String()); err != nil {
			return applied, err
		}
		if err := t.file.SetCellInt(t.sheet, minutesCell, rec.Minutes); err != nil {
			return applied, err
		}
		_ = t.file.SetCellStyle(t.sheet, codeCell, minutesCell, t.styleID)

		slog.Debug("updated cell pair",
			"student", rec.StudentID, "date", rec.Date,
			"code", rec.Code, "minutes", rec.Minutes)
		applied++
	}
	return applied, nil
}

// SaveUpdated writes the workbook next to the original with an "_updated"
// suffix, leaving the original file untouched, and returns the new path.
func (t *Template) SaveUpdated() (string, error) {
	ext := filepath.Ext(t.path)
	out := strings.TrimSuffix(t.path, ext) + "_updated" + ext
	if err := t.file.SaveAs(out); err != nil {
		return "", err
	}
	return out, nil
}

func (t *Template) Close() error {
	return t.file.Close()
}
