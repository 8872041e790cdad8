package excel

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	attendance "github.com/huoston/attendance-transfer"
)

func writeFormsWorkbook(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []string{"ID", "Start time", "Completion time", "Email", "Name"}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			t.Fatal(err)
		}
	}

	rows := [][]interface{}{
		{"1", "11/26/24 13:00:00", "11/26/24 13:00:12", "S4186054@rmit.edu.vn", "Student A"},
		{"2", "11/26/24 13:10:00", "11/26/24 13:15:00", "s3992383@rmit.edu.vn", "Student B"},
		{"3", time.Date(2024, 11, 26, 14, 25, 0, 0, time.UTC), time.Date(2024, 11, 26, 14, 30, 30, 0, time.UTC), "4019025@rmit.edu.vn", "Student C"},
		{"4", "11/26/24 13:00:00", "11/26/24 13:05:00", "no-id-here", "Student D"},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}

	path := filepath.Join(dir, "forms.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTemplateWorkbook(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	set := func(cell string, v interface{}) {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatal(err)
		}
	}

	set("A1", "COSC1234 Attendance")
	set("A4", "Student ID")
	set("B4", "Name")
	set("C4", "26/11")
	set("E4", "3/12")
	set("C5", "Code")
	set("D5", "Minutes")
	set("E5", "Code")
	set("F5", "Minutes")
	set("A6", 4186054)
	set("B6", "Student A")
	set("A7", 3992383)
	set("B7", "Student B")
	set("A8", 4019025)
	set("B8", "Student C")

	path := filepath.Join(dir, "template.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadForms(t *testing.T) {
	path := writeFormsWorkbook(t, t.TempDir())

	data, err := ReadForms(path)
	if err != nil {
		t.Fatal(err)
	}

	expected := []attendance.Observation{
		{StudentID: "4186054", Date: attendance.Date{Day: 26, Month: 11}, Arrival: attendance.Clock{Hour: 13, Minute: 0}},
		{StudentID: "3992383", Date: attendance.Date{Day: 26, Month: 11}, Arrival: attendance.Clock{Hour: 13, Minute: 15}},
		{StudentID: "4019025", Date: attendance.Date{Day: 26, Month: 11}, Arrival: attendance.Clock{Hour: 14, Minute: 30}},
	}
	if !reflect.DeepEqual(data.Observations, expected) {
		t.Errorf("observations mismatch\ngot      %#v\nexpected %#v", data.Observations, expected)
	}
	if data.Skipped != 1 {
		t.Errorf("expected 1 skipped row, got %d", data.Skipped)
	}
}

func TestReadFormsMissingColumns(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	_ = f.SetCellValue(sheet, "A1", "Name")
	path := filepath.Join(t.TempDir(), "other.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadForms(path); err == nil {
		t.Error("expected error for workbook without forms columns")
	}
}

func TestOpenTemplate(t *testing.T) {
	path := writeTemplateWorkbook(t, t.TempDir())

	tmpl, err := OpenTemplate(path)
	if err != nil {
		t.Fatal(err)
	}
	defer tmpl.Close()

	roster := tmpl.Roster()
	if !reflect.DeepEqual(roster.Students, []string{"4186054", "3992383", "4019025"}) {
		t.Errorf("unexpected students %v", roster.Students)
	}
	expectedDates := []attendance.Date{{Day: 26, Month: 11}, {Day: 3, Month: 12}}
	if !reflect.DeepEqual(roster.Dates, expectedDates) {
		t.Errorf("unexpected dates %v", roster.Dates)
	}
}

func TestTemplateApplyAndSave(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplateWorkbook(t, dir)

	tmpl, err := OpenTemplate(path)
	if err != nil {
		t.Fatal(err)
	}
	defer tmpl.Close()

	records := []attendance.PresenceRecord{
		{StudentID: "4186054", Date: attendance.Date{Day: 26, Month: 11}, Code: attendance.Present, Minutes: 180},
		{StudentID: "3992383", Date: attendance.Date{Day: 26, Month: 11}, Code: attendance.Absent, Minutes: 0},
		{StudentID: "9999999", Date: attendance.Date{Day: 26, Month: 11}, Code: attendance.Absent, Minutes: 0},
	}
	applied, err := tmpl.Apply(records)
	if err != nil {
		t.Fatal(err)
	}
	if applied != 2 {
		t.Errorf("expected 2 applied records, got %d", applied)
	}

	out, err := tmpl.SaveUpdated()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(out, "template_updated.xlsx") {
		t.Errorf("unexpected output path %q", out)
	}

	saved, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer saved.Close()
	sheet := saved.GetSheetName(saved.GetActiveSheetIndex())

	cases := []struct {
		cell string
		want string
	}{
		{"C6", "Y"},
		{"D6", "180"},
		{"C7", "N"},
		{"D7", "0"},
		{"E6", ""}, // untouched date column
		{"B6", "Student A"},
	}
	for _, tc := range cases {
		got, err := saved.GetCellValue(sheet, tc.cell)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("cell %s = %q, expected %q", tc.cell, got, tc.want)
		}
	}
}

func TestPreviewDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplateWorkbook(t, dir)

	tmpl, err := OpenTemplate(path)
	if err != nil {
		t.Fatal(err)
	}
	defer tmpl.Close()

	patch, err := tmpl.Preview([]attendance.PresenceRecord{
		{StudentID: "4186054", Date: attendance.Date{Day: 26, Month: 11}, Code: attendance.Present, Minutes: 165},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(patch, "Y") || !strings.Contains(patch, "165") {
		t.Errorf("patch should show the new code and minutes:\n%s", patch)
	}

	if _, err := os.Stat(strings.TrimSuffix(path, ".xlsx") + "_updated.xlsx"); !os.IsNotExist(err) {
		t.Error("preview must not write the updated workbook")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	formsPath := writeFormsWorkbook(t, dir)
	templatePath := writeTemplateWorkbook(t, dir)

	// Leftover output from an earlier run must be ignored.
	stale, err := os.ReadFile(templatePath)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "template_updated.xlsx"), stale, 0o644); err != nil {
		t.Fatal(err)
	}

	forms, template, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if forms != formsPath {
		t.Errorf("forms = %q, expected %q", forms, formsPath)
	}
	if template != templatePath {
		t.Errorf("template = %q, expected %q", template, templatePath)
	}
}

func TestDiscoverMissing(t *testing.T) {
	dir := t.TempDir()
	writeFormsWorkbook(t, dir)

	if _, _, err := Discover(dir); err == nil {
		t.Error("expected error when the template is missing")
	}
}

func TestCanonicalID(t *testing.T) {
	cases := []struct{ in, out string }{
		{"4186054", "4186054"},
		{"4186054.0", "4186054"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := canonicalID(tc.in); got != tc.out {
			t.Errorf("canonicalID(%q) = %q, expected %q", tc.in, got, tc.out)
		}
	}
}
