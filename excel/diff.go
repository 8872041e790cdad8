package excel

import (
	"path/filepath"
	"strings"

	godiffpatch "github.com/sourcegraph/go-diff-patch"
	"github.com/xuri/excelize/v2"

	attendance "github.com/huoston/attendance-transfer"
)

// SheetTSV projects a sheet to tab-separated text, one line per row, using
// formatted cell values.
func SheetTSV(f *excelize.File, sheet string) (string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// Preview applies the records in memory and returns the resulting sheet
// changes as a unified diff. Nothing is written to disk.
func (t *Template) Preview(records []attendance.PresenceRecord) (string, error) {
	before, err := SheetTSV(t.file, t.sheet)
	if err != nil {
		return "", err
	}
	if _, err := t.Apply(records); err != nil {
		return "", err
	}
	after, err := SheetTSV(t.file, t.sheet)
	if err != nil {
		return "", err
	}
	return godiffpatch.GeneratePatch(filepath.Base(t.path), before, after), nil
}
