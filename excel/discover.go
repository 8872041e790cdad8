package excel

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	attendance "github.com/huoston/attendance-transfer"
)

type workbookKind int

const (
	kindUnknown workbookKind = iota
	kindForms
	kindTemplate
)

// Discover scans a directory for the forms export and the attendance
// template. Workbooks are told apart by content: the forms export has a
// "Completion time" column in its header row, the template has date headers
// over a Code/Minutes subheader row. With several candidates of a kind the
// first one wins, with a warning, as the original tool behaved. Output files
// from earlier runs ("_updated") are ignored.
func Discover(dir string) (formsPath, templatePath string, err error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	if err != nil {
		return "", "", err
	}

	for _, path := range matches {
		if strings.HasSuffix(path, "_updated.xlsx") {
			continue
		}
		f, err := excelize.OpenFile(path)
		if err != nil {
			slog.Warn("skipping unreadable workbook", "file", path, "error", err)
			continue
		}
		kind := classify(f)
		f.Close()

		switch kind {
		case kindForms:
			if formsPath != "" {
				slog.Warn("multiple forms exports found, using the first", "using", formsPath, "ignoring", path)
				continue
			}
			formsPath = path
		case kindTemplate:
			if templatePath != "" {
				slog.Warn("multiple templates found, using the first", "using", templatePath, "ignoring", path)
				continue
			}
			templatePath = path
		}
	}

	if formsPath == "" {
		return "", "", fmt.Errorf("no forms export workbook found in %s", dir)
	}
	if templatePath == "" {
		return "", "", fmt.Errorf("no attendance template workbook found in %s", dir)
	}
	return formsPath, templatePath, nil
}

func classify(f *excelize.File) workbookKind {
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil || len(rows) == 0 {
		return kindUnknown
	}

	for _, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), "Completion time") {
			return kindForms
		}
	}

	if len(rows) >= subHeaderRow {
		hasDate := false
		for _, v := range rows[dateHeaderRow-1] {
			if _, err := attendance.ParseDate(v); err == nil {
				hasDate = true
				break
			}
		}
		hasCode := false
		for _, v := range rows[subHeaderRow-1] {
			if strings.EqualFold(strings.TrimSpace(v), "Code") {
				hasCode = true
				break
			}
		}
		if hasDate && hasCode {
			return kindTemplate
		}
	}
	return kindUnknown
}
