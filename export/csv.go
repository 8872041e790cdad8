package export

import (
	"encoding/csv"
	"io"
	"strconv"

	attendance "github.com/huoston/attendance-transfer"
)

// WriteCSV writes presence records as CSV with a header row.
func WriteCSV(w io.Writer, records []attendance.PresenceRecord) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"StudentID", "Date", "Code", "Minutes"})
	for _, rec := range records {
		cw.Write([]string{
			rec.StudentID,
			rec.Date.String(),
			rec.Code.String(),
			strconv.Itoa(rec.Minutes),
		})
	}
	cw.Flush()
	return cw.Error()
}
