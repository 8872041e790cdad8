package attendance

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoStudentID means an address carried no digit sequence to use as a
	// student ID. The row is skipped, not fatal.
	ErrNoStudentID = errors.New("no student ID in address")

	// ErrBadTimestamp means a response timestamp could not be parsed. The
	// row is skipped, not fatal.
	ErrBadTimestamp = errors.New("unparseable timestamp")
)

// ExtractStudentID derives the numeric student ID from an email-like
// address: one optional leading letter is stripped, then the maximal leading
// run of digits before the "@" is taken.
//
//	S4186054@rmit.edu.vn -> 4186054
//	s3992383@rmit.edu.vn -> 3992383
//	4019025@rmit.edu.vn  -> 4019025
func ExtractStudentID(addr string) (string, error) {
	local, _, _ := strings.Cut(addr, "@")
	local = strings.TrimSpace(local)
	if len(local) > 0 && isLetter(local[0]) {
		local = local[1:]
	}
	end := 0
	for end < len(local) && local[end] >= '0' && local[end] <= '9' {
		end++
	}
	if end == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoStudentID, addr)
	}
	return local[:end], nil
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// Layouts seen in Microsoft Forms exports opened as text. Cells stored as
// native Excel datetimes arrive as serial numbers and are converted by the
// excel package before reaching ParseTimestamp.
var timestampLayouts = []string{
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 3:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"2006-01-02 15:04:05",
}

// ParseTimestamp normalizes a textual response timestamp into a class date
// and a minute-granularity clock.
func ParseTimestamp(s string) (Date, Clock, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d, c := FromTime(t)
			return d, c, nil
		}
	}
	return Date{}, Clock{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}

// FromTime collapses a time.Time into the day-first date and minute clock
// used throughout.
func FromTime(t time.Time) (Date, Clock) {
	return Date{Day: t.Day(), Month: int(t.Month())},
		Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// ParseDate parses a day-first template date header such as "26/11" or
// "3/12".
func ParseDate(s string) (Date, error) {
	dayStr, monthStr, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Date{}, fmt.Errorf("not a date header: %q", s)
	}
	day, err := strconv.Atoi(strings.TrimSpace(dayStr))
	if err != nil {
		return Date{}, fmt.Errorf("not a date header: %q", s)
	}
	month, err := strconv.Atoi(strings.TrimSpace(monthStr))
	if err != nil {
		return Date{}, fmt.Errorf("not a date header: %q", s)
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return Date{}, fmt.Errorf("date header out of range: %q", s)
	}
	return Date{Day: day, Month: month}, nil
}

// ParseClock parses a 24-hour HH:MM value such as the class start time flag.
func ParseClock(s string) (Clock, error) {
	hourStr, minStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Clock{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	min, err := strconv.Atoi(minStr)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return Clock{}, fmt.Errorf("time %q out of range", s)
	}
	return Clock{Hour: hour, Minute: min}, nil
}
