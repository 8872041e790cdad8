package attendance // import "github.com/huoston/attendance-transfer"

import "fmt"

// Code is the per-class presence decision as written into the template.
type Code int

const (
	Absent Code = iota
	Present
)

func (c Code) String() string {
	if c == Present {
		return "Y"
	}
	return "N"
}

// Date is a day-first class date without a year, matching the template's
// column headers ("26/11", "3/12" -- no leading zeros).
type Date struct {
	Day   int
	Month int
}

func (d Date) String() string {
	return fmt.Sprintf("%d/%d", d.Day, d.Month)
}

// Clock is a time of day at minute granularity.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns the clock value as minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) Before(other Clock) bool {
	return c.Minutes() < other.Minutes()
}

// Add returns the clock advanced by the given number of minutes. The hour
// is not wrapped at 24, so a window ending past midnight still compares
// after its start.
func (c Clock) Add(mins int) Clock {
	total := c.Minutes() + mins
	return Clock{Hour: total / 60, Minute: total % 60}
}

// MinutesBetween returns the number of minutes from a to b.
func MinutesBetween(a, b Clock) int {
	return b.Minutes() - a.Minutes()
}

// ClassWindow is the interval during which arrival earns credit. The window
// is inclusive at Start (full credit) and closed out at End (no credit).
type ClassWindow struct {
	Start    Clock
	Duration int // minutes
}

func (w ClassWindow) End() Clock {
	return w.Start.Add(w.Duration)
}

// Assess maps an arrival time to a presence code and minutes present.
func (w ClassWindow) Assess(arrival Clock) (Code, int) {
	switch {
	case !w.Start.Before(arrival):
		return Present, w.Duration
	case !arrival.Before(w.End()):
		return Absent, 0
	default:
		return Present, w.Duration - MinutesBetween(w.Start, arrival)
	}
}

// Observation is one normalized form response: who checked in, for which
// class date, and when.
type Observation struct {
	StudentID string
	Date      Date
	Arrival   Clock
}

// PresenceRecord is the computed decision for one roster pair.
type PresenceRecord struct {
	StudentID string
	Date      Date
	Code      Code
	Minutes   int
}

// Roster is the universe of decisions the template expects: every listed
// student crossed with every tracked date.
type Roster struct {
	Students []string
	Dates    []Date
}

// WithDates returns a copy of the roster restricted to the given dates,
// preserving the roster's own date order.
func (r Roster) WithDates(dates []Date) Roster {
	keep := make(map[Date]bool, len(dates))
	for _, d := range dates {
		keep[d] = true
	}
	res := Roster{Students: r.Students}
	for _, d := range r.Dates {
		if keep[d] {
			res.Dates = append(res.Dates, d)
		}
	}
	return res
}

// ObservedDates returns the distinct dates present in the observations, in
// first-seen order.
func ObservedDates(obs []Observation) []Date {
	seen := make(map[Date]bool, len(obs))
	var dates []Date
	for _, o := range obs {
		if !seen[o.Date] {
			seen[o.Date] = true
			dates = append(dates, o.Date)
		}
	}
	return dates
}

// Summary counts the outcomes of one run.
type Summary struct {
	Present int // roster pairs resolved to Present
	Absent  int // roster pairs resolved to Absent
	Skipped int // form rows dropped by the normalizer
	Ignored int // observations whose (student, date) is not in the roster
}
