// Package dates provides a calendar-date value with no time-of-day component.
//
// Every date comparison in the scheduler, the status classifier and the batch
// sweep goes through this type, normalized to one configured reference zone, so
// "today" means the same thing everywhere in the application.
package dates

import (
	"fmt"
	"time"
)

const layout = "2006-01-02"

// Date is a calendar date. The zero value is the zero date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func New(year int, month time.Month, day int) Date {
	// Normalize through time.Date so out-of-range components roll over the
	// same way they do in the calendar (e.g. day 0 = last day of previous month).
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC), time.UTC)
}

// FromTime extracts the calendar date of t as observed in loc.
func FromTime(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current calendar date in the reference zone.
func Today(loc *time.Location) Date {
	return FromTime(time.Now(), loc)
}

// Parse reads a date in YYYY-MM-DD form.
func Parse(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return FromTime(t, time.UTC), nil
}

// Time returns the date as midnight UTC, the representation used for
// persistence and transport.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return d.Time().Format(layout)
}

func (d Date) Equal(other Date) bool {
	return d == other
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n), time.UTC)
}

func (d Date) AddMonths(n int) Date {
	return FromTime(d.Time().AddDate(0, n, 0), time.UTC)
}

// WithDay returns the date in the same year/month with the given day of month,
// rolling over when the day exceeds the month's length.
func (d Date) WithDay(day int) Date {
	return New(d.Year, d.Month, day)
}

// LastDayOfMonth returns the final calendar day of the date's month.
func (d Date) LastDayOfMonth() Date {
	return New(d.Year, d.Month+1, 0)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date JSON: %s", s)
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
