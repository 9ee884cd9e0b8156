// Package calendar provides a day-precision civil date and the month
// arithmetic used by growth estimation.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the textual form of a Date.
const Layout = "2006-01-02"

// averageDaysPerMonth is the mean Gregorian month length (365.25 / 12).
const averageDaysPerMonth = 30.4375

// ErrInvalidDate is returned when a date string cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date without a time of day or location.
// The zero value is "no date".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns the date for y-m-d, normalizing out-of-range values the way
// time.Date does (e.g. February 30 becomes March 1 or 2).
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the date part of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in the local time zone.
func Today() Date {
	return FromTime(time.Now())
}

// Parse reads a date in YYYY-MM-DD form.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return FromTime(t), nil
}

// MustParse is Parse that panics on error. For tests and fixed tables.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats d as YYYY-MM-DD. The zero Date formats as "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(int(d.Month) - int(o.Month))
	default:
		return sign(d.Day - o.Day)
	}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// AddMonths returns d shifted by n calendar months (normalized like time.AddDate).
func (d Date) AddMonths(n int) Date {
	return New(d.Year, d.Month+time.Month(n), d.Day)
}

// monthIndex is year*12+month, the basis of whole-month arithmetic.
func (d Date) monthIndex() int {
	return d.Year*12 + int(d.Month) - 1
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the
// zero Date.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WholeMonthsBetween returns the signed number of calendar months from
// from to to, counting only year and month (days are ignored).
func WholeMonthsBetween(from, to Date) int {
	return to.monthIndex() - from.monthIndex()
}

// MonthsBetween returns the signed elapsed time from from to to in
// fractional months: whole calendar months plus the day-of-month difference
// expressed in average-length months. First-of-month to first-of-month spans
// are therefore exact.
func MonthsBetween(from, to Date) float64 {
	return float64(WholeMonthsBetween(from, to)) + float64(to.Day-from.Day)/averageDaysPerMonth
}

// FloorDiv is integer division rounding toward negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
