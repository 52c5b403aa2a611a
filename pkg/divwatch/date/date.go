package date

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format is the canonical way a Date is written.
const Format = "2006-01-02"

// layouts accepted by Parse, tried in order. Day-first slashed dates are the
// format of older snapshot files.
var layouts = []string{
	"2006-1-2",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	"2006/01/02",
}

// Date is a civil date: no time of day, no time zone.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date, so New(2024, 1, 32) is 2024-02-01.
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// Of returns the calendar date of t as seen on t's own wall clock.
func Of(t time.Time) Date { return New(t.Date()) }

// FromUnix converts epoch seconds to the civil date on loc's wall clock.
// A nil loc means time.Local.
func FromUnix(sec int64, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return Of(time.Unix(sec, 0).In(loc))
}

// Today returns the current local date.
func Today() Date { return Of(time.Now()) }

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns midnight of d in loc (UTC when loc is nil).
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, loc)
}

func (d Date) Year() int          { return d.y }
func (d Date) Month() time.Month  { return d.m }
func (d Date) Day() int           { return d.d }
func (d Date) IsZero() bool       { return d == Date{} }
func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }
func (d Date) After(x Date) bool  { return d.Compare(x) > 0 }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after x.
func (d Date) Compare(x Date) int {
	switch {
	case d.y != x.y:
		return cmp(d.y, x.y)
	case d.m != x.m:
		return cmp(int(d.m), int(x.m))
	default:
		return cmp(d.d, x.d)
	}
}

func cmp(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return New(d.y, d.m, d.d+n) }

// AddMonths shifts d by n months. The day is clamped to the last day of the
// target month, so 2024-02-29 minus 12 months is 2023-02-28.
func (d Date) AddMonths(n int) Date {
	first := New(d.y, d.m+time.Month(n), 1)
	last := New(first.y, first.m+1, 0).d
	day := d.d
	if day > last {
		day = last
	}
	return Date{first.y, first.m, day}
}

// String formats the date as YYYY-MM-DD. The zero Date is "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(Format)
}

// Parse reads a date in any of the accepted layouts. Timestamps keep the
// calendar date as written, whatever their offset.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Of(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q want format %q", s, Format)
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
)
