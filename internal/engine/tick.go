package engine

import "time"

// Tick is the ephemeral context of one evaluation pass. Built fresh from
// the clock on every invocation, never persisted.
type Tick struct {
	Now     time.Time
	Year    int
	Month   time.Month
	Day     int
	Weekday time.Weekday
	Hour    int
	Minute  int

	// ISOYear/ISOWeek follow ISO 8601; ISOYear can differ from Year around
	// the new year and must be used together with ISOWeek.
	ISOYear int
	ISOWeek int
}

func NewTick(now time.Time) Tick {
	y, m, d := now.Date()
	iy, iw := now.ISOWeek()
	return Tick{
		Now:     now,
		Year:    y,
		Month:   m,
		Day:     d,
		Weekday: now.Weekday(),
		Hour:    now.Hour(),
		Minute:  now.Minute(),
		ISOYear: iy,
		ISOWeek: iw,
	}
}
