// Package clock supplies the current time in the operator's timezone.
// The engine never calls time.Now directly so tests can pin the tick.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

type zoned struct {
	loc *time.Location
}

// In returns a Clock that reports wall time in loc.
func In(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return zoned{loc: loc}
}

func (z zoned) Now() time.Time { return time.Now().In(z.loc) }

// Fixed returns a Clock pinned to t. Test helper.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}
