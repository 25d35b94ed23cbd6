package engine

import "math/rand"

// SkipDay is the day-level gate: seeded by the date, so every tick of the
// same day agrees on the verdict.
func (g Gates) SkipDay(t Tick) bool {
	if g.DaySkip <= 0 {
		return false
	}
	return periodRand(dayKey(t)).Float64() < g.DaySkip
}

// SkipHour is the hour-level gate: seeded by date+hour. The blocking
// probability varies by hour (typically raised around lunch).
func (g Gates) SkipHour(t Tick) bool {
	p, ok := g.HourSkip[t.Hour]
	if !ok {
		p = g.HourSkipDefault
	}
	if p <= 0 {
		return false
	}
	return periodRand(hourKey(t)).Float64() < p
}

// MicroBreakHit is the only non-seeded gate: a small fresh-randomness
// chance of sudden short unavailability not tied to any calendar period.
func (g Gates) MicroBreakHit(rng *rand.Rand) bool {
	if g.MicroBreak <= 0 {
		return false
	}
	return rng.Float64() < g.MicroBreak
}
