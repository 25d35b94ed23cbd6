package engine

import "time"

// IsVacation reports whether the tick's date is off-duty. Fixed ranges win
// unconditionally; otherwise the seeded per-ISO-week draw applies.
func (v Vacation) IsVacation(t Tick) bool {
	for _, r := range v.Ranges {
		if r.Contains(t.Month, t.Day) {
			return true
		}
	}
	if v.WeekProbability <= 0 {
		return false
	}
	rng := periodRand(weekKey(t.ISOYear, t.ISOWeek))
	return rng.Float64() < v.WeekProbability
}

// Contains reports whether month/day falls inside the range (inclusive on
// both ends). Ranges may wrap across the year boundary.
func (r MonthDayRange) Contains(month time.Month, day int) bool {
	from := int(r.FromMonth)*100 + r.FromDay
	to := int(r.ToMonth)*100 + r.ToDay
	at := int(month)*100 + day
	if from <= to {
		return at >= from && at <= to
	}
	// wrapped range, e.g. 12-20 .. 01-06
	return at >= from || at <= to
}
