package engine

import "time"

// Config holds every probability knob. The engine hardcodes nothing;
// internal/app maps the file config into this struct.
type Config struct {
	Business BusinessWindow
	Lunch    LunchWindow
	Activity Activity
	Gates    Gates
	Vacation Vacation
	Jitter   Jitter
}

// BusinessWindow is the operating schedule: allowed weekdays plus a
// half-open [StartHour, EndHour) interval.
type BusinessWindow struct {
	Days      map[time.Weekday]bool
	StartHour int
	EndHour   int
}

// Contains reports whether t falls inside operating hours.
// Pure function of configuration and input time.
func (w BusinessWindow) Contains(t Tick) bool {
	if !w.Days[t.Weekday] {
		return false
	}
	return t.Hour >= w.StartHour && t.Hour < w.EndHour
}

// LunchWindow suppresses activity in [StartHour, EndHour) by a factor
// sampled from [FactorMin, FactorMax).
type LunchWindow struct {
	StartHour int
	EndHour   int
	FactorMin float64
	FactorMax float64
}

func (l LunchWindow) covers(hour int) bool {
	return hour >= l.StartHour && hour < l.EndHour
}

// Activity shapes the final per-tick call probability.
type Activity struct {
	// BaseMin/BaseMax bound the base probability sampled per tick.
	BaseMin float64
	BaseMax float64
	// DayFactors holds per-weekday base factors; missing weekdays count 1.0.
	DayFactors map[time.Weekday]float64
	// DayWobble perturbs the day factor by +/- this amount per evaluation,
	// so two same-weekday days rarely share an identical weight.
	DayWobble float64
}

// Gates hold the skip-chain probabilities.
type Gates struct {
	DaySkip         float64
	HourSkipDefault float64
	HourSkip        map[int]float64
	MicroBreak      float64
}

// Vacation marks off-duty periods: fixed calendar ranges always win,
// otherwise a seeded per-ISO-week draw.
type Vacation struct {
	WeekProbability float64
	Ranges          []MonthDayRange
}

// MonthDayRange is an inclusive month-day span. A range whose end sorts
// before its start wraps across the year boundary (e.g. Dec 20 - Jan 6).
type MonthDayRange struct {
	FromMonth time.Month
	FromDay   int
	ToMonth   time.Month
	ToDay     int
}

// Jitter is the pre-call delay mixture: a short uniform band, an
// exponential bulk, and a long uniform band.
type Jitter struct {
	ShortWeight float64
	LongWeight  float64
	ShortMax    time.Duration
	ExpMean     time.Duration
	ExpCap      time.Duration
	LongMin     time.Duration
	LongMax     time.Duration
}
