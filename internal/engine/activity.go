package engine

import "math/rand"

// Probability computes the final per-tick call probability: sampled base
// times day-of-week factor times lunch factor, clamped to (0, 1].
//
// Everything here uses fresh randomness on purpose. The gates need
// period-consistent verdicts; the weight only needs fine-grained
// unpredictability, so re-sampling each tick is the desired behavior.
func (a Activity) Probability(t Tick, lunch LunchWindow, rng *rand.Rand) float64 {
	p := uniformIn(rng, a.BaseMin, a.BaseMax)
	p *= a.dayFactor(t, rng)
	if lunch.covers(t.Hour) {
		p *= uniformIn(rng, lunch.FactorMin, lunch.FactorMax)
	}
	if p > 1 {
		p = 1
	}
	if p <= 0 {
		// A zero probability would silently disable the system; keep a floor
		// so misconfiguration shows up in traces instead.
		p = 0.01
	}
	return p
}

// dayFactor returns the weekday base factor perturbed by +/- DayWobble.
// Bursts above 1.0 are allowed; the product is clamped by the caller.
func (a Activity) dayFactor(t Tick, rng *rand.Rand) float64 {
	f, ok := a.DayFactors[t.Weekday]
	if !ok {
		f = 1.0
	}
	if a.DayWobble > 0 {
		f += (rng.Float64()*2 - 1) * a.DayWobble
	}
	if f < 0.05 {
		f = 0.05
	}
	if f > 1.5 {
		f = 1.5
	}
	return f
}

func uniformIn(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
