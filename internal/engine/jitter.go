package engine

import (
	"math/rand"
	"time"
)

// Sample draws a pre-call delay from the three-branch mixture:
// ShortWeight of draws land uniformly in [0, ShortMax), LongWeight in
// [LongMin, LongMax), and the rest follow Exp(ExpMean) capped at ExpCap.
func (j Jitter) Sample(rng *rand.Rand) time.Duration {
	u := rng.Float64()
	switch {
	case u < j.ShortWeight:
		return time.Duration(rng.Float64() * float64(j.ShortMax))
	case u < j.ShortWeight+j.LongWeight:
		span := j.LongMax - j.LongMin
		if span <= 0 {
			return j.LongMin
		}
		return j.LongMin + time.Duration(rng.Float64()*float64(span))
	default:
		d := time.Duration(rng.ExpFloat64() * float64(j.ExpMean))
		if j.ExpCap > 0 && d > j.ExpCap {
			d = j.ExpCap
		}
		return d
	}
}
