package engine

import (
	"math/rand"
	"testing"
	"time"
)

func testActivity() Activity {
	return Activity{
		BaseMin: 0.85,
		BaseMax: 0.98,
		DayFactors: map[time.Weekday]float64{
			time.Monday: 0.7,
			time.Friday: 0.8,
		},
		DayWobble: 0.08,
	}
}

func testLunch() LunchWindow {
	return LunchWindow{StartHour: 12, EndHour: 14, FactorMin: 0.5, FactorMax: 0.9}
}

func TestProbabilityStaysInUnitInterval(t *testing.T) {
	t.Parallel()
	a := testActivity()
	lunch := testLunch()
	rng := rand.New(rand.NewSource(7))

	for day := 1; day <= 28; day++ {
		for hour := 0; hour < 24; hour++ {
			tick := NewTick(time.Date(2024, 10, day, hour, 0, 0, 0, time.UTC))
			p := a.Probability(tick, lunch, rng)
			if p <= 0 || p > 1 {
				t.Fatalf("Probability(%v) = %f, want in (0, 1]", tick.Now, p)
			}
		}
	}
}

func TestProbabilityLunchSuppression(t *testing.T) {
	t.Parallel()
	a := testActivity()
	lunch := testLunch()
	rng := rand.New(rand.NewSource(11))

	const n = 5000
	var lunchSum, morningSum float64
	for i := 0; i < n; i++ {
		lunchSum += a.Probability(tickAt(t, "2024-10-09 12:30"), lunch, rng)
		morningSum += a.Probability(tickAt(t, "2024-10-09 10:30"), lunch, rng)
	}
	if lunchSum/n >= morningSum/n*0.9 {
		t.Fatalf("lunch mean %.3f not clearly below morning mean %.3f",
			lunchSum/n, morningSum/n)
	}
}

func TestProbabilityDayFactorVariesPerEvaluation(t *testing.T) {
	t.Parallel()
	a := testActivity()
	rng := rand.New(rand.NewSource(3))

	// same weekday, same config: the wobble should keep evaluations from
	// collapsing onto one value
	tick := tickAt(t, "2024-10-07 10:00") // a Monday
	seen := map[float64]bool{}
	for i := 0; i < 50; i++ {
		seen[a.Probability(tick, LunchWindow{}, rng)] = true
	}
	if len(seen) < 40 {
		t.Fatalf("expected spread of probabilities, got %d distinct values", len(seen))
	}
}

func TestProbabilityMondayBelowMidweek(t *testing.T) {
	t.Parallel()
	a := testActivity()
	rng := rand.New(rand.NewSource(5))

	const n = 5000
	var monSum, wedSum float64
	for i := 0; i < n; i++ {
		monSum += a.Probability(tickAt(t, "2024-10-07 10:00"), LunchWindow{}, rng)
		wedSum += a.Probability(tickAt(t, "2024-10-09 10:00"), LunchWindow{}, rng)
	}
	if monSum/n >= wedSum/n {
		t.Fatalf("monday mean %.3f not below midweek mean %.3f", monSum/n, wedSum/n)
	}
}
