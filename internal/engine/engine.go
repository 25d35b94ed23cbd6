package engine

import (
	"math/rand"
	"time"

	logx "cadence/pkg/logx"
)

// Engine runs the decision chain. One instance per process; Decide is
// called once per tick and expects no concurrent callers (the trigger
// guarantees non-overlapping runs).
type Engine struct {
	cfg   Config
	log   logx.Logger
	fresh *rand.Rand
}

type Option func(*Engine)

// WithRand replaces the fresh-randomness source. Test hook: seeded gates
// are unaffected, they construct their own sources from period keys.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.fresh = rng }
}

func New(cfg Config, log logx.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg: cfg,
		log: log,
		// Locally scoped source; never the global generator, so the seeded
		// gates' streams cannot be disturbed by fresh draws.
		fresh: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Apply swaps the probability configuration (config hot reload).
func (e *Engine) Apply(cfg Config) { e.cfg = cfg }

// Decide runs one pass. hasCapacity is the quota tracker's verdict for the
// current record; it is checked first so an exhausted month costs nothing.
func (e *Engine) Decide(t Tick, hasCapacity bool) Outcome {
	if !hasCapacity {
		return e.blocked(t, ReasonQuotaExhausted)
	}
	if e.cfg.Vacation.IsVacation(t) {
		return e.blocked(t, ReasonVacation)
	}
	if !e.cfg.Business.Contains(t) {
		return e.blocked(t, ReasonOutsideWindow)
	}
	if e.cfg.Gates.SkipDay(t) {
		return e.blocked(t, ReasonDaySkip)
	}
	if e.cfg.Gates.SkipHour(t) {
		return e.blocked(t, ReasonHourSkip)
	}
	if e.cfg.Gates.MicroBreakHit(e.fresh) {
		return e.blocked(t, ReasonMicroBreak)
	}

	p := e.cfg.Activity.Probability(t, e.cfg.Lunch, e.fresh)
	if e.fresh.Float64() > p {
		e.log.Debug("tick blocked",
			logx.String("reason", ReasonActivitySample.String()),
			logx.Float64("probability", p),
			logx.Time("tick", t.Now))
		return Outcome{Reason: ReasonActivitySample, Probability: p}
	}

	out := Outcome{
		ShouldCall:  true,
		Probability: p,
		Jitter:      e.cfg.Jitter.Sample(e.fresh),
	}
	e.log.Debug("tick passed",
		logx.Float64("probability", p),
		logx.Duration("jitter", out.Jitter),
		logx.Time("tick", t.Now))
	return out
}

func (e *Engine) blocked(t Tick, r Reason) Outcome {
	e.log.Debug("tick blocked",
		logx.String("reason", r.String()),
		logx.Time("tick", t.Now))
	return Outcome{Reason: r}
}
