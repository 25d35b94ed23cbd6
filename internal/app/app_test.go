package app

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"cadence/internal/clock"
	"cadence/internal/engine"
	"cadence/internal/quota"
	"cadence/internal/webhook"
	logx "cadence/pkg/logx"
)

type fakeCaller struct {
	calls int
	err   error
}

func (f *fakeCaller) Invoke(context.Context, time.Time) error {
	f.calls++
	return f.err
}

func (f *fakeCaller) Target() string { return "hooks.example.com" }

// passingEngineConfig disables every probabilistic blocker so the pass
// outcome is fully determined by quota, calendar, and the caller.
func passingEngineConfig() engine.Config {
	return engine.Config{
		Business: engine.BusinessWindow{
			Days: map[time.Weekday]bool{
				time.Monday: true, time.Tuesday: true, time.Wednesday: true,
				time.Thursday: true, time.Friday: true,
			},
			StartHour: 9,
			EndHour:   17,
		},
		Lunch:    engine.LunchWindow{StartHour: 12, EndHour: 14, FactorMin: 1, FactorMax: 1},
		Activity: engine.Activity{BaseMin: 1, BaseMax: 1},
		Jitter:   engine.Jitter{ShortWeight: 1, ShortMax: time.Millisecond},
	}
}

func newTestApp(t *testing.T, inv caller, engCfg engine.Config, at time.Time) (*App, quota.Store) {
	t.Helper()
	store, err := quota.Open(quota.StoreConfig{
		Driver: "file",
		Path:   filepath.Join(t.TempDir(), "quota.json"),
	}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return &App{
		log:     logx.Nop(),
		clk:     clock.Fixed(at),
		eng:     engine.New(engCfg, logx.Nop(), engine.WithRand(rand.New(rand.NewSource(1)))),
		store:   store,
		tracker: quota.NewTracker(600, store, logx.Nop()),
		invoker: inv,
	}, store
}

var businessTuesday = time.Date(2024, 10, 8, 10, 0, 0, 0, time.UTC)

func TestEvaluateSuccessRecordsQuota(t *testing.T) {
	t.Parallel()
	inv := &fakeCaller{}
	a, store := newTestApp(t, inv, passingEngineConfig(), businessTuesday)

	if err := a.evaluate(context.Background()); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if inv.calls != 1 {
		t.Fatalf("calls = %d, want 1", inv.calls)
	}
	rec, ok, err := store.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("Load after success: ok=%v err=%v", ok, err)
	}
	if rec.Month != "2024-10" || rec.Count != 1 {
		t.Fatalf("record = %+v, want {2024-10, 1}", rec)
	}
	if rec.LastCall == nil || !rec.LastCall.Equal(businessTuesday) {
		t.Fatalf("LastCall = %v, want %v", rec.LastCall, businessTuesday)
	}
}

func TestEvaluateWebhookFailureLeavesQuotaUntouched(t *testing.T) {
	t.Parallel()
	inv := &fakeCaller{err: errors.New("connection refused")}
	a, store := newTestApp(t, inv, passingEngineConfig(), businessTuesday)

	// a failed call is logged and absorbed: the next tick is the retry
	if err := a.evaluate(context.Background()); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if inv.calls != 1 {
		t.Fatalf("calls = %d, want 1", inv.calls)
	}
	if _, ok, _ := store.Load(context.Background()); ok {
		t.Fatal("quota was persisted despite webhook failure")
	}
}

func TestEvaluateMinSpacingSkip(t *testing.T) {
	t.Parallel()
	inv := &fakeCaller{err: webhook.ErrTooSoon}
	a, store := newTestApp(t, inv, passingEngineConfig(), businessTuesday)

	if err := a.evaluate(context.Background()); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, ok, _ := store.Load(context.Background()); ok {
		t.Fatal("quota was persisted on a spacing skip")
	}
}

func TestEvaluateCancelledDuringJitter(t *testing.T) {
	t.Parallel()
	cfg := passingEngineConfig()
	// deterministic one-hour delay so cancellation always wins the select
	cfg.Jitter = engine.Jitter{LongWeight: 1, LongMin: time.Hour, LongMax: time.Hour}

	inv := &fakeCaller{}
	a, store := newTestApp(t, inv, cfg, businessTuesday)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.evaluate(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("evaluate: err = %v, want context.Canceled", err)
	}
	if inv.calls != 0 {
		t.Fatal("webhook was called despite cancellation during jitter")
	}
	if _, ok, _ := store.Load(context.Background()); ok {
		t.Fatal("quota was persisted despite cancellation")
	}
}

func TestEvaluateSkipsOutsideWindow(t *testing.T) {
	t.Parallel()
	inv := &fakeCaller{}
	saturday := time.Date(2024, 10, 5, 14, 0, 0, 0, time.UTC)
	a, store := newTestApp(t, inv, passingEngineConfig(), saturday)

	if err := a.evaluate(context.Background()); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if inv.calls != 0 {
		t.Fatal("webhook called on a Saturday")
	}
	if _, ok, _ := store.Load(context.Background()); ok {
		t.Fatal("quota was persisted on a skipped tick")
	}
}

func TestEvaluateStopsAtCeiling(t *testing.T) {
	t.Parallel()
	inv := &fakeCaller{}
	a, store := newTestApp(t, inv, passingEngineConfig(), businessTuesday)

	ctx := context.Background()
	if err := store.Save(ctx, quota.Record{Month: "2024-10", Count: 600}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := a.evaluate(ctx); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if inv.calls != 0 {
		t.Fatal("webhook called with an exhausted monthly quota")
	}
	rec, _, _ := store.Load(ctx)
	if rec.Count != 600 {
		t.Fatalf("Count = %d, want 600 unchanged", rec.Count)
	}
}
