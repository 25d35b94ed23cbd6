// Package app wires the decision engine to its collaborators: the clock,
// the quota store, the webhook invoker, the operator channel, and the
// periodic trigger.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sysd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"

	"cadence/internal/clock"
	"cadence/internal/config"
	"cadence/internal/engine"
	"cadence/internal/notify"
	"cadence/internal/quota"
	"cadence/internal/runtime/supervisor"
	"cadence/internal/webhook"
	logx "cadence/pkg/logx"
)

// caller is the one outbound dependency of the evaluation pass.
// *webhook.Invoker implements it; tests substitute their own.
type caller interface {
	Invoke(ctx context.Context, now time.Time) error
	Target() string
}

type App struct {
	cfgm *config.Manager
	logs *logx.Service
	log  logx.Logger

	clk     clock.Clock
	loc     *time.Location
	eng     *engine.Engine
	store   quota.Store
	tracker *quota.Tracker
	invoker caller
	notif   *notify.Service // nil when disabled

	interval time.Duration

	// mu serializes evaluation passes against config re-application. Ticks
	// themselves never overlap (the cron chain skips while one is running);
	// the lock exists for the hot-reload path.
	mu sync.Mutex
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}

	logs, log := logx.New(mapLoggingConfig(cfg))
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))
	cfgm.SetValidator(func(_ context.Context, c *config.Config) error {
		// defaults+Validate already ran in Parse; reject reloads that break
		// component mapping too (bad weekday names, duration specs).
		_, err := mapEngineConfig(c)
		return err
	})

	loc, err := time.LoadLocation(cfg.Trigger.Timezone)
	if err != nil {
		return nil, fmt.Errorf("trigger.timezone: %w", err)
	}

	interval, err := config.ParseDurationOrDefault("trigger.interval", cfg.Trigger.Interval, 10*time.Minute)
	if err != nil {
		return nil, err
	}

	engCfg, err := mapEngineConfig(cfg)
	if err != nil {
		return nil, err
	}

	storeCfg, err := mapStoreConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := quota.Open(storeCfg, log.With(logx.String("comp", "quota")))
	if err != nil {
		return nil, fmt.Errorf("quota store: %w", err)
	}

	whCfg, err := mapWebhookConfig(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	invoker, err := webhook.New(whCfg, log.With(logx.String("comp", "webhook")))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var notif *notify.Service
	if ncfg, err := mapNotifyConfig(cfg); err != nil {
		_ = store.Close()
		return nil, err
	} else if ncfg != nil {
		notif, err = notify.New(*ncfg, log.With(logx.String("comp", "notify")))
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	a := &App{
		cfgm:     cfgm,
		logs:     logs,
		log:      log,
		clk:      clock.In(loc),
		loc:      loc,
		eng:      engine.New(engCfg, log.With(logx.String("comp", "engine"))),
		store:    store,
		tracker:  quota.NewTracker(cfg.Quota.Ceiling, store, log.With(logx.String("comp", "quota"))),
		invoker:  invoker,
		notif:    notif,
		interval: interval,
	}
	return a, nil
}

func (a *App) Close() error {
	err := a.store.Close()
	_ = a.logs.Close()
	return err
}

// RunOnce performs exactly one evaluation pass (the -once / external-timer
// mode). A skipped tick is a clean exit; only setup errors propagate.
func (a *App) RunOnce(ctx context.Context) error {
	return a.evaluate(ctx)
}

// Run is daemon mode: an internal cron trigger evaluates every interval,
// the config file is watched for live changes, and systemd (when present)
// gets READY/WATCHDOG/STOPPING notifications.
func (a *App) Run(ctx context.Context) error {
	sup := supervisor.New(ctx, a.log)

	c := cron.New(
		cron.WithLocation(a.loc),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{a.log.With(logx.String("comp", "trigger"))})),
	)
	_, err := c.AddFunc(fmt.Sprintf("@every %s", a.interval), func() {
		if err := a.evaluate(sup.Context()); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error("evaluation pass failed", logx.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("trigger: %w", err)
	}
	c.Start()
	a.log.Info("trigger started",
		logx.Duration("interval", a.interval),
		logx.String("tz", a.loc.String()),
		logx.String("target", a.invoker.Target()))

	sup.Go("config-watch", a.cfgm.Watch)
	cfgCh := a.cfgm.Subscribe(1)
	sup.Go("config-apply", func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case cfg, ok := <-cfgCh:
				if !ok {
					return nil
				}
				a.applyConfig(cfg)
			}
		}
	})

	if sent, err := sysd.SdNotify(false, sysd.SdNotifyReady); err != nil {
		a.log.Warn("sd_notify failed", logx.Err(err))
	} else if sent {
		a.log.Debug("sd_notify: READY")
	}
	if wd, err := sysd.SdWatchdogEnabled(false); err == nil && wd > 0 {
		sup.Go("watchdog", func(ctx context.Context) error {
			t := time.NewTicker(wd / 2)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-t.C:
					_, _ = sysd.SdNotify(false, sysd.SdNotifyWatchdog)
				}
			}
		})
	}

	<-ctx.Done()
	_, _ = sysd.SdNotify(false, sysd.SdNotifyStopping)

	cronCtx := c.Stop()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	select {
	case <-cronCtx.Done():
	case <-stopCtx.Done():
		a.log.Warn("trigger stop timed out")
	}
	a.cfgm.Unsubscribe(cfgCh)
	sup.Stop(stopCtx)
	a.log.Info("stopped")
	return nil
}

// applyConfig pushes a hot-reloaded config into the running components.
// Storage driver and webhook endpoint changes require a restart and are
// deliberately not re-applied.
func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.logs.Apply(mapLoggingConfig(cfg))

	engCfg, err := mapEngineConfig(cfg)
	if err != nil {
		// validator should have caught this; keep the old engine config
		a.log.Warn("reloaded config rejected at apply", logx.Err(err))
		return
	}
	a.eng.Apply(engCfg)
	a.tracker.SetCeiling(cfg.Quota.Ceiling)
	a.log.Info("config applied",
		logx.Int("ceiling", cfg.Quota.Ceiling),
		logx.String("level", cfg.Logging.Level))
}

// evaluate is one full orchestration pass: quota snapshot, decision chain,
// jitter, call, record. Every failure is local to this tick.
func (a *App) evaluate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clk.Now()
	tick := engine.NewTick(now)
	rec := a.tracker.Load(ctx, now)

	a.log.Info("tick",
		logx.Time("now", now),
		logx.String("weekday", tick.Weekday.String()),
		logx.Int("calls_this_month", rec.Count),
		logx.Int("ceiling", a.tracker.Ceiling()))

	out := a.eng.Decide(tick, a.tracker.HasCapacity(rec))
	if !out.ShouldCall {
		fields := []logx.Field{logx.String("reason", out.Reason.String())}
		if out.Probability > 0 {
			fields = append(fields, logx.Float64("probability", out.Probability))
		}
		a.log.Info("skipping this cycle", fields...)
		return nil
	}

	a.log.Info("all checks passed",
		logx.Float64("probability", out.Probability),
		logx.Duration("jitter", out.Jitter))

	// The jitter delay is paid only after every gate passed. Cancellation
	// here is the safe direction: no call, no quota.
	if out.Jitter > 0 {
		timer := time.NewTimer(out.Jitter)
		select {
		case <-ctx.Done():
			timer.Stop()
			a.log.Info("cancelled during jitter; no call made")
			return ctx.Err()
		case <-timer.C:
		}
	}

	callAt := a.clk.Now()
	if err := a.invoker.Invoke(ctx, callAt); err != nil {
		if errors.Is(err, webhook.ErrTooSoon) {
			a.log.Info("skipping this cycle", logx.String("reason", "minimum spacing not elapsed"))
			return nil
		}
		// Not retried this tick; the next periodic tick is the retry.
		a.log.Error("webhook call failed; quota unchanged", logx.Err(err))
		return nil
	}

	rec, err := a.tracker.RecordCall(ctx, rec, callAt)
	if err != nil {
		// The call already happened and cannot be undone. Surface loudly:
		// this risks undercounting against the monthly ceiling.
		a.log.Error("call performed but quota persist failed",
			logx.Int("count", rec.Count), logx.Err(err))
		a.notif.PersistFailed(rec.Count, err)
		return nil
	}

	a.log.Info("call recorded",
		logx.Int("calls_this_month", rec.Count),
		logx.Int("ceiling", a.tracker.Ceiling()),
		logx.Time("last_call", callAt))
	a.notif.CallRecorded(rec.Count, a.tracker.Ceiling(), callAt)
	return nil
}

// cronLogger adapts logx to the cron.Logger interface used by the
// skip-if-still-running chain.
type cronLogger struct{ log logx.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.log.Debug(msg, logx.Any("detail", kv))
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.log.Warn(msg, logx.Err(err), logx.Any("detail", kv))
}
