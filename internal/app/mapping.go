package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cadence/internal/config"
	"cadence/internal/engine"
	"cadence/internal/notify"
	"cadence/internal/quota"
	"cadence/internal/webhook"
	logx "cadence/pkg/logx"
)

// Mapping functions translate the file config (strings, names, duration
// specs) into the typed configs each component consumes. Validation has
// already run; errors here are limited to what Validate cannot see.

func mapLoggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapEngineConfig(cfg *config.Config) (engine.Config, error) {
	e := cfg.Engine

	days := make(map[time.Weekday]bool, len(e.Business.Days))
	for _, name := range e.Business.Days {
		d, err := config.ParseWeekday(name)
		if err != nil {
			return engine.Config{}, fmt.Errorf("engine.business.days: %w", err)
		}
		days[d] = true
	}

	dayFactors := make(map[time.Weekday]float64, len(e.Activity.DayFactors))
	for name, f := range e.Activity.DayFactors {
		d, err := config.ParseWeekday(name)
		if err != nil {
			return engine.Config{}, fmt.Errorf("engine.activity.day_factors: %w", err)
		}
		dayFactors[d] = f
	}

	hourSkip := make(map[int]float64, len(e.Gates.HourSkip))
	for h, p := range e.Gates.HourSkip {
		n, err := strconv.Atoi(h)
		if err != nil {
			return engine.Config{}, fmt.Errorf("engine.gates.hour_skip: invalid hour key %q", h)
		}
		hourSkip[n] = p
	}

	ranges := make([]engine.MonthDayRange, 0, len(e.Vacation.Ranges))
	for i, r := range e.Vacation.Ranges {
		fm, fd, err := config.ParseMonthDay(r.From)
		if err != nil {
			return engine.Config{}, fmt.Errorf("engine.vacation.ranges[%d]: %w", i, err)
		}
		tm, td, err := config.ParseMonthDay(r.To)
		if err != nil {
			return engine.Config{}, fmt.Errorf("engine.vacation.ranges[%d]: %w", i, err)
		}
		ranges = append(ranges, engine.MonthDayRange{
			FromMonth: fm, FromDay: fd,
			ToMonth: tm, ToDay: td,
		})
	}

	jitter := engine.Jitter{
		ShortWeight: e.Jitter.ShortWeight,
		LongWeight:  e.Jitter.LongWeight,
	}
	var err error
	if jitter.ShortMax, err = config.ParseDurationField("engine.jitter.short_max", e.Jitter.ShortMax); err != nil {
		return engine.Config{}, err
	}
	if jitter.ExpMean, err = config.ParseDurationField("engine.jitter.exp_mean", e.Jitter.ExpMean); err != nil {
		return engine.Config{}, err
	}
	if jitter.ExpCap, err = config.ParseDurationField("engine.jitter.exp_cap", e.Jitter.ExpCap); err != nil {
		return engine.Config{}, err
	}
	if jitter.LongMin, err = config.ParseDurationField("engine.jitter.long_min", e.Jitter.LongMin); err != nil {
		return engine.Config{}, err
	}
	if jitter.LongMax, err = config.ParseDurationField("engine.jitter.long_max", e.Jitter.LongMax); err != nil {
		return engine.Config{}, err
	}

	return engine.Config{
		Business: engine.BusinessWindow{
			Days:      days,
			StartHour: e.Business.StartHour,
			EndHour:   e.Business.EndHour,
		},
		Lunch: engine.LunchWindow{
			StartHour: e.Lunch.StartHour,
			EndHour:   e.Lunch.EndHour,
			FactorMin: e.Lunch.FactorMin,
			FactorMax: e.Lunch.FactorMax,
		},
		Activity: engine.Activity{
			BaseMin:    e.Activity.BaseMin,
			BaseMax:    e.Activity.BaseMax,
			DayFactors: dayFactors,
			DayWobble:  prob(e.Activity.DayWobble),
		},
		Gates: engine.Gates{
			DaySkip:         prob(e.Gates.DaySkip),
			HourSkipDefault: prob(e.Gates.HourSkipDefault),
			HourSkip:        hourSkip,
			MicroBreak:      prob(e.Gates.MicroBreak),
		},
		Vacation: engine.Vacation{
			WeekProbability: prob(e.Vacation.WeekProbability),
			Ranges:          ranges,
		},
		Jitter: jitter,
	}, nil
}

// prob unwraps an optional probability; nil means the gate is off.
func prob(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func mapStoreConfig(cfg *config.Config) (quota.StoreConfig, error) {
	busy, err := config.ParseDurationField("quota.storage.busy_timeout", cfg.Quota.Storage.BusyTimeout)
	if err != nil {
		return quota.StoreConfig{}, err
	}
	return quota.StoreConfig{
		Driver:      cfg.Quota.Storage.Driver,
		Path:        cfg.Quota.Storage.Path,
		BusyTimeout: busy,
	}, nil
}

func mapWebhookConfig(cfg *config.Config) (webhook.Config, error) {
	url := strings.TrimSpace(os.Getenv(cfg.Webhook.URLEnv))
	if url == "" {
		return webhook.Config{}, fmt.Errorf("webhook: environment variable %s is not set", cfg.Webhook.URLEnv)
	}
	timeout, err := config.ParseDurationOrDefault("webhook.timeout", cfg.Webhook.Timeout, 30*time.Second)
	if err != nil {
		return webhook.Config{}, err
	}
	spacing, err := config.ParseDurationField("webhook.min_spacing", cfg.Webhook.MinSpacing)
	if err != nil {
		return webhook.Config{}, err
	}
	return webhook.Config{
		URL:        url,
		Timeout:    timeout,
		MinSpacing: spacing,
		Source:     cfg.Webhook.Source,
		Timezone:   cfg.Trigger.Timezone,
	}, nil
}

// mapNotifyConfig returns nil when notifications are disabled.
func mapNotifyConfig(cfg *config.Config) (*notify.Config, error) {
	n := cfg.Notify
	if n == nil || !n.Enabled {
		return nil, nil
	}
	token := strings.TrimSpace(os.Getenv(n.TokenEnv))
	if token == "" {
		return nil, fmt.Errorf("notify: environment variable %s is not set", n.TokenEnv)
	}
	return &notify.Config{
		Token:      token,
		ChatID:     n.ChatID,
		RatePerSec: n.RatePerSec,
	}, nil
}
