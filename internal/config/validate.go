package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday maps a lowercase English weekday name to time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return d, nil
}

// ParseMonthDay parses an "MM-DD" date spec.
func ParseMonthDay(spec string) (month time.Month, day int, err error) {
	parts := strings.SplitN(strings.TrimSpace(spec), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid date spec %q (want MM-DD)", spec)
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("invalid month in date spec %q", spec)
	}
	d, err := strconv.Atoi(parts[1])
	if err != nil || d < 1 || d > 31 {
		return 0, 0, fmt.Errorf("invalid day in date spec %q", spec)
	}
	return time.Month(m), d, nil
}

// Validate rejects configurations that would make the engine misbehave.
// Call after ApplyDefaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if _, err := time.LoadLocation(cfg.Trigger.Timezone); err != nil {
		return fmt.Errorf("trigger.timezone: %w", err)
	}
	if _, err := ParseDurationOrDefault("trigger.interval", cfg.Trigger.Interval, 10*time.Minute); err != nil {
		return err
	}

	e := cfg.Engine
	for _, name := range e.Business.Days {
		if _, err := ParseWeekday(name); err != nil {
			return fmt.Errorf("engine.business.days: %w", err)
		}
	}
	if err := checkHour("engine.business.start_hour", e.Business.StartHour); err != nil {
		return err
	}
	if err := checkHour("engine.business.end_hour", e.Business.EndHour); err != nil {
		return err
	}
	if e.Business.StartHour >= e.Business.EndHour {
		return fmt.Errorf("engine.business: start_hour must be < end_hour")
	}
	if err := checkHour("engine.lunch.start_hour", e.Lunch.StartHour); err != nil {
		return err
	}
	if err := checkHour("engine.lunch.end_hour", e.Lunch.EndHour); err != nil {
		return err
	}
	if err := checkRange("engine.lunch.factor", e.Lunch.FactorMin, e.Lunch.FactorMax); err != nil {
		return err
	}
	if err := checkRange("engine.activity.base", e.Activity.BaseMin, e.Activity.BaseMax); err != nil {
		return err
	}
	for name, f := range e.Activity.DayFactors {
		if _, err := ParseWeekday(name); err != nil {
			return fmt.Errorf("engine.activity.day_factors: %w", err)
		}
		if f <= 0 || f > 1.5 {
			return fmt.Errorf("engine.activity.day_factors[%s]: must be in (0, 1.5]", name)
		}
	}
	if w := deref(e.Activity.DayWobble); w < 0 || w > 0.5 {
		return fmt.Errorf("engine.activity.day_wobble: must be in [0, 0.5]")
	}
	if err := checkProb("engine.gates.day_skip", deref(e.Gates.DaySkip)); err != nil {
		return err
	}
	if err := checkProb("engine.gates.hour_skip_default", deref(e.Gates.HourSkipDefault)); err != nil {
		return err
	}
	for h, p := range e.Gates.HourSkip {
		n, err := strconv.Atoi(h)
		if err != nil || n < 0 || n > 23 {
			return fmt.Errorf("engine.gates.hour_skip: invalid hour key %q", h)
		}
		if err := checkProb("engine.gates.hour_skip["+h+"]", p); err != nil {
			return err
		}
	}
	if err := checkProb("engine.gates.micro_break", deref(e.Gates.MicroBreak)); err != nil {
		return err
	}
	if err := checkProb("engine.vacation.week_probability", deref(e.Vacation.WeekProbability)); err != nil {
		return err
	}
	for i, r := range e.Vacation.Ranges {
		if _, _, err := ParseMonthDay(r.From); err != nil {
			return fmt.Errorf("engine.vacation.ranges[%d].from: %w", i, err)
		}
		if _, _, err := ParseMonthDay(r.To); err != nil {
			return fmt.Errorf("engine.vacation.ranges[%d].to: %w", i, err)
		}
	}
	if err := checkProb("engine.jitter.short_weight", e.Jitter.ShortWeight); err != nil {
		return err
	}
	if err := checkProb("engine.jitter.long_weight", e.Jitter.LongWeight); err != nil {
		return err
	}
	if e.Jitter.ShortWeight+e.Jitter.LongWeight >= 1 {
		return fmt.Errorf("engine.jitter: short_weight + long_weight must be < 1")
	}
	for _, f := range []struct{ path, raw string }{
		{"engine.jitter.short_max", e.Jitter.ShortMax},
		{"engine.jitter.exp_mean", e.Jitter.ExpMean},
		{"engine.jitter.exp_cap", e.Jitter.ExpCap},
		{"engine.jitter.long_min", e.Jitter.LongMin},
		{"engine.jitter.long_max", e.Jitter.LongMax},
	} {
		if _, err := ParseDurationField(f.path, f.raw); err != nil {
			return err
		}
	}

	if cfg.Quota.Ceiling <= 0 {
		return fmt.Errorf("quota.ceiling: must be > 0")
	}
	switch cfg.Quota.Storage.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("quota.storage.driver: unknown driver %q", cfg.Quota.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Quota.Storage.Path) == "" {
		return fmt.Errorf("quota.storage.path: required")
	}
	if _, err := ParseDurationField("quota.storage.busy_timeout", cfg.Quota.Storage.BusyTimeout); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Webhook.URLEnv) == "" {
		return fmt.Errorf("webhook.url_env: required")
	}
	if _, err := ParseDurationField("webhook.timeout", cfg.Webhook.Timeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("webhook.min_spacing", cfg.Webhook.MinSpacing); err != nil {
		return err
	}

	if cfg.Notify != nil && cfg.Notify.Enabled {
		if strings.TrimSpace(cfg.Notify.TokenEnv) == "" {
			return fmt.Errorf("notify.token_env: required when notify is enabled")
		}
		if cfg.Notify.ChatID == 0 {
			return fmt.Errorf("notify.chat_id: required when notify is enabled")
		}
	}

	return nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func checkHour(path string, h int) error {
	if h < 0 || h > 23 {
		return fmt.Errorf("%s: must be in [0, 23]", path)
	}
	return nil
}

func checkProb(path string, p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%s: must be in [0, 1]", path)
	}
	return nil
}

func checkRange(path string, lo, hi float64) error {
	if lo <= 0 || hi > 1.5 || lo > hi {
		return fmt.Errorf("%s: want 0 < min <= max <= 1.5", path)
	}
	return nil
}
