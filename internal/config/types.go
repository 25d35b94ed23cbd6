package config

type Config struct {
	Logging LoggingConfig `json:"logging"`

	// Trigger controls the periodic evaluation in daemon mode.
	Trigger TriggerConfig `json:"trigger"`

	// Engine holds every probability knob of the decision engine.
	// All thresholds live here; the engine has no hardcoded behavior.
	Engine EngineConfig `json:"engine"`

	Quota   QuotaConfig   `json:"quota"`
	Webhook WebhookConfig `json:"webhook"`

	Notify *NotifyConfig `json:"notify,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// TriggerConfig controls the daemon-mode evaluation tick.
//
// Interval is a Go duration string (e.g. "5m", "15m"). Each tick is one
// independent evaluation pass; the interval is deliberately short since
// most ticks end in a skip.
type TriggerConfig struct {
	Interval string `json:"interval"`
	// Timezone is the IANA zone the simulated operator works in.
	Timezone string `json:"timezone"`
}

// EngineConfig mirrors engine.Config but keeps file-friendly types
// (duration strings, weekday names, MM-DD date specs).
type EngineConfig struct {
	Business BusinessConfig `json:"business"`
	Lunch    LunchConfig    `json:"lunch"`
	Activity ActivityConfig `json:"activity"`
	Gates    GatesConfig    `json:"gates"`
	Vacation VacationConfig `json:"vacation"`
	Jitter   JitterConfig   `json:"jitter"`
}

type BusinessConfig struct {
	// Days are lowercase English weekday names. Empty means Mon-Fri.
	Days []string `json:"days,omitempty"`
	// Hours are a half-open interval [start, end).
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

type LunchConfig struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
	// FactorMin/FactorMax bound the activity multiplier sampled during lunch.
	FactorMin float64 `json:"factor_min"`
	FactorMax float64 `json:"factor_max"`
}

type ActivityConfig struct {
	// BaseMin/BaseMax bound the per-tick base call probability.
	BaseMin float64 `json:"base_min"`
	BaseMax float64 `json:"base_max"`
	// DayFactors maps weekday name -> base factor. Missing days use 1.0.
	DayFactors map[string]float64 `json:"day_factors,omitempty"`
	// DayWobble perturbs each day factor by +/- this amount per evaluation.
	// Pointer so an explicit 0 (no wobble) survives defaulting.
	DayWobble *float64 `json:"day_wobble,omitempty"`
}

// Gate probabilities are pointers: 0 is a meaningful value (gate disabled),
// so defaults apply only when the key is absent from the file.
type GatesConfig struct {
	// DaySkip blocks a whole day, HourSkipDefault a whole hour.
	DaySkip         *float64 `json:"day_skip,omitempty"`
	HourSkipDefault *float64 `json:"hour_skip_default,omitempty"`
	// HourSkip overrides the hour-skip probability for specific hours (0-23).
	HourSkip map[string]float64 `json:"hour_skip,omitempty"`
	// MicroBreak uses fresh randomness each tick.
	MicroBreak *float64 `json:"micro_break,omitempty"`
}

type VacationConfig struct {
	// WeekProbability is the seeded per-ISO-week chance of a vacation week.
	// Pointer: an explicit 0 disables the week gate entirely.
	WeekProbability *float64 `json:"week_probability,omitempty"`
	// Ranges are fixed MM-DD spans; To < From wraps across the year boundary.
	Ranges []DateRange `json:"ranges,omitempty"`
}

// DateRange is an inclusive MM-DD span, e.g. {from: "12-20", to: "01-06"}.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// JitterConfig shapes the pre-call delay mixture.
// All durations are Go duration strings.
type JitterConfig struct {
	ShortWeight float64 `json:"short_weight"`
	LongWeight  float64 `json:"long_weight"`
	ShortMax    string  `json:"short_max"`
	ExpMean     string  `json:"exp_mean"`
	ExpCap      string  `json:"exp_cap"`
	LongMin     string  `json:"long_min"`
	LongMax     string  `json:"long_max"`
}

type QuotaConfig struct {
	// Ceiling is the hard monthly call limit.
	Ceiling int           `json:"ceiling"`
	Storage StorageConfig `json:"storage"`
}

// StorageConfig selects the quota store backend.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./cadence_state/quota.json" }
type StorageConfig struct {
	Driver      string `json:"driver"` // "file" (default) or "sqlite"
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type WebhookConfig struct {
	// URLEnv names the environment variable holding the endpoint URL.
	// The URL itself never appears in the config file or in logs.
	URLEnv  string `json:"url_env,omitempty"`
	Timeout string `json:"timeout,omitempty"`
	// MinSpacing is a safety floor between two calls, independent of quota.
	MinSpacing string `json:"min_spacing,omitempty"`
	// Source is echoed in the webhook payload.
	Source string `json:"source,omitempty"`
}

// NotifyConfig controls the optional Telegram operator channel.
// If the whole section is omitted, notifications are disabled.
type NotifyConfig struct {
	Enabled    bool   `json:"enabled"`
	TokenEnv   string `json:"token_env,omitempty"`
	ChatID     int64  `json:"chat_id"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}
