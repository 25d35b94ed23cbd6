package config

// ApplyDefaults fills missing fields in place. It is called after Parse and
// before Validate, so validation always sees a fully populated config.
//
// Numeric defaults follow the documented reference deployment: Rome business
// hours 9-17, lunch 12-14, 600 calls/month, 10 minute tick.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}

	if cfg.Trigger.Interval == "" {
		cfg.Trigger.Interval = "10m"
	}
	if cfg.Trigger.Timezone == "" {
		cfg.Trigger.Timezone = "Europe/Rome"
	}

	e := &cfg.Engine
	if len(e.Business.Days) == 0 {
		e.Business.Days = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	}
	if e.Business.StartHour == 0 && e.Business.EndHour == 0 {
		e.Business.StartHour = 9
		e.Business.EndHour = 17
	}
	if e.Lunch.StartHour == 0 && e.Lunch.EndHour == 0 {
		e.Lunch.StartHour = 12
		e.Lunch.EndHour = 14
	}
	if e.Lunch.FactorMin == 0 && e.Lunch.FactorMax == 0 {
		e.Lunch.FactorMin = 0.5
		e.Lunch.FactorMax = 0.9
	}
	if e.Activity.BaseMin == 0 && e.Activity.BaseMax == 0 {
		e.Activity.BaseMin = 0.85
		e.Activity.BaseMax = 0.98
	}
	if e.Activity.DayFactors == nil {
		e.Activity.DayFactors = map[string]float64{
			"monday": 0.7,
			"friday": 0.8,
		}
	}
	// Gate probabilities default only when absent: an explicit 0 in the
	// file means the operator turned that gate off.
	if e.Activity.DayWobble == nil {
		e.Activity.DayWobble = f64(0.08)
	}
	if e.Gates.DaySkip == nil {
		e.Gates.DaySkip = f64(0.04)
	}
	if e.Gates.HourSkipDefault == nil {
		e.Gates.HourSkipDefault = f64(0.20)
	}
	if e.Gates.HourSkip == nil {
		e.Gates.HourSkip = map[string]float64{
			"12": 0.35,
			"13": 0.35,
		}
	}
	if e.Gates.MicroBreak == nil {
		e.Gates.MicroBreak = f64(0.05)
	}
	if e.Vacation.WeekProbability == nil {
		e.Vacation.WeekProbability = f64(0.10)
	}
	if e.Vacation.Ranges == nil {
		e.Vacation.Ranges = []DateRange{
			{From: "08-01", To: "08-31"},
			{From: "12-20", To: "01-06"},
		}
	}
	j := &e.Jitter
	if j.ShortWeight == 0 && j.LongWeight == 0 {
		j.ShortWeight = 0.15
		j.LongWeight = 0.15
	}
	if j.ShortMax == "" {
		j.ShortMax = "60s"
	}
	if j.ExpMean == "" {
		j.ExpMean = "3m"
	}
	if j.ExpCap == "" {
		j.ExpCap = "15m"
	}
	if j.LongMin == "" {
		j.LongMin = "5m"
	}
	if j.LongMax == "" {
		j.LongMax = "15m"
	}

	if cfg.Quota.Ceiling == 0 {
		cfg.Quota.Ceiling = 600
	}
	if cfg.Quota.Storage.Driver == "" {
		cfg.Quota.Storage.Driver = "file"
	}
	if cfg.Quota.Storage.Path == "" {
		cfg.Quota.Storage.Path = "./cadence_state/quota.json"
	}

	if cfg.Webhook.URLEnv == "" {
		cfg.Webhook.URLEnv = "CADENCE_WEBHOOK_URL"
	}
	if cfg.Webhook.Timeout == "" {
		cfg.Webhook.Timeout = "30s"
	}
	if cfg.Webhook.Source == "" {
		cfg.Webhook.Source = "cadence"
	}

	if cfg.Notify != nil {
		if cfg.Notify.TokenEnv == "" {
			cfg.Notify.TokenEnv = "CADENCE_TELEGRAM_TOKEN"
		}
		if cfg.Notify.RatePerSec <= 0 {
			cfg.Notify.RatePerSec = 1
		}
	}
}

func f64(v float64) *float64 { return &v }
