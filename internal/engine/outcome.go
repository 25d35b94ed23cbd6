package engine

import "time"

// Reason identifies the check that blocked a tick, if any.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonQuotaExhausted
	ReasonVacation
	ReasonOutsideWindow
	ReasonDaySkip
	ReasonHourSkip
	ReasonMicroBreak
	ReasonActivitySample
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonQuotaExhausted:
		return "monthly ceiling reached"
	case ReasonVacation:
		return "vacation period"
	case ReasonOutsideWindow:
		return "outside business window"
	case ReasonDaySkip:
		return "day skipped"
	case ReasonHourSkip:
		return "hour skipped"
	case ReasonMicroBreak:
		return "micro break"
	case ReasonActivitySample:
		return "activity sample failed"
	default:
		return "unknown"
	}
}

// Outcome is the ephemeral result of one evaluation pass.
// Probability and Jitter are only meaningful once the chain reached the
// activity sample; both stay zero on earlier blocks.
type Outcome struct {
	ShouldCall  bool
	Reason      Reason
	Probability float64
	Jitter      time.Duration
}
