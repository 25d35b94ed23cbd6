// Package quota tracks the persisted monthly call counter and enforces the
// hard ceiling. The counter resets exactly when the stored month differs
// from the current tick's month; it never carries over.
package quota

import (
	"context"
	"errors"
	"time"

	logx "cadence/pkg/logx"
)

// ErrCeilingReached is returned when RecordCall is attempted at capacity.
// Callers must check HasCapacity first; hitting this error is a bug.
var ErrCeilingReached = errors.New("quota: monthly ceiling reached")

// Record is the persisted state, one logical instance per deployment.
type Record struct {
	Month    string     `json:"month"`
	Count    int        `json:"count"`
	LastCall *time.Time `json:"last_call"`
}

// MonthKey formats t as the record's "YYYY-MM" month key.
func MonthKey(t time.Time) string { return t.Format("2006-01") }

// Tracker combines the ceiling with a Store.
type Tracker struct {
	ceiling int
	store   Store
	log     logx.Logger
}

func NewTracker(ceiling int, store Store, log logx.Logger) *Tracker {
	return &Tracker{ceiling: ceiling, store: store, log: log}
}

func (tr *Tracker) Ceiling() int { return tr.ceiling }

// SetCeiling applies a new ceiling (config hot reload). An in-flight month
// keeps its count; only the capacity check changes.
func (tr *Tracker) SetCeiling(n int) {
	if n > 0 {
		tr.ceiling = n
	}
}

// Load returns the record for the month containing now. A missing, corrupt,
// or unreadable store yields a fresh zero record (self-healing, warned); a
// stored record from an earlier month rolls over to zero.
func (tr *Tracker) Load(ctx context.Context, now time.Time) Record {
	month := MonthKey(now)
	rec, ok, err := tr.store.Load(ctx)
	if err != nil {
		tr.log.Warn("quota record unreadable; starting fresh",
			logx.String("month", month), logx.Err(err))
		return Record{Month: month}
	}
	if !ok {
		return Record{Month: month}
	}
	if rec.Month != month {
		tr.log.Info("month rollover; counter reset",
			logx.String("from", rec.Month), logx.String("to", month),
			logx.Int("final_count", rec.Count))
		return Record{Month: month}
	}
	if rec.Count < 0 {
		rec.Count = 0
	}
	return rec
}

// HasCapacity reports whether one more call fits under the ceiling.
func (tr *Tracker) HasCapacity(rec Record) bool {
	return rec.Count < tr.ceiling
}

// RecordCall increments the counter and persists the record. Call it only
// after the external call is confirmed attempted: a crash between call and
// persist undercounts, which is the tolerated failure direction; the
// reverse (counting a call that never happened) must not occur.
//
// The updated record is returned even when persistence fails so the caller
// can surface the risk of undercounting prominently.
func (tr *Tracker) RecordCall(ctx context.Context, rec Record, now time.Time) (Record, error) {
	// The jitter delay can carry a tick across midnight into a new month;
	// the count belongs to the month the call lands in.
	if rec.Month != MonthKey(now) {
		rec = Record{Month: MonthKey(now)}
	}
	if rec.Count >= tr.ceiling {
		return rec, ErrCeilingReached
	}
	ts := now
	rec.Count++
	rec.LastCall = &ts
	if err := tr.store.Save(ctx, rec); err != nil {
		return rec, err
	}
	return rec, nil
}
