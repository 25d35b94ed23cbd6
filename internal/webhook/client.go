// Package webhook performs the one outbound call the engine gates.
// The endpoint URL is a secret: it is read from the environment, kept out
// of every log line, and only its host appears in traces.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	logx "cadence/pkg/logx"
)

// ErrTooSoon means the minimum-spacing floor rejected the call. It is a
// skip, not a failure: the quota is untouched and the next tick retries.
var ErrTooSoon = errors.New("webhook: minimum spacing not elapsed")

type Config struct {
	URL     string
	Timeout time.Duration
	// MinSpacing is a hard floor between two calls, independent of the
	// quota. Zero disables it.
	MinSpacing time.Duration
	// Source and Timezone are echoed in the payload.
	Source   string
	Timezone string
}

type payload struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	Timezone  string `json:"timezone"`
}

type Invoker struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	log     logx.Logger

	redacted string
}

func New(cfg Config, log logx.Logger) (*Invoker, error) {
	raw := strings.TrimSpace(cfg.URL)
	if raw == "" {
		return nil, errors.New("webhook: endpoint URL is not set")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("webhook: endpoint URL is malformed")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	inv := &Invoker{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		log:      log,
		redacted: u.Host,
	}
	if cfg.MinSpacing > 0 {
		inv.limiter = rate.NewLimiter(rate.Every(cfg.MinSpacing), 1)
	}
	return inv, nil
}

// Target returns the redacted endpoint (host only) for traces.
func (i *Invoker) Target() string { return i.redacted }

// Invoke performs one POST. Non-2xx responses are errors; nothing is
// retried here, the next periodic tick is the retry mechanism.
func (i *Invoker) Invoke(ctx context.Context, now time.Time) error {
	if i.limiter != nil && !i.limiter.Allow() {
		return ErrTooSoon
	}

	body, err := json.Marshal(payload{
		Timestamp: now.Format(time.RFC3339),
		Source:    i.cfg.Source,
		Timezone:  i.cfg.Timezone,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: call to %s failed: %w", i.redacted, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: %s returned status %d", i.redacted, resp.StatusCode)
	}

	i.log.Info("webhook called",
		logx.String("target", i.redacted),
		logx.Int("status", resp.StatusCode),
		logx.Duration("took", time.Since(start)))
	return nil
}
