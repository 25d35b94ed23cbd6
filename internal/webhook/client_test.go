package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logx "cadence/pkg/logx"
)

func TestInvokePostsPayload(t *testing.T) {
	t.Parallel()

	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %s", ct)
		}
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &got); err != nil {
			t.Errorf("payload not json: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	inv, err := New(Config{
		URL:      srv.URL,
		Source:   "cadence",
		Timezone: "Europe/Rome",
	}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	now := time.Date(2024, 10, 8, 10, 13, 0, 0, time.UTC)
	if err := inv.Invoke(context.Background(), now); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got.Source != "cadence" || got.Timezone != "Europe/Rome" {
		t.Fatalf("payload = %+v", got)
	}
	if got.Timestamp != now.Format(time.RFC3339) {
		t.Fatalf("timestamp = %s, want %s", got.Timestamp, now.Format(time.RFC3339))
	}
}

func TestInvokeNonSuccessStatusIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	inv, err := New(Config{URL: srv.URL}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := inv.Invoke(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestInvokeMinSpacing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	inv, err := New(Config{URL: srv.URL, MinSpacing: time.Hour}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := inv.Invoke(context.Background(), time.Now()); err != nil {
		t.Fatalf("first Invoke: %v", err)
	}
	if err := inv.Invoke(context.Background(), time.Now()); !errors.Is(err, ErrTooSoon) {
		t.Fatalf("second Invoke: err = %v, want ErrTooSoon", err)
	}
}

func TestNewRejectsMissingURL(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty URL")
	}
	if _, err := New(Config{URL: "::bad::"}, logx.Nop()); err == nil {
		t.Fatal("expected error for malformed URL")
	}
}

func TestTargetIsRedacted(t *testing.T) {
	t.Parallel()

	inv, err := New(Config{URL: "https://hooks.example.com/secret/path/token123"}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := inv.Target(); got != "hooks.example.com" {
		t.Fatalf("Target = %q, want host only", got)
	}
}
