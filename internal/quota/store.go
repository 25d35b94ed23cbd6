package quota

import (
	"context"
	"fmt"
	"strings"
	"time"

	logx "cadence/pkg/logx"
)

// Store persists the single quota record.
//
// Load returns ok=false when no record exists yet. A non-nil error means
// the stored state was unreadable; the tracker treats that as absent.
type Store interface {
	Load(ctx context.Context) (Record, bool, error)
	Save(ctx context.Context, rec Record) error
	Close() error
}

type StoreConfig struct {
	Driver      string // "file" or "sqlite"
	Path        string
	BusyTimeout time.Duration // sqlite only
}

// Open selects a backend by driver name.
func Open(cfg StoreConfig, log logx.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite":
		return openSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("quota: unknown store driver %q", cfg.Driver)
	}
}
