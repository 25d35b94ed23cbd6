package quota

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "cadence/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// sqliteStore keeps the record in a single-row table. Useful when a
// deployment already keeps other state in the same db file.
type sqliteStore struct {
	db *sql.DB
}

func openSQLite(cfg StoreConfig, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("quota: sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug("quota store opened", logx.String("driver", "sqlite"), logx.String("path", cfg.Path))
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Load(ctx context.Context) (Record, bool, error) {
	var (
		rec      Record
		lastCall sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT month, count, last_call FROM quota WHERE id = 1`,
	).Scan(&rec.Month, &rec.Count, &lastCall)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	if lastCall.Valid {
		t, perr := time.Parse(time.RFC3339Nano, lastCall.String)
		if perr != nil {
			return Record{}, false, fmt.Errorf("quota: corrupt last_call %q: %w", lastCall.String, perr)
		}
		rec.LastCall = &t
	}
	return rec, true, nil
}

func (s *sqliteStore) Save(ctx context.Context, rec Record) error {
	var lastCall any
	if rec.LastCall != nil {
		lastCall = rec.LastCall.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quota(id, month, count, last_call) VALUES(1,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET month=excluded.month, count=excluded.count, last_call=excluded.last_call`,
		rec.Month, rec.Count, lastCall,
	)
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
