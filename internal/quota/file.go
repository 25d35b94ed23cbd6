package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logx "cadence/pkg/logx"
)

// fileStore keeps the record as a small JSON document:
//
//	{ "month": "2024-10", "count": 42, "last_call": "2024-10-07T10:13:05+02:00" }
//
// Writes go through a temp file + rename so a crash mid-write never leaves
// a truncated record behind.
type fileStore struct {
	path string
}

func openFile(cfg StoreConfig, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("quota: file store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	log.Debug("quota store opened", logx.String("driver", "file"), logx.String("path", path))
	return &fileStore{path: path}, nil
}

func (s *fileStore) Load(_ context.Context) (Record, bool, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, false, fmt.Errorf("quota: corrupt record file %s: %w", s.path, err)
	}
	return rec, true, nil
}

func (s *fileStore) Save(_ context.Context, rec Record) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (s *fileStore) Close() error { return nil }
