// Package state persists the small durable pieces the sync worker needs
// across restarts: per-report sync state, the scheduler cursor, and a SQLite
// history of successful writes.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// SyncState is the persisted change-detection record for one report identity.
type SyncState struct {
	Hash        string  `json:"hash"`
	LastWriteTS float64 `json:"last_write_ts"`
}

// Store keeps one JSON file per report identity under a state directory.
// A single worker process owns the directory; concurrent instances racing on
// the same files are not supported.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// path derives a filesystem-safe file name from the report's display name.
func (s *Store) path(report string) string {
	safe := unsafeChars.ReplaceAllString(report, "_")
	return filepath.Join(s.dir, "summary_state_"+safe+".json")
}

// Load reads the sync state of a report. A missing or unreadable file yields
// the zero state, which always compares as changed.
func (s *Store) Load(report string) SyncState {
	var st SyncState
	data, err := os.ReadFile(s.path(report))
	if err != nil {
		return st
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return SyncState{}
	}
	return st
}

// Save persists the sync state of a report.
func (s *Store) Save(report string, st SyncState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state for %s: %w", report, err)
	}
	if err := os.WriteFile(s.path(report), data, 0o644); err != nil {
		return fmt.Errorf("write state for %s: %w", report, err)
	}
	return nil
}

type cursorEntry struct {
	Cursor int `json:"cursor"`
}

func (s *Store) cursorPath() string {
	return filepath.Join(s.dir, "scheduler_cursor.json")
}

// LoadCursor reads the round-robin cursor, defaulting to 0.
func (s *Store) LoadCursor() int {
	data, err := os.ReadFile(s.cursorPath())
	if err != nil {
		return 0
	}
	var e cursorEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return 0
	}
	return e.Cursor
}

// SaveCursor persists the round-robin cursor.
func (s *Store) SaveCursor(cursor int) error {
	data, err := json.Marshal(cursorEntry{Cursor: cursor})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.cursorPath(), data, 0o644); err != nil {
		return fmt.Errorf("write cursor: %w", err)
	}
	return nil
}
