package state

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// History records successful report writes in SQLite, so the status endpoint
// can answer "when did this report last actually change" without touching the
// spreadsheet API.
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the history database at dbPath.
func OpenHistory(dbPath string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	// single writer; SQLite prefers one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	h := &History{db: db}
	if err := h.initSchema(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *History) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := h.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("init history schema: %w", err)
	}
	return nil
}

func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

// Record appends one successful write.
func (h *History) Record(report, contentHash, cycleID string, rowCount int) error {
	_, err := h.db.Exec(`
		INSERT INTO sync_history (report, content_hash, row_count, cycle_id)
		VALUES (?, ?, ?, ?)
	`, report, contentHash, rowCount, cycleID)
	if err != nil {
		return fmt.Errorf("record sync history: %w", err)
	}
	return nil
}

// HistoryEntry is one recorded report write.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	Report      string    `json:"report"`
	ContentHash string    `json:"contentHash"`
	RowCount    int       `json:"rowCount"`
	CycleID     string    `json:"cycleId"`
	WrittenAt   time.Time `json:"writtenAt"`
}

// Recent returns the most recent writes, newest first.
func (h *History) Recent(limit int) ([]HistoryEntry, error) {
	rows, err := h.db.Query(`
		SELECT id, report, content_hash, row_count, cycle_id, written_at
		FROM sync_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sync history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// LastPerReport returns the latest write per report identity.
func (h *History) LastPerReport() ([]HistoryEntry, error) {
	rows, err := h.db.Query(`
		SELECT id, report, content_hash, row_count, cycle_id, written_at
		FROM sync_history
		WHERE id IN (SELECT MAX(id) FROM sync_history GROUP BY report)
		ORDER BY report
	`)
	if err != nil {
		return nil, fmt.Errorf("query last writes: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]HistoryEntry, error) {
	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Report, &e.ContentHash, &e.RowCount, &e.CycleID, &e.WrittenAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
