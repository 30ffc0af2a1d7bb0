package pipeline

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RunRecord is one pipeline run outcome, kept for ops and audit.
// Scoring never reads this data back.
type RunRecord struct {
	ID        string        `json:"id"`
	ResumeID  int           `json:"resume_id"`
	State     string        `json:"state"`
	Kind      string        `json:"kind,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
	CreatedAt string        `json:"created_at"`
}

// RunLog records pipeline runs in a local SQLite database.
type RunLog struct {
	db *sql.DB
}

// OpenRunLog opens (or creates) the run log database under dir.
func OpenRunLog(dir string) (*RunLog, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("runlog: mkdir %s: %w", dir, err)
	}
	dbPath := filepath.Join(dir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("runlog: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		resume_id  INTEGER NOT NULL,
		state      TEXT NOT NULL,
		kind       TEXT,
		elapsed_ms INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: init schema: %w", err)
	}
	return &RunLog{db: db}, nil
}

func (l *RunLog) Close() error { return l.db.Close() }

// Record appends a run outcome.
func (l *RunLog) Record(r RunRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := l.db.Exec(
		`INSERT INTO runs (id, resume_id, state, kind, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.ResumeID, r.State, r.Kind, r.Elapsed.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("runlog: insert: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (l *RunLog) Recent(limit int) ([]RunRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := l.db.Query(
		`SELECT id, resume_id, state, COALESCE(kind,''), elapsed_ms, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: query: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		var r RunRecord
		var elapsedMs int64
		if err := rows.Scan(&r.ID, &r.ResumeID, &r.State, &r.Kind, &elapsedMs, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		results = append(results, r)
	}
	return results, rows.Err()
}
