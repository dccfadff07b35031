package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"xliff-manager/internal/domain"
)

// Store records finished jobs.
type Store interface {
	Save(record domain.JobRecord) (int64, error)
	Recent(limit int, kind domain.JobKind) ([]domain.JobRecord, error)
}

// SQLiteStore persists job history in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates (or opens) the history database at path.
func Open(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// one connection serializes writers
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history db: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		process_id TEXT,
		input TEXT,
		state TEXT NOT NULL,
		reason TEXT,
		started_at TEXT,
		finished_at TEXT
	);`)
	return err
}

// Save inserts a finished job and returns its row id.
func (s *SQLiteStore) Save(record domain.JobRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(`INSERT INTO jobs
		(kind, process_id, input, state, reason, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(record.Kind),
		record.ProcessID,
		record.Input,
		string(record.State),
		record.Reason,
		record.StartedAt.UTC().Format(time.RFC3339Nano),
		record.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Recent returns newest records first; limit <= 0 means all and an empty kind matches any.
func (s *SQLiteStore) Recent(limit int, kind domain.JobKind) ([]domain.JobRecord, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT id, kind, process_id, input, state, reason, started_at, finished_at FROM jobs")
	var args []any
	if kind != "" {
		builder.WriteString(" WHERE kind = ?")
		args = append(args, string(kind))
	}
	builder.WriteString(" ORDER BY id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.JobRecord
	for rows.Next() {
		var rec domain.JobRecord
		var kindValue, state, started, finished string
		var processID, input, reason sql.NullString
		if err := rows.Scan(&rec.ID, &kindValue, &processID, &input, &state, &reason, &started, &finished); err != nil {
			return nil, err
		}
		rec.Kind = domain.JobKind(kindValue)
		rec.State = domain.JobState(state)
		rec.ProcessID = processID.String
		rec.Input = input.String
		rec.Reason = reason.String
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			rec.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, finished); err == nil {
			rec.FinishedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM jobs")
	return err
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
