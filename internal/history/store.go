// Package history persists a record of completed transcription runs in
// SQLite.
//
// The store is an archive, not a work queue: rows are written once after a
// successful run and read back for the history command. A file lock beside
// the database keeps concurrent scribe invocations from interleaving writes;
// WAL mode and a busy timeout handle readers.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    input_path TEXT NOT NULL,
    output_path TEXT NOT NULL,
    format TEXT NOT NULL,
    model TEXT NOT NULL,
    language TEXT NOT NULL,
    audio_seconds REAL NOT NULL,
    wall_seconds REAL NOT NULL,
    rtf REAL NOT NULL,
    speakers INTEGER NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

// Run is one completed transcription invocation.
type Run struct {
	ID           string
	InputPath    string
	OutputPath   string
	Format       string
	Model        string
	Language     string
	AudioSeconds float64
	WallSeconds  float64
	RTF          float64
	Speakers     int
	CreatedAt    time.Time
}

// Store manages run-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open connects to the history database under dataDir, creating it and its
// schema on first use. The advisory lock is held until Close.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, errors.New("data directory required")
	}

	lock := flock.New(filepath.Join(dataDir, "history.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire history lock: %w", err)
	}
	if !ok {
		return nil, errors.New("history database is locked by another scribe process")
	}

	dbPath := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath, lock: lock}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection and the advisory lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if s.db != nil {
		firstErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Record inserts a completed run, assigning its ID and timestamp.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.InputPath == "" {
		return Run{}, errors.New("input path required")
	}
	run.ID = uuid.NewString()
	run.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            id, input_path, output_path, format, model, language,
            audio_seconds, wall_seconds, rtf, speakers, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.InputPath,
		run.OutputPath,
		run.Format,
		run.Model,
		run.Language,
		run.AudioSeconds,
		run.WallSeconds,
		run.RTF,
		run.Speakers,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, input_path, output_path, format, model, language,
            audio_seconds, wall_seconds, rtf, speakers, created_at
         FROM runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(
			&run.ID,
			&run.InputPath,
			&run.OutputPath,
			&run.Format,
			&run.Model,
			&run.Language,
			&run.AudioSeconds,
			&run.WallSeconds,
			&run.RTF,
			&run.Speakers,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			run.CreatedAt = ts
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Clear removes every recorded run and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted runs: %w", err)
	}
	return count, nil
}
