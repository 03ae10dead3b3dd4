package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tracefile/internal/storage"
	"tracefile/internal/timeline"

	_ "modernc.org/sqlite"
)

// fileTypeSep joins suffix filters in a single column. It cannot appear in a
// command line argument typed by a user.
const fileTypeSep = "\x1f"

// Store archives timelines inside a SQLite case database.
type Store struct {
	db *sql.DB
}

// Open initializes (or reuses) a SQLite database at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path cannot be empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        root TEXT NOT NULL,
        output TEXT NOT NULL,
        start_date INTEGER,
        end_date INTEGER,
        file_types TEXT NOT NULL DEFAULT '',
        started_at INTEGER NOT NULL,
        finished_at INTEGER NOT NULL,
        record_count INTEGER NOT NULL,
        failure_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS timeline_entries (
        run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
        seq INTEGER NOT NULL,
        path TEXT NOT NULL,
        created INTEGER NOT NULL,
        modified INTEGER NOT NULL,
        accessed INTEGER NOT NULL,
        PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS run_failures (
        run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
        path TEXT NOT NULL,
        kind TEXT NOT NULL,
        message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_timeline_entries_created ON timeline_entries(created);
`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// SaveRun stores a run with its timeline and failures in one transaction.
func (s *Store) SaveRun(ctx context.Context, run storage.Run, tl timeline.Timeline, failures []storage.Failure) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", run.ID, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs(id, root, output, start_date, end_date, file_types, started_at, finished_at, record_count, failure_count)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, run.ID, run.Root, run.Output, nullableTime(run.StartDate), nullableTime(run.EndDate),
		strings.Join(run.FileTypes, fileTypeSep), run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(),
		len(tl), len(failures))
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	entryStmt, err := tx.PrepareContext(ctx, `
INSERT INTO timeline_entries(run_id, seq, path, created, modified, accessed)
VALUES(?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return fmt.Errorf("prepare timeline insert: %w", err)
	}
	defer entryStmt.Close()

	for seq, record := range tl {
		if _, err = entryStmt.ExecContext(ctx, run.ID, seq, record.Path,
			record.Created.UnixNano(), record.Modified.UnixNano(), record.Accessed.UnixNano()); err != nil {
			return fmt.Errorf("insert entry %s: %w", record.Path, err)
		}
	}

	for _, failure := range failures {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO run_failures(run_id, path, kind, message) VALUES(?, ?, ?, ?)
`, run.ID, failure.Path, failure.Kind, failure.Message); err != nil {
			return fmt.Errorf("insert failure %s: %w", failure.Path, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

// Runs lists archived runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]storage.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, root, output, start_date, end_date, file_types, started_at, finished_at, record_count, failure_count
FROM runs ORDER BY started_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []storage.Run
	for rows.Next() {
		var (
			run        storage.Run
			startDate  sql.NullInt64
			endDate    sql.NullInt64
			fileTypes  string
			startedAt  int64
			finishedAt int64
		)
		if scanErr := rows.Scan(&run.ID, &run.Root, &run.Output, &startDate, &endDate, &fileTypes,
			&startedAt, &finishedAt, &run.Records, &run.Failures); scanErr != nil {
			return nil, fmt.Errorf("scan run: %w", scanErr)
		}

		if startDate.Valid {
			run.StartDate = time.Unix(0, startDate.Int64)
		}
		if endDate.Valid {
			run.EndDate = time.Unix(0, endDate.Int64)
		}
		if fileTypes != "" {
			run.FileTypes = strings.Split(fileTypes, fileTypeSep)
		}
		run.StartedAt = time.Unix(0, startedAt)
		run.FinishedAt = time.Unix(0, finishedAt)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// Timeline restores the timeline archived for runID in its original order.
func (s *Store) Timeline(ctx context.Context, runID string) (timeline.Timeline, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT path, created, modified, accessed FROM timeline_entries WHERE run_id = ? ORDER BY seq
`, runID)
	if err != nil {
		return nil, fmt.Errorf("query timeline %s: %w", runID, err)
	}
	defer rows.Close()

	tl := timeline.Timeline{}
	for rows.Next() {
		var (
			path                        string
			created, modified, accessed int64
		)
		if scanErr := rows.Scan(&path, &created, &modified, &accessed); scanErr != nil {
			return nil, fmt.Errorf("scan entry: %w", scanErr)
		}
		tl = append(tl, timeline.Record{
			Path:     path,
			Created:  time.Unix(0, created),
			Modified: time.Unix(0, modified),
			Accessed: time.Unix(0, accessed),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline %s: %w", runID, err)
	}

	return tl, nil
}

// Failures returns the unreadable files recorded for runID.
func (s *Store) Failures(ctx context.Context, runID string) ([]storage.Failure, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT path, kind, message FROM run_failures WHERE run_id = ? ORDER BY rowid
`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failures %s: %w", runID, err)
	}
	defer rows.Close()

	var failures []storage.Failure
	for rows.Next() {
		var failure storage.Failure
		if scanErr := rows.Scan(&failure.Path, &failure.Kind, &failure.Message); scanErr != nil {
			return nil, fmt.Errorf("scan failure: %w", scanErr)
		}
		failures = append(failures, failure)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures %s: %w", runID, err)
	}

	return failures, nil
}

func nullableTime(ts time.Time) sql.NullInt64 {
	if ts.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: ts.UnixNano(), Valid: true}
}
