package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteJournal persists run events in a SQLite database. Suitable for
// local development and single-host deployments.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens (and if needed creates) the journal database at
// path. Use ":memory:" for an ephemeral journal.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite supports one writer at a time
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	j := &SQLiteJournal{db: db}
	if err := j.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *SQLiteJournal) createTables(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS run_journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			executor TEXT NOT NULL,
			kind TEXT NOT NULL,
			detail TEXT NOT NULL,
			at TIMESTAMP NOT NULL,
			UNIQUE(run_id, seq)
		)
	`
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create run_journal table: %w", err)
	}
	if _, err := j.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_journal_run_id ON run_journal(run_id)"); err != nil {
		return fmt.Errorf("failed to create idx_journal_run_id: %w", err)
	}
	return nil
}

// Append implements Journal.
func (j *SQLiteJournal) Append(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO run_journal (run_id, seq, executor, kind, detail, at) VALUES (?, ?, ?, ?, ?, ?)",
		e.RunID, e.Seq, e.Executor, e.Kind, e.Detail, e.At.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

// Entries implements Journal.
func (j *SQLiteJournal) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT seq, executor, kind, detail, at FROM run_journal WHERE run_id = ? ORDER BY seq",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		e := Entry{RunID: runID}
		var at string
		if err := rows.Scan(&e.Seq, &e.Executor, &e.Kind, &e.Detail, &at); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		if parsed, perr := time.Parse(time.RFC3339Nano, at); perr == nil {
			e.At = parsed
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// Close releases the underlying database handle.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
