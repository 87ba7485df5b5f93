package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLJournal persists run events in MySQL for shared deployments where
// several processes append to the same audit trail.
type MySQLJournal struct {
	db *sql.DB
}

// NewMySQLJournal connects with the given DSN, e.g.
// "user:pass@tcp(localhost:3306)/agentflow?parseTime=true".
func NewMySQLJournal(dsn string) (*MySQLJournal, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	j := &MySQLJournal{db: db}
	if err := j.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *MySQLJournal) createTables(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS run_journal (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(255) NOT NULL,
			seq INT NOT NULL,
			executor VARCHAR(255) NOT NULL,
			kind VARCHAR(64) NOT NULL,
			detail TEXT NOT NULL,
			at TIMESTAMP(6) NOT NULL,
			INDEX idx_journal_run_id (run_id),
			UNIQUE KEY unique_run_seq (run_id, seq)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create run_journal table: %w", err)
	}
	return nil
}

// Append implements Journal.
func (j *MySQLJournal) Append(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO run_journal (run_id, seq, executor, kind, detail, at) VALUES (?, ?, ?, ?, ?, ?)",
		e.RunID, e.Seq, e.Executor, e.Kind, e.Detail, e.At,
	)
	if err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

// Entries implements Journal.
func (j *MySQLJournal) Entries(ctx context.Context, runID string) ([]Entry, error) {
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
		if err := rows.Scan(&e.Seq, &e.Executor, &e.Kind, &e.Detail, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
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
func (j *MySQLJournal) Close() error {
	return j.db.Close()
}
