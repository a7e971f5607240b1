// Package audit persists a trail of branch mutations to a local sqlite
// database so staff actions can be reviewed after the fact.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded mutation.
type Entry struct {
	Op        string
	BranchIDs []string
	Result    string // "ok", "partial", "failed"
	Message   string
	CreatedAt time.Time
}

// Log writes entries to sqlite.
type Log struct {
	db *sql.DB
}

// Open creates or opens the audit database at path.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS mutations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		op TEXT NOT NULL,
		branch_ids TEXT NOT NULL,
		result TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_mutations_created_at ON mutations(created_at);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit schema: %w", err)
	}
	return &Log{db: db}, nil
}

// Record inserts one entry. A zero CreatedAt is stamped with now.
func (l *Log) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO mutations (op, branch_ids, result, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Op, strings.Join(e.BranchIDs, ","), e.Result, e.Message, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT op, branch_ids, result, message, created_at FROM mutations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ids string
		if err := rows.Scan(&e.Op, &ids, &e.Result, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		if ids != "" {
			e.BranchIDs = strings.Split(ids, ",")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (l *Log) Close() error {
	return l.db.Close()
}
