// Package sqlite implements the service.Service interface on a local
// SQLite database. It honours the same contract as the hosted store:
// server-assigned IDs that are never reused, id-descending listing and
// rows echoed back from insert and update.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "modernc.org/sqlite"

	"supatodo/internal/service"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store implements service.Service using SQLite.
type Store struct {
	db    *sql.DB
	table string
}

// Open opens (creating if needed) the database at path and ensures the
// table exists.
func Open(ctx context.Context, path, table string) (*Store, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, table: table}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT    NOT NULL CHECK (length(trim(content)) > 0),
		done    INTEGER NOT NULL DEFAULT 0
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListTasks returns every task ordered by ID descending.
func (s *Store) ListTasks(ctx context.Context) ([]service.Task, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, content, done FROM %q ORDER BY id DESC`, s.table))
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return scanTasks(rows)
}

// InsertTask creates a task and returns the inserted row.
func (s *Store) InsertTask(ctx context.Context, t service.NewTask) ([]service.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`INSERT INTO %q (content, done) VALUES (?, ?) RETURNING id, content, done`, s.table),
		t.Content, t.Done)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return scanTasks(rows)
}

// SetDone updates the done flag and returns the updated row, if any.
func (s *Store) SetDone(ctx context.Context, id int64, done bool) ([]service.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`UPDATE %q SET done = ? WHERE id = ? RETURNING id, content, done`, s.table),
		done, id)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return scanTasks(rows)
}

// DeleteTask deletes the task with the given ID. Deleting a missing ID
// is not an error.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q WHERE id = ?`, s.table), id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func scanTasks(rows *sql.Rows) ([]service.Task, error) {
	defer rows.Close()

	result := make([]service.Task, 0)
	for rows.Next() {
		var t service.Task
		if err := rows.Scan(&t.ID, &t.Content, &t.Done); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	return result, nil
}
