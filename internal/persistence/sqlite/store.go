// Package sqlite implements the worklog repository on SQLite using the
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/example/worklog-reconciler/internal/persistence"
	"github.com/example/worklog-reconciler/internal/persistence/sqlite/migration"
)

// Store manages the SQLite database handle and schema lifecycle.
type Store struct {
	db *sql.DB
}

// Open creates a store for the given DSN and configures the connection.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:worklog.db"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// A single connection serialises writers and keeps :memory: databases
	// from being duplicated per pooled connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: failed to apply %q: %w", pragma, err)
		}
	}

	return &Store{db: db}, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate brings the worklog schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	return migration.NewRunner(s.db).Apply(ctx, schemaMigrations)
}

// WithTransaction executes fn inside a transaction, rolling back when fn
// returns an error and committing otherwise.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: failed to commit transaction: %w", err)
	}
	return nil
}

var schemaMigrations = []migration.Migration{
	{
		Version:     "001",
		Description: "create worklogs table",
		SQL: `
			CREATE TABLE worklogs (
				id TEXT PRIMARY KEY,
				issue_key TEXT NOT NULL,
				summary TEXT NOT NULL DEFAULT '',
				project_name TEXT NOT NULL DEFAULT '',
				author_account_id TEXT NOT NULL,
				started TEXT NOT NULL,
				time_spent_seconds INTEGER NOT NULL CHECK (time_spent_seconds > 0),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)
		`,
	},
	{
		Version:     "002",
		Description: "index worklogs by author and start",
		SQL:         `CREATE INDEX idx_worklogs_author_started ON worklogs (author_account_id, started)`,
	},
}

// mapSQLiteError converts driver failures into persistence sentinels. The
// modernc driver exposes constraint details only through the message text.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	message := err.Error()
	switch {
	case strings.Contains(message, "UNIQUE constraint failed"):
		return persistence.ErrDuplicate
	case strings.Contains(message, "CHECK constraint failed"):
		return persistence.ErrConstraintViolation
	case strings.Contains(message, "FOREIGN KEY constraint failed"):
		return persistence.ErrConstraintViolation
	}
	return err
}
