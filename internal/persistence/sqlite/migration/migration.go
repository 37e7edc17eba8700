// Package migration applies versioned schema migrations against a SQLite
// database, tracking applied versions in a schema_migrations table.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Migration is one versioned schema change.
type Migration struct {
	// Version orders migrations lexically, e.g. "001", "002".
	Version     string
	Description string
	SQL         string
}

// Runner executes pending migrations in version order, each inside its own
// transaction.
type Runner struct {
	db *sql.DB
}

// NewRunner wraps an open database handle.
func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db}
}

// Apply brings the schema up to date. Already-applied versions are skipped;
// a failing migration aborts the run and leaves earlier migrations applied.
func (r *Runner) Apply(ctx context.Context, migrations []Migration) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("migration: runner not initialised")
	}

	if err := r.initVersionTable(ctx); err != nil {
		return err
	}

	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return err
	}

	ordered := make([]Migration, len(migrations))
	copy(ordered, migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })

	for _, m := range ordered {
		if _, done := applied[m.Version]; done {
			continue
		}
		if err := r.execute(ctx, m); err != nil {
			return fmt.Errorf("migration %s (%s): %w", m.Version, m.Description, err)
		}
	}

	return nil
}

// AppliedVersions lists the versions recorded in the tracking table.
func (r *Runner) AppliedVersions(ctx context.Context) ([]string, error) {
	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(applied))
	for version := range applied {
		versions = append(versions, version)
	}
	sort.Strings(versions)
	return versions, nil
}

func (r *Runner) initVersionTable(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migration: failed to initialise version table: %w", err)
	}
	return nil
}

func (r *Runner) appliedVersions(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("migration: failed to read applied versions: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("migration: failed to scan version: %w", err)
		}
		applied[version] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("migration: failed to iterate versions: %w", err)
	}
	return applied, nil
}

func (r *Runner) execute(ctx context.Context, m Migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	appliedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Description, appliedAt,
	); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to record version (rollback error: %v): %w", rbErr, err)
		}
		return fmt.Errorf("failed to record version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
