package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/worklog-reconciler/internal/persistence"
)

// instantLayout stores instants as second-resolution UTC RFC3339 strings so
// that lexical ordering matches temporal ordering.
const instantLayout = time.RFC3339

// WorkLogRepository implements persistence.WorkLogRepository on a Store.
type WorkLogRepository struct {
	store       *Store
	idGenerator func() string
	now         func() time.Time
}

// NewWorkLogRepository wires a repository over an open store. idGenerator
// supplies identifiers for records created without one and now stamps
// audit columns; nil values fall back to uuid generation and the wall clock.
func NewWorkLogRepository(store *Store, idGenerator func() string, now func() time.Time) *WorkLogRepository {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &WorkLogRepository{store: store, idGenerator: idGenerator, now: now}
}

// Create stores a single worklog and returns the persisted record.
func (r *WorkLogRepository) Create(ctx context.Context, worklog persistence.WorkLog) (persistence.WorkLog, error) {
	if worklog.ID == "" {
		worklog.ID = r.idGenerator()
	}
	if strings.TrimSpace(worklog.IssueKey) == "" {
		return persistence.WorkLog{}, persistence.ErrConstraintViolation
	}

	stamp := r.now().UTC()
	worklog.CreatedAt = stamp
	worklog.UpdatedAt = stamp

	const query = `
		INSERT INTO worklogs (id, issue_key, summary, project_name, author_account_id, started, time_spent_seconds, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.store.db.ExecContext(ctx, query,
		worklog.ID,
		worklog.IssueKey,
		worklog.Summary,
		worklog.ProjectName,
		worklog.AuthorAccountID,
		formatInstant(worklog.Started),
		worklog.TimeSpentSeconds,
		formatInstant(worklog.CreatedAt),
		formatInstant(worklog.UpdatedAt),
	)
	if err != nil {
		return persistence.WorkLog{}, mapSQLiteError(err)
	}

	return r.Get(ctx, worklog.ID)
}

// Get retrieves a worklog by id.
func (r *WorkLogRepository) Get(ctx context.Context, id string) (persistence.WorkLog, error) {
	const query = `
		SELECT id, issue_key, summary, project_name, author_account_id, started, time_spent_seconds, created_at, updated_at
		FROM worklogs WHERE id = ?
	`
	row := r.store.db.QueryRowContext(ctx, query, id)
	worklog, err := scanWorkLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.WorkLog{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.WorkLog{}, err
	}
	return worklog, nil
}

// Search returns the worklogs matching the criteria ordered by started
// ascending, id as tie-break.
func (r *WorkLogRepository) Search(ctx context.Context, criteria persistence.SearchCriteria) ([]persistence.WorkLog, error) {
	var (
		clauses []string
		args    []any
	)

	if len(criteria.AuthorAccountIDs) > 0 {
		clauses = append(clauses, "author_account_id IN ("+placeholders(len(criteria.AuthorAccountIDs))+")")
		for _, id := range criteria.AuthorAccountIDs {
			args = append(args, id)
		}
	}
	if len(criteria.IssueKeys) > 0 {
		clauses = append(clauses, "issue_key IN ("+placeholders(len(criteria.IssueKeys))+")")
		for _, key := range criteria.IssueKeys {
			args = append(args, key)
		}
	}
	if criteria.From != nil {
		clauses = append(clauses, "started >= ?")
		args = append(args, formatInstant(*criteria.From))
	}
	if criteria.To != nil {
		clauses = append(clauses, "started <= ?")
		args = append(args, formatInstant(*criteria.To))
	}

	query := `
		SELECT id, issue_key, summary, project_name, author_account_id, started, time_spent_seconds, created_at, updated_at
		FROM worklogs
	`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY started ASC, id ASC"

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: search failed: %w", err)
	}
	defer rows.Close()

	var worklogs []persistence.WorkLog
	for rows.Next() {
		worklog, err := scanWorkLog(rows)
		if err != nil {
			return nil, err
		}
		worklogs = append(worklogs, worklog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: search iteration failed: %w", err)
	}
	return worklogs, nil
}

// DeleteByCriteria removes every matching worklog as one unit and returns
// the number of records removed.
func (r *WorkLogRepository) DeleteByCriteria(ctx context.Context, criteria persistence.DeleteCriteria) (int, error) {
	if len(criteria.AuthorAccountIDs) == 0 {
		return 0, persistence.ErrConstraintViolation
	}
	if criteria.From.IsZero() || criteria.To.IsZero() || criteria.To.Before(criteria.From) {
		return 0, persistence.ErrConstraintViolation
	}

	query := "DELETE FROM worklogs WHERE author_account_id IN (" + placeholders(len(criteria.AuthorAccountIDs)) + ") AND started >= ? AND started <= ?"
	args := make([]any, 0, len(criteria.AuthorAccountIDs)+2)
	for _, id := range criteria.AuthorAccountIDs {
		args = append(args, id)
	}
	args = append(args, formatInstant(criteria.From), formatInstant(criteria.To))

	var removed int64
	err := r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return mapSQLiteError(err)
		}
		removed, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkLog(row rowScanner) (persistence.WorkLog, error) {
	var (
		worklog   persistence.WorkLog
		started   string
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&worklog.ID,
		&worklog.IssueKey,
		&worklog.Summary,
		&worklog.ProjectName,
		&worklog.AuthorAccountID,
		&started,
		&worklog.TimeSpentSeconds,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.WorkLog{}, err
	}

	if worklog.Started, err = parseInstant(started); err != nil {
		return persistence.WorkLog{}, fmt.Errorf("sqlite: corrupt started column for %s: %w", worklog.ID, err)
	}
	if worklog.CreatedAt, err = parseInstant(createdAt); err != nil {
		return persistence.WorkLog{}, fmt.Errorf("sqlite: corrupt created_at column for %s: %w", worklog.ID, err)
	}
	if worklog.UpdatedAt, err = parseInstant(updatedAt); err != nil {
		return persistence.WorkLog{}, fmt.Errorf("sqlite: corrupt updated_at column for %s: %w", worklog.ID, err)
	}
	return worklog, nil
}

func formatInstant(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(instantLayout)
}

func parseInstant(value string) (time.Time, error) {
	return time.Parse(instantLayout, value)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
