package main

import (
	"context"

	"github.com/example/worklog-reconciler/internal/application"
	"github.com/example/worklog-reconciler/internal/persistence"
	"github.com/example/worklog-reconciler/internal/persistence/sqlite"
	"github.com/example/worklog-reconciler/internal/worklog"
)

// workLogRepositoryAdapter bridges the persistence layer's record types to
// the entry types the application services speak.
type workLogRepositoryAdapter struct {
	repo *sqlite.WorkLogRepository
}

func newWorkLogRepositoryAdapter(store *sqlite.Store) workLogRepositoryAdapter {
	return workLogRepositoryAdapter{repo: sqlite.NewWorkLogRepository(store, nil, nil)}
}

func (a workLogRepositoryAdapter) Create(ctx context.Context, entry worklog.Entry) (worklog.Entry, error) {
	record, err := a.repo.Create(ctx, persistence.WorkLog{
		ID:               entry.ID,
		IssueKey:         entry.IssueKey,
		Summary:          entry.Summary,
		ProjectName:      entry.ProjectName,
		AuthorAccountID:  entry.AuthorAccountID,
		Started:          entry.Started,
		TimeSpentSeconds: entry.TimeSpentSeconds,
	})
	if err != nil {
		return worklog.Entry{}, err
	}
	return entryFromRecord(record), nil
}

func (a workLogRepositoryAdapter) Search(ctx context.Context, criteria application.SearchCriteria) ([]worklog.Entry, error) {
	records, err := a.repo.Search(ctx, persistence.SearchCriteria{
		AuthorAccountIDs: criteria.AuthorAccountIDs,
		From:             criteria.From,
		To:               criteria.To,
	})
	if err != nil {
		return nil, err
	}
	entries := make([]worklog.Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, entryFromRecord(record))
	}
	return entries, nil
}

func (a workLogRepositoryAdapter) DeleteByCriteria(ctx context.Context, criteria application.DeleteCriteria) (int, error) {
	return a.repo.DeleteByCriteria(ctx, persistence.DeleteCriteria{
		AuthorAccountIDs: criteria.AuthorAccountIDs,
		From:             criteria.From,
		To:               criteria.To,
	})
}

func entryFromRecord(record persistence.WorkLog) worklog.Entry {
	return worklog.Entry{
		ID:               record.ID,
		IssueKey:         record.IssueKey,
		Summary:          record.Summary,
		ProjectName:      record.ProjectName,
		AuthorAccountID:  record.AuthorAccountID,
		Started:          record.Started,
		TimeSpentSeconds: record.TimeSpentSeconds,
	}
}
