package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/example/worklog-reconciler/internal/tracker"
	"github.com/example/worklog-reconciler/internal/worklog"
)

// WorkLogRepository captures the persistence interactions needed by the
// services. Implementations live outside this package.
type WorkLogRepository interface {
	// DeleteByCriteria bulk-deletes matching records as one unit and
	// returns the number removed.
	DeleteByCriteria(ctx context.Context, criteria DeleteCriteria) (int, error)
	// Create stores one entry; every call may fail independently.
	Create(ctx context.Context, entry worklog.Entry) (worklog.Entry, error)
	// Search loads the entries matching the criteria.
	Search(ctx context.Context, criteria SearchCriteria) ([]worklog.Entry, error)
}

// SyncService saves the session's working copy with a whole-range replace:
// the server range is treated as a materialized view rebuilt from the
// client's declared desired state. Re-running a save is safe; it always
// re-derives the full state for the window.
type SyncService struct {
	repo    WorkLogRepository
	session *tracker.Tracker
	logger  *slog.Logger
	now     func() time.Time
}

// NewSyncService wires dependencies for save operations.
func NewSyncService(repo WorkLogRepository, session *tracker.Tracker, now func() time.Time) *SyncService {
	return NewSyncServiceWithLogger(repo, session, now, nil)
}

// NewSyncServiceWithLogger wires dependencies and a base logger.
func NewSyncServiceWithLogger(repo WorkLogRepository, session *tracker.Tracker, now func() time.Time, logger *slog.Logger) *SyncService {
	if now == nil {
		now = time.Now
	}
	return &SyncService{
		repo:    repo,
		session: session,
		logger:  defaultLogger(logger),
		now:     now,
	}
}

// Commit replaces the server's records for the window with the current
// working copy: one bulk delete, then one create per working-copy event in
// the window. Remote failures are folded into the result, never raised; on
// completion the session is promoted to authoritative regardless of
// partial failures.
func (s *SyncService) Commit(ctx context.Context, window worklog.Window, authorAccountID string) (SyncResult, error) {
	if s == nil || s.repo == nil || s.session == nil {
		return SyncResult{}, ErrNotConfigured
	}

	logger := serviceLogger(ctx, s.logger, "sync", "commit", "author", authorAccountID)

	var result SyncResult

	// Delete phase. A failing bulk delete is recorded as one aggregate
	// error and does not abort the create phase.
	removed, err := s.repo.DeleteByCriteria(ctx, DeleteCriteria{
		AuthorAccountIDs: []string{authorAccountID},
		From:             window.From,
		To:               window.To,
	})
	if err != nil {
		logger.Warn("bulk delete failed", "error", err, "kind", ErrorKind(err))
		result.Deleted.Failed = 1
		result.Deleted.Errors = append(result.Deleted.Errors, SyncError{
			Message: "bulk delete failed: " + err.Error(),
		})
	} else {
		result.Deleted.Success = removed
	}

	// Create phase. The delete phase has fully completed by now, so a
	// late-arriving bulk delete cannot swallow a fresh create. Entries are
	// dispatched concurrently; aggregation is order-independent and one
	// failure never cancels the rest.
	events := s.session.EventsInWindow(window, authorAccountID)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, event := range events {
		entry := event.Resource
		entry.ID = "" // the server assigns persisted identifiers

		if vErr := entry.Validate(); vErr != nil {
			mu.Lock()
			result.Created.Failed++
			result.Created.Errors = append(result.Created.Errors, newSyncError(event, vErr))
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(event worklog.Event, entry worklog.Entry) {
			defer wg.Done()
			_, err := s.repo.Create(ctx, entry)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Created.Failed++
				result.Created.Errors = append(result.Created.Errors, newSyncError(event, err))
				return
			}
			result.Created.Success++
		}(event, entry)
	}
	wg.Wait()

	result.TotalSuccess = result.Deleted.Success + result.Created.Success
	result.TotalFailed = result.Deleted.Failed + result.Created.Failed

	// The local state is now authoritative; it is not re-read from the
	// server even when some calls failed.
	s.session.MarkSynchronized()

	logger.Info("commit finished",
		"deleted", result.Deleted.Success,
		"created", result.Created.Success,
		"failed", result.TotalFailed,
	)

	return result, nil
}

func newSyncError(event worklog.Event, err error) SyncError {
	return SyncError{
		EventID:  event.ID,
		IssueKey: event.Resource.IssueKey,
		Started:  event.Start,
		Message:  err.Error(),
	}
}
