package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/worklog-reconciler/internal/allocation"
	"github.com/example/worklog-reconciler/internal/tracker"
	"github.com/example/worklog-reconciler/internal/worklog"
)

// WorklogService populates the session from the server and injects
// allocation output into it the same way a human edit would enter.
type WorklogService struct {
	repo    WorkLogRepository
	session *tracker.Tracker
	prefs   allocation.Preferences
	logger  *slog.Logger
}

// NewWorklogService wires dependencies for load and suggestion operations.
func NewWorklogService(repo WorkLogRepository, session *tracker.Tracker, prefs allocation.Preferences) *WorklogService {
	return NewWorklogServiceWithLogger(repo, session, prefs, nil)
}

// NewWorklogServiceWithLogger wires dependencies and a base logger.
func NewWorklogServiceWithLogger(repo WorkLogRepository, session *tracker.Tracker, prefs allocation.Preferences, logger *slog.Logger) *WorklogService {
	return &WorklogService{
		repo:    repo,
		session: session,
		prefs:   prefs,
		logger:  defaultLogger(logger),
	}
}

// LoadWindow reads the author's entries for the window and installs them as
// the session snapshot, discarding any pending edits.
func (s *WorklogService) LoadWindow(ctx context.Context, window worklog.Window, authorAccountID string) ([]worklog.Event, error) {
	if s == nil || s.repo == nil || s.session == nil {
		return nil, ErrNotConfigured
	}

	logger := serviceLogger(ctx, s.logger, "worklog", "load_window", "author", authorAccountID)

	entries, err := s.repo.Search(ctx, SearchCriteria{
		AuthorAccountIDs: []string{authorAccountID},
		From:             &window.From,
		To:               &window.To,
	})
	if err != nil {
		logger.Error("failed to load window", "error", err, "kind", ErrorKind(err))
		return nil, err
	}

	events := make([]worklog.Event, 0, len(entries))
	for _, entry := range entries {
		events = append(events, worklog.NewEvent(entry.ID, entry))
	}

	s.session.ReplaceSnapshot(events)
	logger.Info("window loaded", "events", len(events))

	return events, nil
}

// Suggest runs the allocation engine over the supplied commits and applies
// every draft to the session as a create edit. The created events are
// returned in emission order.
func (s *WorklogService) Suggest(ctx context.Context, params SuggestParams) ([]worklog.Event, error) {
	if s == nil || s.session == nil {
		return nil, ErrNotConfigured
	}

	logger := serviceLogger(ctx, s.logger, "worklog", "suggest", "author", params.AuthorAccountID)

	drafts := allocation.Allocate(params.Commits, params.Catalogue, s.prefs, params.AuthorName, params.AuthorAccountID)

	events := make([]worklog.Event, 0, len(drafts))
	for _, draft := range drafts {
		event, err := s.session.CreateFromInteraction(tracker.CreateParams{
			Start:           draft.Started,
			End:             draft.Started.Add(time.Duration(draft.TimeSpentSeconds) * time.Second),
			AuthorAccountID: draft.AuthorAccountID,
			AuthorName:      draft.AuthorName,
			ProjectName:     draft.ProjectName,
			IssueKey:        draft.IssueKey,
			Summary:         draft.Summary,
		})
		if err != nil {
			// The engine never emits degenerate bounds; treat this as a
			// programmer error rather than a data-quality problem.
			logger.Error("failed to apply draft", "issue", draft.IssueKey, "error", err)
			return nil, err
		}
		events = append(events, event)
	}

	logger.Info("allocation applied", "commits", len(params.Commits), "drafts", len(drafts))

	return events, nil
}
