package application

import (
	"time"

	"github.com/example/worklog-reconciler/internal/worklog"
)

// SearchCriteria narrows the repository query used to load a window.
type SearchCriteria struct {
	AuthorAccountIDs []string
	From             *time.Time
	To               *time.Time
}

// DeleteCriteria identifies the server-side records removed by the bulk
// delete phase of a save.
type DeleteCriteria struct {
	AuthorAccountIDs []string
	From             time.Time
	To               time.Time
}

// SyncError carries enough context about one failed repository call to
// render in a UI without re-deriving the cause.
type SyncError struct {
	EventID  string
	IssueKey string
	Started  time.Time
	Message  string
}

// PhaseResult aggregates one phase of a save.
type PhaseResult struct {
	Success int
	Failed  int
	Errors  []SyncError
}

// SyncResult is the structured outcome of a whole-range replace. Partial
// failures are reported here, never raised as errors.
type SyncResult struct {
	Deleted      PhaseResult
	Created      PhaseResult
	TotalSuccess int
	TotalFailed  int
}

// SuggestParams wraps the inputs of a commit-driven allocation run.
type SuggestParams struct {
	Commits         []worklog.Commit
	Catalogue       worklog.Catalogue
	AuthorName      string
	AuthorAccountID string
}
