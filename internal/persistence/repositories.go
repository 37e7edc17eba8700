package persistence

import "context"

// WorkLogRepository exposes the storage operations required by the sync
// coordinator and the window loader.
type WorkLogRepository interface {
	// Create stores a single worklog and returns the persisted record,
	// including its server-assigned identifier.
	Create(ctx context.Context, worklog WorkLog) (WorkLog, error)
	// Get retrieves a worklog by id.
	Get(ctx context.Context, id string) (WorkLog, error)
	// Search returns the worklogs matching the criteria ordered by started
	// ascending.
	Search(ctx context.Context, criteria SearchCriteria) ([]WorkLog, error)
	// DeleteByCriteria removes every matching worklog as one unit and
	// returns the number of records removed.
	DeleteByCriteria(ctx context.Context, criteria DeleteCriteria) (int, error)
}
