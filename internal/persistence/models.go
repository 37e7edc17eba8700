package persistence

import "time"

// WorkLog represents a worklog record stored in persistence.
type WorkLog struct {
	ID               string
	IssueKey         string
	Summary          string
	ProjectName      string
	AuthorAccountID  string
	Started          time.Time
	TimeSpentSeconds int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SearchCriteria narrows worklog queries. Zero-valued fields are ignored.
type SearchCriteria struct {
	AuthorAccountIDs []string
	IssueKeys        []string
	From             *time.Time
	To               *time.Time
}

// DeleteCriteria identifies the worklogs removed by a bulk delete: all
// records for the given authors whose started instant falls in [From, To].
type DeleteCriteria struct {
	AuthorAccountIDs []string
	From             time.Time
	To               time.Time
}
