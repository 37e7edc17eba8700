// Package testfixtures provides deterministic clocks, id generators and
// worklog domain fixtures shared by tests across the repository.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/worklog-reconciler/internal/worklog"
)

var eventCounter uint64

var referenceTime = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// EventFixture represents a deterministic persisted calendar event.
type EventFixture struct {
	ID              string
	IssueKey        string
	Summary         string
	ProjectName     string
	AuthorAccountID string
	Started         time.Time
	Minutes         int
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// WithIssueKey overrides the fixture issue key.
func WithIssueKey(key string) EventOption {
	return func(f *EventFixture) {
		f.IssueKey = key
		f.Summary = "summary " + key
	}
}

// WithAuthor overrides the fixture author account.
func WithAuthor(accountID string) EventOption {
	return func(f *EventFixture) { f.AuthorAccountID = accountID }
}

// WithStart overrides the fixture start instant.
func WithStart(started time.Time) EventOption {
	return func(f *EventFixture) { f.Started = started }
}

// WithMinutes overrides the fixture duration.
func WithMinutes(minutes int) EventOption {
	return func(f *EventFixture) { f.Minutes = minutes }
}

// NewEventFixture returns a deterministic persisted event with optional
// overrides. Each call yields a fresh server-style id and a later start.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	fixture := EventFixture{
		ID:              fmt.Sprintf("%d", 1000+idx),
		IssueKey:        fmt.Sprintf("ABC-%d", idx),
		Summary:         fmt.Sprintf("summary ABC-%d", idx),
		ProjectName:     "Apollo",
		AuthorAccountID: "acct-1",
		Started:         referenceTime.Add(time.Duration(idx) * time.Hour),
		Minutes:         60,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// Event materialises the fixture as a calendar event.
func (f EventFixture) Event() worklog.Event {
	return worklog.NewEvent(f.ID, worklog.Entry{
		IssueKey:         f.IssueKey,
		Summary:          f.Summary,
		ProjectName:      f.ProjectName,
		AuthorAccountID:  f.AuthorAccountID,
		Started:          f.Started,
		TimeSpentSeconds: f.Minutes * 60,
	})
}

// Commits builds a commit list referencing the supplied issue keys, one
// commit per key, spaced an hour apart on the reference day.
func Commits(keys ...string) []worklog.Commit {
	commits := make([]worklog.Commit, 0, len(keys))
	for i, key := range keys {
		commits = append(commits, worklog.Commit{
			CreatedAt: referenceTime.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			IssueKeys: []string{key},
		})
	}
	return commits
}

// Catalogue builds an issue catalogue containing the supplied keys.
func Catalogue(keys ...string) worklog.Catalogue {
	issues := make([]worklog.Issue, 0, len(keys))
	for _, key := range keys {
		issues = append(issues, worklog.Issue{
			Key:         key,
			Summary:     "summary " + key,
			ProjectName: "Apollo",
		})
	}
	return worklog.NewCatalogue(issues)
}
