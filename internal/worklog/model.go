package worklog

import (
	"fmt"
	"strings"
	"time"
)

// Entry represents a persisted worklog record: time spent on one issue
// starting at an instant.
type Entry struct {
	ID               string
	IssueKey         string
	Summary          string
	ProjectName      string
	AuthorAccountID  string
	Started          time.Time
	TimeSpentSeconds int
}

// End returns the instant at which the logged time span finishes.
func (e Entry) End() time.Time {
	return e.Started.Add(time.Duration(e.TimeSpentSeconds) * time.Second)
}

// Event is the calendar working-copy form of an entry. Until a save
// succeeds the ID is a client-generated placeholder; afterwards it is the
// persisted identifier.
type Event struct {
	ID       string
	Title    string
	Start    time.Time
	End      time.Time
	Resource Entry
}

// NewEvent derives the calendar form of an entry.
func NewEvent(id string, entry Entry) Event {
	entry.ID = id
	return Event{
		ID:       id,
		Title:    EventTitle(entry.IssueKey, entry.Summary),
		Start:    entry.Started,
		End:      entry.End(),
		Resource: entry,
	}
}

// EventTitle builds the display string shown on the calendar surface.
func EventTitle(issueKey, summary string) string {
	if strings.TrimSpace(summary) == "" {
		return issueKey
	}
	return fmt.Sprintf("%s: %s", issueKey, summary)
}

// Reframe returns a copy of the event moved to the supplied bounds, with the
// embedded entry's start and duration recomputed from them.
func (ev Event) Reframe(start, end time.Time) Event {
	out := ev
	out.Start = start
	out.End = end
	out.Resource.Started = start
	out.Resource.TimeSpentSeconds = int(end.Sub(start) / time.Second)
	return out
}

// Issue is one catalogue entry used to resolve commit references.
type Issue struct {
	Key         string
	Summary     string
	ProjectName string
}

// Catalogue indexes issues by uppercased key.
type Catalogue map[string]Issue

// NewCatalogue builds a lookup keyed by uppercased issue key.
func NewCatalogue(issues []Issue) Catalogue {
	catalogue := make(Catalogue, len(issues))
	for _, issue := range issues {
		if issue.Key == "" {
			continue
		}
		catalogue[strings.ToUpper(issue.Key)] = issue
	}
	return catalogue
}

// Lookup resolves a raw, case-insensitive issue reference.
func (c Catalogue) Lookup(ref string) (Issue, bool) {
	issue, ok := c[strings.ToUpper(strings.TrimSpace(ref))]
	return issue, ok
}

// Commit is a read-only record from the commit-history feed. CreatedAt is
// kept raw because feeds disagree about timezone information.
type Commit struct {
	CreatedAt string
	IssueKeys []string
}

// Window bounds a date range query. Both ends are inclusive.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether the instant falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.From) {
		return false
	}
	return !t.After(w.To)
}

// IsZero reports whether the window carries no bounds.
func (w Window) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}
