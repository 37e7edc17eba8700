package tracker

import (
	"regexp"
	"strings"
	"time"

	"github.com/example/worklog-reconciler/internal/worklog"
)

// ChangeType labels how an event diverged from the last known server state.
type ChangeType string

const (
	// ChangeCreate marks an event that does not exist server-side yet.
	ChangeCreate ChangeType = "create"
	// ChangeMove marks an event dragged to a different start.
	ChangeMove ChangeType = "move"
	// ChangeResize marks an event whose bounds were stretched or shrunk.
	ChangeResize ChangeType = "resize"
	// ChangeDelete marks an event removed from the working copy.
	ChangeDelete ChangeType = "delete"
)

// Change captures how one event differs from the last known server state.
// Original is nil when the event never existed server-side; once recorded,
// a non-nil Original is never overwritten.
type Change struct {
	EventID   string
	Original  *worklog.Event
	Modified  worklog.Event
	Type      ChangeType
	Timestamp time.Time
}

// Summary is the O(1) view used to gate save and cancel affordances.
type Summary struct {
	HasChanges   bool
	TotalChanges int
}

// Diff partitions a date window of the working copy against the snapshot.
// No event id ever appears in more than one list.
type Diff struct {
	New      []worklog.Event
	Modified []worklog.Event
	Deleted  []worklog.Event
}

// ClientIDPrefix marks identifiers generated locally for events that have
// not been persisted yet.
const ClientIDPrefix = "local-"

var bareIssueKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*-\d+$`)

// IsClientID reports whether the identifier was generated by this session
// rather than assigned by the server.
func IsClientID(id string) bool {
	return strings.HasPrefix(id, ClientIDPrefix)
}

// IsPersistedID reports whether the identifier plausibly came from the
// server. Client placeholders and bare issue keys are rejected so that a
// never-persisted event is not reported as a server-side deletion.
func IsPersistedID(id string) bool {
	if id == "" || IsClientID(id) {
		return false
	}
	return !bareIssueKeyPattern.MatchString(id)
}
