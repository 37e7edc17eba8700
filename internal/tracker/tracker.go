// Package tracker maintains the mutable working copy of calendar events for
// one editing session, diffed against the last known server snapshot. All
// mutations are synchronous; a Tracker is owned by a single session and is
// not safe for concurrent use.
package tracker

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/worklog-reconciler/internal/worklog"
)

var (
	// ErrEventNotFound is returned when an edit targets an unknown event id.
	ErrEventNotFound = errors.New("tracker: event not found")
	// ErrInvalidBounds is returned when an edit would leave end at or before start.
	ErrInvalidBounds = errors.New("tracker: end must be after start")
)

// Tracker holds the session state: the authoritative snapshot, the working
// copy, and one change record per touched event id in first-edit order.
type Tracker struct {
	original    []worklog.Event
	working     []worklog.Event
	changes     map[string]Change
	order       []string
	idGenerator func() string
	now         func() time.Time
}

// New constructs an empty tracker. idGenerator supplies the unique part of
// client event ids and now stamps change records; nil values fall back to
// uuid generation and the wall clock.
func New(idGenerator func() string, now func() time.Time) *Tracker {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		changes:     make(map[string]Change),
		idGenerator: idGenerator,
		now:         now,
	}
}

// ReplaceSnapshot installs fresh server data wholesale. Any pending changes
// are discarded; the working copy is reset to match the snapshot.
func (t *Tracker) ReplaceSnapshot(events []worklog.Event) {
	t.original = cloneEvents(events)
	t.working = cloneEvents(events)
	t.resetChanges()
}

// WorkingCopy returns a copy of the current mutable event list.
func (t *Tracker) WorkingCopy() []worklog.Event {
	return cloneEvents(t.working)
}

// Snapshot returns a copy of the last known server state.
func (t *Tracker) Snapshot() []worklog.Event {
	return cloneEvents(t.original)
}

// Changes lists pending change records in first-edit order.
func (t *Tracker) Changes() []Change {
	out := make([]Change, 0, len(t.order))
	for _, id := range t.order {
		if change, ok := t.changes[id]; ok {
			out = append(out, change)
		}
	}
	return out
}

// Summarize reports whether any edits are pending and how many events they
// touch.
func (t *Tracker) Summarize() Summary {
	return Summary{
		HasChanges:   len(t.changes) > 0,
		TotalChanges: len(t.changes),
	}
}

// Move relocates an event to new bounds, recording a move change. A move on
// a not-yet-persisted event keeps its create classification.
func (t *Tracker) Move(eventID string, start, end time.Time) error {
	return t.reframe(eventID, start, end, ChangeMove)
}

// Resize adjusts an event's bounds, recording a resize change. A resize on
// a not-yet-persisted event keeps its create classification.
func (t *Tracker) Resize(eventID string, start, end time.Time) error {
	return t.reframe(eventID, start, end, ChangeResize)
}

func (t *Tracker) reframe(eventID string, start, end time.Time, changeType ChangeType) error {
	if !end.After(start) {
		return ErrInvalidBounds
	}

	index := t.indexOf(eventID)
	if index < 0 {
		return ErrEventNotFound
	}

	before := t.working[index]
	updated := before.Reframe(start, end)
	t.working[index] = updated
	t.upsertChange(eventID, before, updated, changeType)
	return nil
}

// CreateParams carries the fields of a user-drawn or engine-synthesized event.
type CreateParams struct {
	Start           time.Time
	End             time.Time
	AuthorAccountID string
	AuthorName      string
	ProjectName     string
	IssueKey        string
	Summary         string
}

// CreateFromInteraction synthesizes a new event with a client-generated id,
// appends it to the working copy, and records a create change. Entries
// emitted by the allocation engine enter the session through this exact path.
func (t *Tracker) CreateFromInteraction(params CreateParams) (worklog.Event, error) {
	if !params.End.After(params.Start) {
		return worklog.Event{}, ErrInvalidBounds
	}

	entry := worklog.Entry{
		IssueKey:         params.IssueKey,
		Summary:          params.Summary,
		ProjectName:      params.ProjectName,
		AuthorAccountID:  params.AuthorAccountID,
		Started:          params.Start,
		TimeSpentSeconds: int(params.End.Sub(params.Start) / time.Second),
	}
	event := worklog.NewEvent(ClientIDPrefix+t.idGenerator(), entry)
	event.End = params.End

	t.working = append(t.working, event)
	t.changes[event.ID] = Change{
		EventID:   event.ID,
		Original:  nil,
		Modified:  event,
		Type:      ChangeCreate,
		Timestamp: t.now(),
	}
	t.order = append(t.order, event.ID)

	return event, nil
}

// Delete removes an event from the working copy. Deleting a never-persisted
// event nets out to no change at all; otherwise a delete record pinned to
// the last known original is kept.
func (t *Tracker) Delete(eventID string) error {
	index := t.indexOf(eventID)
	if index < 0 {
		return ErrEventNotFound
	}

	before := t.working[index]
	t.working = append(t.working[:index], t.working[index+1:]...)

	if existing, ok := t.changes[eventID]; ok && existing.Type == ChangeCreate {
		t.removeChange(eventID)
		return nil
	}

	original := t.stickyOriginal(eventID, before)
	t.changes[eventID] = Change{
		EventID:   eventID,
		Original:  original,
		Modified:  *original,
		Type:      ChangeDelete,
		Timestamp: t.now(),
	}
	if t.indexInOrder(eventID) < 0 {
		t.order = append(t.order, eventID)
	}
	return nil
}

// DeleteAll applies the delete rule to every event in the working copy as
// one batch, replacing the change map wholesale.
func (t *Tracker) DeleteAll() {
	pending := t.changes
	timestamp := t.now()

	t.resetChanges()
	for _, event := range t.working {
		existing, tracked := pending[event.ID]
		if tracked && existing.Type == ChangeCreate {
			continue
		}

		clone := event
		original := &clone
		if tracked && existing.Original != nil {
			prior := *existing.Original
			original = &prior
		}

		t.changes[event.ID] = Change{
			EventID:   event.ID,
			Original:  original,
			Modified:  *original,
			Type:      ChangeDelete,
			Timestamp: timestamp,
		}
		t.order = append(t.order, event.ID)
	}

	t.working = nil
}

// Cancel restores the working copy from the snapshot and clears all pending
// changes.
func (t *Tracker) Cancel() {
	t.working = cloneEvents(t.original)
	t.resetChanges()
}

// MarkSynchronized promotes the working copy to the authoritative snapshot
// after a save completes, clearing all pending changes. The local state is
// treated as now-authoritative; it is not re-read from the server.
func (t *Tracker) MarkSynchronized() {
	t.original = cloneEvents(t.working)
	t.resetChanges()
}

// EventsInWindow returns the working-copy events whose start falls inside
// the window and whose author matches. This is the set a whole-range
// replace re-creates server-side.
func (t *Tracker) EventsInWindow(window worklog.Window, authorAccountID string) []worklog.Event {
	return filterEvents(t.working, window, authorAccountID)
}

// Diff partitions the events whose start falls inside the window and whose
// author matches into new, modified and deleted lists. Other users' events
// are ignored entirely.
func (t *Tracker) Diff(window worklog.Window, authorAccountID string) Diff {
	workingInWindow := filterEvents(t.working, window, authorAccountID)
	originalInWindow := filterEvents(t.original, window, authorAccountID)

	originalByID := make(map[string]worklog.Event, len(originalInWindow))
	for _, event := range originalInWindow {
		originalByID[event.ID] = event
	}
	workingByID := make(map[string]worklog.Event, len(workingInWindow))
	for _, event := range workingInWindow {
		workingByID[event.ID] = event
	}

	var diff Diff
	for _, event := range workingInWindow {
		before, exists := originalByID[event.ID]
		if !exists {
			diff.New = append(diff.New, event)
			continue
		}
		if eventsDiffer(before, event) {
			diff.Modified = append(diff.Modified, event)
		}
	}
	for _, event := range originalInWindow {
		if _, exists := workingByID[event.ID]; exists {
			continue
		}
		if IsPersistedID(event.ID) {
			diff.Deleted = append(diff.Deleted, event)
		}
	}

	return diff
}

func eventsDiffer(before, after worklog.Event) bool {
	if before.Resource.IssueKey != after.Resource.IssueKey {
		return true
	}
	if !before.Resource.Started.Equal(after.Resource.Started) {
		return true
	}
	if before.Resource.TimeSpentSeconds != after.Resource.TimeSpentSeconds {
		return true
	}
	if before.Start.UnixMilli() != after.Start.UnixMilli() {
		return true
	}
	return before.End.UnixMilli() != after.End.UnixMilli()
}

func filterEvents(events []worklog.Event, window worklog.Window, authorAccountID string) []worklog.Event {
	out := make([]worklog.Event, 0, len(events))
	for _, event := range events {
		if event.Resource.AuthorAccountID != authorAccountID {
			continue
		}
		if !window.Contains(event.Start) {
			continue
		}
		out = append(out, event)
	}
	return out
}

// upsertChange records an edit, keeping the first-seen original sticky and
// preserving the create classification of never-persisted events.
func (t *Tracker) upsertChange(eventID string, before, after worklog.Event, changeType ChangeType) {
	existing, ok := t.changes[eventID]
	if ok {
		if existing.Type == ChangeCreate {
			changeType = ChangeCreate
		}
		t.changes[eventID] = Change{
			EventID:   eventID,
			Original:  existing.Original,
			Modified:  after,
			Type:      changeType,
			Timestamp: t.now(),
		}
		return
	}

	clone := before
	t.changes[eventID] = Change{
		EventID:   eventID,
		Original:  &clone,
		Modified:  after,
		Type:      changeType,
		Timestamp: t.now(),
	}
	t.order = append(t.order, eventID)
}

func (t *Tracker) stickyOriginal(eventID string, fallback worklog.Event) *worklog.Event {
	if existing, ok := t.changes[eventID]; ok && existing.Original != nil {
		clone := *existing.Original
		return &clone
	}
	clone := fallback
	return &clone
}

func (t *Tracker) resetChanges() {
	t.changes = make(map[string]Change)
	t.order = nil
}

func (t *Tracker) removeChange(eventID string) {
	delete(t.changes, eventID)
	if i := t.indexInOrder(eventID); i >= 0 {
		t.order = append(t.order[:i], t.order[i+1:]...)
	}
}

func (t *Tracker) indexOf(eventID string) int {
	for i, event := range t.working {
		if event.ID == eventID {
			return i
		}
	}
	return -1
}

func (t *Tracker) indexInOrder(eventID string) int {
	for i, id := range t.order {
		if id == eventID {
			return i
		}
	}
	return -1
}

func cloneEvents(events []worklog.Event) []worklog.Event {
	if len(events) == 0 {
		return nil
	}
	out := make([]worklog.Event, len(events))
	copy(out, events)
	return out
}
