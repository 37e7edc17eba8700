package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/worklog-reconciler/internal/testfixtures"
	"github.com/example/worklog-reconciler/internal/tracker"
	"github.com/example/worklog-reconciler/internal/worklog"
)

type workLogRepoStub struct {
	mu sync.Mutex

	deleteCount int
	deleteErr   error
	deleteCalls []DeleteCriteria
	deleteDone  bool

	createErrByIssue map[string]error
	created          []worklog.Entry
	createAfterDel   []bool

	searchResult []worklog.Entry
	searchErr    error
}

func (s *workLogRepoStub) DeleteByCriteria(ctx context.Context, criteria DeleteCriteria) (int, error) {
	s.mu.Lock()
	s.deleteCalls = append(s.deleteCalls, criteria)
	s.mu.Unlock()

	// Give a misordered create a chance to slip in before the delete phase
	// finishes.
	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	s.deleteDone = true
	s.mu.Unlock()

	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	return s.deleteCount, nil
}

func (s *workLogRepoStub) Create(ctx context.Context, entry worklog.Entry) (worklog.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createAfterDel = append(s.createAfterDel, s.deleteDone)

	if err, ok := s.createErrByIssue[entry.IssueKey]; ok && err != nil {
		return worklog.Entry{}, err
	}

	stored := entry
	stored.ID = fmt.Sprintf("srv-%d", len(s.created)+1)
	s.created = append(s.created, stored)
	return stored, nil
}

func (s *workLogRepoStub) Search(ctx context.Context, criteria SearchCriteria) ([]worklog.Entry, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	out := make([]worklog.Entry, len(s.searchResult))
	copy(out, s.searchResult)
	return out, nil
}

func newTestSession() *tracker.Tracker {
	idGenerator := testfixtures.NewIDGenerator("event")
	clock := testfixtures.NewClock(time.Time{})
	return tracker.New(idGenerator.NextFunc(), clock.NowFunc())
}

func syncWindow() worklog.Window {
	return worklog.Window{
		From: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC),
	}
}

func sessionEvent(session *tracker.Tracker, t *testing.T, issueKey, author string, day, hour, minutes int) worklog.Event {
	t.Helper()
	start := time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
	event, err := session.CreateFromInteraction(tracker.CreateParams{
		Start:           start,
		End:             start.Add(time.Duration(minutes) * time.Minute),
		AuthorAccountID: author,
		IssueKey:        issueKey,
		Summary:         "summary " + issueKey,
		ProjectName:     "Apollo",
	})
	if err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return event
}

func TestSyncService_CommitReplacesWindow(t *testing.T) {
	t.Parallel()

	session := newTestSession()
	session.ReplaceSnapshot(nil)
	sessionEvent(session, t, "ABC-1", "acct-1", 4, 9, 60)
	sessionEvent(session, t, "ABC-2", "acct-1", 4, 11, 90)

	repo := &workLogRepoStub{deleteCount: 3}
	svc := NewSyncService(repo, session, nil)

	result, err := svc.Commit(context.Background(), syncWindow(), "acct-1")
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if result.Deleted.Success != 3 || result.Deleted.Failed != 0 {
		t.Fatalf("expected 3 deletions, got %+v", result.Deleted)
	}
	if result.Created.Success != 2 || result.Created.Failed != 0 {
		t.Fatalf("expected 2 creations, got %+v", result.Created)
	}
	if result.TotalSuccess != 5 || result.TotalFailed != 0 {
		t.Fatalf("unexpected totals: %+v", result)
	}

	if len(repo.deleteCalls) != 1 {
		t.Fatalf("expected one bulk delete, got %d", len(repo.deleteCalls))
	}
	call := repo.deleteCalls[0]
	if len(call.AuthorAccountIDs) != 1 || call.AuthorAccountIDs[0] != "acct-1" {
		t.Fatalf("expected delete scoped to the author, got %+v", call)
	}

	for _, entry := range repo.created {
		if strings.HasPrefix(entry.ID, tracker.ClientIDPrefix) {
			t.Fatalf("client id leaked into a create call: %s", entry.ID)
		}
	}

	if session.Summarize().HasChanges {
		t.Fatalf("expected the session promoted to clean after commit")
	}
}

func TestSyncService_CreatePhaseWaitsForDelete(t *testing.T) {
	t.Parallel()

	session := newTestSession()
	session.ReplaceSnapshot(nil)
	sessionEvent(session, t, "ABC-1", "acct-1", 4, 9, 60)
	sessionEvent(session, t, "ABC-2", "acct-1", 5, 9, 60)

	repo := &workLogRepoStub{}
	svc := NewSyncService(repo, session, nil)

	if _, err := svc.Commit(context.Background(), syncWindow(), "acct-1"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	for i, afterDelete := range repo.createAfterDel {
		if !afterDelete {
			t.Fatalf("create %d was issued before the delete phase completed", i)
		}
	}
}

func TestSyncService_FailedDeleteDoesNotAbortCreates(t *testing.T) {
	t.Parallel()

	session := newTestSession()
	session.ReplaceSnapshot(nil)
	sessionEvent(session, t, "ABC-1", "acct-1", 4, 9, 60)

	repo := &workLogRepoStub{deleteErr: errors.New("boom")}
	svc := NewSyncService(repo, session, nil)

	result, err := svc.Commit(context.Background(), syncWindow(), "acct-1")
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if result.Deleted.Failed != 1 || len(result.Deleted.Errors) != 1 {
		t.Fatalf("expected one aggregate delete failure, got %+v", result.Deleted)
	}
	if result.Created.Success != 1 {
		t.Fatalf("expected the create phase to proceed, got %+v", result.Created)
	}
}

func TestSyncService_CreateFailuresAreIndependent(t *testing.T) {
	t.Parallel()

	session := newTestSession()
	session.ReplaceSnapshot(nil)
	sessionEvent(session, t, "ABC-1", "acct-1", 4, 9, 60)
	sessionEvent(session, t, "ABC-2", "acct-1", 4, 11, 60)
	sessionEvent(session, t, "ABC-3", "acct-1", 4, 13, 60)

	repo := &workLogRepoStub{
		createErrByIssue: map[string]error{"ABC-2": errors.New("remote rejected")},
	}
	svc := NewSyncService(repo, session, nil)

	result, err := svc.Commit(context.Background(), syncWindow(), "acct-1")
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if result.Created.Success != 2 || result.Created.Failed != 1 {
		t.Fatalf("expected one independent failure, got %+v", result.Created)
	}
	if len(result.Created.Errors) != 1 {
		t.Fatalf("expected one error entry, got %d", len(result.Created.Errors))
	}
	failure := result.Created.Errors[0]
	if failure.IssueKey != "ABC-2" || !strings.Contains(failure.Message, "remote rejected") {
		t.Fatalf("expected error context for ABC-2, got %+v", failure)
	}

	// Local state is reconciled to clean regardless of partial failures.
	if session.Summarize().HasChanges {
		t.Fatalf("expected the session clean after a partially failed commit")
	}
}

func TestSyncService_InvalidEntriesFailWithoutRemoteCall(t *testing.T) {
	t.Parallel()

	session := newTestSession()
	session.ReplaceSnapshot(nil)
	sessionEvent(session, t, "", "acct-1", 4, 9, 60) // no issue key yet
	sessionEvent(session, t, "ABC-1", "acct-1", 4, 11, 60)

	repo := &workLogRepoStub{}
	svc := NewSyncService(repo, session, nil)

	result, err := svc.Commit(context.Background(), syncWindow(), "acct-1")
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if result.Created.Failed != 1 || result.Created.Success != 1 {
		t.Fatalf("expected the invalid entry to fail locally, got %+v", result.Created)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected only the valid entry sent to the repository, got %d", len(repo.created))
	}
}

func TestSyncService_CommitFiltersWindowAndAuthor(t *testing.T) {
	t.Parallel()

	session := newTestSession()
	session.ReplaceSnapshot(nil)
	sessionEvent(session, t, "ABC-1", "acct-1", 4, 9, 60)
	sessionEvent(session, t, "ABC-2", "acct-2", 4, 11, 60) // other author
	sessionEvent(session, t, "ABC-3", "acct-1", 20, 9, 60) // outside window

	repo := &workLogRepoStub{}
	svc := NewSyncService(repo, session, nil)

	result, err := svc.Commit(context.Background(), syncWindow(), "acct-1")
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if result.Created.Success != 1 {
		t.Fatalf("expected only the in-window own event created, got %+v", result.Created)
	}
	if repo.created[0].IssueKey != "ABC-1" {
		t.Fatalf("expected ABC-1 created, got %s", repo.created[0].IssueKey)
	}
}

func TestSyncService_RequiresConfiguration(t *testing.T) {
	t.Parallel()

	var nilService *SyncService
	if _, err := nilService.Commit(context.Background(), syncWindow(), "acct-1"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	svc := NewSyncService(nil, newTestSession(), nil)
	if _, err := svc.Commit(context.Background(), syncWindow(), "acct-1"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
