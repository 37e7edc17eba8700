package gitlog

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/example/worklog-reconciler/internal/worklog"
)

func logRecord(timestamp, subject string) string {
	return timestamp + fieldSeparator + subject + recordSeparator + "\n"
}

func TestParseLog(t *testing.T) {
	t.Parallel()

	output := logRecord("2024-03-04T10:15:00+00:00", "ABC-1: fix flaky retry") +
		logRecord("2024-03-04T11:00:00+00:00", "chore: bump dependencies") +
		logRecord("2024-03-04T12:30:00+00:00", "abc-1 ABC-2 cross cutting cleanup")

	commits := ParseLog(output)

	want := []worklog.Commit{
		{CreatedAt: "2024-03-04T10:15:00+00:00", IssueKeys: []string{"ABC-1"}},
		{CreatedAt: "2024-03-04T12:30:00+00:00", IssueKeys: []string{"ABC-1", "ABC-2"}},
	}
	if !reflect.DeepEqual(commits, want) {
		t.Fatalf("unexpected commits: %+v", commits)
	}
}

func TestParseLogSurvivesNewlinesInSubjects(t *testing.T) {
	t.Parallel()

	output := "2024-03-04T10:15:00+00:00" + fieldSeparator + "ABC-3 first line\nsecond line" + recordSeparator

	commits := ParseLog(output)
	if len(commits) != 1 {
		t.Fatalf("expected one commit, got %d", len(commits))
	}
	if commits[0].IssueKeys[0] != "ABC-3" {
		t.Fatalf("unexpected issue keys: %v", commits[0].IssueKeys)
	}
}

func TestParseLogEmptyOutput(t *testing.T) {
	t.Parallel()

	if commits := ParseLog(""); len(commits) != 0 {
		t.Fatalf("expected no commits, got %+v", commits)
	}
}

func TestExtractIssueKeys(t *testing.T) {
	t.Parallel()

	cases := []struct {
		subject string
		want    []string
	}{
		{"ABC-1 tidy imports", []string{"ABC-1"}},
		{"abc-1 and ABC-1 twice", []string{"ABC-1"}},
		{"touches ABC-2, then ABC-1", []string{"ABC-2", "ABC-1"}},
		{"no references here", nil},
		{"versioned v1-2 is not an issue", nil},
	}
	for _, tc := range cases {
		if got := ExtractIssueKeys(tc.subject); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ExtractIssueKeys(%q) = %v, want %v", tc.subject, got, tc.want)
		}
	}
}

func TestCommitsBuildsExpectedArguments(t *testing.T) {
	t.Parallel()

	var captured []string
	reader := NewReader("")
	reader.runner = func(_ context.Context, args ...string) ([]byte, error) {
		captured = args
		return []byte(logRecord("2024-03-04T10:15:00+00:00", "ABC-1 work")), nil
	}

	window := worklog.Window{
		From: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
	}
	commits, err := reader.Commits(context.Background(), window, "Dana Developer")
	if err != nil {
		t.Fatalf("Commits returned error: %v", err)
	}
	if len(commits) != 1 {
		t.Fatalf("expected one commit, got %d", len(commits))
	}

	joined := strings.Join(captured, " ")
	for _, fragment := range []string{
		"--since=2024-03-04T00:00:00",
		"--until=2024-03-05T00:00:00",
		"--author=Dana Developer",
		"--reverse",
	} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("arguments %q missing %q", joined, fragment)
		}
	}
}

func TestCommitsPropagatesRunnerErrors(t *testing.T) {
	t.Parallel()

	reader := NewReader("")
	reader.runner = func(_ context.Context, _ ...string) ([]byte, error) {
		return nil, errors.New("fatal: not a git repository")
	}

	if _, err := reader.Commits(context.Background(), worklog.Window{}, ""); err == nil {
		t.Fatal("expected error from failing runner")
	}
}
