// Package gitlog reads commit history from a local git repository and turns
// it into the commit records the allocation engine consumes.
package gitlog

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/example/worklog-reconciler/internal/worklog"
)

// recordSeparator and fieldSeparator keep subjects with embedded newlines from
// corrupting the parse.
const (
	recordSeparator = "\x1e"
	fieldSeparator  = "\x1f"
)

var issueKeyPattern = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9]*-\d+\b`)

// Reader shells out to git for commit history.
type Reader struct {
	repoPath string
	runner   func(ctx context.Context, args ...string) ([]byte, error)
}

// NewReader builds a Reader over the repository at repoPath. An empty path
// uses the current working directory.
func NewReader(repoPath string) *Reader {
	r := &Reader{repoPath: repoPath}
	r.runner = r.runGit
	return r
}

// Commits lists the commits authored by author inside the window, newest
// last. Commits whose subject references no issue key are dropped.
func (r *Reader) Commits(ctx context.Context, window worklog.Window, author string) ([]worklog.Commit, error) {
	args := []string{
		"log",
		"--reverse",
		"--pretty=format:%aI" + fieldSeparator + "%s" + recordSeparator,
		"--since=" + window.From.Format("2006-01-02T15:04:05"),
		"--until=" + window.To.Format("2006-01-02T15:04:05"),
	}
	if strings.TrimSpace(author) != "" {
		args = append(args, "--author="+author)
	}

	output, err := r.runner(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("read git history: %w", err)
	}
	return ParseLog(string(output)), nil
}

func (r *Reader) runGit(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if r.repoPath != "" {
		cmd.Dir = r.repoPath
	}
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("git log: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return output, nil
}

// ParseLog converts the custom-format git log output into commit records.
// Records without a parseable pair of fields or without issue references
// are skipped.
func ParseLog(output string) []worklog.Commit {
	records := strings.Split(output, recordSeparator)
	commits := make([]worklog.Commit, 0, len(records))
	for _, record := range records {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSeparator, 2)
		if len(fields) != 2 {
			continue
		}
		keys := ExtractIssueKeys(fields[1])
		if len(keys) == 0 {
			continue
		}
		commits = append(commits, worklog.Commit{
			CreatedAt: strings.TrimSpace(fields[0]),
			IssueKeys: keys,
		})
	}
	return commits
}

// ExtractIssueKeys returns the distinct issue keys referenced by a commit
// subject, uppercased, in order of first appearance.
func ExtractIssueKeys(subject string) []string {
	matches := issueKeyPattern.FindAllString(subject, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	keys := make([]string, 0, len(matches))
	for _, match := range matches {
		key := strings.ToUpper(match)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}
