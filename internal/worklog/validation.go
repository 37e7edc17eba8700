package worklog

import (
	"strings"
	"time"
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "worklog: validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	return "worklog: validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// NewEntry constructs an entry from its raw persisted form, surfacing
// structural violations as a typed validation failure.
func NewEntry(id, issueKey, summary, projectName, authorAccountID, started string, timeSpentSeconds int) (Entry, error) {
	vErr := &ValidationError{}

	if strings.TrimSpace(issueKey) == "" {
		vErr.add("issue_key", "issue key is required")
	}

	startedAt, err := time.Parse(time.RFC3339, started)
	if err != nil {
		vErr.add("started", "started must be an ISO-8601 instant")
	}

	if timeSpentSeconds <= 0 {
		vErr.add("time_spent_seconds", "time spent must be positive")
	}

	if vErr.HasErrors() {
		return Entry{}, vErr
	}

	return Entry{
		ID:               id,
		IssueKey:         strings.TrimSpace(issueKey),
		Summary:          summary,
		ProjectName:      projectName,
		AuthorAccountID:  authorAccountID,
		Started:          startedAt,
		TimeSpentSeconds: timeSpentSeconds,
	}, nil
}

// Validate checks the structural invariants of an already assembled entry.
func (e Entry) Validate() error {
	vErr := &ValidationError{}

	if strings.TrimSpace(e.IssueKey) == "" {
		vErr.add("issue_key", "issue key is required")
	}
	if e.Started.IsZero() {
		vErr.add("started", "started is required")
	}
	if e.TimeSpentSeconds <= 0 {
		vErr.add("time_spent_seconds", "time spent must be positive")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
