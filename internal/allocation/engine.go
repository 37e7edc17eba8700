// Package allocation derives plausible worklog drafts from commit activity.
// The engine is a pure function: no I/O, no shared state, and malformed
// input rows are skipped rather than reported.
package allocation

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/worklog-reconciler/internal/worklog"
)

// Preferences configures the working-hours window applied to every day.
type Preferences struct {
	// WorkingDayStart and WorkingDayEnd are clock times in "HH:MM" form.
	WorkingDayStart string
	WorkingDayEnd   string
	// MinimumDurationMinutes is the smallest slot worth emitting. Zero or
	// negative values fall back to 60.
	MinimumDurationMinutes int
	// Timezone is the IANA zone used for day bucketing and slot placement.
	// Empty or unknown names fall back to UTC.
	Timezone string
}

// Draft is one synthesized worklog entry. Drafts for the same day never
// overlap and are emitted in packing order.
type Draft struct {
	IssueKey         string
	Summary          string
	ProjectName      string
	AuthorName       string
	AuthorAccountID  string
	Started          time.Time
	TimeSpentSeconds int
}

// issueGroup accumulates the commits referencing one catalogued issue
// within a single day.
type issueGroup struct {
	issue   worklog.Issue
	commits int
	seen    int // first-seen position, the stable tie-break
}

// Allocate converts commit activity into non-overlapping worklog drafts, one
// day at a time. Days whose commits reference no catalogued issue, and days
// whose window cannot fit a single minimum-duration slot, yield nothing.
func Allocate(commits []worklog.Commit, catalogue worklog.Catalogue, prefs Preferences, authorName, authorAccountID string) []Draft {
	loc := resolveLocation(prefs.Timezone)
	minimum := prefs.MinimumDurationMinutes
	if minimum <= 0 {
		minimum = 60
	}

	startMinutes, ok := parseClock(prefs.WorkingDayStart)
	if !ok {
		return nil
	}
	endMinutes, ok := parseClock(prefs.WorkingDayEnd)
	if !ok {
		return nil
	}
	workdayTotal := endMinutes - startMinutes
	if workdayTotal <= 0 {
		return nil
	}

	days := bucketByDay(commits, catalogue, loc)

	dayKeys := make([]string, 0, len(days))
	for key := range days {
		dayKeys = append(dayKeys, key)
	}
	sort.Strings(dayKeys)

	drafts := make([]Draft, 0, len(days))
	for _, key := range dayKeys {
		selected := selectIssues(days[key], workdayTotal, minimum)
		if len(selected) == 0 {
			continue
		}

		share := workdayTotal / len(selected)
		remainder := workdayTotal % len(selected)

		cursor := dayStart(key, startMinutes, loc)
		for i, group := range selected {
			minutes := share
			if i == len(selected)-1 {
				minutes += remainder
			}
			drafts = append(drafts, Draft{
				IssueKey:         group.issue.Key,
				Summary:          group.issue.Summary,
				ProjectName:      group.issue.ProjectName,
				AuthorName:       authorName,
				AuthorAccountID:  authorAccountID,
				Started:          cursor,
				TimeSpentSeconds: minutes * 60,
			})
			cursor = cursor.Add(time.Duration(minutes) * time.Minute)
		}
	}

	return drafts
}

// bucketByDay normalizes commit timestamps, converts them to the configured
// zone, and groups catalogued issue references per calendar day. Commits
// with unparseable timestamps are dropped.
func bucketByDay(commits []worklog.Commit, catalogue worklog.Catalogue, loc *time.Location) map[string][]*issueGroup {
	days := make(map[string][]*issueGroup)
	index := make(map[string]map[string]*issueGroup)

	for _, commit := range commits {
		instant, ok := normalizeTimestamp(commit.CreatedAt)
		if !ok {
			continue
		}
		dayKey := instant.In(loc).Format("2006-01-02")

		groups := index[dayKey]
		if groups == nil {
			groups = make(map[string]*issueGroup)
			index[dayKey] = groups
		}

		// An issue referenced several times by one commit still counts once.
		counted := make(map[string]struct{})
		for _, ref := range commit.IssueKeys {
			issue, found := catalogue.Lookup(ref)
			if !found {
				continue
			}
			normalized := strings.ToUpper(issue.Key)
			if _, dup := counted[normalized]; dup {
				continue
			}
			counted[normalized] = struct{}{}

			group, exists := groups[normalized]
			if !exists {
				group = &issueGroup{issue: issue, seen: len(groups)}
				groups[normalized] = group
				days[dayKey] = append(days[dayKey], group)
			}
			group.commits++
		}
	}

	return days
}

// selectIssues fixes the slot order for a day. When an equal share would
// undercut the minimum duration, only the issues with the highest commit
// counts keep a slot; ties preserve first-seen order.
func selectIssues(groups []*issueGroup, workdayTotal, minimum int) []*issueGroup {
	if len(groups) == 0 {
		return nil
	}

	share := workdayTotal / len(groups)
	if share >= minimum {
		return groups
	}

	maxFit := workdayTotal / minimum
	if maxFit == 0 {
		return nil
	}

	ranked := make([]*issueGroup, len(groups))
	copy(ranked, groups)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].commits > ranked[j].commits
	})

	return ranked[:maxFit]
}

// normalizeTimestamp resolves a raw commit timestamp to UTC. Strings with
// explicit zone information are honored; zone-less strings are assumed UTC.
func normalizeTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}

	zoneless := []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range zoneless {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(value string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// dayStart places the working-day cursor at the configured start clock time
// on the bucketed calendar day.
func dayStart(dayKey string, startMinutes int, loc *time.Location) time.Time {
	day, err := time.ParseInLocation("2006-01-02", dayKey, loc)
	if err != nil {
		return time.Time{}
	}
	return day.Add(time.Duration(startMinutes) * time.Minute)
}

func resolveLocation(name string) *time.Location {
	if strings.TrimSpace(name) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
