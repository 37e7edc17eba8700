package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/worklog-reconciler/internal/application"
	"github.com/example/worklog-reconciler/internal/worklog"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored worklog entries for a date range",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	window, err := parseWindow()
	if err != nil {
		return err
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	repo := newWorkLogRepositoryAdapter(env.store)
	entries, err := repo.Search(cmd.Context(), application.SearchCriteria{
		AuthorAccountIDs: []string{env.cfg.AuthorAccountID},
		From:             &window.From,
		To:               &window.To,
	})
	if err != nil {
		return err
	}

	printEntries(entries)
	return nil
}

// printEntries groups entries by date and prints them in storage order.
func printEntries(entries []worklog.Entry) {
	if len(entries) == 0 {
		fmt.Println("No worklog entries found.")
		return
	}

	var currentDay string
	for _, entry := range entries {
		day := entry.Started.Format("2006-01-02")
		if day != currentDay {
			fmt.Println(day)
			currentDay = day
		}

		fmt.Printf("  %s–%s  %s  (%s)\n",
			entry.Started.Format("15:04"),
			entry.End().Format("15:04"),
			worklog.EventTitle(entry.IssueKey, entry.Summary),
			formatSpan(entry.TimeSpentSeconds),
		)
	}
}

func formatSpan(seconds int) string {
	d := time.Duration(seconds) * time.Second
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", hours, minutes)
}
