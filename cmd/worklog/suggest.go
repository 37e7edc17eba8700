package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/worklog-reconciler/internal/application"
	"github.com/example/worklog-reconciler/internal/gitlog"
	"github.com/example/worklog-reconciler/internal/tracker"
	"github.com/example/worklog-reconciler/internal/worklog"
)

var (
	suggestRepoPath string
	suggestIssues   string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show the worklog entries commit history would produce",
	Long: `suggest reads commit history for the date range, allocates the working day
across the referenced issues, and prints the drafts without saving anything.`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringVar(&suggestRepoPath, "repo", "", "Path to the git repository (defaults to the working directory)")
	suggestCmd.Flags().StringVar(&suggestIssues, "issues", "", "Path to the issue catalogue YAML document")
	suggestCmd.MarkFlagRequired("issues")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	window, err := parseWindow()
	if err != nil {
		return err
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	catalogue, err := loadCatalogue(suggestIssues)
	if err != nil {
		return err
	}

	commits, err := gitlog.NewReader(suggestRepoPath).Commits(cmd.Context(), window, env.cfg.AuthorName)
	if err != nil {
		return err
	}

	session := tracker.New(nil, nil)
	service := application.NewWorklogServiceWithLogger(nil, session, env.prefs, env.logger)
	events, err := service.Suggest(cmd.Context(), application.SuggestParams{
		Commits:         commits,
		Catalogue:       catalogue,
		AuthorName:      env.cfg.AuthorName,
		AuthorAccountID: env.cfg.AuthorAccountID,
	})
	if err != nil {
		return err
	}

	printDrafts(commits, events)
	return nil
}

func printDrafts(commits []worklog.Commit, events []worklog.Event) {
	if len(events) == 0 {
		fmt.Printf("No drafts produced from %d commits.\n", len(commits))
		return
	}

	fmt.Printf("%d drafts from %d commits:\n", len(events), len(commits))
	var currentDay string
	for _, event := range events {
		day := event.Start.Format("2006-01-02")
		if day != currentDay {
			fmt.Println(day)
			currentDay = day
		}
		fmt.Printf("  %s–%s  %s  (%s)\n",
			event.Start.Format("15:04"),
			event.End.Format("15:04"),
			event.Title,
			formatSpan(event.Resource.TimeSpentSeconds),
		)
	}
}
