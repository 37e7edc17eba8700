package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/worklog-reconciler/internal/application"
	"github.com/example/worklog-reconciler/internal/gitlog"
	"github.com/example/worklog-reconciler/internal/tracker"
)

var (
	reconcileRepoPath string
	reconcileIssues   string
	reconcileDryRun   bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Replace the stored date range with commit-derived entries",
	Long: `reconcile loads the stored entries for the date range, replaces them with
the allocation derived from commit history, and saves the result. The save
deletes every stored entry in the range before recreating the new state, so
re-running it is safe.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileRepoPath, "repo", "", "Path to the git repository (defaults to the working directory)")
	reconcileCmd.Flags().StringVar(&reconcileIssues, "issues", "", "Path to the issue catalogue YAML document")
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "Show the pending changes without saving")
	reconcileCmd.MarkFlagRequired("issues")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	window, err := parseWindow()
	if err != nil {
		return err
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	catalogue, err := loadCatalogue(reconcileIssues)
	if err != nil {
		return err
	}

	commits, err := gitlog.NewReader(reconcileRepoPath).Commits(cmd.Context(), window, env.cfg.AuthorName)
	if err != nil {
		return err
	}

	session := tracker.New(nil, nil)
	repo := newWorkLogRepositoryAdapter(env.store)
	worklogService := application.NewWorklogServiceWithLogger(repo, session, env.prefs, env.logger)
	syncService := application.NewSyncServiceWithLogger(repo, session, time.Now, env.logger)

	if _, err := worklogService.LoadWindow(cmd.Context(), window, env.cfg.AuthorAccountID); err != nil {
		return err
	}

	session.DeleteAll()
	if _, err := worklogService.Suggest(cmd.Context(), application.SuggestParams{
		Commits:         commits,
		Catalogue:       catalogue,
		AuthorName:      env.cfg.AuthorName,
		AuthorAccountID: env.cfg.AuthorAccountID,
	}); err != nil {
		return err
	}

	if reconcileDryRun {
		printDiff(session.Diff(window, env.cfg.AuthorAccountID))
		return nil
	}

	result, err := syncService.Commit(cmd.Context(), window, env.cfg.AuthorAccountID)
	if err != nil {
		return err
	}

	printSyncResult(result)
	if result.TotalFailed > 0 {
		return fmt.Errorf("%d operations failed", result.TotalFailed)
	}
	return nil
}

func printDiff(diff tracker.Diff) {
	fmt.Printf("Pending changes: %d new, %d modified, %d deleted.\n",
		len(diff.New), len(diff.Modified), len(diff.Deleted))
	for _, event := range diff.New {
		fmt.Printf("  + %s  %s\n", event.Start.Format("2006-01-02 15:04"), event.Title)
	}
	for _, event := range diff.Modified {
		fmt.Printf("  ~ %s  %s\n", event.Start.Format("2006-01-02 15:04"), event.Title)
	}
	for _, event := range diff.Deleted {
		fmt.Printf("  - %s  %s\n", event.Start.Format("2006-01-02 15:04"), event.Title)
	}
}

func printSyncResult(result application.SyncResult) {
	fmt.Printf("Deleted %d, created %d, failed %d.\n",
		result.Deleted.Success, result.Created.Success, result.TotalFailed)
	for _, failure := range append(result.Deleted.Errors, result.Created.Errors...) {
		fmt.Printf("  ! %s %s: %s\n", failure.IssueKey, failure.Started.Format("2006-01-02 15:04"), failure.Message)
	}
}
