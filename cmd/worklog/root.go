package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/worklog-reconciler/internal/allocation"
	"github.com/example/worklog-reconciler/internal/config"
	"github.com/example/worklog-reconciler/internal/logging"
	"github.com/example/worklog-reconciler/internal/persistence/sqlite"
	"github.com/example/worklog-reconciler/internal/worklog"
)

var (
	flagFrom string
	flagTo   string
)

var rootCmd = &cobra.Command{
	Use:   "worklog",
	Short: "Reconcile git commit history into tracked worklog entries",
	Long: `worklog turns local git commit history into per-issue worklog entries,
tracks edits against the last loaded snapshot, and saves a date range with a
whole-range replace.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFrom, "from", "", "Start of the date range (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flagTo, "to", "", "End of the date range, inclusive (YYYY-MM-DD)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(reconcileCmd)
}

// environment bundles the wiring every command repeats: configuration,
// logging, preferences, and an open migrated store.
type environment struct {
	cfg    config.Config
	prefs  allocation.Preferences
	logger *slog.Logger
	store  *sqlite.Store
}

func newEnvironment(cmd *cobra.Command) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	prefs, err := config.LoadPreferences(cfg.PreferencesPath)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := store.Migrate(cmd.Context()); err != nil {
		store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &environment{cfg: cfg, prefs: prefs, logger: logger, store: store}, nil
}

func (e *environment) close() {
	if err := e.store.Close(); err != nil {
		e.logger.Error("failed to close storage", "error", err)
	}
}

// parseWindow turns the --from/--to flags into an inclusive window. The end
// date is widened to the last second of its day so same-day ranges work.
func parseWindow() (worklog.Window, error) {
	if strings.TrimSpace(flagFrom) == "" || strings.TrimSpace(flagTo) == "" {
		return worklog.Window{}, fmt.Errorf("both --from and --to are required")
	}

	from, err := time.Parse("2006-01-02", flagFrom)
	if err != nil {
		return worklog.Window{}, fmt.Errorf("invalid --from date %q", flagFrom)
	}
	to, err := time.Parse("2006-01-02", flagTo)
	if err != nil {
		return worklog.Window{}, fmt.Errorf("invalid --to date %q", flagTo)
	}
	if to.Before(from) {
		return worklog.Window{}, fmt.Errorf("--to %q precedes --from %q", flagTo, flagFrom)
	}

	return worklog.Window{
		From: from,
		To:   to.Add(24*time.Hour - time.Second),
	}, nil
}
