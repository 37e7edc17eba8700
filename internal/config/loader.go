package config

import (
	"fmt"
	"os"
	"strings"
)

// Config captures environment driven configuration values for the worklog tool.
type Config struct {
	SQLiteDSN       string
	AuthorAccountID string
	AuthorName      string
	PreferencesPath string
	LogLevel        string
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting every missing or invalid entry at once.
func Load() (Config, error) {
	cfg := Config{
		SQLiteDSN: "file:worklog.db",
		LogLevel:  "info",
	}

	missing := make([]string, 0, 1)

	if dsn := strings.TrimSpace(os.Getenv("WORKLOG_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if account := strings.TrimSpace(os.Getenv("WORKLOG_AUTHOR_ACCOUNT_ID")); account == "" {
		missing = append(missing, "WORKLOG_AUTHOR_ACCOUNT_ID")
	} else {
		cfg.AuthorAccountID = account
	}

	if name := strings.TrimSpace(os.Getenv("WORKLOG_AUTHOR_NAME")); name != "" {
		cfg.AuthorName = name
	} else {
		cfg.AuthorName = cfg.AuthorAccountID
	}

	if path := strings.TrimSpace(os.Getenv("WORKLOG_PREFERENCES_PATH")); path != "" {
		cfg.PreferencesPath = path
	}

	if level := strings.TrimSpace(os.Getenv("WORKLOG_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}
