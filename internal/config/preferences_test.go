package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePreferences(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write preferences file: %v", err)
	}
	return path
}

func TestLoadPreferences(t *testing.T) {

	t.Run("empty path yields defaults", func(t *testing.T) {
		prefs, err := LoadPreferences("")
		if err != nil {
			t.Fatalf("LoadPreferences returned error: %v", err)
		}
		if prefs != DefaultPreferences() {
			t.Fatalf("unexpected preferences: %+v", prefs)
		}
	})

	t.Run("partial document keeps defaults for absent fields", func(t *testing.T) {
		path := writePreferences(t, "working_day_start: \"08:00\"\nminimum_duration_minutes: 30\n")

		prefs, err := LoadPreferences(path)
		if err != nil {
			t.Fatalf("LoadPreferences returned error: %v", err)
		}
		if prefs.WorkingDayStart != "08:00" {
			t.Fatalf("unexpected start: %q", prefs.WorkingDayStart)
		}
		if prefs.WorkingDayEnd != "17:30" {
			t.Fatalf("expected default end, got %q", prefs.WorkingDayEnd)
		}
		if prefs.MinimumDurationMinutes != 30 {
			t.Fatalf("unexpected minimum duration: %d", prefs.MinimumDurationMinutes)
		}
		if prefs.Timezone != "UTC" {
			t.Fatalf("expected default timezone, got %q", prefs.Timezone)
		}
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		path := writePreferences(t, "working_day_start: \"25:99\"\ntimezone: Mars/Olympus\n")

		_, err := LoadPreferences(path)
		if err == nil {
			t.Fatal("expected error for invalid fields")
		}
		if !strings.Contains(err.Error(), "working_day_start") || !strings.Contains(err.Error(), "timezone") {
			t.Fatalf("error does not name the invalid fields: %v", err)
		}
	})

	t.Run("rejects malformed documents", func(t *testing.T) {
		path := writePreferences(t, "working_day_start: [\n")

		if _, err := LoadPreferences(path); err == nil {
			t.Fatal("expected error for malformed YAML")
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := LoadPreferences(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatal("expected error for a missing file")
		}
	})
}
