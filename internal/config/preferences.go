package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/worklog-reconciler/internal/allocation"
)

// preferencesFile mirrors the on-disk YAML layout of the preferences document.
type preferencesFile struct {
	WorkingDayStart        string `yaml:"working_day_start"`
	WorkingDayEnd          string `yaml:"working_day_end"`
	MinimumDurationMinutes int    `yaml:"minimum_duration_minutes"`
	Timezone               string `yaml:"timezone"`
}

// DefaultPreferences returns the allocation preferences used when no
// preferences file is configured.
func DefaultPreferences() allocation.Preferences {
	return allocation.Preferences{
		WorkingDayStart:        "09:00",
		WorkingDayEnd:          "17:30",
		MinimumDurationMinutes: 60,
		Timezone:               "UTC",
	}
}

// LoadPreferences reads allocation preferences from the YAML document at
// path. An empty path yields the defaults. Fields absent from the document
// keep their default values; present fields are validated before use.
func LoadPreferences(path string) (allocation.Preferences, error) {
	prefs := DefaultPreferences()
	if strings.TrimSpace(path) == "" {
		return prefs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return allocation.Preferences{}, fmt.Errorf("read preferences file: %w", err)
	}

	var doc preferencesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return allocation.Preferences{}, fmt.Errorf("parse preferences file: %w", err)
	}

	invalid := make([]string, 0, 2)

	if doc.WorkingDayStart != "" {
		if clockValid(doc.WorkingDayStart) {
			prefs.WorkingDayStart = doc.WorkingDayStart
		} else {
			invalid = append(invalid, "working_day_start")
		}
	}
	if doc.WorkingDayEnd != "" {
		if clockValid(doc.WorkingDayEnd) {
			prefs.WorkingDayEnd = doc.WorkingDayEnd
		} else {
			invalid = append(invalid, "working_day_end")
		}
	}
	if doc.MinimumDurationMinutes != 0 {
		if doc.MinimumDurationMinutes > 0 {
			prefs.MinimumDurationMinutes = doc.MinimumDurationMinutes
		} else {
			invalid = append(invalid, "minimum_duration_minutes")
		}
	}
	if doc.Timezone != "" {
		if _, err := time.LoadLocation(doc.Timezone); err != nil {
			invalid = append(invalid, "timezone")
		} else {
			prefs.Timezone = doc.Timezone
		}
	}

	if len(invalid) > 0 {
		return allocation.Preferences{}, fmt.Errorf("invalid preferences values: %s", strings.Join(invalid, ", "))
	}

	return prefs, nil
}

func clockValid(value string) bool {
	_, err := time.Parse("15:04", value)
	return err == nil
}
