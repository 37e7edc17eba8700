package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestFromContextReturnsAttachedLogger(t *testing.T) {
	t.Parallel()

	logger := slog.Default()
	ctx := ContextWithLogger(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Fatalf("FromContext returned %v, want the attached logger", got)
	}
}

func TestFromContextWithoutLogger(t *testing.T) {
	t.Parallel()

	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("FromContext on a bare context returned %v, want nil", got)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info record emitted at warn level: %s", buf.String())
	}

	logger.Warn("visible", "component", "sync")
	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["msg"] != "visible" {
		t.Fatalf("msg = %v, want visible", record["msg"])
	}
	if record["component"] != "sync" {
		t.Fatalf("component = %v, want sync", record["component"])
	}
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, "chatty")

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record emitted at default level: %s", buf.String())
	}

	logger.Info("visible")
	if buf.Len() == 0 {
		t.Fatal("info record suppressed at default level")
	}
}
