package logx

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, Config{Debug: false, Caller: false})
	logger.Debug().Msg("hidden")
	logger.Info().Str("path", "REQUEST_INFO").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at info level, got %q", buf.String())
	}

	var event map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if event["message"] != "visible" || event["path"] != "REQUEST_INFO" {
		t.Fatalf("unexpected event: %v", event)
	}
	if _, ok := event["caller"]; ok {
		t.Fatalf("caller must be omitted when disabled: %v", event)
	}
}

func TestNewDebugWithCaller(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, Config{Debug: true, Caller: true})
	logger.Debug().Msg("shown")

	var event map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &event); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if event["level"] != "debug" {
		t.Fatalf("unexpected level: %v", event["level"])
	}
	if _, ok := event["caller"]; !ok {
		t.Fatalf("expected caller field: %v", event)
	}
}
