package logx

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWritesServiceAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, Config{Service: "crm", Caller: false})
	logger.Debug().Msg("hidden")
	logger.Info().Str("tool", "searchContacts").Msg("tool dispatched")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected only the info line, got %d lines: %s", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["service"] != "crm" || entry["tool"] != "searchContacts" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if _, ok := entry["caller"]; ok {
		t.Fatal("caller must be omitted when disabled")
	}
}

func TestNewDebugLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, Config{Debug: true})
	logger.Debug().Msg("query")

	if !bytes.Contains(buf.Bytes(), []byte(`"level":"debug"`)) {
		t.Fatalf("expected debug entry, got %s", buf.String())
	}
}
