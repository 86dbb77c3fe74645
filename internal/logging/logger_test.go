package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"equiv/internal/config"
	"equiv/internal/logging"
)

func TestNewFromConfigWritesJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("resolved", logging.String(logging.FieldTarget, "http://pa/1"))

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "equiv.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", content, err)
	}
	if record["msg"] != "resolved" || record[logging.FieldTarget] != "http://pa/1" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerLiftsSubjectIntoHeader(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "channels").Info("linked",
		logging.String(logging.FieldPublisher, "bbc.co.uk"),
		logging.String(logging.FieldTarget, "http://bbc/one"),
		logging.String(logging.FieldCandidate, "http://mb/one"),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if !strings.Contains(lines[0], "INFO [channels] http://bbc/one (bbc.co.uk) - linked") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if len(lines) != 2 || !strings.Contains(lines[1], "candidate: http://mb/one") {
		t.Fatalf("unexpected fields: %q", lines[1:])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := logging.WithRunID(context.Background(), "run-1")
	ctx = logging.WithTarget(ctx, "http://pa/1")

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WithContext(ctx, base).Info("contextual log")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[logging.FieldRunID] != "run-1" || record[logging.FieldTarget] != "http://pa/1" {
		t.Fatalf("expected context fields, got %v", record)
	}
}

func TestTeeLoggerDuplicatesRecords(t *testing.T) {
	var a, b bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&a, nil))
	logger := logging.TeeLogger(base, slog.NewJSONHandler(&b, nil))
	logger.Info("twice")
	if a.Len() == 0 || b.Len() == 0 {
		t.Fatalf("expected both handlers to receive the record: %q / %q", a.String(), b.String())
	}
}

func TestErrorWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logging.ErrorWithContext(slog.New(slog.NewJSONHandler(&buf, nil)), "failed", "update_failed")
	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[logging.FieldEventType] != "update_failed" || record[logging.FieldErrorHint] == nil {
		t.Fatalf("expected injected fields, got %v", record)
	}
}
