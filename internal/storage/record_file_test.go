// ABOUTME: Tests for flat-file record storage and the append-only event log.
// ABOUTME: Covers creation on open, append newline repair, atomic rewrite, and log appends.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/2389-research/tally/internal/models"
)

func TestNewRecordFileCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records")

	store, err := NewRecordFile(path)
	if err != nil {
		t.Fatalf("NewRecordFile error: %v", err)
	}
	defer func() { _ = store.Close() }()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("record file not created: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty file, got %d bytes", info.Size())
	}
	if store.Path() != path {
		t.Errorf("Path() = %q, want %q", store.Path(), path)
	}
}

func TestNewRecordFileKeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records")
	if err := os.WriteFile(path, []byte("apple,3\n"), 0644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	store, err := NewRecordFile(path)
	if err != nil {
		t.Fatalf("NewRecordFile error: %v", err)
	}

	lines, err := store.ReadLines(context.Background())
	if err != nil {
		t.Fatalf("ReadLines error: %v", err)
	}
	if diff := cmp.Diff([]string{"apple,3"}, lines); diff != "" {
		t.Errorf("ReadLines mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRecordFileRequiresPath(t *testing.T) {
	if _, err := NewRecordFile(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestAppendLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records")
	store, err := NewRecordFile(path)
	if err != nil {
		t.Fatalf("NewRecordFile error: %v", err)
	}
	ctx := context.Background()

	if err := store.AppendLine(ctx, "apple,3"); err != nil {
		t.Fatalf("AppendLine error: %v", err)
	}
	if err := store.AppendLine(ctx, "banana,5"); err != nil {
		t.Fatalf("AppendLine error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != "apple,3\nbanana,5\n" {
		t.Errorf("unexpected content %q", string(data))
	}
}

func TestAppendLineRepairsMissingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records")
	if err := os.WriteFile(path, []byte("apple,3"), 0644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}
	store, err := NewRecordFile(path)
	if err != nil {
		t.Fatalf("NewRecordFile error: %v", err)
	}

	if err := store.AppendLine(context.Background(), "banana,5"); err != nil {
		t.Fatalf("AppendLine error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "apple,3\nbanana,5\n" {
		t.Errorf("unexpected content %q", string(data))
	}
}

func TestWriteLinesReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records")
	if err := os.WriteFile(path, []byte("apple,3\nbanana,5\n"), 0600); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}
	store, err := NewRecordFile(path)
	if err != nil {
		t.Fatalf("NewRecordFile error: %v", err)
	}
	ctx := context.Background()

	if err := store.WriteLines(ctx, []string{"banana,5", "", "cherry,1"}); err != nil {
		t.Fatalf("WriteLines error: %v", err)
	}

	lines, err := store.ReadLines(ctx)
	if err != nil {
		t.Fatalf("ReadLines error: %v", err)
	}
	if diff := cmp.Diff([]string{"banana,5", "", "cherry,1"}, lines); diff != "" {
		t.Errorf("ReadLines mismatch (-want +got):\n%s", diff)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat error: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected permissions 0600 to be kept, got %o", info.Mode().Perm())
	}

	if err := store.WriteLines(ctx, nil); err != nil {
		t.Fatalf("WriteLines(nil) error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if len(data) != 0 {
		t.Errorf("expected empty file after writing no lines, got %q", string(data))
	}
}

func TestWriteLinesHonorsCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records")
	store, err := NewRecordFile(path)
	if err != nil {
		t.Fatalf("NewRecordFile error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.WriteLines(ctx, []string{"apple,1"}); err == nil {
		t.Error("expected error for cancelled context")
	}
	data, _ := os.ReadFile(path)
	if len(data) != 0 {
		t.Errorf("file should be untouched, got %q", string(data))
	}
}

func TestRewriteKeepsCRLFTerminators(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records")
	if err := os.WriteFile(path, []byte("apple,3\r\nbanana,5\r\n"), 0644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}
	store, err := NewRecordFile(path)
	if err != nil {
		t.Fatalf("NewRecordFile error: %v", err)
	}
	ctx := context.Background()

	if err := store.WriteLines(ctx, []string{"apple,4", "banana,5"}); err != nil {
		t.Fatalf("WriteLines error: %v", err)
	}
	if err := store.AppendLine(ctx, "cherry,1"); err != nil {
		t.Fatalf("AppendLine error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "apple,4\r\nbanana,5\r\ncherry,1\r\n" {
		t.Errorf("expected CRLF terminators to be kept, got %q", string(data))
	}
}

func TestAppendLineRepairsMissingCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records")
	if err := os.WriteFile(path, []byte("apple,3\r\nbanana,5"), 0644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}
	store, err := NewRecordFile(path)
	if err != nil {
		t.Fatalf("NewRecordFile error: %v", err)
	}

	if err := store.AppendLine(context.Background(), "cherry,1"); err != nil {
		t.Fatalf("AppendLine error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "apple,3\r\nbanana,5\r\ncherry,1\r\n" {
		t.Errorf("unexpected content %q", string(data))
	}
}

func TestLineEnding(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"", "\n"},
		{"a,1\n", "\n"},
		{"a,1", "\n"},
		{"a,1\r\nb,2\r\n", "\r\n"},
	}
	for _, tt := range tests {
		if got := lineEnding(tt.content); got != tt.want {
			t.Errorf("lineEnding(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty", "", nil},
		{"single terminated", "a,1\n", []string{"a,1"}},
		{"single unterminated", "a,1", []string{"a,1"}},
		{"crlf", "a,1\r\nb,2\r\n", []string{"a,1", "b,2"}},
		{"blank line kept", "a,1\n\nb,2\n", []string{"a,1", "", "b,2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, splitLines(tt.content)); diff != "" {
				t.Errorf("splitLines(%q) mismatch (-want +got):\n%s", tt.content, diff)
			}
		})
	}
}

func TestEventLogAppends(t *testing.T) {
	path := LogPathFor(filepath.Join(t.TempDir(), "records"))
	if !strings.HasSuffix(path, "records_log") {
		t.Fatalf("LogPathFor should append _log, got %q", path)
	}
	if err := os.WriteFile(path, []byte("existing line\n"), 0644); err != nil {
		t.Fatalf("failed to seed log: %v", err)
	}

	log, err := NewEventLog(path, models.TimestampISO)
	if err != nil {
		t.Fatalf("NewEventLog error: %v", err)
	}

	ts := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.Local)
	if err := log.Append(models.LogEntry{Timestamp: ts, Event: models.EventExit, Outcome: models.OutcomeSuccess}); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	data, _ := os.ReadFile(path)
	want := "existing line\n2024-01-02 03:04:05 exit success\n"
	if string(data) != want {
		t.Errorf("log content = %q, want %q", string(data), want)
	}

	if err := log.Append(models.NewLogEntry(models.EventExit, models.OutcomeSuccess, "")); err == nil {
		t.Error("expected error appending to closed log")
	}
}

func TestEventLogDefaultLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records_log")
	log, err := NewEventLog(path, "")
	if err != nil {
		t.Fatalf("NewEventLog error: %v", err)
	}
	defer func() { _ = log.Close() }()

	ts := time.Date(2024, time.December, 31, 23, 59, 58, 0, time.Local)
	if err := log.Append(models.LogEntry{Timestamp: ts, Event: models.EventAddRecord, Outcome: models.OutcomeFailure, Details: "bad name"}); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "31/12/2024 23:59:58 add_record failure bad name\n" {
		t.Errorf("unexpected log content %q", string(data))
	}
}
