// ABOUTME: Append-only event log stored next to the record file.
// ABOUTME: Writes one "<timestamp> <event> <outcome> [<details>]" line per entry.
package storage

import (
	"fmt"
	"os"
	"sync"

	"github.com/2389-research/tally/internal/models"
)

// LogSuffix is appended to the record file path to derive the log file path.
const LogSuffix = "_log"

// LogPathFor returns the event log path belonging to a record file.
func LogPathFor(recordPath string) string {
	return recordPath + LogSuffix
}

// EventLog appends formatted entries to a log file. It never truncates.
type EventLog struct {
	mu     sync.Mutex
	path   string
	layout string
	file   *os.File
}

// NewEventLog opens (or creates) the log file at path in append mode.
// layout is the time layout used for entry timestamps.
func NewEventLog(path, layout string) (*EventLog, error) {
	if layout == "" {
		layout = models.TimestampDMY
	}
	// #nosec G304 -- path is derived from the user-supplied record file path
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, defaultFileMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &EventLog{
		path:   path,
		layout: layout,
		file:   f,
	}, nil
}

// Path returns the location of the log file.
func (l *EventLog) Path() string {
	return l.path
}

// Append writes a single entry line.
func (l *EventLog) Append(entry models.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("log file %s is closed", l.path)
	}
	if _, err := l.file.WriteString(entry.Format(l.layout) + "\n"); err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	return nil
}

// Close closes the underlying file. Further appends fail.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
