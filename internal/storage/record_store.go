// ABOUTME: Interface definitions for record file and event log persistence.
// ABOUTME: Defines the line-oriented contract the record controller works against.
package storage

import (
	"context"

	"github.com/2389-research/tally/internal/models"
)

// RecordStore defines line-level operations on the record file.
type RecordStore interface {
	// ReadLines returns every physical line of the file, without line terminators.
	ReadLines(ctx context.Context) ([]string, error)

	// WriteLines atomically replaces the file contents with the given lines.
	WriteLines(ctx context.Context, lines []string) error

	// AppendLine adds a line to the end of the file.
	AppendLine(ctx context.Context, line string) error

	// Path returns the location of the record file.
	Path() string

	// Close releases any resources held by the store.
	Close() error
}

// EventSink receives log entries. Entries are never read back.
type EventSink interface {
	// Append writes one entry.
	Append(entry models.LogEntry) error

	// Close releases any resources held by the sink.
	Close() error
}
