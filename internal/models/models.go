// ABOUTME: Core data models for quantity records and event log entries.
// ABOUTME: Provides line encoding/decoding and the log entry line format.
package models

import (
	"strconv"
	"strings"
	"time"
)

// Separator splits the name and quantity fields of a record line.
const Separator = ","

// Record is a named quantity persisted as one line of the record file.
type Record struct {
	Name     string
	Quantity int64
}

// Line renders the record in its on-disk form, name,quantity.
func (r Record) Line() string {
	return r.Name + Separator + strconv.FormatInt(r.Quantity, 10)
}

// ParseRecord decodes a single record line. lineNo is only used for error reporting.
func ParseRecord(lineNo int, line string) (Record, error) {
	idx := strings.LastIndex(line, Separator)
	if idx <= 0 {
		return Record{}, &MalformedRecordError{Line: lineNo, Text: line, Reason: "missing name or separator"}
	}
	qty, err := ParseQuantity(line[idx+1:])
	if err != nil {
		return Record{}, &MalformedRecordError{Line: lineNo, Text: line, Reason: "quantity is not a non-negative integer"}
	}
	return Record{Name: line[:idx], Quantity: qty}, nil
}

// NumberedLine is a record file line tagged with its 1-based line number.
type NumberedLine struct {
	Number int
	Text   string
}

// Event names written to the log file.
const (
	EventAddRecord     = "add_record"
	EventDeleteRecord  = "delete_record"
	EventSearchRecord  = "search_record"
	EventRenameRecord  = "rename_record"
	EventSetQuantity   = "set_quantity"
	EventAddQuantity   = "add_quantity"
	EventListRecords   = "list_records"
	EventTotalQuantity = "total_quantity"
	EventInvalidOption = "invalid_option"
	EventExit          = "exit"
)

// Outcome values written to the log file.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeNotFound = "not_found"
	OutcomeAborted  = "aborted"
)

// Timestamp layouts for log entries.
const (
	TimestampDMY = "02/01/2006 15:04:05"
	TimestampISO = "2006-01-02 15:04:05"
)

// LogEntry is one line of the append-only event log.
type LogEntry struct {
	Timestamp time.Time
	Event     string
	Outcome   string
	Details   string
}

// NewLogEntry creates a log entry stamped with the current time.
func NewLogEntry(event, outcome, details string) LogEntry {
	return LogEntry{
		Timestamp: time.Now(),
		Event:     event,
		Outcome:   outcome,
		Details:   details,
	}
}

// Format renders the entry as "<timestamp> <event> <outcome> [<details>]".
// Newlines in details are flattened so every entry stays on one line.
func (e LogEntry) Format(layout string) string {
	var sb strings.Builder
	sb.WriteString(e.Timestamp.Format(layout))
	sb.WriteString(" ")
	sb.WriteString(e.Event)
	sb.WriteString(" ")
	sb.WriteString(e.Outcome)
	if e.Details != "" {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(strings.Fields(e.Details), " "))
	}
	return sb.String()
}
