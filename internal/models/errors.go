// ABOUTME: Error kinds surfaced by record operations and startup.
// ABOUTME: Recoverable kinds are caught by the menu loop; MissingArgumentError is fatal.
package models

import "fmt"

// MissingArgumentError is returned when the record file argument is absent.
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument: %s", e.Name)
}

// ValidationError reports a name or quantity that fails its format rule.
type ValidationError struct {
	Field string
	Value string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Rule)
}

// NotFoundError reports that no record matched a delete, search, or update target.
type NotFoundError struct {
	Target string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%q does not exist", e.Target)
}

// MalformedRecordError reports a record file line that is not name,quantity.
type MalformedRecordError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record on line %d (%q): %s", e.Line, e.Text, e.Reason)
}
