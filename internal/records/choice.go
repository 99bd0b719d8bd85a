// ABOUTME: Resolution choices for adding a record whose name matches existing lines.
// ABOUTME: Defines the Chooser contract used by the menu prompt and the MCP tools.
package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/2389-research/tally/internal/models"
)

// MatchChoice selects what AddRecord does when similar names already exist.
type MatchChoice int

const (
	// ChoiceAbort leaves the file unchanged.
	ChoiceAbort MatchChoice = iota
	// ChoiceNew appends a separate line with the same data.
	ChoiceNew
	// ChoiceMerge adds the quantity into the first matching line.
	ChoiceMerge
)

func (c MatchChoice) String() string {
	switch c {
	case ChoiceNew:
		return "new"
	case ChoiceMerge:
		return "merge"
	default:
		return "abort"
	}
}

// ParseMatchChoice accepts "new", "merge", or "abort" in any case.
func ParseMatchChoice(s string) (MatchChoice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return ChoiceNew, nil
	case "merge":
		return ChoiceMerge, nil
	case "abort", "":
		return ChoiceAbort, nil
	}
	return ChoiceAbort, fmt.Errorf("unknown choice %q (want new, merge, or abort)", s)
}

// Chooser decides how to resolve an add whose name matches existing lines.
type Chooser interface {
	ChooseOnMatch(ctx context.Context, name string, matches []models.NumberedLine) (MatchChoice, error)
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(ctx context.Context, name string, matches []models.NumberedLine) (MatchChoice, error)

// ChooseOnMatch calls f.
func (f ChooserFunc) ChooseOnMatch(ctx context.Context, name string, matches []models.NumberedLine) (MatchChoice, error) {
	return f(ctx, name, matches)
}

// StaticChoice returns a Chooser that always answers c.
func StaticChoice(c MatchChoice) Chooser {
	return ChooserFunc(func(context.Context, string, []models.NumberedLine) (MatchChoice, error) {
		return c, nil
	})
}
