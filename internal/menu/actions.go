// ABOUTME: Menu actions that gather input line by line and call the record controller.
// ABOUTME: Includes the new/merge/abort prompt used when an added name already matches.
package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/2389-research/tally/internal/models"
	"github.com/2389-research/tally/internal/records"
)

func (s *Session) add(ctx context.Context) error {
	name, err := s.prompt("Record name: ")
	if err != nil {
		return err
	}
	quantity, err := s.prompt("Quantity: ")
	if err != nil {
		return err
	}

	result, err := s.ops.AddRecord(ctx, name, quantity, records.ChooserFunc(s.chooseOnMatch))
	if err != nil {
		return err
	}

	switch result.Outcome {
	case records.Merged:
		s.ok(fmt.Sprintf("Merged into line %d: %s", result.Line.Number, result.Line.Text))
	case records.Aborted:
		_, _ = fmt.Fprintln(s.out, "Nothing added.")
	default:
		s.ok(fmt.Sprintf("Added line %d: %s", result.Line.Number, result.Line.Text))
	}
	return nil
}

// chooseOnMatch shows the similar lines and asks how to proceed until it gets a valid answer.
func (s *Session) chooseOnMatch(_ context.Context, name string, matches []models.NumberedLine) (records.MatchChoice, error) {
	_, _ = fmt.Fprintf(s.out, "Records similar to %q already exist:\n", name)
	s.printLines(matches)
	_, _ = fmt.Fprintln(s.out, "1) Create a separate record")
	_, _ = fmt.Fprintf(s.out, "2) Merge quantity into line %d\n", matches[0].Number)
	_, _ = fmt.Fprintln(s.out, "3) Abort")

	for {
		answer, err := s.prompt("Choose 1-3: ")
		if err != nil {
			return records.ChoiceAbort, err
		}
		switch strings.ToLower(answer) {
		case "1", "n", "new":
			return records.ChoiceNew, nil
		case "2", "m", "merge":
			return records.ChoiceMerge, nil
		case "3", "a", "abort":
			return records.ChoiceAbort, nil
		}
		s.fail(fmt.Sprintf("Invalid choice %q", answer))
	}
}

func (s *Session) delete(ctx context.Context) error {
	name, err := s.prompt("Record name to delete: ")
	if err != nil {
		return err
	}
	removed, err := s.ops.DeleteRecord(ctx, name)
	if err != nil {
		return err
	}
	for _, l := range removed {
		s.ok(fmt.Sprintf("Deleted line %d: %s", l.Number, l.Text))
	}
	return nil
}

func (s *Session) search(ctx context.Context) error {
	keyword, err := s.prompt("Search for: ")
	if err != nil {
		return err
	}
	found, err := s.ops.SearchRecord(ctx, keyword)
	if err != nil {
		return err
	}
	s.printLines(found)
	return nil
}

func (s *Session) rename(ctx context.Context) error {
	oldName, err := s.prompt("Current record name: ")
	if err != nil {
		return err
	}
	newName, err := s.prompt("New record name: ")
	if err != nil {
		return err
	}
	updated, err := s.ops.UpdateRecordName(ctx, oldName, newName)
	if err != nil {
		return err
	}
	for _, l := range updated {
		s.ok(fmt.Sprintf("Updated line %d: %s", l.Number, l.Text))
	}
	return nil
}

func (s *Session) setQuantity(ctx context.Context) error {
	name, err := s.prompt("Record name: ")
	if err != nil {
		return err
	}
	quantity, err := s.prompt("New quantity: ")
	if err != nil {
		return err
	}
	updated, err := s.ops.SetQuantity(ctx, name, quantity)
	if err != nil {
		return err
	}
	for _, l := range updated {
		s.ok(fmt.Sprintf("Updated line %d: %s", l.Number, l.Text))
	}
	return nil
}

func (s *Session) addQuantity(ctx context.Context) error {
	name, err := s.prompt("Record name: ")
	if err != nil {
		return err
	}
	delta, err := s.prompt("Quantity to add: ")
	if err != nil {
		return err
	}
	updated, err := s.ops.AddQuantity(ctx, name, delta)
	if err != nil {
		return err
	}
	for _, l := range updated {
		s.ok(fmt.Sprintf("Updated line %d: %s", l.Number, l.Text))
	}
	return nil
}

func (s *Session) list(ctx context.Context) error {
	lines, err := s.ops.ListSorted(ctx)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		_, _ = fmt.Fprintln(s.out, "No records.")
		return nil
	}
	for _, line := range lines {
		_, _ = fmt.Fprintln(s.out, line)
	}
	return nil
}

func (s *Session) total(ctx context.Context) error {
	total, err := s.ops.TotalQuantity(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(s.out, "Total quantity: %d\n", total)
	return nil
}
