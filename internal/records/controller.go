// ABOUTME: Record store controller implementing add, delete, search, update, list, and total.
// ABOUTME: Every operation re-reads the record file and appends exactly one event log entry.
package records

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/2389-research/tally/internal/models"
	"github.com/2389-research/tally/internal/storage"
)

// Controller owns the record file and event log for one session.
// Operations are serialized so a single writer touches the file at a time.
type Controller struct {
	mu            sync.Mutex
	store         storage.RecordStore
	events        storage.EventSink
	matchAll      bool
	caseSensitive bool
	logger        *zap.Logger
}

// Option configures optional Controller behavior.
type Option func(*Controller)

// WithMatchAll makes delete, rename, and quantity updates affect every line
// with the name prefix instead of only the first.
func WithMatchAll(all bool) Option {
	return func(c *Controller) {
		c.matchAll = all
	}
}

// WithCaseSensitiveSearch makes SearchRecord match case exactly.
func WithCaseSensitiveSearch(sensitive bool) Option {
	return func(c *Controller) {
		c.caseSensitive = sensitive
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a controller over the given record store and event sink.
func NewController(store storage.RecordStore, events storage.EventSink, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if events == nil {
		return nil, fmt.Errorf("event sink is required")
	}

	c := &Controller{
		store:  store,
		events: events,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AddOutcome describes what AddRecord did.
type AddOutcome string

const (
	AddedNew       AddOutcome = "added"
	AddedDuplicate AddOutcome = "added_duplicate"
	Merged         AddOutcome = "merged"
	Aborted        AddOutcome = "aborted"
)

// AddResult reports the effect of AddRecord.
type AddResult struct {
	Outcome AddOutcome
	// Line is the written line; zero when aborted.
	Line models.NumberedLine
	// Matches are the existing lines that contained the name.
	Matches []models.NumberedLine
}

// AddRecord validates and stores a new record. When existing lines contain the
// name (case-insensitively), chooser decides between a new line, a merge into
// the first match, or abort. A nil chooser aborts.
func (c *Controller) AddRecord(ctx context.Context, name, quantity string, chooser Chooser) (*AddResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.addRecord(ctx, name, quantity, chooser)
	switch {
	case err != nil:
		c.logFailure(models.EventAddRecord, err)
	case result.Outcome == Aborted:
		c.log(models.EventAddRecord, models.OutcomeAborted, name)
	default:
		c.log(models.EventAddRecord, models.OutcomeSuccess, fmt.Sprintf("%s line %d: %s", result.Outcome, result.Line.Number, result.Line.Text))
	}
	return result, err
}

func (c *Controller) addRecord(ctx context.Context, name, quantity string, chooser Chooser) (*AddResult, error) {
	if err := models.ValidateName(name); err != nil {
		return nil, err
	}
	qty, err := models.ParseQuantity(quantity)
	if err != nil {
		return nil, err
	}

	lines, err := c.store.ReadLines(ctx)
	if err != nil {
		return nil, err
	}

	matches := containing(lines, name, false)
	record := models.Record{Name: name, Quantity: qty}

	if len(matches) == 0 {
		line, err := c.appendRecord(ctx, lines, record)
		if err != nil {
			return nil, err
		}
		return &AddResult{Outcome: AddedNew, Line: line}, nil
	}

	choice := ChoiceAbort
	if chooser != nil {
		choice, err = chooser.ChooseOnMatch(ctx, name, matches)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve existing match: %w", err)
		}
	}
	c.logger.Debug("resolved add against existing lines",
		zap.String("name", name),
		zap.Int("matches", len(matches)),
		zap.Stringer("choice", choice))

	switch choice {
	case ChoiceNew:
		line, err := c.appendRecord(ctx, lines, record)
		if err != nil {
			return nil, err
		}
		return &AddResult{Outcome: AddedDuplicate, Line: line, Matches: matches}, nil

	case ChoiceMerge:
		first := matches[0]
		existing, err := models.ParseRecord(first.Number, first.Text)
		if err != nil {
			return nil, err
		}
		sum, err := addQuantities(existing.Quantity, qty)
		if err != nil {
			return nil, err
		}
		merged := models.Record{Name: name, Quantity: sum}.Line()
		lines[first.Number-1] = merged
		if err := c.store.WriteLines(ctx, lines); err != nil {
			return nil, err
		}
		return &AddResult{
			Outcome: Merged,
			Line:    models.NumberedLine{Number: first.Number, Text: merged},
			Matches: matches,
		}, nil
	}

	return &AddResult{Outcome: Aborted, Matches: matches}, nil
}

func (c *Controller) appendRecord(ctx context.Context, lines []string, record models.Record) (models.NumberedLine, error) {
	text := record.Line()
	if err := c.store.AppendLine(ctx, text); err != nil {
		return models.NumberedLine{}, err
	}
	return models.NumberedLine{Number: len(lines) + 1, Text: text}, nil
}

// DeleteRecord removes the line starting with "name," (every such line when
// match-all is set). An absent name leaves the file untouched.
func (c *Controller) DeleteRecord(ctx context.Context, name string) ([]models.NumberedLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, err := c.deleteRecord(ctx, name)
	if err != nil {
		c.logFailure(models.EventDeleteRecord, err)
		return nil, err
	}
	c.log(models.EventDeleteRecord, models.OutcomeSuccess, joinNumbered(removed))
	return removed, nil
}

func (c *Controller) deleteRecord(ctx context.Context, name string) ([]models.NumberedLine, error) {
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Value: name, Rule: "must not be empty"}
	}

	lines, err := c.store.ReadLines(ctx)
	if err != nil {
		return nil, err
	}

	targets := c.withPrefix(lines, name)
	if len(targets) == 0 {
		return nil, &models.NotFoundError{Target: name}
	}

	drop := make(map[int]bool, len(targets))
	for _, t := range targets {
		drop[t.Number-1] = true
	}
	kept := make([]string, 0, len(lines)-len(targets))
	for i, line := range lines {
		if !drop[i] {
			kept = append(kept, line)
		}
	}

	if err := c.store.WriteLines(ctx, kept); err != nil {
		return nil, err
	}
	return targets, nil
}

// SearchRecord returns every line containing keyword, tagged with its line number.
func (c *Controller) SearchRecord(ctx context.Context, keyword string) ([]models.NumberedLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	found, err := c.searchRecord(ctx, keyword)
	if err != nil {
		c.logFailure(models.EventSearchRecord, err)
		return nil, err
	}
	c.log(models.EventSearchRecord, models.OutcomeSuccess, fmt.Sprintf("%q matched %d line(s)", keyword, len(found)))
	return found, nil
}

func (c *Controller) searchRecord(ctx context.Context, keyword string) ([]models.NumberedLine, error) {
	if keyword == "" {
		return nil, &models.ValidationError{Field: "keyword", Value: keyword, Rule: "must not be empty"}
	}

	lines, err := c.store.ReadLines(ctx)
	if err != nil {
		return nil, err
	}

	found := containing(lines, keyword, c.caseSensitive)
	if len(found) == 0 {
		return nil, &models.NotFoundError{Target: keyword}
	}
	return found, nil
}

// UpdateRecordName replaces the prefix "oldName," with "newName,".
func (c *Controller) UpdateRecordName(ctx context.Context, oldName, newName string) ([]models.NumberedLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated, err := c.updateRecordName(ctx, oldName, newName)
	if err != nil {
		c.logFailure(models.EventRenameRecord, err)
		return nil, err
	}
	c.log(models.EventRenameRecord, models.OutcomeSuccess, fmt.Sprintf("%s -> %s", oldName, joinNumbered(updated)))
	return updated, nil
}

func (c *Controller) updateRecordName(ctx context.Context, oldName, newName string) ([]models.NumberedLine, error) {
	if oldName == "" {
		return nil, &models.ValidationError{Field: "name", Value: oldName, Rule: "must not be empty"}
	}
	if err := models.ValidateName(newName); err != nil {
		return nil, err
	}

	lines, err := c.store.ReadLines(ctx)
	if err != nil {
		return nil, err
	}

	targets := c.withPrefix(lines, oldName)
	if len(targets) == 0 {
		return nil, &models.NotFoundError{Target: oldName}
	}

	oldPrefix := oldName + models.Separator
	updated := make([]models.NumberedLine, 0, len(targets))
	for _, t := range targets {
		text := newName + models.Separator + strings.TrimPrefix(t.Text, oldPrefix)
		lines[t.Number-1] = text
		updated = append(updated, models.NumberedLine{Number: t.Number, Text: text})
	}

	if err := c.store.WriteLines(ctx, lines); err != nil {
		return nil, err
	}
	return updated, nil
}

// SetQuantity replaces the quantity of the record named name.
func (c *Controller) SetQuantity(ctx context.Context, name, quantity string) ([]models.NumberedLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated, err := c.setQuantity(ctx, name, quantity)
	if err != nil {
		c.logFailure(models.EventSetQuantity, err)
		return nil, err
	}
	c.log(models.EventSetQuantity, models.OutcomeSuccess, joinNumbered(updated))
	return updated, nil
}

func (c *Controller) setQuantity(ctx context.Context, name, quantity string) ([]models.NumberedLine, error) {
	qty, err := models.ParseQuantity(quantity)
	if err != nil {
		return nil, err
	}
	return c.rewriteQuantity(ctx, name, func(int64) (int64, error) {
		return qty, nil
	})
}

// AddQuantity adds delta to the quantity of the record named name.
func (c *Controller) AddQuantity(ctx context.Context, name, delta string) ([]models.NumberedLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated, err := c.addQuantity(ctx, name, delta)
	if err != nil {
		c.logFailure(models.EventAddQuantity, err)
		return nil, err
	}
	c.log(models.EventAddQuantity, models.OutcomeSuccess, fmt.Sprintf("+%s %s", delta, joinNumbered(updated)))
	return updated, nil
}

func (c *Controller) addQuantity(ctx context.Context, name, delta string) ([]models.NumberedLine, error) {
	d, err := models.ParseQuantity(delta)
	if err != nil {
		return nil, err
	}
	return c.rewriteQuantity(ctx, name, func(existing int64) (int64, error) {
		return addQuantities(existing, d)
	})
}

// rewriteQuantity reads the target line(s), computes the new quantity, and
// rewrites them. Nothing is written if any target line is malformed.
func (c *Controller) rewriteQuantity(ctx context.Context, name string, compute func(existing int64) (int64, error)) ([]models.NumberedLine, error) {
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Value: name, Rule: "must not be empty"}
	}

	lines, err := c.store.ReadLines(ctx)
	if err != nil {
		return nil, err
	}

	targets := c.withPrefix(lines, name)
	if len(targets) == 0 {
		return nil, &models.NotFoundError{Target: name}
	}

	updated := make([]models.NumberedLine, 0, len(targets))
	for _, t := range targets {
		existing, err := models.ParseRecord(t.Number, t.Text)
		if err != nil {
			return nil, err
		}
		qty, err := compute(existing.Quantity)
		if err != nil {
			return nil, err
		}
		text := models.Record{Name: name, Quantity: qty}.Line()
		lines[t.Number-1] = text
		updated = append(updated, models.NumberedLine{Number: t.Number, Text: text})
	}

	if err := c.store.WriteLines(ctx, lines); err != nil {
		return nil, err
	}
	return updated, nil
}

// ListSorted returns every non-empty line sorted by full line text.
func (c *Controller) ListSorted(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines, err := c.store.ReadLines(ctx)
	if err != nil {
		c.logFailure(models.EventListRecords, err)
		return nil, err
	}

	sorted := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			sorted = append(sorted, line)
		}
	}
	sort.Strings(sorted)

	c.log(models.EventListRecords, models.OutcomeSuccess, fmt.Sprintf("%d record(s)", len(sorted)))
	return sorted, nil
}

// TotalQuantity sums the quantity field across all records. A malformed line
// fails the whole total rather than being silently coerced.
func (c *Controller) TotalQuantity(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	total, err := c.totalQuantity(ctx)
	if err != nil {
		c.logFailure(models.EventTotalQuantity, err)
		return 0, err
	}
	c.log(models.EventTotalQuantity, models.OutcomeSuccess, fmt.Sprintf("total=%d", total))
	return total, nil
}

func (c *Controller) totalQuantity(ctx context.Context) (int64, error) {
	lines, err := c.store.ReadLines(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for i, line := range lines {
		if line == "" {
			continue
		}
		rec, err := models.ParseRecord(i+1, line)
		if err != nil {
			return 0, err
		}
		total, err = addQuantities(total, rec.Quantity)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// LogEvent records a session-level event such as an invalid menu choice or exit.
func (c *Controller) LogEvent(event, outcome, details string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log(event, outcome, details)
}

// Close releases the record store and event sink.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return errors.Join(c.store.Close(), c.events.Close())
}

func (c *Controller) log(event, outcome, details string) {
	if err := c.events.Append(models.NewLogEntry(event, outcome, details)); err != nil {
		c.logger.Warn("failed to append log entry",
			zap.String("event", event),
			zap.String("outcome", outcome),
			zap.Error(err))
		return
	}
	c.logger.Debug("logged event",
		zap.String("event", event),
		zap.String("outcome", outcome))
}

func (c *Controller) logFailure(event string, err error) {
	var notFound *models.NotFoundError
	if errors.As(err, &notFound) {
		c.log(event, models.OutcomeNotFound, notFound.Target)
		return
	}
	c.log(event, models.OutcomeFailure, err.Error())
}

// withPrefix returns the line(s) starting with "name,": the first one, or all
// of them in match-all mode.
func (c *Controller) withPrefix(lines []string, name string) []models.NumberedLine {
	prefix := name + models.Separator
	var out []models.NumberedLine
	for i, line := range lines {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		out = append(out, models.NumberedLine{Number: i + 1, Text: line})
		if !c.matchAll {
			break
		}
	}
	return out
}

// containing returns the non-empty lines that contain needle.
func containing(lines []string, needle string, caseSensitive bool) []models.NumberedLine {
	if !caseSensitive {
		needle = strings.ToLower(needle)
	}
	var out []models.NumberedLine
	for i, line := range lines {
		if line == "" {
			continue
		}
		haystack := line
		if !caseSensitive {
			haystack = strings.ToLower(line)
		}
		if strings.Contains(haystack, needle) {
			out = append(out, models.NumberedLine{Number: i + 1, Text: line})
		}
	}
	return out
}

func addQuantities(a, b int64) (int64, error) {
	if b > math.MaxInt64-a {
		return 0, &models.ValidationError{
			Field: "quantity",
			Value: fmt.Sprintf("%d+%d", a, b),
			Rule:  "sum is out of range",
		}
	}
	return a + b, nil
}

func joinNumbered(lines []models.NumberedLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("line %d: %s", l.Number, l.Text))
	}
	return strings.Join(parts, "; ")
}
