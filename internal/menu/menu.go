// ABOUTME: Interactive numbered menu driving the record controller over stdin/stdout.
// ABOUTME: Reads one input per line, dispatches operations, and reports recoverable errors.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/2389-research/tally/internal/models"
	"github.com/2389-research/tally/internal/records"
)

// Operations is the record controller surface the menu drives.
type Operations interface {
	AddRecord(ctx context.Context, name, quantity string, chooser records.Chooser) (*records.AddResult, error)
	DeleteRecord(ctx context.Context, name string) ([]models.NumberedLine, error)
	SearchRecord(ctx context.Context, keyword string) ([]models.NumberedLine, error)
	UpdateRecordName(ctx context.Context, oldName, newName string) ([]models.NumberedLine, error)
	SetQuantity(ctx context.Context, name, quantity string) ([]models.NumberedLine, error)
	AddQuantity(ctx context.Context, name, delta string) ([]models.NumberedLine, error)
	ListSorted(ctx context.Context) ([]string, error)
	TotalQuantity(ctx context.Context) (int64, error)
	LogEvent(event, outcome, details string)
}

type item struct {
	label  string
	action func(s *Session, ctx context.Context) error
}

// items is the menu in display order; option N selects items[N-1].
var items = []item{
	{"Add a record", (*Session).add},
	{"Delete a record", (*Session).delete},
	{"Search records", (*Session).search},
	{"Rename a record", (*Session).rename},
	{"Set a record's quantity", (*Session).setQuantity},
	{"Add to a record's quantity", (*Session).addQuantity},
	{"List records (sorted)", (*Session).list},
	{"Total quantity", (*Session).total},
	{"Exit", nil},
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	optionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Session is one interactive run of the menu loop.
type Session struct {
	ops    Operations
	in     *bufio.Reader
	out    io.Writer
	title  string
	logger *zap.Logger
}

// SessionOption configures optional Session behavior.
type SessionOption func(*Session)

// WithTitle sets the heading printed above the menu.
func WithTitle(title string) SessionOption {
	return func(s *Session) {
		s.title = title
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a menu session reading from in and writing to out.
func NewSession(ops Operations, in io.Reader, out io.Writer, opts ...SessionOption) *Session {
	s := &Session{
		ops:    ops,
		in:     bufio.NewReader(in),
		out:    out,
		title:  "tally",
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run shows the menu until the user exits or input ends. Operation errors are
// reported and the menu is shown again; only context cancellation and input
// read failures end the loop with an error.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printMenu()
		choice, err := s.prompt("Choose an option: ")
		if errors.Is(err, io.EOF) {
			s.exit("end of input")
			return nil
		}
		if err != nil {
			return err
		}

		idx, ok := parseChoice(choice)
		if !ok {
			s.logger.Debug("invalid menu option", zap.String("choice", choice))
			s.ops.LogEvent(models.EventInvalidOption, models.OutcomeFailure, choice)
			s.fail(fmt.Sprintf("Invalid option %q", choice))
			continue
		}

		it := items[idx]
		if it.action == nil {
			s.exit("")
			return nil
		}

		if err := it.action(s, ctx); err != nil {
			if errors.Is(err, io.EOF) {
				s.exit("end of input")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.report(err)
		}
	}
}

// parseChoice maps a menu answer to an item index. "exit" selects the last item.
func parseChoice(choice string) (int, bool) {
	if strings.EqualFold(choice, "exit") {
		return len(items) - 1, true
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(items) {
		return 0, false
	}
	return n - 1, true
}

func (s *Session) printMenu() {
	_, _ = fmt.Fprintln(s.out)
	_, _ = fmt.Fprintln(s.out, titleStyle.Render(s.title))
	for i, it := range items {
		_, _ = fmt.Fprintln(s.out, optionStyle.Render(fmt.Sprintf("%d) %s", i+1, it.label)))
	}
}

// prompt prints label and reads one trimmed line of any length. io.EOF means
// input ended; a final line without a newline is still returned.
func (s *Session) prompt(label string) (string, error) {
	_, _ = fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (s *Session) exit(reason string) {
	s.ops.LogEvent(models.EventExit, models.OutcomeSuccess, reason)
	_, _ = fmt.Fprintln(s.out, "Goodbye.")
}

func (s *Session) ok(msg string) {
	_, _ = fmt.Fprintln(s.out, successStyle.Render(msg))
}

func (s *Session) fail(msg string) {
	_, _ = fmt.Fprintln(s.out, errorStyle.Render(msg))
}

// report turns a recoverable operation error into a user-facing message.
func (s *Session) report(err error) {
	var (
		verr      *models.ValidationError
		notFound  *models.NotFoundError
		malformed *models.MalformedRecordError
	)
	switch {
	case errors.As(err, &verr):
		s.fail("Validation error: " + verr.Error())
	case errors.As(err, &notFound):
		s.fail(fmt.Sprintf("Record %q does not exist.", notFound.Target))
	case errors.As(err, &malformed):
		s.fail("Record file problem: " + malformed.Error())
	default:
		s.logger.Warn("operation failed", zap.Error(err))
		s.fail("Error: " + err.Error())
	}
}

func (s *Session) printLines(lines []models.NumberedLine) {
	for _, l := range lines {
		_, _ = fmt.Fprintf(s.out, "%d:%s\n", l.Number, l.Text)
	}
}
