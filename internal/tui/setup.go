// ABOUTME: Interactive TUI wizard for writing the tally config file.
// ABOUTME: 3-step bubbletea model collecting log timestamp style, match scope, and search case.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/tally/internal/config"
)

// Step represents the current wizard step.
type Step int

const (
	StepTimestamp Step = iota
	StepMatchScope
	StepSearchCase
	StepChecking
	StepDone
	StepFailed
)

// checkResultMsg carries the result of an async config check.
type checkResultMsg struct {
	err error
}

// CheckFn is the function signature for checking a config before it is saved.
type CheckFn func(ctx context.Context, cfg *config.Config) error

// cancelHolder shares a cancel function across bubbletea model copies.
// It must be a pointer field so value-receiver methods can store the cancel
// func and have it visible to every copy of the model.
type cancelHolder struct {
	cancel context.CancelFunc
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step     Step
	inputs   [3]textinput.Model
	spinner  spinner.Model
	checkFn  CheckFn
	base     config.Config
	cancel   *cancelHolder
	inputErr error
	checkErr error
	quitting bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewSetupModel creates a new setup wizard model, pre-filled from cfg.
func NewSetupModel(cfg *config.Config) SetupModel {
	if cfg == nil {
		cfg = config.Default()
	}

	timestampInput := textinput.New()
	timestampInput.Placeholder = config.TimestampDMY
	timestampInput.Focus()
	timestampInput.Width = 20
	timestampInput.SetValue(cfg.Log.Timestamp)

	scopeInput := textinput.New()
	scopeInput.Placeholder = config.ScopeFirst
	scopeInput.Width = 20
	scopeInput.SetValue(cfg.Records.MatchScope)

	caseInput := textinput.New()
	caseInput.Placeholder = "no"
	caseInput.Width = 20
	caseInput.SetValue(yesNo(cfg.Search.CaseSensitive))

	s := spinner.New()
	s.Spinner = spinner.Dot

	return SetupModel{
		step:    StepTimestamp,
		inputs:  [3]textinput.Model{timestampInput, scopeInput, caseInput},
		spinner: s,
		checkFn: CheckConfig,
		base:    *cfg,
		cancel:  &cancelHolder{},
	}
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			if m.cancel.cancel != nil {
				m.cancel.cancel()
			}
			return m, tea.Quit
		}

		switch m.step {
		case StepTimestamp, StepMatchScope, StepSearchCase:
			return m.updateInput(msg)
		case StepFailed:
			return m.updateFailed(msg)
		}

	case checkResultMsg:
		m.cancel.cancel = nil
		if msg.err == nil {
			m.step = StepDone
			return m, tea.Quit
		}
		m.checkErr = msg.err
		m.step = StepFailed
		return m, nil

	case spinner.TickMsg:
		if m.step == StepChecking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m SetupModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		idx := int(m.step)

		// Empty answers take the placeholder default
		val := strings.ToLower(strings.TrimSpace(m.inputs[idx].Value()))
		if val == "" {
			val = m.inputs[idx].Placeholder
		}
		m.inputs[idx].SetValue(val)

		// Don't advance on an answer the config would reject
		if err := validateAnswer(m.step, val); err != nil {
			m.inputErr = err
			return m, nil
		}
		m.inputErr = nil

		m.inputs[idx].Blur()

		switch m.step {
		case StepTimestamp:
			m.step = StepMatchScope
			m.inputs[1].Focus()
			return m, textinput.Blink
		case StepMatchScope:
			m.step = StepSearchCase
			m.inputs[2].Focus()
			return m, textinput.Blink
		case StepSearchCase:
			m.step = StepChecking
			return m, tea.Batch(m.startCheck(), m.spinner.Tick)
		}
	}

	// Forward to the active input
	idx := int(m.step)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

func (m SetupModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes {
		switch msg.Runes[0] {
		case 'r':
			m.step = StepChecking
			m.checkErr = nil
			return m, tea.Batch(m.startCheck(), m.spinner.Tick)
		case 's':
			m.step = StepDone
			return m, tea.Quit
		case 'q':
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SetupModel) startCheck() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel.cancel = cancel
	cfg := m.Result()
	fn := m.checkFn
	return func() tea.Msg {
		return checkResultMsg{err: fn(ctx, cfg)}
	}
}

func validateAnswer(step Step, val string) error {
	switch step {
	case StepTimestamp:
		return config.ValidateTimestampStyle(val)
	case StepMatchScope:
		return config.ValidateMatchScope(val)
	case StepSearchCase:
		_, err := parseYesNo(val)
		return err
	}
	return nil
}

func parseYesNo(val string) (bool, error) {
	switch val {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, fmt.Errorf("answer yes or no, got %q", val)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   TALLY"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Choose how tally logs and matches records.\n\n")

	switch m.step {
	case StepTimestamp:
		b.WriteString(stepStyle.Render("Step 1 of 3: Log timestamp style (dmy or iso)"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("(press Enter for default)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n")

	case StepMatchScope:
		b.WriteString(fmt.Sprintf("  Timestamp: %s\n\n", m.inputs[0].Value()))
		b.WriteString(stepStyle.Render("Step 2 of 3: Match scope for delete and update (first or all)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n")

	case StepSearchCase:
		b.WriteString(fmt.Sprintf("  Timestamp:   %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Match scope: %s\n\n", m.inputs[1].Value()))
		b.WriteString(stepStyle.Render("Step 3 of 3: Case-sensitive search (yes or no)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[2].View())
		b.WriteString("\n")

	case StepChecking:
		b.WriteString(fmt.Sprintf("  Timestamp:      %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Match scope:    %s\n", m.inputs[1].Value()))
		b.WriteString(fmt.Sprintf("  Case-sensitive: %s\n\n", m.inputs[2].Value()))
		b.WriteString(m.spinner.View())
		b.WriteString(" Checking config location...")
		b.WriteString("\n")

	case StepDone:
		b.WriteString(successStyle.Render("✓ Ready to save!"))
		b.WriteString("\n")

	case StepFailed:
		errMsg := "unknown error"
		if m.checkErr != nil {
			errMsg = m.checkErr.Error()
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Check failed: %s", errMsg)))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("[r]etry  [s]ave anyway  [q]uit"))
		b.WriteString("\n")
	}

	if m.inputErr != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.inputErr.Error()))
		b.WriteString("\n")
	}

	return b.String()
}

// Result returns the config built from the entered values. Options the
// wizard does not ask about keep the values it was created with.
func (m SetupModel) Result() *config.Config {
	cfg := m.base
	cfg.Log.Timestamp = m.inputs[0].Value()
	cfg.Records.MatchScope = m.inputs[1].Value()
	cfg.Search.CaseSensitive, _ = parseYesNo(m.inputs[2].Value())
	return &cfg
}

// ShouldSave returns true if the wizard completed (via a passing check or
// "save anyway") and the user did not cancel with Ctrl+C, Escape, or 'q'.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
