// ABOUTME: Unit tests for the setup TUI wizard bubbletea model.
// ABOUTME: Uses synthetic tea.Msg values to test state machine transitions.
package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/tally/internal/config"
)

func enter(t *testing.T, m SetupModel) (SetupModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(SetupModel), cmd
}

func TestNewSetupModel_DefaultValues(t *testing.T) {
	m := NewSetupModel(nil)
	if m.step != StepTimestamp {
		t.Errorf("expected initial step StepTimestamp, got %d", m.step)
	}
	if m.inputs[0].Value() != config.TimestampDMY {
		t.Errorf("expected default timestamp style, got %q", m.inputs[0].Value())
	}
	if m.inputs[1].Value() != config.ScopeFirst {
		t.Errorf("expected default match scope, got %q", m.inputs[1].Value())
	}
	if m.inputs[2].Value() != "no" {
		t.Errorf("expected case-insensitive default, got %q", m.inputs[2].Value())
	}
}

func TestNewSetupModel_ExistingConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Timestamp = config.TimestampISO
	cfg.Records.MatchScope = config.ScopeAll
	cfg.Search.CaseSensitive = true

	m := NewSetupModel(cfg)
	if m.inputs[0].Value() != "iso" {
		t.Errorf("expected pre-filled timestamp, got %q", m.inputs[0].Value())
	}
	if m.inputs[1].Value() != "all" {
		t.Errorf("expected pre-filled match scope, got %q", m.inputs[1].Value())
	}
	if m.inputs[2].Value() != "yes" {
		t.Errorf("expected pre-filled case sensitivity, got %q", m.inputs[2].Value())
	}
}

func TestSetupModel_StepTransitions(t *testing.T) {
	m := NewSetupModel(nil)

	m.inputs[0].SetValue("ISO")
	m, _ = enter(t, m)
	if m.step != StepMatchScope {
		t.Errorf("expected StepMatchScope after Enter on timestamp, got %d", m.step)
	}
	if m.inputs[0].Value() != "iso" {
		t.Errorf("expected answer to be normalized, got %q", m.inputs[0].Value())
	}

	m.inputs[1].SetValue("all")
	m, _ = enter(t, m)
	if m.step != StepSearchCase {
		t.Errorf("expected StepSearchCase after Enter on match scope, got %d", m.step)
	}

	m.inputs[2].SetValue("y")
	m, cmd := enter(t, m)
	if m.step != StepChecking {
		t.Errorf("expected StepChecking after Enter on search case, got %d", m.step)
	}
	if cmd == nil {
		t.Error("expected non-nil cmd (check + spinner tick) when entering check")
	}
}

func TestSetupModel_EmptyAnswerUsesDefault(t *testing.T) {
	m := NewSetupModel(nil)
	m.inputs[0].SetValue("")

	m, _ = enter(t, m)
	if m.inputs[0].Value() != config.TimestampDMY {
		t.Errorf("expected default timestamp %q, got %q", config.TimestampDMY, m.inputs[0].Value())
	}
	if m.step != StepMatchScope {
		t.Errorf("expected StepMatchScope after default applied, got %d", m.step)
	}
}

func TestSetupModel_InvalidAnswerStays(t *testing.T) {
	tests := []struct {
		name  string
		step  Step
		value string
	}{
		{"timestamp", StepTimestamp, "unix"},
		{"match scope", StepMatchScope, "some"},
		{"search case", StepSearchCase, "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSetupModel(nil)
			m.step = tt.step
			m.inputs[int(tt.step)].SetValue(tt.value)

			m, _ = enter(t, m)
			if m.step != tt.step {
				t.Errorf("expected to stay on step %d, got %d", tt.step, m.step)
			}
			if m.inputErr == nil {
				t.Error("expected inputErr to be set")
			}
			if !strings.Contains(m.View(), tt.value) {
				t.Error("expected view to show the rejected answer")
			}
		})
	}
}

func TestSetupModel_CheckSuccess(t *testing.T) {
	m := NewSetupModel(nil)
	m.checkFn = func(_ context.Context, cfg *config.Config) error {
		return nil
	}
	m.step = StepChecking

	updated, _ := m.Update(checkResultMsg{err: nil})
	m = updated.(SetupModel)
	if m.step != StepDone {
		t.Errorf("expected StepDone after successful check, got %d", m.step)
	}
}

func TestSetupModel_CheckRunsCheckFn(t *testing.T) {
	m := NewSetupModel(nil)
	var got *config.Config
	m.checkFn = func(_ context.Context, cfg *config.Config) error {
		got = cfg
		return nil
	}
	m.inputs[1].SetValue(config.ScopeAll)

	msg := m.startCheck()()
	if res, ok := msg.(checkResultMsg); !ok || res.err != nil {
		t.Fatalf("unexpected check result %#v", msg)
	}
	if got == nil || got.Records.MatchScope != config.ScopeAll {
		t.Errorf("expected check to receive entered config, got %+v", got)
	}
}

func TestSetupModel_CheckFailure(t *testing.T) {
	m := NewSetupModel(nil)
	m.step = StepChecking

	updated, _ := m.Update(checkResultMsg{err: fmt.Errorf("permission denied")})
	m = updated.(SetupModel)
	if m.step != StepFailed {
		t.Errorf("expected StepFailed after check error, got %d", m.step)
	}
	if m.checkErr == nil {
		t.Error("expected checkErr to be set")
	}
}

func TestSetupModel_FailedRetry(t *testing.T) {
	m := NewSetupModel(nil)
	m.step = StepFailed
	m.checkErr = fmt.Errorf("some error")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = updated.(SetupModel)
	if m.step != StepChecking {
		t.Errorf("expected StepChecking after retry, got %d", m.step)
	}
	if cmd == nil {
		t.Error("expected non-nil cmd on retry")
	}
}

func TestSetupModel_FailedQuit(t *testing.T) {
	m := NewSetupModel(nil)
	m.step = StepFailed

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m2 := updated.(SetupModel)
	if cmd == nil {
		t.Error("expected quit cmd")
	}
	if !m2.quitting {
		t.Error("expected quitting to be true after 'q'")
	}
	if m2.ShouldSave() {
		t.Error("expected ShouldSave false after quit")
	}
}

func TestSetupModel_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEscape} {
		m := NewSetupModel(nil)
		updated, cmd := m.Update(tea.KeyMsg{Type: key})
		m = updated.(SetupModel)
		if cmd == nil {
			t.Errorf("expected quit cmd on %v", key)
		}
		if !m.quitting {
			t.Errorf("expected quitting to be true on %v", key)
		}
		if m.ShouldSave() {
			t.Errorf("expected ShouldSave false on %v", key)
		}
	}
}

func TestSetupModel_Result(t *testing.T) {
	base := config.Default()
	base.Log.Debug = true

	m := NewSetupModel(base)
	m.inputs[0].SetValue("iso")
	m.inputs[1].SetValue("all")
	m.inputs[2].SetValue("yes")

	cfg := m.Result()
	if cfg.Log.Timestamp != config.TimestampISO {
		t.Errorf("expected iso timestamp, got %q", cfg.Log.Timestamp)
	}
	if !cfg.MatchAll() {
		t.Error("expected match scope all")
	}
	if !cfg.Search.CaseSensitive {
		t.Error("expected case-sensitive search")
	}
	if !cfg.Log.Debug {
		t.Error("expected options outside the wizard to be kept")
	}
	if base.Log.Timestamp != config.TimestampDMY {
		t.Error("Result must not modify the original config")
	}
}

func TestSetupModel_ShouldSave(t *testing.T) {
	t.Run("done means save", func(t *testing.T) {
		m := NewSetupModel(nil)
		m.step = StepDone
		if !m.ShouldSave() {
			t.Error("expected ShouldSave true when done")
		}
	})

	t.Run("save anyway means save", func(t *testing.T) {
		m := NewSetupModel(nil)
		m.step = StepFailed
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
		m = updated.(SetupModel)
		if !m.ShouldSave() {
			t.Error("expected ShouldSave true after save anyway")
		}
	})
}

func TestSetupModel_ViewShowsCurrentStep(t *testing.T) {
	m := NewSetupModel(nil)

	if !strings.Contains(m.View(), "TALLY") {
		t.Error("expected view to contain branding")
	}

	checks := map[Step]string{
		StepTimestamp:  "timestamp style",
		StepMatchScope: "Match scope",
		StepSearchCase: "Case-sensitive search",
		StepChecking:   "Checking config location",
		StepDone:       "Ready to save",
	}
	for step, want := range checks {
		m.step = step
		if !strings.Contains(m.View(), want) {
			t.Errorf("expected step %d view to mention %q", step, want)
		}
	}
}

func TestSetupModel_ViewFailed(t *testing.T) {
	m := NewSetupModel(nil)
	m.step = StepFailed
	m.checkErr = fmt.Errorf("read-only file system")
	view := m.View()
	for _, want := range []string{"Check failed", "read-only file system", "[r]etry", "[s]ave anyway", "[q]uit"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected failed view to contain %q", want)
		}
	}
}
