// ABOUTME: Cobra command for interactive tally configuration.
// ABOUTME: Launches a bubbletea TUI wizard and saves the resulting YAML config.
package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/tally/internal/config"
	"github.com/2389-research/tally/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure tally",
	Long:  "Interactive wizard to choose the log timestamp style, match scope, and search case sensitivity.",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to locate config: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tea.NewProgram(tui.NewSetupModel(cfg)).Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return finishSetup(cmd.OutOrStdout(), configPath, result.(tui.SetupModel))
}

// finishSetup saves the wizard's config when it completed and reports the outcome.
func finishSetup(out io.Writer, configPath string, final tui.SetupModel) error {
	if !final.ShouldSave() {
		_, _ = fmt.Fprintln(out, "Setup cancelled; config unchanged.")
		return nil
	}

	updated := final.Result()
	if err := updated.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Saved %s (timestamp=%s, match_scope=%s, case_sensitive=%t)\n",
		configPath, updated.Log.Timestamp, updated.Records.MatchScope, updated.Search.CaseSensitive)
	return nil
}
