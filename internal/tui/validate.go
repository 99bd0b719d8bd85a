// ABOUTME: Pre-save checks for the setup wizard.
// ABOUTME: Validates option values and probes that the config directory is writable.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/2389-research/tally/internal/config"
)

// CheckConfig validates cfg and confirms its file could be written. The
// context allows cancellation when the user quits during the check.
func CheckConfig(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to locate config: %w", err)
	}
	return checkWritableDir(ctx, filepath.Dir(path))
}

func checkWritableDir(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".tally-check-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("failed to clean up %s: %w", name, err)
	}
	return ctx.Err()
}
