// ABOUTME: Root Cobra command for tally: opens a record file and runs the menu.
// ABOUTME: Sets up lifecycle hooks for config loading, diagnostics, and the record controller.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/2389-research/tally/internal/config"
	"github.com/2389-research/tally/internal/logging"
	"github.com/2389-research/tally/internal/menu"
	"github.com/2389-research/tally/internal/models"
	"github.com/2389-research/tally/internal/records"
	"github.com/2389-research/tally/internal/storage"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// recordFileAnnotation marks commands that operate on a record file argument.
const recordFileAnnotation = "tally/record-file"

var globalLogger *zap.Logger
var globalController *records.Controller

var rootCmd = &cobra.Command{
	Use:   "tally <record-file>",
	Short: "Keep named quantities in a plain text file",
	Long: `
████████╗ █████╗ ██╗     ██╗  ██╗   ██╗
╚══██╔══╝██╔══██╗██║     ██║  ╚██╗ ██╔╝
   ██║   ███████║██║     ██║   ╚████╔╝
   ██║   ██╔══██║██║     ██║    ╚██╔╝
   ██║   ██║  ██║███████╗███████╗██║
   ╚═╝   ╚═╝  ╚═╝╚══════╝╚══════╝╚═╝

Personal record keeping: one name,quantity per line.
Every operation is appended to <record-file>_log.`,
	Version:       version,
	Args:          requireRecordFile,
	Annotations:   map[string]string{recordFileAnnotation: "true"},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[recordFileAnnotation] != "true" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := logging.New(cfg.Log.Debug)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		globalLogger = logger.With(zap.String("session", uuid.NewString()))

		ctrl, err := openController(cfg, globalLogger, args[0])
		if err != nil {
			return err
		}
		globalController = ctrl

		return nil
	},
	RunE: runMenu,
}

// requireRecordFile rejects invocations without exactly one record file path.
func requireRecordFile(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return &models.MissingArgumentError{Name: "record-file"}
	}
	if len(args) > 1 {
		return fmt.Errorf("expected one record file, got %d arguments", len(args))
	}
	return nil
}

// openController creates the record file and its event log if absent and
// returns a controller over them.
func openController(cfg *config.Config, logger *zap.Logger, recordPath string) (*records.Controller, error) {
	path, err := config.ExpandPath(recordPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve record file path: %w", err)
	}

	store, err := storage.NewRecordFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record file: %w", err)
	}

	events, err := storage.NewEventLog(storage.LogPathFor(path), cfg.TimestampLayout())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	ctrl, err := records.NewController(store, events,
		records.WithMatchAll(cfg.MatchAll()),
		records.WithCaseSensitiveSearch(cfg.Search.CaseSensitive),
		records.WithLogger(logging.Named(logger, "records")),
	)
	if err != nil {
		_ = events.Close()
		_ = store.Close()
		return nil, err
	}

	logger.Debug("opened record file", zap.String("path", path))
	return ctrl, nil
}

// closeSession releases the controller and flushes diagnostics. Run functions
// defer it because cobra skips post-run hooks when RunE fails.
func closeSession() {
	if globalController != nil {
		_ = globalController.Close()
		globalController = nil
	}
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}

func runMenu(cmd *cobra.Command, args []string) error {
	defer closeSession()

	session := menu.NewSession(globalController, os.Stdin, os.Stdout,
		menu.WithTitle("tally: "+args[0]),
		menu.WithLogger(logging.Named(globalLogger, "menu")),
	)
	return session.Run(cmd.Context())
}
