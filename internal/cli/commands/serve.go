package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mcptest/internal/config"
	"mcptest/internal/metrics"
	"mcptest/internal/server"
	"mcptest/internal/storage"
)

// ServeCommand handles the serve command
type ServeCommand struct {
	config *config.Config
}

// NewServeCommand creates a new ServeCommand
func NewServeCommand(cfg *config.Config) *ServeCommand {
	return &ServeCommand{config: cfg}
}

// Execute runs the command until the process is interrupted
func (sc *ServeCommand) Execute(cmd *cobra.Command, args []string) error {
	level, err := server.ParseLevel(sc.config.LogLevel)
	if err != nil {
		return err
	}
	logger := server.NewLogger(os.Stderr, level)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	store, err := storage.New(ctx, sc.config)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}
	defer store.Close()

	t := newTester(sc.config)
	t.SetObserver(metrics.NewObserver())

	logger.Info("starting server",
		"store", sc.config.Store,
		"timeout", sc.config.Timeout.String(),
		"cli_package", sc.config.CLIPackage,
	)
	return server.New(sc.config, t, store, logger).Start(ctx)
}
