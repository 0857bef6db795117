package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"mcptest/internal/config"
	"mcptest/internal/storage"
	"mcptest/internal/ui"
)

// HistoryCommand handles the history command
type HistoryCommand struct {
	config *config.Config
}

// NewHistoryCommand creates a new HistoryCommand
func NewHistoryCommand(cfg *config.Config) *HistoryCommand {
	return &HistoryCommand{config: cfg}
}

// Execute runs the command
func (hc *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	format := hc.config.Flags.Format
	if !ui.ValidFormat(format) {
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}

	store, err := storage.New(cmd.Context(), hc.config)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}
	defer store.Close()

	summaries, err := store.List(cmd.Context(), hc.config.HistoryLimit)
	if err != nil {
		return err
	}
	return ui.NewFormatterTo(hc.config, cmd.OutOrStdout()).PrintHistory(summaries, format)
}
