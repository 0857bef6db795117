package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mcptest/internal/config"
	"mcptest/internal/domain"
	"mcptest/internal/storage"
	"mcptest/internal/ui"
)

// ViewCommand handles the view command
type ViewCommand struct {
	config *config.Config
	viewer ui.Viewer
}

// NewViewCommand creates a new ViewCommand
func NewViewCommand(cfg *config.Config) *ViewCommand {
	return &ViewCommand{
		config: cfg,
		viewer: ui.NewReportViewer(),
	}
}

// Execute runs the command
func (vc *ViewCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := storage.New(ctx, vc.config)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}
	defer store.Close()

	reports, err := vc.load(ctx, store, args)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "No stored reports")
		return nil
	}
	return vc.viewer.View(reports)
}

// load picks the reports to open: the one named by id, the latest with
// --last, or the recent history newest first
func (vc *ViewCommand) load(ctx context.Context, store storage.Storage, args []string) ([]domain.TestReport, error) {
	switch {
	case len(args) == 1:
		report, err := store.Get(ctx, args[0])
		if err != nil {
			return nil, fmt.Errorf("report %s: %w", args[0], err)
		}
		return []domain.TestReport{*report}, nil
	case vc.config.Flags.Last:
		report, err := store.Last(ctx)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []domain.TestReport{*report}, nil
	}

	summaries, err := store.List(ctx, vc.config.HistoryLimit)
	if err != nil {
		return nil, err
	}
	reports := make([]domain.TestReport, 0, len(summaries))
	for _, s := range summaries {
		report, err := store.Get(ctx, s.ID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, nil
}
