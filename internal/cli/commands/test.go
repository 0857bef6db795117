package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mcptest/internal/config"
	"mcptest/internal/domain"
	"mcptest/internal/execution"
	"mcptest/internal/storage"
	"mcptest/internal/ui"
)

// ErrTestsFailed is returned when at least one configuration failed, so the
// process exits non-zero
var ErrTestsFailed = errors.New("one or more configurations failed")

// TestCommand handles the test command
type TestCommand struct {
	config *config.Config
	viewer ui.Viewer
}

// NewTestCommand creates a new TestCommand
func NewTestCommand(cfg *config.Config) *TestCommand {
	return &TestCommand{
		config: cfg,
		viewer: ui.NewReportViewer(),
	}
}

// Execute runs the command
func (tc *TestCommand) Execute(cmd *cobra.Command, args []string) error {
	format := tc.config.Flags.Format
	if !ui.ValidFormat(format) {
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}

	jobs, err := collectJobs(tc.config, args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		color.Yellow("No configurations to test")
		return nil
	}

	ctx := cmd.Context()
	reports, duration := tc.run(ctx, jobs)

	formatter := ui.NewFormatterTo(tc.config, cmd.OutOrStdout())
	if err := formatter.PrintReports(reports, duration, format); err != nil {
		return err
	}

	// An interrupted run still keeps what it captured.
	saveErr := tc.save(context.WithoutCancel(ctx), reports, cmd.ErrOrStderr())

	if tc.config.Flags.View {
		if err := tc.viewer.View(reports); err != nil {
			return err
		}
	}

	if format == ui.FormatText || format == "" {
		formatter.PrintSummaryLine(reports)
	}
	if saveErr != nil {
		return saveErr
	}
	for _, r := range reports {
		if !r.Success {
			return ErrTestsFailed
		}
	}
	return nil
}

// run tests one configuration with a live spinner, or a batch through the
// worker pool with a progress bar
func (tc *TestCommand) run(ctx context.Context, jobs []execution.Job) ([]domain.TestReport, time.Duration) {
	t := newTester(tc.config)

	if len(jobs) == 1 {
		job := jobs[0]
		spinner := ui.NewSpinner(job.Source)
		start := time.Now()
		report := t.TestWithOptions(ctx, job.Source, job.Input, execution.RunOptions{OnChunk: spinner.OnChunk})
		spinner.Finish()
		return []domain.TestReport{report}, time.Since(start)
	}

	pool := execution.NewWorkerPool(tc.config)
	pool.SetProgress(ui.NewProgressBar(len(jobs)))
	return pool.ExecuteWithOptions(ctx, jobs, func(ctx context.Context, job execution.Job) domain.TestReport {
		return t.Test(ctx, job.Source, job.Input)
	}, tc.config.Flags.FailFast)
}

func (tc *TestCommand) save(ctx context.Context, reports []domain.TestReport, warn io.Writer) error {
	if tc.config.Flags.NoSave {
		return nil
	}

	store, err := storage.New(ctx, tc.config)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}
	defer store.Close()

	// The reports are already printed; keep saving the rest when one fails.
	var errs []error
	for _, r := range reports {
		if err := store.Save(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		color.New(color.FgYellow).Fprintf(warn, "Warning: %d report(s) were not saved\n", len(errs))
		return fmt.Errorf("failed to save test reports: %w", err)
	}
	return nil
}
