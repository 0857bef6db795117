package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mcptest/internal/config"
	"mcptest/internal/launch"
	"mcptest/internal/ui"
)

// ParseCommand handles the parse command
type ParseCommand struct {
	config *config.Config
}

// NewParseCommand creates a new ParseCommand
func NewParseCommand(cfg *config.Config) *ParseCommand {
	return &ParseCommand{config: cfg}
}

// Execute runs the command
func (pc *ParseCommand) Execute(cmd *cobra.Command, args []string) error {
	format := pc.config.Flags.Format
	if !ui.ValidFormat(format) {
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}

	jobs, err := collectJobs(pc.config, args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		color.Yellow("No configurations to parse")
		return nil
	}

	p := launch.NewParser(pc.config.CLIPackage)
	formatter := ui.NewFormatterTo(pc.config, cmd.OutOrStdout())

	var errs []error
	for i, job := range jobs {
		if len(jobs) > 1 {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			color.New(color.FgCyan, color.Bold).Fprintln(cmd.OutOrStdout(), job.Source)
		}

		desc, err := p.Parse(job.Input)
		if err != nil {
			color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "✗ %v\n", err)
			errs = append(errs, fmt.Errorf("%s: %w", job.Source, err))
			continue
		}
		if err := formatter.PrintDescriptor(desc, format); err != nil {
			return err
		}
	}

	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}
