package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mcptest/internal/config"
	"mcptest/internal/discovery"
	"mcptest/internal/domain"
	"mcptest/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config *config.Config
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config) *ListCommand {
	return &ListCommand{config: cfg}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	files, err := discoverFiles(lc.config)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		color.Yellow("No configuration files found")
		return nil
	}

	var servers map[string][]discovery.ServerEntry
	if lc.config.Flags.Servers {
		p := newDiscoveryParser(lc.config)
		servers = make(map[string][]discovery.ServerEntry, len(files))
		for _, file := range files {
			kind, _, err := p.Detect(file)
			if err != nil {
				return err
			}
			if kind != domain.KindManifest {
				continue
			}
			entries, err := p.FindServers(file)
			if err != nil {
				return err
			}
			servers[file] = entries
		}
	}

	ui.NewFormatterTo(lc.config, cmd.OutOrStdout()).PrintConfigList(files, servers)
	return nil
}
