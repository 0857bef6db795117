package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mcptest/internal/cli"
	"mcptest/internal/cli/commands"
	"mcptest/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "mcptest",
		Short: "MCP server configuration tester",
		Long: `Validate MCP server launcher configurations. Each configuration is parsed,
launched through the CLI runner and observed for a bounded window; the console
output decides whether the server connected.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Defaults until the root command loads the env file
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Interrupts cancel running tests so their process groups are killed
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
