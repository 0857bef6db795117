package commands

import (
	"github.com/spf13/cobra"

	"mcptest/internal/cli"
	"mcptest/internal/config"
	"mcptest/internal/discovery"
	"mcptest/internal/execution"
	"mcptest/internal/launch"
	"mcptest/internal/parser"
	"mcptest/internal/tester"
)

// Commands holds all CLI commands
type Commands struct {
	Test    *TestCommand
	Parse   *ParseCommand
	List    *ListCommand
	History *HistoryCommand
	View    *ViewCommand
	Migrate *MigrateCommand
	Serve   *ServeCommand
}

// NewCommands creates all commands. Collaborators that depend on loaded
// settings are built when a command runs, after the root command has read
// the env file into cfg.
func NewCommands(cfg *config.Config) *Commands {
	return &Commands{
		Test:    NewTestCommand(cfg),
		Parse:   NewParseCommand(cfg),
		List:    NewListCommand(cfg),
		History: NewHistoryCommand(cfg),
		View:    NewViewCommand(cfg),
		Migrate: NewMigrateCommand(cfg),
		Serve:   NewServeCommand(cfg),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", ".env", "Env file loaded before the process environment")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flags.EnvFile)
		if err != nil {
			return err
		}
		*cfg = *loaded
		return nil
	}

	applyFlags := func(cmd *cobra.Command, args []string) error {
		cfg.ApplyFlags(flags.ToConfigFlags())
		return nil
	}

	// Test command
	testCmd := &cobra.Command{
		Use:   "test [-- config | -]",
		Short: "Launch MCP server configurations and report whether they connect",
		Long: `Parse each configuration, launch the server it describes and watch its output
for the observation window. The configuration is given inline, read from stdin
with "-", read from files with --file or discovered under --dir.

An inline invocation carries its own flags (-y, --key), so put it after "--"
or quote it as one argument.`,
		Example: `  mcptest test -- npx -y @smithery/cli@latest run @acme/demo-mcp-server --key <key>
  mcptest test "npx -y @smithery/cli@latest run @acme/demo-mcp-server --key <key>"
  cat claude_desktop_config.json | mcptest test -
  mcptest test -d ./configs --filter '*github*' -o json`,
		RunE:    c.Test.Execute,
		PreRunE: applyFlags,
	}
	testCmd.Flags().StringSliceVarP(&flags.Files, "file", "f", nil, "Configuration file to test (repeatable)")
	testCmd.Flags().StringVarP(&flags.Dir, "dir", "d", "", "Directory to scan for configuration files")
	testCmd.Flags().StringVar(&flags.NameFilter, "filter", "", "Filter discovered files by name pattern (supports wildcards, e.g., '*github*')")
	testCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Observation window per configuration (default from MCPTEST_TIMEOUT or 30s)")
	testCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of configurations tested at once (default from MCPTEST_PROCESSORS or 4)")
	testCmd.Flags().StringVarP(&flags.Format, "format", "o", "text", "Output format: text, json or yaml")
	testCmd.Flags().BoolVar(&flags.NoSave, "no-save", false, "Do not store the reports")
	testCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop starting new tests after the first failure")
	testCmd.Flags().BoolVar(&flags.View, "view", false, "Open the output viewer when the run finishes")
	rootCmd.AddCommand(testCmd)

	// Parse command
	parseCmd := &cobra.Command{
		Use:   "parse [-- config | -]",
		Short: "Validate configurations without launching anything",
		Long: `Parse configurations and print the normalized descriptor with the key masked.
An inline invocation goes after "--" or in quotes, as for test.`,
		Example: `  mcptest parse -- npx -y @smithery/cli@latest run @acme/demo-mcp-server --key <key>
  mcptest parse -o json -f config.json`,
		RunE:    c.Parse.Execute,
		PreRunE: applyFlags,
	}
	parseCmd.Flags().StringSliceVarP(&flags.Files, "file", "f", nil, "Configuration file to parse (repeatable)")
	parseCmd.Flags().StringVarP(&flags.Dir, "dir", "d", "", "Directory to scan for configuration files")
	parseCmd.Flags().StringVar(&flags.NameFilter, "filter", "", "Filter discovered files by name pattern")
	parseCmd.Flags().StringVarP(&flags.Format, "format", "o", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(parseCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered configuration files",
		Long:    "Scan a directory and list the files that hold a manifest or an invocation",
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	listCmd.Flags().StringVarP(&flags.Dir, "dir", "d", "", "Directory to scan (default current directory)")
	listCmd.Flags().StringVar(&flags.NameFilter, "filter", "", "Filter files by name pattern")
	listCmd.Flags().BoolVar(&flags.Servers, "servers", false, "List the server entries inside each manifest")
	rootCmd.AddCommand(listCmd)

	// History command
	historyCmd := &cobra.Command{
		Use:     "history",
		Short:   "Show stored test reports",
		RunE:    c.History.Execute,
		PreRunE: applyFlags,
	}
	historyCmd.Flags().IntVar(&flags.Limit, "limit", 0, "Number of reports to show (default from MCPTEST_HISTORY_LIMIT or 20)")
	historyCmd.Flags().StringVarP(&flags.Format, "format", "o", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(historyCmd)

	// View command
	viewCmd := &cobra.Command{
		Use:     "view [id]",
		Short:   "Browse captured output interactively",
		Long:    "Open the output viewer on one stored report, on the latest one with --last, or on the most recent reports when no id is given",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.View.Execute,
		PreRunE: applyFlags,
	}
	viewCmd.Flags().IntVar(&flags.Limit, "limit", 0, "Number of recent reports to load when no id is given")
	viewCmd.Flags().BoolVar(&flags.Last, "last", false, "Open only the latest stored report")
	rootCmd.AddCommand(viewCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:     "migrate",
		Short:   "Create the report database and schema",
		Long:    "Create the MySQL database if it does not exist and apply pending schema migrations for SQL stores",
		Args:    cobra.NoArgs,
		RunE:    c.Migrate.Execute,
		PreRunE: applyFlags,
	}
	rootCmd.AddCommand(migrateCmd)

	// Serve command
	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the test endpoint over HTTP",
		Args:    cobra.NoArgs,
		RunE:    c.Serve.Execute,
		PreRunE: applyFlags,
	}
	serveCmd.Flags().IntVar(&flags.Port, "port", 0, "Port to listen on (default from PORT or 5000)")
	serveCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Observation window per request")
	serveCmd.Flags().StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.AddCommand(serveCmd)
}

// newTester wires the parse, launch and analyze pipeline from cfg
func newTester(cfg *config.Config) *tester.Tester {
	return tester.New(
		launch.NewParser(cfg.CLIPackage),
		execution.NewRunner(cfg),
		parser.NewOutputAnalyzer(),
	)
}

func newDiscoveryParser(cfg *config.Config) *discovery.Parser {
	return discovery.NewParser(launch.NewParser(cfg.CLIPackage))
}
