package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Launch settings
	CLIPackage string        `env:"MCPTEST_CLI_PACKAGE"`
	Timeout    time.Duration `env:"MCPTEST_TIMEOUT"`
	WaitDelay  time.Duration `env:"MCPTEST_WAIT_DELAY"`

	// Execution settings
	Processors int `env:"MCPTEST_PROCESSORS"`

	// Server settings
	Port     int    `env:"PORT"`
	LogLevel string `env:"MCPTEST_LOG_LEVEL"`

	// Report storage settings
	Store          string `env:"MCPTEST_STORE"`
	OutputJSONDir  string `env:"MCPTEST_OUTPUT_DIR"`
	OutputJSONFile string `env:"MCPTEST_OUTPUT_FILE"`
	SQLitePath     string `env:"MCPTEST_SQLITE_PATH"`
	DatabaseDSN    string `env:"MCPTEST_DB_DSN"`
	HistoryLimit   int    `env:"MCPTEST_HISTORY_LIMIT"`

	// Paths to ignore when scanning
	PathsToIgnore []string `env:"MCPTEST_IGNORE" envSeparator:","`

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Processors int
	Timeout    time.Duration
	Dir        string
	Files      []string
	NameFilter string
	Format     string
	FailFast   bool
	NoSave     bool
	View       bool
	Last       bool
	Servers    bool
	Limit      int
	Port       int
	LogLevel   string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		CLIPackage:     DefaultCLIPackage,
		Timeout:        DefaultTimeout,
		WaitDelay:      DefaultWaitDelay,
		Processors:     DefaultProcessors,
		Port:           DefaultPort,
		LogLevel:       DefaultLogLevel,
		Store:          DefaultStore,
		OutputJSONDir:  DefaultOutputJSONDir,
		OutputJSONFile: DefaultOutputJSONFile,
		SQLitePath:     DefaultSQLitePath,
		HistoryLimit:   DefaultHistoryLimit,
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config with defaults, then applies the .env file at envPath
// (if present) and the process environment on top.
func Load(envPath string) (*Config, error) {
	cfg := New()

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make the pipeline unusable
func (c *Config) Validate() error {
	if c.CLIPackage == "" {
		return fmt.Errorf("cli package must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.WaitDelay <= 0 {
		return fmt.Errorf("wait delay must be positive, got %s", c.WaitDelay)
	}
	switch c.Store {
	case StoreJSON, StoreSQLite:
	case StoreMySQL:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("MCPTEST_DB_DSN is required when MCPTEST_STORE=%s", StoreMySQL)
		}
	default:
		return fmt.Errorf("unknown store %q (want %s, %s or %s)", c.Store, StoreJSON, StoreSQLite, StoreMySQL)
	}
	return nil
}

// ApplyFlags copies flag overrides into the config
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if flags.Timeout > 0 {
		c.Timeout = flags.Timeout
	}
	if flags.Port > 0 {
		c.Port = flags.Port
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Limit > 0 {
		c.HistoryLimit = flags.Limit
	}
}

// GetOutputPath returns the absolute path of the JSON report history file
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetScanPath returns the directory to scan for configuration files
func (c *Config) GetScanPath() string {
	if c.Flags.Dir != "" {
		return c.Flags.Dir
	}
	return "."
}

// GetAddr returns the HTTP listen address
func (c *Config) GetAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
