package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mcptest/internal/config"
	"mcptest/internal/discovery"
	"mcptest/internal/execution"
)

// Job sources that are not file paths
const (
	sourceInline = "inline"
	sourceStdin  = "stdin"
)

var errNoInput = errors.New("no configuration given: pass it inline, with --file, with --dir or - for stdin")

// collectJobs gathers configurations from the arguments, stdin, --file and
// --dir, in that order.
func collectJobs(cfg *config.Config, args []string, stdin io.Reader) ([]execution.Job, error) {
	var jobs []execution.Job

	switch {
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		jobs = append(jobs, execution.Job{Source: sourceStdin, Input: string(data)})
	case len(args) > 0:
		// An invocation passed after "--" arrives split into words.
		jobs = append(jobs, execution.Job{Source: sourceInline, Input: strings.Join(args, " ")})
	}

	files := append([]string(nil), cfg.Flags.Files...)
	if cfg.Flags.Dir != "" {
		found, err := discoverFiles(cfg)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		jobs = append(jobs, execution.Job{Source: file, Input: string(data)})
	}

	if len(jobs) == 0 && cfg.Flags.Dir == "" {
		return nil, errNoInput
	}
	return jobs, nil
}

// discoverFiles returns the configuration files under the scan path that
// match the name filter
func discoverFiles(cfg *config.Config) ([]string, error) {
	files, err := discovery.NewScanner(cfg.PathsToIgnore).Scan(cfg.GetScanPath())
	if err != nil {
		return nil, err
	}
	files = discovery.NewFilter().FilterByName(files, cfg.Flags.NameFilter)
	return newDiscoveryParser(cfg).Configurations(files)
}
