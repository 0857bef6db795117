package execution

import (
	"context"
	"time"

	"mcptest/internal/domain"
)

// Executor launches a described server and captures its output
type Executor interface {
	Run(ctx context.Context, desc domain.LaunchDescriptor, opts RunOptions) (*RunResult, error)
}

// RunOptions tune a single run
type RunOptions struct {
	// Timeout ends the observation window; zero uses the configured default
	Timeout time.Duration
	// OnChunk is called for every captured chunk, in arrival order, from a
	// single goroutine
	OnChunk func(domain.CapturedChunk)
}

// RunResult is everything observed during one run
type RunResult struct {
	Chunks   []domain.CapturedChunk
	TimedOut bool
	ExitCode int
	Duration time.Duration
}
