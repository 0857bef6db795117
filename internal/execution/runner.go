package execution

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"mcptest/internal/config"
	"mcptest/internal/domain"
)

var _ Executor = (*Runner)(nil)

// Runner launches one server process and observes it for a bounded window
type Runner struct {
	config *config.Config
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{config: cfg}
}

// Run starts desc and captures stdout and stderr until the process exits or
// the timeout elapses, whichever comes first. A timeout kills the process
// group and is not an error. The only error is *domain.LaunchError, returned
// when the process cannot be started at all.
func (r *Runner) Run(ctx context.Context, desc domain.LaunchDescriptor, opts RunOptions) (*RunResult, error) {
	if desc.Command == "" {
		return nil, &domain.LaunchError{Err: errors.New("empty command")}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = r.config.Timeout
	}

	cmd := exec.Command(desc.Command, desc.Args...)
	cmd.Env = os.Environ()
	cmd.WaitDelay = r.config.WaitDelay
	setProcessGroup(cmd)

	sink := make(chan domain.CapturedChunk, 64)
	cmd.Stdout = &streamWriter{stream: domain.Stdout, sink: sink}
	cmd.Stderr = &streamWriter{stream: domain.Stderr, sink: sink}

	collected := make(chan []domain.CapturedChunk, 1)
	go collect(sink, opts.OnChunk, collected)

	startTime := time.Now()
	if err := cmd.Start(); err != nil {
		close(sink)
		<-collected
		return nil, &domain.LaunchError{Command: desc.Command, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	// Exactly one branch decides the outcome. When the window closes first the
	// process is killed and its late exit is drained without effect.
	var timedOut bool
	select {
	case <-done:
	case <-timer.C:
		timedOut = true
		killProcessGroup(cmd)
		<-done
	case <-ctx.Done():
		timedOut = true
		killProcessGroup(cmd)
		<-done
	}
	// Background children of a process that exited on its own are not kept
	// past the window either.
	killProcessGroup(cmd)

	// Wait has returned, so the copy goroutines are done writing.
	close(sink)
	chunks := <-collected

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	return &RunResult{
		Chunks:   chunks,
		TimedOut: timedOut,
		ExitCode: exitCode,
		Duration: time.Since(startTime),
	}, nil
}
