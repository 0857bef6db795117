// Package tester runs the parse, launch, analyze pipeline for one
// configuration and always produces a report.
package tester

import (
	"context"
	"errors"
	"fmt"

	"mcptest/internal/domain"
	"mcptest/internal/execution"
	"mcptest/internal/launch"
	"mcptest/internal/parser"
)

// Observer is told about every finished report
type Observer interface {
	Observe(report domain.TestReport)
}

// Tester wires the configuration parser, process runner and output analyzer
type Tester struct {
	parser   *launch.Parser
	executor execution.Executor
	analyzer parser.Analyzer
	observer Observer
}

// New creates a new Tester
func New(p *launch.Parser, executor execution.Executor, analyzer parser.Analyzer) *Tester {
	return &Tester{
		parser:   p,
		executor: executor,
		analyzer: analyzer,
	}
}

// SetObserver sets the observer notified after each test
func (t *Tester) SetObserver(observer Observer) {
	t.observer = observer
}

// Test checks one configuration with the configured timeout
func (t *Tester) Test(ctx context.Context, source, input string) domain.TestReport {
	return t.TestWithOptions(ctx, source, input, execution.RunOptions{})
}

// TestWithOptions checks one configuration. Every failure, including a panic
// in a collaborator, is turned into a failed report.
func (t *Tester) TestWithOptions(ctx context.Context, source, input string, opts execution.RunOptions) (report domain.TestReport) {
	defer func() {
		if r := recover(); r != nil {
			report = newReport()
			report.Outcome = domain.OutcomeFailed
			report.Error = fmt.Sprintf("internal error: %v", r)
			report.ExitCode = -1
		}
		report.Source = source
		if t.observer != nil {
			t.observer.Observe(report)
		}
	}()

	desc, err := t.parser.Parse(input)
	if err != nil {
		return ConfigurationFailure(err)
	}

	run, err := t.executor.Run(ctx, desc, opts)
	if err != nil {
		var launchErr *domain.LaunchError
		if !errors.As(err, &launchErr) {
			err = &domain.LaunchError{Command: desc.Command, Err: err}
		}
		return Aggregate(desc, domain.Verdict{}, nil, err)
	}

	verdict := t.analyzer.Analyze(run.Chunks)
	return Aggregate(desc, verdict, run, nil)
}
