package execution

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mcptest/internal/config"
	"mcptest/internal/domain"
)

var errStopped = errors.New("batch stopped after first failure")

// Job is one configuration to test in a batch
type Job struct {
	Source string
	Input  string
}

// JobFunc tests a single job and always returns a report
type JobFunc func(ctx context.Context, job Job) domain.TestReport

// Progress receives running success and failure counts
type Progress interface {
	Update(successCount, failCount int)
	Finish()
}

// WorkerPool manages a pool of workers for parallel test execution
type WorkerPool struct {
	config   *config.Config
	progress Progress
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config) *WorkerPool {
	return &WorkerPool{config: cfg}
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute runs every job (no fail-fast).
func (wp *WorkerPool) Execute(ctx context.Context, jobs []Job, fn JobFunc) ([]domain.TestReport, time.Duration) {
	return wp.ExecuteWithOptions(ctx, jobs, fn, false)
}

// ExecuteWithOptions runs jobs with at most Processors in flight. Reports come
// back in job order. With failFast, no new job is started after the first
// failed report; jobs already running finish their window.
func (wp *WorkerPool) ExecuteWithOptions(ctx context.Context, jobs []Job, fn JobFunc, failFast bool) ([]domain.TestReport, time.Duration) {
	if len(jobs) == 0 {
		return nil, 0
	}

	workerCount := wp.config.Processors
	if workerCount <= 0 {
		workerCount = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount)

	slots := make([]*domain.TestReport, len(jobs))
	var mu sync.Mutex
	var passed, failed int
	startTime := time.Now()

	for i, job := range jobs {
		if failFast && gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if failFast && gctx.Err() != nil {
				return nil
			}
			// Each job gets the parent context, so a fail-fast stop does not
			// cut short tests that are already observing their process.
			report := fn(ctx, job)

			mu.Lock()
			slots[i] = &report
			if report.Success {
				passed++
			} else {
				failed++
			}
			if wp.progress != nil {
				wp.progress.Update(passed, failed)
			}
			mu.Unlock()

			if failFast && !report.Success {
				return errStopped
			}
			return nil
		})
	}
	_ = g.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}

	reports := make([]domain.TestReport, 0, len(jobs))
	for _, report := range slots {
		if report != nil {
			reports = append(reports, *report)
		}
	}
	return reports, time.Since(startTime)
}
