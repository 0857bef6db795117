package execution

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"mcptest/internal/config"
	"mcptest/internal/domain"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	cfg := config.New()
	cfg.WaitDelay = 200 * time.Millisecond
	return NewRunner(cfg)
}

func shell(script string) domain.LaunchDescriptor {
	return domain.LaunchDescriptor{Command: "sh", Args: []string{"-c", script}}
}

func joined(chunks []domain.CapturedChunk, stream domain.Stream) string {
	var b strings.Builder
	for _, c := range chunks {
		if c.Stream == stream {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

func TestRunner_NaturalExit(t *testing.T) {
	runner := newTestRunner(t)

	result, err := runner.Run(context.Background(), shell("echo hello; echo oops 1>&2"), RunOptions{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TimedOut {
		t.Error("expected natural exit, got timeout")
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
	if got := joined(result.Chunks, domain.Stdout); got != "hello\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := joined(result.Chunks, domain.Stderr); got != "oops\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestRunner_ExitCode(t *testing.T) {
	runner := newTestRunner(t)

	result, err := runner.Run(context.Background(), shell("echo bye; exit 3"), RunOptions{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}
}

func TestRunner_InterleavedStreams(t *testing.T) {
	runner := newTestRunner(t)

	script := "echo one; sleep 0.1; echo two 1>&2; sleep 0.1; echo three"
	result, err := runner.Run(context.Background(), shell(script), RunOptions{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.CapturedChunk{
		{Stream: domain.Stdout, Text: "one\n"},
		{Stream: domain.Stderr, Text: "two\n"},
		{Stream: domain.Stdout, Text: "three\n"},
	}
	if len(result.Chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %+v", len(want), len(result.Chunks), result.Chunks)
	}
	for i := range want {
		if result.Chunks[i] != want[i] {
			t.Errorf("chunk %d = %+v, want %+v", i, result.Chunks[i], want[i])
		}
	}
}

func TestRunner_Timeout(t *testing.T) {
	runner := newTestRunner(t)

	start := time.Now()
	result, err := runner.Run(context.Background(), shell("echo started; sleep 30"), RunOptions{Timeout: 300 * time.Millisecond})
	if err != nil {
		t.Fatalf("timeout must not be an error, got %v", err)
	}
	if !result.TimedOut {
		t.Error("expected TimedOut")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("run took %v, process was not killed", elapsed)
	}
	if got := joined(result.Chunks, domain.Stdout); got != "started\n" {
		t.Errorf("output before timeout = %q", got)
	}
}

func TestRunner_ContextCancel(t *testing.T) {
	runner := newTestRunner(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	result, err := runner.Run(ctx, shell("sleep 30"), RunOptions{Timeout: time.Minute})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.TimedOut {
		t.Error("expected cancellation to end the window")
	}
}

func TestRunner_OrphanHoldingPipe(t *testing.T) {
	runner := newTestRunner(t)

	start := time.Now()
	result, err := runner.Run(context.Background(), shell("sleep 30 & echo done"), RunOptions{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TimedOut {
		t.Error("expected the shell's own exit to end the run")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("run took %v, waiting on orphaned pipe", elapsed)
	}
	if got := joined(result.Chunks, domain.Stdout); got != "done\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRunner_LaunchError(t *testing.T) {
	runner := NewRunner(config.New())

	desc := domain.LaunchDescriptor{Command: "definitely-not-a-real-binary-xyz", Args: []string{"run"}}
	result, err := runner.Run(context.Background(), desc, RunOptions{Timeout: time.Second})
	if err == nil {
		t.Fatal("expected launch error")
	}
	if result != nil {
		t.Errorf("expected nil result, got %+v", result)
	}

	var launchErr *domain.LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("expected *domain.LaunchError, got %T", err)
	}
	if launchErr.Command != desc.Command {
		t.Errorf("expected command %q, got %q", desc.Command, launchErr.Command)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("expected wrapped exec.ErrNotFound, got %v", err)
	}
}

func TestRunner_EmptyCommand(t *testing.T) {
	runner := NewRunner(config.New())

	_, err := runner.Run(context.Background(), domain.LaunchDescriptor{}, RunOptions{})
	var launchErr *domain.LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("expected *domain.LaunchError, got %v", err)
	}
}

func TestRunner_OnChunk(t *testing.T) {
	runner := newTestRunner(t)

	var mu sync.Mutex
	var seen []domain.CapturedChunk
	opts := RunOptions{
		Timeout: 5 * time.Second,
		OnChunk: func(c domain.CapturedChunk) {
			mu.Lock()
			seen = append(seen, c)
			mu.Unlock()
		},
	}

	result, err := runner.Run(context.Background(), shell("echo a; sleep 0.1; echo b 1>&2"), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != len(result.Chunks) {
		t.Fatalf("callback saw %d chunks, result has %d", len(seen), len(result.Chunks))
	}
	for i := range seen {
		if seen[i] != result.Chunks[i] {
			t.Errorf("chunk %d differs: %+v vs %+v", i, seen[i], result.Chunks[i])
		}
	}
}

func TestRunner_IsolatedCaptures(t *testing.T) {
	runner := newTestRunner(t)

	var wg sync.WaitGroup
	outputs := make([]string, 4)
	for i := range outputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tag := strings.Repeat("x", i+1)
			result, err := runner.Run(context.Background(), shell("echo "+tag), RunOptions{Timeout: 5 * time.Second})
			if err != nil {
				t.Errorf("run %d: %v", i, err)
				return
			}
			outputs[i] = joined(result.Chunks, domain.Stdout)
		}(i)
	}
	wg.Wait()

	for i, out := range outputs {
		if want := strings.Repeat("x", i+1) + "\n"; out != want {
			t.Errorf("run %d captured %q, want %q", i, out, want)
		}
	}
}
