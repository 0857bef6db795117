package ui

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"mcptest/internal/domain"
)

// ProgressBar tracks a batch of configuration tests
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a new progress bar
func NewProgressBar(count int) *ProgressBar {
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(batchDescription(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

func batchDescription(successCount, failCount int) string {
	return color.CyanString("Testing configs: ") +
		color.GreenString("[success: %d", successCount) +
		" | " +
		color.RedString("failed: %d]", failCount)
}

// Update updates the progress bar with success and failure counts
func (p *ProgressBar) Update(successCount, failCount int) {
	p.bar.Set(successCount + failCount)
	p.bar.Describe(batchDescription(successCount, failCount))
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}

// Spinner shows a single test window while output arrives
type Spinner struct {
	bar *progressbar.ProgressBar

	mu     sync.Mutex
	label  string
	stdout int
	stderr int
}

// NewSpinner creates a spinner labelled with the server under test
func NewSpinner(label string) *Spinner {
	s := &Spinner{label: label}
	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(s.description()),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return s
}

// OnChunk counts a captured chunk; it matches execution.RunOptions.OnChunk
func (s *Spinner) OnChunk(chunk domain.CapturedChunk) {
	s.mu.Lock()
	if chunk.Stream == domain.Stderr {
		s.stderr++
	} else {
		s.stdout++
	}
	desc := s.description()
	s.mu.Unlock()

	s.bar.Describe(desc)
	s.bar.Add(1)
}

// Finish clears the spinner line
func (s *Spinner) Finish() {
	s.bar.Finish()
}

func (s *Spinner) description() string {
	return color.CyanString("Observing %s ", s.label) +
		color.WhiteString("[stdout: %d", s.stdout) +
		" | " +
		color.YellowString("stderr: %d]", s.stderr)
}
