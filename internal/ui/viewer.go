package ui

import "mcptest/internal/domain"

// Viewer displays test reports in an interactive TUI
type Viewer interface {
	View(reports []domain.TestReport) error
}
