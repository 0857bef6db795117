package parser

import "mcptest/internal/domain"

// Analyzer classifies the captured output of a server run
type Analyzer interface {
	Analyze(chunks []domain.CapturedChunk) domain.Verdict
}
