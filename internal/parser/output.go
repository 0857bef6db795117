package parser

import (
	"regexp"
	"strings"

	"mcptest/internal/domain"
)

// Output patterns, matched against the lower-cased chunk text
const (
	patternFetchConfig         = "failed to fetch config"
	patternFatalError          = "fatal error"
	patternServerNotFound      = "server not found"
	patternInternalServerError = "internal server error"
	patternConnected           = "websocket connection established"
	patternConnecting          = "connecting to websocket"
)

// Fixed messages reported by the analyzer
const (
	MessageConnected      = "WebSocket connection established"
	MessageConnecting     = "Attempting to connect..."
	MessageServerNotFound = "Server package not found or invalid"
	MessageInternalError  = "Server encountered an internal error"
)

var errorPatterns = []string{
	patternFetchConfig,
	patternFatalError,
	patternServerNotFound,
	patternInternalServerError,
}

// errorMessagePattern captures the rest of the line after "Error:", case preserved
var errorMessagePattern = regexp.MustCompile(`Error:([^\n]+)`)

// OutputAnalyzer folds captured chunks into a Verdict
type OutputAnalyzer struct{}

// NewOutputAnalyzer creates a new OutputAnalyzer
func NewOutputAnalyzer() *OutputAnalyzer {
	return &OutputAnalyzer{}
}

// Analyze walks chunks in arrival order. Later chunks overwrite the connection
// state, while HasError stays set once any chunk matched an error pattern.
func (a *OutputAnalyzer) Analyze(chunks []domain.CapturedChunk) domain.Verdict {
	var v domain.Verdict
	for _, chunk := range chunks {
		v = a.step(v, chunk.Text)
	}
	return v
}

func (a *OutputAnalyzer) step(v domain.Verdict, text string) domain.Verdict {
	lower := strings.ToLower(text)

	if containsAny(lower, errorPatterns) {
		v.HasError = true
		if msg := extractErrorMessage(text); msg != "" {
			v.ErrorMessage = msg
		}
	}

	if strings.Contains(lower, patternConnected) {
		v.ConnectionEstablished = true
		v.LastConnectionMessage = MessageConnected
	} else if strings.Contains(lower, patternConnecting) {
		v.LastConnectionMessage = MessageConnecting
	}

	// Overrides run last so they win over the generic message of the same chunk.
	// "server not found" takes precedence when both appear.
	if strings.Contains(lower, patternServerNotFound) {
		v.HasError = true
		v.ErrorMessage = MessageServerNotFound
		v.ConnectionEstablished = false
	} else if strings.Contains(lower, patternInternalServerError) {
		v.HasError = true
		v.ErrorMessage = MessageInternalError
		v.ConnectionEstablished = false
	}

	return v
}

// extractErrorMessage returns the trimmed text after the first "Error:" up to
// the line break, or "" when there is none
func extractErrorMessage(text string) string {
	m := errorMessagePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
