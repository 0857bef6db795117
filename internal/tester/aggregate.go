package tester

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"mcptest/internal/domain"
	"mcptest/internal/execution"
)

// DefaultFailureMessage is reported for a classified failure whose output
// carried no extractable message
const DefaultFailureMessage = "Server connection failed"

// minMaskedKeyLen is the shortest key hidden in captured text. Shorter keys
// match ordinary words too often to be told apart from them.
const minMaskedKeyLen = 8

// Aggregate composes the report for a configuration that parsed. A non-nil
// launchErr short-circuits to a failed report carrying the raw system error;
// otherwise success is exactly the absence of an error pattern in the output.
func Aggregate(desc domain.LaunchDescriptor, verdict domain.Verdict, run *execution.RunResult, launchErr error) domain.TestReport {
	report := newReport()
	redacted := desc.Redacted()
	report.ConfigurationType = desc.Kind
	report.ServerName = desc.ServerName
	report.ServerPackage = desc.ServerPackage
	report.ServerDetails = &domain.ServerDetails{
		Command: redacted.Command,
		Args:    redacted.Args,
		Client:  redacted.Client,
	}

	if launchErr != nil {
		report.Outcome = domain.OutcomeLaunchError
		report.Error = launchErr.Error()
		report.ExitCode = -1
		return report
	}

	if run != nil {
		report.Output = maskOutput(run.Chunks, desc.APIKey)
		report.TimedOut = run.TimedOut
		report.ExitCode = run.ExitCode
		report.DurationMs = run.Duration.Milliseconds()
	}
	report.ConnectionStatus = verdict.ConnectionEstablished
	report.LastConnectionMessage = verdict.LastConnectionMessage

	if verdict.HasError {
		report.Outcome = domain.OutcomeFailed
		report.Error = maskKey(verdict.ErrorMessage, desc.APIKey)
		if report.Error == "" {
			report.Error = DefaultFailureMessage
		}
		return report
	}

	// No error pattern matched. This includes runs that never reported a
	// connection; Provisional() marks those so callers can tell them apart.
	report.Success = true
	report.Outcome = domain.OutcomePassed
	return report
}

// ConfigurationFailure is the report for input the parser rejected
func ConfigurationFailure(err error) domain.TestReport {
	report := newReport()
	report.Outcome = domain.OutcomeConfigurationError
	report.Error = err.Error()
	report.ExitCode = -1
	return report
}

func newReport() domain.TestReport {
	return domain.TestReport{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// maskOutput hides the API key if the child echoed it back.
func maskOutput(chunks []domain.CapturedChunk, key string) []domain.CapturedChunk {
	if utf8.RuneCountInString(key) < minMaskedKeyLen || len(chunks) == 0 {
		return chunks
	}
	out := make([]domain.CapturedChunk, len(chunks))
	for i, c := range chunks {
		out[i] = domain.CapturedChunk{Stream: c.Stream, Text: maskKey(c.Text, key)}
	}
	return out
}

// maskKey replaces whole-token occurrences of key in s. A match inside a
// longer word is left alone.
func maskKey(s, key string) string {
	if utf8.RuneCountInString(key) < minMaskedKeyLen || !strings.Contains(s, key) {
		return s
	}
	masked := domain.MaskSecret(key)

	var b strings.Builder
	start := 0
	for {
		i := strings.Index(s[start:], key)
		if i < 0 {
			break
		}
		i += start
		end := i + len(key)
		if !tokenRuneBefore(s, i) && !tokenRuneAfter(s, end) {
			b.WriteString(s[start:i])
			b.WriteString(masked)
			start = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[start : i+size])
		start = i + size
	}
	b.WriteString(s[start:])
	return b.String()
}

func tokenRuneBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isTokenRune(r)
}

func tokenRuneAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isTokenRune(r)
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}
