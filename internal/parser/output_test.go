package parser

import (
	"testing"

	"mcptest/internal/domain"
)

func stdout(texts ...string) []domain.CapturedChunk {
	chunks := make([]domain.CapturedChunk, 0, len(texts))
	for _, text := range texts {
		chunks = append(chunks, domain.CapturedChunk{Stream: domain.Stdout, Text: text})
	}
	return chunks
}

func TestOutputAnalyzer_Analyze(t *testing.T) {
	a := NewOutputAnalyzer()

	tests := []struct {
		name   string
		chunks []domain.CapturedChunk
		want   domain.Verdict
	}{
		{
			name:   "no output",
			chunks: nil,
			want:   domain.Verdict{},
		},
		{
			name:   "fatal error on stderr",
			chunks: []domain.CapturedChunk{{Stream: domain.Stderr, Text: "Fatal Error: disk full\n"}},
			want:   domain.Verdict{HasError: true, ErrorMessage: "disk full"},
		},
		{
			name:   "error pattern without message marker",
			chunks: stdout("failed to fetch config from registry"),
			want:   domain.Verdict{HasError: true},
		},
		{
			name:   "message only up to line break",
			chunks: stdout("Failed to fetch config. Error: 401 Unauthorized\nretrying later\n"),
			want:   domain.Verdict{HasError: true, ErrorMessage: "401 Unauthorized"},
		},
		{
			name:   "error marker without error pattern is ignored",
			chunks: stdout("Error: something harmless\n"),
			want:   domain.Verdict{},
		},
		{
			name:   "connecting then connected",
			chunks: stdout("Connecting to WebSocket endpoint...\n", "WebSocket connection established\n"),
			want:   domain.Verdict{ConnectionEstablished: true, LastConnectionMessage: MessageConnected},
		},
		{
			name:   "connected then connecting keeps connection",
			chunks: stdout("websocket connection established", "connecting to websocket"),
			want:   domain.Verdict{ConnectionEstablished: true, LastConnectionMessage: MessageConnecting},
		},
		{
			name:   "only connecting",
			chunks: stdout("connecting to websocket"),
			want:   domain.Verdict{LastConnectionMessage: MessageConnecting},
		},
		{
			name:   "internal server error override",
			chunks: stdout("Fatal error: Internal Server Error: boom\n"),
			want:   domain.Verdict{HasError: true, ErrorMessage: MessageInternalError},
		},
		{
			name:   "server not found wins over internal error in one chunk",
			chunks: stdout("internal server error; server not found"),
			want:   domain.Verdict{HasError: true, ErrorMessage: MessageServerNotFound},
		},
		{
			name:   "later generic error does not clear message",
			chunks: stdout("Fatal error: Error: first\n", "fatal error without marker"),
			want:   domain.Verdict{HasError: true, ErrorMessage: "first"},
		},
		{
			name:   "later extracted message replaces earlier",
			chunks: stdout("fatal error. Error: first\n", "fatal error. Error: second\n"),
			want:   domain.Verdict{HasError: true, ErrorMessage: "second"},
		},
		{
			name:   "blank extracted message is not recorded",
			chunks: stdout("fatal error. Error: first\n", "fatal error. Error:   \n"),
			want:   domain.Verdict{HasError: true, ErrorMessage: "first"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.chunks)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestOutputAnalyzer_OrderSensitivity(t *testing.T) {
	a := NewOutputAnalyzer()

	t.Run("override after connection", func(t *testing.T) {
		v := a.Analyze(stdout("websocket connection established", "server not found"))
		if v.ConnectionEstablished {
			t.Error("expected connection to be reverted by server not found")
		}
		if !v.HasError {
			t.Error("expected error")
		}
	})

	t.Run("connection after override", func(t *testing.T) {
		v := a.Analyze(stdout("server not found", "websocket connection established"))
		if !v.ConnectionEstablished {
			t.Error("expected later connection to win")
		}
		if !v.HasError {
			t.Error("expected error to stay set")
		}
		if v.ErrorMessage != MessageServerNotFound {
			t.Errorf("unexpected message %q", v.ErrorMessage)
		}
	})
}

func TestOutputAnalyzer_Idempotent(t *testing.T) {
	a := NewOutputAnalyzer()
	chunks := []domain.CapturedChunk{
		{Stream: domain.Stdout, Text: "connecting to websocket\n"},
		{Stream: domain.Stderr, Text: "Fatal Error: boom\n"},
		{Stream: domain.Stdout, Text: "WebSocket connection established\n"},
	}

	first := a.Analyze(chunks)
	second := a.Analyze(chunks)
	if first != second {
		t.Errorf("analysis is not deterministic: %+v vs %+v", first, second)
	}
}

func TestOutputAnalyzer_StreamDoesNotMatter(t *testing.T) {
	a := NewOutputAnalyzer()
	out := a.Analyze([]domain.CapturedChunk{{Stream: domain.Stdout, Text: "Fatal Error: x\n"}})
	errs := a.Analyze([]domain.CapturedChunk{{Stream: domain.Stderr, Text: "Fatal Error: x\n"}})
	if out != errs {
		t.Errorf("stdout and stderr must classify the same: %+v vs %+v", out, errs)
	}
}
