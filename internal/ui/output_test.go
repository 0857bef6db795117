package ui

import (
	"strings"
	"testing"

	"mcptest/internal/domain"
)

func TestFormatOutput(t *testing.T) {
	chunks := []domain.CapturedChunk{out("hello [world]\n"), errOut("warn\n")}

	tests := []struct {
		name    string
		filter  streamFilter
		want    []string
		notWant []string
	}{
		{
			name:   "all streams",
			filter: showAll,
			want:   []string{"hello [world[]", "[yellow]warn[white]"},
		},
		{
			name:    "stdout only",
			filter:  showStdout,
			want:    []string{"hello"},
			notWant: []string{"warn"},
		},
		{
			name:    "stderr only",
			filter:  showStderr,
			want:    []string{"warn"},
			notWant: []string{"hello"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatOutput(chunks, tt.filter)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("missing %q in %q", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("unexpected %q in %q", w, got)
				}
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		if got := formatOutput(nil, showAll); !strings.Contains(got, "no output captured") {
			t.Errorf("unexpected %q", got)
		}
		if got := formatOutput([]domain.CapturedChunk{out("x\n")}, showStderr); !strings.Contains(got, "no stderr output") {
			t.Errorf("unexpected %q", got)
		}
	})
}

func TestStreamFilter_Next(t *testing.T) {
	f := showAll
	seen := []string{}
	for i := 0; i < 4; i++ {
		seen = append(seen, f.String())
		f = f.next()
	}
	if strings.Join(seen, ",") != "all,stdout,stderr,all" {
		t.Errorf("unexpected cycle %v", seen)
	}
}

func TestListItemText(t *testing.T) {
	tests := []struct {
		name   string
		report domain.TestReport
		want   string
	}{
		{"failed", domain.TestReport{ServerName: "demo"}, "[red]✗ [yellow]1.[white] demo"},
		{"passed", domain.TestReport{Success: true, ConnectionStatus: true, ServerName: "demo"}, "[green]✓ [yellow]1.[white] demo"},
		{"provisional", domain.TestReport{Success: true, ServerName: "demo"}, "[yellow]? 1.[white] demo"},
		{"falls back to source", domain.TestReport{Source: "a.json"}, "[red]✗ [yellow]1.[white] a.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listItemText(tt.report, 0); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatReportStats(t *testing.T) {
	got := formatReportStats(sampleReport())
	for _, want := range []string{"[red]failed[white]", "demo", "exit 1", "error: 401 Unauthorized"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}
