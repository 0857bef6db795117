package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"mcptest/internal/config"
	"mcptest/internal/discovery"
	"mcptest/internal/domain"
)

// Output formats accepted by --format
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// outputTailLines is how much captured output the text report shows
const outputTailLines = 15

var (
	cyan    = color.New(color.FgCyan)
	green   = color.New(color.FgGreen)
	red     = color.New(color.FgRed)
	yellow  = color.New(color.FgYellow)
	gray    = color.New(color.FgHiBlack)
	boldRed = color.New(color.FgRed, color.Bold)
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter(cfg *config.Config) *Formatter {
	return NewFormatterTo(cfg, os.Stdout)
}

// NewFormatterTo creates a new Formatter writing to out
func NewFormatterTo(cfg *config.Config, out io.Writer) *Formatter {
	return &Formatter{config: cfg, out: out}
}

// ValidFormat reports whether format is one PrintReports understands
func ValidFormat(format string) bool {
	switch format {
	case "", FormatText, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// PrintReports writes reports in the requested format. Text output prints
// each report and, for more than one, a summary table.
func (f *Formatter) PrintReports(reports []domain.TestReport, duration time.Duration, format string) error {
	switch format {
	case FormatJSON:
		return f.encodeJSON(reports)
	case FormatYAML:
		return f.encodeYAML(reports)
	}

	for i, report := range reports {
		if i > 0 {
			fmt.Fprintln(f.out)
		}
		f.PrintReport(report)
	}
	if len(reports) > 1 {
		fmt.Fprintln(f.out)
		f.PrintBatchSummary(reports, duration)
	}
	return nil
}

// PrintReport writes one report as colored text
func (f *Formatter) PrintReport(report domain.TestReport) {
	title := report.ServerName
	if title == "" {
		title = report.Source
	}
	if report.Success {
		green.Fprintf(f.out, "✓ %s passed\n", title)
	} else {
		red.Fprintf(f.out, "✗ %s failed\n", title)
	}

	f.field("Source", report.Source)
	f.field("Outcome", string(report.Outcome))
	f.field("Configuration", string(report.ConfigurationType))
	f.field("Server package", report.ServerPackage)
	if report.ServerDetails != nil {
		f.field("Command", strings.Join(append([]string{report.ServerDetails.Command}, report.ServerDetails.Args...), " "))
	}
	if report.Outcome == domain.OutcomePassed || report.Outcome == domain.OutcomeFailed {
		f.field("Connected", fmt.Sprintf("%t", report.ConnectionStatus))
		f.field("Last message", report.LastConnectionMessage)
		f.field("Duration", (time.Duration(report.DurationMs) * time.Millisecond).String())
		if report.TimedOut {
			f.field("Ended by", "timeout")
		} else {
			f.field("Exit code", fmt.Sprintf("%d", report.ExitCode))
		}
	}
	if report.Error != "" {
		cyan.Fprintf(f.out, "  %-16s", "Error")
		red.Fprintln(f.out, report.Error)
	}
	if report.Provisional() {
		yellow.Fprintln(f.out, "  ! No error and no connection message were seen; success is provisional")
	}

	if len(report.Output) > 0 {
		gray.Fprintf(f.out, "  Output (last %d lines):\n", outputTailLines)
		for _, line := range TailLines(report.Output, outputTailLines) {
			if line.Stream == domain.Stderr {
				yellow.Fprintf(f.out, "    %s\n", line.Text)
			} else {
				fmt.Fprintf(f.out, "    %s\n", line.Text)
			}
		}
	}
}

func (f *Formatter) field(name, value string) {
	if value == "" {
		return
	}
	cyan.Fprintf(f.out, "  %-16s", name)
	fmt.Fprintln(f.out, value)
}

// PrintBatchSummary renders one row per report and a totals footer
func (f *Formatter) PrintBatchSummary(reports []domain.TestReport, duration time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle("Configuration tests")
	t.AppendHeader(table.Row{"#", "Source", "Server", "Outcome", "Connected", "Duration", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Source", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Error", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
	})

	var passed, failed int
	for i, r := range reports {
		if r.Success {
			passed++
		} else {
			failed++
		}
		t.AppendRow(table.Row{
			i + 1,
			f.relative(r.Source),
			r.ServerName,
			string(r.Outcome),
			r.ConnectionStatus,
			(time.Duration(r.DurationMs) * time.Millisecond).Round(time.Millisecond).String(),
			r.Error,
		})
	}

	if failed > 0 {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	t.AppendFooter(table.Row{
		"", "TOTAL", len(reports),
		fmt.Sprintf("%d passed, %d failed", passed, failed),
		"", duration.Round(time.Millisecond).String(), "",
	})
	t.Render()
}

// PrintHistory renders stored report summaries
func (f *Formatter) PrintHistory(summaries []domain.ReportSummary, format string) error {
	switch format {
	case FormatJSON:
		return f.encodeJSON(summaries)
	case FormatYAML:
		return f.encodeYAML(summaries)
	}

	if len(summaries) == 0 {
		yellow.Fprintln(f.out, "No stored reports")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.AppendHeader(table.Row{"ID", "Time", "Source", "Server", "Package", "Outcome", "Connected"})
	for _, s := range summaries {
		t.AppendRow(table.Row{
			s.ID,
			s.CreatedAt.Local().Format(time.DateTime),
			f.relative(s.Source),
			s.ServerName,
			s.ServerPackage,
			string(s.Outcome),
			s.ConnectionStatus,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

// PrintDescriptor shows a parsed configuration and its canonical forms
func (f *Formatter) PrintDescriptor(desc domain.LaunchDescriptor, format string) error {
	redacted := desc.Redacted()
	switch format {
	case FormatJSON:
		return f.encodeJSON(redacted)
	case FormatYAML:
		return f.encodeYAML(redacted)
	}

	green.Fprintf(f.out, "✓ Valid %s configuration\n", desc.Kind)
	f.field("Server name", redacted.ServerName)
	f.field("Server package", redacted.ServerPackage)
	f.field("API key", redacted.APIKey)
	f.field("Client", redacted.Client)
	f.field("Command", redacted.Command)
	f.field("Args", strings.Join(redacted.Args, " "))
	f.field("Invocation", redacted.Invocation())

	manifest, err := redacted.Manifest()
	if err != nil {
		return fmt.Errorf("render manifest: %w", err)
	}
	cyan.Fprintln(f.out, "  Manifest")
	for _, line := range strings.Split(string(manifest), "\n") {
		fmt.Fprintf(f.out, "    %s\n", line)
	}
	return nil
}

// PrintConfigList prints configuration files as a tree. When servers is not
// nil, the manifest entries of each file are listed under it; the first one
// is the entry a test launches.
func (f *Formatter) PrintConfigList(files []string, servers map[string][]discovery.ServerEntry) {
	green.Fprintf(f.out, "Found %d configuration file(s):\n", len(files))

	for i, file := range files {
		isLastFile := i == len(files)-1
		branch, indent := "├── ", "│   "
		if isLastFile {
			branch, indent = "└── ", "    "
		}
		cyan.Fprintf(f.out, "%s%s\n", branch, f.relative(file))

		if servers == nil {
			continue
		}
		entries := servers[file]
		if len(entries) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", indent, gray.Sprint("(invocation or no servers)"))
			continue
		}
		for j, entry := range entries {
			leaf := "├── "
			if j == len(entries)-1 {
				leaf = "└── "
			}
			label := entry.Name
			if entry.ServerPackage != "" {
				label += " " + gray.Sprint(entry.ServerPackage)
			}
			if j == 0 {
				label += " " + green.Sprint("[launched]")
			}
			if !entry.HasKey {
				label += " " + red.Sprint("[no --key]")
			}
			fmt.Fprintf(f.out, "%s%s%s\n", indent, leaf, yellow.Sprint(label))
		}
	}
}

// PrintSummaryLine prints the final pass/fail line of a run
func (f *Formatter) PrintSummaryLine(reports []domain.TestReport) {
	var failed int
	for _, r := range reports {
		if !r.Success {
			failed++
		}
	}
	fmt.Fprintln(f.out)
	if failed == 0 {
		green.Fprintln(f.out, "✓ All configurations passed!")
		return
	}
	boldRed.Fprintf(f.out, "✗ %d of %d configuration(s) failed\n", failed, len(reports))
}

func (f *Formatter) encodeJSON(v any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *Formatter) encodeYAML(v any) error {
	enc := yaml.NewEncoder(f.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// relative shortens paths under the scan directory
func (f *Formatter) relative(path string) string {
	// Sources like "inline" and "http" are not paths.
	if !filepath.IsAbs(path) && !strings.ContainsRune(path, filepath.Separator) {
		return path
	}
	base, err := filepath.Abs(f.config.GetScanPath())
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(base, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// Line is one display line of captured output
type Line struct {
	Stream domain.Stream
	Text   string
}

// SplitLines cuts captured chunks into display lines with ANSI escapes
// removed. A line continued across chunks of the same stream is joined.
func SplitLines(chunks []domain.CapturedChunk) []Line {
	var lines []Line
	var open bool
	for _, chunk := range chunks {
		clean := strings.ReplaceAll(stripansi.Strip(chunk.Text), "\r\n", "\n")
		parts := strings.Split(clean, "\n")
		for i, part := range parts {
			last := i == len(parts)-1
			if last && part == "" {
				// Chunk ended with a newline.
				open = false
				break
			}
			if i == 0 && open && len(lines) > 0 && lines[len(lines)-1].Stream == chunk.Stream {
				lines[len(lines)-1].Text += part
			} else {
				lines = append(lines, Line{Stream: chunk.Stream, Text: part})
			}
			open = last
		}
	}
	return lines
}

// TailLines returns the last n display lines of chunks
func TailLines(chunks []domain.CapturedChunk, n int) []Line {
	lines := SplitLines(chunks)
	if n > 0 && len(lines) > n {
		return lines[len(lines)-n:]
	}
	return lines
}
