package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"mcptest/internal/domain"
)

// streamFilter selects which captured stream the output pane shows
type streamFilter int

const (
	showAll streamFilter = iota
	showStdout
	showStderr
)

func (f streamFilter) String() string {
	switch f {
	case showStdout:
		return "stdout"
	case showStderr:
		return "stderr"
	default:
		return "all"
	}
}

func (f streamFilter) next() streamFilter {
	return (f + 1) % 3
}

// ReportViewer browses reports and their captured output in a TUI
type ReportViewer struct{}

// NewReportViewer creates a new ReportViewer
func NewReportViewer() *ReportViewer {
	return &ReportViewer{}
}

// View opens the TUI on reports and blocks until the user exits
func (rv *ReportViewer) View(reports []domain.TestReport) error {
	if len(reports) == 0 {
		color.Yellow("No reports to show")
		return nil
	}

	app := tview.NewApplication()
	filter := showAll

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i, report := range reports {
		list.AddItem(listItemText(report, i), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)

	outputView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	outputContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(outputView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 6, 0, false).
		AddItem(outputContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(
			" Reports (%d) | ↑↓ navigate, → view output, ← back, [yellow]F[white] stream: %s, Q or Ctrl+C exit ",
			len(reports), filter))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(reports) {
			return
		}
		statsView.SetText(formatReportStats(reports[index]))
		outputView.SetText(formatOutput(reports[index].Output, filter)).ScrollToBeginning()
	}

	handleCommon := func(event *tcell.EventKey) bool {
		switch {
		case event.Key() == tcell.KeyCtrlC,
			event.Key() == tcell.KeyRune && (event.Rune() == 'q' || event.Rune() == 'Q'):
			app.Stop()
			return true
		case event.Key() == tcell.KeyRune && (event.Rune() == 'f' || event.Rune() == 'F'):
			filter = filter.next()
			updateHeader()
			updateDetails()
			return true
		}
		return false
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if handleCommon(event) {
			return nil
		}
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(outputView)
			return nil
		}
		return event
	})

	outputView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if handleCommon(event) {
			return nil
		}
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})

	updateHeader()
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func listItemText(report domain.TestReport, index int) string {
	name := report.ServerName
	if name == "" {
		name = report.Source
	}
	if name == "" {
		name = fmt.Sprintf("Report %d", index+1)
	}
	name = tview.Escape(name)

	switch {
	case !report.Success:
		return fmt.Sprintf("[red]✗ [yellow]%d.[white] %s", index+1, name)
	case report.Provisional():
		return fmt.Sprintf("[yellow]? %d.[white] %s", index+1, name)
	default:
		return fmt.Sprintf("[green]✓ [yellow]%d.[white] %s", index+1, name)
	}
}

// formatReportStats renders the header pane using tview color tags
func formatReportStats(report domain.TestReport) string {
	var b strings.Builder

	status := "[green]passed[white]"
	if !report.Success {
		status = "[red]" + tview.Escape(string(report.Outcome)) + "[white]"
	} else if report.Provisional() {
		status = "[yellow]passed (provisional)[white]"
	}

	fmt.Fprintf(&b, "[cyan]status:[white] %s  [cyan]server:[white] %s  [cyan]package:[white] %s\n",
		status, tview.Escape(report.ServerName), tview.Escape(report.ServerPackage))
	fmt.Fprintf(&b, "[cyan]source:[white] %s  [cyan]at:[white] %s\n",
		tview.Escape(report.Source), report.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(&b, "[cyan]connected:[white] %t  [cyan]last message:[white] %s\n",
		report.ConnectionStatus, tview.Escape(report.LastConnectionMessage))

	ended := fmt.Sprintf("exit %d", report.ExitCode)
	if report.TimedOut {
		ended = "timeout"
	}
	fmt.Fprintf(&b, "[cyan]duration:[white] %s  [cyan]ended by:[white] %s\n",
		time.Duration(report.DurationMs)*time.Millisecond, ended)
	if report.Error != "" {
		fmt.Fprintf(&b, "[red]error: %s[white]\n", tview.Escape(report.Error))
	}
	return b.String()
}

// formatOutput renders captured output with stderr highlighted
func formatOutput(chunks []domain.CapturedChunk, filter streamFilter) string {
	lines := SplitLines(chunks)
	if len(lines) == 0 {
		return "[gray](no output captured)[white]"
	}

	var b strings.Builder
	var shown int
	for _, line := range lines {
		if filter == showStdout && line.Stream != domain.Stdout ||
			filter == showStderr && line.Stream != domain.Stderr {
			continue
		}
		shown++
		if line.Stream == domain.Stderr {
			fmt.Fprintf(&b, "[yellow]%s[white]\n", tview.Escape(line.Text))
		} else {
			fmt.Fprintf(&b, "%s\n", tview.Escape(line.Text))
		}
	}
	if shown == 0 {
		return fmt.Sprintf("[gray](no %s output)[white]", filter)
	}
	return b.String()
}
