// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/job-agent/internal/agent"
	"github.com/jonathan/job-agent/internal/detect"
	"github.com/jonathan/job-agent/internal/inject"
	"github.com/jonathan/job-agent/internal/registry"
	"github.com/jonathan/job-agent/internal/resume"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxReasonsToShow is the number of match reasons to display
	maxReasonsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobInfo outputs a human-readable summary of an extracted posting.
func (p *Printer) PrintJobInfo(info *detect.JobInfo) {
	if info == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", info.Title))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", info.Company))
	if info.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", info.Location))
	}
	if info.ApplyURL != "" {
		sb.WriteString(fmt.Sprintf("Apply:    %s\n", info.ApplyURL))
	}
	sb.WriteString(fmt.Sprintf("JD text:  %d chars", len(info.JDText)))

	p.printBox("DETECTED JOB POSTING", sb.String())
}

// PrintPageState outputs the current detection state of a page.
func (p *Printer) PrintPageState(state *agent.PageState) {
	if state == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job page:    %v\n", state.IsJob))
	if !state.DetectedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Detected at: %s\n", state.DetectedAt.Format("15:04:05")))
	}
	if state.LastError != "" {
		sb.WriteString(fmt.Sprintf("Last error:  %s\n", state.LastError))
	}
	p.printBox("PAGE STATE", strings.TrimSuffix(sb.String(), "\n"))

	if state.IsJob && state.Extracted != nil {
		p.PrintJobInfo(state.Extracted)
	}
}

// PrintAutofill outputs the outcome of an autofill pass.
func (p *Printer) PrintAutofill(result *inject.Result) {
	if result == nil {
		return
	}

	content := fmt.Sprintf("Filled:  %d\nSkipped: %d", result.Filled, result.Skipped)
	p.printBox("AUTOFILL RESULT", content)
}

// PrintTabs outputs a snapshot of tracked tabs, ordered by target ID.
func (p *Printer) PrintTabs(tabs map[string]registry.TabState) {
	if len(tabs) == 0 {
		p.printBox("TRACKED TABS", "none")
		return
	}

	ids := make([]string, 0, len(tabs))
	for id := range tabs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, id := range ids {
		state := tabs[id]
		marker := " "
		if state.IsJob {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, id))
	}
	p.printBox("TRACKED TABS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatch outputs a fit score with its top reasons.
func (p *Printer) PrintMatch(match *resume.Match) {
	if match == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score: %d / 100\n", match.Score))
	count := len(match.Reasons)
	if count > maxReasonsToShow {
		count = maxReasonsToShow
	}
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", match.Reasons[i]))
	}
	if len(match.Reasons) > maxReasonsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(match.Reasons)-maxReasonsToShow))
	}
	p.printBox("FIT SCORE", strings.TrimSuffix(sb.String(), "\n"))
}
