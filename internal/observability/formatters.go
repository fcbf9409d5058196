// Package observability renders assistant results as readable terminal output
// for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/jonathan/career-agent/internal/diagnostic"
	"github.com/jonathan/career-agent/internal/resume"
	"github.com/jonathan/career-agent/internal/review"
)

const (
	// boxWidth is the default width for formatted output boxes, in columns
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	goodColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	badColor   = color.New(color.FgRed)
)

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Widths are
// measured in terminal columns so CJK text lines up. Only the title is
// colored; content is measured as plain text.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string, accent *color.Color) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", accent.Sprint(fit(title, inner)))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", fit(line, inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// fit truncates or pads s to exactly width columns.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "...")
	}
	return runewidth.FillRight(s, width)
}

// scoreColor grades a 0-100 score.
func scoreColor(score float64) *color.Color {
	switch {
	case score >= 80:
		return goodColor
	case score >= 60:
		return warnColor
	default:
		return badColor
	}
}

// listItems renders up to maxItemsToShow items as bullets.
func listItems(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", label)
	for i, item := range items {
		if i == maxItemsToShow {
			fmt.Fprintf(sb, "  ... 另有 %d 项\n", len(items)-maxItemsToShow)
			break
		}
		fmt.Fprintf(sb, "  • %s\n", item)
	}
}

// PrintDiagnostic outputs a summary of a diagnosis.
func (p *Printer) PrintDiagnostic(res *diagnostic.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "匹配度:   %.0f/100\n", res.Summary.Score)
	fmt.Fprintf(&sb, "结论:     %s\n", res.Summary.Title)
	if res.Summary.Brief != "" {
		fmt.Fprintf(&sb, "评价:     %s\n", res.Summary.Brief)
	}
	sb.WriteString("\n")
	listItems(&sb, "已匹配技能", res.SkillsMatrix.Matched)
	listItems(&sb, "缺失技能", res.SkillsMatrix.Missing)
	listItems(&sb, "风险", res.DeepDiagnostic.Risks)

	strategy := res.LearningStrategy
	if len(strategy.Timeline.Stages) > 0 || strategy.Timeline.Text != "" {
		fmt.Fprintf(&sb, "学习计划 (%s):\n", strategy.Type)
		for _, st := range strategy.Timeline.Stages {
			fmt.Fprintf(&sb, "  %s  %s\n", st.Stage, st.Task)
		}
		if strategy.Timeline.Text != "" {
			fmt.Fprintf(&sb, "  %s\n", strategy.Timeline.Text)
		}
	}

	p.printBox("DIAGNOSTIC REPORT", sb.String(), scoreColor(res.Summary.Score))
}

// PrintSections outputs the section outline of a resume.
func (p *Printer) PrintSections(sections []resume.Section) {
	if len(sections) == 0 {
		return
	}

	var sb strings.Builder
	for _, s := range sections {
		key := string(s.Key)
		header := s.Header
		if s.Key == resume.SectionNone {
			key, header = "-", "(preamble)"
		}
		fmt.Fprintf(&sb, "%-10s %s  [%d lines]\n", key, header, len(s.Body))
	}
	p.printBox(fmt.Sprintf("RESUME SECTIONS (%d)", len(sections)), sb.String(), titleColor)
}

// PrintReviewReport outputs an interview review.
func (p *Printer) PrintReviewReport(r review.Report) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "得分: %.0f\n\n", r.Score)
	listItems(&sb, "优势", r.Strengths)
	listItems(&sb, "不足", r.Weaknesses)
	fmt.Fprintf(&sb, "建议: %s\n", r.Suggestions)
	p.printBox("INTERVIEW REVIEW", sb.String(), scoreColor(r.Score))
}
