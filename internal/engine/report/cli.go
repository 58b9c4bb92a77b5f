package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/pagelens/pagelens/internal/engine/schema"
)

// CLIFormatter outputs a Report as a human-readable terminal summary.
type CLIFormatter struct {
	Color bool
}

// NewCLIFormatter creates a new CLIFormatter.
func NewCLIFormatter(colorize bool) *CLIFormatter {
	return &CLIFormatter{Color: colorize}
}

// Format returns a formatted terminal report.
func (f *CLIFormatter) Format(rep Report) string {
	var b strings.Builder
	bold := f.paint(color.Bold)
	dim := f.paint(color.Faint)
	res := rep.result()

	b.WriteString(fmt.Sprintf("\n✅ %s analyzed %s in %dms\n",
		bold.Sprint("PageLens"),
		bold.Sprint(rep.URL),
		rep.DurationMs))
	meta := fmt.Sprintf("%s/%s", rep.Vendor, rep.Model)
	if rep.Genre != "" {
		meta += ", genre " + rep.Genre
	}
	b.WriteString("   " + dim.Sprint(meta) + "\n\n")

	if res.Summary != "" {
		b.WriteString(fmt.Sprintf("  %s\n\n", res.Summary))
	}

	b.WriteString(fmt.Sprintf("⚠️  Issues (%d)\n", len(res.Issues)))
	if len(res.Issues) == 0 {
		b.WriteString("  " + dim.Sprint("no issues detected") + "\n")
	}
	for i, issue := range res.Issues {
		b.WriteString(fmt.Sprintf("  %d. %s %s %s\n",
			i+1,
			severityIcon(issue.Severity),
			bold.Sprint(issue.Title),
			f.severityColor(issue.Severity).Sprint(string(issue.Severity))))
		b.WriteString(fmt.Sprintf("     %s\n", issue.Detail))
		if issue.Evidence != "" {
			b.WriteString(fmt.Sprintf("     Evidence: %s\n", dim.Sprint(issue.Evidence)))
		}
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("💡 Improvements (%d)\n", len(res.Improvements)))
	if len(res.Improvements) == 0 {
		b.WriteString("  " + dim.Sprint("no improvements proposed") + "\n")
	}
	for i, imp := range res.Improvements {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, bold.Sprint(imp.Title)))
		b.WriteString(fmt.Sprintf("     %s\n", imp.Rationale))
		if imp.TargetsIssue != "" {
			b.WriteString(fmt.Sprintf("     Targets: %s\n", dim.Sprint(imp.TargetsIssue)))
		}
	}

	if rep.RunDir != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", dim.Sprintf("artifacts saved under %s", rep.RunDir)))
	}
	return b.String()
}

// paint builds a color that honors the formatter's Color flag instead of
// terminal detection, so output stays stable under pipes and tests.
func (f *CLIFormatter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if f.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (f *CLIFormatter) severityColor(s schema.Severity) *color.Color {
	switch s {
	case schema.SeverityHigh:
		return f.paint(color.FgRed, color.Bold)
	case schema.SeverityLow:
		return f.paint(color.FgGreen)
	default:
		return f.paint(color.FgYellow)
	}
}

func severityIcon(s schema.Severity) string {
	switch s {
	case schema.SeverityHigh:
		return "🔴"
	case schema.SeverityLow:
		return "🟢"
	default:
		return "🟡"
	}
}
