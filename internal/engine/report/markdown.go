package report

import (
	"fmt"
	"strings"
)

// MarkdownFormatter outputs a Report as a Markdown fragment suitable for
// pasting into issues and review docs.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format returns the findings as Markdown: an optional summary line, then
// an Issues section and an Improvements section with "(none)" fallbacks.
func (f *MarkdownFormatter) Format(rep Report) string {
	res := rep.result()
	var lines []string

	if res.Summary != "" {
		lines = append(lines, res.Summary, "")
	}

	lines = append(lines, "### Issues")
	for _, issue := range res.Issues {
		lines = append(lines, fmt.Sprintf("- **%s** (%s): %s", issue.Title, issue.Severity, issue.Detail))
		if issue.Evidence != "" {
			lines = append(lines, fmt.Sprintf("    - Evidence: %s", issue.Evidence))
		}
	}
	if len(res.Issues) == 0 {
		lines = append(lines, "- (none)")
	}

	lines = append(lines, "", "### Improvements")
	for _, imp := range res.Improvements {
		suffix := ""
		if imp.TargetsIssue != "" {
			suffix = fmt.Sprintf(" (targets: %s)", imp.TargetsIssue)
		}
		lines = append(lines, fmt.Sprintf("- **%s**%s: %s", imp.Title, suffix, imp.Rationale))
	}
	if len(res.Improvements) == 0 {
		lines = append(lines, "- (none)")
	}

	return strings.Join(lines, "\n") + "\n"
}
