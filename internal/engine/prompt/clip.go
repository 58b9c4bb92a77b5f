package prompt

import "fmt"

// Character budgets for code excerpts embedded in the analysis prompt.
const (
	MaxHTMLChars = 12000
	MaxCSSChars  = 8000
)

// CommentStyle selects the comment syntax for the truncation marker.
type CommentStyle string

const (
	StyleHTML  CommentStyle = "html"
	StyleCSS   CommentStyle = "css"
	StylePlain CommentStyle = "plain"
)

// Clip fits text into budget characters by keeping the leading 70% and
// the trailing remainder, joined by a single marker that states how many
// characters were dropped. Budgets count characters, not bytes, so
// multibyte text is never split mid-rune. Text within budget passes
// through untouched.
func Clip(text string, budget int, style CommentStyle) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}

	head := int(float64(budget) * 0.7)
	tail := budget - head
	body := fmt.Sprintf("%d chars truncated for prompt budget", len(runes)-budget)

	var marker string
	switch style {
	case StyleHTML:
		marker = "\n<!-- " + body + " -->\n"
	case StyleCSS:
		marker = "\n/* " + body + " */\n"
	default:
		marker = "\n# " + body + "\n"
	}
	return string(runes[:head]) + marker + string(runes[len(runes)-tail:])
}
