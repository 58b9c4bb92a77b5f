// Package prompt builds the system and analysis prompts sent to the
// model, including genre presets and the code excerpt budgets.
package prompt

import "fmt"

// Genre tunes the review focus for a class of landing page. The empty
// genre applies no preset.
type Genre string

const (
	GenreNone       Genre = ""
	GenreSaaS       Genre = "saas"
	GenreD2C        Genre = "d2c"
	GenreEducation  Genre = "education"
	GenreRecruiting Genre = "recruiting"
	GenreApp        Genre = "app"
)

// Genres lists the selectable presets in display order.
func Genres() []Genre {
	return []Genre{GenreSaaS, GenreD2C, GenreEducation, GenreRecruiting, GenreApp}
}

func (g Genre) Valid() bool {
	if g == GenreNone {
		return true
	}
	_, ok := genreFocus[g]
	return ok
}

// Label returns the human-readable name for a genre.
func (g Genre) Label() string {
	if label, ok := genreLabels[g]; ok {
		return label
	}
	return string(g)
}

var genreLabels = map[Genre]string{
	GenreSaaS:       "SaaS",
	GenreD2C:        "D2C",
	GenreEducation:  "Education",
	GenreRecruiting: "Recruiting",
	GenreApp:        "Mobile app",
}

// genreFocus is appended to the instructions when a genre is selected.
var genreFocus = map[Genre]string{
	GenreSaaS:       "This page sells a SaaS product. Weigh trust signals, feature clarity, pricing visibility and the strength of the primary signup call to action.",
	GenreD2C:        "This page sells a consumer product. Weigh product imagery, emotional appeal, social proof and how clearly the path to purchase stands out.",
	GenreEducation:  "This page promotes an education service. Weigh curriculum clarity, instructor credibility, learning outcomes and enrollment prompts.",
	GenreRecruiting: "This page recruits candidates. Weigh culture imagery, role clarity, employee voices and the visibility of the application call to action.",
	GenreApp:        "This page promotes a mobile app. Weigh app screenshots, store badges, onboarding simplicity and download prompts.",
}

const defaultSystem = "You are a senior designer and front-end implementer with a strong UI/UX background. " +
	"Audit the landing page's design and visual presentation from both the screenshot and the HTML/CSS, and surface concrete appearance problems.\n\n" +
	"Constraints:\n" +
	"- Anything unrelated to appearance (SEO, accessibility, performance) is out of scope.\n" +
	"- Focus on visual concerns such as design, layout, color and typography.\n" +
	"- Keep answers concise and to the point; long reasoning is unnecessary."

// rulesCard steers the review toward visual concerns only.
const rulesCard = `## High priority (visual improvements)
- **Typography**: font sizes, line height, letter spacing, hierarchy
- **Color and contrast**: consistent brand colors, legibility, balance
- **Layout**: spacing (padding/margin), alignment, grid, reading flow
- **Visual elements**: image sizing, icons, button design, decoration
- **Spacing**: section gaps, content density, whitespace
- **Visual hierarchy**: emphasis of what matters, prominence of the call to action

## Out of scope (not about appearance)
- SEO (meta tags, structured data)
- Accessibility (aria attributes, alt text)
- Performance (load speed, image optimization)
- Copywriting (large changes to text content)

Focus only on how the page looks and maximize visual impact.`

const analysisTemplate = `# Task
Audit the landing page's design and visual presentation, surface the problems that hurt how it looks, and propose improvements.
Prioritize changes with high visual impact.
Respond concisely in the requested JSON shape; long explanations and reasoning transcripts are unnecessary.

Important:
- Anything unrelated to appearance (SEO, accessibility, performance) is out of scope.
- Focus on visual concerns: design, layout, color and typography.
%s
# Design rule card
%s

# Reference code
## index.html
` + "```html\n%s\n```" + `

## styles_external_bundle.css
` + "```css\n%s\n```" + `
`

// System returns the system prompt, extended with the genre focus when
// one is selected.
func System(genre Genre) string {
	if focus, ok := genreFocus[genre]; ok {
		return defaultSystem + "\n\n" + focus
	}
	return defaultSystem
}

// Analysis renders the user prompt around clipped HTML and CSS excerpts.
// The extra instruction should already carry any genre focus; use
// ExtraInstruction to merge them.
func Analysis(html, cssBundle, extra string) string {
	var extraLine string
	if extra != "" {
		extraLine = "- Additional request: " + extra + "\n"
	}
	htmlSnippet := Clip(html, MaxHTMLChars, StyleHTML)
	cssSnippet := Clip(cssBundle, MaxCSSChars, StyleCSS)
	return fmt.Sprintf(analysisTemplate, extraLine, rulesCard, htmlSnippet, cssSnippet)
}

// ExtraInstruction merges the operator's request with the genre focus.
func ExtraInstruction(extra string, genre Genre) string {
	focus := genreFocus[genre]
	switch {
	case extra == "":
		return focus
	case focus == "":
		return extra
	default:
		return extra + "\n\n" + focus
	}
}
