package capture

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// inlineStyleMarker tags the injected style element so repeated
// inlining replaces it instead of stacking duplicates.
const inlineStyleMarker = "capture-css"

// InlineCSS returns the page with the external CSS bundle embedded as a
// single style element in the head, producing a document that renders
// standalone. A blank bundle returns the input unchanged.
func InlineCSS(html, cssBundle string) (string, error) {
	if strings.TrimSpace(cssBundle) == "" {
		return html, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	// The html5 parser guarantees a head element exists after parsing.
	head := doc.Find("head").First()
	head.Find(fmt.Sprintf("style[data-inline=%q]", inlineStyleMarker)).Remove()
	head.AppendHtml(fmt.Sprintf("<style data-inline=%q>%s</style>", inlineStyleMarker, cssBundle))

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("serializing html: %w", err)
	}
	return out, nil
}
