// Package capture fetches a rendered page over HTTP, collects its
// external stylesheets and prepares the snapshot artifacts the analysis
// consumes: saved HTML, a joined CSS bundle, a screenshot set and a
// self-contained preview document.
package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pagelens/pagelens/internal/platform/logger"
)

// CSSBundleDelimiter opens the joined external stylesheet text. The
// bundle always starts with it, even when no stylesheet was collected.
const CSSBundleDelimiter = "\n\n/*--- external css bundle ---*/\n"

// browserUserAgent makes the fetch look like a desktop browser; plenty
// of sites serve stripped-down markup to unknown agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const (
	defaultPageTimeout = 30 * time.Second
	cssFetchTimeout    = 10 * time.Second
)

// ScreenshotSet holds the captured page images by kind.
type ScreenshotSet struct {
	Full     string   `json:"full,omitempty"`
	Viewport string   `json:"viewport,omitempty"`
	Slices   []string `json:"slices,omitempty"`
}

// Primary returns the preferred screenshot path: the full-page capture,
// then the viewport, then the first slice.
func (s ScreenshotSet) Primary() string {
	if s.Full != "" {
		return s.Full
	}
	if s.Viewport != "" {
		return s.Viewport
	}
	if len(s.Slices) > 0 {
		return s.Slices[0]
	}
	return ""
}

// Artifact is the saved snapshot of one captured page.
type Artifact struct {
	URL      string `json:"url"`
	HTML     string `json:"-"`
	HTMLPath string `json:"html_path"`

	CSSTexts   []string `json:"-"`
	CSSPaths   []string `json:"css_paths,omitempty"`
	CSSSources []string `json:"css_sources,omitempty"`
	// CSSBundle is the delimiter-joined text of every collected
	// stylesheet, in document order.
	CSSBundle string `json:"-"`

	Screenshots ScreenshotSet `json:"screenshots"`
	RenderPath  string        `json:"render_path,omitempty"`
}

// Fetcher captures pages over plain HTTP. Stylesheet failures are
// tolerated; the page itself failing is an error.
type Fetcher struct {
	client     *http.Client
	cssTimeout time.Duration
}

// NewFetcher creates a Fetcher. A nil client selects a default with a
// 30 second timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultPageTimeout}
	}
	return &Fetcher{client: client, cssTimeout: cssFetchTimeout}
}

// Fetch downloads the page, saves index.html and every reachable
// external stylesheet under runDir, renders the placeholder screenshot
// and writes the inline-CSS preview document.
func (f *Fetcher) Fetch(ctx context.Context, pageURL, runDir string) (*Artifact, error) {
	log := logger.FromContext(ctx)

	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run dir: %w", err)
	}

	html, err := f.fetchText(ctx, pageURL, browserUserAgent)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	htmlPath := filepath.Join(runDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, fmt.Errorf("saving page html: %w", err)
	}

	art := &Artifact{
		URL:      pageURL,
		HTML:     html,
		HTMLPath: htmlPath,
	}
	f.collectStylesheets(ctx, art, html, pageURL, runDir)
	art.CSSBundle = CSSBundleDelimiter + strings.Join(art.CSSTexts, "\n\n")

	placeholder := filepath.Join(runDir, "placeholder.png")
	if err := writePlaceholderPNG(placeholder, "Preview of "+pageURL); err != nil {
		return nil, fmt.Errorf("rendering placeholder screenshot: %w", err)
	}
	art.Screenshots = ScreenshotSet{
		Full:     placeholder,
		Viewport: placeholder,
		Slices:   []string{placeholder},
	}

	preview, err := InlineCSS(html, art.CSSBundle)
	if err != nil {
		return nil, fmt.Errorf("building preview document: %w", err)
	}
	renderPath := filepath.Join(runDir, "_render.html")
	if err := os.WriteFile(renderPath, []byte(preview), 0o644); err != nil {
		return nil, fmt.Errorf("saving preview document: %w", err)
	}
	art.RenderPath = renderPath

	log.Info("page captured",
		"url", pageURL,
		"html_bytes", len(html),
		"stylesheets", len(art.CSSPaths),
	)
	return art, nil
}

// collectStylesheets walks link[rel=stylesheet] in document order and
// saves each reachable stylesheet as ext_N.css. Failures skip the file;
// a page without its CSS is still analyzable.
func (f *Fetcher) collectStylesheets(ctx context.Context, art *Artifact, html, pageURL, runDir string) {
	log := logger.FromContext(ctx)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn("parsing page html failed, skipping stylesheets", "error", err)
		return
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		log.Warn("parsing page url failed, skipping stylesheets", "url", pageURL, "error", err)
		return
	}

	doc.Find(`link[rel="stylesheet"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			log.Debug("skipping unparsable stylesheet href", "href", href)
			return
		}
		absURL := base.ResolveReference(ref).String()

		cssCtx, cancel := context.WithTimeout(ctx, f.cssTimeout)
		text, err := f.fetchText(cssCtx, absURL, browserUserAgent)
		cancel()
		if err != nil || text == "" {
			log.Debug("skipping unreachable stylesheet", "url", absURL, "error", err)
			return
		}

		cssPath := filepath.Join(runDir, fmt.Sprintf("ext_%d.css", len(art.CSSPaths)))
		if err := os.WriteFile(cssPath, []byte(text), 0o644); err != nil {
			log.Warn("saving stylesheet failed", "path", cssPath, "error", err)
			return
		}
		art.CSSPaths = append(art.CSSPaths, cssPath)
		art.CSSTexts = append(art.CSSTexts, text)
		art.CSSSources = append(art.CSSSources, absURL)
	})
}

func (f *Fetcher) fetchText(ctx context.Context, rawURL, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
