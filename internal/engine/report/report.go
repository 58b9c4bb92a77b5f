// Package report renders analysis results for terminals, files and
// code-scanning tools.
package report

import (
	"github.com/pagelens/pagelens/internal/engine/schema"
)

// Report holds one finished analysis together with the run metadata a
// renderer needs.
type Report struct {
	URL        string                 `json:"url"`
	Vendor     string                 `json:"vendor"`
	Model      string                 `json:"model"`
	Genre      string                 `json:"genre,omitempty"`
	DurationMs int64                  `json:"duration_ms"`
	RunDir     string                 `json:"run_dir,omitempty"`
	Result     *schema.AnalysisResult `json:"result"`
}

func (r Report) result() *schema.AnalysisResult {
	if r.Result == nil {
		return &schema.AnalysisResult{}
	}
	return r.Result
}

// Formatter formats a Report into a human-readable or machine-readable string.
type Formatter interface {
	Format(rep Report) string
}
