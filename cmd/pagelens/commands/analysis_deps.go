package commands

import (
	"context"

	"github.com/pagelens/pagelens/internal/engine/capture"
	"github.com/pagelens/pagelens/internal/engine/pipeline"
	"github.com/pagelens/pagelens/internal/engine/schema"
)

// PageFetcher abstracts capturing a page snapshot into the run directory.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL, runDir string) (*capture.Artifact, error)
}

// AnalysisRunner abstracts the structured vendor call.
type AnalysisRunner interface {
	Run(ctx context.Context, in pipeline.Input) (*schema.AnalysisResult, *pipeline.Artifacts, error)
}

// Progress reports long-running step activity on the terminal.
type Progress interface {
	Start(message string)
	Stop()
}
