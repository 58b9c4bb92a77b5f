package commands

import (
	"context"
	"os"

	"github.com/pagelens/pagelens/internal/engine/capture"
	"github.com/pagelens/pagelens/internal/engine/config"
	"github.com/pagelens/pagelens/internal/engine/pipeline"
	"github.com/pagelens/pagelens/internal/platform/logger"
)

// runAnalysis wires real infrastructure and delegates to Analysis.Execute.
// This is the composition root; everything below it takes injected deps.
func runAnalysis(ctx context.Context, opts AnalyzeOpts) error {
	log := logger.FromContext(ctx)

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if flagRunsDir != "" {
		cfg.RunsDir = flagRunsDir
	}
	if cfg.OutputVerbose && !flagVerbose {
		ctx = logger.WithContext(ctx, logger.New(true, flagJSON))
		log = logger.FromContext(ctx)
	}
	if !cfg.OutputColor {
		opts.NoColor = true
	}

	var progress Progress = noopProgress{}
	if !opts.JSON {
		progress = newSpinnerProgress()
	}

	analysis := &Analysis{
		Config:   cfg,
		Fetcher:  capture.NewFetcher(nil),
		Pipeline: pipeline.New(nil),
		Progress: progress,
		Stdout:   os.Stdout,
	}

	err = analysis.Execute(ctx, opts)
	if err != nil {
		log.Error("analysis failed", "error", err)
	}
	return err
}
