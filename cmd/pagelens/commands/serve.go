package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pagelens/pagelens/internal/engine/capture"
	"github.com/pagelens/pagelens/internal/engine/config"
	"github.com/pagelens/pagelens/internal/engine/pipeline"
	"github.com/pagelens/pagelens/internal/platform/logger"
	"github.com/pagelens/pagelens/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the page analyzer over HTTP",
	Long: `Start an HTTP server exposing POST /api/analyze and GET /healthz.
Each request runs the same capture and analysis pipeline as the analyze
command and keeps its artifacts under the runs directory.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx, flagAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8787", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

// runServer wires the analysis orchestrator into the HTTP server.
func runServer(ctx context.Context, addr string) error {
	log := logger.FromContext(ctx)

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	runner := &analysisAdapter{analysis: &Analysis{
		Config:   cfg,
		Fetcher:  capture.NewFetcher(nil),
		Pipeline: pipeline.New(nil),
		Progress: noopProgress{},
		Stdout:   io.Discard,
	}}

	log.Info("server starting", "addr", addr)
	return server.New(runner, version, log).Run(ctx, addr)
}

// analysisAdapter exposes the Analysis orchestrator as a server.Runner.
type analysisAdapter struct {
	analysis *Analysis
}

func (r *analysisAdapter) Run(ctx context.Context, req server.AnalyzeRequest) (*server.AnalyzeResponse, error) {
	outcome, err := r.analysis.Run(ctx, AnalyzeOpts{
		URL:              req.URL,
		Vendor:           req.Vendor,
		Model:            req.Model,
		Verbosity:        req.Verbosity,
		Effort:           req.Effort,
		Genre:            req.Genre,
		ExtraInstruction: req.ExtraInstruction,
	})
	if outcome == nil {
		return nil, err
	}
	return &server.AnalyzeResponse{
		Result:     outcome.Report.Result,
		Artifacts:  outcome.Artifacts,
		RunDir:     outcome.Report.RunDir,
		DurationMs: outcome.Report.DurationMs,
	}, err
}
