package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pagelens/pagelens/internal/engine/config"
	"github.com/pagelens/pagelens/internal/engine/llm"
	"github.com/pagelens/pagelens/internal/engine/pipeline"
	"github.com/pagelens/pagelens/internal/engine/prompt"
	"github.com/pagelens/pagelens/internal/engine/report"
	"github.com/pagelens/pagelens/internal/engine/runlog"
	"github.com/pagelens/pagelens/internal/platform/logger"
)

// AnalyzeOpts holds per-invocation options for one analysis run. String
// fields left empty fall back to the loaded configuration.
type AnalyzeOpts struct {
	URL              string
	Vendor           string
	Model            string
	Verbosity        string
	Effort           string
	Genre            string
	ExtraInstruction string
	SystemPrompt     string
	JSON             bool
	NoColor          bool
	Markdown         bool
	Sarif            bool
}

// RunOutcome bundles what one analysis run produced. Report.RunDir is
// set as soon as the run directory exists, so a failed run can still be
// located on disk.
type RunOutcome struct {
	Report    report.Report
	Artifacts *pipeline.Artifacts
}

// Analysis orchestrates the full pagelens run with injected dependencies.
// This struct enables testing the orchestration logic without real infrastructure.
type Analysis struct {
	// Config holds loaded user configuration; per-run options override it.
	Config *config.Config

	// Fetcher captures the page snapshot into the run directory.
	Fetcher PageFetcher

	// Pipeline performs the structured vendor call.
	Pipeline AnalysisRunner

	// Progress reports step activity while capturing and analyzing.
	Progress Progress

	// Stdout is the output writer for formatted results.
	Stdout io.Writer
}

// Execute runs the full analysis and renders the outcome to Stdout.
func (a *Analysis) Execute(ctx context.Context, opts AnalyzeOpts) error {
	outcome, err := a.Run(ctx, opts)
	if err != nil {
		return err
	}

	var fmtr report.Formatter
	if opts.JSON {
		fmtr = report.NewJSONFormatter()
	} else {
		fmtr = report.NewCLIFormatter(!opts.NoColor)
	}
	fmt.Fprint(a.Stdout, fmtr.Format(outcome.Report))
	return nil
}

// Run performs the capture and analysis steps, journals them and writes
// the export files into the run directory. Shared by the analyze command
// and the HTTP server.
func (a *Analysis) Run(ctx context.Context, opts AnalyzeOpts) (*RunOutcome, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	// 1. Resolve the effective run settings.
	cfg, err := a.resolve(opts)
	if err != nil {
		return nil, err
	}
	log.Info("analysis started", "url", opts.URL, "vendor", cfg.Vendor, "model", cfg.Model)

	// 2. Create the run directory and its journal.
	runDir, err := runlog.NewRunDir(cfg.RunsDir, opts.URL)
	if err != nil {
		return nil, fmt.Errorf("creating run dir: %w", err)
	}
	outcome := &RunOutcome{Report: report.Report{
		URL:    opts.URL,
		Vendor: string(cfg.Vendor),
		Model:  cfg.Model,
		Genre:  string(cfg.Genre),
		RunDir: runDir,
	}}
	defer func() {
		outcome.Report.DurationMs = time.Since(start).Milliseconds()
	}()

	journal, err := runlog.New(runDir, opts.URL)
	if err != nil {
		return outcome, fmt.Errorf("opening run journal: %w", err)
	}
	// Journal writes are diagnostics; a failed write never aborts the run.
	step := func(name, status, message string, detail any) {
		if jErr := journal.AddStep(name, status, message, detail); jErr != nil {
			log.Warn("writing run journal failed", "step", name, "error", jErr)
		}
	}
	if err := journal.SetContext(map[string]any{
		"model_vendor":      string(cfg.Vendor),
		"model_name":        cfg.Model,
		"genre":             string(cfg.Genre),
		"verbosity":         string(cfg.Verbosity),
		"effort":            string(cfg.Effort),
		"extra_instruction": opts.ExtraInstruction,
	}); err != nil {
		log.Warn("writing run journal failed", "error", err)
	}

	// 3. Capture the page snapshot.
	step("fetch_page", runlog.StatusStarted, "", nil)
	a.Progress.Start(fmt.Sprintf("Capturing %s...", opts.URL))
	art, err := a.Fetcher.Fetch(ctx, opts.URL, runDir)
	a.Progress.Stop()
	if err != nil {
		step("fetch_page", runlog.StatusError, err.Error(), nil)
		return outcome, fmt.Errorf("capturing page: %w", err)
	}
	step("fetch_page", runlog.StatusSuccess, "", map[string]any{
		"html_chars": len(art.HTML),
		"css_files":  len(art.CSSPaths),
		"screenshot": art.Screenshots.Primary(),
	})

	// 4. Load the screenshot for the vendor call.
	var shot []byte
	if path := art.Screenshots.Primary(); path != "" {
		shot, err = os.ReadFile(path) // #nosec G304 -- path was produced by the capture step
		if err != nil {
			log.Warn("reading screenshot failed, continuing without image", "path", path, "error", err)
			shot = nil
		}
	}

	// 5. Run the structured analysis pipeline.
	step("llm_pipeline", runlog.StatusStarted, "", nil)
	a.Progress.Start(fmt.Sprintf("Analyzing with %s/%s...", cfg.Vendor, cfg.Model))
	result, artifacts, err := a.Pipeline.Run(ctx, pipeline.Input{
		Vendor:           cfg.Vendor,
		Model:            cfg.Model,
		APIKey:           string(cfg.APIKeyFor(cfg.Vendor)),
		Verbosity:        cfg.Verbosity,
		Effort:           cfg.Effort,
		Timeout:          cfg.Timeout,
		HTML:             art.HTML,
		CSSBundle:        art.CSSBundle,
		Screenshot:       shot,
		ExtraInstruction: opts.ExtraInstruction,
		Genre:            cfg.Genre,
		SystemPrompt:     opts.SystemPrompt,
	})
	a.Progress.Stop()
	outcome.Artifacts = artifacts
	writePrompts(runDir, artifacts, log)
	if err != nil {
		step("llm_pipeline", runlog.StatusError, err.Error(), failureDetail(err, artifacts))
		return outcome, err
	}
	step("llm_pipeline", runlog.StatusSuccess, "", map[string]any{"debug": artifacts.AnalysisDebug})

	// 6. Assemble the report and write the export files.
	outcome.Report.Result = result
	outcome.Report.DurationMs = time.Since(start).Milliseconds()
	if err := writeExports(runDir, outcome.Report, opts); err != nil {
		step("display_results", runlog.StatusError, err.Error(), nil)
		return outcome, err
	}
	step("display_results", runlog.StatusSuccess, "", map[string]any{
		"issues_count":       len(result.Issues),
		"improvements_count": len(result.Improvements),
	})

	log.Info("analysis finished",
		"run_dir", runDir,
		"issues", len(result.Issues),
		"improvements", len(result.Improvements),
		"duration_ms", outcome.Report.DurationMs,
	)
	return outcome, nil
}

// resolve merges per-invocation options over the loaded configuration
// and fills vendor defaults, so the report names the model that actually
// served the call.
func (a *Analysis) resolve(opts AnalyzeOpts) (config.Config, error) {
	var cfg config.Config
	if a.Config != nil {
		cfg = *a.Config
	}
	if cfg.Vendor == "" {
		cfg.Vendor = llm.VendorGemini
	}
	if opts.Vendor != "" && llm.Vendor(opts.Vendor) != cfg.Vendor {
		// A vendor switch invalidates the configured model name.
		cfg.Model = ""
	}
	if opts.Vendor != "" {
		cfg.Vendor = llm.Vendor(opts.Vendor)
	}
	if opts.Model != "" {
		cfg.Model = opts.Model
	}
	if opts.Verbosity != "" {
		cfg.Verbosity = llm.Verbosity(opts.Verbosity)
	}
	if opts.Effort != "" {
		cfg.Effort = llm.Effort(opts.Effort)
	}
	if opts.Genre != "" {
		cfg.Genre = prompt.Genre(opts.Genre)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Model == "" {
		cfg.Model = llm.DefaultModel(cfg.Vendor)
	}
	if cfg.APIKeyFor(cfg.Vendor).IsEmpty() {
		names := config.KeyEnvNames(cfg.Vendor)
		return cfg, fmt.Errorf("no %s api key configured (set %s or add it to the config file)",
			cfg.Vendor, strings.Join(names, " or "))
	}
	return cfg, nil
}

// writePrompts saves the exact prompt text alongside the other run
// artifacts. Best effort: a failed write never aborts the run.
func writePrompts(runDir string, artifacts *pipeline.Artifacts, log *slog.Logger) {
	if artifacts == nil {
		return
	}
	prompts := map[string]string{
		"prompt_system.txt":   artifacts.SystemPrompt,
		"prompt_analysis.txt": artifacts.AnalysisPrompt,
	}
	for name, text := range prompts {
		if text == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(runDir, name), []byte(text), 0o644); err != nil { // #nosec G306 -- prompt text, not sensitive
			log.Warn("saving prompt artifact failed", "file", name, "error", err)
		}
	}
}

// writeExports renders the report files for this run. The JSON report is
// always written; markdown and SARIF are opt-in.
func writeExports(runDir string, rep report.Report, opts AnalyzeOpts) error {
	data := report.NewJSONFormatter().Format(rep)
	if err := os.WriteFile(filepath.Join(runDir, "report.json"), []byte(data), 0o644); err != nil { // #nosec G306 -- report file, not sensitive
		return fmt.Errorf("writing report.json: %w", err)
	}
	if opts.Markdown {
		md := report.NewMarkdownFormatter().Format(rep)
		if err := os.WriteFile(filepath.Join(runDir, "report.md"), []byte(md), 0o644); err != nil { // #nosec G306 -- report file, not sensitive
			return fmt.Errorf("writing report.md: %w", err)
		}
	}
	if opts.Sarif {
		var buf bytes.Buffer
		if err := report.WriteSarif(&buf, rep); err != nil {
			return fmt.Errorf("rendering sarif report: %w", err)
		}
		if err := os.WriteFile(filepath.Join(runDir, "report.sarif"), buf.Bytes(), 0o644); err != nil { // #nosec G306 -- report file, not sensitive
			return fmt.Errorf("writing report.sarif: %w", err)
		}
	}
	return nil
}

// failureDetail assembles the journal payload for a failed vendor call.
func failureDetail(err error, artifacts *pipeline.Artifacts) map[string]any {
	detail := map[string]any{}
	var callErr *llm.CallError
	if errors.As(err, &callErr) {
		detail["kind"] = string(callErr.Kind)
		if callErr.RawText != "" {
			detail["raw_text"] = callErr.RawText
		}
		if callErr.Debug != nil {
			detail["debug"] = callErr.Debug
		}
	} else if artifacts != nil && artifacts.AnalysisDebug != nil {
		detail["debug"] = artifacts.AnalysisDebug
	}
	if len(detail) == 0 {
		return nil
	}
	return detail
}
