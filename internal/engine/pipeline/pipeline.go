// Package pipeline orchestrates one structured analysis run: prompt
// construction, a single vendor call and the artifact bundle.
package pipeline

import (
	"context"
	"time"

	"github.com/pagelens/pagelens/internal/engine/llm"
	"github.com/pagelens/pagelens/internal/engine/prompt"
	"github.com/pagelens/pagelens/internal/engine/schema"
	"github.com/pagelens/pagelens/internal/platform/jsonutil"
	"github.com/pagelens/pagelens/internal/platform/logger"
)

// Input carries everything one analysis run needs. Credentials arrive
// here explicitly; the pipeline never reads the environment.
type Input struct {
	Vendor    llm.Vendor
	Model     string
	APIKey    string
	Verbosity llm.Verbosity
	Effort    llm.Effort
	Timeout   time.Duration

	HTML             string
	CSSBundle        string
	Screenshot       []byte
	ExtraInstruction string
	Genre            prompt.Genre

	// SystemPrompt overrides the built-in system prompt when non-empty.
	SystemPrompt string
}

// Artifacts is the JSON-safe debug bundle for one run: the exact
// prompts sent, the raw result and the vendor diagnostics.
type Artifacts struct {
	SystemPrompt   string `json:"system_prompt"`
	AnalysisPrompt string `json:"analysis_prompt"`
	AnalysisRaw    any    `json:"analysis_raw,omitempty"`
	AnalysisDebug  any    `json:"analysis_debug,omitempty"`
}

// Pipeline runs structured analysis calls through an injected agent
// factory.
type Pipeline struct {
	factory llm.AgentFactory
}

// New creates a Pipeline. A nil factory selects the real vendor
// adapters.
func New(factory llm.AgentFactory) *Pipeline {
	if factory == nil {
		factory = llm.New
	}
	return &Pipeline{factory: factory}
}

// Run performs exactly one analysis call and returns the validated
// result with its artifact bundle. Artifacts are returned alongside any
// error so run logs can persist the prompts and vendor diagnostics of a
// failed call; the error itself is the adapter's and is never rewrapped
// into a new classification.
func (p *Pipeline) Run(ctx context.Context, in Input) (*schema.AnalysisResult, *Artifacts, error) {
	log := logger.FromContext(ctx)

	system := in.SystemPrompt
	if system == "" {
		system = prompt.System(in.Genre)
	}
	extra := prompt.ExtraInstruction(in.ExtraInstruction, in.Genre)
	analysisPrompt := prompt.Analysis(in.HTML, in.CSSBundle, extra)

	artifacts := &Artifacts{
		SystemPrompt:   system,
		AnalysisPrompt: analysisPrompt,
	}

	agent, err := p.factory(llm.Config{
		Vendor:    in.Vendor,
		Model:     in.Model,
		APIKey:    in.APIKey,
		Verbosity: in.Verbosity,
		Effort:    in.Effort,
		Timeout:   in.Timeout,
	})
	if err != nil {
		return nil, artifacts, err
	}

	log.Info("starting analysis", "vendor", in.Vendor, "model", in.Model, "genre", in.Genre)
	result, debug, err := agent.Analyze(ctx, llm.Request{
		System: system,
		User:   analysisPrompt,
		Image:  in.Screenshot,
	})
	if debug != nil {
		artifacts.AnalysisDebug = jsonutil.Safe(debug)
	}
	if err != nil {
		return nil, artifacts, err
	}

	artifacts.AnalysisRaw = jsonutil.Safe(result)
	log.Info("analysis complete",
		"issues", len(result.Issues),
		"improvements", len(result.Improvements),
	)
	return result, artifacts, nil
}
