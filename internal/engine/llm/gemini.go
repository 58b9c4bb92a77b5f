package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pagelens/pagelens/internal/engine/schema"
	"github.com/pagelens/pagelens/internal/platform/logger"
	"google.golang.org/genai"
)

// GenerativeClient abstracts the Gemini generative AI client for testability.
type GenerativeClient interface {
	// GenerateContent sends the contents and returns a response.
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory creates a GenerativeClient. Production code uses DefaultClientFactory;
// tests inject a factory that returns a mock.
type ClientFactory func(ctx context.Context, apiKey string) (GenerativeClient, error)

// genaiClient wraps the real genai.Client to satisfy GenerativeClient.
type genaiClient struct {
	inner *genai.Client
}

func (g *genaiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.inner.Models.GenerateContent(ctx, model, contents, config)
}

// DefaultClientFactory creates a real Gemini API client.
func DefaultClientFactory(ctx context.Context, apiKey string) (GenerativeClient, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &genaiClient{inner: c}, nil
}

// geminiTemperature keeps findings stable across runs of the same page.
const geminiTemperature = 0.2

// verbosityHints are appended to the system instruction. Gemini has no
// native verbosity parameter, so the level rides as a prompt hint.
var verbosityHints = map[Verbosity]string{
	VerbosityLow:    "Response detail: keep it terse and cover only the essential points.",
	VerbosityMedium: "Response detail: moderately detailed, with brief supporting rationale.",
	VerbosityHigh:   "Response detail: thorough and specific, with rationale for every finding.",
}

// effortHints carry the reasoning policy the same way. There is no entry
// for EffortLow: its hint wording is an open product question, so
// NewGeminiAgent rejects the value instead of inventing one.
var effortHints = map[Effort]string{
	EffortMinimal: "Reasoning policy: decide quickly and avoid prolonged deliberation.",
	EffortMedium:  "Reasoning policy: reason at a standard depth without overthinking.",
	EffortHigh:    "Reasoning policy: reason carefully step by step before answering.",
}

// GeminiAgent implements Agent using the Google Gemini API with
// schema-enforced JSON generation.
type GeminiAgent struct {
	apiKey    string
	model     string
	verbosity Verbosity
	effort    Effort
	timeout   time.Duration
	factory   ClientFactory
}

var _ Agent = (*GeminiAgent)(nil)

// NewGeminiAgent validates the generation controls and binds credentials.
// A nil factory selects the real API client.
func NewGeminiAgent(cfg Config, factory ClientFactory) (*GeminiAgent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	verbosity := cfg.Verbosity
	if verbosity == "" {
		verbosity = VerbosityMedium
	}
	effort := cfg.Effort
	if effort == "" {
		effort = EffortMedium
	}
	if _, ok := verbosityHints[verbosity]; !ok {
		return nil, fmt.Errorf("gemini: unsupported verbosity %q (supported: low, medium, high)", verbosity)
	}
	if _, ok := effortHints[effort]; !ok {
		return nil, fmt.Errorf("gemini: no reasoning hint for effort %q (supported: minimal, medium, high)", effort)
	}
	if factory == nil {
		factory = DefaultClientFactory
	}
	return &GeminiAgent{
		apiKey:    cfg.APIKey,
		model:     model,
		verbosity: verbosity,
		effort:    effort,
		timeout:   cfg.Timeout,
		factory:   factory,
	}, nil
}

// Analyze runs the primary page analysis.
func (a *GeminiAgent) Analyze(ctx context.Context, req Request) (*schema.AnalysisResult, *Debug, error) {
	payload, debug, err := a.GenerateStructured(ctx, req, schema.AnalysisTarget)
	if err != nil {
		return nil, debug, err
	}
	return payload.(*schema.AnalysisResult), debug, nil
}

// GenerateStructured makes exactly one generation call with the target
// schema attached and decodes the result. Failures are never retried;
// each escalates as a *CallError classified by stage.
func (a *GeminiAgent) GenerateStructured(ctx context.Context, req Request, target schema.Target) (schema.Payload, *Debug, error) {
	if err := req.validate(); err != nil {
		return nil, nil, err
	}
	log := logger.FromContext(ctx)
	start := time.Now()

	client, err := a.factory(ctx, a.apiKey)
	if err != nil {
		return nil, nil, &CallError{
			Kind:    CallFailed,
			Message: fmt.Sprintf("creating gemini client: %v", err),
			cause:   err,
		}
	}

	responseSchema, err := genaiSchema(target.GenerationSchema())
	if err != nil {
		return nil, nil, fmt.Errorf("deriving %s response schema: %w", target.Name, err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{
			{Text: req.System},
			{Text: verbosityHints[a.verbosity]},
			{Text: effortHints[a.effort]},
		}},
		Temperature:      genai.Ptr(float32(geminiTemperature)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}

	parts := []*genai.Part{{Text: req.User}}
	if len(req.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Image, "image/png"))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	log.Debug("issuing generation call", "vendor", VendorGemini, "model", a.model, "target", target.Name)
	resp, err := client.GenerateContent(callCtx, a.model, contents, config)
	if err != nil {
		return nil, nil, &CallError{
			Kind:    CallFailed,
			Message: fmt.Sprintf("generate content: %v", err),
			cause:   err,
		}
	}

	raw, candidates, finishReason := extractText(resp)
	debug := &Debug{
		RawText:      raw,
		Candidates:   candidates,
		FinishReason: finishReason,
	}
	if resp.UsageMetadata != nil {
		debug.Usage = resp.UsageMetadata
	}

	var parsed any
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			log.Warn("response text is not valid JSON", "model", a.model, "error", err)
			parsed = nil
		}
	}
	debug.Payload = parsed

	if parsed == nil {
		return nil, debug, &CallError{
			Kind:    MissingPayload,
			Message: missingPayloadMessage(finishReason),
			RawText: raw,
			Debug:   debug,
		}
	}

	payload, err := target.Decode([]byte(raw))
	if err != nil {
		return nil, debug, &CallError{
			Kind:    ValidationFailed,
			Message: fmt.Sprintf("response violates the %s schema: %v", target.Name, err),
			RawText: raw,
			Payload: parsed,
			Debug:   debug,
			cause:   err,
		}
	}

	log.Info("generation call complete",
		"vendor", VendorGemini,
		"model", a.model,
		"target", target.Name,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return payload, debug, nil
}

// extractText pulls text from a Gemini response in a fixed priority
// order: the first candidate whose parts join to non-empty text wins,
// and the SDK's top-level text accessor is the last resort. Thought
// parts never contribute.
func extractText(resp *genai.GenerateContentResponse) (raw string, candidates []string, finishReason string) {
	if resp == nil {
		return "", nil, ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		if finishReason == "" && cand.FinishReason != "" {
			finishReason = string(cand.FinishReason)
		}
		var b strings.Builder
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if part == nil || part.Thought {
					continue
				}
				b.WriteString(part.Text)
			}
		}
		text := b.String()
		candidates = append(candidates, text)
		if raw == "" && strings.TrimSpace(text) != "" {
			raw = text
		}
	}
	if raw == "" && len(resp.Candidates) > 0 {
		raw = resp.Text()
	}
	return raw, candidates, finishReason
}

// missingPayloadMessage annotates the failure with the finish reason so
// truncation and safety blocks are distinguishable at a glance.
func missingPayloadMessage(finishReason string) string {
	msg := "no structured payload in response"
	if finishReason != "" {
		msg += fmt.Sprintf(" (finish reason: %s)", finishReason)
	}
	switch finishReason {
	case string(genai.FinishReasonMaxTokens):
		msg += "; output hit the model's token limit, raise the output budget or trim the prompt"
	case string(genai.FinishReasonSafety):
		msg += "; generation was blocked by safety filtering"
	}
	return msg
}
