package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/pagelens/pagelens/internal/engine/schema"
	"github.com/pagelens/pagelens/internal/platform/logger"
)

// ChatCompleter abstracts the OpenAI chat completion service for
// testability. The real client satisfies it through openaiChat.
type ChatCompleter interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// openaiChat wraps the real openai.Client to satisfy ChatCompleter.
type openaiChat struct {
	client openai.Client
}

func (o *openaiChat) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	return o.client.Chat.Completions.New(ctx, params, opts...)
}

// OpenAIAgent implements Agent using the OpenAI chat completions API
// with native structured output.
type OpenAIAgent struct {
	model     string
	verbosity Verbosity
	effort    Effort
	caps      Capabilities
	timeout   time.Duration
	chat      ChatCompleter
}

var _ Agent = (*OpenAIAgent)(nil)

// NewOpenAIAgent validates the generation controls and binds credentials.
// A nil chat service selects the real API client.
func NewOpenAIAgent(cfg Config, chat ChatCompleter) (*OpenAIAgent, error) {
	if cfg.APIKey == "" && chat == nil {
		return nil, fmt.Errorf("openai: api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	verbosity := cfg.Verbosity
	if verbosity == "" {
		verbosity = VerbosityMedium
	}
	effort := cfg.Effort
	if effort == "" {
		effort = EffortMedium
	}
	if !verbosity.Valid() {
		return nil, fmt.Errorf("openai: unsupported verbosity %q (supported: low, medium, high)", verbosity)
	}
	if !effort.Valid() {
		return nil, fmt.Errorf("openai: unsupported effort %q (supported: minimal, low, medium, high)", effort)
	}
	if chat == nil {
		chat = &openaiChat{client: openai.NewClient(option.WithAPIKey(cfg.APIKey))}
	}
	return &OpenAIAgent{
		model:     model,
		verbosity: verbosity,
		effort:    effort,
		caps:      capabilitiesFor(model),
		timeout:   cfg.Timeout,
		chat:      chat,
	}, nil
}

// Analyze runs the primary page analysis.
func (a *OpenAIAgent) Analyze(ctx context.Context, req Request) (*schema.AnalysisResult, *Debug, error) {
	payload, debug, err := a.GenerateStructured(ctx, req, schema.AnalysisTarget)
	if err != nil {
		return nil, debug, err
	}
	return payload.(*schema.AnalysisResult), debug, nil
}

// GenerateStructured makes exactly one chat completion call with strict
// structured output and decodes the result. Failures are never retried;
// each escalates as a *CallError classified by stage.
func (a *OpenAIAgent) GenerateStructured(ctx context.Context, req Request, target schema.Target) (schema.Payload, *Debug, error) {
	if err := req.validate(); err != nil {
		return nil, nil, err
	}
	log := logger.FromContext(ctx)
	start := time.Now()

	var parts []openai.ChatCompletionContentPartUnionParam
	if len(req.Image) > 0 {
		dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(req.Image)
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}))
	}
	parts = append(parts, openai.TextContentPart(req.User))

	params := openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(parts),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   target.Name,
					Schema: target.JSONSchema(),
					Strict: openai.Bool(true),
				},
			},
		},
	}
	if a.caps.NativeControls {
		params.ReasoningEffort = shared.ReasoningEffort(a.effort)
		params.Verbosity = openai.ChatCompletionNewParamsVerbosity(a.verbosity)
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	log.Debug("issuing generation call", "vendor", VendorOpenAI, "model", a.model, "target", target.Name)
	resp, err := a.chat.New(callCtx, params)
	if err != nil {
		return nil, nil, &CallError{
			Kind:    CallFailed,
			Message: fmt.Sprintf("chat completion: %v", err),
			cause:   err,
		}
	}

	debug := &Debug{
		Usage:    resp.Usage,
		Response: resp,
	}
	if len(resp.Choices) == 0 {
		return nil, debug, &CallError{
			Kind:    MissingPayload,
			Message: "response carried no choices",
			Debug:   debug,
		}
	}

	choice := resp.Choices[0]
	raw := choice.Message.Content
	debug.RawText = raw
	debug.FinishReason = string(choice.FinishReason)

	if choice.Message.Refusal != "" {
		return nil, debug, &CallError{
			Kind:    MissingPayload,
			Message: fmt.Sprintf("model refused the request: %s", choice.Message.Refusal),
			RawText: raw,
			Debug:   debug,
		}
	}
	if strings.TrimSpace(raw) == "" {
		return nil, debug, &CallError{
			Kind:    MissingPayload,
			Message: emptyContentMessage(debug.FinishReason),
			Debug:   debug,
		}
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Warn("response text is not valid JSON", "model", a.model, "error", err)
		return nil, debug, &CallError{
			Kind:    MissingPayload,
			Message: fmt.Sprintf("response text is not valid JSON: %v", err),
			RawText: raw,
			Debug:   debug,
			cause:   err,
		}
	}
	debug.Payload = parsed

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
		"vendor", VendorOpenAI,
		"model", a.model,
		"target", target.Name,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return payload, debug, nil
}

func emptyContentMessage(finishReason string) string {
	msg := "no structured payload in response"
	if finishReason != "" {
		msg += fmt.Sprintf(" (finish reason: %s)", finishReason)
	}
	switch finishReason {
	case "length":
		msg += "; output hit the model's token limit, raise the output budget or trim the prompt"
	case "content_filter":
		msg += "; generation was blocked by content filtering"
	}
	return msg
}
