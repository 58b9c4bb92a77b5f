package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pagelens/pagelens/internal/engine/schema"
)

// mockChatCompleter is a test double for ChatCompleter. It records the
// last params so tests can assert on the outgoing request.
type mockChatCompleter struct {
	resp *openai.ChatCompletion
	err  error

	calls     int
	gotParams openai.ChatCompletionNewParams
}

func (m *mockChatCompleter) New(_ context.Context, params openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.calls++
	m.gotParams = params
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

// makeCompletion creates a chat completion response with the given
// content and finish reason.
func makeCompletion(content, finishReason string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{
				FinishReason: finishReason,
				Message:      openai.ChatCompletionMessage{Content: content},
			},
		},
		Usage: openai.CompletionUsage{PromptTokens: 120, CompletionTokens: 48, TotalTokens: 168},
	}
}

func newTestOpenAIAgent(t *testing.T, mock *mockChatCompleter) *OpenAIAgent {
	t.Helper()
	agent, err := NewOpenAIAgent(Config{Vendor: VendorOpenAI, Model: "gpt-5", APIKey: "fake-key"}, mock)
	if err != nil {
		t.Fatalf("NewOpenAIAgent: %v", err)
	}
	return agent
}

func TestOpenAIAgent_Analyze_Success(t *testing.T) {
	mock := &mockChatCompleter{resp: makeCompletion(validAnalysisJSON, "stop")}
	agent := newTestOpenAIAgent(t, mock)

	result, debug, err := agent.Analyze(context.Background(), analysisRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected exactly 1 call, got %d", mock.calls)
	}
	if len(result.Issues) != 1 || result.Issues[0].Severity != schema.SeverityHigh {
		t.Errorf("unexpected issues: %+v", result.Issues)
	}
	if debug.RawText == "" || debug.Payload == nil {
		t.Error("expected raw text and parsed payload in debug bundle")
	}
	if debug.FinishReason != "stop" {
		t.Errorf("expected finish reason recorded, got %q", debug.FinishReason)
	}
}

func TestOpenAIAgent_EmptyContent(t *testing.T) {
	mock := &mockChatCompleter{resp: makeCompletion("", "stop")}
	agent := newTestOpenAIAgent(t, mock)

	_, debug, err := agent.Analyze(context.Background(), analysisRequest())
	if err == nil {
		t.Fatal("expected error for empty content")
	}
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %T", err)
	}
	if callErr.Kind != MissingPayload {
		t.Errorf("expected kind %q, got %q", MissingPayload, callErr.Kind)
	}
	if mock.calls != 1 {
		t.Errorf("missing payloads must not be retried, got %d calls", mock.calls)
	}
	if debug == nil || debug.Usage == nil {
		t.Error("expected usage telemetry in debug bundle")
	}
}

func TestOpenAIAgent_LengthFinishReason(t *testing.T) {
	mock := &mockChatCompleter{resp: makeCompletion("", "length")}
	agent := newTestOpenAIAgent(t, mock)

	_, _, err := agent.Analyze(context.Background(), analysisRequest())
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %v", err)
	}
	if !strings.Contains(callErr.Message, "token limit") {
		t.Errorf("message should explain the token limit, got %q", callErr.Message)
	}
}

func TestOpenAIAgent_Refusal(t *testing.T) {
	resp := makeCompletion("", "stop")
	resp.Choices[0].Message.Refusal = "I cannot analyze this page."
	mock := &mockChatCompleter{resp: resp}
	agent := newTestOpenAIAgent(t, mock)

	_, _, err := agent.Analyze(context.Background(), analysisRequest())
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %v", err)
	}
	if callErr.Kind != MissingPayload {
		t.Errorf("expected kind %q, got %q", MissingPayload, callErr.Kind)
	}
	if !strings.Contains(callErr.Message, "refused") {
		t.Errorf("message should mention the refusal, got %q", callErr.Message)
	}
}

func TestOpenAIAgent_NoChoices(t *testing.T) {
	mock := &mockChatCompleter{resp: &openai.ChatCompletion{}}
	agent := newTestOpenAIAgent(t, mock)

	_, _, err := agent.Analyze(context.Background(), analysisRequest())
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %v", err)
	}
	if callErr.Kind != MissingPayload {
		t.Errorf("expected kind %q, got %q", MissingPayload, callErr.Kind)
	}
}

func TestOpenAIAgent_CallFailure_NotRetried(t *testing.T) {
	mock := &mockChatCompleter{err: errors.New("connection reset")}
	agent := newTestOpenAIAgent(t, mock)

	_, _, err := agent.Analyze(context.Background(), analysisRequest())
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %v", err)
	}
	if callErr.Kind != CallFailed {
		t.Errorf("expected kind %q, got %q", CallFailed, callErr.Kind)
	}
	if mock.calls != 1 {
		t.Errorf("call failures must not be retried, got %d calls", mock.calls)
	}
}

func TestOpenAIAgent_SchemaViolation(t *testing.T) {
	mock := &mockChatCompleter{resp: makeCompletion(
		`{"issues":[{"title":"x","detail":"y","severity":"catastrophic"}],"improvements":[]}`, "stop",
	)}
	agent := newTestOpenAIAgent(t, mock)

	_, _, err := agent.Analyze(context.Background(), analysisRequest())
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %v", err)
	}
	if callErr.Kind != ValidationFailed {
		t.Errorf("expected kind %q, got %q", ValidationFailed, callErr.Kind)
	}
	var violation *schema.ValidationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected wrapped *schema.ValidationError, got %v", err)
	}
	if violation.Path != "issues[0].severity" {
		t.Errorf("expected path issues[0].severity, got %q", violation.Path)
	}
}

func TestOpenAIAgent_MalformedJSON(t *testing.T) {
	mock := &mockChatCompleter{resp: makeCompletion("certainly, here is my analysis", "stop")}
	agent := newTestOpenAIAgent(t, mock)

	_, _, err := agent.Analyze(context.Background(), analysisRequest())
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %v", err)
	}
	if callErr.Kind != MissingPayload {
		t.Errorf("expected kind %q, got %q", MissingPayload, callErr.Kind)
	}
	if callErr.RawText == "" {
		t.Error("expected raw text preserved")
	}
}

func TestOpenAIAgent_StrictResponseFormat(t *testing.T) {
	mock := &mockChatCompleter{resp: makeCompletion(validAnalysisJSON, "stop")}
	agent := newTestOpenAIAgent(t, mock)

	if _, _, err := agent.Analyze(context.Background(), analysisRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rf := mock.gotParams.ResponseFormat.OfJSONSchema
	if rf == nil {
		t.Fatal("expected a JSON schema response format")
	}
	if rf.JSONSchema.Name != "analysis_result" {
		t.Errorf("expected schema name analysis_result, got %q", rf.JSONSchema.Name)
	}
	if !rf.JSONSchema.Strict.Value {
		t.Error("expected strict mode enabled")
	}
	if rf.JSONSchema.Schema == nil {
		t.Error("expected a schema attached")
	}
}

func TestOpenAIAgent_NativeControls(t *testing.T) {
	mock := &mockChatCompleter{resp: makeCompletion(validAnalysisJSON, "stop")}
	agent, err := NewOpenAIAgent(Config{Model: "gpt-5-mini", APIKey: "key", Verbosity: VerbosityLow, Effort: EffortMinimal}, mock)
	if err != nil {
		t.Fatalf("NewOpenAIAgent: %v", err)
	}

	if _, _, err := agent.Analyze(context.Background(), analysisRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(mock.gotParams.ReasoningEffort); got != "minimal" {
		t.Errorf("expected reasoning effort minimal, got %q", got)
	}
	if got := string(mock.gotParams.Verbosity); got != "low" {
		t.Errorf("expected verbosity low, got %q", got)
	}
}

func TestOpenAIAgent_NoNativeControlsForOlderModels(t *testing.T) {
	mock := &mockChatCompleter{resp: makeCompletion(validAnalysisJSON, "stop")}
	agent, err := NewOpenAIAgent(Config{Model: "gpt-4o", APIKey: "key", Verbosity: VerbosityLow, Effort: EffortHigh}, mock)
	if err != nil {
		t.Fatalf("NewOpenAIAgent: %v", err)
	}

	if _, _, err := agent.Analyze(context.Background(), analysisRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.gotParams.ReasoningEffort != "" {
		t.Errorf("expected no reasoning effort param, got %q", mock.gotParams.ReasoningEffort)
	}
	if mock.gotParams.Verbosity != "" {
		t.Errorf("expected no verbosity param, got %q", mock.gotParams.Verbosity)
	}
}

func TestOpenAIAgent_AttachesScreenshot(t *testing.T) {
	mock := &mockChatCompleter{resp: makeCompletion(validAnalysisJSON, "stop")}
	agent := newTestOpenAIAgent(t, mock)

	req := analysisRequest()
	req.Image = []byte{0x89, 0x50, 0x4e, 0x47}
	if _, _, err := agent.Analyze(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	messages := mock.gotParams.Messages
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(messages))
	}
	if messages[0].OfSystem == nil {
		t.Fatal("expected first message to be the system message")
	}
	user := messages[1].OfUser
	if user == nil {
		t.Fatal("expected second message to be the user message")
	}
	parts := user.Content.OfArrayOfContentParts
	if len(parts) != 2 {
		t.Fatalf("expected image and text parts, got %d", len(parts))
	}
	image := parts[0].OfImageURL
	if image == nil {
		t.Fatal("expected the image part before the text part")
	}
	if !strings.HasPrefix(image.ImageURL.URL, "data:image/png;base64,") {
		t.Errorf("expected a PNG data URL, got %q", image.ImageURL.URL)
	}
	if parts[1].OfText == nil {
		t.Error("expected a trailing text part")
	}
}

func TestOpenAIAgent_TextOnlyRequest(t *testing.T) {
	mock := &mockChatCompleter{resp: makeCompletion(validAnalysisJSON, "stop")}
	agent := newTestOpenAIAgent(t, mock)

	if _, _, err := agent.Analyze(context.Background(), analysisRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user := mock.gotParams.Messages[1].OfUser
	parts := user.Content.OfArrayOfContentParts
	if len(parts) != 1 || parts[0].OfText == nil {
		t.Fatalf("expected a single text part, got %+v", parts)
	}
}

func TestNewOpenAIAgent_Defaults(t *testing.T) {
	agent, err := NewOpenAIAgent(Config{APIKey: "key"}, nil)
	if err != nil {
		t.Fatalf("NewOpenAIAgent: %v", err)
	}
	if agent.model != "gpt-5-mini" {
		t.Errorf("expected default model gpt-5-mini, got %q", agent.model)
	}
	if !agent.caps.NativeControls {
		t.Error("expected native controls for the default model")
	}
	if agent.verbosity != VerbosityMedium || agent.effort != EffortMedium {
		t.Errorf("expected medium defaults, got %q/%q", agent.verbosity, agent.effort)
	}
}

func TestNewOpenAIAgent_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIAgent(Config{}, nil); err == nil {
		t.Error("expected error for missing api key")
	}
	// An injected chat service needs no credentials.
	if _, err := NewOpenAIAgent(Config{}, &mockChatCompleter{}); err != nil {
		t.Errorf("unexpected error with injected service: %v", err)
	}
}
