// Package llm adapts LLM vendor SDKs behind one structured-generation
// interface. Two adapters exist: Gemini enforces the result schema at
// generation time, OpenAI through its native structured-output response
// format. Everything above this package is vendor-neutral.
package llm

import (
	"errors"
	"strings"
	"time"
)

// Vendor names an adapter. Exactly two values are recognized.
type Vendor string

const (
	VendorGemini Vendor = "gemini"
	VendorOpenAI Vendor = "openai"
)

// Valid reports whether v names a known adapter.
func (v Vendor) Valid() bool {
	return v == VendorGemini || v == VendorOpenAI
}

// Verbosity controls how expansive generated prose should be.
type Verbosity string

const (
	VerbosityLow    Verbosity = "low"
	VerbosityMedium Verbosity = "medium"
	VerbosityHigh   Verbosity = "high"
)

func (v Verbosity) Valid() bool {
	switch v {
	case VerbosityLow, VerbosityMedium, VerbosityHigh:
		return true
	}
	return false
}

// Effort controls how much reasoning a model spends before answering.
type Effort string

const (
	EffortMinimal Effort = "minimal"
	EffortLow     Effort = "low"
	EffortMedium  Effort = "medium"
	EffortHigh    Effort = "high"
)

func (e Effort) Valid() bool {
	switch e {
	case EffortMinimal, EffortLow, EffortMedium, EffortHigh:
		return true
	}
	return false
}

// Config constructs an adapter. Credentials and generation controls are
// injected explicitly; adapters never read the environment.
type Config struct {
	Vendor    Vendor
	Model     string
	APIKey    string
	Verbosity Verbosity
	Effort    Effort

	// Timeout bounds one vendor call. Zero leaves the SDK default.
	Timeout time.Duration
}

// Request is one structured-generation exchange. Constructed per call and
// discarded after the adapter returns; nothing here is persisted.
type Request struct {
	System string
	User   string
	// Image is an optional PNG screenshot of the page under analysis.
	Image []byte
}

func (r Request) validate() error {
	if strings.TrimSpace(r.System) == "" {
		return errors.New("llm: system text is required")
	}
	if strings.TrimSpace(r.User) == "" {
		return errors.New("llm: user text is required")
	}
	return nil
}

// Debug carries vendor diagnostics for one call: raw text, the decoded
// but unvalidated payload, candidate texts, finish reason and usage
// telemetry. Diagnostic only; never part of the validated result.
type Debug struct {
	RawText      string   `json:"raw_text,omitempty"`
	Payload      any      `json:"parsed_payload,omitempty"`
	Candidates   []string `json:"candidates,omitempty"`
	FinishReason string   `json:"finish_reason,omitempty"`
	Usage        any      `json:"usage,omitempty"`
	Response     any      `json:"response,omitempty"`
}
