package llm

import (
	"context"
	"fmt"

	"github.com/pagelens/pagelens/internal/engine/schema"
)

// Agent is the vendor-neutral surface for structured generation. Analyze
// runs the primary page analysis; GenerateStructured targets any
// registered schema family. Implementations make exactly one vendor call
// per invocation and never retry. Every failure escalates as *CallError
// so callers branch on the failure kind, not the vendor.
type Agent interface {
	Analyze(ctx context.Context, req Request) (*schema.AnalysisResult, *Debug, error)
	GenerateStructured(ctx context.Context, req Request, target schema.Target) (schema.Payload, *Debug, error)
}

// AgentFactory creates an Agent from a config. Callers that need to
// substitute a test double inject their own factory.
type AgentFactory func(cfg Config) (Agent, error)

// New selects an adapter by vendor name.
func New(cfg Config) (Agent, error) {
	switch cfg.Vendor {
	case VendorGemini:
		return NewGeminiAgent(cfg, nil)
	case VendorOpenAI:
		return NewOpenAIAgent(cfg, nil)
	default:
		return nil, fmt.Errorf("unsupported vendor %q (want %q or %q)", cfg.Vendor, VendorGemini, VendorOpenAI)
	}
}
