package llm

import (
	"context"

	"github.com/pagelens/pagelens/internal/engine/schema"
)

// MockAgent is a test double for llm.Agent. It records the most recent
// request so callers can assert on prompt construction.
type MockAgent struct {
	Result  *schema.AnalysisResult
	Payload schema.Payload
	Debug   *Debug
	Err     error

	Calls       int
	LastRequest Request
	LastTarget  schema.Target
}

var _ Agent = (*MockAgent)(nil)

// Analyze returns the configured result, debug bundle and error.
func (m *MockAgent) Analyze(_ context.Context, req Request) (*schema.AnalysisResult, *Debug, error) {
	m.Calls++
	m.LastRequest = req
	m.LastTarget = schema.AnalysisTarget
	return m.Result, m.Debug, m.Err
}

// GenerateStructured returns Payload when set, falling back to Result.
func (m *MockAgent) GenerateStructured(_ context.Context, req Request, target schema.Target) (schema.Payload, *Debug, error) {
	m.Calls++
	m.LastRequest = req
	m.LastTarget = target
	if m.Err != nil {
		return nil, m.Debug, m.Err
	}
	if m.Payload != nil {
		return m.Payload, m.Debug, nil
	}
	return m.Result, m.Debug, nil
}
