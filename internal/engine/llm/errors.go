package llm

import "fmt"

// FailureKind classifies why a structured call did not produce a
// validated payload.
type FailureKind string

const (
	// CallFailed covers exchanges that never completed: network faults,
	// authentication, quota, SDK errors.
	CallFailed FailureKind = "call_failed"
	// MissingPayload covers exchanges that completed without any
	// decodable structured text, including refusals and truncation.
	MissingPayload FailureKind = "missing_payload"
	// ValidationFailed covers decodable text that violates the target
	// schema.
	ValidationFailed FailureKind = "validation_failed"
)

// CallError is the single error surface for failed structured calls,
// regardless of vendor. Kind tells the caller which stage gave out;
// RawText, Payload and Debug carry whatever the vendor returned before
// the failure, for diagnostics. None of the kinds is retried.
type CallError struct {
	Kind    FailureKind
	Message string

	// RawText is the model's text output, when any existed.
	RawText string
	// Payload is the decoded but unvalidated payload, when decoding
	// succeeded and validation did not.
	Payload any
	// Debug is the full diagnostic bundle for the call.
	Debug *Debug

	cause error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CallError) Unwrap() error { return e.cause }
