package llm

import "strings"

// Capabilities describes what a model family accepts natively. Adapters
// resolve this once at construction; the call path never inspects model
// names.
type Capabilities struct {
	// NativeControls means reasoning effort and verbosity ride as API
	// parameters instead of prompt-level hints.
	NativeControls bool
}

// modelCapabilities maps model identifier prefixes to capability sets.
// Models without an entry get the zero value.
var modelCapabilities = []struct {
	prefix string
	caps   Capabilities
}{
	{prefix: "gpt-5", caps: Capabilities{NativeControls: true}},
}

func capabilitiesFor(model string) Capabilities {
	for _, entry := range modelCapabilities {
		if strings.HasPrefix(model, entry.prefix) {
			return entry.caps
		}
	}
	return Capabilities{}
}

const (
	defaultGeminiModel = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-5-mini"
)

// KnownModel is a catalog entry for a model the adapters have been
// exercised against. Other model names still work; these are the ones
// surfaced in pickers and help output.
type KnownModel struct {
	Name    string
	Default bool
	Caps    Capabilities
}

var knownModels = map[Vendor][]string{
	VendorGemini: {"gemini-2.5-flash", "gemini-2.5-pro"},
	VendorOpenAI: {"gpt-5", "gpt-5-mini", "gpt-5-nano"},
}

var defaultModels = map[Vendor]string{
	VendorGemini: defaultGeminiModel,
	VendorOpenAI: defaultOpenAIModel,
}

// DefaultModel returns the model an adapter selects when none is named.
func DefaultModel(vendor Vendor) string {
	return defaultModels[vendor]
}

// KnownModels returns the catalog for a vendor in picker order.
func KnownModels(vendor Vendor) []KnownModel {
	names := knownModels[vendor]
	out := make([]KnownModel, 0, len(names))
	for _, name := range names {
		out = append(out, KnownModel{
			Name:    name,
			Default: name == defaultModels[vendor],
			Caps:    capabilitiesFor(name),
		})
	}
	return out
}
