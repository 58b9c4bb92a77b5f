package schema

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// Target identifies one registered generation shape and carries its
// derived artifacts: the reflected JSON Schema handed to vendors with
// native structured output, and the descriptor document used for strict
// decoding and for vendors that take a generation-time schema.
type Target struct {
	// Name labels the schema in vendor requests, e.g. as the
	// json_schema name of a response format.
	Name string

	reflected *jsonschema.Schema
	doc       *Doc
	alloc     func() Payload
}

// The registry itself. Shapes are reflected once at package init;
// adapters and the pipeline share the resulting descriptors.
var (
	// AnalysisTarget generates AnalysisResult, the primary shape.
	AnalysisTarget = newTarget("analysis_result", func() Payload { return &AnalysisResult{} }, &AnalysisResult{})
	// DiffTarget generates DiffResult, the patch-variant shape.
	DiffTarget = newTarget("diff_result", func() Payload { return &DiffResult{} }, &DiffResult{})
)

func newTarget(name string, alloc func() Payload, shape any) Target {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	reflected := reflector.Reflect(shape)
	return Target{
		Name:      name,
		reflected: reflected,
		doc:       docFromSchema(reflected),
		alloc:     alloc,
	}
}

// New allocates an empty instance of the target shape.
func (t Target) New() Payload { return t.alloc() }

// JSONSchema returns the reflected schema for vendors whose SDK accepts a
// JSON-Schema document directly (strict response formats). Closed-world:
// additionalProperties is false on every object node.
func (t Target) JSONSchema() *jsonschema.Schema { return t.reflected }

// Doc returns the descriptor document for this shape.
func (t Target) Doc() *Doc { return t.doc }

// GenerationSchema renders the descriptor as a JSON-Schema-like map for
// vendors that require an explicit generation-time schema. Keywords those
// vendors reject (additionalProperties, unevaluatedProperties,
// patternProperties, $schema, $id) are absent, and every object node
// carries a propertyOrdering list in declaration order.
func (t Target) GenerationSchema() map[string]any {
	return t.doc.generationSchema()
}

// Doc is one node of a registered shape's descriptor: the subset of JSON
// Schema the strict decoder and the generation-schema rendering share.
// Ordering preserves struct declaration order of Properties, which plain
// Go maps lose.
type Doc struct {
	Type        string
	Description string
	Properties  map[string]*Doc
	Ordering    []string
	Required    []string
	Items       *Doc
	Enum        []string
	Default     any
}

func docFromSchema(s *jsonschema.Schema) *Doc {
	d := &Doc{
		Type:        s.Type,
		Description: s.Description,
		Default:     s.Default,
	}
	if s.Properties != nil {
		d.Properties = make(map[string]*Doc, s.Properties.Len())
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			d.Ordering = append(d.Ordering, pair.Key)
			d.Properties[pair.Key] = docFromSchema(pair.Value)
		}
	}
	d.Required = append([]string(nil), s.Required...)
	if s.Items != nil {
		d.Items = docFromSchema(s.Items)
	}
	for _, e := range s.Enum {
		d.Enum = append(d.Enum, fmt.Sprint(e))
	}
	return d
}

func (d *Doc) generationSchema() map[string]any {
	m := make(map[string]any)
	if d.Type != "" {
		m["type"] = d.Type
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Enum) > 0 {
		enum := make([]any, len(d.Enum))
		for i, e := range d.Enum {
			enum[i] = e
		}
		m["enum"] = enum
	}
	if d.Default != nil {
		m["default"] = d.Default
	}
	if d.Items != nil {
		m["items"] = d.Items.generationSchema()
	}
	if len(d.Properties) > 0 {
		props := make(map[string]any, len(d.Properties))
		for name, p := range d.Properties {
			props[name] = p.generationSchema()
		}
		m["properties"] = props
		m["propertyOrdering"] = append([]string(nil), d.Ordering...)
		if len(d.Required) > 0 {
			m["required"] = append([]string(nil), d.Required...)
		}
	}
	return m
}
