package llm

import (
	"testing"

	"github.com/pagelens/pagelens/internal/engine/schema"
	"google.golang.org/genai"
)

func TestGenaiSchema_AnalysisTarget(t *testing.T) {
	s, err := genaiSchema(schema.AnalysisTarget.GenerationSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Type != genai.TypeObject {
		t.Fatalf("expected object type, got %v", s.Type)
	}
	if len(s.PropertyOrdering) == 0 {
		t.Error("expected property ordering preserved")
	}

	issues, ok := s.Properties["issues"]
	if !ok {
		t.Fatal("expected issues property")
	}
	if issues.Type != genai.TypeArray || issues.Items == nil {
		t.Fatalf("expected issues to be an array with items, got %+v", issues)
	}

	severity, ok := issues.Items.Properties["severity"]
	if !ok {
		t.Fatal("expected severity property on issue items")
	}
	if len(severity.Enum) != 3 {
		t.Errorf("expected 3 severity enum values, got %v", severity.Enum)
	}
	if severity.Default != "medium" {
		t.Errorf("expected medium default, got %v", severity.Default)
	}
}

func TestGenaiSchema_RequiredCarriedThrough(t *testing.T) {
	s, err := genaiSchema(schema.AnalysisTarget.GenerationSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]bool{"issues": true, "improvements": true}
	for _, name := range s.Required {
		delete(want, name)
	}
	if len(want) != 0 {
		t.Errorf("missing required fields at the root: %v", want)
	}
}

func TestGenaiSchema_UnsupportedType(t *testing.T) {
	_, err := genaiSchema(map[string]any{"type": "tuple"})
	if err == nil {
		t.Error("expected error for unsupported schema type")
	}
}

func TestGenaiSchema_BadProperty(t *testing.T) {
	_, err := genaiSchema(map[string]any{
		"type":       "object",
		"properties": map[string]any{"name": "not a schema"},
	})
	if err == nil {
		t.Error("expected error for malformed property")
	}
}

func TestStringList(t *testing.T) {
	if got := stringList([]string{"a", "b"}); len(got) != 2 {
		t.Errorf("unexpected: %v", got)
	}
	if got := stringList([]any{"a", "b", "c"}); len(got) != 3 || got[2] != "c" {
		t.Errorf("unexpected: %v", got)
	}
	if got := stringList(42); got != nil {
		t.Errorf("expected nil for non-list, got %v", got)
	}
}
