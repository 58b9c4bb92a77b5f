package report

import (
	"encoding/json"
)

// JSONFormatter outputs a Report as pretty-printed JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format returns the Report as indented JSON.
func (f *JSONFormatter) Format(rep Report) string {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		// Fallback: should never happen since Report is fully serializable.
		return `{"error": "failed to marshal report"}`
	}
	return string(data)
}
