// Package schema declares the closed set of result shapes the analyzer
// accepts from LLM vendors, and derives from them both a strict decoder
// and the generation-time schema descriptors vendors consume.
package schema

import "fmt"

// Payload is one registered result shape. The unexported method keeps the
// set closed: adapters only ever produce shapes declared in this package.
type Payload interface {
	// Validate reports the first semantic violation, as a *ValidationError.
	Validate() error
	// normalize applies declared defaults in place. Called by Decode
	// between the structural check and validation.
	normalize()
}

// Severity ranks a detected defect.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is one of the declared severity levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Issue is one detected visual or structural defect on the page. Issues
// are created only by successful validation of model output and are
// immutable afterward.
type Issue struct {
	Title    string   `json:"title" jsonschema:"description=Short heading naming the defect"`
	Detail   string   `json:"detail" jsonschema:"description=Explanation of the defect and why it matters"`
	Evidence string   `json:"evidence,omitempty" jsonschema:"description=Optional snippet or measurement backing the finding"`
	Severity Severity `json:"severity,omitempty" jsonschema:"enum=low,enum=medium,enum=high,default=medium,description=Relative urgency of the defect"`
}

// Improvement is one suggested fix. TargetsIssue is a soft back-reference
// to an Issue title, never enforced.
type Improvement struct {
	Title        string `json:"title" jsonschema:"description=Short heading for the proposed fix"`
	Rationale    string `json:"rationale" jsonschema:"description=Expected effect and reasoning"`
	TargetsIssue string `json:"targets_issue,omitempty" jsonschema:"description=Title of the issue this proposal addresses"`
}

// AnalysisResult is the unit of output from one pipeline invocation.
type AnalysisResult struct {
	Summary      string        `json:"summary,omitempty" jsonschema:"description=Brief overview of the findings"`
	Issues       []Issue       `json:"issues"`
	Improvements []Improvement `json:"improvements"`
}

func (r *AnalysisResult) normalize() {
	for i := range r.Issues {
		if r.Issues[i].Severity == "" {
			r.Issues[i].Severity = SeverityMedium
		}
	}
}

// Validate checks required fields and enum membership. Decoded payloads
// arrive already normalized; hand-built values must carry explicit
// severities or call Decode round-trip first.
func (r *AnalysisResult) Validate() error {
	if r.Issues == nil {
		return &ValidationError{Path: "issues", Msg: "required field missing"}
	}
	if r.Improvements == nil {
		return &ValidationError{Path: "improvements", Msg: "required field missing"}
	}
	for i, issue := range r.Issues {
		if issue.Title == "" {
			return &ValidationError{Path: fmt.Sprintf("issues[%d].title", i), Msg: "required field empty"}
		}
		if issue.Detail == "" {
			return &ValidationError{Path: fmt.Sprintf("issues[%d].detail", i), Msg: "required field empty"}
		}
		if !issue.Severity.Valid() {
			return &ValidationError{
				Path: fmt.Sprintf("issues[%d].severity", i),
				Msg:  fmt.Sprintf("unknown severity %q", issue.Severity),
			}
		}
	}
	for i, imp := range r.Improvements {
		if imp.Title == "" {
			return &ValidationError{Path: fmt.Sprintf("improvements[%d].title", i), Msg: "required field empty"}
		}
		if imp.Rationale == "" {
			return &ValidationError{Path: fmt.Sprintf("improvements[%d].rationale", i), Msg: "required field empty"}
		}
	}
	return nil
}

// VariantOption is one of the A/B/C rewrites of an improvement point.
// Search must be an exact anchor string in the source file; Replace is
// its substitution and may be empty to delete the anchor.
type VariantOption struct {
	Version string `json:"version" jsonschema:"description=Variant identifier such as A or B or C"`
	Label   string `json:"label" jsonschema:"description=Angle of the variant such as trust-first or speed-first"`
	Search  string `json:"search" jsonschema:"description=Exact source string long enough to match uniquely"`
	Replace string `json:"replace" jsonschema:"description=Replacement text for the matched string"`
}

// ImprovementPoint groups exactly three variants of one textual change.
type ImprovementPoint struct {
	PointID     string          `json:"point_id" jsonschema:"description=Stable identifier such as improvement_1"`
	PointName   string          `json:"point_name" jsonschema:"description=Page element being improved such as headline or CTA"`
	Description string          `json:"description" jsonschema:"description=What to change and why"`
	FilePath    string          `json:"file_path" jsonschema:"description=File the change applies to such as index.html"`
	Variants    []VariantOption `json:"variants" jsonschema:"description=Exactly three variants labeled A then B then C"`
}

// DiffResult is the secondary generation target: patch variants per
// improvement point. Declared and served by both adapters, but not
// invoked by the analysis pipeline.
type DiffResult struct {
	ImprovementPoints []ImprovementPoint `json:"improvement_points" jsonschema:"description=Improvement points each carrying three variants"`
}

func (r *DiffResult) normalize() {}

// Validate checks required fields and the three-variant rule.
func (r *DiffResult) Validate() error {
	if r.ImprovementPoints == nil {
		return &ValidationError{Path: "improvement_points", Msg: "required field missing"}
	}
	for i, point := range r.ImprovementPoints {
		path := fmt.Sprintf("improvement_points[%d]", i)
		if point.PointID == "" {
			return &ValidationError{Path: path + ".point_id", Msg: "required field empty"}
		}
		if point.PointName == "" {
			return &ValidationError{Path: path + ".point_name", Msg: "required field empty"}
		}
		if point.Description == "" {
			return &ValidationError{Path: path + ".description", Msg: "required field empty"}
		}
		if point.FilePath == "" {
			return &ValidationError{Path: path + ".file_path", Msg: "required field empty"}
		}
		if len(point.Variants) != 3 {
			return &ValidationError{
				Path: path + ".variants",
				Msg:  fmt.Sprintf("want exactly 3 variants, got %d", len(point.Variants)),
			}
		}
		for j, v := range point.Variants {
			vpath := fmt.Sprintf("%s.variants[%d]", path, j)
			if v.Version == "" {
				return &ValidationError{Path: vpath + ".version", Msg: "required field empty"}
			}
			if v.Label == "" {
				return &ValidationError{Path: vpath + ".label", Msg: "required field empty"}
			}
			if v.Search == "" {
				return &ValidationError{Path: vpath + ".search", Msg: "required field empty"}
			}
		}
	}
	return nil
}
