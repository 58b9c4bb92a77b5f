package report

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/pagelens/pagelens/internal/engine/runlog"
	"github.com/pagelens/pagelens/internal/engine/schema"
)

const (
	sarifToolName       = "pagelens"
	sarifInformationURI = "https://github.com/pagelens/pagelens"

	// Findings point at the captured page snapshot inside the run dir.
	sarifArtifactURI = "index.html"
)

// WriteSarif renders the report's issues as a SARIF v2.1.0 document so
// design findings can land in code-scanning dashboards next to lint
// results. Each issue becomes a rule keyed by its slugged title.
func WriteSarif(w io.Writer, rep Report) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("creating sarif document: %w", err)
	}

	run := sarif.NewRunWithInformationURI(sarifToolName, sarifInformationURI)
	for _, issue := range rep.result().Issues {
		ruleID := runlog.Slugify(issue.Title)
		if ruleID == "" {
			ruleID = "design-issue"
		}
		run.AddRule(ruleID).WithDescription(issue.Title)

		message := issue.Detail
		if issue.Evidence != "" {
			message = fmt.Sprintf("%s Evidence: %s", message, issue.Evidence)
		}
		run.CreateResultForRule(ruleID).
			WithLevel(sarifLevel(issue.Severity)).
			WithMessage(sarif.NewTextMessage(message)).
			AddLocation(sarif.NewLocationWithPhysicalLocation(
				sarif.NewPhysicalLocation().WithArtifactLocation(
					sarif.NewSimpleArtifactLocation(sarifArtifactURI))))
	}
	doc.AddRun(run)

	if err := doc.PrettyWrite(w); err != nil {
		return fmt.Errorf("encoding sarif document: %w", err)
	}
	return nil
}

func sarifLevel(s schema.Severity) string {
	switch s {
	case schema.SeverityHigh:
		return "error"
	case schema.SeverityLow:
		return "note"
	default:
		return "warning"
	}
}
