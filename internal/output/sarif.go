package output

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/panbanda/probe/pkg/models"
)

const (
	toolName = "probe"
	toolURI  = "https://github.com/panbanda/probe"
)

// RenderSARIF converts every finding into a SARIF result. Rules are keyed
// by finding kind.
func (r *AnalysisReport) RenderSARIF() (*sarif.Report, error) {
	return BuildSARIF(r.Analyses, uuid.New().String())
}

// BuildSARIF builds a SARIF 2.1.0 log with one run tagged with runID.
func BuildSARIF(analyses []*models.Analysis, runID string) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	run.Properties = map[string]interface{}{"runId": runID}

	for _, a := range analyses {
		for _, f := range a.Findings() {
			level := toSarifLevel(f.Severity)
			rule := run.AddRule(string(f.Kind)).
				WithDescription(f.Title).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: level,
				})

			region := sarif.NewRegion().WithStartLine(1)
			if f.Line > 0 {
				region = sarif.NewRegion().WithStartLine(f.Line)
			}
			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(a.File)).
					WithRegion(region),
			)

			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(sarifMessage(f.Finding))).
				WithLevel(level).
				WithLocations([]*sarif.Location{location})
			result.Properties = map[string]interface{}{
				"category": string(f.Category),
				"severity": string(f.Severity),
			}
			if advice := f.Advice(); advice != "" {
				result.Properties["fix"] = advice
			}
			run.AddResult(result)
		}
	}
	report.AddRun(run)
	return report, nil
}

func sarifMessage(f models.Finding) string {
	switch {
	case f.Detail != "":
		return f.Title + ": " + f.Detail
	case f.Code != "":
		return f.Title + ": " + f.Code
	default:
		return f.Title
	}
}

// toSarifLevel maps severities onto SARIF result levels.
func toSarifLevel(s models.Severity) string {
	switch s {
	case models.SeverityCritical, models.SeverityHigh:
		return "error"
	case models.SeverityWarning, models.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
