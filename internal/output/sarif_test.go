package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/probe/pkg/models"
)

type sarifLog struct {
	Version string `json:"version"`
	Runs    []struct {
		Tool struct {
			Driver struct {
				Name  string `json:"name"`
				Rules []struct {
					ID string `json:"id"`
				} `json:"rules"`
			} `json:"driver"`
		} `json:"tool"`
		Properties map[string]any `json:"properties"`
		Results    []struct {
			RuleID  string `json:"ruleId"`
			Level   string `json:"level"`
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
			Locations []struct {
				PhysicalLocation struct {
					ArtifactLocation struct {
						URI string `json:"uri"`
					} `json:"artifactLocation"`
					Region struct {
						StartLine int `json:"startLine"`
					} `json:"region"`
				} `json:"physicalLocation"`
			} `json:"locations"`
			Properties map[string]any `json:"properties"`
		} `json:"results"`
	} `json:"runs"`
}

func renderSARIF(t *testing.T, analyses ...*models.Analysis) sarifLog {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewFormatterWriter(FormatSARIF, &buf, false).Output(NewAnalysisReport(analyses)))

	var log sarifLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))
	return log
}

func TestSARIF_Results(t *testing.T) {
	log := renderSARIF(t, sampleAnalysis("src/Calc.java", 85))

	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	run := log.Runs[0]
	assert.Equal(t, "probe", run.Tool.Driver.Name)
	assert.NotEmpty(t, run.Properties["runId"])
	require.Len(t, run.Results, 2)

	bug := run.Results[0]
	assert.Equal(t, "DivisionByZero", bug.RuleID)
	assert.Equal(t, "error", bug.Level)
	assert.Equal(t, "Division By Zero: return a / b;", bug.Message.Text)
	assert.Equal(t, "src/Calc.java", bug.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 7, bug.Locations[0].PhysicalLocation.Region.StartLine)
	assert.Equal(t, "bug_analysis", bug.Properties["category"])
	assert.Equal(t, "Check the divisor before dividing", bug.Properties["fix"])

	smell := run.Results[1]
	assert.Equal(t, "note", smell.Level)
	assert.Equal(t, 1, smell.Locations[0].PhysicalLocation.Region.StartLine, "file-level findings point at line 1")
}

func TestSARIF_RulesAreDeduplicated(t *testing.T) {
	log := renderSARIF(t, sampleAnalysis("A.java", 80), sampleAnalysis("B.java", 80))

	run := log.Runs[0]
	assert.Len(t, run.Results, 4)
	assert.Len(t, run.Tool.Driver.Rules, 2)
}

func TestSARIF_NoFindings(t *testing.T) {
	log := renderSARIF(t, &models.Analysis{File: "ok.py", Supported: true})
	require.Len(t, log.Runs, 1)
	assert.Empty(t, log.Runs[0].Results)
}

func TestBuildSARIF_RunID(t *testing.T) {
	report, err := BuildSARIF(nil, "run-1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.PrettyWrite(&buf))
	assert.Contains(t, buf.String(), `"runId": "run-1"`)
}

func TestToSarifLevel(t *testing.T) {
	tests := []struct {
		sev  models.Severity
		want string
	}{
		{models.SeverityCritical, "error"},
		{models.SeverityHigh, "error"},
		{models.SeverityWarning, "warning"},
		{models.SeverityMedium, "warning"},
		{models.SeverityLow, "note"},
		{models.SeverityInfo, "note"},
		{"", "note"},
	}
	for _, tt := range tests {
		if got := toSarifLevel(tt.sev); got != tt.want {
			t.Errorf("toSarifLevel(%q) = %q, want %q", tt.sev, got, tt.want)
		}
	}
}
