package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityWeight(t *testing.T) {
	tests := []struct {
		severity Severity
		want     int
	}{
		{SeverityCritical, 4},
		{SeverityHigh, 3},
		{SeverityWarning, 2},
		{SeverityMedium, 2},
		{SeverityLow, 1},
		{SeverityInfo, 0},
		{Severity("bogus"), 0},
	}
	for _, tt := range tests {
		if got := tt.severity.Weight(); got != tt.want {
			t.Errorf("%s.Weight() = %d, want %d", tt.severity, got, tt.want)
		}
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "return a + b;", Excerpt("    return a + b;   ", 60))
	assert.Equal(t, "abcde", Excerpt("\tabcdefgh", 5))
	assert.Equal(t, "", Excerpt("   ", 10))
	assert.Equal(t, "éàü", Excerpt("éàüö", 3), "truncation counts characters, not bytes")
}

func TestCountSeverity(t *testing.T) {
	fs := []Finding{
		{Severity: SeverityCritical},
		{Severity: SeverityWarning},
		{Severity: SeverityCritical},
	}
	assert.Equal(t, 2, CountSeverity(fs, SeverityCritical))
	assert.Equal(t, 1, CountSeverity(fs, SeverityWarning))
	assert.Equal(t, 0, CountSeverity(nil, SeverityInfo))
}

func TestAdvice(t *testing.T) {
	assert.Equal(t, "use env vars", Finding{Fix: "use env vars", Suggestion: "x"}.Advice())
	assert.Equal(t, "x", Finding{Suggestion: "x"}.Advice())
}

func TestAnalysisFindings(t *testing.T) {
	a := &Analysis{
		Bugs:     BugReport{Issues: []Finding{{Kind: KindEvalUsage}}},
		Security: SecurityReport{Vulnerabilities: []Finding{{Kind: KindHardcodedCredential}}},
		Smells:   SmellReport{Smells: []Finding{{Kind: KindGodClass}, {Kind: KindDeepNesting}}},
	}

	got := a.Findings()
	if assert.Len(t, got, 4) {
		assert.Equal(t, CategoryBugs, got[0].Category)
		assert.Equal(t, CategorySecurity, got[1].Category)
		assert.Equal(t, KindDeepNesting, got[3].Kind)
	}
}

func TestAnalysisScore(t *testing.T) {
	a := &Analysis{
		Bugs:        BugReport{Score: 85},
		Complexity:  ComplexityReport{Score: 70},
		Security:    SecurityReport{Score: 100},
		Coverage:    CoverageReport{Score: 12},
		Performance: PerformanceReport{Score: 90},
		Smells:      SmellReport{Score: 45},
	}
	want := []int{85, 70, 100, 12, 90, 45}
	for i, c := range Categories() {
		assert.Equal(t, want[i], a.Score(c), "category %s", c)
	}
	assert.Equal(t, 0, a.Score(Category("nope")))
}
