package analyzer

import (
	"github.com/panbanda/probe/pkg/analyzer/coverage"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/patterns"
	"github.com/panbanda/probe/pkg/source"
)

// Labels used by the degenerate paths.
const (
	LevelInterface     = "N/A - Interface"
	LevelNotApplicable = "N/A"
)

// interfaceAnalysis is the fixed report for a Java interface. Interfaces
// hold contracts and no logic, so every pass is satisfied and the caller
// is pointed at the implementing class.
func interfaceAnalysis(unit *source.Unit, name string, testsGenerated int) *models.Analysis {
	return &models.Analysis{
		File:          unit.Filename(),
		Language:      unit.Language(),
		Supported:     true,
		IsInterface:   true,
		InterfaceName: name,
		Bugs: models.BugReport{
			Score:  100,
			Issues: []models.Finding{},
			Strengths: []string{
				"Java interface detected: " + name,
				"Interfaces define contracts, not logic",
			},
			Suggestions: []string{"Analyze the implementation instead: " + name + "Impl.java"},
		},
		Complexity: models.ComplexityReport{
			Score:           0,
			Maintainability: 100,
			Level:           LevelInterface,
		},
		Security: models.SecurityReport{
			Score:           100,
			RiskLevel:       models.RiskNotApplicable,
			Vulnerabilities: []models.Finding{},
			SecurePoints:    []string{"Interface without executable logic"},
			Recommendations: []string{"Analyze the implementation for security"},
		},
		Coverage: models.CoverageReport{
			Score:             coverage.MinEstimate,
			EstimatedCoverage: coverage.MinEstimate,
			TestsGenerated:    testsGenerated,
			Warnings:          []models.Finding{},
			Strengths:         []string{"Interface cannot be tested directly"},
			Verdict:           "Not applicable: test the implementing class",
		},
		Performance: models.PerformanceReport{
			Score:       100,
			Level:       LevelNotApplicable,
			Bottlenecks: []models.Finding{},
			Complexity:  LevelNotApplicable,
			Strengths:   []string{"Interface without execution"},
		},
		Smells: models.SmellReport{
			Score:     100,
			Level:     LevelNotApplicable,
			Smells:    []models.Finding{},
			Strengths: []string{"Well-defined interface"},
			Verdict:   "Not applicable",
		},
		FunctionsCount: len(patterns.AbstractCalls.FindAllStringIndex(unit.Text(), -1)),
		ClassesCount:   0,
		TestsGenerated: testsGenerated,
	}
}

// unsupportedAnalysis is the neutral report for a language the engines do
// not know. It carries no findings and counts no functions.
func unsupportedAnalysis(unit *source.Unit, testsGenerated int) *models.Analysis {
	const reason = "Language not supported"
	return &models.Analysis{
		File:      unit.Filename(),
		Language:  unit.Language(),
		Supported: false,
		Bugs: models.BugReport{
			Score:       100,
			Issues:      []models.Finding{},
			Strengths:   []string{reason},
			Suggestions: []string{},
		},
		Complexity: models.ComplexityReport{
			Score:           100,
			Maintainability: 100,
			Level:           LevelNotApplicable,
		},
		Security: models.SecurityReport{
			Score:           100,
			RiskLevel:       models.RiskNotApplicable,
			Vulnerabilities: []models.Finding{},
			SecurePoints:    []string{reason},
			Recommendations: []string{},
		},
		Coverage: models.CoverageReport{
			Score:             coverage.MinEstimate,
			EstimatedCoverage: coverage.MinEstimate,
			TestsGenerated:    testsGenerated,
			Warnings:          []models.Finding{},
			Strengths:         []string{reason},
			Verdict:           reason,
		},
		Performance: models.PerformanceReport{
			Score:       100,
			Level:       LevelNotApplicable,
			Bottlenecks: []models.Finding{},
			Complexity:  LevelNotApplicable,
			Strengths:   []string{reason},
		},
		Smells: models.SmellReport{
			Score:     100,
			Level:     LevelNotApplicable,
			Smells:    []models.Finding{},
			Strengths: []string{reason},
			Verdict:   reason,
		},
		TestsGenerated: testsGenerated,
	}
}
