package models

import (
	"github.com/panbanda/probe/pkg/parser"
)

// Category names one of the six analysis passes.
type Category string

const (
	CategoryBugs        Category = "bug_analysis"
	CategoryComplexity  Category = "test_complexity"
	CategorySecurity    Category = "security_analysis"
	CategoryCoverage    Category = "coverage_prediction"
	CategoryPerformance Category = "performance_analysis"
	CategorySmells      Category = "code_smells"
)

// Categories returns the six categories in report order.
func Categories() []Category {
	return []Category{
		CategoryBugs,
		CategoryComplexity,
		CategorySecurity,
		CategoryCoverage,
		CategoryPerformance,
		CategorySmells,
	}
}

// Analysis is the full result of analyzing one source unit.
type Analysis struct {
	File          string          `json:"file"`
	Language      parser.Language `json:"language"`
	Supported     bool            `json:"supported"`
	IsInterface   bool            `json:"is_interface"`
	InterfaceName string          `json:"interface_name,omitempty"`

	Bugs        BugReport         `json:"bug_analysis"`
	Complexity  ComplexityReport  `json:"test_complexity"`
	Security    SecurityReport    `json:"security_analysis"`
	Coverage    CoverageReport    `json:"coverage_prediction"`
	Performance PerformanceReport `json:"performance_analysis"`
	Smells      SmellReport       `json:"code_smells"`

	FunctionsCount int `json:"functions_count"`
	ClassesCount   int `json:"classes_count"`
	TestsGenerated int `json:"tests_generated"`
}

// Score returns the score of one category.
func (a *Analysis) Score(c Category) int {
	switch c {
	case CategoryBugs:
		return a.Bugs.Score
	case CategoryComplexity:
		return a.Complexity.Score
	case CategorySecurity:
		return a.Security.Score
	case CategoryCoverage:
		return a.Coverage.Score
	case CategoryPerformance:
		return a.Performance.Score
	case CategorySmells:
		return a.Smells.Score
	default:
		return 0
	}
}

// Findings returns every finding of the analysis tagged with its category.
func (a *Analysis) Findings() []CategorizedFinding {
	var out []CategorizedFinding
	add := func(c Category, fs []Finding) {
		for _, f := range fs {
			out = append(out, CategorizedFinding{Category: c, Finding: f})
		}
	}
	add(CategoryBugs, a.Bugs.Issues)
	add(CategorySecurity, a.Security.Vulnerabilities)
	add(CategoryCoverage, a.Coverage.Warnings)
	add(CategoryPerformance, a.Performance.Bottlenecks)
	add(CategorySmells, a.Smells.Smells)
	return out
}

// CategorizedFinding pairs a finding with the pass that produced it.
type CategorizedFinding struct {
	Category Category `json:"category"`
	Finding
}
