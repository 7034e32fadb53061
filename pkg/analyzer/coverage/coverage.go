// Package coverage predicts the line coverage a set of generated tests is
// likely to reach. The estimate is deliberately pessimistic: it starts from
// the ratio of tests to functions and is discounted for code that is hard
// to exercise in isolation.
package coverage

import (
	"fmt"
	"math"
	"strings"

	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/patterns"
	"github.com/panbanda/probe/pkg/source"
)

const (
	// MinEstimate and MaxEstimate bound the estimated coverage percentage.
	MinEstimate = 3
	MaxEstimate = 95

	// Penalty factors applied to the base ratio.
	DOMFactor         = 0.70
	ExternalDepFactor = 0.85
	SideEffectFactor  = 0.90
	UIEventFactor     = 0.80

	pureBonus      = 1.1
	maxPureRatio   = 0.95
	criticalRatio  = 0.20
	manyBranches   = 15
	manyFunctions  = 10
	testsPerTarget = 2
)

// Analyzer predicts coverage.
type Analyzer struct {
	target int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithTargetCoverage sets the coverage percentage below which missing tests
// are reported.
func WithTargetCoverage(pct int) Option {
	return func(a *Analyzer) {
		if pct > 0 && pct <= 100 {
			a.target = pct
		}
	}
}

// New creates a coverage analyzer with default options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{target: 80}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BaseRatio maps tests per function to a coverage ratio through a fixed
// piecewise-linear schedule. The schedule rises within each bracket but
// steps down from 0.65 to 0.50 when the ratio reaches one test per
// function.
func BaseRatio(testsGenerated, functions int) float64 {
	if functions == 0 {
		if testsGenerated > 0 {
			return 0.1
		}
		return 0
	}

	tpf := float64(testsGenerated) / float64(functions)
	switch {
	case tpf < 0.2:
		return 0.05 + tpf*0.2
	case tpf < 0.5:
		return 0.15 + tpf*0.3
	case tpf < 1:
		return 0.30 + tpf*0.35
	case tpf < 2:
		return 0.50 + (tpf-1)*0.20
	default:
		return math.Min(0.90, 0.70+(tpf-2)*0.10)
	}
}

// Testability inspects the source for traits that make it harder to test.
func Testability(unit *source.Unit) models.Testability {
	code := unit.Text()
	lower := strings.ToLower(code)

	t := models.Testability{
		HasDOM:          containsAny(code, patterns.DOMMarkers),
		HasExternalDeps: containsAny(code, patterns.ExternalDepMarkers),
		HasUIEvents:     containsAny(lower, patterns.UIEventMarkers),
		HasSideEffects:  containsAny(code, patterns.SideEffectMarkers),
	}

	for _, line := range unit.Lines() {
		if !strings.Contains(line, "function") && !strings.Contains(line, "def ") {
			continue
		}
		if strings.Contains(line, "this.") || strings.Contains(line, "document.") || strings.Contains(line, "window.") {
			continue
		}
		t.PureFunctionCount++
	}
	t.HasPureFunctions = t.PureFunctionCount > 0

	if t.HasDOM {
		t.UntestableCount = strings.Count(code, "attachEvent") + strings.Count(code, "addEventListener")
	}
	return t
}

// Branches counts branching keywords.
func Branches(text string) int {
	n := 0
	for _, re := range patterns.Branches {
		n += len(re.FindAllStringIndex(text, -1))
	}
	return n
}

// Analyze predicts coverage for unit given the number of tests generated.
func (a *Analyzer) Analyze(unit *source.Unit, facts extract.Result, testsGenerated int) models.CoverageReport {
	testsGenerated = max(0, testsGenerated)
	functions := facts.FunctionCount
	branches := Branches(unit.Text())
	testability := Testability(unit)

	ratio := BaseRatio(testsGenerated, functions)
	if testability.HasDOM {
		ratio *= DOMFactor
	}
	if testability.HasExternalDeps {
		ratio *= ExternalDepFactor
	}
	if testability.HasSideEffects {
		ratio *= SideEffectFactor
	}
	if testability.HasUIEvents {
		ratio *= UIEventFactor
	}
	if testability.HasPureFunctions {
		ratio = math.Min(maxPureRatio, ratio*pureBonus)
	}

	estimated := max(MinEstimate, min(MaxEstimate, int(ratio*100)))

	missing := 0
	if estimated < a.target {
		missing = max(0, functions*testsPerTarget-testsGenerated)
	}

	return models.CoverageReport{
		Score:             estimated,
		EstimatedCoverage: estimated,
		Ratio:             math.Round(ratio*1000) / 1000,
		UncoveredLines:    unit.NonBlankLines() * (100 - estimated) / 100,
		MissingTests:      missing,
		TestsGenerated:    testsGenerated,
		FunctionsCount:    functions,
		Branches:          branches,
		Testability:       testability,
		Warnings:          warnings(testability, ratio, estimated, testsGenerated, functions),
		Strengths:         strengths(testsGenerated, functions, branches),
		Verdict:           Verdict(estimated, testsGenerated, functions),
	}
}

func warnings(t models.Testability, ratio float64, estimated, tests, functions int) []models.Finding {
	out := []models.Finding{}
	if tests == 1 && functions > 1 {
		out = append(out, models.Finding{
			Kind:     models.KindSingleTest,
			Title:    "Single Test for Many Functions",
			Detail:   fmt.Sprintf("1 test for %d functions = very low coverage (~%d%%)", functions, estimated),
			Severity: models.SeverityWarning,
		})
	}
	if t.HasDOM {
		out = append(out, models.Finding{
			Kind:       models.KindDOMMocking,
			Title:      "DOM Code Needs Mocks",
			Suggestion: "Use jsdom or @testing-library",
			Severity:   models.SeverityWarning,
		})
	}
	if t.HasExternalDeps {
		out = append(out, models.Finding{
			Kind:       models.KindExternalDeps,
			Title:      "External Dependencies to Mock",
			Suggestion: "Mock network, storage and imported modules",
			Severity:   models.SeverityWarning,
		})
	}
	if t.HasUIEvents {
		out = append(out, models.Finding{
			Kind:       models.KindUIEvents,
			Title:      "UI Events Need Simulation",
			Suggestion: "Simulate events with userEvent",
			Severity:   models.SeverityWarning,
		})
	}
	if ratio < criticalRatio {
		out = append(out, models.Finding{
			Kind:     models.KindCriticalCoverage,
			Title:    "Critical Coverage",
			Detail:   "Tests are too superficial",
			Severity: models.SeverityCritical,
		})
	}
	return out
}

func strengths(tests, functions, branches int) []string {
	var out []string
	if functions > 0 {
		ratio := float64(tests) / float64(functions)
		if ratio >= 1 {
			out = append(out, "At least one test per function")
		}
		if ratio >= 2 {
			out = append(out, "Several tests per function (edge cases)")
		}
	}
	if functions > 0 && functions < manyFunctions {
		out = append(out, "Reasonable number of functions to test")
	}
	if branches < manyBranches {
		out = append(out, "Low branching, easy to cover")
	}
	if len(out) == 0 {
		out = append(out, "Few strengths: improve the tests")
	}
	return out
}

// Verdict describes an estimated coverage percentage.
func Verdict(estimated, tests, functions int) string {
	switch {
	case estimated < 15:
		return fmt.Sprintf("CRITICAL: %d test(s) for %d functions = almost no coverage", tests, functions)
	case estimated < 30:
		return "LOW: superficial tests, only the main paths are exercised"
	case estimated < 60:
		return "PARTIAL: basic coverage, edge cases and branches are missing"
	case estimated < 80:
		return "CORRECT: good coverage of the main paths"
	default:
		return "EXCELLENT: full coverage including edge cases"
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
