// Package performance looks for textual hints of quadratic work: nested
// loops and string concatenation by assignment.
package performance

import (
	"strings"

	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/parser"
	"github.com/panbanda/probe/pkg/patterns"
	"github.com/panbanda/probe/pkg/source"
)

const (
	// MinScore is the floor of the performance score.
	MinScore = 60

	bottleneckPenalty = 10

	// The nested-loop window for line i ends at byte i*windowStride and
	// spans windowSize bytes. It approximates a line of fixed width.
	windowStride = 50
	windowSize   = 200
)

// Asymptotic classes reported as the dominant complexity.
const (
	Constant  = "O(1)"
	Linear    = "O(n)"
	Quadratic = "O(n²)"
)

// Analyzer detects performance bottlenecks. It has no options yet.
type Analyzer struct{}

// New creates a performance analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze scans unit line by line. The nested-loop probe reruns a regex
// over a fixed window per line, so the pass is linear in line count but
// the window placement is only loosely tied to the line itself.
func (a *Analyzer) Analyze(unit *source.Unit, _ extract.Result) models.PerformanceReport {
	text := unit.Text()
	java := unit.Language() == parser.LangJava

	bottlenecks := []models.Finding{}
	for i, line := range unit.Lines() {
		n := i + 1
		if patterns.NestedLoop.MatchString(window(text, n)) {
			bottlenecks = append(bottlenecks, models.Finding{
				Kind:       models.KindNestedLoops,
				Title:      "Nested Loops",
				Line:       n,
				Impact:     Quadratic,
				Suggestion: "Use a data structure suited to the lookup",
				Severity:   models.SeverityWarning,
			})
		}
		if java && strings.Contains(line, "+=") && strings.Contains(line, "String") {
			bottlenecks = append(bottlenecks, models.Finding{
				Kind:       models.KindStringConcatInLoop,
				Title:      "String Concatenation in Loop",
				Line:       n,
				Impact:     Quadratic,
				Suggestion: "Use StringBuilder",
				Severity:   models.SeverityWarning,
			})
		}
	}

	score := max(MinScore, 100-len(bottlenecks)*bottleneckPenalty)
	return models.PerformanceReport{
		Score:       score,
		Level:       Level(score),
		Bottlenecks: bottlenecks,
		Complexity:  dominant(bottlenecks),
		Strengths:   strengths(text),
	}
}

// window returns text[n*stride-size : n*stride], clamped to the text.
func window(text string, n int) string {
	end := min(len(text), n*windowStride)
	start := max(0, n*windowStride-windowSize)
	if start >= end {
		return ""
	}
	return text[start:end]
}

// Level maps a performance score to a label.
func Level(score int) string {
	switch {
	case score >= 85:
		return "Excellent"
	case score >= 70:
		return "Good"
	default:
		return "Needs optimization"
	}
}

func dominant(bottlenecks []models.Finding) string {
	if len(bottlenecks) == 0 {
		return Constant
	}
	for _, b := range bottlenecks {
		if b.Impact == Quadratic {
			return Quadratic
		}
	}
	return Linear
}

func strengths(code string) []string {
	var out []string
	if strings.Contains(code, "StringBuilder") || strings.Contains(code, "StringBuffer") {
		out = append(out, "Uses StringBuilder")
	}
	if strings.Contains(code, "HashMap") || strings.Contains(code, "dict") {
		out = append(out, "Efficient data structures")
	}
	if len(out) == 0 {
		out = append(out, "No major bottleneck detected")
	}
	return out
}
