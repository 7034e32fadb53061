// Package complexity estimates cyclomatic complexity, maintainability and
// verbatim line duplication from keyword counts.
package complexity

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"

	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/patterns"
	"github.com/panbanda/probe/pkg/source"
)

const (
	// MinScore and MaxScore bound the composite score.
	MinScore = 50
	MaxScore = 100

	minMaintainability = 50

	// minDuplicateLength is the trimmed length a line must exceed to take
	// part in the duplication estimate.
	minDuplicateLength = 10
)

// Levels by normalized cyclomatic complexity.
const (
	LevelSimple  = "Simple"
	LevelMedium  = "Medium"
	LevelComplex = "Complex"
)

// Analyzer computes complexity metrics.
type Analyzer struct {
	mediumThreshold  float64
	complexThreshold float64
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithLevelThresholds sets the cyclomatic values at which a unit becomes
// Medium and Complex.
func WithLevelThresholds(medium, complex float64) Option {
	return func(a *Analyzer) {
		if medium > 0 && complex > medium {
			a.mediumThreshold = medium
			a.complexThreshold = complex
		}
	}
}

// New creates a complexity analyzer with default options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		mediumThreshold:  5,
		complexThreshold: 10,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes the complexity report for unit.
func (a *Analyzer) Analyze(unit *source.Unit, facts extract.Result) models.ComplexityReport {
	cyclomatic := Cyclomatic(unit.Text(), facts.FunctionCount)
	loc := LinesOfCode(unit.Lines())

	maintainability := math.Max(minMaintainability, 100-cyclomatic*3-float64(loc)/10)
	score := int((maintainability + (100 - cyclomatic*5)) / 2)
	score = max(MinScore, min(MaxScore, score))

	return models.ComplexityReport{
		Score:           score,
		Cyclomatic:      math.Round(cyclomatic*10) / 10,
		Maintainability: int(maintainability),
		Duplication:     Duplication(unit.Lines()),
		LinesOfCode:     loc,
		Functions:       facts.FunctionCount,
		Level:           a.level(cyclomatic),
	}
}

func (a *Analyzer) level(cyclomatic float64) string {
	switch {
	case cyclomatic < a.mediumThreshold:
		return LevelSimple
	case cyclomatic < a.complexThreshold:
		return LevelMedium
	default:
		return LevelComplex
	}
}

// Cyclomatic returns one plus the number of branching tokens in text,
// divided by max(1, functions).
func Cyclomatic(text string, functions int) float64 {
	total := 1
	for _, re := range patterns.Branching {
		total += len(re.FindAllStringIndex(text, -1))
	}
	return float64(total) / float64(max(1, functions))
}

// LinesOfCode counts non-blank lines that do not start a comment.
func LinesOfCode(lines []string) int {
	loc := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") {
			continue
		}
		loc++
	}
	return loc
}

// Duplication returns the percentage of non-trivial lines that repeat an
// earlier line verbatim after trimming. The scan keeps a hash per distinct
// line, so it is linear in the number of lines.
func Duplication(lines []string) int {
	seen := make(map[uint64]struct{}, len(lines))
	duplicated := roaring.New()
	total := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if utf8.RuneCountInString(trimmed) <= minDuplicateLength {
			continue
		}
		total++
		h := xxhash.Sum64String(trimmed)
		if _, ok := seen[h]; ok {
			duplicated.Add(uint32(i))
			continue
		}
		seen[h] = struct{}{}
	}

	return int(float64(duplicated.GetCardinality()) / float64(max(1, total)) * 100)
}
