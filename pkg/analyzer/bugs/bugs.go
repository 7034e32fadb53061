// Package bugs detects likely defects with per-language line rules.
package bugs

import (
	"strings"

	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/parser"
	"github.com/panbanda/probe/pkg/source"
)

const (
	// MinScore is the floor of the bug score.
	MinScore = 50

	criticalPenalty = 15
	warningPenalty  = 5

	defaultExcerptLength = 60
	defaultLongFunction  = 50
	longFunctionWindow   = 100
	lookbehindBytes      = 100
)

// Analyzer runs the bug rules for a unit's language.
type Analyzer struct {
	excerptLength int
	longFunction  int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithExcerptLength sets the maximum length of code excerpts.
func WithExcerptLength(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.excerptLength = n
		}
	}
}

// WithLongFunctionLines sets the line count above which a script function
// is reported as too long.
func WithLongFunctionLines(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.longFunction = n
		}
	}
}

// New creates a bug analyzer with default options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		excerptLength: defaultExcerptLength,
		longFunction:  defaultLongFunction,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze applies the rules of the unit's language to every line.
func (a *Analyzer) Analyze(unit *source.Unit, _ extract.Result) models.BugReport {
	rules := rulesFor(unit.Language())

	issues := []models.Finding{}
	lines := unit.Lines()
	for i, line := range lines {
		c := &lineContext{
			analyzer: a,
			text:     unit.Text(),
			lines:    lines,
			n:        i + 1,
			line:     line,
		}
		for _, r := range rules {
			detail, ok := r.check(c)
			if !ok {
				continue
			}
			issues = append(issues, models.Finding{
				Kind:       r.kind,
				Title:      r.title,
				Line:       c.n,
				Code:       models.Excerpt(line, a.excerptLength),
				Detail:     detail,
				Suggestion: r.suggestion,
				Severity:   r.severity,
			})
		}
	}

	penalty := models.CountSeverity(issues, models.SeverityCritical)*criticalPenalty +
		models.CountSeverity(issues, models.SeverityWarning)*warningPenalty

	return models.BugReport{
		Score:       max(MinScore, 100-penalty),
		Issues:      issues,
		Strengths:   strengths(unit),
		Suggestions: suggestions(issues),
		TotalIssues: len(issues),
	}
}

func rulesFor(lang parser.Language) []rule {
	switch lang {
	case parser.LangJava:
		return javaRules
	case parser.LangPython:
		return pythonRules
	case parser.LangTypeScript, parser.LangJavaScript:
		return scriptRules
	default:
		return nil
	}
}

func strengths(unit *source.Unit) []string {
	code := unit.Text()
	var out []string
	switch unit.Language() {
	case parser.LangJava:
		if strings.Contains(code, "@Override") {
			out = append(out, "Correct use of @Override")
		}
		if strings.Contains(code, "private") {
			out = append(out, "Encapsulation with private members")
		}
		if strings.Contains(code, "final") {
			out = append(out, "final used for immutability")
		}
		if strings.Contains(code, "try") && (strings.Contains(code, "catch") || strings.Contains(code, "finally")) {
			out = append(out, "Exception handling present")
		}
		if len(out) == 0 {
			out = append(out, "Standard Java conventions respected")
		}
	case parser.LangPython:
		if strings.Contains(code, "def ") {
			out = append(out, "Well-defined functions")
		}
		if strings.Contains(code, `"""`) || strings.Contains(code, "'''") {
			out = append(out, "Docstrings present")
		}
		if strings.Contains(code, "typing") || strings.Contains(code, ": ") {
			out = append(out, "Type hints used")
		}
		if len(out) == 0 {
			out = append(out, "Readable Python code")
		}
	case parser.LangTypeScript, parser.LangJavaScript:
		if strings.Contains(code, "use strict") {
			out = append(out, "Strict mode enabled")
		}
		if strings.Contains(code, "const ") {
			out = append(out, "const used for immutability")
		}
		if strings.Contains(code, "async") && strings.Contains(code, "await") {
			out = append(out, "async/await for clean asynchronous code")
		}
		if strings.Contains(code, "try") && strings.Contains(code, "catch") {
			out = append(out, "Error handling present")
		}
		if strings.Contains(code, "===") {
			out = append(out, "Strict comparisons used")
		}
		if !strings.Contains(code, "prototype") && strings.Contains(code, "class ") {
			out = append(out, "Modern ES6 classes")
		}
		if len(out) == 0 {
			out = append(out, "Standard JavaScript code")
		}
	}
	if len(out) == 0 {
		out = append(out, "Code structure correct")
	}
	return out
}

func suggestions(issues []models.Finding) []string {
	has := func(kinds ...models.Kind) bool {
		for _, f := range issues {
			for _, k := range kinds {
				if f.Kind == k {
					return true
				}
			}
		}
		return false
	}

	var out []string
	if has(models.KindNullPointerRisk) {
		out = append(out, "Add systematic null checks")
	}
	if has(models.KindResourceLeak) {
		out = append(out, "Use try-with-resources or context managers")
	}
	if has(models.KindNullPointerRisk, models.KindGenericException, models.KindBareExcept) {
		out = append(out, "Improve exception handling")
	}
	if len(out) == 0 {
		out = append(out, "Keep following good practices")
	}
	return out
}
