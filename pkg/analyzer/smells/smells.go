// Package smells detects code smells: oversized methods and files, legacy
// idioms, repeated code, hidden globals and tangled script functions.
// Every rule adds a fixed penalty, and the final score is capped further
// when many or severe smells are present.
package smells

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/parser"
	"github.com/panbanda/probe/pkg/patterns"
	"github.com/panbanda/probe/pkg/source"
)

const (
	// MinScore is the floor of the smell score.
	MinScore = 45

	maxComplexFunctions = 3
	complexBodyLength   = 500
	globalPrefix        = 200
	jqueryPrefix        = 300
)

// Analyzer detects code smells.
// This analyzer is safe for concurrent use.
type Analyzer struct {
	thresholds Thresholds
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThresholds sets custom detection thresholds. Inconsistent thresholds
// are ignored.
func WithThresholds(thresholds Thresholds) Option {
	return func(a *Analyzer) {
		if thresholds.valid() {
			a.thresholds = thresholds
		}
	}
}

// WithMethodLengths sets the long and very long method thresholds.
func WithMethodLengths(long, veryLong int) Option {
	return func(a *Analyzer) {
		t := a.thresholds
		t.LongMethod, t.VeryLongMethod = long, veryLong
		if t.valid() {
			a.thresholds = t
		}
	}
}

// New creates a new smell analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// detection accumulates smells and their penalty.
type detection struct {
	smells    []models.Finding
	penalties int
}

func (d *detection) add(f models.Finding, penalty int) {
	d.smells = append(d.smells, f)
	d.penalties += penalty
}

// Analyze runs every smell rule over unit.
func (a *Analyzer) Analyze(unit *source.Unit, facts extract.Result) models.SmellReport {
	code := unit.Text()
	lang := unit.Language()
	lengths := extract.FunctionLengths(facts, lang)

	d := &detection{smells: []models.Finding{}}
	a.methodLength(d, lengths)
	a.fileSize(d, unit)
	magicNumbers(d, code)
	selfAlias(d, unit.Filename(), code)
	duplicationSmell(d, unit.Filename(), code)
	implicitGlobals(d, unit.Filename(), code)
	if lang.Script() {
		a.complexFunctions(d, code)
	}
	scriptStructure(d, unit.Filename(), code)
	if lang == parser.LangJavaScript {
		varDeclarations(d, unit.Filename(), code)
	}
	deepNesting(d, unit.Filename(), code)

	high := models.CountSeverity(d.smells, models.SeverityHigh)
	score := Score(d.penalties, high, len(d.smells))

	return models.SmellReport{
		Score:             score,
		Level:             Level(score),
		Smells:            d.smells,
		SmellsCount:       len(d.smells),
		HighSeverityCount: high,
		LinesPerFunction:  linesPerFunction(lengths, unit.LineCount()),
		Penalties:         d.penalties,
		Strengths:         strengths(code, unit.LineCount(), facts.FunctionCount),
		Verdict:           Verdict(score, len(d.smells), high),
	}
}

// Score turns accumulated penalties into the smell score. Two or more high
// severity smells cap it at 75, three or more at 65, and five or more
// smells of any severity at 70.
func Score(penalties, high, count int) int {
	score := max(MinScore, 100-penalties)
	switch {
	case high >= 3:
		score = min(score, 65)
	case high >= 2:
		score = min(score, 75)
	}
	if count >= 5 {
		score = min(score, 70)
	}
	return score
}

func (a *Analyzer) methodLength(d *detection, lengths []extract.FunctionLength) {
	for _, fl := range lengths {
		switch {
		case fl.Lines > a.thresholds.VeryLongMethod:
			d.add(models.Finding{
				Kind:       models.KindVeryLongMethod,
				Title:      "Very Long Method",
				Location:   fl.Name,
				Detail:     fmt.Sprintf("%d lines (recommended max: %d)", fl.Lines, a.thresholds.LongMethod),
				Suggestion: "Split into smaller methods",
				Severity:   models.SeverityHigh,
			}, 8)
		case fl.Lines > a.thresholds.LongMethod:
			d.add(models.Finding{
				Kind:       models.KindLongMethod,
				Title:      "Long Method",
				Location:   fl.Name,
				Detail:     fmt.Sprintf("%d lines", fl.Lines),
				Suggestion: "Split into smaller methods",
				Severity:   models.SeverityMedium,
			}, 4)
		}
	}
}

func (a *Analyzer) fileSize(d *detection, unit *source.Unit) {
	lines := unit.LineCount()
	switch {
	case lines > a.thresholds.GodClass:
		d.add(models.Finding{
			Kind:       models.KindGodClass,
			Title:      "God Class",
			Location:   unit.Filename(),
			Detail:     fmt.Sprintf("%d lines", lines),
			Suggestion: "Split into smaller modules",
			Severity:   models.SeverityHigh,
		}, 10)
	case lines > a.thresholds.LargeFile:
		d.add(models.Finding{
			Kind:       models.KindLargeFile,
			Title:      "Large File",
			Location:   unit.Filename(),
			Detail:     fmt.Sprintf("%d lines", lines),
			Suggestion: "Consider splitting this file",
			Severity:   models.SeverityMedium,
		}, 5)
	}
}

func magicNumbers(d *detection, code string) {
	n := len(patterns.MagicNumber.FindAllStringIndex(code, -1))
	switch {
	case n > 5:
		d.add(models.Finding{
			Kind:       models.KindMagicNumbers,
			Title:      "Magic Numbers",
			Location:   "Multiple",
			Detail:     fmt.Sprintf("%d magic numbers", n),
			Suggestion: "Use named constants",
			Severity:   models.SeverityMedium,
		}, 3)
	case n > 3:
		d.penalties += 2
	}
}

func selfAlias(d *detection, filename, code string) {
	n := len(patterns.SelfAlias.FindAllStringIndex(code, -1))
	if n == 0 {
		return
	}
	d.add(models.Finding{
		Kind:       models.KindSelfAlias,
		Title:      `Outdated "that = this" Pattern`,
		Location:   filename,
		Detail:     fmt.Sprintf("%d occurrences of _that/that/self = this", n),
		Suggestion: "Use arrow functions or .bind(this)",
		Severity:   models.SeverityMedium,
	}, 2*n)
}

func duplicationSmell(d *detection, filename, code string) {
	n := Duplication(code)
	if n <= 3 {
		return
	}
	d.add(models.Finding{
		Kind:       models.KindCodeDuplication,
		Title:      "Code Duplication",
		Location:   filename,
		Detail:     fmt.Sprintf("%d similar code blocks", n),
		Suggestion: "Extract reusable functions",
		Severity:   models.SeverityHigh,
	}, min(10, 2*n))
}

// Duplication scores repeated code: one point per call signature seen more
// than four times, two points when any short if-block repeats verbatim,
// and one point per member assignment shape seen more than five times.
func Duplication(code string) int {
	count := 0

	calls := make(map[string]int)
	for _, call := range patterns.CallSignature.FindAllString(code, -1) {
		if ignoredCall(call) {
			continue
		}
		calls[call]++
	}
	for _, n := range calls {
		if n > 4 {
			count++
		}
	}

	seen := make(map[string]struct{})
	for _, block := range patterns.ShortIfBlock.FindAllString(code, -1) {
		if _, ok := seen[block]; ok {
			count += 2
			break
		}
		seen[block] = struct{}{}
	}

	shapes := make(map[string]int)
	for _, assign := range patterns.MemberAssignment.FindAllString(code, -1) {
		shapes[patterns.MemberPrefix.ReplaceAllString(assign, ".")]++
	}
	for _, n := range shapes {
		if n > 5 {
			count++
		}
	}
	return count
}

func ignoredCall(call string) bool {
	name, _, _ := strings.Cut(call, "(")
	return patterns.IgnoredCalls[name+"("]
}

func implicitGlobals(d *detection, filename, code string) {
	var deps []string
	if strings.Contains(code, "scheduler.") && !strings.Contains(prefix(code, globalPrefix), "scheduler") {
		deps = append(deps, "scheduler")
	}
	if strings.Contains(code, "moment(") && !strings.Contains(prefix(code, globalPrefix), "moment") {
		deps = append(deps, "moment")
	}
	if patterns.SelectorCall.MatchString(code) && !strings.Contains(strings.ToLower(prefix(code, jqueryPrefix)), "jquery") {
		deps = append(deps, "jQuery")
	}
	if len(deps) < 2 {
		return
	}
	d.add(models.Finding{
		Kind:       models.KindImplicitGlobals,
		Title:      "Implicit Global Dependencies",
		Location:   filename,
		Detail:     "Global dependencies: " + strings.Join(deps, ", "),
		Suggestion: "Inject dependencies explicitly",
		Severity:   models.SeverityMedium,
	}, 2*len(deps))
}

func (a *Analyzer) complexFunctions(d *detection, code string) {
	for _, cf := range a.ComplexFunctions(code) {
		high := cf.Complexity > a.thresholds.HighComplexity
		severity, penalty := models.SeverityMedium, 2
		if high {
			severity, penalty = models.SeverityHigh, 3
		}
		d.add(models.Finding{
			Kind:       models.KindComplexFunction,
			Title:      "Function Too Complex",
			Location:   cf.Name,
			Detail:     fmt.Sprintf("Cyclomatic complexity ~ %d", cf.Complexity),
			Suggestion: "Split into simpler functions",
			Severity:   severity,
		}, penalty)
	}
}

// ComplexFunctions returns up to three script functions whose branching
// exceeds the complex-function threshold, most complex first. A body runs
// from the header to the next header, or 500 bytes for the last one.
func (a *Analyzer) ComplexFunctions(code string) []ComplexFunction {
	matches := patterns.ComplexScriptFunc.FindAllStringSubmatchIndex(code, -1)

	var out []ComplexFunction
	for i, m := range matches {
		name := firstGroup(code, m)
		if name == "" {
			name = fmt.Sprintf("anonymous_%d", i)
		}
		start, end := m[1], min(len(code), m[1]+complexBodyLength)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		complexity := 1
		for _, re := range patterns.FunctionBranching {
			complexity += len(re.FindAllStringIndex(code[start:end], -1))
		}
		if complexity > a.thresholds.ComplexFunction {
			out = append(out, ComplexFunction{Name: name, Complexity: complexity})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Complexity > out[j].Complexity
	})
	if len(out) > maxComplexFunctions {
		out = out[:maxComplexFunctions]
	}
	return out
}

// firstGroup returns the first non-empty capture group of a match.
func firstGroup(code string, m []int) string {
	for g := 1; 2*g+1 < len(m); g++ {
		if m[2*g] >= 0 && m[2*g+1] > m[2*g] {
			return code[m[2*g]:m[2*g+1]]
		}
	}
	return ""
}

func scriptStructure(d *detection, filename, code string) {
	callbacks := count(patterns.InlineCallback, code)
	switch {
	case callbacks > 5:
		d.add(models.Finding{
			Kind:       models.KindCallbackNesting,
			Title:      "Callback Hell",
			Location:   "Multiple",
			Detail:     fmt.Sprintf("%d inline callbacks", callbacks),
			Suggestion: "Extract named functions or use async/await",
			Severity:   models.SeverityHigh,
		}, min(10, callbacks))
	case callbacks > 2:
		d.add(models.Finding{
			Kind:       models.KindInlineCallbacks,
			Title:      "Inline Callbacks",
			Location:   "Multiple",
			Detail:     fmt.Sprintf("%d callbacks", callbacks),
			Suggestion: "Prefer named functions",
			Severity:   models.SeverityLow,
		}, 2)
	}

	if n := count(patterns.SelectorCallArgs, code); n > 20 {
		d.add(models.Finding{
			Kind:       models.KindSelectorCoupling,
			Title:      "Tight jQuery Coupling",
			Location:   filename,
			Detail:     fmt.Sprintf("%d jQuery calls", n),
			Suggestion: "Move DOM logic into helpers",
			Severity:   models.SeverityMedium,
		}, 5)
	}

	if count(patterns.EventWiring, code) > 5 && count(patterns.BusinessLogic, code) > 10 {
		d.add(models.Finding{
			Kind:       models.KindMixedConcerns,
			Title:      "Mixed Concerns",
			Location:   filename,
			Detail:     "UI events mixed with business logic",
			Suggestion: "Separate business logic from UI handlers",
			Severity:   models.SeverityHigh,
		}, 8)
	}

	if n := count(patterns.TopLevelVar, code); n > 10 {
		d.add(models.Finding{
			Kind:       models.KindTooManyGlobals,
			Title:      "Too Many Global Variables",
			Location:   filename,
			Detail:     fmt.Sprintf("%d variables declared with var", n),
			Suggestion: "Use const/let and encapsulate in modules",
			Severity:   models.SeverityMedium,
		}, 4)
	}
}

func varDeclarations(d *detection, filename, code string) {
	vars := count(patterns.VarDecl, code)
	scoped := count(patterns.BlockScopedDecl, code)
	switch {
	case vars > 0 && scoped == 0:
		d.add(models.Finding{
			Kind:       models.KindOutdatedVar,
			Title:      `Outdated "var" Usage`,
			Location:   filename,
			Detail:     fmt.Sprintf("%d var declarations (0 const/let)", vars),
			Suggestion: "Use const for constants and let for variables",
			Severity:   models.SeverityMedium,
		}, min(6, vars))
	case vars > 5:
		d.add(models.Finding{
			Kind:       models.KindMixedDeclarations,
			Title:      "Mixed var/const/let",
			Location:   filename,
			Detail:     fmt.Sprintf("%d var vs %d const/let", vars, scoped),
			Suggestion: "Migrate every var to const/let",
			Severity:   models.SeverityLow,
		}, 2)
	}
}

func deepNesting(d *detection, filename, code string) {
	n := count(patterns.DeepNesting, code)
	if n == 0 {
		return
	}
	d.add(models.Finding{
		Kind:       models.KindDeepNesting,
		Title:      "Deep Nesting",
		Location:   filename,
		Detail:     fmt.Sprintf("%d deeply nested blocks", n),
		Suggestion: "Extract functions and return early",
		Severity:   models.SeverityMedium,
	}, 4)
}

func linesPerFunction(lengths []extract.FunctionLength, lineCount int) int {
	if len(lengths) == 0 {
		return lineCount
	}
	values := make([]float64, len(lengths))
	for i, fl := range lengths {
		values[i] = float64(fl.Lines)
	}
	return int(stat.Mean(values, nil))
}

func strengths(code string, lineCount, functions int) []string {
	var out []string
	if lineCount < 200 {
		out = append(out, "Reasonable file size")
	}
	if functions > 0 && lineCount/functions < 20 {
		out = append(out, "Short, focused functions")
	}
	if strings.Contains(code, "const ") && !strings.Contains(code, "var ") {
		out = append(out, "Uses const (no var)")
	}
	if strings.Contains(code, "=>") {
		out = append(out, "Modern arrow functions")
	}
	if len(out) == 0 {
		out = append(out, "Few strengths detected")
	}
	return out
}

// Verdict summarizes a smell score.
func Verdict(score, smells, high int) string {
	switch {
	case score >= 85:
		return "Clean, well-structured code"
	case score >= 70:
		return "Acceptable quality with room for improvement"
	case score >= 55:
		if high > 0 {
			return fmt.Sprintf("%d major issue(s) to fix first", high)
		}
		return "Several code smells detected, refactoring recommended"
	default:
		return fmt.Sprintf("Insufficient quality: %d problems detected, %d critical", smells, high)
	}
}

func count(re *regexp.Regexp, s string) int {
	return len(re.FindAllStringIndex(s, -1))
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
