package smells

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/source"
)

func analyze(a *Analyzer, src, filename string) models.SmellReport {
	unit := source.New(src, filename)
	return a.Analyze(unit, extract.Extract(unit))
}

func kinds(r models.SmellReport) []models.Kind {
	out := make([]models.Kind, 0, len(r.Smells))
	for _, s := range r.Smells {
		out = append(out, s.Kind)
	}
	return out
}

// lines returns a Python file of exactly n lines.
func lines(n int) string {
	return strings.Repeat("pass\n", n-1) + "pass"
}

// busyFunction returns a script function whose body holds n if statements.
func busyFunction(name string, n int) string {
	return fmt.Sprintf("function %s(a) {\n%s}\n", name, strings.Repeat("  if (a) { a--; }\n", n))
}

func TestSmellAnalyzer_FileSize(t *testing.T) {
	tests := []struct {
		lines   int
		want    []models.Kind
		score   int
		penalty int
	}{
		{300, []models.Kind{}, 100, 0},
		{301, []models.Kind{models.KindLargeFile}, 95, 5},
		{500, []models.Kind{models.KindLargeFile}, 95, 5},
		{501, []models.Kind{models.KindGodClass}, 90, 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.lines), func(t *testing.T) {
			r := analyze(New(), lines(tt.lines), "big.py")
			assert.Equal(t, tt.want, kinds(r))
			assert.Equal(t, tt.score, r.Score)
			assert.Equal(t, tt.penalty, r.Penalties)
			assert.Equal(t, tt.lines, r.LinesPerFunction)
		})
	}

	r := analyze(New(), lines(501), "big.py")
	assert.Equal(t, models.SeverityHigh, r.Smells[0].Severity)
	assert.Equal(t, 1, r.HighSeverityCount)
	assert.Equal(t, "big.py", r.Smells[0].Location)
}

func TestSmellAnalyzer_MethodLength(t *testing.T) {
	body := func(n int) string {
		return "class A {\n  int f() {\n" + strings.Repeat("    x++;\n", n) + "  }\n}\n"
	}

	// The span runs from the header line to the closing brace line.
	r := analyze(New(), body(29), "A.java")
	assert.Equal(t, []models.Kind{}, kinds(r))

	r = analyze(New(), body(30), "A.java")
	require.Equal(t, []models.Kind{models.KindLongMethod}, kinds(r))
	assert.Equal(t, "f", r.Smells[0].Location)
	assert.Equal(t, "31 lines", r.Smells[0].Detail)
	assert.Equal(t, 96, r.Score)

	r = analyze(New(), body(50), "A.java")
	require.Equal(t, []models.Kind{models.KindVeryLongMethod}, kinds(r))
	assert.Equal(t, models.SeverityHigh, r.Smells[0].Severity)
	assert.Equal(t, 92, r.Score)
}

func TestSmellAnalyzer_WithMethodLengths(t *testing.T) {
	src := "class A {\n  int f() {\n" + strings.Repeat("    x++;\n", 5) + "  }\n}\n"

	r := analyze(New(WithMethodLengths(5, 10)), src, "A.java")
	assert.Equal(t, []models.Kind{models.KindLongMethod}, kinds(r))

	// Inverted thresholds are ignored.
	r = analyze(New(WithMethodLengths(10, 5)), src, "A.java")
	assert.Equal(t, []models.Kind{}, kinds(r))
}

func TestSmellAnalyzer_MagicNumbers(t *testing.T) {
	r := analyze(New(), strings.Repeat("x = 10;\n", 6), "a.py")
	assert.Equal(t, []models.Kind{models.KindMagicNumbers}, kinds(r))
	assert.Equal(t, 3, r.Penalties)

	// Four or five numbers cost points without a smell.
	r = analyze(New(), strings.Repeat("x = 10;\n", 4), "a.py")
	assert.Empty(t, r.Smells)
	assert.Equal(t, 2, r.Penalties)
	assert.Equal(t, 98, r.Score)
}

func TestSmellAnalyzer_SelfAlias(t *testing.T) {
	r := analyze(New(), "const that = this;\nconst self = this;\n", "a.ts")
	require.Equal(t, []models.Kind{models.KindSelfAlias}, kinds(r))
	assert.Equal(t, 4, r.Penalties)
	assert.Equal(t, 96, r.Score)
}

func TestDuplication(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"empty", "", 0},
		{"repeated call", strings.Repeat("a.fetch(x);\n", 5), 1},
		{"call below threshold", strings.Repeat("a.fetch(x);\n", 4), 0},
		{"ignored call", strings.Repeat("console.log(x);\n", 5), 0},
		{"repeated if block", strings.Repeat("if (a) { return 12345; }\n", 2), 2},
		{"assignment shape", "a.x = 1;\nb.x = 1;\nc.x = 1;\nd.x = 1;\ne.x = 1;\nf.x = 1;\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Duplication(tt.code); got != tt.want {
				t.Errorf("Duplication() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSmellAnalyzer_CodeDuplication(t *testing.T) {
	src := strings.Repeat("a.f(x);\n", 5) + strings.Repeat("a.g(y);\n", 5) +
		strings.Repeat("if (a) { return 12345; }\n", 2)
	r := analyze(New(), src, "dup.py")

	require.Equal(t, []models.Kind{models.KindCodeDuplication}, kinds(r))
	assert.Equal(t, "4 similar code blocks", r.Smells[0].Detail)
	assert.Equal(t, 8, r.Penalties)
}

func TestSmellAnalyzer_ImplicitGlobals(t *testing.T) {
	src := strings.Repeat("# padding line here\n", 15) +
		"scheduler.run()\nmoment().format()\n$('#x').hide()\n"
	r := analyze(New(), src, "a.py")

	require.Equal(t, []models.Kind{models.KindImplicitGlobals}, kinds(r))
	assert.Equal(t, "Global dependencies: scheduler, moment, jQuery", r.Smells[0].Detail)
	assert.Equal(t, 6, r.Penalties)

	// Mentioning a dependency up front makes it explicit.
	r = analyze(New(), "import scheduler\n"+src, "a.py")
	require.Equal(t, []models.Kind{models.KindImplicitGlobals}, kinds(r))
	assert.Equal(t, "Global dependencies: moment, jQuery", r.Smells[0].Detail)

	r = analyze(New(), "import scheduler, moment\n"+src, "a.py")
	assert.Empty(t, r.Smells)
}

func TestSmellAnalyzer_ComplexFunctions(t *testing.T) {
	r := analyze(New(), busyFunction("busy", 12), "a.js")
	require.Equal(t, []models.Kind{models.KindComplexFunction}, kinds(r))
	assert.Equal(t, "busy", r.Smells[0].Location)
	assert.Equal(t, models.SeverityMedium, r.Smells[0].Severity)
	assert.Equal(t, 2, r.Penalties)

	r = analyze(New(), busyFunction("busy", 16), "a.js")
	require.Equal(t, []models.Kind{models.KindComplexFunction}, kinds(r))
	assert.Equal(t, models.SeverityHigh, r.Smells[0].Severity)
	assert.Equal(t, 3, r.Penalties)

	// Only script files are checked.
	r = analyze(New(), busyFunction("busy", 16), "a.py")
	assert.Empty(t, r.Smells)
}

func TestComplexFunctionsTopThree(t *testing.T) {
	src := busyFunction("a", 11) + busyFunction("b", 14) + busyFunction("c", 20) +
		busyFunction("d", 12) + busyFunction("e", 5)

	got := New().ComplexFunctions(src)
	assert.Equal(t, []ComplexFunction{
		{Name: "c", Complexity: 21},
		{Name: "b", Complexity: 15},
		{Name: "d", Complexity: 13},
	}, got)
}

func TestSmellAnalyzer_Callbacks(t *testing.T) {
	cb := "run(function () {\n});\n"

	r := analyze(New(), strings.Repeat(cb, 3), "a.py")
	require.Equal(t, []models.Kind{models.KindInlineCallbacks}, kinds(r))
	assert.Equal(t, models.SeverityLow, r.Smells[0].Severity)
	assert.Equal(t, 2, r.Penalties)

	r = analyze(New(), strings.Repeat(cb, 7), "a.py")
	require.Equal(t, []models.Kind{models.KindCallbackNesting}, kinds(r))
	assert.Equal(t, 7, r.Penalties)
}

func TestSmellAnalyzer_VarDeclarations(t *testing.T) {
	r := analyze(New(), "var a = 1;\nvar b = 2;\n", "a.js")
	require.Equal(t, []models.Kind{models.KindOutdatedVar}, kinds(r))
	assert.Equal(t, 2, r.Penalties)

	src := strings.Repeat("var a = 1;\n", 6) + "const b = 2;\n"
	r = analyze(New(), src, "a.js")
	require.Equal(t, []models.Kind{models.KindMixedDeclarations}, kinds(r))
	assert.Equal(t, models.SeverityLow, r.Smells[0].Severity)

	// TypeScript is not checked for var.
	r = analyze(New(), "var a = 1;\n", "a.ts")
	assert.Empty(t, r.Smells)
}

func TestSmellAnalyzer_DeepNesting(t *testing.T) {
	r := analyze(New(), "a {\n b {\n  c {\n   d {\n    e {\n    }\n   }\n  }\n }\n}\n", "a.py")
	require.Equal(t, []models.Kind{models.KindDeepNesting}, kinds(r))
	assert.Equal(t, 4, r.Penalties)

	r = analyze(New(), "a { b { c { d { } } } }", "a.py")
	assert.Empty(t, r.Smells)
}

func TestScore(t *testing.T) {
	tests := []struct {
		penalties, high, count, want int
	}{
		{0, 0, 0, 100},
		{70, 0, 0, MinScore},
		{10, 2, 2, 75},
		{0, 3, 3, 65},
		{0, 0, 5, 70},
		{40, 3, 5, 60},
	}
	for _, tt := range tests {
		if got := Score(tt.penalties, tt.high, tt.count); got != tt.want {
			t.Errorf("Score(%d, %d, %d) = %d, want %d", tt.penalties, tt.high, tt.count, got, tt.want)
		}
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, LevelExcellent, Level(85))
	assert.Equal(t, LevelGood, Level(70))
	assert.Equal(t, LevelAcceptable, Level(55))
	assert.Equal(t, LevelNeedsWork, Level(54))
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, "Clean, well-structured code", Verdict(90, 0, 0))
	assert.Equal(t, "Acceptable quality with room for improvement", Verdict(70, 2, 0))
	assert.Equal(t, "2 major issue(s) to fix first", Verdict(60, 4, 2))
	assert.Equal(t, "Several code smells detected, refactoring recommended", Verdict(60, 4, 0))
	assert.Equal(t, "Insufficient quality: 7 problems detected, 3 critical", Verdict(45, 7, 3))
}

func TestLinesPerFunction(t *testing.T) {
	src := "class A {\n  int a() {\n    return 1;\n  }\n  int b() {\n    int x = 1;\n    x++;\n    return x;\n  }\n}\n"
	r := analyze(New(), src, "A.java")
	assert.Equal(t, 3, r.LinesPerFunction)
}

func TestStrengths(t *testing.T) {
	assert.Equal(t, []string{
		"Reasonable file size",
		"Short, focused functions",
		"Uses const (no var)",
		"Modern arrow functions",
	}, strengths("const a = 1;\nconst f = () => a;", 2, 1))
	assert.Equal(t, []string{"Few strengths detected"}, strengths("", 250, 0))
}
