package bugs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/source"
)

func analyze(t *testing.T, src, filename string, opts ...Option) models.BugReport {
	t.Helper()
	unit := source.New(src, filename)
	return New(opts...).Analyze(unit, extract.Extract(unit))
}

func kinds(findings []models.Finding) []models.Kind {
	var out []models.Kind
	for _, f := range findings {
		out = append(out, f.Kind)
	}
	return out
}

func TestNewWithOptions(t *testing.T) {
	a := New(WithExcerptLength(10), WithLongFunctionLines(20))
	if a.excerptLength != 10 {
		t.Errorf("excerptLength = %d, want 10", a.excerptLength)
	}
	if a.longFunction != 20 {
		t.Errorf("longFunction = %d, want 20", a.longFunction)
	}

	a = New(WithExcerptLength(0))
	assert.Equal(t, defaultExcerptLength, a.excerptLength)
}

func TestJavaRules(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []models.Kind
	}{
		{"null risk", "if (user.getName() != null) {", []models.Kind{models.KindNullPointerRisk}},
		{"resource leak", "FileInputStream in = new FileInputStream(path);", []models.Kind{models.KindResourceLeak}},
		{"generic catch", "} catch (Exception e) {", []models.Kind{models.KindGenericException}},
		{"string identity", `if (name == "admin") {`, []models.Kind{models.KindStringIdentity}},
		{"string identity reversed", `boolean b = "x" == s;`, []models.Kind{models.KindStringIdentity}},
		{"division", "int avg = total / count;", []models.Kind{models.KindDivisionByZero}},
		{"division guarded", "if (count > 0) avg = total / count;", nil},
		{"division in comment", "// total / count", nil},
		{"division in string", `String p = "a/b" + x / y;`, nil},
		{"annotation", `@RequestMapping(value / path)`, nil},
		{"clean", "return a + b;", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := analyze(t, "class A {\n"+tt.line+"\n}", "A.java")
			assert.Equal(t, tt.want, kinds(report.Issues))
		})
	}
}

func TestJavaResourceInsideTry(t *testing.T) {
	src := "void read() throws IOException {\n    try {\n        BufferedReader r = new BufferedReader(new FileReader(p));\n    } finally {\n    }\n}"
	report := analyze(t, src, "R.java")
	assert.NotContains(t, kinds(report.Issues), models.KindResourceLeak)
}

func TestPythonRules(t *testing.T) {
	src := "def add(item, bucket=[]):\n    try:\n        return eval(item)\n    except:\n        pass\n"
	report := analyze(t, src, "m.py")

	require.Len(t, report.Issues, 3)
	assert.Equal(t, models.KindMutableDefault, report.Issues[0].Kind)
	assert.Equal(t, 1, report.Issues[0].Line)
	assert.Equal(t, models.KindEvalUsage, report.Issues[1].Kind)
	assert.Equal(t, 3, report.Issues[1].Line)
	assert.Equal(t, models.KindBareExcept, report.Issues[2].Kind)

	// Two criticals and one warning.
	assert.Equal(t, 100-2*15-5, report.Score)
	assert.Equal(t, 3, report.TotalIssues)
	assert.Contains(t, report.Suggestions, "Improve exception handling")
}

func TestScriptRules(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []models.Kind
	}{
		{"loose equality", "if (a == b) {", []models.Kind{models.KindLooseEquality}},
		{"strict equality", "if (a === b) {", nil},
		{"console", "console.log(value);", []models.Kind{models.KindConsoleLog}},
		{"commented console", "// console.log(value);", nil},
		{"var", "var count = 1;", []models.Kind{models.KindVarUsage}},
		{"callbacks", "load(function () { save(function () {}); });", []models.Kind{models.KindCallbackHell}},
		{"eval", "eval(code);", []models.Kind{models.KindEvalUsage}},
		{"inner html", "el.innerHTML = html;", []models.Kind{models.KindInnerHTML}},
		{"string timer", `setTimeout("tick()", 10);`, []models.Kind{models.KindStringTimer}},
		{"magic number", "resize(1024);", []models.Kind{models.KindMagicNumber}},
		{"magic number in const", "const LIMIT = 1024;", nil},
		{"height", "el.style.height = 1024 + 'px';", nil},
		{"dom access", "document.getElementById('x').value = 1;", []models.Kind{models.KindUnsafeDOMAccess}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := analyze(t, tt.line, "a.js")
			assert.Equal(t, tt.want, kinds(report.Issues))
		})
	}
}

func TestScriptLongFunction(t *testing.T) {
	var b strings.Builder
	b.WriteString("function big() {\n")
	for range 55 {
		b.WriteString("  step();\n")
	}
	b.WriteString("}\n")

	report := analyze(t, b.String(), "big.ts")
	require.Len(t, report.Issues, 1)
	assert.Equal(t, models.KindLongFunction, report.Issues[0].Kind)
	assert.Equal(t, "Function of 57 lines", report.Issues[0].Detail)

	report = analyze(t, b.String(), "big.ts", WithLongFunctionLines(60))
	assert.Empty(t, report.Issues)
}

func TestScoreFloor(t *testing.T) {
	src := strings.Repeat("eval(x);\n", 10)
	report := analyze(t, src, "a.js")
	assert.Equal(t, MinScore, report.Score)
}

func TestExcerptTruncated(t *testing.T) {
	line := "    eval(" + strings.Repeat("x", 100) + ");"
	report := analyze(t, line, "a.py")
	require.NotEmpty(t, report.Issues)
	assert.Len(t, report.Issues[0].Code, defaultExcerptLength)
	assert.True(t, strings.HasPrefix(report.Issues[0].Code, "eval("))
}

func TestAddScenarioHasNoCriticals(t *testing.T) {
	report := analyze(t, "public int add(int a,int b){return a+b;}", "Calculator.java")
	assert.Zero(t, models.CountSeverity(report.Issues, models.SeverityCritical))
	assert.Equal(t, 100, report.Score)
}

func TestStrengths(t *testing.T) {
	java := analyze(t, "class A { private final int x; @Override public String toString() { return \"\"; } }", "A.java")
	assert.Contains(t, java.Strengths, "Correct use of @Override")
	assert.Contains(t, java.Strengths, "final used for immutability")

	js := analyze(t, "x", "a.js")
	assert.Equal(t, []string{"Standard JavaScript code"}, js.Strengths)

	unknown := analyze(t, "x", "a.rb")
	assert.Equal(t, []string{"Code structure correct"}, unknown.Strengths)
	assert.Equal(t, 100, unknown.Score)
	assert.NotNil(t, unknown.Issues)
}

func TestEmptySource(t *testing.T) {
	for _, name := range []string{"a.java", "a.py", "a.ts", "a.js", "a.txt"} {
		report := analyze(t, "", name)
		assert.Equal(t, 100, report.Score, name)
		assert.Empty(t, report.Issues, name)
		assert.Equal(t, []string{"Keep following good practices"}, report.Suggestions, name)
	}
}
