// Package patterns holds the process-wide regular expressions and keyword
// tables shared by the extractor, the analyzers and the test generator.
//
// Everything here is compiled once at package initialization and never
// mutated. Braces are escaped even where RE2 would accept them literally.
package patterns

import "regexp"

// Interface detection (Java only).
var (
	Interface     = regexp.MustCompile(`\binterface\s+(\w+)`)
	AbstractCalls = regexp.MustCompile(`\w+\s+\w+\s*\([^)]*\)\s*;`)
)

// Declarations used for counting functions and classes.
var (
	JavaMethodCount   = regexp.MustCompile(`(public|private|protected)\s+\w+\s+\w+\s*\([^)]*\)\s*\{`)
	PythonDefCount    = regexp.MustCompile(`def\s+\w+\s*\(`)
	ClassDecl         = regexp.MustCompile(`class\s+\w+`)
	ScriptClassDecl   = regexp.MustCompile(`\bclass\s+\w+`)
	ScriptConstructor = regexp.MustCompile(`\bfunction\s+[A-Z]\w+\s*\(`)

	// ScriptFunctionCounts are summed to count script functions. The sum
	// overlaps, so callers damp it once it grows past ten.
	ScriptFunctionCounts = []*regexp.Regexp{
		regexp.MustCompile(`\bfunction\s+\w+\s*\(`),
		regexp.MustCompile(`(?:var|let|const)\s+\w+\s*=\s*function\s*\(`),
		regexp.MustCompile(`\w+\s*:\s*function\s*\(`),
		regexp.MustCompile(`[a-zA-Z_]\w*\s*=\s*function\s*\(`),
		regexp.MustCompile(`\([^)]*\)\s*=>\s*\{`),
		regexp.MustCompile(`\.prototype\.\w+\s*=\s*function`),
	}
)

// Extraction templates. Each captures the name in group 1 and the
// parameter list in the last group, and ends on the opening brace.
var (
	JavaMethod = regexp.MustCompile(
		`(?:(public|private|protected)\s+)?(?:(static)\s+)?(?:final\s+)?(?:synchronized\s+)?` +
			`([\w.$]+(?:<[^(){};=]*>)?(?:\[\])*)\s+(\w+)\s*\(([^)]*)\)\s*(?:throws\s+[\w.,\s]+)?\{`)
	JavaClass = regexp.MustCompile(`\b(?:class|enum|record)\s+(\w+)`)

	PythonDef   = regexp.MustCompile(`(?m)^([ \t]*)(?:async\s+)?def\s+(\w+)\s*\(([^)]*)\)`)
	PythonClass = regexp.MustCompile(`(?m)^([ \t]*)class\s+(\w+)`)

	// ScriptNamedFunction matches `function name(...) {`.
	ScriptNamedFunction = regexp.MustCompile(`(?:async\s+)?\bfunction\s*\*?\s*(\w+)\s*\(([^)]*)\)\s*\{`)
	// ScriptAssignedFunction matches `var name = function(...) {` and `name = function(...) {`.
	ScriptAssignedFunction = regexp.MustCompile(`(?:(?:var|let|const)\s+)?([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?function\s*\w*\s*\(([^)]*)\)\s*\{`)
	// ScriptObjectMethod matches `name: function(...) {`.
	ScriptObjectMethod = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*:\s*(?:async\s+)?function\s*\w*\s*\(([^)]*)\)\s*\{`)
	// ScriptArrowFunction matches `name = (...) => {` and `name: (...) => {`.
	ScriptArrowFunction = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*[:=]\s*(?:async\s+)?\(([^)]*)\)\s*(?::\s*[\w<>\[\]|. ]+)?=>\s*\{`)
	// ScriptPrototypeMethod matches `Type.prototype.name = function(...) {`.
	ScriptPrototypeMethod = regexp.MustCompile(`(\w+)\.prototype\.(\w+)\s*=\s*function\s*\w*\s*\(([^)]*)\)\s*\{`)
	// ScriptClassMethod matches class members such as `add(a: number): number {`.
	ScriptClassMethod = regexp.MustCompile(`(?m)^[ \t]*(?:(?:public|private|protected|static|async|readonly|override)\s+)*([A-Za-z_$][\w$]*)\s*\(([^)]*)\)\s*(?::\s*[^{;=]+)?\{`)
	ScriptClass       = regexp.MustCompile(`\bclass\s+(\w+)`)
)

// ControlKeywords can look like a call followed by a block.
var ControlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"function": true, "return": true, "else": true, "do": true, "try": true,
	"synchronized": true, "new": true, "super": true, "this": true, "with": true,
}

// Test generation.
var (
	JavaField          = regexp.MustCompile(`private\s+(\w+)\s+(\w+);`)
	JavaGetter         = regexp.MustCompile(`public\s+\w+\s+((?:get|is)\w+)\s*\(\)\s*\{`)
	JavaSetter         = regexp.MustCompile(`public\s+void\s+(set\w+)\s*\([^)]+\)\s*\{`)
	JavaMapPut         = regexp.MustCompile(`\.put\s*\(\s*"([^"]+)"`)
	JavaConstantString = regexp.MustCompile(`public\s+String\s+(\w+)\s*\(\)\s*\{\s*return\s+"([^"]+)"`)
	MemberCall         = regexp.MustCompile(`(\w+)\.(\w+)\s*\(`)
	ThisMemberCall     = regexp.MustCompile(`this\.(\w+)\.(\w+)\s*\(`)
	ThisAssignment     = regexp.MustCompile(`this\.(\w+)\s*=`)
	ExportedClass      = regexp.MustCompile(`export\s+class\s+(\w+)`)
	AMDReturn          = regexp.MustCompile(`(?m)return\s+(\w+)\s*;?\s*\}\s*\)\s*;?\s*$`)
	StaticFunction     = regexp.MustCompile(`(\w+)\.(\w+)\s*=\s*function`)
	CommonJSExport     = regexp.MustCompile(`(?:module\.)?exports\.(\w+)\s*=`)
	ESExport           = regexp.MustCompile(`export\s+(?:function|const|let|var|class)\s+(\w+)`)
	ReturnsValue       = regexp.MustCompile(`return\s+[^;]+;`)
	ControlFlow        = regexp.MustCompile(`\b(?:if|for|while|try|switch|do)\b`)
	IfKeyword          = regexp.MustCompile(`\bif\b`)
	CodeFence          = regexp.MustCompile("(?s)```(?:java|python|typescript|ts|javascript|js)?\\n(.*?)```")
)
