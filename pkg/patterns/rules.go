package patterns

import "regexp"

// Bug heuristics.
var (
	MethodCall        = regexp.MustCompile(`\.\w+\(`)
	ResourceAlloc     = regexp.MustCompile(`new\s+(FileInputStream|BufferedReader|Connection|Statement)`)
	GenericCatch      = regexp.MustCompile(`catch\s*\(\s*Exception\s+`)
	StringEqRight     = regexp.MustCompile(`==\s*"[^"]*"`)
	StringEqLeft      = regexp.MustCompile(`"[^"]*"\s*==`)
	DivisionCandidate = regexp.MustCompile(`[^/]\s*/\s*[a-zA-Z_]\w*`)
	Division          = regexp.MustCompile(`[\w\)\]]\s*/\s*[\w\(]`)

	MutableDefault = regexp.MustCompile(`def\s+\w+\([^)]*=\s*(\[\]|\{\})`)
	BareExcept     = regexp.MustCompile(`^\s*except\s*:`)

	LooseEquality  = regexp.MustCompile(`[^=!]==[^=]`)
	VarDecl        = regexp.MustCompile(`\bvar\s+\w+`)
	StringTimer    = regexp.MustCompile(`(setTimeout|setInterval)\s*\(\s*["']`)
	LongNumber     = regexp.MustCompile(`[^\d]\d{3,}[^\d]`)
	UncheckedQuery = regexp.MustCompile(`(getElementById|querySelector|getElementsBy)\([^)]+\)\.`)
)

// Security heuristics.
var (
	SQLConcat    = regexp.MustCompile(`(executeQuery|executeUpdate|execute)\s*\(\s*["'].*\+`)
	Credential   = regexp.MustCompile(`(?i)(password|pwd|secret|key)\s*=\s*["'][^"']+["']`)
	ShellConcat  = regexp.MustCompile(`(os\.system|subprocess\.\w+)\s*\([^)]*\+`)
	StorageToken = regexp.MustCompile(`(?i)localStorage\.(setItem|getItem)\s*\([^)]*token`)
)

// Branching lists the patterns summed for file-level cyclomatic complexity.
// The `&&` and `||` forms only count when both sides touch a word character.
var Branching = []*regexp.Regexp{
	regexp.MustCompile(`\bif\b`),
	regexp.MustCompile(`\belif\b`),
	regexp.MustCompile(`\belse\s+if\b`),
	regexp.MustCompile(`\bfor\b`),
	regexp.MustCompile(`\bwhile\b`),
	regexp.MustCompile(`\bcase\b`),
	regexp.MustCompile(`\bcatch\b`),
	regexp.MustCompile(`\band\b`),
	regexp.MustCompile(`\bor\b`),
	regexp.MustCompile(`\b&&\b`),
	regexp.MustCompile(`\b\|\|\b`),
	regexp.MustCompile(`\?`),
}

// Branches lists the patterns counted as coverage branches.
var Branches = []*regexp.Regexp{
	regexp.MustCompile(`\bif\b`),
	regexp.MustCompile(`\belif\b`),
	regexp.MustCompile(`\belse\b`),
	regexp.MustCompile(`\bcase\b`),
	regexp.MustCompile(`\bfor\b`),
	regexp.MustCompile(`\bwhile\b`),
}

// FunctionBranching lists the patterns summed for per-function complexity.
var FunctionBranching = []*regexp.Regexp{
	regexp.MustCompile(`\bif\b`),
	regexp.MustCompile(`\belse\b`),
	regexp.MustCompile(`\bfor\b`),
	regexp.MustCompile(`\bwhile\b`),
	regexp.MustCompile(`\bswitch\b`),
	regexp.MustCompile(`\bcase\b`),
	regexp.MustCompile(`\bcatch\b`),
	regexp.MustCompile(`\?\s*[^:]+:`),
}

// Performance heuristics.
var NestedLoop = regexp.MustCompile(`for.*for|while.*while`)

// Smell heuristics.
var (
	MagicNumber       = regexp.MustCompile(`[^0-9.](\d{2,})[^0-9.]`)
	SelfAlias         = regexp.MustCompile(`_that\s*=\s*this|that\s*=\s*this|self\s*=\s*this`)
	CallSignature     = regexp.MustCompile(`\.\w+\([^)]*\)`)
	ShortIfBlock      = regexp.MustCompile(`if\s*\([^)]+\)\s*\{[^}]{10,50}\}`)
	MemberAssignment  = regexp.MustCompile(`\w+\.\w+\s*=\s*[^;]+;`)
	MemberPrefix      = regexp.MustCompile(`\w+\.`)
	SelectorCall      = regexp.MustCompile(`\$\(`)
	SelectorCallArgs  = regexp.MustCompile(`\$\([^)]+\)`)
	InlineCallback    = regexp.MustCompile(`\(\s*function\s*\([^)]*\)\s*\{`)
	EventWiring       = regexp.MustCompile(`on[A-Z]\w+|addEventListener|attachEvent|\.click\(|\.on\(`)
	BusinessLogic     = regexp.MustCompile(`if.*return|for.*\{|while.*\{|switch.*\{`)
	TopLevelVar       = regexp.MustCompile(`(?m)^\s*var\s+\w+\s*=`)
	BlockScopedDecl   = regexp.MustCompile(`\b(const|let)\s+\w+`)
	DeepNesting       = regexp.MustCompile(`\{[^{}]*\{[^{}]*\{[^{}]*\{[^{}]*\{`)
	ComplexScriptFunc = regexp.MustCompile(`(?:function\s+(\w+)|(\w+)\s*=\s*function|(\w+)\s*:\s*function)\s*\([^)]*\)\s*\{`)
)

// IgnoredCalls are method names, up to the opening parenthesis, too
// common to count as duplication.
var IgnoredCalls = map[string]bool{
	".log(":  true,
	".push(": true,
	".pop(":  true,
}

// Testability markers. DOM, external dependency and side effect markers are
// matched case-sensitively; UI event markers against the lowercased source.
var (
	DOMMarkers = []string{
		"document.", "getElementById", "querySelector", "innerHTML",
		"addEventListener", "createElement", "appendChild", "jquery",
		"jQuery", "$(", ".html(", ".css(", ".attr(",
	}
	ExternalDepMarkers = []string{
		"fetch(", "axios", "http.", "XMLHttpRequest", "require(",
		"import ", "from ", "socket", "websocket", "database",
		"localStorage", "sessionStorage",
	}
	UIEventMarkers = []string{
		"onclick", "onchange", "onsubmit", "keydown", "keyup",
		"mousedown", "mouseup", "scroll", "resize", "attachevent",
	}
	SideEffectMarkers = []string{
		"console.", "print(", "window.", "global.",
		"setTimeout", "setInterval", "Date.now", "Math.random",
	}
)
