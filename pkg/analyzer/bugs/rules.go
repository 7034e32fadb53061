package bugs

import (
	"fmt"
	"strings"

	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/patterns"
)

// lineContext is the view of one line handed to each rule.
type lineContext struct {
	analyzer *Analyzer
	text     string
	lines    []string
	n        int // 1-based
	line     string
}

// preceding returns up to lookbehindBytes of source before the first
// occurrence of the current line's text.
func (c *lineContext) preceding() string {
	idx := strings.Index(c.text, c.line)
	if idx < 0 {
		return ""
	}
	return c.text[max(0, idx-lookbehindBytes):idx]
}

// rule is one line-level detector. check returns an optional detail and
// whether the line matched.
type rule struct {
	kind       models.Kind
	title      string
	severity   models.Severity
	suggestion string
	check      func(c *lineContext) (string, bool)
}

func matches(pred func(c *lineContext) bool) func(c *lineContext) (string, bool) {
	return func(c *lineContext) (string, bool) {
		return "", pred(c)
	}
}

var javaRules = []rule{
	{
		kind:       models.KindNullPointerRisk,
		title:      "NullPointerException Risk",
		severity:   models.SeverityWarning,
		suggestion: "Add a null check before the call",
		check: matches(func(c *lineContext) bool {
			return patterns.MethodCall.MatchString(c.line) && strings.Contains(strings.ToLower(c.line), "null")
		}),
	},
	{
		kind:       models.KindResourceLeak,
		title:      "Resource Leak",
		severity:   models.SeverityCritical,
		suggestion: "Use try-with-resources to close it automatically",
		check: matches(func(c *lineContext) bool {
			return patterns.ResourceAlloc.MatchString(c.line) && !strings.Contains(c.preceding(), "try")
		}),
	},
	{
		kind:       models.KindGenericException,
		title:      "Generic Exception Catch",
		severity:   models.SeverityWarning,
		suggestion: "Catch specific exceptions",
		check: matches(func(c *lineContext) bool {
			return patterns.GenericCatch.MatchString(c.line)
		}),
	},
	{
		kind:       models.KindStringIdentity,
		title:      "String Comparison with ==",
		severity:   models.SeverityCritical,
		suggestion: "Use .equals() to compare Strings",
		check: matches(func(c *lineContext) bool {
			return patterns.StringEqRight.MatchString(c.line) || patterns.StringEqLeft.MatchString(c.line)
		}),
	},
	{
		kind:       models.KindDivisionByZero,
		title:      "Possible Division by Zero",
		severity:   models.SeverityWarning,
		suggestion: "Check that the divisor is not zero",
		check:      matches(isDivision),
	},
}

// isDivision skips annotations, comments, guarded lines and lines where a
// string literal precedes the first slash.
func isDivision(c *lineContext) bool {
	line := c.line
	slash := strings.Index(line, "/")
	if slash < 0 {
		return false
	}
	trimmed := strings.TrimSpace(line)
	for _, prefix := range []string{"@", "//", "/*", "*"} {
		if strings.HasPrefix(trimmed, prefix) {
			return false
		}
	}
	if strings.Contains(strings.ToLower(line), "if") || strings.Contains(line[:slash], `"`) {
		return false
	}
	return patterns.DivisionCandidate.MatchString(line) && patterns.Division.MatchString(line)
}

var pythonRules = []rule{
	{
		kind:       models.KindMutableDefault,
		title:      "Mutable Default Argument",
		severity:   models.SeverityCritical,
		suggestion: "Default to None and initialize inside the function",
		check: matches(func(c *lineContext) bool {
			return patterns.MutableDefault.MatchString(c.line)
		}),
	},
	{
		kind:       models.KindBareExcept,
		title:      "Bare Except",
		severity:   models.SeverityWarning,
		suggestion: "Name the exception type to catch",
		check: matches(func(c *lineContext) bool {
			return patterns.BareExcept.MatchString(c.line)
		}),
	},
	{
		kind:       models.KindEvalUsage,
		title:      "Dangerous eval() Usage",
		severity:   models.SeverityCritical,
		suggestion: "Avoid eval(); use ast.literal_eval() if needed",
		check: matches(func(c *lineContext) bool {
			return strings.Contains(c.line, "eval(")
		}),
	},
}

var scriptRules = []rule{
	{
		kind:       models.KindLooseEquality,
		title:      "Loose Comparison ==",
		severity:   models.SeverityWarning,
		suggestion: "Use === for strict comparison",
		check: matches(func(c *lineContext) bool {
			return patterns.LooseEquality.MatchString(c.line) && !strings.Contains(c.line, "===")
		}),
	},
	{
		kind:       models.KindConsoleLog,
		title:      "console.log in Production",
		severity:   models.SeverityInfo,
		suggestion: "Remove console.log calls from production code",
		check: matches(func(c *lineContext) bool {
			return strings.Contains(c.line, "console.log") && !strings.HasPrefix(strings.TrimSpace(c.line), "//")
		}),
	},
	{
		kind:       models.KindVarUsage,
		title:      "var Usage (function scope)",
		severity:   models.SeverityWarning,
		suggestion: "Use let or const instead of var",
		check: matches(func(c *lineContext) bool {
			return patterns.VarDecl.MatchString(c.line)
		}),
	},
	{
		kind:       models.KindCallbackHell,
		title:      "Potential Callback Hell",
		severity:   models.SeverityWarning,
		suggestion: "Use async/await or Promises",
		check: matches(func(c *lineContext) bool {
			return strings.Count(c.line, "function") > 1 ||
				(strings.Count(c.line, "=>") > 1 && strings.Contains(c.line, "function"))
		}),
	},
	{
		kind:       models.KindEvalUsage,
		title:      "Dangerous eval() Usage",
		severity:   models.SeverityCritical,
		suggestion: "Avoid eval() for security reasons",
		check: matches(func(c *lineContext) bool {
			return strings.Contains(c.line, "eval(")
		}),
	},
	{
		kind:       models.KindInnerHTML,
		title:      "Potentially Vulnerable innerHTML",
		severity:   models.SeverityWarning,
		suggestion: "Use textContent or a sanitizer",
		check: matches(func(c *lineContext) bool {
			return strings.Contains(c.line, "innerHTML") && strings.Contains(c.line, "=")
		}),
	},
	{
		kind:       models.KindStringTimer,
		title:      "setTimeout with String",
		severity:   models.SeverityWarning,
		suggestion: "Pass a function, not a string",
		check: matches(func(c *lineContext) bool {
			return patterns.StringTimer.MatchString(c.line)
		}),
	},
	{
		kind:       models.KindMagicNumber,
		title:      "Magic Number",
		severity:   models.SeverityInfo,
		suggestion: "Extract into a named constant",
		check: matches(func(c *lineContext) bool {
			return patterns.LongNumber.MatchString(c.line) &&
				!strings.Contains(c.line, "const") &&
				!strings.Contains(strings.ToUpper(c.line), "HEIGHT")
		}),
	},
	{
		kind:       models.KindLongFunction,
		title:      "Function Too Long",
		severity:   models.SeverityWarning,
		suggestion: "Split into smaller functions",
		check:      longFunction,
	},
	{
		kind:       models.KindUnsafeDOMAccess,
		title:      "DOM Access without Null Check",
		severity:   models.SeverityWarning,
		suggestion: "Check that the element exists before using it",
		check: matches(func(c *lineContext) bool {
			return patterns.UncheckedQuery.MatchString(c.line) && !strings.Contains(c.preceding(), "if")
		}),
	},
}

// longFunction counts lines from a function header until its braces
// balance, looking at most longFunctionWindow lines ahead. The header's own
// braces are not counted; depth starts at one.
func longFunction(c *lineContext) (string, bool) {
	if !strings.Contains(c.line, "function") || !strings.Contains(c.line, "{") {
		return "", false
	}
	depth, length := 1, 1
	for j := c.n; j < min(c.n+longFunctionWindow, len(c.lines)); j++ {
		depth += strings.Count(c.lines[j], "{") - strings.Count(c.lines[j], "}")
		length++
		if depth <= 0 {
			break
		}
	}
	if length <= c.analyzer.longFunction {
		return "", false
	}
	return fmt.Sprintf("Function of %d lines", length), true
}
