package models

import (
	"strings"
	"unicode/utf8"
)

// Severity represents how serious a finding is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityWarning  Severity = "warning"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight returns a numeric weight for sorting (higher = more severe).
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityWarning, SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Kind is the closed enumeration of finding kinds across all categories.
type Kind string

// Bug kinds.
const (
	KindNullPointerRisk  Kind = "NullPointerRisk"
	KindResourceLeak     Kind = "ResourceLeak"
	KindGenericException Kind = "GenericExceptionCatch"
	KindStringIdentity   Kind = "StringComparisonByIdentity"
	KindDivisionByZero   Kind = "DivisionByZero"
	KindMutableDefault   Kind = "MutableDefaultArgument"
	KindBareExcept       Kind = "BareExcept"
	KindEvalUsage        Kind = "EvalUsage"
	KindLooseEquality    Kind = "LooseEquality"
	KindConsoleLog       Kind = "ConsoleLog"
	KindVarUsage         Kind = "VarUsage"
	KindCallbackHell     Kind = "CallbackHell"
	KindInnerHTML        Kind = "InnerHTMLAssignment"
	KindStringTimer      Kind = "StringTimer"
	KindMagicNumber      Kind = "MagicNumber"
	KindLongFunction     Kind = "LongFunction"
	KindUnsafeDOMAccess  Kind = "UnsafeDomAccess"
)

// Security kinds.
const (
	KindSQLInjection          Kind = "SqlInjection"
	KindHardcodedCredential   Kind = "HardcodedCredential"
	KindXSS                   Kind = "XssRisk"
	KindCodeExecution         Kind = "ArbitraryCodeExecution"
	KindUnsafeDeserialization Kind = "UnsafeDeserialization"
	KindShellInjection        Kind = "ShellInjection"
	KindTokenInStorage        Kind = "TokenInClientStorage"
)

// Performance kinds.
const (
	KindNestedLoops        Kind = "NestedLoops"
	KindStringConcatInLoop Kind = "StringConcatInLoop"
)

// Smell kinds.
const (
	KindVeryLongMethod    Kind = "VeryLongMethod"
	KindLongMethod        Kind = "LongMethod"
	KindGodClass          Kind = "GodClass"
	KindLargeFile         Kind = "LargeFile"
	KindMagicNumbers      Kind = "MagicNumbers"
	KindSelfAlias         Kind = "SelfAlias"
	KindCodeDuplication   Kind = "CodeDuplication"
	KindImplicitGlobals   Kind = "ImplicitGlobalDependencies"
	KindComplexFunction   Kind = "FunctionTooComplex"
	KindCallbackNesting   Kind = "CallbackNesting"
	KindInlineCallbacks   Kind = "InlineCallbacks"
	KindSelectorCoupling  Kind = "TightSelectorCoupling"
	KindMixedConcerns     Kind = "MixedConcerns"
	KindTooManyGlobals    Kind = "TooManyGlobalVariables"
	KindOutdatedVar       Kind = "OutdatedVarUsage"
	KindMixedDeclarations Kind = "MixedVarDeclarations"
	KindDeepNesting       Kind = "DeepNesting"
)

// Coverage warning kinds.
const (
	KindSingleTest       Kind = "SingleTestManyFunctions"
	KindDOMMocking       Kind = "DomNeedsMocking"
	KindExternalDeps     Kind = "ExternalDependencies"
	KindUIEvents         Kind = "UiEventsNeedSimulation"
	KindCriticalCoverage Kind = "CriticalCoverage"
)

// Finding is a single detected issue: a bug, vulnerability, bottleneck,
// smell or coverage warning.
type Finding struct {
	Kind       Kind     `json:"kind"`
	Title      string   `json:"type"`
	Line       int      `json:"line,omitempty"`
	Location   string   `json:"location,omitempty"`
	Code       string   `json:"code,omitempty"`
	Detail     string   `json:"detail,omitempty"`
	Impact     string   `json:"impact,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Fix        string   `json:"fix,omitempty"`
	Severity   Severity `json:"severity"`
}

// Advice returns the remediation text, whichever field carries it.
func (f Finding) Advice() string {
	if f.Fix != "" {
		return f.Fix
	}
	return f.Suggestion
}

// Excerpt trims a source line and truncates it to max characters.
func Excerpt(line string, max int) string {
	trimmed := strings.TrimSpace(line)
	if utf8.RuneCountInString(trimmed) <= max {
		return trimmed
	}
	return string([]rune(trimmed)[:max])
}

// CountSeverity returns how many findings carry severity s.
func CountSeverity(findings []Finding, s Severity) int {
	n := 0
	for _, f := range findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}
