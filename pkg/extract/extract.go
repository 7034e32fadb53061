// Package extract enumerates function and class declarations in raw source
// text using regular expressions, balanced-brace scanning and, for Python,
// indentation scanning.
//
// Extraction is heuristic. Brace scanning does not understand string or
// comment literals, so a brace inside a literal shifts the detected extent.
// When several templates match the same name only the first is kept, which
// under-counts overloaded methods.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/panbanda/probe/pkg/parser"
	"github.com/panbanda/probe/pkg/patterns"
	"github.com/panbanda/probe/pkg/source"
)

// Kind describes how a function was declared.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindAssigned  Kind = "assigned"
	KindProperty  Kind = "property"
	KindArrow     Kind = "arrow"
	KindPrototype Kind = "prototype"
)

// Param is one declared parameter. Type is empty when the language or the
// declaration carries no annotation.
type Param struct {
	Name string
	Type string
}

// Function is a detected function or method.
type Function struct {
	Name       string
	Params     []Param
	StartLine  int
	EndLine    int
	Body       string
	Kind       Kind
	Receiver   string
	ReturnType string
	Visibility string
	Static     bool
}

// ParamNames returns the parameter names in declaration order.
func (f Function) ParamNames() []string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return names
}

// Lines returns the number of line breaks spanned by the function.
func (f Function) Lines() int {
	return f.EndLine - f.StartLine
}

// Class is a detected class, enum, record or interface.
type Class struct {
	Name        string
	Lines       int
	StartLine   int
	IsInterface bool
}

// Result is everything extracted from one unit. FunctionCount and
// ClassCount are the declaration-count heuristics, which can differ from
// len(Functions) and len(Classes).
type Result struct {
	Functions     []Function
	Classes       []Class
	FunctionCount int
	ClassCount    int
	Interface     string
}

// IsInterface reports whether the unit matched the interface rule.
func (r Result) IsInterface() bool {
	return r.Interface != ""
}

// Function returns the first function named name.
func (r Result) Function(name string) (Function, bool) {
	for _, f := range r.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return Function{}, false
}

// Extract detects the functions and classes of unit. Units in an
// unsupported language produce an empty result with the default counts.
func Extract(unit *source.Unit) Result {
	res := Result{
		FunctionCount: CountFunctions(unit),
		ClassCount:    CountClasses(unit),
	}
	if name, ok := IsInterface(unit); ok {
		res.Interface = name
	}

	switch unit.Language() {
	case parser.LangJava:
		res.Functions = javaFunctions(unit)
		res.Classes = javaClasses(unit)
	case parser.LangPython:
		res.Functions, res.Classes = pythonDeclarations(unit)
	case parser.LangTypeScript, parser.LangJavaScript:
		res.Functions = scriptFunctions(unit)
		res.Classes = braceClasses(unit, patterns.ScriptClass, false)
	}

	res.Functions = dedupe(res.Functions)
	return res
}

// IsInterface reports whether unit declares a Java interface and returns
// its name.
func IsInterface(unit *source.Unit) (string, bool) {
	if unit.Language() != parser.LangJava {
		return "", false
	}
	m := patterns.Interface.FindStringSubmatch(unit.Text())
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ScanBraces returns the index of the brace closing the one at open. It
// counts every '{' and '}' after open, including those inside string and
// comment literals. When the braces never balance, ok is false and end is
// len(text).
func ScanBraces(text string, open int) (end int, ok bool) {
	if open < 0 || open >= len(text) || text[open] != '{' {
		return len(text), false
	}
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return len(text), false
}

// CountFunctions counts declarations with the per-language counting
// patterns. Script counts overlap between patterns and are damped to
// count/2+5 once they exceed ten.
func CountFunctions(unit *source.Unit) int {
	text := unit.Text()
	switch unit.Language() {
	case parser.LangJava:
		return countMatches(patterns.JavaMethodCount, text)
	case parser.LangPython:
		return countMatches(patterns.PythonDefCount, text)
	case parser.LangTypeScript, parser.LangJavaScript:
		count := 0
		for _, re := range patterns.ScriptFunctionCounts {
			count += countMatches(re, text)
		}
		if count > 10 {
			return min(count, count/2+5)
		}
		return count
	default:
		return 0
	}
}

// CountClasses counts class declarations. Script units count constructor
// functions and AMD modules as classes and never report fewer than one;
// unsupported units count as a single module.
func CountClasses(unit *source.Unit) int {
	text := unit.Text()
	switch unit.Language() {
	case parser.LangJava, parser.LangPython:
		return countMatches(patterns.ClassDecl, text)
	case parser.LangTypeScript, parser.LangJavaScript:
		count := countMatches(patterns.ScriptClassDecl, text) +
			countMatches(patterns.ScriptConstructor, text)
		if strings.Contains(text, "define(") {
			count++
		}
		return max(1, count)
	default:
		return 1
	}
}

// FunctionLength is the line span of one named function.
type FunctionLength struct {
	Name  string
	Lines int
}

// FunctionLengths returns the span of every extracted function longer than
// a single line. Script functions whose name starts with an underscore are
// treated as private helpers and skipped.
func FunctionLengths(res Result, lang parser.Language) []FunctionLength {
	var out []FunctionLength
	for _, f := range res.Functions {
		if lang.Script() && strings.HasPrefix(f.Name, "_") {
			continue
		}
		if n := f.Lines(); n > 0 {
			out = append(out, FunctionLength{Name: f.Name, Lines: n})
		}
	}
	return out
}

func countMatches(re *regexp.Regexp, text string) int {
	return len(re.FindAllStringIndex(text, -1))
}

// dedupe keeps the first function seen for each name, then orders the
// survivors by position.
func dedupe(funcs []Function) []Function {
	seen := make(map[string]bool, len(funcs))
	out := funcs[:0]
	for _, f := range funcs {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartLine < out[j].StartLine
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

// braceFunction builds a Function whose body starts at the brace ending
// the match [start, open].
func braceFunction(unit *source.Unit, name string, start, open int) Function {
	text := unit.Text()
	end, _ := ScanBraces(text, open)
	body := ""
	if open+1 <= end {
		body = text[open+1 : end]
	}
	return Function{
		Name:      name,
		StartLine: unit.LineOf(start),
		EndLine:   unit.LineOf(end),
		Body:      body,
	}
}

func nameOr(name string, i int) string {
	if name == "" {
		return fmt.Sprintf("func_%d", i)
	}
	return name
}

func javaFunctions(unit *source.Unit) []Function {
	text := unit.Text()
	var out []Function
	for i, m := range patterns.JavaMethod.FindAllStringSubmatchIndex(text, -1) {
		returnType := text[m[6]:m[7]]
		name := text[m[8]:m[9]]
		if patterns.ControlKeywords[name] || patterns.ControlKeywords[returnType] {
			continue
		}
		f := braceFunction(unit, nameOr(name, i), m[0], m[1]-1)
		f.Kind = KindMethod
		f.ReturnType = returnType
		f.Params = splitParams(text[m[10]:m[11]], javaParam)
		if m[2] >= 0 {
			f.Visibility = text[m[2]:m[3]]
		}
		if javaModifiers[returnType] {
			// Constructor: the modifier was taken as the return type.
			f.Visibility = returnType
			f.ReturnType = ""
		}
		f.Static = m[4] >= 0
		out = append(out, f)
	}
	return out
}

var javaModifiers = map[string]bool{
	"public": true, "private": true, "protected": true,
}

func javaClasses(unit *source.Unit) []Class {
	classes := braceClasses(unit, patterns.JavaClass, false)
	return append(classes, braceClasses(unit, patterns.Interface, true)...)
}

// braceClasses finds declarations matched by re and measures each body
// from the first brace after the name.
func braceClasses(unit *source.Unit, re *regexp.Regexp, iface bool) []Class {
	text := unit.Text()
	var out []Class
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		c := Class{
			Name:        text[m[2]:m[3]],
			StartLine:   unit.LineOf(m[0]),
			IsInterface: iface,
			Lines:       1,
		}
		if rel := strings.IndexAny(text[m[1]:], "{;"); rel >= 0 && text[m[1]+rel] == '{' {
			end, _ := ScanBraces(text, m[1]+rel)
			c.Lines = unit.LineOf(end) - c.StartLine + 1
		}
		out = append(out, c)
	}
	return out
}

// scriptTemplate is one script extraction pattern with the indexes of its
// receiver, name and parameter groups. A receiver of 0 means none.
type scriptTemplate struct {
	re       *regexp.Regexp
	kind     Kind
	receiver int
	name     int
	params   int
}

var scriptTemplates = []scriptTemplate{
	{re: patterns.ScriptNamedFunction, kind: KindFunction, name: 1, params: 2},
	// Prototype assignments also match the assigned template; they must be
	// seen first to keep their receiver.
	{re: patterns.ScriptPrototypeMethod, kind: KindPrototype, receiver: 1, name: 2, params: 3},
	{re: patterns.ScriptAssignedFunction, kind: KindAssigned, name: 1, params: 2},
	{re: patterns.ScriptObjectMethod, kind: KindProperty, name: 1, params: 2},
	{re: patterns.ScriptArrowFunction, kind: KindArrow, name: 1, params: 2},
	{re: patterns.ScriptClassMethod, kind: KindMethod, name: 1, params: 2},
}

func scriptFunctions(unit *source.Unit) []Function {
	text := unit.Text()
	var out []Function
	for _, tpl := range scriptTemplates {
		for i, m := range tpl.re.FindAllStringSubmatchIndex(text, -1) {
			name := text[m[2*tpl.name]:m[2*tpl.name+1]]
			if patterns.ControlKeywords[name] {
				continue
			}
			f := braceFunction(unit, nameOr(name, i), m[0], m[1]-1)
			f.Kind = tpl.kind
			f.Params = splitParams(text[m[2*tpl.params]:m[2*tpl.params+1]], scriptParam)
			if tpl.receiver > 0 {
				f.Receiver = text[m[2*tpl.receiver]:m[2*tpl.receiver+1]]
			}
			out = append(out, f)
		}
	}
	return out
}
