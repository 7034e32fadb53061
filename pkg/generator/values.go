package generator

import (
	"strings"

	"github.com/panbanda/probe/pkg/patterns"
)

// paramRule maps parameter-name substrings to a test value and an optional
// setup line declaring it.
type paramRule struct {
	match func(lower string) bool
	value string
	setup string
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func has(subs ...string) func(string) bool {
	return func(lower string) bool { return containsAny(lower, subs...) }
}

// paramRules is evaluated in order; the first match wins.
var paramRules = []paramRule{
	{match: has("date"), value: "mockDate", setup: "const mockDate = new Date('2026-01-15');"},
	{match: has("scheduler", "leaveplanning"), value: "mockScheduler",
		setup: "const mockScheduler = { attachEvent: jest.fn(), getEvents: jest.fn(() => []), getState: jest.fn(() => ({ min_date: new Date(), max_date: new Date() })), templates: {}, matrix: { timeline: {} } };"},
	{match: has("employee", "user"), value: "'EMP001'"},
	{match: func(lower string) bool { return strings.Contains(lower, "event") || lower == "ev" }, value: "mockEvent",
		setup: "const mockEvent = { id: 1, section_id: 'EMP001', customType: 'validated', start_date: new Date(), end_date: new Date() };"},
	{match: has("id"), value: "'test-id-123'"},
	{match: has("start"), value: "new Date('2026-01-01')"},
	{match: has("end"), value: "new Date('2026-01-31')"},
	{match: has("min"), value: "new Date('2026-01-01')"},
	{match: has("max"), value: "new Date('2026-12-31')"},
	{match: has("callback", "fn", "refresh"), value: "jest.fn()"},
	{match: has("timeline"), value: "{ dy: 50, folder_dy: 50, x_size: 31 }"},
	{match: has("y_unit", "unit"), value: "{ key: 'team1', label: 'Team 1', children: [], level: 0 }"},
	{match: has("days", "count", "size"), value: "31"},
	{match: has("mobile"), value: "false"},
	{match: has("localizer"), value: "{ getText: jest.fn(() => 'Label') }"},
	{match: has("mode"), value: "'timeline'"},
	{match: has("position"), value: "'start'"},
}

// placeholder is the value used for parameters no rule recognizes.
const placeholder = "'test'"

// ParamValue infers a script test value from a parameter name. setup is a
// statement declaring the value, or "" when the value is a literal.
func ParamValue(name string) (value, setup string) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return placeholder, ""
	}
	for _, r := range paramRules {
		if r.match(lower) {
			return r.value, r.setup
		}
	}
	return placeholder, ""
}

// scriptArgs returns the values for params and their deduplicated setup lines.
func scriptArgs(params []string) (values []string, setup []string) {
	seen := make(map[string]bool)
	for _, p := range params {
		v, s := ParamValue(p)
		values = append(values, v)
		if s != "" && !seen[s] {
			seen[s] = true
			setup = append(setup, s)
		}
	}
	return values, setup
}

// repeat returns n copies of s joined by ", ".
func repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat(s+", ", n), ", ")
}

// arithCase is one call and its expected result.
type arithCase struct {
	args []string
	want string
}

// arithmetic recognizes calculator-style method names.
type arithmetic struct {
	keys  []string
	title string
	cases []arithCase
	// zero, when set, is a call that must raise a division error.
	zero []string
}

var arithmetics = []arithmetic{
	{keys: []string{"add", "sum"}, title: "should %s two numbers correctly",
		cases: []arithCase{{args: []string{"2", "3"}, want: "5"}}},
	{keys: []string{"subtract", "minus"}, title: "should %s two numbers correctly",
		cases: []arithCase{{args: []string{"10", "3"}, want: "7"}}},
	{keys: []string{"multiply", "times"}, title: "should %s two numbers correctly",
		cases: []arithCase{{args: []string{"4", "5"}, want: "20"}}},
	{keys: []string{"divide"}, title: "should %s two numbers correctly",
		cases: []arithCase{{args: []string{"10", "2"}, want: "5"}}, zero: []string{"10", "0"}},
	{keys: []string{"factorial"}, title: "should calculate %s correctly",
		cases: []arithCase{{args: []string{"5"}, want: "120"}, {args: []string{"0"}, want: "1"}}},
	{keys: []string{"power", "pow"}, title: "should calculate %s correctly",
		cases: []arithCase{{args: []string{"2", "3"}, want: "8"}, {args: []string{"5", "2"}, want: "25"}}},
	{keys: []string{"sqrt", "square"}, title: "should calculate %s correctly",
		cases: []arithCase{{args: []string{"16"}, want: "4"}, {args: []string{"9"}, want: "3"}}},
	{keys: []string{"percentage", "percent"}, title: "should calculate %s correctly",
		cases: []arithCase{{args: []string{"50", "200"}, want: "25"}}},
}

// arithmeticFor returns the calculator rule matching name whose calls take
// exactly arity arguments.
func arithmeticFor(name string, arity int) (arithmetic, bool) {
	lower := strings.ToLower(name)
	for _, a := range arithmetics {
		if containsAny(lower, a.keys...) && len(a.cases[0].args) == arity {
			return a, true
		}
	}
	return arithmetic{}, false
}

// dependencyMarkers name types treated as collaborators to mock.
var dependencyMarkers = []string{"Dao", "Service", "Repository", "Client"}

// IsDependencyType reports whether a declared type follows a data-access or
// service naming convention.
func IsDependencyType(typ string) bool {
	return containsAny(typ, dependencyMarkers...)
}

// IsPassThrough reports whether a method body only forwards to a
// collaborator: at most two statements, no control flow, and a member call.
func IsPassThrough(body string) bool {
	if patterns.ControlFlow.MatchString(body) {
		return false
	}
	var statements []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		statements = append(statements, line)
	}
	if len(statements) == 0 || len(statements) > 2 {
		return false
	}
	for _, s := range statements {
		if patterns.MemberCall.MatchString(s) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
