package generator

import (
	"fmt"
	"strings"

	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/source"
)

// pythonArg infers an argument from the annotation, then from the name.
func pythonArg(p extract.Param) string {
	switch strings.ToLower(genericBase(strings.TrimPrefix(p.Type, "Optional["))) {
	case "int":
		return "1"
	case "float":
		return "1.0"
	case "str":
		return "'test'"
	case "bool":
		return "True"
	case "list":
		return "[]"
	case "dict":
		return "{}"
	}
	lower := strings.ToLower(p.Name)
	switch {
	case containsAny(lower, "callback", "fn", "func", "handler"):
		return "lambda *args, **kwargs: None"
	case containsAny(lower, "count", "size", "days", "num", "index") || lower == "n":
		return "1"
	case containsAny(lower, "date"):
		return "'2026-01-15'"
	case containsAny(lower, "id"):
		return "'test-id-123'"
	default:
		return "'test'"
	}
}

func pythonArgs(params []extract.Param) string {
	args := make([]string, len(params))
	for i, p := range params {
		args[i] = pythonArg(p)
	}
	return strings.Join(args, ", ")
}

// pythonTestable skips dunder and private names.
func pythonTestable(name string) bool {
	return !strings.HasPrefix(name, "_")
}

func (g *Generator) python(unit *source.Unit, facts extract.Result) string {
	stem := unit.Stem()

	var b strings.Builder
	fmt.Fprintf(&b, "\"\"\"Generated tests for %s.py\"\"\"\nimport pytest\nfrom %s import *\n\n", stem, stem)

	ctorArgs := make(map[string]string)
	methods := make(map[string][]extract.Function)
	var functions []extract.Function
	budget := g.limits.PythonFunctions
	for _, f := range facts.Functions {
		if f.Kind == extract.KindMethod && f.Name == "__init__" {
			ctorArgs[f.Receiver] = pythonArgs(f.Params)
			continue
		}
		if !pythonTestable(f.Name) || budget == 0 {
			continue
		}
		budget--
		if f.Kind == extract.KindMethod {
			methods[f.Receiver] = append(methods[f.Receiver], f)
		} else {
			functions = append(functions, f)
		}
	}

	for _, c := range facts.Classes {
		lower := strings.ToLower(c.Name)
		ctor := fmt.Sprintf("%s(%s)", c.Name, ctorArgs[c.Name])
		fmt.Fprintf(&b, `
class Test%s:
    """Tests for %s"""

    def test_%s_instantiation(self):
        obj = %s
        assert obj is not None

    def test_%s_attributes(self):
        obj = %s
        assert hasattr(obj, '__dict__')
`, c.Name, c.Name, lower, ctor, lower, ctor)
		for _, m := range methods[c.Name] {
			fmt.Fprintf(&b, `
    def test_%s(self):
        obj = %s
        try:
            obj.%s(%s)
        except Exception:
            pytest.skip("%s needs collaborators that are not set up")
`, m.Name, ctor, m.Name, pythonArgs(m.Params), m.Name)
		}
	}

	for _, f := range functions {
		if a, ok := arithmeticFor(f.Name, len(f.Params)); ok {
			fmt.Fprintf(&b, "\n\ndef test_%s():\n    \"\"\"%s\"\"\"\n", f.Name, fmt.Sprintf(a.title, f.Name))
			for _, c := range a.cases {
				fmt.Fprintf(&b, "    assert %s(%s) == %s\n", f.Name, strings.Join(c.args, ", "), c.want)
			}
			if a.zero != nil {
				fmt.Fprintf(&b, "\n\ndef test_%s_by_zero():\n    with pytest.raises(ZeroDivisionError):\n        %s(%s)\n",
					f.Name, f.Name, strings.Join(a.zero, ", "))
			}
			continue
		}
		fmt.Fprintf(&b, `

def test_%s():
    """Test the function %s"""
    try:
        result = %s(%s)
        assert result is not None
    except Exception:
        pytest.skip("%s could not run with placeholder arguments")
`, f.Name, f.Name, f.Name, pythonArgs(f.Params), f.Name)
	}

	return b.String()
}
