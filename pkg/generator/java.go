package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/patterns"
	"github.com/panbanda/probe/pkg/source"
)

var javaPrimitiveDefaults = map[string]string{
	"byte": "0", "short": "0", "int": "0", "long": "0L",
	"float": "0.0f", "double": "0.0", "boolean": "false", "char": "'\\0'",
}

// javaObjectMethods are never tested directly.
var javaObjectMethods = map[string]bool{"toString": true, "hashCode": true, "equals": true}

func isPrimitive(typ string) bool {
	_, ok := javaPrimitiveDefaults[strings.TrimSpace(typ)]
	return ok
}

// javaNumeric lists the return types calculator assertions are emitted for.
var javaNumeric = map[string]bool{
	"int": true, "long": true, "short": true, "float": true, "double": true,
	"Integer": true, "Long": true, "Short": true, "Float": true, "Double": true,
}

func isFloating(typ string) bool {
	return typ == "float" || typ == "double" || typ == "Float" || typ == "Double"
}

// javaFieldValue is the literal used in getter/setter round trips.
func javaFieldValue(typ string) string {
	switch typ {
	case "String":
		return `"testValue"`
	case "int", "Integer":
		return "42"
	case "long", "Long":
		return "100L"
	case "boolean", "Boolean":
		return "true"
	case "double", "Double":
		return "3.14"
	default:
		return "null"
	}
}

// javaArg is the argument passed for a parameter of the given type.
func javaArg(p extract.Param) string {
	switch base := genericBase(p.Type); base {
	case "String":
		return fmt.Sprintf(`"test%s"`, capitalize(p.Name))
	case "int", "Integer", "short", "Short", "byte", "Byte":
		return "1"
	case "long", "Long":
		return "1L"
	case "double", "Double", "float", "Float":
		return "1.0"
	case "boolean", "Boolean":
		return "true"
	case "Date":
		return "new Date()"
	default:
		return "null"
	}
}

// javaMatcher is the Mockito argument matcher for a parameter type.
func javaMatcher(typ string) string {
	switch base := genericBase(typ); base {
	case "String":
		return "anyString()"
	case "Date":
		return "any(Date.class)"
	case "boolean", "Boolean":
		return "anyBoolean()"
	case "long", "Long":
		return "anyLong()"
	case "int", "Integer":
		return "anyInt()"
	default:
		return "any()"
	}
}

// javaExpected builds a value of typ to return from a stubbed dependency.
func javaExpected(typ string) string {
	if d, ok := javaPrimitiveDefaults[typ]; ok {
		return d
	}
	if strings.HasSuffix(typ, "[]") {
		return "new " + strings.TrimSuffix(typ, "[]") + "[0]"
	}
	switch base := genericBase(typ); base {
	case "String":
		return `"expected"`
	case "Integer", "Short", "Byte":
		return "1"
	case "Long":
		return "1L"
	case "Double":
		return "1.0"
	case "Float":
		return "1.0f"
	case "Boolean":
		return "Boolean.TRUE"
	case "Character":
		return "'a'"
	case "List", "Collection", "Iterable", "ArrayList":
		return "new ArrayList<>()"
	case "Map", "HashMap":
		return "new HashMap<>()"
	case "Set", "HashSet":
		return "new HashSet<>()"
	case "Optional":
		return "Optional.empty()"
	default:
		if base != typ {
			return "new " + base + "<>()"
		}
		return "new " + typ + "()"
	}
}

// genericBase strips type arguments: "List<User>" becomes "List".
func genericBase(typ string) string {
	typ = strings.TrimSpace(typ)
	if i := strings.Index(typ, "<"); i >= 0 {
		return typ[:i]
	}
	return typ
}

type javaField struct {
	typ, name string
}

// javaDelegate finds the dependency call a method forwards to. When the
// body calls no dependency the first one is assumed, called with the
// method's own name.
func javaDelegate(f extract.Function, deps []javaField) (dep, method string) {
	names := make(map[string]bool, len(deps))
	for _, d := range deps {
		names[d.name] = true
	}
	for _, m := range patterns.MemberCall.FindAllStringSubmatch(f.Body, -1) {
		if names[m[1]] {
			return m[1], m[2]
		}
	}
	return deps[0].name, f.Name
}

func (g *Generator) java(unit *source.Unit, facts extract.Result) string {
	text := unit.Text()
	class := unit.Stem()

	var fields, deps []javaField
	for _, m := range patterns.JavaField.FindAllStringSubmatch(text, -1) {
		f := javaField{typ: m[1], name: m[2]}
		if IsDependencyType(f.typ) {
			deps = append(deps, f)
		} else {
			fields = append(fields, f)
		}
	}
	getters := matchSet(patterns.JavaGetter, text)
	setters := matchSet(patterns.JavaSetter, text)

	var b strings.Builder
	b.WriteString(`import org.junit.jupiter.api.Test;
import org.junit.jupiter.api.BeforeEach;
import org.junit.jupiter.api.extension.ExtendWith;
import org.mockito.InjectMocks;
import org.mockito.Mock;
import org.mockito.junit.jupiter.MockitoExtension;
import static org.junit.jupiter.api.Assertions.*;
import static org.mockito.Mockito.*;
import java.util.*;

`)
	fmt.Fprintf(&b, "/**\n * Generated unit tests for %s.java\n * Dependencies are mocked with Mockito\n */\n", class)
	fmt.Fprintf(&b, "@ExtendWith(MockitoExtension.class)\npublic class %sTest {\n\n", class)
	fmt.Fprintf(&b, "    @InjectMocks\n    private %s instance;\n", class)
	for _, d := range deps {
		fmt.Fprintf(&b, "\n    @Mock\n    private %s %s;\n", d.typ, d.name)
	}
	b.WriteString(`
    @BeforeEach
    public void setUp() {
        // Mocks are injected by Mockito
    }

    @Test
    public void testInstantiation() {
        assertNotNull(instance, "The instance must not be null");
    }
`)

	for _, f := range fields {
		getter := "get" + capitalize(f.name)
		if (f.typ == "boolean" || f.typ == "Boolean") && !getters[getter] {
			getter = "is" + capitalize(f.name)
		}
		setter := "set" + capitalize(f.name)
		if !getters[getter] || !setters[setter] {
			continue
		}
		fmt.Fprintf(&b, `
    @Test
    public void test%sAnd%s() {
        %s expected = %s;
        instance.%s(expected);
        %s actual = instance.%s();
        assertEquals(expected, actual, "The getter must return the value set by the setter");
    }
`, capitalize(getter), capitalize(setter), f.typ, javaFieldValue(f.typ), setter, f.typ, getter)
	}

	var methods []extract.Function
	for _, f := range facts.Functions {
		if f.Visibility == "public" && f.ReturnType != "" && !javaObjectMethods[f.Name] {
			methods = append(methods, f)
		}
	}

	for _, f := range methods {
		if len(f.Params) > 0 {
			continue
		}
		switch genericBase(f.ReturnType) {
		case "Map":
			g.javaMapTests(&b, text, f)
		case "List":
			fmt.Fprintf(&b, `
    @Test
    public void test%sReturnsList() {
        var result = instance.%s();
        assertNotNull(result, "%s must not return null");
        assertInstanceOf(java.util.List.class, result, "Must return a List");
    }
`, capitalize(f.Name), f.Name, f.Name)
		}
	}

	constants := make(map[string]bool)
	for _, m := range patterns.JavaConstantString.FindAllStringSubmatch(text, -1) {
		name, value := m[1], m[2]
		if name == "toString" || name == "getName" || name == "getClass" {
			continue
		}
		constants[name] = true
		fmt.Fprintf(&b, `
    @Test
    public void test%s() {
        String result = instance.%s();
        assertEquals("%s", result, "The method must return '%s'");
    }
`, capitalize(name), name, value, value)
	}

	for _, d := range deps {
		getter, setter := "get"+capitalize(d.name), "set"+capitalize(d.name)
		if !getters[getter] || !setters[setter] {
			continue
		}
		fmt.Fprintf(&b, `
    @Test
    public void test%sAnd%s() {
        %s mock%s = mock(%s.class);
        instance.%s(mock%s);
        assertEquals(mock%s, instance.%s(), "The getter must return the value set by the setter");
    }
`, capitalize(getter), capitalize(setter), d.typ, capitalize(d.name), d.typ, setter, capitalize(d.name), capitalize(d.name), getter)
	}

	for _, f := range methods {
		simpleGetter := strings.HasPrefix(f.Name, "get") && len(f.Params) == 0
		simpleSetter := strings.HasPrefix(f.Name, "set") && len(f.Params) <= 1
		if simpleGetter || simpleSetter || constants[f.Name] {
			continue
		}
		g.javaMethodTests(&b, f, deps)
	}

	b.WriteString("\n}\n")
	return b.String()
}

func (g *Generator) javaMapTests(b *strings.Builder, text string, f extract.Function) {
	name := capitalize(f.Name)
	fmt.Fprintf(b, `
    @Test
    public void test%sReturnsMap() {
        var result = instance.%s();
        assertNotNull(result, "%s must not return null");
        assertInstanceOf(java.util.Map.class, result, "Must return a Map");
    }
`, name, f.Name, f.Name)

	var keys []string
	seen := make(map[string]bool)
	for _, m := range patterns.JavaMapPut.FindAllStringSubmatch(f.Body, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	if len(keys) == 0 {
		return
	}

	fmt.Fprintf(b, `
    @Test
    public void test%sContainsExpectedKeys() {
        var result = instance.%s();
        assertNotNull(result);
        assertEquals(%d, result.size(), "The Map must contain exactly %d keys");
`, name, f.Name, len(keys), len(keys))
	for _, key := range keys[:min(5, len(keys))] {
		fmt.Fprintf(b, "        assertTrue(result.containsKey(\"%s\"), \"The Map must contain the key \\\"%s\\\"\");\n", key, key)
	}
	b.WriteString("    }\n")

	for _, key := range keys[:min(g.limits.MapKeys, len(keys))] {
		setter := "set" + capitalize(key)
		if !strings.Contains(text, setter+"(String") {
			continue
		}
		fmt.Fprintf(b, `
    @Test
    public void test%sReturnsSetValue_%s() {
        String testValue = "testValue_%s";
        instance.%s(testValue);
        var result = instance.%s();
        assertEquals(testValue, result.get("%s"), "The Map must hold the value set for '%s'");
    }
`, name, key, key, setter, f.Name, key, key)
	}
}

func (g *Generator) javaMethodTests(b *strings.Builder, f extract.Function, deps []javaField) {
	name := capitalize(f.Name)
	args := make([]string, len(f.Params))
	matchers := make([]string, len(f.Params))
	dates := 0
	for i, p := range f.Params {
		args[i] = javaArg(p)
		matchers[i] = javaMatcher(p.Type)
		if args[i] == "new Date()" && dates < 2 {
			args[i] = []string{"beginDate", "endDate"}[dates]
			dates++
		}
	}
	call := strings.Join(args, ", ")
	dateVars := ""
	if dates > 0 {
		dateVars = "        Date beginDate = new Date();\n        Date endDate = new Date();\n"
	}

	if f.ReturnType != "void" && len(deps) > 0 {
		dep, method := javaDelegate(f, deps)
		when := fmt.Sprintf("when(%s.%s(%s))", dep, method, strings.Join(matchers, ", "))
		verify := fmt.Sprintf("verify(%s).%s(%s);", dep, method, call)
		primitive := isPrimitive(f.ReturnType)
		notNull := "        assertNotNull(result);\n"
		if primitive {
			notNull = ""
		}

		if IsPassThrough(f.Body) {
			fmt.Fprintf(b, `
    @Test
    public void test%s_Delegation() {
%s        %s expectedResponse = %s;
        %s
            .thenReturn(expectedResponse);

        %s result = instance.%s(%s);

%s        assertEquals(expectedResponse, result);
        %s
    }
`, name, dateVars, f.ReturnType, javaExpected(f.ReturnType), when, f.ReturnType, f.Name, call, notNull, verify)
			if !primitive {
				fmt.Fprintf(b, `
    @Test
    public void test%s_WhenDependencyReturnsNull() {
%s        %s
            .thenReturn(null);

        %s result = instance.%s(%s);

        assertNull(result, "A null from the dependency must be returned as null");
        %s
    }
`, name, dateVars, when, f.ReturnType, f.Name, call, verify)
			}
			return
		}

		fmt.Fprintf(b, `
    @Test
    public void test%s() {
        // Arrange
%s        %s expectedResponse = %s;
        %s
            .thenReturn(expectedResponse);

        // Act
        %s result = instance.%s(%s);

        // Assert
%s        assertEquals(expectedResponse, result);
        %s
    }

    @Test
    public void test%s_WhenDependencyThrows() {
%s        %s
            .thenThrow(new RuntimeException("Dependency failure"));

        assertThrows(RuntimeException.class, () -> {
            instance.%s(%s);
        });
    }
`, name, dateVars, f.ReturnType, javaExpected(f.ReturnType), when, f.ReturnType, f.Name, call, notNull, verify,
			name, dateVars, when, f.Name, call)
		return
	}

	if a, ok := arithmeticFor(f.Name, len(f.Params)); ok && javaNumeric[f.ReturnType] {
		delta := ""
		if isFloating(f.ReturnType) {
			delta = ", 1e-9"
		}
		fmt.Fprintf(b, "\n    @Test\n    public void test%s() {\n", name)
		for _, c := range a.cases {
			fmt.Fprintf(b, "        assertEquals(%s, instance.%s(%s)%s);\n", c.want, f.Name, strings.Join(c.args, ", "), delta)
		}
		b.WriteString("    }\n")
		if a.zero != nil && !isFloating(f.ReturnType) {
			fmt.Fprintf(b, `
    @Test
    public void test%s_ByZero() {
        assertThrows(ArithmeticException.class, () -> instance.%s(%s));
    }
`, name, f.Name, strings.Join(a.zero, ", "))
		}
		return
	}

	fmt.Fprintf(b, `
    @Test
    public void test%s() {
%s        assertDoesNotThrow(() -> {
            instance.%s(%s);
        });
    }
`, name, dateVars, f.Name, call)
}

// matchSet collects the first capture group of every match of re.
func matchSet(re *regexp.Regexp, text string) map[string]bool {
	set := make(map[string]bool)
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		set[m[1]] = true
	}
	return set
}
