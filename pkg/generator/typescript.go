package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/patterns"
	"github.com/panbanda/probe/pkg/source"
)

// angularHooks are lifecycle methods that are not tested directly.
var angularHooks = map[string]bool{"constructor": true, "ngOnInit": true, "ngOnDestroy": true}

type tsProvider struct {
	name, typ string
	stubs     []string
}

// tsProviders lists constructor parameters whose type is a collaborator,
// with the methods the class calls on each.
func tsProviders(text string, facts extract.Result) []tsProvider {
	ctor, ok := facts.Function("constructor")
	if !ok {
		return nil
	}
	var out []tsProvider
	for _, p := range ctor.Params {
		if p.Type == "" || !IsDependencyType(p.Type) {
			continue
		}
		prov := tsProvider{name: p.Name, typ: genericBase(p.Type)}
		seen := make(map[string]bool)
		for _, m := range patterns.ThisMemberCall.FindAllStringSubmatch(text, -1) {
			if m[1] == p.Name && !seen[m[2]] {
				seen[m[2]] = true
				prov.stubs = append(prov.stubs, m[2])
			}
		}
		out = append(out, prov)
	}
	return out
}

// tsImportOf returns the module a type is imported from in text.
func tsImportOf(text, typ string) (string, bool) {
	re := regexp.MustCompile(`import\s*\{[^}]*\b` + regexp.QuoteMeta(typ) + `\b[^}]*\}\s*from\s*['"]([^'"]+)['"]`)
	if m := re.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

func (g *Generator) typescript(unit *source.Unit, facts extract.Result) string {
	text := unit.Text()
	stem := unit.Stem()

	service := stem
	if m := patterns.ExportedClass.FindStringSubmatch(text); m != nil {
		service = m[1]
	}
	providers := tsProviders(text, facts)

	var b strings.Builder
	fmt.Fprintf(&b, "// Generated tests for %s.ts\n", stem)
	b.WriteString("import { TestBed } from '@angular/core/testing';\n")
	fmt.Fprintf(&b, "import { %s } from './%s';\n", service, stem)
	for _, p := range providers {
		if from, ok := tsImportOf(text, p.typ); ok {
			fmt.Fprintf(&b, "import { %s } from '%s';\n", p.typ, from)
		}
	}

	fmt.Fprintf(&b, "\ndescribe('%s', () => {\n  let service: %s;\n\n  beforeEach(() => {\n", service, service)
	if len(providers) == 0 {
		b.WriteString("    TestBed.configureTestingModule({});\n")
	} else {
		fmt.Fprintf(&b, "    TestBed.configureTestingModule({\n      providers: [\n        %s,\n", service)
		for _, p := range providers {
			stubs := make([]string, len(p.stubs))
			for i, s := range p.stubs {
				stubs[i] = s + ": jest.fn()"
			}
			value := "{}"
			if len(stubs) > 0 {
				value = "{ " + strings.Join(stubs, ", ") + " }"
			}
			fmt.Fprintf(&b, "        { provide: %s, useValue: %s },\n", p.typ, value)
		}
		b.WriteString("      ],\n    });\n")
	}
	fmt.Fprintf(&b, "    service = TestBed.inject(%s);\n  });\n\n", service)
	b.WriteString("  it('should be created', () => {\n    expect(service).toBeTruthy();\n  });\n")

	count := 0
	for _, f := range facts.Functions {
		if count == g.limits.TypeScriptMethods {
			break
		}
		if f.Kind != extract.KindMethod && f.Kind != extract.KindFunction {
			continue
		}
		if angularHooks[f.Name] || strings.Contains(text, "private "+f.Name+"(") {
			continue
		}
		count++
		tsMethodTest(&b, f)
	}

	b.WriteString("\n});\n")
	return b.String()
}

func tsMethodTest(b *strings.Builder, f extract.Function) {
	if a, ok := arithmeticFor(f.Name, len(f.Params)); ok {
		title := fmt.Sprintf(a.title, f.Name)
		fmt.Fprintf(b, "\n  it('%s', () => {\n", title)
		if len(a.cases) == 1 {
			c := a.cases[0]
			fmt.Fprintf(b, "    const result = service.%s(%s);\n    expect(result).toBe(%s);\n", f.Name, strings.Join(c.args, ", "), c.want)
		} else {
			for _, c := range a.cases {
				fmt.Fprintf(b, "    expect(service.%s(%s)).toBe(%s);\n", f.Name, strings.Join(c.args, ", "), c.want)
			}
		}
		b.WriteString("  });\n")
		if a.zero != nil {
			fmt.Fprintf(b, "\n  it('should throw error when dividing by zero', () => {\n    expect(() => service.%s(%s)).toThrow();\n  });\n",
				f.Name, strings.Join(a.zero, ", "))
		}
		return
	}

	values, setup := scriptArgs(f.ParamNames())
	call := fmt.Sprintf("service.%s(%s)", f.Name, strings.Join(values, ", "))
	fmt.Fprintf(b, "\n  it('should execute %s', () => {\n", f.Name)
	for _, s := range setup {
		fmt.Fprintf(b, "    %s\n", s)
	}
	if patterns.ReturnsValue.MatchString(f.Body) {
		fmt.Fprintf(b, "    const result = %s;\n    expect(result).toBeDefined();\n", call)
	} else {
		fmt.Fprintf(b, "    expect(() => %s).not.toThrow();\n", call)
	}
	b.WriteString("  });\n")
}
