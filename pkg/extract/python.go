package extract

import (
	"strings"

	"github.com/panbanda/probe/pkg/patterns"
	"github.com/panbanda/probe/pkg/source"
)

// pythonDeclarations extracts defs and classes. A declaration extends to
// the line before the next non-blank, non-comment line indented at or
// below its header, or to the end of the file.
func pythonDeclarations(unit *source.Unit) ([]Function, []Class) {
	text := unit.Text()
	lines := unit.Lines()

	var classes []Class
	type span struct {
		name   string
		indent int
		start  int
		end    int
	}
	var classSpans []span
	for _, m := range patterns.PythonClass.FindAllStringSubmatchIndex(text, -1) {
		start := unit.LineOf(m[0])
		indent := indentWidth(text[m[2]:m[3]])
		end := blockEnd(lines, start, indent)
		name := text[m[4]:m[5]]
		classes = append(classes, Class{Name: name, StartLine: start, Lines: end - start + 1})
		classSpans = append(classSpans, span{name: name, indent: indent, start: start, end: end})
	}

	var funcs []Function
	for i, m := range patterns.PythonDef.FindAllStringSubmatchIndex(text, -1) {
		start := unit.LineOf(m[0])
		indent := indentWidth(text[m[2]:m[3]])
		end := blockEnd(lines, start, indent)

		f := Function{
			Name:      nameOr(text[m[4]:m[5]], i),
			StartLine: start,
			EndLine:   end,
			Kind:      KindFunction,
			Body:      strings.Join(lines[start:end], "\n"),
		}
		for _, c := range classSpans {
			if start > c.start && end <= c.end && indent > c.indent {
				f.Kind = KindMethod
				f.Receiver = c.name
			}
		}

		params := splitParams(text[m[6]:m[7]], pythonParam)
		if f.Kind == KindMethod && len(params) > 0 && (params[0].Name == "self" || params[0].Name == "cls") {
			params = params[1:]
		}
		f.Params = params
		funcs = append(funcs, f)
	}
	return funcs, classes
}

// blockEnd returns the last line (1-based) of the block whose header is on
// line start with the given indentation.
func blockEnd(lines []string, start, indent int) int {
	end := start
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if indentWidth(lines[i]) <= indent {
			break
		}
		end = i + 1
	}
	return end
}

// indentWidth measures leading whitespace, counting a tab as four columns.
func indentWidth(s string) int {
	width := 0
	for _, r := range s {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}
