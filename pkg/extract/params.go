package extract

import "strings"

// splitParams splits a parameter list on top-level commas and parses each
// piece with parse. Pieces that parse to an empty name are dropped.
func splitParams(list string, parse func(string) Param) []Param {
	var out []Param
	for _, piece := range splitTopLevel(list) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if p := parse(piece); p.Name != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitTopLevel splits s on commas that are not nested inside (), [], {}
// or <>.
func splitTopLevel(s string) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

// javaParam parses "final @Valid Map<K, V> name" into its type and name.
func javaParam(piece string) Param {
	fields := strings.Fields(piece)
	kept := fields[:0]
	for _, f := range fields {
		if f == "final" || strings.HasPrefix(f, "@") {
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		return Param{}
	}
	if len(kept) == 1 {
		return Param{Name: kept[0]}
	}
	name := kept[len(kept)-1]
	typ := strings.Join(kept[:len(kept)-1], " ")
	if strings.HasSuffix(name, "[]") {
		name = strings.TrimSuffix(name, "[]")
		typ += "[]"
	}
	return Param{Name: name, Type: typ}
}

// pythonParam parses "name: int = 3", "*args" and "**kwargs".
func pythonParam(piece string) Param {
	name, _, _ := strings.Cut(piece, "=")
	name, typ, _ := strings.Cut(name, ":")
	name = strings.TrimLeft(strings.TrimSpace(name), "*")
	if name == "" || name == "/" {
		return Param{}
	}
	return Param{Name: name, Type: strings.TrimSpace(typ)}
}

// scriptParam parses "name?: Type = value", "...rest" and TypeScript
// constructor parameter properties such as "private service: Service".
func scriptParam(piece string) Param {
	name, _, _ := strings.Cut(piece, "=")
	name, typ, _ := strings.Cut(name, ":")
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return Param{}
	}
	name = fields[len(fields)-1]
	name = strings.TrimSuffix(strings.TrimPrefix(name, "..."), "?")
	return Param{Name: name, Type: strings.TrimSpace(typ)}
}
