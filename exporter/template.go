package exporter

import (
	"fmt"
	"strings"
)

// FromTemplate converts a gorilla/mux path template into the token form
// understood by the resolver. Each variable, with or without a pattern,
// becomes a named token:
//
//	/articles/{category}/{id:[0-9]+} -> /articles/<category>/<id>
//
// The result always starts with "/".
func FromTemplate(tpl string) (string, error) {
	vars, err := templateVars(tpl)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(tpl))

	end := 0
	for _, v := range vars {
		b.WriteString(tpl[end:v.start])
		b.WriteByte('<')
		b.WriteString(v.name)
		b.WriteByte('>')
		end = v.end
	}
	b.WriteString(tpl[end:])

	out := b.String()
	if !strings.HasPrefix(out, "/") {
		out = "/" + out
	}
	return out, nil
}

// templateVar is one {name[:pattern]} variable of a template; start and
// end delimit it including its braces.
type templateVar struct {
	name       string
	start, end int
}

// templateVars locates the top-level variables of tpl so FromTemplate can
// swap each one for a token. Braces nested in a variable pattern, as in
// {id:[0-9]{4}}, belong to the enclosing variable.
func templateVars(tpl string) ([]templateVar, error) {
	var (
		vars  []templateVar
		open  int
		depth int
	)
	for i := 0; i < len(tpl); i++ {
		switch tpl[i] {
		case '{':
			if depth == 0 {
				open = i
			}
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unexpected } at %d in %q", ErrInvalidTemplate, i, tpl)
			}
			if depth == 0 {
				name, _, _ := strings.Cut(tpl[open+1:i], ":")
				vars = append(vars, templateVar{name: strings.TrimSpace(name), start: open, end: i + 1})
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unclosed { at %d in %q", ErrInvalidTemplate, open, tpl)
	}
	return vars, nil
}
