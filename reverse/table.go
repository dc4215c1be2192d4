package reverse

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table maps route names to compiled patterns. A Table is immutable once
// built; reloading replaces the whole table. A nil *Table is a valid empty
// table.
type Table struct {
	routes map[string]*Pattern
}

// NewTable compiles a route name to pattern mapping. Route names must be
// non-empty.
func NewTable(routes map[string]string) (*Table, error) {
	t := &Table{routes: make(map[string]*Pattern, len(routes))}
	for name, pattern := range routes {
		if name == "" {
			return nil, fmt.Errorf("%w: empty route name for pattern %q", ErrInvalidTable, pattern)
		}
		t.routes[name] = ParsePattern(pattern)
	}
	return t, nil
}

// MustTable is like NewTable but panics on error. Intended for tests and
// package-level fixtures.
func MustTable(routes map[string]string) *Table {
	t, err := NewTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTable decodes a JSON object of the form {"name": "/pattern/<>"}.
func ParseTable(data []byte) (*Table, error) {
	t := new(Table)
	if err := t.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return t, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Table) UnmarshalJSON(data []byte) error {
	var routes map[string]string
	if err := json.Unmarshal(data, &routes); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	return t.fill(routes)
}

// UnmarshalYAML implements yaml.Unmarshaler for YAML route files.
func (t *Table) UnmarshalYAML(node *yaml.Node) error {
	var routes map[string]string
	if err := node.Decode(&routes); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	return t.fill(routes)
}

func (t *Table) fill(routes map[string]string) error {
	compiled, err := NewTable(routes)
	if err != nil {
		return err
	}
	t.routes = compiled.routes
	return nil
}

// MarshalJSON implements json.Marshaler, emitting the source patterns.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Map())
}

// Lookup returns the pattern registered under name. Nested namespaces are
// joined with ":"; "." is accepted as an alternative separator.
func (t *Table) Lookup(name string) (*Pattern, bool) {
	if t == nil {
		return nil, false
	}
	if p, ok := t.routes[name]; ok {
		return p, true
	}
	if strings.Contains(name, ".") {
		p, ok := t.routes[strings.ReplaceAll(name, ".", ":")]
		return p, ok
	}
	return nil, false
}

// Len returns the number of routes in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.routes)
}

// Names returns the route names in sorted order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.routes))
	for name := range t.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the table as route name to pattern string.
func (t *Table) Map() map[string]string {
	m := make(map[string]string, t.Len())
	if t == nil {
		return m
	}
	for name, p := range t.routes {
		m[name] = p.String()
	}
	return m
}
