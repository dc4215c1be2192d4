package reverse

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
)

// ArgsKind identifies the form of a resolution argument set.
type ArgsKind int

const (
	// ArgsNone means no arguments were supplied.
	ArgsNone ArgsKind = iota
	// ArgsPositional substitutes values by token position.
	ArgsPositional
	// ArgsKeyed substitutes values by token identifier.
	ArgsKeyed
)

// String returns the name of the kind.
func (k ArgsKind) String() string {
	switch k {
	case ArgsNone:
		return "none"
	case ArgsPositional:
		return "positional"
	case ArgsKeyed:
		return "keyed"
	default:
		return "ArgsKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Args is the argument set of a resolution request. The zero value is
// the empty (none) form.
type Args struct {
	kind       ArgsKind
	positional []any
	keyed      map[string]any
}

// NoArgs returns the empty argument set.
func NoArgs() Args {
	return Args{}
}

// Positional returns an argument set substituted by position. A call with
// no values is an explicit empty sequence, which differs from NoArgs only
// in form: both resolve patterns without tokens.
func Positional(values ...any) Args {
	return Args{kind: ArgsPositional, positional: values}
}

// Keyed returns an argument set substituted by token identifier. Keys
// that match no token are ignored.
func Keyed(values map[string]any) Args {
	return Args{kind: ArgsKeyed, keyed: values}
}

// Kind returns the form of the argument set.
func (a Args) Kind() ArgsKind {
	return a.kind
}

// Len returns the number of supplied values.
func (a Args) Len() int {
	switch a.kind {
	case ArgsPositional:
		return len(a.positional)
	case ArgsKeyed:
		return len(a.keyed)
	default:
		return 0
	}
}

// formatValue renders a scalar argument as a path segment. Zero values
// (0, false, "") are legal and rendered as-is.
func formatValue(v any) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: nil", ErrUnsupportedValue)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return "", fmt.Errorf("%w: nil %T", ErrUnsupportedValue, v)
		}
	}

	switch x := v.(type) {
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case fmt.Stringer:
		return x.String(), nil
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
		}
		return string(b), nil
	}

	return formatKind(rv)
}

// formatKind covers the remaining sized and named scalar types by their
// underlying kind.
func formatKind(rv reflect.Value) (string, error) {
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedValue, rv.Type())
	}
}
