package reverse

import "errors"

// Resolution errors. They indicate a programming error at the call site
// and are never retried or recovered internally.
var (
	// ErrRouteNotFound is returned when the route name is not in the table.
	// An unloaded or empty table fails every lookup with this error.
	ErrRouteNotFound = errors.New("reverse: route not found")

	// ErrArgumentCount is returned when the number of positional arguments
	// differs from the number of tokens in the pattern.
	ErrArgumentCount = errors.New("reverse: wrong number of arguments")

	// ErrKeyMissing is returned when a keyed argument set has no value for
	// a token. Anonymous tokens never have a key, so keyed arguments always
	// fail on them.
	ErrKeyMissing = errors.New("reverse: required key not found")

	// ErrUnsupportedValue is returned when an argument cannot be rendered
	// as a URL path segment (nil, slices, maps, structs).
	ErrUnsupportedValue = errors.New("reverse: unsupported argument value")
)

// Configuration errors.
var (
	// ErrMissingConfiguration is returned by Absolute and Site when the
	// context does not carry the corresponding root URL.
	ErrMissingConfiguration = errors.New("reverse: missing configuration")

	// ErrInvalidTable is returned when a route table document cannot be
	// decoded.
	ErrInvalidTable = errors.New("reverse: invalid route table")
)
