package exporter

import "errors"

var (
	// ErrNilRouter is returned by FromRouter when the router is nil.
	ErrNilRouter = errors.New("exporter: router must not be nil")

	// ErrInvalidTemplate is returned when a route path template has
	// unbalanced braces.
	ErrInvalidTemplate = errors.New("exporter: invalid path template")
)
