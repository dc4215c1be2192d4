package loader

import "errors"

var (
	// ErrNoResolver is returned by New when the resolver is nil.
	ErrNoResolver = errors.New("loader: resolver must not be nil")

	// ErrNoSource is returned by New when Config.URLs is nil.
	ErrNoSource = errors.New("loader: route table source must not be nil")

	// ErrNoContextSource is reported by Reload when neither Config.Context
	// nor Config.BaseURL can supply the context.
	ErrNoContextSource = errors.New("loader: no context source configured")

	// ErrUnexpectedStatus is returned by HTTPSource for non-2xx responses.
	ErrUnexpectedStatus = errors.New("loader: unexpected response status")
)
