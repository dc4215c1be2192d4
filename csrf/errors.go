package csrf

import "errors"

var (
	// ErrNoTokenSource is returned by Transport when a request needs a
	// token and TransportConfig.Token is nil.
	ErrNoTokenSource = errors.New("csrf: token source must not be nil")

	// ErrTokenMissing is reported when an unsafe request carries no CSRF
	// cookie or no submitted token.
	ErrTokenMissing = errors.New("csrf: token missing")

	// ErrTokenMismatch is reported when the submitted token differs from
	// the cookie.
	ErrTokenMismatch = errors.New("csrf: token mismatch")
)
