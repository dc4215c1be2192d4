package csrf

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type tokenKey struct{}

// TokenFromContext returns the CSRF token stored in the request context by
// Middleware. Returns an empty string when the middleware did not run.
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok {
		return token
	}
	return ""
}

// Config configures the CSRF middleware.
type Config struct {
	// CookieName overrides the cookie carrying the token.
	// Defaults to CookieName.
	CookieName string

	// HeaderName overrides the header checked on unsafe requests.
	// Defaults to HeaderName.
	HeaderName string

	// FormField overrides the form field checked when the header is
	// absent. Defaults to FormField.
	FormField string

	// CookiePath is the cookie Path attribute. Defaults to "/".
	CookiePath string

	// CookieMaxAge is the cookie lifetime. Defaults to one year.
	CookieMaxAge time.Duration

	// Secure sets the cookie Secure attribute.
	Secure bool

	// SameSite sets the cookie SameSite attribute. Defaults to Lax.
	SameSite http.SameSite

	// GenerateFunc returns a new token. Defaults to GenerateToken.
	GenerateFunc func() string

	// ErrorFunc is an optional callback invoked when a request is
	// rejected. When nil, no logging is performed.
	ErrorFunc func(r *http.Request, err error)

	// FailureHandler replies to rejected requests. When nil, a plain
	// 403 Forbidden is written.
	FailureHandler http.Handler
}

// Middleware returns a middleware that issues a CSRF cookie to clients
// that lack one and rejects unsafe requests whose submitted token (header
// or form field) does not match the cookie.
//
// The cookie is readable by page scripts (not HttpOnly) so they can echo
// it back in the header.
func Middleware(cfg Config) mux.MiddlewareFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = HeaderName
	}
	if cfg.FormField == "" {
		cfg.FormField = FormField
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	if cfg.CookieMaxAge == 0 {
		cfg.CookieMaxAge = 365 * 24 * time.Hour
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteLaxMode
	}
	if cfg.GenerateFunc == nil {
		cfg.GenerateFunc = GenerateToken
	}

	failure := cfg.FailureHandler
	if failure == nil {
		failure = http.HandlerFunc(forbidden)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, hasCookie := FromRequest(r, cfg.CookieName)

			token := cookie
			if !hasCookie || cookie == "" {
				token = cfg.GenerateFunc()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     cfg.CookiePath,
					MaxAge:   int(cfg.CookieMaxAge / time.Second),
					Secure:   cfg.Secure,
					SameSite: cfg.SameSite,
				})
			}

			if !SafeMethod(r.Method) {
				if err := verify(r, cookie, cfg); err != nil {
					if cfg.ErrorFunc != nil {
						cfg.ErrorFunc(r, err)
					}
					failure.ServeHTTP(w, r)
					return
				}
			}

			r = r.WithContext(context.WithValue(r.Context(), tokenKey{}, token))
			next.ServeHTTP(w, r)
		})
	}
}

// verify checks the submitted token of an unsafe request against the
// cookie the client already held.
func verify(r *http.Request, cookie string, cfg Config) error {
	if cookie == "" {
		return ErrTokenMissing
	}

	submitted := r.Header.Get(cfg.HeaderName)
	if submitted == "" && isForm(r) {
		submitted = r.PostFormValue(cfg.FormField)
	}
	if submitted == "" {
		return ErrTokenMissing
	}

	if !constantTimeEqual(submitted, cookie) {
		return ErrTokenMismatch
	}
	return nil
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

// constantTimeEqual compares two strings without leaking their length
// through timing.
func constantTimeEqual(a, b string) bool {
	aHash := sha256.Sum256([]byte(a))
	bHash := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(aHash[:], bHash[:]) == 1
}

func forbidden(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

// GenerateToken returns a new random token: a UUID v4 without dashes.
func GenerateToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// IsRejection reports whether err is one of the errors passed to
// Config.ErrorFunc.
func IsRejection(err error) bool {
	return errors.Is(err, ErrTokenMissing) || errors.Is(err, ErrTokenMismatch)
}
