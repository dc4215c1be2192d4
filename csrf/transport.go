package csrf

import (
	"net/http"
	"net/url"
)

// TokenFunc returns the CSRF token to attach to req.
type TokenFunc func(req *http.Request) (string, bool)

// JarToken returns a TokenFunc reading cookieName from jar for the
// request URL. An empty cookieName defaults to CookieName.
func JarToken(jar http.CookieJar, cookieName string) TokenFunc {
	if cookieName == "" {
		cookieName = CookieName
	}
	return func(req *http.Request) (string, bool) {
		return FromJar(jar, req.URL, cookieName)
	}
}

// TransportConfig configures a Transport.
type TransportConfig struct {
	// Origin is the scheme and host requests must target to receive the
	// token. Requests to other origins are forwarded untouched.
	Origin *url.URL

	// Token supplies the token value. Typically JarToken.
	Token TokenFunc

	// HeaderName overrides the request header. Defaults to HeaderName.
	HeaderName string
}

// Transport is an http.RoundTripper that adds the CSRF header to unsafe
// same-origin requests.
type Transport struct {
	base   http.RoundTripper
	config TransportConfig
}

// NewTransport creates a Transport that delegates to base. When base is
// nil, a clone of http.DefaultTransport is used.
func NewTransport(base http.RoundTripper, cfg TransportConfig) *Transport {
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = HeaderName
	}

	return &Transport{
		base:   base,
		config: cfg,
	}
}

// RoundTrip sets the CSRF header on a clone of req when the method is
// unsafe and the target is same-origin, then delegates to the base
// transport. When no token is available the request is sent without it
// and the server decides.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if SafeMethod(req.Method) || !SameOrigin(t.config.Origin, req.URL) {
		return t.base.RoundTrip(req)
	}

	if t.config.Token == nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, ErrNoTokenSource
	}

	token, ok := t.config.Token(req)
	if !ok {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set(t.config.HeaderName, token)

	return t.base.RoundTrip(clone)
}
