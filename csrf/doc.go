// Package csrf carries the CSRF token between a browser-style client and
// the server.
//
// # Reading the token
//
// The server issues the token in the "csrftoken" cookie. FromCookieHeader
// reads it from a raw Cookie header, FromJar from an http.CookieJar.
// Element renders the hidden form input pages embed:
//
//	<input type="hidden" name="csrfmiddlewaretoken" value="...">
//
// # Client transport
//
// Transport wraps an http.RoundTripper and sets the X-CSRFToken header on
// unsafe requests (anything but GET, HEAD, OPTIONS and TRACE) to the
// configured origin:
//
//	jar, _ := cookiejar.New(nil)
//	client := &http.Client{
//	    Jar: jar,
//	    Transport: csrf.NewTransport(nil, csrf.TransportConfig{
//	        Origin: origin,
//	        Token:  csrf.JarToken(jar, ""),
//	    }),
//	}
//
// # Server middleware
//
// Middleware issues the cookie and rejects unsafe requests whose header
// or form token does not match it:
//
//	r.Use(csrf.Middleware(csrf.Config{
//	    Secure: true,
//	    ErrorFunc: func(r *http.Request, err error) {
//	        slog.Warn("csrf rejected", "path", r.URL.Path, "error", err)
//	    },
//	}))
package csrf
