package csrf

import (
	"html"
	"net/http"
	"net/url"
	"strings"
)

// Names used by the CSRF cookie, request header and form field.
const (
	CookieName = "csrftoken"
	HeaderName = "X-CSRFToken"
	FormField  = "csrfmiddlewaretoken"
)

// FromCookieHeader returns the value of the named cookie in a Cookie
// header string ("a=1; csrftoken=abc"). The value is percent-decoded;
// undecodable values are returned as-is.
func FromCookieHeader(header, name string) (string, bool) {
	if header == "" {
		return "", false
	}

	prefix := name + "="
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, prefix) {
			continue
		}
		value := part[len(prefix):]
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		return value, true
	}

	return "", false
}

// FromRequest returns the CSRF cookie carried by r.
func FromRequest(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

// FromJar returns the named cookie that jar would send to u.
func FromJar(jar http.CookieJar, u *url.URL, name string) (string, bool) {
	if jar == nil || u == nil {
		return "", false
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Element renders the hidden form input carrying token. An empty token
// renders an empty value.
func Element(token string) string {
	return `<input type="hidden" name="` + FormField + `" value="` + html.EscapeString(token) + `">`
}

// SafeMethod reports whether method is exempt from CSRF protection
// (RFC 9110 Section 9.2.1 safe methods plus TRACE).
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

// SameOrigin reports whether target points at origin. Relative URLs are
// same-origin; scheme-relative URLs ("//host/path") compare the host
// only; absolute URLs compare scheme and host (RFC 6454 Section 5).
func SameOrigin(origin, target *url.URL) bool {
	if target == nil {
		return false
	}
	if target.Scheme == "" && target.Host == "" {
		return true
	}
	if origin == nil {
		return false
	}
	if !strings.EqualFold(origin.Host, target.Host) {
		return false
	}
	return target.Scheme == "" || strings.EqualFold(origin.Scheme, target.Scheme)
}
