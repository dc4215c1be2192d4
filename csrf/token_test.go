package csrf

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCookieHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		found  bool
	}{
		{"empty header", "", "", false},
		{"single cookie", "csrftoken=abc", "abc", true},
		{"among others", "sessionid=xyz; csrftoken=abc; theme=dark", "abc", true},
		{"extra spaces", "  csrftoken=abc  ;theme=dark", "abc", true},
		{"percent encoded", "csrftoken=a%20b", "a b", true},
		{"plus kept", "csrftoken=a+b", "a+b", true},
		{"invalid escape kept", "csrftoken=a%zz", "a%zz", true},
		{"prefix of other name", "xcsrftoken=abc", "", false},
		{"longer name", "csrftoken2=abc", "", false},
		{"empty value", "csrftoken=", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromCookieHeader(tt.header, CookieName)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromJar(t *testing.T) {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	u, err := url.Parse("http://example.com/")
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: CookieName, Value: "abc", Path: "/"}})

	got, ok := FromJar(jar, u, CookieName)
	require.True(t, ok)
	assert.Equal(t, "abc", got)

	other, err := url.Parse("http://other.example/")
	require.NoError(t, err)
	_, ok = FromJar(jar, other, CookieName)
	assert.False(t, ok)

	_, ok = FromJar(nil, u, CookieName)
	assert.False(t, ok)
}

func TestElement(t *testing.T) {
	assert.Equal(t,
		`<input type="hidden" name="csrfmiddlewaretoken" value="abc">`,
		Element("abc"))
	assert.Equal(t,
		`<input type="hidden" name="csrfmiddlewaretoken" value="">`,
		Element(""))
	assert.Equal(t,
		`<input type="hidden" name="csrfmiddlewaretoken" value="&#34;&gt;">`,
		Element(`">`))
}

func TestSafeMethod(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace} {
		assert.True(t, SafeMethod(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.False(t, SafeMethod(m), m)
	}
}

func TestSameOrigin(t *testing.T) {
	origin, err := url.Parse("https://example.com:8443")
	require.NoError(t, err)

	tests := []struct {
		target string
		want   bool
	}{
		{"/relative/path", true},
		{"relative", true},
		{"https://example.com:8443", true},
		{"https://example.com:8443/path", true},
		{"https://EXAMPLE.com:8443/path", true},
		{"//example.com:8443/path", true},
		{"http://example.com:8443/path", false},
		{"https://example.com/path", false},
		{"https://evil.com/path", false},
		{"//evil.com/path", false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			target, err := url.Parse(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, SameOrigin(origin, target))
		})
	}

	t.Run("nil origin", func(t *testing.T) {
		rel, _ := url.Parse("/x")
		abs, _ := url.Parse("https://example.com/x")
		assert.True(t, SameOrigin(nil, rel))
		assert.False(t, SameOrigin(nil, abs))
		assert.False(t, SameOrigin(origin, nil))
	})
}
