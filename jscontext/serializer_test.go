package jscontext

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticValues(values map[string]any) func(*http.Request) map[string]any {
	return func(*http.Request) map[string]any {
		return values
	}
}

func TestSerializer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	t.Run("serializable values only", func(t *testing.T) {
		s := NewSerializer(SerializerConfig{
			Values: staticValues(map[string]any{
				"STATIC_URL": "/static/",
				"DEBUG":      true,
				"COUNT":      3,
				"TAGS":       []string{"a"},
				"handler":    func() {},
				"request":    struct{ Path string }{"/"},
				"nothing":    nil,
			}),
		})

		c := s.Serialize(req)
		assert.Equal(t, "/static/", c.StaticURL())

		for _, key := range []string{"DEBUG", "COUNT", "TAGS"} {
			_, ok := c.Get(key)
			assert.True(t, ok, key)
		}
		for _, key := range []string{"handler", "request", "nothing"} {
			_, ok := c.Get(key)
			assert.False(t, ok, key)
		}
	})

	t.Run("include filter", func(t *testing.T) {
		s := NewSerializer(SerializerConfig{
			Values:  staticValues(map[string]any{"STATIC_URL": "/static/", "MEDIA_URL": "/media/"}),
			Include: []string{"STATIC_URL"},
		})

		c := s.Serialize(req)
		_, ok := c.Get(KeyMediaURL)
		assert.False(t, ok)
		assert.Equal(t, "/static/", c.StaticURL())
	})

	t.Run("exclude filter", func(t *testing.T) {
		s := NewSerializer(SerializerConfig{
			Values:  staticValues(map[string]any{"STATIC_URL": "/static/", "MEDIA_URL": "/media/"}),
			Exclude: []string{"MEDIA_URL"},
		})

		c := s.Serialize(req)
		_, ok := c.Get(KeyMediaURL)
		assert.False(t, ok)
		assert.Equal(t, "/static/", c.StaticURL())
	})

	t.Run("languages pairs become a map", func(t *testing.T) {
		s := NewSerializer(SerializerConfig{
			Values: staticValues(map[string]any{
				"LANGUAGES": [][2]string{{"en", "English"}, {"fr", "French"}},
			}),
		})

		c := s.Serialize(req)
		assert.Equal(t, map[string]string{"en": "English", "fr": "French"}, c.Languages())
	})

	t.Run("language code adds names", func(t *testing.T) {
		s := NewSerializer(SerializerConfig{
			Values: staticValues(map[string]any{"LANGUAGE_CODE": "fr"}),
		})

		c := s.Serialize(req)
		assert.Equal(t, "fr", c.LanguageCode())
		assert.Equal(t, "French", c.LanguageName())
		assert.Equal(t, "français", c.LanguageNameLocal())
	})

	t.Run("en-us falls back to en", func(t *testing.T) {
		s := NewSerializer(SerializerConfig{
			Values: staticValues(map[string]any{"LANGUAGE_CODE": "en-us"}),
		})

		c := s.Serialize(req)
		assert.Equal(t, "en-us", c.LanguageCode())
		assert.Equal(t, "English", c.LanguageName())
	})

	t.Run("language names honor include", func(t *testing.T) {
		s := NewSerializer(SerializerConfig{
			Values:  staticValues(map[string]any{"LANGUAGE_CODE": "fr"}),
			Include: []string{"LANGUAGE_CODE", "LANGUAGE_NAME"},
		})

		c := s.Serialize(req)
		assert.Equal(t, "French", c.LanguageName())
		_, ok := c.Get(KeyLanguageNameLocal)
		assert.False(t, ok)
	})

	t.Run("invalid language code", func(t *testing.T) {
		s := NewSerializer(SerializerConfig{
			Values: staticValues(map[string]any{"LANGUAGE_CODE": "!!"}),
		})

		c := s.Serialize(req)
		assert.Equal(t, "!!", c.LanguageCode())
		_, ok := c.Get(KeyLanguageName)
		assert.False(t, ok)
	})

	t.Run("custom processor", func(t *testing.T) {
		s := NewSerializer(SerializerConfig{
			Values: staticValues(map[string]any{"VERSION": 2}),
			Processors: map[string]ProcessorFunc{
				"VERSION": func(value any, data map[string]any) any {
					data["VERSION_LABEL"] = "v2"
					return value
				},
			},
		})

		c := s.Serialize(req)
		label, ok := c.Lookup("VERSION_LABEL")
		require.True(t, ok)
		assert.Equal(t, "v2", label)
	})

	t.Run("user key in values is ignored", func(t *testing.T) {
		s := NewSerializer(SerializerConfig{
			Values: staticValues(map[string]any{"user": "spoofed"}),
		})

		c := s.Serialize(req)
		require.NotNil(t, c.User())
		assert.Empty(t, c.User().Username)
	})
}

func TestSerializerUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	t.Run("anonymous by default", func(t *testing.T) {
		c := NewSerializer(SerializerConfig{}).Serialize(req)
		require.NotNil(t, c.User())
		assert.False(t, c.User().IsAuthenticated)
		assert.Equal(t, []string{}, c.User().Permissions)
	})

	t.Run("user func", func(t *testing.T) {
		s := NewSerializer(SerializerConfig{
			UserFunc: func(r *http.Request) *User {
				if r.Header.Get("X-User") == "" {
					return nil
				}
				return &User{Username: r.Header.Get("X-User"), IsAuthenticated: true, IsStaff: true}
			},
		})

		authed := httptest.NewRequest(http.MethodGet, "/", nil)
		authed.Header.Set("X-User", "alice")

		c := s.Serialize(authed)
		assert.Equal(t, "alice", c.User().Username)
		assert.True(t, c.User().IsStaff)
		assert.NotNil(t, c.User().Permissions)

		c = s.Serialize(req)
		assert.False(t, c.User().IsAuthenticated)
	})

	t.Run("disabled", func(t *testing.T) {
		c := NewSerializer(SerializerConfig{DisableUser: true}).Serialize(req)
		assert.Nil(t, c.User())
	})

	t.Run("json output", func(t *testing.T) {
		s := NewSerializer(SerializerConfig{
			Values: staticValues(map[string]any{"STATIC_URL": "/static/"}),
		})

		data, err := s.JSON(req)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "/static/", decoded["STATIC_URL"])
		assert.Contains(t, decoded, "user")
	})
}
