// Package jscontext holds the context blob a server hands to page code
// and the serializer that builds it from request data.
package jscontext

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
)

// Well-known context keys.
const (
	KeyStaticURL         = "STATIC_URL"
	KeyMediaURL          = "MEDIA_URL"
	KeyLanguageCode      = "LANGUAGE_CODE"
	KeyLanguageName      = "LANGUAGE_NAME"
	KeyLanguageNameLocal = "LANGUAGE_NAME_LOCAL"
	KeyLanguages         = "LANGUAGES"
	KeyAbsoluteRoot      = "ABSOLUTE_ROOT"
	KeySiteRoot          = "SITE_ROOT"
	KeyUser              = "user"
)

// ErrInvalidContext is returned when a context document is not a JSON
// object or its user entry is malformed.
var ErrInvalidContext = errors.New("jscontext: invalid context")

// Context is the server-derived blob handed to page code: static roots,
// language metadata and the current user. Keys other than "user" are kept
// as decoded JSON values.
//
// A Context is not safe for concurrent mutation; loaders replace it as a
// whole.
type Context struct {
	values map[string]any
	user   *User
}

// New returns an empty context.
func New() *Context {
	return &Context{values: make(map[string]any)}
}

// Parse decodes a JSON object into a Context.
func Parse(data []byte) (*Context, error) {
	c := New()
	if err := c.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return c, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Context) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContext, err)
	}
	if raw == nil {
		return fmt.Errorf("%w: null document", ErrInvalidContext)
	}

	values := make(map[string]any, len(raw))
	var user *User
	for key, msg := range raw {
		if key == KeyUser {
			if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
				continue
			}
			user = new(User)
			if err := json.Unmarshal(msg, user); err != nil {
				return fmt.Errorf("%w: user: %w", ErrInvalidContext, err)
			}
			if user.Permissions == nil {
				user.Permissions = []string{}
			}
			continue
		}

		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidContext, key, err)
		}
		values[key] = v
	}

	c.values = values
	c.user = user
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c *Context) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.values)+1)
	maps.Copy(out, c.values)
	if c.user != nil {
		out[KeyUser] = c.user
	}
	return json.Marshal(out)
}

// Get returns the raw value stored under key.
func (c *Context) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	if key == KeyUser {
		return c.user, c.user != nil
	}
	v, ok := c.values[key]
	return v, ok
}

// Lookup returns the value stored under key when it is a string.
// It satisfies reverse.Context.
func (c *Context) Lookup(key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores value under key. Setting KeyUser requires a *User.
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	if key == KeyUser {
		c.user, _ = value.(*User)
		return
	}
	c.values[key] = value
}

// Delete removes key from the context.
func (c *Context) Delete(key string) {
	if key == KeyUser {
		c.user = nil
		return
	}
	delete(c.values, key)
}

// Values returns a copy of every key except the user.
func (c *Context) Values() map[string]any {
	if c == nil {
		return nil
	}
	return maps.Clone(c.values)
}

// Len returns the number of top-level keys, including the user.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	n := len(c.values)
	if c.user != nil {
		n++
	}
	return n
}

// Clone returns a copy whose top-level keys and user can be changed
// independently. Nested JSON values are shared.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	return &Context{
		values: maps.Clone(c.values),
		user:   c.user.clone(),
	}
}

// User returns the serialized user, or nil when user serialization was
// disabled on the server.
func (c *Context) User() *User {
	if c == nil {
		return nil
	}
	return c.user
}

// SetUser replaces the user.
func (c *Context) SetUser(u *User) {
	c.user = u
}

// StaticURL returns STATIC_URL.
func (c *Context) StaticURL() string {
	s, _ := c.Lookup(KeyStaticURL)
	return s
}

// MediaURL returns MEDIA_URL.
func (c *Context) MediaURL() string {
	s, _ := c.Lookup(KeyMediaURL)
	return s
}

// LanguageCode returns LANGUAGE_CODE.
func (c *Context) LanguageCode() string {
	s, _ := c.Lookup(KeyLanguageCode)
	return s
}

// LanguageName returns LANGUAGE_NAME, the English name of the language.
func (c *Context) LanguageName() string {
	s, _ := c.Lookup(KeyLanguageName)
	return s
}

// LanguageNameLocal returns LANGUAGE_NAME_LOCAL, the language name in the
// language itself.
func (c *Context) LanguageNameLocal() string {
	s, _ := c.Lookup(KeyLanguageNameLocal)
	return s
}

// Languages returns LANGUAGES as a code to name map. Non-string names are
// skipped.
func (c *Context) Languages() map[string]string {
	v, ok := c.Get(KeyLanguages)
	if !ok {
		return nil
	}

	switch langs := v.(type) {
	case map[string]string:
		return maps.Clone(langs)
	case map[string]any:
		out := make(map[string]string, len(langs))
		for code, name := range langs {
			if s, ok := name.(string); ok {
				out[code] = s
			}
		}
		return out
	default:
		return nil
	}
}
