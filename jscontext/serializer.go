package jscontext

import (
	"encoding/json"
	"net/http"
	"reflect"
	"slices"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ProcessorFunc transforms the value of a single context key before it is
// serialized. data holds the keys serialized so far and may be extended
// with derived keys.
type ProcessorFunc func(value any, data map[string]any) any

// SerializerConfig configures a Serializer.
type SerializerConfig struct {
	// Values returns the per-request template context to serialize.
	// When nil, only the user is serialized.
	Values func(r *http.Request) map[string]any

	// Include restricts serialization to the listed keys. Empty means
	// every key.
	Include []string

	// Exclude lists keys that are never serialized.
	Exclude []string

	// Processors adds or overrides per-key processors. Built-in
	// processors exist for LANGUAGES and LANGUAGE_CODE.
	Processors map[string]ProcessorFunc

	// DisableUser omits the "user" entry entirely.
	DisableUser bool

	// UserFunc returns the authenticated user of the request. When nil or
	// when it returns nil, the anonymous user is serialized.
	UserFunc func(r *http.Request) *User
}

// Serializer builds the context blob from request data on the server.
type Serializer struct {
	cfg        SerializerConfig
	processors map[string]ProcessorFunc
}

// NewSerializer returns a serializer for cfg.
func NewSerializer(cfg SerializerConfig) *Serializer {
	s := &Serializer{cfg: cfg}
	s.processors = map[string]ProcessorFunc{
		KeyLanguages:    processLanguages,
		KeyLanguageCode: s.processLanguageCode,
	}
	for key, fn := range cfg.Processors {
		s.processors[key] = fn
	}
	return s
}

// Serialize returns the context for r.
func (s *Serializer) Serialize(r *http.Request) *Context {
	data := make(map[string]any)

	if s.cfg.Values != nil {
		values := s.cfg.Values(r)
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if key == KeyUser || !s.allowed(key) {
				continue
			}
			value := values[key]
			if fn, ok := s.processors[key]; ok {
				data[key] = fn(value, data)
			} else if serializable(value) {
				data[key] = value
			}
		}
	}

	c := &Context{values: data}
	if !s.cfg.DisableUser {
		c.user = s.user(r)
	}
	return c
}

// JSON serializes the context for r as JSON.
func (s *Serializer) JSON(r *http.Request) ([]byte, error) {
	return json.Marshal(s.Serialize(r))
}

func (s *Serializer) allowed(key string) bool {
	if len(s.cfg.Include) > 0 && !slices.Contains(s.cfg.Include, key) {
		return false
	}
	return !slices.Contains(s.cfg.Exclude, key)
}

func (s *Serializer) user(r *http.Request) *User {
	if s.cfg.UserFunc == nil {
		return AnonymousUser()
	}
	u := s.cfg.UserFunc(r)
	if u == nil {
		return AnonymousUser()
	}
	u = u.clone()
	if u.Permissions == nil {
		u.Permissions = []string{}
	}
	return u
}

// processLanguages turns a list of (code, name) pairs into a map.
func processLanguages(value any, _ map[string]any) any {
	switch langs := value.(type) {
	case [][2]string:
		out := make(map[string]string, len(langs))
		for _, pair := range langs {
			out[pair[0]] = pair[1]
		}
		return out
	case [][]string:
		out := make(map[string]string, len(langs))
		for _, pair := range langs {
			if len(pair) == 2 {
				out[pair[0]] = pair[1]
			}
		}
		return out
	case map[string]string:
		return langs
	default:
		return value
	}
}

// processLanguageCode adds LANGUAGE_NAME and LANGUAGE_NAME_LOCAL for the
// request language. The code itself is kept unchanged.
func (s *Serializer) processLanguageCode(value any, data map[string]any) any {
	code, ok := value.(string)
	if !ok {
		return value
	}

	lookup := code
	if lookup == "en-us" {
		lookup = "en"
	}
	tag, err := language.Parse(lookup)
	if err != nil {
		return code
	}

	if s.allowed(KeyLanguageName) {
		data[KeyLanguageName] = display.English.Languages().Name(tag)
	}
	if s.allowed(KeyLanguageNameLocal) {
		data[KeyLanguageNameLocal] = display.Self.Name(tag)
	}
	return code
}

// serializable reports whether v can be carried in the context blob.
// Functions, channels, structs and pointers to them are dropped.
func serializable(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(json.Marshaler); ok {
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}
