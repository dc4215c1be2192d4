package reverse

// Context keys read by the derived helpers.
const (
	KeyStaticURL    = "STATIC_URL"
	KeyAbsoluteRoot = "ABSOLUTE_ROOT"
	KeySiteRoot     = "SITE_ROOT"
)

// Context supplies the server-derived string settings used by Static,
// Absolute and Site. jscontext.Context implements it.
type Context interface {
	// Lookup returns the string value stored under key and whether the
	// key is present.
	Lookup(key string) (string, bool)
}

// MapContext is a Context backed by a plain map.
type MapContext map[string]string

// Lookup implements Context.
func (m MapContext) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}
