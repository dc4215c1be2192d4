package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/vitalvas/jsroutes/jscontext"
	"gopkg.in/yaml.v3"
)

// Route names of the endpoints registered by Handle. The resolver can
// reverse them like any other route.
const (
	RouteURLs     = "django_js_urls"
	RouteURLsYAML = "django_js_urls_yaml"
	RouteContext  = "django_js_context"
	RouteInit     = "django_js_init"
)

// Page globals assigned by the init script.
const (
	URLsGlobal    = "DJANGO_JS_URLS"
	ContextGlobal = "DJANGO_JS_CONTEXT"
)

// DefaultCacheDuration is the cache lifetime used when
// HandleConfig.CacheDuration is zero.
const DefaultCacheDuration = 24 * time.Hour

// HandleConfig configures the endpoints registered by Handle.
type HandleConfig struct {
	// Export selects the routes published by the table endpoints. The
	// table is built from the router on the first request and cached.
	Export Config

	// URLs overrides the table source. When set, Export is ignored.
	URLs func() (map[string]string, error)

	// Context builds the per-request context blob. When nil, an empty
	// context with the anonymous user is served.
	Context *jscontext.Serializer

	// CacheDuration sets the Cache-Control max-age of every endpoint
	// (default: DefaultCacheDuration). Negative disables caching headers.
	CacheDuration time.Duration

	// URLsFilename is the path of the JSON table endpoint
	// (default: "urls"). Set to "-" to disable.
	//
	// Relative paths are joined with the base path; absolute paths
	// (starting with "/") are used as-is.
	URLsFilename string

	// YAMLFilename is the path of the YAML table endpoint
	// (default: "urls.yaml"). Set to "-" to disable.
	YAMLFilename string

	// ContextFilename is the path of the context endpoint
	// (default: "context"). Set to "-" to disable.
	ContextFilename string

	// InitFilename is the path of the init script
	// (default: "init.js"). Set to "-" to disable.
	InitFilename string
}

func filenameOr(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

// resolvePath returns the full route path for a filename.
func resolvePath(basePath, filename string) string {
	if strings.HasPrefix(filename, "/") {
		return filename
	}
	return basePath + "/" + filename
}

// Handle registers the route table and context endpoints under basePath:
//
//	<basePath>/urls       - route table as JSON     (name django_js_urls)
//	<basePath>/urls.yaml  - route table as YAML     (name django_js_urls_yaml)
//	<basePath>/context    - context blob as JSON    (name django_js_context)
//	<basePath>/init.js    - script setting window.DJANGO_JS_URLS and
//	                        window.DJANGO_JS_CONTEXT (name django_js_init)
//
// The config parameter is optional; pass nil for defaults. The table
// endpoints are publicly cacheable. The context and init endpoints depend
// on the session, so they are privately cacheable and vary on Cookie.
func Handle(r *mux.Router, basePath string, cfg *HandleConfig) {
	if cfg == nil {
		cfg = &HandleConfig{}
	}
	basePath = strings.TrimRight(basePath, "/")

	h := &handler{router: r, cfg: cfg}

	if name := filenameOr(cfg.URLsFilename, "urls"); name != "-" {
		r.HandleFunc(resolvePath(basePath, name), h.serveURLs).
			Methods(http.MethodGet, http.MethodHead).
			Name(RouteURLs)
	}
	if name := filenameOr(cfg.YAMLFilename, "urls.yaml"); name != "-" {
		r.HandleFunc(resolvePath(basePath, name), h.serveURLsYAML).
			Methods(http.MethodGet, http.MethodHead).
			Name(RouteURLsYAML)
	}
	if name := filenameOr(cfg.ContextFilename, "context"); name != "-" {
		r.HandleFunc(resolvePath(basePath, name), h.serveContext).
			Methods(http.MethodGet, http.MethodHead).
			Name(RouteContext)
	}
	if name := filenameOr(cfg.InitFilename, "init.js"); name != "-" {
		r.HandleFunc(resolvePath(basePath, name), h.serveInit).
			Methods(http.MethodGet, http.MethodHead).
			Name(RouteInit)
	}
}

type handler struct {
	router *mux.Router
	cfg    *HandleConfig

	once     sync.Once
	jsonData []byte
	yamlData []byte
	buildErr error
}

// build computes the table once. It runs on the first request so every
// route registered after Handle is included.
func (h *handler) build() error {
	h.once.Do(func() {
		source := h.cfg.URLs
		if source == nil {
			source = func() (map[string]string, error) {
				return FromRouter(h.router, h.cfg.Export)
			}
		}

		table, err := source()
		if err != nil {
			h.buildErr = err
			return
		}
		if table == nil {
			table = map[string]string{}
		}

		if h.jsonData, err = json.Marshal(table); err != nil {
			h.buildErr = err
			return
		}
		if h.yamlData, err = yaml.Marshal(table); err != nil {
			h.buildErr = err
		}
	})
	return h.buildErr
}

func (h *handler) contextJSON(r *http.Request) ([]byte, error) {
	if h.cfg.Context == nil {
		blob := jscontext.New()
		blob.SetUser(jscontext.AnonymousUser())
		return json.Marshal(blob)
	}
	return h.cfg.Context.JSON(r)
}

func (h *handler) serveURLs(w http.ResponseWriter, _ *http.Request) {
	if err := h.build(); err != nil {
		http.Error(w, "failed to export route table", http.StatusInternalServerError)
		return
	}
	h.cacheHeaders(w, false)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.jsonData)
}

func (h *handler) serveURLsYAML(w http.ResponseWriter, _ *http.Request) {
	if err := h.build(); err != nil {
		http.Error(w, "failed to export route table", http.StatusInternalServerError)
		return
	}
	h.cacheHeaders(w, false)
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.yamlData)
}

func (h *handler) serveContext(w http.ResponseWriter, r *http.Request) {
	data, err := h.contextJSON(r)
	if err != nil {
		http.Error(w, "failed to serialize context", http.StatusInternalServerError)
		return
	}
	h.cacheHeaders(w, true)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handler) serveInit(w http.ResponseWriter, r *http.Request) {
	if err := h.build(); err != nil {
		http.Error(w, "failed to export route table", http.StatusInternalServerError)
		return
	}
	data, err := h.contextJSON(r)
	if err != nil {
		http.Error(w, "failed to serialize context", http.StatusInternalServerError)
		return
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "window.%s = %s;\n", URLsGlobal, h.jsonData)
	fmt.Fprintf(&b, "window.%s = %s;\n", ContextGlobal, data)

	h.cacheHeaders(w, true)
	w.Header().Set("Content-Type", "application/javascript")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Bytes())
}

// cacheHeaders sets Cache-Control, and Vary: Cookie for per-user
// responses.
func (h *handler) cacheHeaders(w http.ResponseWriter, perUser bool) {
	if perUser {
		w.Header().Add("Vary", "Cookie")
	}

	d := h.cfg.CacheDuration
	if d == 0 {
		d = DefaultCacheDuration
	}
	if d < 0 {
		return
	}

	scope := "public"
	if perUser {
		scope = "private"
	}
	w.Header().Set("Cache-Control", scope+", max-age="+strconv.Itoa(int(d/time.Second)))
}
