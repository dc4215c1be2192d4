package exporter

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/gorilla/mux"
)

// NamespaceSeparator joins namespace and route names.
const NamespaceSeparator = ":"

// Config selects which routes FromRouter exports.
type Config struct {
	// Include limits the export to these route names. Names are matched
	// before namespacing. Empty means all names.
	Include []string

	// Exclude drops these route names. Names are matched before
	// namespacing.
	Exclude []string

	// Namespaces limits the export to these namespace paths
	// ("ns2", "ns2:nested"). Every level of a route's namespace path must
	// be listed. Routes outside any namespace are not affected. Empty
	// means all namespaces.
	Namespaces []string

	// NamespacesExclude drops routes under these namespace paths,
	// including anything nested below them.
	NamespacesExclude []string

	// Unnamed exports routes without a name under the fully qualified
	// name of their handler function. Handlers that are not plain
	// functions are still skipped.
	Unnamed bool
}

// FromRouter walks r and returns the route table: exported name to token
// pattern. A route's exported name is its own name prefixed with the
// names of its named ancestor routes (subrouter parents), joined by ":".
//
//	api := r.PathPrefix("/api").Name("api").Subrouter()
//	api.HandleFunc("/users/{id}", h).Name("user")
//	// "api:user" -> "/api/users/<id>"
//
// Routes without a path template, subrouter parents and unnamed routes
// (unless Config.Unnamed) are skipped.
func FromRouter(r *mux.Router, cfg Config) (map[string]string, error) {
	if r == nil {
		return nil, ErrNilRouter
	}

	routes := make(map[string]string)

	err := r.Walk(func(route *mux.Route, _ *mux.Router, ancestors []*mux.Route) error {
		handler := route.GetHandler()
		if handler == nil {
			return nil
		}
		if _, mounted := handler.(*mux.Router); mounted {
			return nil
		}

		name := route.GetName()
		if name == "" && cfg.Unnamed {
			name = handlerName(handler)
		}
		if name == "" || !cfg.nameAllowed(name) {
			return nil
		}

		namespaces := namespacePath(ancestors)
		if !cfg.namespaceAllowed(namespaces) {
			return nil
		}

		tpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}

		pattern, err := FromTemplate(tpl)
		if err != nil {
			return fmt.Errorf("route %q: %w", name, err)
		}

		if len(namespaces) > 0 {
			name = strings.Join(namespaces, NamespaceSeparator) + NamespaceSeparator + name
		}

		// gorilla/mux matches the first registered route, so the first one
		// wins here too.
		if _, exists := routes[name]; !exists {
			routes[name] = pattern
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return routes, nil
}

func (cfg Config) nameAllowed(name string) bool {
	if len(cfg.Include) > 0 && !slices.Contains(cfg.Include, name) {
		return false
	}
	return !slices.Contains(cfg.Exclude, name)
}

func (cfg Config) namespaceAllowed(namespaces []string) bool {
	for i := range namespaces {
		path := strings.Join(namespaces[:i+1], NamespaceSeparator)
		if len(cfg.Namespaces) > 0 && !slices.Contains(cfg.Namespaces, path) {
			return false
		}
		if slices.Contains(cfg.NamespacesExclude, path) {
			return false
		}
	}
	return true
}

// namespacePath returns the names of the named ancestors, outermost first.
func namespacePath(ancestors []*mux.Route) []string {
	var out []string
	for _, a := range ancestors {
		if name := a.GetName(); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// handlerName returns the qualified function name behind an
// http.HandlerFunc, or "" for any other handler type. Closures and
// method values are skipped since their names are not stable.
func handlerName(h http.Handler) string {
	fn, ok := h.(http.HandlerFunc)
	if !ok {
		return ""
	}

	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return ""
	}

	name := f.Name()
	if strings.Contains(name, ".func") || strings.HasSuffix(name, "-fm") {
		return ""
	}
	return name
}
