package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/vitalvas/jsroutes/csrf"
	"github.com/vitalvas/jsroutes/exporter"
	"github.com/vitalvas/jsroutes/jscontext"
	"github.com/vitalvas/jsroutes/reverse"
)

var endpointRoutes = []string{
	exporter.RouteURLs,
	exporter.RouteURLsYAML,
	exporter.RouteContext,
	exporter.RouteInit,
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a route table and context over HTTP",
		Long: `Serve the route table and context endpoints for front-end clients,
together with a stub handler for every route in the table. The stubs
answer with the matched route name and variables, and unsafe requests
must carry the CSRF token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.loadResolver(cmd.Context())
			if err != nil {
				return err
			}
			router, err := a.newServeRouter(res.Table(), contextOf(res))
			if err != nil {
				return err
			}

			return a.listen(cmd.Context(), router)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&a.cfg.Addr, "addr", a.cfg.Addr, "listen address")
	flags.StringVar(&a.cfg.BasePath, "base-path", a.cfg.BasePath, "path prefix of the table and context endpoints")
	flags.DurationVar(&a.cfg.CacheDuration, "cache-duration", a.cfg.CacheDuration, "Cache-Control max-age of the endpoints (negative disables)")
	flags.BoolVar(&a.cfg.SecureCookie, "secure-cookie", a.cfg.SecureCookie, "set the Secure attribute on the CSRF cookie")

	return cmd
}

func (a *app) listen(ctx context.Context, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", slog.String("addr", a.cfg.Addr), slog.String("base_path", a.cfg.BasePath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newServeRouter registers the endpoints and one stub route per table
// entry.
func (a *app) newServeRouter(table *reverse.Table, blob *jscontext.Context) (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(accessLog(a.logger))
	r.Use(csrf.Middleware(csrf.Config{
		Secure: a.cfg.SecureCookie,
		ErrorFunc: func(req *http.Request, err error) {
			a.logger.Warn("csrf rejected",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Any("error", err),
			)
		},
	}))

	serializer := jscontext.NewSerializer(jscontext.SerializerConfig{
		Values: func(*http.Request) map[string]any {
			return blob.Values()
		},
		UserFunc: func(*http.Request) *jscontext.User {
			return blob.User()
		},
	})

	exporter.Handle(r, a.cfg.BasePath, &exporter.HandleConfig{
		Context:       serializer,
		CacheDuration: a.cfg.CacheDuration,
		URLs: func() (map[string]string, error) {
			own, err := exporter.FromRouter(r, exporter.Config{Include: endpointRoutes})
			if err != nil {
				return nil, err
			}
			routes := table.Map()
			maps.Copy(routes, own)
			return routes, nil
		},
	})

	for _, name := range table.Names() {
		pattern, _ := table.Lookup(name)
		if slices.Contains(endpointRoutes, name) {
			a.logger.Warn("route shadowed by endpoint", slog.String("route", name), slog.String("pattern", pattern.String()))
			continue
		}

		route := r.HandleFunc(patternTemplate(pattern), stubHandler(name)).Name(name)
		if err := route.GetError(); err != nil {
			return nil, fmt.Errorf("route %q: %w", name, err)
		}
	}

	return r, nil
}

// patternTemplate converts a token pattern into a gorilla/mux path
// template. Anonymous tokens are named by position: arg0, arg1, ...
// A repeated name gets its position appended so every variable keeps
// its own value.
func patternTemplate(p *reverse.Pattern) string {
	segments := p.Segments()
	tokens := p.Tokens()
	seen := make(map[string]bool, len(tokens))

	var b strings.Builder
	for i, tok := range tokens {
		name := tok.Name
		if tok.Anonymous() {
			name = "arg" + strconv.Itoa(i)
		} else if seen[name] {
			name += strconv.Itoa(i)
		}
		seen[name] = true

		b.WriteString(segments[i])
		b.WriteByte('{')
		b.WriteString(name)
		b.WriteByte('}')
	}
	b.WriteString(segments[len(segments)-1])

	tpl := b.String()
	if !strings.HasPrefix(tpl, "/") {
		tpl = "/" + tpl
	}
	return tpl
}

type stubResponse struct {
	Route     string            `json:"route"`
	Method    string            `json:"method"`
	Vars      map[string]string `json:"vars"`
	CSRFToken string            `json:"csrf_token"`
}

func stubHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if vars == nil {
			vars = map[string]string{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(stubResponse{
			Route:     name,
			Method:    r.Method,
			Vars:      vars,
			CSRFToken: csrf.TokenFromContext(r.Context()),
		})
	}
}
