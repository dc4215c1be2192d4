package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vitalvas/jsroutes/jscontext"
	"github.com/vitalvas/jsroutes/loader"
	"github.com/vitalvas/jsroutes/reverse"
)

var errNoURLs = errors.New("no route table given: use --urls or JSROUTES_URLS")

// sourceFor picks the loader source for a location: http(s) URLs are
// fetched, values starting with "{" are inline JSON, anything else is a
// file path.
func sourceFor(location string, client *http.Client) loader.Source {
	trimmed := strings.TrimSpace(location)
	switch {
	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		return loader.HTTPSource{URL: trimmed, Client: client}
	case strings.HasPrefix(trimmed, "{"):
		return loader.BytesSource(trimmed)
	default:
		return loader.FileSource{Path: location}
	}
}

// loadResolver loads the configured table and context into a new
// resolver and waits for the load to finish.
func (a *app) loadResolver(ctx context.Context) (*reverse.Resolver, error) {
	if a.cfg.URLs == "" {
		return nil, errNoURLs
	}

	client := &http.Client{Timeout: a.cfg.Timeout}
	cfg := loader.Config{
		URLs:   sourceFor(a.cfg.URLs, client),
		Client: client,
		ErrorFunc: func(err error) {
			a.logger.Debug("load failed", slog.Any("error", err))
		},
	}
	if a.cfg.Context != "" {
		cfg.Context = sourceFor(a.cfg.Context, client)
	}

	res := reverse.New()
	l, err := loader.New(res, cfg)
	if err != nil {
		return nil, err
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	l.Load(ctx)
	if err := l.Wait(ctx); err != nil {
		return nil, err
	}

	a.logger.Debug("route table loaded", slog.Int("routes", res.Table().Len()))
	return res, nil
}

// loadContext loads only the context document. It returns an empty
// context when none is configured.
func (a *app) loadContext(ctx context.Context) (*jscontext.Context, error) {
	blob := jscontext.New()
	if a.cfg.Context == "" {
		return blob, nil
	}

	client := &http.Client{Timeout: a.cfg.Timeout}
	if err := sourceFor(a.cfg.Context, client).Load(ctx, blob); err != nil {
		return nil, err
	}
	return blob, nil
}

// contextOf returns the context a load stored in res, or an empty one
// when no context was configured.
func contextOf(res *reverse.Resolver) *jscontext.Context {
	if blob, ok := res.Context().(*jscontext.Context); ok && blob != nil {
		return blob
	}
	return jscontext.New()
}
