package loader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/vitalvas/jsroutes/jscontext"
	"github.com/vitalvas/jsroutes/reverse"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"
)

// ContextRoute is the route name of the context endpoint used by Reload
// when Config.Context is nil.
const ContextRoute = "django_js_context"

// Config configures a Loader.
type Config struct {
	// URLs supplies the route table. Required.
	URLs Source

	// Context supplies the context blob. When nil, Load only fetches the
	// table and Reload fetches ContextRoute relative to BaseURL.
	Context Source

	// BaseURL is the origin the ContextRoute path is resolved against.
	BaseURL *url.URL

	// Client is used for ContextRoute requests. Defaults to a client
	// with a public-suffix aware cookie jar, so session cookies set by
	// the server are sent back.
	Client *http.Client

	// ErrorFunc is an optional callback invoked when a load fails.
	// When nil, failures are only visible through Err and Wait.
	ErrorFunc func(err error)
}

// cycle is one load attempt. done is closed when it finishes.
type cycle struct {
	done chan struct{}
	err  error
}

// Loader fetches the route table and context into a Resolver and tells
// waiting callers when the data is ready.
//
// Each Load starts a cycle. A successful cycle swaps the table and
// context into the resolver in one step and then runs every queued Ready
// callback exactly once. A failed cycle leaves the resolver untouched and
// keeps the callbacks queued for the next successful cycle.
type Loader struct {
	resolver *reverse.Resolver
	config   Config

	mu      sync.Mutex
	current *cycle
	running bool
	ready   bool
	err     error
	pending []func()
}

// New creates a Loader that writes into resolver.
func New(resolver *reverse.Resolver, cfg Config) (*Loader, error) {
	if resolver == nil {
		return nil, ErrNoResolver
	}
	if cfg.URLs == nil {
		return nil, ErrNoSource
	}

	if cfg.Client == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("loader: cookie jar: %w", err)
		}
		cfg.Client = &http.Client{Jar: jar}
	}

	return &Loader{
		resolver: resolver,
		config:   cfg,
		current:  &cycle{done: make(chan struct{})},
	}, nil
}

// Resolver returns the resolver the loader writes into.
func (l *Loader) Resolver() *reverse.Resolver {
	return l.resolver
}

// Load starts a load cycle in the background and returns immediately.
// When a cycle is already running, Load joins it instead of starting
// another one.
func (l *Loader) Load(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	if isClosed(l.current.done) {
		l.current = &cycle{done: make(chan struct{})}
	}
	l.running = true
	l.ready = false
	c := l.current
	l.mu.Unlock()

	go l.run(ctx, c)
}

func (l *Loader) run(ctx context.Context, c *cycle) {
	table, blob, err := l.fetch(ctx)

	l.mu.Lock()
	l.running = false
	c.err = err
	l.err = err

	var callbacks []func()
	if err == nil {
		l.resolver.Swap(table, contextOrNil(blob))
		l.ready = true
		callbacks = l.pending
		l.pending = nil
	}
	close(c.done)
	l.mu.Unlock()

	if err != nil {
		l.fail(err)
		return
	}

	for _, fn := range callbacks {
		fn()
	}
}

func (l *Loader) fetch(ctx context.Context) (*reverse.Table, *jscontext.Context, error) {
	table := new(reverse.Table)
	var blob *jscontext.Context

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := l.config.URLs.Load(gctx, table); err != nil {
			return fmt.Errorf("route table: %w", err)
		}
		return nil
	})

	if l.config.Context != nil {
		blob = jscontext.New()
		g.Go(func() error {
			if err := l.config.Context.Load(gctx, blob); err != nil {
				return fmt.Errorf("context: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return table, blob, nil
}

// Ready registers fn to run once the current cycle succeeds. When the
// data is already loaded, fn runs immediately on the calling goroutine.
func (l *Loader) Ready(fn func()) {
	if fn == nil {
		return
	}

	l.mu.Lock()
	if l.ready {
		l.mu.Unlock()
		fn()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
}

// Wait blocks until the current cycle finishes and returns its error,
// or until ctx is done. Before the first Load it waits for that Load.
func (l *Loader) Wait(ctx context.Context) error {
	l.mu.Lock()
	if l.ready {
		l.mu.Unlock()
		return nil
	}
	c := l.current
	l.mu.Unlock()

	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the error of the last finished cycle or reload, or nil.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Reload re-fetches only the context in the background, swaps it into
// the resolver and then calls fn. The table is left as is. On failure
// fn is not called and the error goes to ErrorFunc and Err.
func (l *Loader) Reload(ctx context.Context, fn func()) {
	go func() {
		blob, err := l.fetchContext(ctx)

		l.mu.Lock()
		l.err = err
		if err == nil {
			l.resolver.SetContext(blob)
		}
		l.mu.Unlock()

		if err != nil {
			l.fail(err)
			return
		}
		if fn != nil {
			fn()
		}
	}()
}

func (l *Loader) fetchContext(ctx context.Context) (*jscontext.Context, error) {
	src, err := l.contextSource()
	if err != nil {
		return nil, err
	}

	blob := jscontext.New()
	if err := src.Load(ctx, blob); err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}
	return blob, nil
}

// contextSource returns Config.Context, or an HTTPSource for the
// ContextRoute URL taken from the currently loaded table.
func (l *Loader) contextSource() (Source, error) {
	if l.config.Context != nil {
		return l.config.Context, nil
	}

	path, err := l.resolver.Resolve(ContextRoute, reverse.NoArgs())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoContextSource, err)
	}

	target, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("loader: context url: %w", err)
	}
	if l.config.BaseURL != nil {
		target = l.config.BaseURL.ResolveReference(target)
	}
	if !target.IsAbs() {
		return nil, fmt.Errorf("%w: %s is not absolute", ErrNoContextSource, target)
	}

	return HTTPSource{URL: target.String(), Client: l.config.Client}, nil
}

func (l *Loader) fail(err error) {
	if l.config.ErrorFunc != nil {
		l.config.ErrorFunc(err)
	}
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// contextOrNil keeps a nil blob from becoming a non-nil interface, which
// would replace the resolver's context with an empty one.
func contextOrNil(blob *jscontext.Context) reverse.Context {
	if blob == nil {
		return nil
	}
	return blob
}
