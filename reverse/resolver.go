package reverse

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// snapshot is the table and context a resolution runs against. Swapping
// the pointer replaces both at once.
type snapshot struct {
	table *Table
	ctx   Context
}

// Resolver builds URLs from a named route table. It is safe for
// concurrent use; resolution reads an immutable snapshot and never blocks
// on a load in progress.
type Resolver struct {
	state atomic.Pointer[snapshot]
}

// Option configures a Resolver.
type Option func(*snapshot)

// WithTable sets the initial route table.
func WithTable(t *Table) Option {
	return func(s *snapshot) {
		s.table = t
	}
}

// WithContext sets the initial context.
func WithContext(ctx Context) Option {
	return func(s *snapshot) {
		s.ctx = ctx
	}
}

// New returns a resolver. Without WithTable every lookup fails with
// ErrRouteNotFound until a table is set.
func New(opts ...Option) *Resolver {
	s := &snapshot{}
	for _, opt := range opts {
		opt(s)
	}

	r := &Resolver{}
	r.state.Store(s)
	return r
}

func (r *Resolver) load() *snapshot {
	return r.state.Load()
}

// Table returns the current route table.
func (r *Resolver) Table() *Table {
	return r.load().table
}

// Context returns the current context, or nil when none was set.
func (r *Resolver) Context() Context {
	return r.load().ctx
}

// SetTable atomically replaces the route table.
func (r *Resolver) SetTable(t *Table) {
	r.Swap(t, nil)
}

// SetContext atomically replaces the context.
func (r *Resolver) SetContext(ctx Context) {
	r.Swap(nil, ctx)
}

// Swap atomically replaces the table and the context together. A nil
// argument keeps the current value.
func (r *Resolver) Swap(t *Table, ctx Context) {
	for {
		old := r.load()
		next := &snapshot{table: old.table, ctx: old.ctx}
		if t != nil {
			next.table = t
		}
		if ctx != nil {
			next.ctx = ctx
		}
		if r.state.CompareAndSwap(old, next) {
			return
		}
	}
}

// URL resolves name with positional values. It is shorthand for
// Resolve(name, Positional(values...)), or Resolve(name, NoArgs()) when
// no values are given.
func (r *Resolver) URL(name string, values ...any) (string, error) {
	if len(values) == 0 {
		return r.Resolve(name, NoArgs())
	}
	return r.Resolve(name, Positional(values...))
}

// Resolve returns the URL of the named route with its tokens replaced by
// args.
//
// Positional arguments must match the token count exactly and are
// substituted in order. Keyed arguments must provide a value for every
// token; anonymous tokens have no key and always fail in keyed form.
// Extra keys are ignored. A pattern without tokens resolves to itself for
// every argument form.
func (r *Resolver) Resolve(name string, args Args) (string, error) {
	return resolve(r.load().table, name, args)
}

func resolve(t *Table, name string, args Args) (string, error) {
	p, ok := t.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRouteNotFound, name)
	}

	switch args.kind {
	case ArgsNone:
		return fromPositional(name, p, nil)
	case ArgsPositional:
		return fromPositional(name, p, args.positional)
	case ArgsKeyed:
		return fromKeyed(p, args.keyed)
	default:
		return "", fmt.Errorf("reverse: unknown argument kind %s", args.kind)
	}
}

func fromPositional(name string, p *Pattern, values []any) (string, error) {
	if len(values) != p.NumTokens() {
		return "", fmt.Errorf("%w: route %q expects %d, got %d",
			ErrArgumentCount, name, p.NumTokens(), len(values))
	}

	formatted := make([]string, len(values))
	for i, v := range values {
		s, err := formatValue(v)
		if err != nil {
			return "", fmt.Errorf("route %q argument %d: %w", name, i, err)
		}
		formatted[i] = s
	}

	return p.interleave(formatted), nil
}

// fromKeyed replaces the first occurrence of each token's text, in token
// order, within the evolving URL. Identifiers whose values contain other
// tokens' text are not escaped.
func fromKeyed(p *Pattern, values map[string]any) (string, error) {
	url := p.source
	for _, tok := range p.tokens {
		if tok.Anonymous() {
			return "", fmt.Errorf("%w: anonymous token %q has no key", ErrKeyMissing, tok.Text)
		}
		v, ok := values[tok.Name]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrKeyMissing, tok.Name)
		}
		s, err := formatValue(v)
		if err != nil {
			return "", fmt.Errorf("key %q: %w", tok.Name, err)
		}
		url = strings.Replace(url, tok.Text, s, 1)
	}
	return url, nil
}

// Static returns the URL of a static file: STATIC_URL followed by
// filename. A missing STATIC_URL is treated as empty.
func (r *Resolver) Static(filename string) string {
	root, _ := r.lookup(KeyStaticURL)
	return root + filename
}

// Absolute resolves name and prefixes it with ABSOLUTE_ROOT.
func (r *Resolver) Absolute(name string, args Args) (string, error) {
	return r.prefixed(KeyAbsoluteRoot, name, args)
}

// Site resolves name and prefixes it with SITE_ROOT.
func (r *Resolver) Site(name string, args Args) (string, error) {
	return r.prefixed(KeySiteRoot, name, args)
}

func (r *Resolver) prefixed(key, name string, args Args) (string, error) {
	s := r.load()

	var (
		root string
		ok   bool
	)
	if s.ctx != nil {
		root, ok = s.ctx.Lookup(key)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s is not set", ErrMissingConfiguration, key)
	}

	path, err := resolve(s.table, name, args)
	if err != nil {
		return "", err
	}

	return root + path, nil
}

func (r *Resolver) lookup(key string) (string, bool) {
	ctx := r.load().ctx
	if ctx == nil {
		return "", false
	}
	return ctx.Lookup(key)
}
