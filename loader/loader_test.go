package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/jsroutes/reverse"
)

// funcSource adapts a function to Source.
type funcSource func(ctx context.Context, v any) error

func (f funcSource) Load(ctx context.Context, v any) error {
	return f(ctx, v)
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNew(t *testing.T) {
	t.Run("nil resolver", func(t *testing.T) {
		_, err := New(nil, Config{URLs: BytesSource(`{}`)})
		require.ErrorIs(t, err, ErrNoResolver)
	})

	t.Run("nil table source", func(t *testing.T) {
		_, err := New(reverse.New(), Config{})
		require.ErrorIs(t, err, ErrNoSource)
	})

	t.Run("default client has cookie jar", func(t *testing.T) {
		l, err := New(reverse.New(), Config{URLs: BytesSource(`{}`)})
		require.NoError(t, err)
		require.NotNil(t, l.config.Client)
		assert.NotNil(t, l.config.Client.Jar)
	})
}

func TestLoaderLoad(t *testing.T) {
	r := reverse.New()
	l, err := New(r, Config{
		URLs:    BytesSource(`{"fake":"/test/<>/"}`),
		Context: BytesSource(`{"STATIC_URL":"/static/","ABSOLUTE_ROOT":"http://server.com"}`),
	})
	require.NoError(t, err)
	assert.Same(t, r, l.Resolver())

	_, err = r.URL("fake", 1)
	require.ErrorIs(t, err, reverse.ErrRouteNotFound)

	l.Load(context.Background())
	require.NoError(t, l.Wait(waitCtx(t)))
	require.NoError(t, l.Err())

	got, err := r.URL("fake", 1)
	require.NoError(t, err)
	assert.Equal(t, "/test/1/", got)

	assert.Equal(t, "/static/app.js", r.Static("app.js"))

	abs, err := r.Absolute("fake", reverse.Positional("x"))
	require.NoError(t, err)
	assert.Equal(t, "http://server.com/test/x/", abs)
}

func TestLoaderTableOnly(t *testing.T) {
	r := reverse.New(reverse.WithContext(reverse.MapContext{"STATIC_URL": "/s/"}))
	l, err := New(r, Config{URLs: BytesSource(`{"fake":"/test/"}`)})
	require.NoError(t, err)

	l.Load(context.Background())
	require.NoError(t, l.Wait(waitCtx(t)))

	assert.Equal(t, "/s/x", r.Static("x"), "context is kept when no context source is set")
}

func TestLoaderReady(t *testing.T) {
	release := make(chan struct{})
	src := funcSource(func(ctx context.Context, v any) error {
		<-release
		return BytesSource(`{"fake":"/test/"}`).Load(ctx, v)
	})

	l, err := New(reverse.New(), Config{URLs: src})
	require.NoError(t, err)

	var calls atomic.Int32
	l.Ready(func() { calls.Add(1) })
	l.Ready(func() { calls.Add(1) })
	l.Ready(nil)

	l.Load(context.Background())
	l.Load(context.Background())
	assert.Equal(t, int32(0), calls.Load())

	close(release)
	require.NoError(t, l.Wait(waitCtx(t)))
	assert.Equal(t, int32(2), calls.Load())

	t.Run("late registration runs immediately", func(t *testing.T) {
		ran := false
		l.Ready(func() { ran = true })
		assert.True(t, ran)
	})

	t.Run("fires once per cycle", func(t *testing.T) {
		var again atomic.Int32
		done := make(chan struct{})

		l.Load(context.Background())
		l.Ready(func() {
			again.Add(1)
			close(done)
		})

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("ready callback not called")
		}
		require.NoError(t, l.Wait(waitCtx(t)))
		assert.Equal(t, int32(1), again.Load())
		assert.Equal(t, int32(2), calls.Load(), "earlier callbacks are not re-run")
	})
}

func TestLoaderFailure(t *testing.T) {
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !healthy.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"fake":"/v2/"}`))
	}))
	defer server.Close()

	r := reverse.New(reverse.WithTable(reverse.MustTable(map[string]string{"fake": "/v1/"})))

	var mu sync.Mutex
	var reported []error
	l, err := New(r, Config{
		URLs: HTTPSource{URL: server.URL},
		ErrorFunc: func(err error) {
			mu.Lock()
			reported = append(reported, err)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	ready := make(chan struct{})
	l.Ready(func() { close(ready) })

	l.Load(context.Background())
	err = l.Wait(waitCtx(t))
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.ErrorIs(t, l.Err(), ErrUnexpectedStatus)

	got, err := r.URL("fake")
	require.NoError(t, err)
	assert.Equal(t, "/v1/", got, "failed load leaves the table untouched")

	select {
	case <-ready:
		t.Fatal("ready fired after a failed load")
	default:
	}

	healthy.Store(true)
	l.Load(context.Background())
	require.NoError(t, l.Wait(waitCtx(t)))
	<-ready
	assert.NoError(t, l.Err())

	got, err = r.URL("fake")
	require.NoError(t, err)
	assert.Equal(t, "/v2/", got)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], ErrUnexpectedStatus)
}

func TestLoaderWaitCanceled(t *testing.T) {
	l, err := New(reverse.New(), Config{URLs: BytesSource(`{}`)})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

func TestLoaderPartialFailure(t *testing.T) {
	r := reverse.New()
	boom := errors.New("boom")
	l, err := New(r, Config{
		URLs:    BytesSource(`{"fake":"/test/"}`),
		Context: funcSource(func(context.Context, any) error { return boom }),
	})
	require.NoError(t, err)

	l.Load(context.Background())
	err = l.Wait(waitCtx(t))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "context")
	assert.Equal(t, 0, r.Table().Len(), "table and context are swapped together or not at all")
}

func TestLoaderReload(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jsrev/context" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "s1", Path: "/"})
		if _, err := r.Cookie("sessionid"); err == nil {
			w.Write([]byte(`{"STATIC_URL":"/cached/"}`))
			return
		}
		w.Write([]byte(`{"STATIC_URL":"/fresh/"}`))
	}))
	defer server.Close()

	base, err := url.Parse(server.URL)
	require.NoError(t, err)

	r := reverse.New()
	l, err := New(r, Config{
		URLs:    BytesSource(`{"django_js_context":"/jsrev/context"}`),
		BaseURL: base,
	})
	require.NoError(t, err)

	reload := func() {
		done := make(chan struct{})
		l.Reload(context.Background(), func() { close(done) })
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("reload callback not called")
		}
	}

	t.Run("before table load", func(t *testing.T) {
		failed := make(chan error, 1)
		l.config.ErrorFunc = func(err error) { failed <- err }
		defer func() { l.config.ErrorFunc = nil }()

		l.Reload(context.Background(), func() { t.Error("callback must not run") })
		select {
		case err := <-failed:
			assert.ErrorIs(t, err, ErrNoContextSource)
			assert.ErrorIs(t, err, reverse.ErrRouteNotFound)
		case <-time.After(5 * time.Second):
			t.Fatal("error not reported")
		}
	})

	l.Load(context.Background())
	require.NoError(t, l.Wait(waitCtx(t)))

	reload()
	assert.Equal(t, "/fresh/x", r.Static("x"))

	reload()
	assert.Equal(t, "/cached/x", r.Static("x"), "cookies from the first response are sent back")
	assert.Equal(t, int32(2), hits.Load())
	assert.NoError(t, l.Err())
}

func TestLoaderReloadFromSource(t *testing.T) {
	r := reverse.New()
	l, err := New(r, Config{
		URLs:    BytesSource(`{}`),
		Context: BytesSource(`{"STATIC_URL":"/static/"}`),
	})
	require.NoError(t, err)

	done := make(chan struct{})
	l.Reload(context.Background(), func() { close(done) })
	<-done

	assert.Equal(t, "/static/a", r.Static("a"))
	assert.Equal(t, 0, r.Table().Len())
}
