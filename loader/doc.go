// Package loader fills a reverse.Resolver from remote or local documents
// and signals readiness.
//
//	res := reverse.New()
//	l, err := loader.New(res, loader.Config{
//	    URLs:    loader.HTTPSource{URL: "https://example.com/jsrev/urls"},
//	    Context: loader.HTTPSource{URL: "https://example.com/jsrev/context"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	l.Ready(func() {
//	    u, _ := res.URL("test_arg", 42)
//	    fmt.Println(u)
//	})
//	l.Load(ctx)
//
// Load never blocks. Table and context are swapped into the resolver
// together, and Ready callbacks run once per successful load. Until then
// the resolver behaves as if the table were empty.
package loader
