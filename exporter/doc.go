// Package exporter publishes a gorilla/mux router's named routes as a
// route table, together with the per-request context blob.
//
//	r := mux.NewRouter()
//	r.HandleFunc("/articles/{id:[0-9]+}", article).Name("article")
//
//	exporter.Handle(r, "/jsrev", &exporter.HandleConfig{
//	    Context: jscontext.NewSerializer(jscontext.SerializerConfig{...}),
//	})
//
//	// GET /jsrev/urls -> {"article": "/articles/<id>", "django_js_urls": "/jsrev/urls", ...}
//
// Subrouter parents that carry a name act as namespaces: their names
// prefix the names of the routes below them, joined with ":".
//
// TemplateFromRegexp converts regular-expression routes, for tables kept
// outside of a gorilla router.
package exporter
