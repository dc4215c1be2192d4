// Package reverse builds URLs from a table of named route patterns, the
// client-side counterpart of a server "reverse URL" resolver.
//
// # Route table
//
// A route table maps names to patterns containing placeholder tokens.
// A token is "<" followed by an optional identifier and ">":
//
//	{
//	    "test_arg":         "/test/arg/<>",
//	    "test_arg_multi":   "/test/arg/<>/<>",
//	    "test_named":       "/test/named/<test>",
//	    "test_named_multi": "/test/named/<str>/<num>",
//	    "ns2:nested:fake":  "/test/namespace2/nested/fake"
//	}
//
// Tokens without an identifier are anonymous and can only be filled by
// position. Named tokens can be filled by position or by key. Names of
// routes inside nested namespaces are joined with ":"; "." is accepted as
// an alternative separator on lookup.
//
// # Resolving
//
//	table, err := reverse.ParseTable(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r := reverse.New(reverse.WithTable(table))
//
//	r.URL("test_arg", 41)                                // "/test/arg/41"
//	r.Resolve("test_arg", reverse.Positional(41))        // "/test/arg/41"
//	r.Resolve("test_named", reverse.Keyed(map[string]any{
//	    "test": "value",
//	}))                                                  // "/test/named/value"
//
// Argument sets are one of three forms: NoArgs, Positional and Keyed.
// Positional values must match the token count exactly. Keyed values must
// cover every token; extra keys are ignored. The value 0 and the empty
// string are legal arguments.
//
// # Errors
//
// Failures are returned as errors wrapping one of the sentinels and can be
// checked with errors.Is:
//
//	ErrRouteNotFound         - name is not in the table (or no table is loaded)
//	ErrArgumentCount         - positional count differs from the token count
//	ErrKeyMissing            - keyed form lacks a token's key, or the token is anonymous
//	ErrUnsupportedValue      - argument is nil or not a scalar
//	ErrMissingConfiguration  - Absolute or Site without the matching root
//
// # Context helpers
//
// Static, Absolute and Site read STATIC_URL, ABSOLUTE_ROOT and SITE_ROOT
// from the resolver's Context:
//
//	r := reverse.New(
//	    reverse.WithTable(table),
//	    reverse.WithContext(reverse.MapContext{
//	        "STATIC_URL":    "/static/",
//	        "ABSOLUTE_ROOT": "http://absolute",
//	    }),
//	)
//	r.Static("app.js")                                  // "/static/app.js"
//	r.Absolute("test_arg", reverse.Positional(41))      // "http://absolute/test/arg/41"
//
// The table and context live in an atomically swapped snapshot. SetTable,
// SetContext and Swap replace them without blocking concurrent Resolve
// calls.
package reverse
