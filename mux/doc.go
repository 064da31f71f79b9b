// Package mux implements a tree-structured HTTP router. Every node of the
// tree carries one selector: a literal path segment, a path parameter, a
// query parameter or a request method. Routes that share a prefix share the
// nodes of that prefix, and the tree can be walked to discover the
// registered endpoints, which is what the openapi package does to generate
// documentation.
//
// The package implements routing semantics based on:
//   - RFC 9110 (HTTP Semantics, successor to RFC 7231)
//   - RFC 3986 (URIs)
//
// # Router
//
// Create a new router and register handlers:
//
//	r := mux.NewRouter()
//	r.Get("/articles/{category}/{id}", ArticleHandler)
//	r.Post("/articles", CreateArticleHandler)
//	http.ListenAndServe(":8080", r)
//
// # Building The Tree
//
// Path splits a template on "/" and creates (or reuses) one node per
// segment. Method, Param and OptionalParam add a single node. Handler
// attaches the handler to the node it is called on:
//
//	items := r.Path("/items")
//	items.Method(http.MethodGet).OptionalParam("limit").HandlerFunc(list)
//	items.Path("{id}").Method(http.MethodGet).HandlerFunc(get)
//
// Segment forms:
//
//	users        - constant, matches exactly "users"
//	{id}         - path parameter, captures one non-empty segment
//	{id?}        - optional path parameter, may be absent
//	v{ver}.json  - path parameter with literal prefix and suffix
//
// Query selectors do not consume path segments. Param requires the query
// parameter to be present; OptionalParam captures it when present.
//
// # Matching
//
// At every node, literal children are tried before path parameters, and
// path parameters before selectors that consume no segment. Matching
// backtracks, so "/files/new" reaches a "new" constant even when a
// "{name}" sibling was registered first.
//
// # Path Variables
//
// Captured path and query values are stored in the request context:
//
//	vars := mux.Vars(r)
//	id, ok := mux.VarGet(r, "id")
//
// CurrentRoute returns the matched node. SetURLVars injects variables for
// handler tests:
//
//	req = mux.SetURLVars(req, map[string]string{"id": "42"})
//
// # Error Handling
//
// NotFoundHandler is called when no route matches a request. If nil,
// http.NotFoundHandler() is used. Corresponds to 404 Not Found per
// RFC 9110 Section 15.5.5.
//
// MethodNotAllowedHandler is called when a route matches the path but not
// the method. If nil, a default 405 handler is used. The Allow header is
// always set before this handler is invoked, per RFC 9110 Section 15.5.6.
//
// Router.Match reports the outcome without dispatching; RouteMatch.MatchErr
// is ErrMethodMismatch or ErrNotFound on failure.
//
// # Middleware
//
// Middleware wraps matched handlers only:
//
//	r.Use(mux.MiddlewareFunc(loggingMiddleware))
//
// # Walking Routes
//
// Walk visits every node in pre-order, children in registration order:
//
//	r.Walk(func(route *mux.Route, ancestors []*mux.Route) error {
//	    fmt.Println(route)
//	    return nil
//	})
//
// Return SkipRoute from the walk function to skip a node's descendants.
// Leaves returns the method nodes, which are the endpoints of the tree.
//
// # Request Binding
//
// BindJSON and BindXML decode a request body into a Go value. BindJSON
// rejects unknown fields by default; pass true to allow them. Both
// functions reject trailing data after the first value.
//
//	var req CreateUserRequest
//	if err := mux.BindJSON(r, &req); err != nil {
//	    http.Error(w, err.Error(), http.StatusBadRequest)
//	    return
//	}
//
// # Response Helpers
//
// ResponseJSON and ResponseXML encode a value and write it to the response
// with the appropriate Content-Type header. If encoding fails, an HTTP 500
// Internal Server Error is written instead.
//
//	mux.ResponseJSON(w, http.StatusOK, map[string]string{"message": "hello"})
package mux
