package mux

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// routeContextKey is an unexported type for the single context key.
type routeContextKey struct{}

// ctxKey is the single context key used to store both route and vars.
var ctxKey = routeContextKey{}

// routeContext holds the matched route and extracted variables.
type routeContext struct {
	route *Route
	vars  map[string]string
}

// Vars returns the route variables for the current request, if any.
// Path parameters and query parameters captured by the tree share one map.
func Vars(r *http.Request) map[string]string {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		return rc.vars
	}
	return nil
}

// VarGet returns the value of a single route variable by name and a boolean
// indicating whether the variable exists.
func VarGet(r *http.Request, name string) (string, bool) {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok && rc.vars != nil {
		val, exists := rc.vars[name]
		return val, exists
	}
	return "", false
}

// CurrentRoute returns the matched route for the current request, if any.
func CurrentRoute(r *http.Request) *Route {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		return rc.route
	}
	return nil
}

// SetURLVars sets the URL variables for the given request, returning the
// modified request. This is intended for testing route handlers.
func SetURLVars(r *http.Request, val map[string]string) *http.Request {
	var route *Route
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		route = rc.route
	}
	return setRouteContext(r, route, val)
}

func setRouteContext(r *http.Request, route *Route, vars map[string]string) *http.Request {
	ctx := context.WithValue(r.Context(), ctxKey, &routeContext{route: route, vars: vars})
	return r.WithContext(ctx)
}

// RouteMatch stores information about a matched route.
type RouteMatch struct {
	// Route is the matched route, if any.
	Route *Route

	// Handler is the handler to use for the matched route, already wrapped
	// with the router middleware.
	Handler http.Handler

	// Vars contains the captured path and query variables.
	Vars map[string]string

	// MatchErr is ErrMethodMismatch when a route matched the path but not
	// the method, and ErrNotFound when nothing matched.
	MatchErr error

	// allowed lists the methods that would have matched, sorted.
	allowed []string

	// parsedQuery caches the parsed query string.
	parsedQuery url.Values
}

// getQuery returns the parsed query string, caching it for reuse.
func (m *RouteMatch) getQuery(req *http.Request) url.Values {
	if m.parsedQuery == nil {
		m.parsedQuery = req.URL.Query()
	}
	return m.parsedQuery
}

// MiddlewareFunc is a function which receives an http.Handler and returns
// another http.Handler. It can be used to wrap handlers with additional
// behavior such as logging, authentication, etc.
type MiddlewareFunc func(http.Handler) http.Handler

// Middleware allows MiddlewareFunc to implement the Middleware interface.
func (mw MiddlewareFunc) Middleware(handler http.Handler) http.Handler {
	return mw(handler)
}

// WalkFunc is the type of the function called for each node visited by
// Walk. It receives the node and the chain of ancestors from the root.
type WalkFunc func(route *Route, ancestors []*Route) error

// ErrMethodMismatch is reported when the request path matched a route but
// the method did not. Triggers 405 Method Not Allowed.
var ErrMethodMismatch = errors.New("method is not allowed")

// ErrNotFound is reported when no route matches. Triggers 404 Not Found.
var ErrNotFound = errors.New("no matching route was found")

// SkipRoute is used as a return value from WalkFunc to skip the
// descendants of the current node.
var SkipRoute = errors.New("skip this route") //nolint:revive,staticcheck // mirrors filepath.SkipDir
