package mux

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Router owns a route tree and dispatches requests through it.
//
// The embedded *Route is the root node, so the tree builders are available
// directly on the router:
//
//	r := mux.NewRouter()
//	r.Get("/items/{id}", getItem)
//	http.ListenAndServe(":8080", r)
type Router struct {
	*Route

	// NotFoundHandler is called when no route matches.
	// If nil, http.NotFoundHandler() is used.
	// Corresponds to 404 Not Found per RFC 9110 Section 15.5.5.
	NotFoundHandler http.Handler

	// MethodNotAllowedHandler is called when a route matches the path
	// but not the method. If nil, a default 405 handler is used.
	// Per RFC 9110 Section 15.5.6, the Allow header is always set before
	// this handler is invoked.
	MethodNotAllowedHandler http.Handler

	middlewares []MiddlewareFunc

	// handlerCache caches the middleware-wrapped handler per route
	// to avoid re-wrapping on every request.
	handlerCache sync.Map // map[*Route]http.Handler
}

// NewRouter returns a router with an empty tree.
func NewRouter() *Router {
	return &Router{Route: newRootRoute()}
}

// Root returns the root node of the tree.
func (r *Router) Root() *Route {
	return r.Route
}

// ServeHTTP dispatches the handler registered in the matched route.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if cleaned := cleanPath(req.URL.Path); cleaned != req.URL.Path {
		u := *req.URL
		u.Path = cleaned
		u.RawPath = ""
		req = req.Clone(req.Context())
		req.URL = &u
	}

	var match RouteMatch
	var handler http.Handler

	if r.Match(req, &match) {
		handler = match.Handler
		if handler == nil {
			handler = defaultNotFoundHandler
		}
		req = setRouteContext(req, match.Route, match.Vars)
	} else if match.MatchErr == ErrMethodMismatch {
		// RFC 9110 Section 15.5.6: the origin server MUST generate an
		// Allow header field in a 405 response.
		w.Header().Set("Allow", strings.Join(match.allowed, ", "))
		handler = r.MethodNotAllowedHandler
		if handler == nil {
			handler = defaultMethodNotAllowedHandler
		}
	} else {
		handler = r.NotFoundHandler
		if handler == nil {
			handler = defaultNotFoundHandler
		}
	}

	handler.ServeHTTP(w, req)
}

// Match resolves the request against the tree. On success it fills
// match.Route, match.Handler and match.Vars. When some route matched the
// path but not the method, match.MatchErr is ErrMethodMismatch; otherwise
// it is ErrNotFound.
func (r *Router) Match(req *http.Request, match *RouteMatch) bool {
	st := &matchState{
		method:   req.Method,
		segments: splitPath(req.URL.Path),
		query:    match.getQuery(req),
		allowed:  make(map[string]struct{}),
	}

	if route := st.resolve(r.Route, 0); route != nil {
		match.Route = route
		match.Handler = r.wrap(route)
		match.Vars = st.varsMap()
		match.MatchErr = nil
		return true
	}

	if len(st.allowed) > 0 {
		match.MatchErr = ErrMethodMismatch
		match.allowed = make([]string, 0, len(st.allowed))
		for m := range st.allowed {
			match.allowed = append(match.allowed, m)
		}
		sort.Strings(match.allowed)
		return false
	}

	match.MatchErr = ErrNotFound
	return false
}

// wrap applies the router middleware to the route's handler, caching the
// result per route.
func (r *Router) wrap(route *Route) http.Handler {
	if route.handler == nil || len(r.middlewares) == 0 {
		return route.handler
	}
	if cached, ok := r.handlerCache.Load(route); ok {
		return cached.(http.Handler)
	}
	wrapped := r.applyMiddleware(route.handler)
	r.handlerCache.Store(route, wrapped)
	return wrapped
}

// applyMiddleware wraps the handler with all registered middleware.
func (r *Router) applyMiddleware(handler http.Handler) http.Handler {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i].Middleware(handler)
	}
	return handler
}

// Use appends a MiddlewareFunc to the chain. Middleware is applied to
// matched handlers only.
func (r *Router) Use(mwf ...MiddlewareFunc) {
	r.middlewares = append(r.middlewares, mwf...)
	r.handlerCache.Clear()
}

// matchState carries one resolution attempt through the tree.
type matchState struct {
	method   string
	segments []string
	query    url.Values
	vars     []string // name, value pairs; truncated on backtrack
	allowed  map[string]struct{}
}

// resolve tries to match node at segment index idx and returns the node
// whose handler should serve the request.
func (s *matchState) resolve(node *Route, idx int) *Route {
	mark := len(s.vars)
	sel := node.selector

	switch sel.Kind {
	case SelectorRoot:
		return s.descend(node, idx)

	case SelectorConstant:
		if idx >= len(s.segments) || s.segments[idx] != sel.Value {
			return nil
		}
		return s.descend(node, idx+1)

	case SelectorPathParam:
		if idx >= len(s.segments) {
			return nil
		}
		value, ok := sel.matchSegment(s.segments[idx])
		if !ok {
			return nil
		}
		s.vars = append(s.vars, sel.Name, value)
		if found := s.descend(node, idx+1); found != nil {
			return found
		}
		s.vars = s.vars[:mark]
		return nil

	case SelectorOptionalPathParam:
		if idx < len(s.segments) {
			if value, ok := sel.matchSegment(s.segments[idx]); ok {
				s.vars = append(s.vars, sel.Name, value)
				if found := s.descend(node, idx+1); found != nil {
					return found
				}
				s.vars = s.vars[:mark]
			}
		}
		return s.descend(node, idx)

	case SelectorQueryParam:
		if !s.query.Has(sel.Name) {
			return nil
		}
		s.vars = append(s.vars, sel.Name, s.query.Get(sel.Name))
		if found := s.descend(node, idx); found != nil {
			return found
		}
		s.vars = s.vars[:mark]
		return nil

	case SelectorOptionalQueryParam:
		if s.query.Has(sel.Name) {
			s.vars = append(s.vars, sel.Name, s.query.Get(sel.Name))
		}
		if found := s.descend(node, idx); found != nil {
			return found
		}
		s.vars = s.vars[:mark]
		return nil

	case SelectorMethod:
		if sel.Value != s.method {
			if idx == len(s.segments) && node.handler != nil {
				s.allowed[sel.Value] = struct{}{}
			}
			return nil
		}
		return s.descend(node, idx)
	}

	return nil
}

// descend terminates at node when every segment is consumed and node has
// a handler; otherwise it tries the children, literal segments first.
func (s *matchState) descend(node *Route, idx int) *Route {
	if idx == len(s.segments) && node.handler != nil {
		return node
	}
	for w := 0; w <= 3; w++ {
		for _, c := range node.children {
			if c.selector.weight() != w {
				continue
			}
			if found := s.resolve(c, idx); found != nil {
				return found
			}
		}
	}
	return nil
}

func (s *matchState) varsMap() map[string]string {
	if len(s.vars) == 0 {
		return nil
	}
	m := make(map[string]string, len(s.vars)/2)
	for i := 0; i < len(s.vars); i += 2 {
		m[s.vars[i]] = s.vars[i+1]
	}
	return m
}
