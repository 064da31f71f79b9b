package mux

import (
	"net/http"
	"strings"
)

// Route is a node in the route tree. Every node carries exactly one
// Selector and a link to its parent; the root node has no parent.
//
// Nodes are created through the builder methods (Path, Param,
// OptionalParam, Method and the verb helpers). Building the same selector
// twice under one parent returns the existing child, so routes that share
// a prefix share the nodes for that prefix.
type Route struct {
	parent   *Route
	selector Selector
	children []*Route
	handler  http.Handler
}

func newRootRoute() *Route {
	return &Route{selector: Selector{Kind: SelectorRoot}}
}

// child returns the child with the given selector, creating it if needed.
func (r *Route) child(sel Selector) *Route {
	for _, c := range r.children {
		if c.selector == sel {
			return c
		}
	}
	c := &Route{parent: r, selector: sel}
	r.children = append(r.children, c)
	return c
}

// Path creates (or reuses) the chain of nodes described by tpl and returns
// the last one. Empty segments are ignored, so Path("/") returns r itself.
//
// Segments are literal text, "{name}" for a required path parameter,
// "{name?}" for an optional one, or a parameter with literal text around
// it such as "v{version}.json". Path panics on malformed segments, the
// same way http.ServeMux panics on malformed patterns.
func (r *Route) Path(tpl string) *Route {
	cur := r
	for seg := range strings.SplitSeq(tpl, "/") {
		if seg == "" {
			continue
		}
		sel, err := parseSegment(seg)
		if err != nil {
			panic(err)
		}
		cur = cur.child(sel)
	}
	return cur
}

// Param adds a node that requires the query parameter name.
func (r *Route) Param(name string) *Route {
	return r.child(Selector{Kind: SelectorQueryParam, Name: name})
}

// OptionalParam adds a node that captures the query parameter name when
// present.
func (r *Route) OptionalParam(name string) *Route {
	return r.child(Selector{Kind: SelectorOptionalQueryParam, Name: name})
}

// Method adds a node that matches the request method token per
// RFC 9110 Section 9. The token is upper-cased.
func (r *Route) Method(method string) *Route {
	return r.child(Selector{Kind: SelectorMethod, Value: strings.ToUpper(method)})
}

// Handler sets the handler for the route.
func (r *Route) Handler(handler http.Handler) *Route {
	r.handler = handler
	return r
}

// HandlerFunc sets a handler function for the route.
func (r *Route) HandlerFunc(f func(http.ResponseWriter, *http.Request)) *Route {
	return r.Handler(http.HandlerFunc(f))
}

// Handle registers handler for method under tpl and returns the method node.
func (r *Route) Handle(method, tpl string, handler http.Handler) *Route {
	return r.Path(tpl).Method(method).Handler(handler)
}

// HandleFunc registers f for method under tpl and returns the method node.
func (r *Route) HandleFunc(method, tpl string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.Handle(method, tpl, http.HandlerFunc(f))
}

// Get registers a GET handler under tpl.
func (r *Route) Get(tpl string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.HandleFunc(http.MethodGet, tpl, f)
}

// Post registers a POST handler under tpl.
func (r *Route) Post(tpl string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.HandleFunc(http.MethodPost, tpl, f)
}

// Put registers a PUT handler under tpl.
func (r *Route) Put(tpl string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.HandleFunc(http.MethodPut, tpl, f)
}

// Delete registers a DELETE handler under tpl.
func (r *Route) Delete(tpl string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.HandleFunc(http.MethodDelete, tpl, f)
}

// Patch registers a PATCH handler under tpl.
func (r *Route) Patch(tpl string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.HandleFunc(http.MethodPatch, tpl, f)
}

// Head registers a HEAD handler under tpl.
func (r *Route) Head(tpl string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.HandleFunc(http.MethodHead, tpl, f)
}

// Options registers an OPTIONS handler under tpl.
func (r *Route) Options(tpl string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.HandleFunc(http.MethodOptions, tpl, f)
}

// --- Inspection ---

// Parent returns the parent node, or nil for the root.
func (r *Route) Parent() *Route {
	return r.parent
}

// Selector returns the node's selector.
func (r *Route) Selector() Selector {
	return r.selector
}

// Children returns a copy of the node's children in registration order.
func (r *Route) Children() []*Route {
	out := make([]*Route, len(r.children))
	copy(out, r.children)
	return out
}

// GetHandler returns the handler for the route, if any.
func (r *Route) GetHandler() http.Handler {
	return r.handler
}

// String renders the selectors from the root to r, for diagnostics.
func (r *Route) String() string {
	var parts []string
	for n := r; n != nil; n = n.parent {
		if n.selector.Kind == SelectorRoot {
			continue
		}
		parts = append(parts, n.selector.String())
	}
	var b strings.Builder
	b.WriteByte('/')
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
		if i > 0 {
			b.WriteByte('/')
		}
	}
	return b.String()
}

// Walk visits r and all of its descendants in pre-order, children in
// registration order. Returning SkipRoute from walkFn skips the current
// node's descendants; any other error stops the walk.
func (r *Route) Walk(walkFn WalkFunc) error {
	return r.walk(walkFn, nil)
}

func (r *Route) walk(walkFn WalkFunc, ancestors []*Route) error {
	err := walkFn(r, ancestors)
	if err == SkipRoute {
		return nil
	}
	if err != nil {
		return err
	}
	ancestors = append(ancestors, r)
	for _, c := range r.children {
		if err := c.walk(walkFn, ancestors); err != nil {
			return err
		}
	}
	return nil
}

// Leaves returns every node below r (inclusive) that carries a method
// selector, in pre-order.
func (r *Route) Leaves() []*Route {
	var leaves []*Route
	_ = r.Walk(func(route *Route, _ []*Route) error {
		if route.selector.Kind == SelectorMethod {
			leaves = append(leaves, route)
		}
		return nil
	})
	return leaves
}
