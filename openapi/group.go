package openapi

import (
	"maps"
	"slices"

	"github.com/vitalvas/routedoc/mux"
)

// RouteGroup applies shared OpenAPI metadata to a logical group of
// operations. Defaults are copied into each OperationBuilder when it is
// created, so operation-level calls can still override or extend them.
//
// Changing the group after a Route call does not affect builders that
// were already created.
//
//	users := spec.Group().Tags("users").Security("bearer").
//	    Response(http.StatusUnauthorized, ErrorBody{})
//	users.Route(r.Get("/users", listUsers)).Summary("List users")
//	users.Route(r.Post("/users", createUser)).Summary("Create user")
type RouteGroup struct {
	spec     *Spec
	defaults *OperationBuilder
}

func (g *RouteGroup) builder() *OperationBuilder {
	if g.defaults == nil {
		g.defaults = newOperationBuilder()
	}
	return g.defaults
}

// Tags adds default tags to every operation in the group.
func (g *RouteGroup) Tags(tags ...string) *RouteGroup {
	g.builder().Tags(tags...)
	return g
}

// Security adds a default security requirement.
func (g *RouteGroup) Security(key string, scopes ...string) *RouteGroup {
	g.builder().Security(key, scopes...)
	return g
}

// NoSecurity marks every operation in the group as public.
func (g *RouteGroup) NoSecurity() *RouteGroup {
	g.builder().NoSecurity()
	return g
}

// Deprecated marks every operation in the group as deprecated.
func (g *RouteGroup) Deprecated() *RouteGroup {
	g.builder().Deprecated()
	return g
}

// Parameter adds a default parameter, such as a shared header.
func (g *RouteGroup) Parameter(name, in string, opts ...ParamOption) *RouteGroup {
	g.builder().Parameter(name, in, opts...)
	return g
}

// ExternalDocs sets default external documentation.
func (g *RouteGroup) ExternalDocs(url, description string) *RouteGroup {
	g.builder().ExternalDocs(url, description)
	return g
}

// Response adds a default application/json response.
func (g *RouteGroup) Response(statusCode int, body any) *RouteGroup {
	g.builder().Response(statusCode, body)
	return g
}

// ResponseContent adds a default response with the given content type.
func (g *RouteGroup) ResponseContent(statusCode int, contentType string, body any) *RouteGroup {
	g.builder().ResponseContent(statusCode, contentType, body)
	return g
}

// ResponseDescription sets a default response description.
func (g *RouteGroup) ResponseDescription(statusCode int, desc string) *RouteGroup {
	g.builder().ResponseDescription(statusCode, desc)
	return g
}

// ResponseHeader adds a default response header.
func (g *RouteGroup) ResponseHeader(statusCode int, name string, h *Header) *RouteGroup {
	g.builder().ResponseHeader(statusCode, name, h)
	return g
}

// DefaultResponse adds a default "default" response.
func (g *RouteGroup) DefaultResponse(body any) *RouteGroup {
	g.builder().DefaultResponse(body)
	return g
}

// Route attaches a builder pre-populated with the group defaults to route.
func (g *RouteGroup) Route(route *mux.Route) *OperationBuilder {
	b := &OperationBuilder{meta: g.builder().meta.clone()}
	g.spec.routeOps[route] = b
	return b
}

// clone returns a copy of m that shares no mutable state with it.
func (m *operationMeta) clone() *operationMeta {
	out := *m
	out.tags = slices.Clone(m.tags)
	out.parameters = slices.Clone(m.parameters)
	out.security = cloneSecurity(m.security)
	out.requestContents = maps.Clone(m.requestContents)
	out.responseDescriptions = maps.Clone(m.responseDescriptions)

	out.responseContents = make(map[string]map[string]any, len(m.responseContents))
	for key, contents := range m.responseContents {
		out.responseContents[key] = maps.Clone(contents)
	}

	if m.responseHeaders != nil {
		out.responseHeaders = make(map[string]map[string]*Header, len(m.responseHeaders))
		for key, headers := range m.responseHeaders {
			out.responseHeaders[key] = maps.Clone(headers)
		}
	}
	return &out
}
