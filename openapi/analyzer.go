package openapi

import (
	"fmt"
	"strings"

	"github.com/vitalvas/routedoc/mux"
)

// Parameter locations produced by route analysis.
const (
	InPath  = "path"
	InQuery = "query"
)

// InferredParam is a parameter discovered from the route tree.
type InferredParam struct {
	Name     string
	In       string
	Required bool
}

// RouteInfo is what the route tree alone says about an endpoint.
type RouteInfo struct {
	Method      string
	Path        string
	PathParams  []InferredParam
	QueryParams []InferredParam
}

// Params returns path parameters followed by query parameters.
func (ri RouteInfo) Params() []InferredParam {
	out := make([]InferredParam, 0, len(ri.PathParams)+len(ri.QueryParams))
	out = append(out, ri.PathParams...)
	return append(out, ri.QueryParams...)
}

// AnalyzeRoute walks from leaf up to the root and reconstructs the path
// template, the HTTP method and the parameters the tree implies.
// Parameters are reported in root to leaf order.
//
// Exactly one method selector must sit on the chain; otherwise
// ErrNoMethod or ErrMultipleMethods is returned.
func AnalyzeRoute(leaf *mux.Route) (RouteInfo, error) {
	var (
		info    RouteInfo
		tpl     string
		methods int
	)

	for node := leaf; node != nil; node = node.Parent() {
		sel := node.Selector()
		switch sel.Kind {
		case mux.SelectorRoot:
			tpl = "/" + tpl

		case mux.SelectorConstant:
			tpl = sel.Value + "/" + tpl

		case mux.SelectorPathParam, mux.SelectorOptionalPathParam:
			tpl = sel.Prefix + "{" + sel.Name + "}" + sel.Suffix + "/" + tpl
			info.PathParams = append([]InferredParam{{
				Name:     sel.Name,
				In:       InPath,
				Required: sel.Kind == mux.SelectorPathParam,
			}}, info.PathParams...)

		case mux.SelectorQueryParam, mux.SelectorOptionalQueryParam:
			info.QueryParams = append([]InferredParam{{
				Name:     sel.Name,
				In:       InQuery,
				Required: sel.Kind == mux.SelectorQueryParam,
			}}, info.QueryParams...)

		case mux.SelectorMethod:
			methods++
			if methods > 1 {
				return RouteInfo{}, fmt.Errorf("%w: %s and %s under %q",
					ErrMultipleMethods, info.Method, sel.Value, "/"+tpl)
			}
			info.Method = sel.Value

		default:
			return RouteInfo{}, fmt.Errorf("openapi: unknown selector kind %s", sel.Kind)
		}
	}

	if methods == 0 {
		return RouteInfo{}, fmt.Errorf("%w: %q", ErrNoMethod, normalizePath(tpl))
	}

	info.Path = normalizePath(tpl)
	return info, nil
}

// normalizePath trims exactly one trailing slash unless the template is
// the root itself.
func normalizePath(tpl string) string {
	if tpl == "/" {
		return tpl
	}
	if strings.HasSuffix(tpl, "/") {
		return tpl[:len(tpl)-1]
	}
	return tpl
}
