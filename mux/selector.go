package mux

import (
	"fmt"
	"strings"
)

// SelectorKind classifies how a route node participates in matching and
// in path reconstruction.
type SelectorKind int

const (
	// SelectorRoot marks the root of a route tree. It consumes nothing.
	SelectorRoot SelectorKind = iota
	// SelectorConstant matches one literal path segment.
	SelectorConstant
	// SelectorPathParam captures one path segment into a named variable.
	SelectorPathParam
	// SelectorOptionalPathParam captures one path segment if present.
	SelectorOptionalPathParam
	// SelectorQueryParam requires a query parameter to be present.
	SelectorQueryParam
	// SelectorOptionalQueryParam captures a query parameter if present.
	SelectorOptionalQueryParam
	// SelectorMethod matches the request method.
	SelectorMethod
)

// String returns a short name for the kind.
func (k SelectorKind) String() string {
	switch k {
	case SelectorRoot:
		return "root"
	case SelectorConstant:
		return "constant"
	case SelectorPathParam:
		return "path-param"
	case SelectorOptionalPathParam:
		return "optional-path-param"
	case SelectorQueryParam:
		return "query-param"
	case SelectorOptionalQueryParam:
		return "optional-query-param"
	case SelectorMethod:
		return "method"
	}
	return fmt.Sprintf("SelectorKind(%d)", int(k))
}

// Selector is the structural classification of a single route node.
//
// Value holds the literal segment for SelectorConstant and the upper-cased
// method token for SelectorMethod. Name holds the parameter name for the
// parameter kinds. Prefix and Suffix hold literal text surrounding a path
// parameter inside its segment, as in "x{id}y".
type Selector struct {
	Kind   SelectorKind
	Value  string
	Name   string
	Prefix string
	Suffix string
}

// String renders the selector the way it appears in a route definition.
func (s Selector) String() string {
	switch s.Kind {
	case SelectorRoot:
		return "/"
	case SelectorConstant:
		return s.Value
	case SelectorPathParam:
		return s.Prefix + "{" + s.Name + "}" + s.Suffix
	case SelectorOptionalPathParam:
		return s.Prefix + "{" + s.Name + "?}" + s.Suffix
	case SelectorQueryParam:
		return "(" + s.Name + ")"
	case SelectorOptionalQueryParam:
		return "(" + s.Name + "?)"
	case SelectorMethod:
		return "(method:" + s.Value + ")"
	}
	return "?"
}

// weight orders sibling selectors during dispatch: literal segments are
// tried before parameters, and parameters before selectors that consume
// no segment.
func (s Selector) weight() int {
	switch s.Kind {
	case SelectorConstant:
		return 0
	case SelectorPathParam:
		return 1
	case SelectorOptionalPathParam:
		return 2
	default:
		return 3
	}
}

// matchSegment reports whether a path parameter selector accepts seg and
// returns the captured value.
func (s Selector) matchSegment(seg string) (string, bool) {
	if len(seg) < len(s.Prefix)+len(s.Suffix) {
		return "", false
	}
	if !strings.HasPrefix(seg, s.Prefix) || !strings.HasSuffix(seg, s.Suffix) {
		return "", false
	}
	value := seg[len(s.Prefix) : len(seg)-len(s.Suffix)]
	if value == "" {
		return "", false
	}
	return value, true
}

// parseSegment converts one path segment of a route definition into a
// selector. Supported forms are "name", "{id}", "{id?}" and "x{id}y".
func parseSegment(seg string) (Selector, error) {
	open := strings.IndexByte(seg, '{')
	if open < 0 {
		if strings.IndexByte(seg, '}') >= 0 {
			return Selector{}, fmt.Errorf("mux: unbalanced brace in segment %q", seg)
		}
		return Selector{Kind: SelectorConstant, Value: seg}, nil
	}

	end := strings.IndexByte(seg, '}')
	if end < open {
		return Selector{}, fmt.Errorf("mux: unbalanced brace in segment %q", seg)
	}
	if strings.IndexByte(seg[end+1:], '{') >= 0 || strings.IndexByte(seg[open+1:end], '{') >= 0 {
		return Selector{}, fmt.Errorf("mux: only one parameter allowed in segment %q", seg)
	}

	name := seg[open+1 : end]
	kind := SelectorPathParam
	if before, ok := strings.CutSuffix(name, "?"); ok {
		name = before
		kind = SelectorOptionalPathParam
	}
	if name == "" {
		return Selector{}, fmt.Errorf("mux: empty parameter name in segment %q", seg)
	}

	return Selector{
		Kind:   kind,
		Name:   name,
		Prefix: seg[:open],
		Suffix: seg[end+1:],
	}, nil
}
