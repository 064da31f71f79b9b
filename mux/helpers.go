package mux

import (
	"net/http"
	"path"
	"strings"
)

// cleanPath returns the canonical path for p, eliminating . and .. elements
// per RFC 3986 Section 5.2.4 (remove dot segments).
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	// path.Clean removes trailing slash except for root;
	// put the trailing slash back if necessary.
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}

// splitPath breaks a request path into its non-empty segments.
func splitPath(p string) []string {
	var segments []string
	for seg := range strings.SplitSeq(p, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

var (
	defaultNotFoundHandler         = http.NotFoundHandler()
	defaultMethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
)

// methodNotAllowed replies to the request with an HTTP 405 method not allowed.
// The Allow header is set by Router.ServeHTTP before this handler is invoked.
func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}
