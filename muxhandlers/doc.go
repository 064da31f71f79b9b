// Package muxhandlers provides the HTTP middleware used in front of the
// documentation endpoints.
//
// # CORS Middleware
//
// CORSMiddleware lets browser tools on other origins, such as hosted
// OpenAPI editors, fetch the generated schema. Preflight requests under
// the configured prefix are answered directly, so it wraps the whole
// router rather than being installed with Router.Use.
//
//	cors, err := muxhandlers.CORSMiddleware(muxhandlers.CORSConfig{
//	    AllowedOrigins: []string{"https://editor.swagger.io"},
//	    PathPrefix:     "/docs",
//	})
//	if err != nil {
//	    return err
//	}
//	http.ListenAndServe(":8080", cors(r))
//
// # Cache Control Middleware
//
// CacheControlMiddleware sets Cache-Control from the response Content-Type.
// DocsCacheControl returns rules that let clients cache the schema for a
// while and always revalidate the HTML page.
package muxhandlers

import "strings"

// underPrefix reports whether path is prefix itself or lies below it.
// An empty prefix matches every path.
func underPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
