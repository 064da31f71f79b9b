package muxhandlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vitalvas/routedoc/mux"
)

// ErrNoCacheControlRules is returned when CacheControlConfig.Rules is empty.
var ErrNoCacheControlRules = errors.New("cache control: at least one rule is required")

// CacheControlRule maps a Content-Type prefix such as "application/json"
// to a Cache-Control value. Matching is case-insensitive.
type CacheControlRule struct {
	ContentType string
	Value       string
}

// CacheControlConfig configures the CacheControl middleware.
type CacheControlConfig struct {
	// Rules are evaluated in order and the first match wins.
	Rules []CacheControlRule

	// DefaultValue is used when no rule matches. Empty sets nothing.
	DefaultValue string

	// PathPrefix limits the middleware to requests at or below it.
	PathPrefix string
}

// DocsCacheControl returns rules for the documentation endpoints: the JSON
// and YAML schema may be cached for maxAge seconds, the HTML page is always
// revalidated.
func DocsCacheControl(prefix string, maxAge int) CacheControlConfig {
	schema := "no-cache"
	if maxAge > 0 {
		schema = "public, max-age=" + strconv.Itoa(maxAge)
	}
	return CacheControlConfig{
		Rules: []CacheControlRule{
			{ContentType: "application/json", Value: schema},
			{ContentType: "application/x-yaml", Value: schema},
			{ContentType: "text/html", Value: "no-cache"},
		},
		PathPrefix: prefix,
	}
}

// CacheControlMiddleware returns middleware that sets Cache-Control from
// the response Content-Type unless the handler already set one. Error
// responses are left alone.
func CacheControlMiddleware(cfg CacheControlConfig) (mux.MiddlewareFunc, error) {
	if len(cfg.Rules) == 0 {
		return nil, ErrNoCacheControlRules
	}

	rules := make([]CacheControlRule, len(cfg.Rules))
	for i, rule := range cfg.Rules {
		rules[i] = CacheControlRule{ContentType: strings.ToLower(rule.ContentType), Value: rule.Value}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !underPrefix(r.URL.Path, cfg.PathPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(&cacheControlWriter{
				ResponseWriter: w,
				rules:          rules,
				defaultValue:   cfg.DefaultValue,
			}, r)
		})
	}, nil
}

type cacheControlWriter struct {
	http.ResponseWriter
	rules        []CacheControlRule
	defaultValue string
	wroteHeader  bool
}

func (cw *cacheControlWriter) WriteHeader(statusCode int) {
	if cw.wroteHeader {
		return
	}
	cw.wroteHeader = true

	h := cw.Header()
	if statusCode < http.StatusBadRequest && h.Get("Cache-Control") == "" {
		if value := cw.match(strings.ToLower(h.Get("Content-Type"))); value != "" {
			h.Set("Cache-Control", value)
		}
	}

	cw.ResponseWriter.WriteHeader(statusCode)
}

func (cw *cacheControlWriter) match(contentType string) string {
	for _, rule := range cw.rules {
		if strings.HasPrefix(contentType, rule.ContentType) {
			return rule.Value
		}
	}
	return cw.defaultValue
}

func (cw *cacheControlWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	return cw.ResponseWriter.Write(b)
}

func (cw *cacheControlWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
