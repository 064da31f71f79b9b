package muxhandlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vitalvas/routedoc/mux"
)

// ErrNoOrigins is returned when CORSConfig.AllowedOrigins is empty.
var ErrNoOrigins = errors.New("cors: at least one allowed origin is required")

// CORSConfig configures the CORS middleware.
//
// Spec references:
//   - CORS protocol: https://fetch.spec.whatwg.org/#http-cors-protocol
//   - Web Origin:    https://www.rfc-editor.org/rfc/rfc6454
type CORSConfig struct {
	// AllowedOrigins holds exact origins, "*" for any origin, or subdomain
	// patterns like "https://*.example.com".
	AllowedOrigins []string

	// AllowedMethods is advertised in Access-Control-Allow-Methods.
	// Defaults to GET, HEAD and OPTIONS.
	AllowedMethods []string

	// AllowedHeaders is advertised on preflight. When empty the
	// Access-Control-Request-Headers value is reflected.
	AllowedHeaders []string

	// ExposeHeaders lists response headers readable by client code.
	ExposeHeaders []string

	// MaxAge is how long in seconds a preflight result may be cached.
	// Zero omits the header.
	MaxAge int

	// PathPrefix limits the middleware to requests at or below it.
	PathPrefix string
}

type originMatcher struct {
	any      bool
	exact    map[string]struct{}
	patterns [][2]string
}

func newOriginMatcher(origins []string) (*originMatcher, error) {
	m := &originMatcher{exact: make(map[string]struct{})}
	for _, o := range origins {
		lower := strings.ToLower(strings.TrimSpace(o))
		switch strings.Count(lower, "*") {
		case 0:
			m.exact[lower] = struct{}{}
		case 1:
			if lower == "*" {
				m.any = true
				continue
			}
			prefix, suffix, _ := strings.Cut(lower, "*")
			m.patterns = append(m.patterns, [2]string{prefix, suffix})
		default:
			return nil, errors.New("cors: origin pattern contains multiple wildcards: " + o)
		}
	}
	return m, nil
}

func (m *originMatcher) match(origin string) bool {
	if m.any {
		return true
	}
	origin = strings.ToLower(origin)
	if _, ok := m.exact[origin]; ok {
		return true
	}
	for _, p := range m.patterns {
		if len(origin) > len(p[0])+len(p[1]) &&
			strings.HasPrefix(origin, p[0]) &&
			strings.HasSuffix(origin, p[1]) {
			return true
		}
	}
	return false
}

// CORSMiddleware returns middleware that adds CORS headers to requests from
// allowed origins and answers their preflight requests with 204.
func CORSMiddleware(cfg CORSConfig) (mux.MiddlewareFunc, error) {
	if len(cfg.AllowedOrigins) == 0 {
		return nil, ErrNoOrigins
	}

	origins, err := newOriginMatcher(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	}
	allowMethods := strings.Join(methods, ",")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !underPrefix(r.URL.Path, cfg.PathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if !origins.any {
				h.Add("Vary", "Origin")
			}

			origin := r.Header.Get("Origin")
			if origin == "" || !origins.match(origin) {
				next.ServeHTTP(w, r)
				return
			}

			if origins.any {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			h.Set("Access-Control-Allow-Methods", allowMethods)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if len(cfg.AllowedHeaders) > 0 {
					h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ","))
				} else if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					h.Set("Access-Control-Allow-Headers", reqHeaders)
				}
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if len(cfg.ExposeHeaders) > 0 {
				h.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ","))
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}
