package mux

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBody(body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, body)
	}
}

func serve(r *Router, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter()
	require.NotNil(t, r)
	assert.Equal(t, SelectorRoot, r.Root().Selector().Kind)
	assert.Nil(t, r.Root().Parent())
}

func TestRouterServeHTTP(t *testing.T) {
	t.Run("dispatches to matched handler", func(t *testing.T) {
		r := NewRouter()
		r.Get("/hello", writeBody("world"))

		w := serve(r, http.MethodGet, "/hello")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "world", w.Body.String())
	})

	t.Run("dispatches root route", func(t *testing.T) {
		r := NewRouter()
		r.Get("/", writeBody("hello world"))

		w := serve(r, http.MethodGet, "/")
		assert.Equal(t, "hello world", w.Body.String())
	})

	t.Run("returns 404 for unmatched path", func(t *testing.T) {
		r := NewRouter()
		r.Get("/hello", noop)

		w := serve(r, http.MethodGet, "/notfound")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("uses custom NotFoundHandler", func(t *testing.T) {
		r := NewRouter()
		r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "custom 404")
		})

		w := serve(r, http.MethodGet, "/notfound")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "custom 404", w.Body.String())
	})

	t.Run("sets Vars in request context", func(t *testing.T) {
		r := NewRouter()
		r.Get("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
			fmt.Fprint(w, Vars(req)["id"])
		})

		w := serve(r, http.MethodGet, "/users/42")
		assert.Equal(t, "42", w.Body.String())
	})

	t.Run("sets CurrentRoute in request context", func(t *testing.T) {
		r := NewRouter()
		var got *Route
		leaf := r.Get("/test", func(_ http.ResponseWriter, req *http.Request) {
			got = CurrentRoute(req)
		})

		serve(r, http.MethodGet, "/test")
		assert.Same(t, leaf, got)
	})

	t.Run("cleans path", func(t *testing.T) {
		r := NewRouter()
		r.Get("/users", writeBody("ok"))

		w := serve(r, http.MethodGet, "/users/../users")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("trailing slash matches same route", func(t *testing.T) {
		r := NewRouter()
		r.Get("/users", writeBody("ok"))

		w := serve(r, http.MethodGet, "/users/")
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("returns 404 for node without handler", func(t *testing.T) {
		r := NewRouter()
		r.Path("/test")

		w := serve(r, http.MethodGet, "/test")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-method node handler serves any method", func(t *testing.T) {
		r := NewRouter()
		r.Path("/any").HandlerFunc(writeBody("any"))

		assert.Equal(t, "any", serve(r, http.MethodDelete, "/any").Body.String())
		assert.Equal(t, "any", serve(r, http.MethodGet, "/any").Body.String())
	})
}

func TestRouterMethodNotAllowed(t *testing.T) {
	t.Run("returns 405 with sorted Allow header", func(t *testing.T) {
		r := NewRouter()
		r.Put("/users", noop)
		r.Get("/users", noop)
		r.Delete("/users", noop)

		w := serve(r, http.MethodPost, "/users")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "DELETE, GET, PUT", w.Header().Get("Allow"))
	})

	t.Run("uses custom MethodNotAllowedHandler", func(t *testing.T) {
		r := NewRouter()
		r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusMethodNotAllowed)
			fmt.Fprint(w, "custom 405")
		})
		r.Get("/users", noop)

		w := serve(r, http.MethodPost, "/users")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "custom 405", w.Body.String())
		assert.Equal(t, "GET", w.Header().Get("Allow"))
	})

	t.Run("deeper path mismatch is 404", func(t *testing.T) {
		r := NewRouter()
		r.Get("/users", noop)

		w := serve(r, http.MethodPost, "/users/1")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, w.Header().Get("Allow"))
	})
}

func TestRouterPathParams(t *testing.T) {
	t.Run("constant wins over parameter", func(t *testing.T) {
		r := NewRouter()
		r.Get("/files/{name}", writeBody("param"))
		r.Get("/files/new", writeBody("constant"))

		assert.Equal(t, "constant", serve(r, http.MethodGet, "/files/new").Body.String())
		assert.Equal(t, "param", serve(r, http.MethodGet, "/files/old").Body.String())
	})

	t.Run("backtracks out of a dead-end constant", func(t *testing.T) {
		r := NewRouter()
		r.Get("/a/{x}/c", func(w http.ResponseWriter, req *http.Request) {
			fmt.Fprint(w, "param:"+Vars(req)["x"])
		})
		r.Get("/a/b/d", writeBody("constant"))

		assert.Equal(t, "param:b", serve(r, http.MethodGet, "/a/b/c").Body.String())
		assert.Equal(t, "constant", serve(r, http.MethodGet, "/a/b/d").Body.String())
	})

	t.Run("prefix and suffix around parameter", func(t *testing.T) {
		r := NewRouter()
		r.Get("/spec/v{version}.json", func(w http.ResponseWriter, req *http.Request) {
			fmt.Fprint(w, Vars(req)["version"])
		})

		assert.Equal(t, "3", serve(r, http.MethodGet, "/spec/v3.json").Body.String())
		assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/spec/3.json").Code)
	})

	t.Run("optional path parameter", func(t *testing.T) {
		r := NewRouter()
		r.Get("/items/{id?}", func(w http.ResponseWriter, req *http.Request) {
			id, ok := VarGet(req, "id")
			fmt.Fprintf(w, "%s:%t", id, ok)
		})

		assert.Equal(t, "7:true", serve(r, http.MethodGet, "/items/7").Body.String())
		assert.Equal(t, ":false", serve(r, http.MethodGet, "/items").Body.String())
	})

	t.Run("discarded captures do not leak", func(t *testing.T) {
		r := NewRouter()
		r.Get("/{a}/x", noop)
		r.Get("/{b}/y", func(w http.ResponseWriter, req *http.Request) {
			_, leaked := VarGet(req, "a")
			fmt.Fprintf(w, "%s:%t", Vars(req)["b"], leaked)
		})

		assert.Equal(t, "v:false", serve(r, http.MethodGet, "/v/y").Body.String())
	})
}

func TestRouterQueryParams(t *testing.T) {
	t.Run("required query parameter", func(t *testing.T) {
		r := NewRouter()
		r.Path("/search").Param("q").Method(http.MethodGet).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			fmt.Fprint(w, Vars(req)["q"])
		})

		assert.Equal(t, "go", serve(r, http.MethodGet, "/search?q=go").Body.String())
		assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/search").Code)
	})

	t.Run("optional query parameter", func(t *testing.T) {
		r := NewRouter()
		r.Path("/items").OptionalParam("limit").Method(http.MethodGet).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			limit, ok := VarGet(req, "limit")
			fmt.Fprintf(w, "%s:%t", limit, ok)
		})

		assert.Equal(t, "10:true", serve(r, http.MethodGet, "/items?limit=10").Body.String())
		assert.Equal(t, ":false", serve(r, http.MethodGet, "/items").Body.String())
	})

	t.Run("empty value counts as present", func(t *testing.T) {
		r := NewRouter()
		r.Path("/flag").Param("on").Method(http.MethodGet).HandlerFunc(writeBody("ok"))

		assert.Equal(t, "ok", serve(r, http.MethodGet, "/flag?on=").Body.String())
	})
}

func TestRouterMatch(t *testing.T) {
	t.Run("fills match on success", func(t *testing.T) {
		r := NewRouter()
		leaf := r.Get("/users/{id}", noop)

		var match RouteMatch
		ok := r.Match(httptest.NewRequest(http.MethodGet, "/users/5", nil), &match)
		require.True(t, ok)
		assert.Same(t, leaf, match.Route)
		assert.NotNil(t, match.Handler)
		assert.Equal(t, map[string]string{"id": "5"}, match.Vars)
		assert.NoError(t, match.MatchErr)
	})

	t.Run("reports method mismatch", func(t *testing.T) {
		r := NewRouter()
		r.Get("/users", noop)

		var match RouteMatch
		ok := r.Match(httptest.NewRequest(http.MethodPost, "/users", nil), &match)
		assert.False(t, ok)
		assert.ErrorIs(t, match.MatchErr, ErrMethodMismatch)
		assert.Equal(t, []string{"GET"}, match.allowed)
	})

	t.Run("reports not found", func(t *testing.T) {
		r := NewRouter()

		var match RouteMatch
		ok := r.Match(httptest.NewRequest(http.MethodGet, "/nothing", nil), &match)
		assert.False(t, ok)
		assert.ErrorIs(t, match.MatchErr, ErrNotFound)
	})
}

func TestRouterUse(t *testing.T) {
	t.Run("applies middleware in registration order", func(t *testing.T) {
		r := NewRouter()
		var order []string
		tag := func(name string) MiddlewareFunc {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, req)
				})
			}
		}
		r.Use(tag("first"), tag("second"))
		r.Get("/", func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		})

		serve(r, http.MethodGet, "/")
		assert.Equal(t, []string{"first", "second", "handler"}, order)
	})

	t.Run("middleware added later invalidates cache", func(t *testing.T) {
		r := NewRouter()
		r.Get("/", noop)
		serve(r, http.MethodGet, "/")

		called := false
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				called = true
				next.ServeHTTP(w, req)
			})
		})
		serve(r, http.MethodGet, "/")
		assert.True(t, called)
	})

	t.Run("middleware not applied on 404", func(t *testing.T) {
		r := NewRouter()
		called := false
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				called = true
				next.ServeHTTP(w, req)
			})
		})

		serve(r, http.MethodGet, "/missing")
		assert.False(t, called)
	})
}

// --- Benchmarks ---

func BenchmarkRouterServeHTTP(b *testing.B) {
	r := NewRouter()
	r.Get("/api/v1/users/{id}/posts/{post}", noop)
	r.Get("/api/v1/users", noop)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/42/posts/7", nil)
	w := httptest.NewRecorder()
	b.ResetTimer()
	for b.Loop() {
		r.ServeHTTP(w, req)
	}
}
