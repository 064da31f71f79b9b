package openapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/routedoc/mux"
)

func TestAnalyzeRoute(t *testing.T) {
	tests := []struct {
		name   string
		build  func(r *mux.Router) *mux.Route
		path   string
		method string
		params []InferredParam
	}{
		{
			name:   "root",
			build:  func(r *mux.Router) *mux.Route { return r.Get("/", dummyHandler) },
			path:   "/",
			method: http.MethodGet,
		},
		{
			name:   "constants",
			build:  func(r *mux.Router) *mux.Route { return r.Post("/api/v1/users", dummyHandler) },
			path:   "/api/v1/users",
			method: http.MethodPost,
		},
		{
			name:   "trailing slash trimmed once",
			build:  func(r *mux.Router) *mux.Route { return r.Get("/v1/", dummyHandler) },
			path:   "/v1",
			method: http.MethodGet,
		},
		{
			name:   "path param",
			build:  func(r *mux.Router) *mux.Route { return r.Delete("/items/{id}", dummyHandler) },
			path:   "/items/{id}",
			method: http.MethodDelete,
			params: []InferredParam{{Name: "id", In: InPath, Required: true}},
		},
		{
			name:   "prefix and suffix kept",
			build:  func(r *mux.Router) *mux.Route { return r.Get("/files/v{version}.json", dummyHandler) },
			path:   "/files/v{version}.json",
			method: http.MethodGet,
			params: []InferredParam{{Name: "version", In: InPath, Required: true}},
		},
		{
			name:   "optional path param",
			build:  func(r *mux.Router) *mux.Route { return r.Get("/pages/{page?}", dummyHandler) },
			path:   "/pages/{page}",
			method: http.MethodGet,
			params: []InferredParam{{Name: "page", In: InPath}},
		},
		{
			name: "query params",
			build: func(r *mux.Router) *mux.Route {
				return r.Path("/search").Param("q").OptionalParam("limit").Method(http.MethodGet)
			},
			path:   "/search",
			method: http.MethodGet,
			params: []InferredParam{
				{Name: "q", In: InQuery, Required: true},
				{Name: "limit", In: InQuery},
			},
		},
		{
			name: "method above path",
			build: func(r *mux.Router) *mux.Route {
				return r.Method(http.MethodPatch).Path("/items/{id}")
			},
			path:   "/items/{id}",
			method: http.MethodPatch,
			params: []InferredParam{{Name: "id", In: InPath, Required: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mux.NewRouter()
			info, err := AnalyzeRoute(tt.build(r))
			require.NoError(t, err)

			assert.Equal(t, tt.path, info.Path)
			assert.Equal(t, tt.method, info.Method)
			if tt.params == nil {
				assert.Empty(t, info.Params())
			} else {
				assert.Equal(t, tt.params, info.Params())
			}
		})
	}
}

func TestAnalyzeRouteOrder(t *testing.T) {
	r := mux.NewRouter()
	leaf := r.Path("/a/{x}").Param("q1").Path("b/{y}").OptionalParam("q2").Method(http.MethodGet)

	info, err := AnalyzeRoute(leaf)
	require.NoError(t, err)

	assert.Equal(t, "/a/{x}/b/{y}", info.Path)
	assert.Equal(t, []InferredParam{
		{Name: "x", In: InPath, Required: true},
		{Name: "y", In: InPath, Required: true},
	}, info.PathParams)
	assert.Equal(t, []InferredParam{
		{Name: "q1", In: InQuery, Required: true},
		{Name: "q2", In: InQuery},
	}, info.QueryParams)
	assert.Equal(t, []string{"x", "y", "q1", "q2"}, paramNames(info.Params()))
}

func TestAnalyzeRouteErrors(t *testing.T) {
	t.Run("no method", func(t *testing.T) {
		r := mux.NewRouter()
		_, err := AnalyzeRoute(r.Path("/items/{id}"))
		assert.ErrorIs(t, err, ErrNoMethod)
		assert.Contains(t, err.Error(), "/items/{id}")
	})

	t.Run("root without method", func(t *testing.T) {
		r := mux.NewRouter()
		_, err := AnalyzeRoute(r.Root())
		assert.ErrorIs(t, err, ErrNoMethod)
	})

	t.Run("multiple methods", func(t *testing.T) {
		r := mux.NewRouter()
		_, err := AnalyzeRoute(r.Path("/items").Method(http.MethodGet).Method(http.MethodPut))
		assert.ErrorIs(t, err, ErrMultipleMethods)
	})
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/v1/", "/v1"},
		{"/v1", "/v1"},
		{"/a/b/", "/a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.in))
		})
	}
}

func paramNames(params []InferredParam) []string {
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}
	return names
}
