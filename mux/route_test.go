package mux

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(http.ResponseWriter, *http.Request) {}

func TestRoutePath(t *testing.T) {
	t.Run("creates one node per segment", func(t *testing.T) {
		r := NewRouter()
		leaf := r.Path("/a/{id}/c")

		require.NotNil(t, leaf)
		assert.Equal(t, Selector{Kind: SelectorConstant, Value: "c"}, leaf.Selector())
		assert.Equal(t, Selector{Kind: SelectorPathParam, Name: "id"}, leaf.Parent().Selector())
		assert.Equal(t, Selector{Kind: SelectorConstant, Value: "a"}, leaf.Parent().Parent().Selector())
		assert.Same(t, r.Root(), leaf.Parent().Parent().Parent())
	})

	t.Run("reuses shared prefix nodes", func(t *testing.T) {
		r := NewRouter()
		a := r.Path("/users/{id}")
		b := r.Path("/users/{id}")
		assert.Same(t, a, b)
		assert.Len(t, r.Children(), 1)
	})

	t.Run("root template returns receiver", func(t *testing.T) {
		r := NewRouter()
		assert.Same(t, r.Root(), r.Path("/"))
		assert.Same(t, r.Root(), r.Path(""))
	})

	t.Run("ignores empty segments", func(t *testing.T) {
		r := NewRouter()
		assert.Same(t, r.Path("/a/b"), r.Path("//a//b/"))
	})

	t.Run("panics on malformed segment", func(t *testing.T) {
		r := NewRouter()
		assert.Panics(t, func() { r.Path("/a/{") })
	})
}

func TestRouteBuilders(t *testing.T) {
	t.Run("method is upper-cased", func(t *testing.T) {
		r := NewRouter()
		m := r.Method("get")
		assert.Equal(t, Selector{Kind: SelectorMethod, Value: "GET"}, m.Selector())
	})

	t.Run("query param selectors", func(t *testing.T) {
		r := NewRouter()
		q := r.Param("q")
		o := r.OptionalParam("limit")
		assert.Equal(t, SelectorQueryParam, q.Selector().Kind)
		assert.Equal(t, "q", q.Selector().Name)
		assert.Equal(t, SelectorOptionalQueryParam, o.Selector().Kind)
		assert.Equal(t, "limit", o.Selector().Name)
	})

	t.Run("verb helpers register method leaves", func(t *testing.T) {
		r := NewRouter()
		tests := []struct {
			method string
			route  *Route
		}{
			{http.MethodGet, r.Get("/x", noop)},
			{http.MethodPost, r.Post("/x", noop)},
			{http.MethodPut, r.Put("/x", noop)},
			{http.MethodDelete, r.Delete("/x", noop)},
			{http.MethodPatch, r.Patch("/x", noop)},
			{http.MethodHead, r.Head("/x", noop)},
			{http.MethodOptions, r.Options("/x", noop)},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.method, tt.route.Selector().Value)
			assert.NotNil(t, tt.route.GetHandler())
			assert.Equal(t, "/x", tt.route.Parent().String())
		}
		assert.Len(t, r.Path("/x").Children(), 7)
	})

	t.Run("handle sets handler on method node", func(t *testing.T) {
		r := NewRouter()
		h := http.HandlerFunc(noop)
		m := r.Handle(http.MethodPut, "/some/{id}", h)
		assert.Equal(t, SelectorMethod, m.Selector().Kind)
		assert.NotNil(t, m.GetHandler())
		assert.Nil(t, m.Parent().GetHandler())
	})

	t.Run("children returns a copy", func(t *testing.T) {
		r := NewRouter()
		r.Path("/a")
		children := r.Children()
		children[0] = nil
		assert.NotNil(t, r.Children()[0])
	})
}

func TestRouteString(t *testing.T) {
	r := NewRouter()
	assert.Equal(t, "/", r.String())
	assert.Equal(t, "/a/{id}/(q?)/(method:GET)", r.Path("/a/{id}").OptionalParam("q").Method(http.MethodGet).String())
}

func TestRouteWalk(t *testing.T) {
	t.Run("visits in pre-order with ancestors", func(t *testing.T) {
		r := NewRouter()
		r.Get("/a/b", noop)
		r.Post("/a", noop)
		r.Get("/c", noop)

		var visited []string
		var depths []int
		err := r.Walk(func(route *Route, ancestors []*Route) error {
			visited = append(visited, route.String())
			depths = append(depths, len(ancestors))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"/",
			"/a",
			"/a/b",
			"/a/b/(method:GET)",
			"/a/(method:POST)",
			"/c",
			"/c/(method:GET)",
		}, visited)
		assert.Equal(t, []int{0, 1, 2, 3, 2, 1, 2}, depths)
	})

	t.Run("SkipRoute skips descendants", func(t *testing.T) {
		r := NewRouter()
		r.Get("/a/b", noop)
		r.Get("/c", noop)

		var visited []string
		err := r.Walk(func(route *Route, _ []*Route) error {
			visited = append(visited, route.String())
			if route.String() == "/a" {
				return SkipRoute
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"/", "/a", "/c", "/c/(method:GET)"}, visited)
	})

	t.Run("error stops walk", func(t *testing.T) {
		r := NewRouter()
		r.Get("/a", noop)
		r.Get("/b", noop)

		boom := errors.New("boom")
		count := 0
		err := r.Walk(func(_ *Route, _ []*Route) error {
			count++
			if count == 2 {
				return boom
			}
			return nil
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, count)
	})
}

func TestRouteLeaves(t *testing.T) {
	r := NewRouter()
	r.Get("/", noop)
	r.Post("/", noop)
	r.Put("/some/{id}", noop)
	r.Path("/dangling")

	leaves := r.Leaves()
	require.Len(t, leaves, 3)
	assert.Equal(t, "GET", leaves[0].Selector().Value)
	assert.Equal(t, "POST", leaves[1].Selector().Value)
	assert.Equal(t, "/some/{id}/(method:PUT)", leaves[2].String())
}

// --- Benchmarks ---

func BenchmarkRoutePath(b *testing.B) {
	r := NewRouter()
	for b.Loop() {
		r.Path("/api/v1/users/{id}/posts")
	}
}
