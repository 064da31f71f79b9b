// Package example is the sample application documented by the routedoc
// commands. It mirrors a small service: a greeting endpoint, an echo of the
// Example payload and an in-memory items resource.
package example

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/vitalvas/routedoc/mux"
	"github.com/vitalvas/routedoc/openapi"
)

// SecurityScheme is the key of the basic auth scheme used by the
// protected operations.
const SecurityScheme = "Bearer"

type Example struct {
	A string          `json:"a"`
	B int             `json:"b"`
	D ExampleNested   `json:"d"`
	F []ExampleNested `json:"f"`
}

type ExampleNested struct {
	C string `json:"c"`
}

// ErrorBody is the JSON error payload.
type ErrorBody struct {
	Message string `json:"message"`
}

// Register adds the example routes to r and documents them on spec.
func Register(r *mux.Router, spec *openapi.Spec, store *Store) {
	if store == nil {
		store = NewStore()
	}

	spec.AddSecurityScheme(SecurityScheme, openapi.BasicAuth())
	spec.AddTag(openapi.Tag{Name: "items", Description: "Inventory items"})

	spec.Route(r.Get("/", hello)).
		Summary("hello world").
		ResponseContent(http.StatusOK, "text/plain", "")

	spec.Route(r.Post("/", echoExample)).
		Summary("summary").
		Request("").
		Response(http.StatusOK, Example{})

	spec.Route(r.Put("/some/{id}", some)).
		Summary("some").
		Parameter("id", openapi.InPath).
		Response(http.StatusOK, "")

	spec.Route(r.Get("/health", health)).
		Summary("Liveness probe").
		NoSecurity().
		Response(http.StatusNoContent, nil)

	h := &itemsHandler{store: store}
	items := spec.Group().
		Tags("items").
		Security(SecurityScheme).
		DefaultResponse(ErrorBody{})

	items.Route(r.Path("/items").OptionalParam("limit").OptionalParam("tag").Method(http.MethodGet).HandlerFunc(h.list)).
		Summary("List items").
		Parameter("limit", openapi.InQuery,
			openapi.ParamDescription("Maximum number of items to return"),
			openapi.ParamSchema(0)).
		Parameter("tag", openapi.InQuery, openapi.ParamDescription("Only items carrying this tag")).
		Response(http.StatusOK, []Item{})

	items.Route(r.Post("/items", h.create)).
		Summary("Create item").
		Request(ItemInput{}).
		RequestRequired(true).
		Response(http.StatusCreated, Item{}).
		ResponseHeader(http.StatusCreated, "Location", &openapi.Header{
			Description: "URL of the created item",
			Schema:      &openapi.Schema{Type: openapi.TypeString("string")},
		})

	items.Route(r.Get("/items/{id}", h.get)).
		Summary("Get item").
		Parameter("id", openapi.InPath, openapi.ParamSchema(uuid.UUID{})).
		Response(http.StatusOK, Item{}).
		Response(http.StatusNotFound, ErrorBody{})

	items.Route(r.Put("/items/{id}", h.update)).
		Summary("Replace item").
		Parameter("id", openapi.InPath, openapi.ParamSchema(uuid.UUID{})).
		Request(ItemInput{}).
		RequestRequired(true).
		Response(http.StatusOK, Item{}).
		Response(http.StatusNotFound, ErrorBody{})

	items.Route(r.Delete("/items/{id}", h.delete)).
		Summary("Delete item").
		Parameter("id", openapi.InPath, openapi.ParamSchema(uuid.UUID{})).
		Response(http.StatusNoContent, nil).
		Response(http.StatusNotFound, ErrorBody{})
}

func hello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Hello World!"))
}

func echoExample(w http.ResponseWriter, _ *http.Request) {
	mux.ResponseJSON(w, http.StatusOK, Example{A: "hey", B: 10, D: ExampleNested{C: "r"}, F: []ExampleNested{}})
}

func some(w http.ResponseWriter, _ *http.Request) {
	mux.ResponseJSON(w, http.StatusOK, "Hello World!")
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

type itemsHandler struct {
	store *Store
}

func writeError(w http.ResponseWriter, code int, format string, args ...any) {
	mux.ResponseJSON(w, code, ErrorBody{Message: fmt.Sprintf(format, args...)})
}

func (h *itemsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw, ok := mux.VarGet(r, "limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit %q", raw)
			return
		}
		limit = n
	}
	tag, _ := mux.VarGet(r, "tag")

	mux.ResponseJSON(w, http.StatusOK, h.store.List(tag, limit))
}

func (h *itemsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := mux.BindJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: %v", err)
		return
	}
	if err := in.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	item := h.store.Create(in)
	w.Header().Set("Location", "/items/"+item.ID.String())
	mux.ResponseJSON(w, http.StatusCreated, item)
}

func (h *itemsHandler) itemID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, _ := mux.VarGet(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id %q", raw)
		return uuid.Nil, false
	}
	return id, true
}

func (h *itemsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	item, err := h.store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "%v", err)
		return
	}
	mux.ResponseJSON(w, http.StatusOK, item)
}

func (h *itemsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	var in ItemInput
	if err := mux.BindJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: %v", err)
		return
	}
	if err := in.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	item, err := h.store.Update(id, in)
	if err != nil {
		writeError(w, http.StatusNotFound, "%v", err)
		return
	}
	mux.ResponseJSON(w, http.StatusOK, item)
}

func (h *itemsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "%v", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
