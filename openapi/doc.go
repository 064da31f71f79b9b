// Package openapi generates OpenAPI v3.1.0 documents from a mux route
// tree and per-route annotations.
//
// The route tree already knows most of what a document needs: the path
// template, the method and the path and query parameters. Annotations add
// what the tree cannot know, such as summaries, request and response
// bodies and security. Building a document merges the two; an explicit
// annotation is never overwritten by what the tree implies.
//
// # Basic Usage
//
//	r := mux.NewRouter()
//	spec := openapi.NewSpec(openapi.Info{Title: "Example API", Version: "1.0.0"})
//
//	spec.Route(r.Get("/", hello)).
//	    Summary("Hello").
//	    Response(http.StatusOK, "")
//
//	spec.Route(r.Put("/some/{id}", update)).
//	    Summary("Update").
//	    Request(Example{}).
//	    Response(http.StatusNoContent, nil)
//
//	doc, err := spec.Build(r)
//	if err != nil {
//	    return err
//	}
//	err = openapi.Export(doc, "openapi/documentation.yaml")
//
// # Route Analysis
//
// AnalyzeRoute walks from an annotated node to the root and reconstructs
// the path template. Path parameters keep any literal prefix and suffix
// from their segment. Exactly one trailing slash is trimmed, except for
// the root path "/". Required path and query selectors yield required
// parameters; optional ones leave the required flag unset.
//
// # Parameters
//
// Parameters declared with OperationBuilder.Parameter take precedence.
// For an inferred parameter with a matching name, only unset fields are
// filled: a nil Required, an empty location and a missing schema.
//
//	spec.Route(r.Path("/items").OptionalParam("sort").Method(http.MethodGet).HandlerFunc(list)).
//	    Parameter("sort", openapi.InQuery, openapi.ParamRequired(true))
//
// # Schemas
//
// Request and response bodies accept a Go value, a reflect.Type or an
// explicit *Schema. Named struct types are collected into
// components/schemas under their short type name and referenced with
// $ref, so a type used by many operations appears once. Struct fields
// follow `json` tags; the `openapi` tag adds constraints:
//
//	type User struct {
//	    ID    string `json:"id" openapi:"description=User ID,format=uuid"`
//	    Email string `json:"email" openapi:"format=email"`
//	    Age   int    `json:"age,omitempty" openapi:"minimum=0,maximum=150"`
//	}
//
// Supported tag keys: description, example, format, minimum, maximum,
// exclusiveMinimum, exclusiveMaximum, multipleOf, minLength, maxLength,
// minItems, maxItems, pattern, enum (pipe-separated), title, deprecated,
// readOnly, writeOnly, uniqueItems.
//
// Types implementing Exampler supply the component example. A custom
// Resolver can be installed with Spec.SetResolver.
//
// # Operation IDs
//
// Spec.AutoOperationIDs names operations without an explicit ID after
// their method and path, so GET /items/{id} becomes "getItemsById".
//
// # Security
//
//	spec.AddSecurityScheme("bearer", openapi.BearerAuth("JWT")).
//	    AddSecurity("bearer")
//
//	spec.Route(r.Get("/health", health)).NoSecurity()
//
// # Route Groups
//
// Group shares tags, security, parameters and responses between
// operations:
//
//	admin := spec.Group().Tags("admin").Security("bearer")
//	admin.Route(r.Delete("/users/{id}", deleteUser)).Summary("Delete user")
//
// # Export and Serving
//
// Marshal produces JSON or YAML. Export writes a file, choosing the format
// from the extension. Handle serves the document and an interactive UI
// from the same router:
//
//	spec.Handle(r, "/docs", nil)
//
// Validate checks a document with the oastools validator.
package openapi
