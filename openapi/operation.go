package openapi

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
)

// operationMeta stores metadata collected via the fluent builder
// before the final document is built. Fields correspond to the Operation
// Object.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object
type operationMeta struct {
	operationID  string
	summary      string
	description  string
	tags         []string
	deprecated   bool
	parameters   []*paramSpec
	security     []SecurityRequirement
	externalDocs *ExternalDocs

	requestContents      map[string]any                // contentType -> body
	requestDescription   string                        // request body description
	requestRequired      *bool                         // nil = not stated
	responseContents     map[string]map[string]any     // statusKey -> contentType -> body
	responseDescriptions map[string]string             // statusKey -> custom description
	responseHeaders      map[string]map[string]*Header // statusKey -> headerName -> header
}

// paramSpec is an explicit parameter whose schema source is resolved at
// build time.
type paramSpec struct {
	param  Parameter
	schema any
}

// ParamOption configures an explicit parameter.
type ParamOption func(*paramSpec)

// ParamDescription sets the parameter description.
func ParamDescription(desc string) ParamOption {
	return func(p *paramSpec) { p.param.Description = desc }
}

// ParamRequired states whether the parameter is required. Parameters
// without this option have their required flag filled from the route tree.
func ParamRequired(required bool) ParamOption {
	return func(p *paramSpec) { p.param.Required = &required }
}

// ParamDeprecated marks the parameter as deprecated.
func ParamDeprecated() ParamOption {
	return func(p *paramSpec) { p.param.Deprecated = true }
}

// ParamAllowEmptyValue allows an empty value for a query parameter.
func ParamAllowEmptyValue() ParamOption {
	return func(p *paramSpec) { p.param.AllowEmptyValue = true }
}

// ParamSchema sets the parameter schema. The value is resolved like a
// request body: a *Schema, a reflect.Type or a Go value.
func ParamSchema(v any) ParamOption {
	return func(p *paramSpec) { p.schema = v }
}

// ParamExample sets an example value for the parameter.
func ParamExample(v any) ParamOption {
	return func(p *paramSpec) { p.param.Example = v }
}

// OperationBuilder provides a fluent API for attaching OpenAPI metadata
// to a route. It assembles an Operation Object.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object
type OperationBuilder struct {
	meta *operationMeta
}

func newOperationBuilder() *OperationBuilder {
	return &OperationBuilder{
		meta: &operationMeta{
			requestContents:  make(map[string]any),
			responseContents: make(map[string]map[string]any),
		},
	}
}

// OperationID sets the operation ID.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object (operationId)
func (b *OperationBuilder) OperationID(id string) *OperationBuilder {
	b.meta.operationID = id
	return b
}

// Summary sets the operation summary.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object (summary)
func (b *OperationBuilder) Summary(s string) *OperationBuilder {
	b.meta.summary = s
	return b
}

// Description sets the operation description.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object (description)
func (b *OperationBuilder) Description(d string) *OperationBuilder {
	b.meta.description = d
	return b
}

// Tags adds one or more tags to the operation.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object (tags)
func (b *OperationBuilder) Tags(tags ...string) *OperationBuilder {
	b.meta.tags = append(b.meta.tags, tags...)
	return b
}

// Deprecated marks the operation as deprecated.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object (deprecated)
func (b *OperationBuilder) Deprecated() *OperationBuilder {
	b.meta.deprecated = true
	return b
}

// Parameter declares a parameter explicitly. A second declaration with the
// same name and location replaces the first. An empty location is filled
// from the route tree when the name matches an inferred parameter.
//
// See: https://spec.openapis.org/oas/v3.1.0#parameter-object
func (b *OperationBuilder) Parameter(name, in string, opts ...ParamOption) *OperationBuilder {
	spec := &paramSpec{param: Parameter{Name: name, In: in}}
	for _, opt := range opts {
		opt(spec)
	}

	for i, existing := range b.meta.parameters {
		if existing.param.Name == name && existing.param.In == in {
			b.meta.parameters[i] = spec
			return b
		}
	}
	b.meta.parameters = append(b.meta.parameters, spec)
	return b
}

// Request registers an application/json request body type for the operation.
// This is a shortcut for RequestContent("application/json", body).
//
// See: https://spec.openapis.org/oas/v3.1.0#request-body-object
func (b *OperationBuilder) Request(body any) *OperationBuilder {
	b.meta.requestContents["application/json"] = body
	return b
}

// RequestContent registers a request body with the given content type.
// The body can be a Go value (schema resolved from its type), a
// reflect.Type, a *Schema for explicit control, or nil for a content type
// with no schema.
//
// See: https://spec.openapis.org/oas/v3.1.0#request-body-object
func (b *OperationBuilder) RequestContent(contentType string, body any) *OperationBuilder {
	b.meta.requestContents[contentType] = body
	return b
}

// RequestDescription sets the description for the request body.
//
// See: https://spec.openapis.org/oas/v3.1.0#request-body-object (description)
func (b *OperationBuilder) RequestDescription(desc string) *OperationBuilder {
	b.meta.requestDescription = desc
	return b
}

// RequestRequired states whether the request body is required. When it is
// never called the field is left out of the document.
//
// See: https://spec.openapis.org/oas/v3.1.0#request-body-object (required)
func (b *OperationBuilder) RequestRequired(required bool) *OperationBuilder {
	b.meta.requestRequired = &required
	return b
}

// Response registers an application/json response type for the given HTTP
// status code. Pass nil body for responses with no content (e.g., 204).
//
// See: https://spec.openapis.org/oas/v3.1.0#responses-object
func (b *OperationBuilder) Response(statusCode int, body any) *OperationBuilder {
	b.setResponse(strconv.Itoa(statusCode), body)
	return b
}

// ResponseContent registers a response with the given status code and
// content type.
//
// See: https://spec.openapis.org/oas/v3.1.0#response-object
func (b *OperationBuilder) ResponseContent(statusCode int, contentType string, body any) *OperationBuilder {
	key := strconv.Itoa(statusCode)
	if b.meta.responseContents[key] == nil {
		b.meta.responseContents[key] = make(map[string]any)
	}
	b.meta.responseContents[key][contentType] = body
	return b
}

// DefaultResponse registers an application/json response for the "default"
// status key. Pass nil body for a default response with no content.
//
// See: https://spec.openapis.org/oas/v3.1.0#responses-object (default)
func (b *OperationBuilder) DefaultResponse(body any) *OperationBuilder {
	b.setResponse("default", body)
	return b
}

func (b *OperationBuilder) setResponse(key string, body any) {
	if body == nil {
		b.meta.responseContents[key] = nil
		return
	}
	if b.meta.responseContents[key] == nil {
		b.meta.responseContents[key] = make(map[string]any)
	}
	b.meta.responseContents[key]["application/json"] = body
}

// ResponseHeader adds a header to the response for the given HTTP status code.
//
// See: https://spec.openapis.org/oas/v3.1.0#response-object (headers)
func (b *OperationBuilder) ResponseHeader(statusCode int, name string, h *Header) *OperationBuilder {
	key := strconv.Itoa(statusCode)
	if b.meta.responseHeaders == nil {
		b.meta.responseHeaders = make(map[string]map[string]*Header)
	}
	if b.meta.responseHeaders[key] == nil {
		b.meta.responseHeaders[key] = make(map[string]*Header)
	}
	b.meta.responseHeaders[key][name] = h
	return b
}

// ResponseDescription overrides the auto-generated description for a response.
// By default, descriptions are derived from HTTP status text (e.g., "OK", "Not Found").
//
// See: https://spec.openapis.org/oas/v3.1.0#response-object (description)
func (b *OperationBuilder) ResponseDescription(statusCode int, desc string) *OperationBuilder {
	if b.meta.responseDescriptions == nil {
		b.meta.responseDescriptions = make(map[string]string)
	}
	b.meta.responseDescriptions[strconv.Itoa(statusCode)] = desc
	return b
}

// Security adds a security requirement naming a scheme declared with
// Spec.AddSecurityScheme. Scopes are only meaningful for OAuth2 and
// OpenID Connect.
//
// See: https://spec.openapis.org/oas/v3.1.0#security-requirement-object
func (b *OperationBuilder) Security(key string, scopes ...string) *OperationBuilder {
	b.meta.security = append(b.meta.security, securityRequirement(key, scopes))
	return b
}

// NoSecurity marks the operation as public, overriding document-level
// security.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object (security)
func (b *OperationBuilder) NoSecurity() *OperationBuilder {
	b.meta.security = []SecurityRequirement{}
	return b
}

// ExternalDocs sets external documentation for the operation.
//
// See: https://spec.openapis.org/oas/v3.1.0#external-documentation-object
func (b *OperationBuilder) ExternalDocs(url, description string) *OperationBuilder {
	b.meta.externalDocs = &ExternalDocs{URL: url, Description: description}
	return b
}

// responseDescription returns a human-readable description for a response key.
//
// See: https://spec.openapis.org/oas/v3.1.0#response-object (description)
func responseDescription(key string) string {
	if key == "default" {
		return "Default response"
	}
	code, err := strconv.Atoi(key)
	if err == nil {
		if text := http.StatusText(code); text != "" {
			return text
		}
	}
	return key
}

// buildOperation converts the collected metadata into a fresh Operation
// Object. Schemas are resolved through reg. The builder is left untouched,
// so the same builder can be built any number of times.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object
func (b *OperationBuilder) buildOperation(reg *Registry) (*Operation, error) {
	op := &Operation{
		OperationID:  b.meta.operationID,
		Summary:      b.meta.summary,
		Description:  b.meta.description,
		Tags:         slices.Clone(b.meta.tags),
		Deprecated:   b.meta.deprecated,
		Security:     cloneSecurity(b.meta.security),
		ExternalDocs: b.meta.externalDocs,
	}

	for _, ps := range b.meta.parameters {
		p := ps.param
		if ps.schema != nil {
			schema, err := reg.Resolve(ps.schema)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
			}
			p.Schema = schema
		}
		op.Parameters = append(op.Parameters, &p)
	}

	if len(b.meta.requestContents) > 0 {
		op.RequestBody = &RequestBody{
			Description: b.meta.requestDescription,
			Required:    b.meta.requestRequired,
			Content:     make(map[string]*MediaType, len(b.meta.requestContents)),
		}
		for ct, body := range b.meta.requestContents {
			schema, err := reg.Resolve(body)
			if err != nil {
				return nil, fmt.Errorf("request body %s: %w", ct, err)
			}
			op.RequestBody.Content[ct] = &MediaType{Schema: schema}
		}
	}

	if len(b.meta.responseContents) > 0 {
		op.Responses = make(map[string]*Response, len(b.meta.responseContents))
		for key, contents := range b.meta.responseContents {
			desc := responseDescription(key)
			if custom, ok := b.meta.responseDescriptions[key]; ok {
				desc = custom
			}
			resp := &Response{Description: desc}
			if len(contents) > 0 {
				resp.Content = make(map[string]*MediaType, len(contents))
				for ct, body := range contents {
					schema, err := reg.Resolve(body)
					if err != nil {
						return nil, fmt.Errorf("response %s %s: %w", key, ct, err)
					}
					resp.Content[ct] = &MediaType{Schema: schema}
				}
			}
			if headers := b.meta.responseHeaders[key]; len(headers) > 0 {
				resp.Headers = maps.Clone(headers)
			}
			op.Responses[key] = resp
		}
	}

	return op, nil
}

func securityRequirement(key string, scopes []string) SecurityRequirement {
	if scopes == nil {
		scopes = []string{}
	}
	return SecurityRequirement{key: scopes}
}

func cloneSecurity(reqs []SecurityRequirement) []SecurityRequirement {
	if reqs == nil {
		return nil
	}
	out := make([]SecurityRequirement, len(reqs))
	for i, req := range reqs {
		out[i] = maps.Clone(req)
	}
	return out
}
