package openapi

import (
	"maps"
	"reflect"
	"slices"

	"github.com/rs/zerolog"
)

// Registry collects named component schemas for one document build. A type
// reachable from several operations is stored once and referenced with
// $ref everywhere else.
//
// Names are short type names. When two distinct types share a short name
// the later one overwrites the earlier and a warning is logged.
//
// See: https://spec.openapis.org/oas/v3.1.0#components-object (schemas)
type Registry struct {
	resolver Resolver
	schemas  map[string]*Schema
	logger   zerolog.Logger
}

// NewRegistry returns an empty registry backed by resolver. A nil resolver
// falls back to ReflectResolver.
func NewRegistry(resolver Resolver) *Registry {
	if resolver == nil {
		resolver = ReflectResolver{}
	}
	return &Registry{
		resolver: resolver,
		schemas:  make(map[string]*Schema),
		logger:   zerolog.Nop(),
	}
}

// WithLogger sets the logger used to report name collisions.
func (r *Registry) WithLogger(logger zerolog.Logger) *Registry {
	r.logger = logger
	return r
}

// Resolve returns the schema to embed for v.
//
// v may be a *Schema, which is returned untouched, a reflect.Type, or any
// Go value whose dynamic type is resolved. Named struct types are
// registered together with everything they reference and come back as a
// $ref; other types come back inline after their referenced types have
// been registered. A nil v resolves to a nil schema.
func (r *Registry) Resolve(v any) (*Schema, error) {
	var t reflect.Type
	switch val := v.(type) {
	case nil:
		return nil, nil
	case *Schema:
		return val, nil
	case reflect.Type:
		t = val
	default:
		t = reflect.TypeOf(v)
	}

	resolved, err := r.resolver.Resolve(t)
	if err != nil {
		return nil, err
	}

	for _, name := range slices.Sorted(maps.Keys(resolved.Referenced)) {
		r.register(name, resolved.Referenced[name])
	}

	if resolved.Name != "" {
		return refSchema(resolved.Name), nil
	}
	return resolved.Schema, nil
}

func (r *Registry) register(name string, schema *Schema) {
	if prev, ok := r.schemas[name]; ok && !reflect.DeepEqual(prev, schema) {
		r.logger.Warn().
			Str("schema", name).
			Msg("component schema name registered by more than one type, keeping the last")
	}
	r.schemas[name] = schema
}

// Schemas returns a copy of the registered component schemas.
func (r *Registry) Schemas() map[string]*Schema {
	return maps.Clone(r.schemas)
}

// Len returns the number of registered component schemas.
func (r *Registry) Len() int {
	return len(r.schemas)
}
