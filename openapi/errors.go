package openapi

import "errors"

var (
	// ErrNoMethod is returned when an annotated route has no method
	// selector between it and the root.
	ErrNoMethod = errors.New("openapi: route has no method selector")

	// ErrMultipleMethods is returned when more than one method selector
	// sits on the path from an annotated route to the root.
	ErrMultipleMethods = errors.New("openapi: route has more than one method selector")

	// ErrUnsupportedType is returned when a Go type has no JSON Schema
	// representation (channels, functions, complex numbers).
	ErrUnsupportedType = errors.New("openapi: unsupported type")

	// ErrAssembled is returned when a finished document is mutated.
	ErrAssembled = errors.New("openapi: document already assembled")

	// ErrUnknownFormat is returned for an export format other than JSON or YAML.
	ErrUnknownFormat = errors.New("openapi: unknown export format")

	// ErrInvalidDocument is returned when validation reports errors.
	ErrInvalidDocument = errors.New("openapi: invalid document")
)
