package openapi

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Exampler can be implemented by types to provide an example value
// for the generated JSON Schema. The returned value is set as the "example"
// field on the component schema.
//
//	func (u User) OpenAPIExample() any {
//	    return User{ID: "550e8400-e29b-41d4-a716-446655440000", Name: "Alice"}
//	}
//
// See: https://json-schema.org/draft/2020-12/json-schema-validation#section-9.5
type Exampler interface {
	OpenAPIExample() any
}

// Resolver turns a Go type into a JSON Schema.
type Resolver interface {
	Resolve(t reflect.Type) (*Resolved, error)
}

// Resolved is the result of resolving one type.
type Resolved struct {
	// Schema is the full schema of the resolved type. Named struct types
	// reachable from it are referenced with $ref.
	Schema *Schema

	// Name is the component name of the resolved type itself, or empty
	// when the type is not a named struct.
	Name string

	// Referenced holds every named struct type reachable from the resolved
	// type, including the type itself, keyed by component name.
	Referenced map[string]*Schema
}

// ReflectResolver resolves types with reflection, honouring `json` and
// `openapi` struct tags and the Exampler interface.
//
// See: https://spec.openapis.org/oas/v3.1.0#schema-object
type ReflectResolver struct{}

var (
	timeType          = reflect.TypeFor[time.Time]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// Resolve implements Resolver. Channels, functions and complex numbers
// return ErrUnsupportedType; struct fields of those kinds are skipped.
func (ReflectResolver) Resolve(t reflect.Type) (*Resolved, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrUnsupportedType)
	}

	w := &typeWalker{
		visited:    make(map[reflect.Type]bool),
		referenced: make(map[string]*Schema),
	}

	out := &Resolved{}
	if isComponent(t) {
		out.Name = schemaName(t)
		w.typeSchema(t)
		out.Schema = w.referenced[out.Name]
	} else {
		out.Schema = w.typeSchema(t)
	}

	if out.Schema == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	if len(w.referenced) > 0 {
		out.Referenced = w.referenced
	}
	return out, nil
}

// isComponent reports whether t is emitted as a named component schema.
func isComponent(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t != timeType && schemaName(t) != "" && !isTextual(t)
}

// isTextual reports whether t marshals itself as a JSON string.
func isTextual(t reflect.Type) bool {
	return t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)
}

// typeWalker carries the state of a single Resolve call.
type typeWalker struct {
	visited    map[reflect.Type]bool
	referenced map[string]*Schema
}

// typeSchema produces a Schema for the given Go type, using $ref for named
// struct types and inline schemas for primitives, slices, maps, and
// anonymous structs.
//
// See: https://spec.openapis.org/oas/v3.1.0#schema-object
// See: https://json-schema.org/draft/2020-12/json-schema-core#section-8.2.3 ($ref)
func (w *typeWalker) typeSchema(t reflect.Type) *Schema {
	// Unwrap pointer and mark nullable.
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}

	if isComponent(t) {
		name := schemaName(t)
		if !w.visited[t] {
			w.visited[t] = true
			schema := w.structSchema(t)

			if ex, ok := reflect.New(t).Interface().(Exampler); ok {
				schema.Example = ex.OpenAPIExample()
			}

			w.referenced[name] = schema
		}

		ref := refSchema(name)
		if nullable {
			return &Schema{
				AnyOf: []*Schema{
					ref,
					{Type: TypeString("null")},
				},
			}
		}
		return ref
	}

	schema := w.inlineSchema(t)
	if nullable && schema != nil {
		applyNullable(schema)
	}
	return schema
}

// inlineSchema maps Go primitive and composite types to JSON Schema types.
//
// See: https://spec.openapis.org/oas/v3.1.0#data-types
// See: https://json-schema.org/draft/2020-12/json-schema-validation#section-6.1.1
func (w *typeWalker) inlineSchema(t reflect.Type) *Schema {
	if t == timeType {
		return &Schema{Type: TypeString("string"), Format: "date-time"}
	}
	if t.Kind() != reflect.Interface && isTextual(t) {
		return &Schema{Type: TypeString("string")}
	}

	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: TypeString("boolean")}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Schema{Type: TypeString("integer")}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: TypeString("integer")}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: TypeString("number")}

	case reflect.String:
		return &Schema{Type: TypeString("string")}

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: TypeString("string"), Format: "byte"}
		}
		return w.arraySchema(t.Elem())

	case reflect.Array:
		return w.arraySchema(t.Elem())

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return &Schema{Type: TypeString("object")}
		}
		values := w.typeSchema(t.Elem())
		if values == nil {
			return nil
		}
		return &Schema{
			Type:                 TypeString("object"),
			AdditionalProperties: values,
		}

	case reflect.Struct:
		return w.structSchema(t)

	case reflect.Interface:
		return &Schema{}
	}

	return nil
}

func (w *typeWalker) arraySchema(elem reflect.Type) *Schema {
	items := w.typeSchema(elem)
	if items == nil {
		return nil
	}
	return &Schema{Type: TypeString("array"), Items: items}
}

// structSchema builds an object schema from struct fields.
//
// See: https://json-schema.org/draft/2020-12/json-schema-core#section-10.3.2 (properties)
// See: https://json-schema.org/draft/2020-12/json-schema-validation#section-6.5.3 (required)
func (w *typeWalker) structSchema(t reflect.Type) *Schema {
	schema := &Schema{
		Type:       TypeString("object"),
		Properties: make(map[string]*Schema),
	}

	w.collectFields(t, schema, false)

	if len(schema.Properties) == 0 {
		schema.Properties = nil
	}

	return schema
}

// collectFields recursively collects struct fields into the schema.
// When allOptional is true, all fields are treated as optional regardless
// of their json tags. This is used for pointer-embedded structs where the
// entire embedded struct can be nil and thus all its fields may be absent.
func (w *typeWalker) collectFields(t reflect.Type, schema *Schema, allOptional bool) {
	for i := range t.NumField() {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		// Embedded structs are inlined only without an explicit json name,
		// the same way encoding/json treats them.
		if field.Anonymous {
			jsonName, _ := parseJSONTag(field.Tag.Get("json"))
			if jsonName == "" {
				ft := field.Type
				isPtr := ft.Kind() == reflect.Pointer
				if isPtr {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					w.collectFields(ft, schema, allOptional || isPtr)
					continue
				}
			}
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name, opts := parseJSONTag(jsonTag)
		if name == "" {
			name = field.Name
		}

		fieldSchema := w.typeSchema(field.Type)
		if fieldSchema == nil {
			continue
		}

		applyOpenAPITag(fieldSchema, field.Tag.Get("openapi"))

		// The ",string" option encodes numbers and booleans as JSON strings.
		if opts.stringEncode && fieldSchema.Ref == "" && len(fieldSchema.AnyOf) == 0 {
			applyStringEncoding(fieldSchema)
		}

		schema.Properties[name] = fieldSchema

		if !opts.omitempty && !allOptional {
			schema.Required = append(schema.Required, name)
		}
	}
}

type jsonTagOpts struct {
	omitempty    bool
	stringEncode bool
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	if tag == "" {
		return "", jsonTagOpts{}
	}
	name, rest, _ := strings.Cut(tag, ",")
	return name, jsonTagOpts{
		omitempty:    strings.Contains(rest, "omitempty") || strings.Contains(rest, "omitzero"),
		stringEncode: strings.Contains(rest, "string"),
	}
}

// applyOpenAPITag parses the `openapi` struct tag and applies constraints to the schema.
//
// See: https://json-schema.org/draft/2020-12/json-schema-validation
func applyOpenAPITag(schema *Schema, tag string) {
	if tag == "" {
		return
	}

	for part := range strings.SplitSeq(tag, ",") {
		key, value, hasValue := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if hasValue {
			value = strings.TrimSpace(value)
		}

		switch key {
		case "description":
			schema.Description = value
		case "example":
			schema.Example = parseExampleValue(schema, value)
		case "format":
			schema.Format = value
		case "minimum":
			schema.Minimum = parseFloat(value)
		case "maximum":
			schema.Maximum = parseFloat(value)
		case "exclusiveMinimum":
			schema.ExclusiveMinimum = parseFloat(value)
		case "exclusiveMaximum":
			schema.ExclusiveMaximum = parseFloat(value)
		case "multipleOf":
			schema.MultipleOf = parseFloat(value)
		case "minLength":
			schema.MinLength = parseInt(value)
		case "maxLength":
			schema.MaxLength = parseInt(value)
		case "minItems":
			schema.MinItems = parseInt(value)
		case "maxItems":
			schema.MaxItems = parseInt(value)
		case "pattern":
			schema.Pattern = value
		case "enum":
			values := strings.Split(value, "|")
			schema.Enum = make([]any, len(values))
			for i, v := range values {
				schema.Enum[i] = parseExampleValue(schema, v)
			}
		case "deprecated":
			schema.Deprecated = true
		case "readOnly":
			schema.ReadOnly = true
		case "writeOnly":
			schema.WriteOnly = true
		case "uniqueItems":
			schema.UniqueItems = true
		case "title":
			schema.Title = value
		}
	}
}

func parseFloat(value string) *float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(value string) *int {
	v, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &v
}

// parseExampleValue converts a string tag value to the appropriate Go type
// based on the schema's type field.
func parseExampleValue(schema *Schema, value string) any {
	types := schema.Type.Values()
	if len(types) == 0 {
		return value
	}

	switch types[0] {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}

// schemaName returns the short component name for t. Generic type names
// like "Page[User]" become "PageUser", and "Page[[]User]" becomes
// "PageUserList". Unnamed types return "".
//
// See: https://spec.openapis.org/oas/v3.1.0#components-object (schemas)
func schemaName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return ""
	}
	name := t.Name()
	idx := strings.IndexByte(name, '[')
	if idx < 0 {
		return name
	}

	base := name[:idx]
	inner := name[idx+1 : len(name)-1]

	isList := strings.HasPrefix(inner, "[]")
	inner = strings.TrimPrefix(inner, "[]")

	if dot := strings.LastIndexByte(inner, '.'); dot >= 0 {
		inner = inner[dot+1:]
	}

	result := base + inner
	if isList {
		result += "List"
	}
	return result
}

// refSchema returns a reference to the named component schema.
func refSchema(name string) *Schema {
	return &Schema{Ref: "#/components/schemas/" + name}
}

// applyNullable modifies a schema to allow null values by converting
// the type to an array (e.g., "string" becomes ["string", "null"]).
//
// See: https://json-schema.org/draft/2020-12/json-schema-validation#section-6.1.1
func applyNullable(schema *Schema) {
	if schema.Ref != "" {
		return
	}
	types := schema.Type.Values()
	if len(types) > 0 {
		schema.Type = TypeArray(append(types, "null")...)
	}
}

// applyStringEncoding overrides the schema type to "string" to match the
// ",string" json tag option. Nullable types keep the "null" variant.
func applyStringEncoding(schema *Schema) {
	types := schema.Type.Values()
	if len(types) == 0 {
		return
	}
	for _, t := range types {
		if t == "null" {
			schema.Type = TypeArray("string", "null")
			return
		}
	}
	schema.Type = TypeString("string")
}
