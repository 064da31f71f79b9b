package openapi

import (
	"net/http"
	"slices"

	"github.com/rs/zerolog"
)

// Version is the OpenAPI version written into generated documents.
const Version = "3.1.0"

type assemblerState int

const (
	stateConfiguring assemblerState = iota
	stateAssembled
)

// assembler accumulates one document. It is created per Build and accepts
// changes only until finish is called.
type assembler struct {
	state    assemblerState
	doc      *Document
	schemes  map[string]*SecurityScheme
	registry *Registry
	logger   zerolog.Logger
}

func newAssembler(info Info, reg *Registry, logger zerolog.Logger) *assembler {
	return &assembler{
		doc: &Document{
			OpenAPI: Version,
			Info:    info,
			Paths:   make(map[string]*PathItem),
		},
		registry: reg,
		logger:   logger,
	}
}

func (a *assembler) check() error {
	if a.state == stateAssembled {
		return ErrAssembled
	}
	return nil
}

func (a *assembler) addServer(server Server) error {
	if err := a.check(); err != nil {
		return err
	}
	a.doc.Servers = append(a.doc.Servers, server)
	return nil
}

func (a *assembler) addTag(tag Tag) error {
	if err := a.check(); err != nil {
		return err
	}
	a.doc.Tags = append(a.doc.Tags, tag)
	return nil
}

func (a *assembler) addSecurity(req SecurityRequirement) error {
	if err := a.check(); err != nil {
		return err
	}
	a.doc.Security = append(a.doc.Security, req)
	return nil
}

func (a *assembler) addSecurityScheme(key string, scheme *SecurityScheme) error {
	if err := a.check(); err != nil {
		return err
	}
	if a.schemes == nil {
		a.schemes = make(map[string]*SecurityScheme)
	}
	a.schemes[key] = scheme
	return nil
}

func (a *assembler) setExternalDocs(docs *ExternalDocs) error {
	if err := a.check(); err != nil {
		return err
	}
	a.doc.ExternalDocs = docs
	return nil
}

// addOperation stores op under path and method. A second operation for the
// same pair replaces the first.
func (a *assembler) addOperation(path, method string, op *Operation) error {
	if err := a.check(); err != nil {
		return err
	}

	item, ok := a.doc.Paths[path]
	if !ok {
		item = &PathItem{}
		a.doc.Paths[path] = item
	}

	slot := operationSlot(item, method)
	if slot == nil {
		a.logger.Warn().
			Str("path", path).
			Str("method", method).
			Msg("method has no OpenAPI path item field, operation skipped")
		if !ok {
			delete(a.doc.Paths, path)
		}
		return nil
	}

	if *slot != nil {
		a.logger.Warn().
			Str("path", path).
			Str("method", method).
			Msg("duplicate operation, keeping the last registered route")
	}
	*slot = op
	return nil
}

// finish collects components and tags and freezes the document.
func (a *assembler) finish() (*Document, error) {
	if err := a.check(); err != nil {
		return nil, err
	}

	schemas := a.registry.Schemas()
	if len(schemas) > 0 || len(a.schemes) > 0 {
		a.doc.Components = &Components{}
		if len(schemas) > 0 {
			a.doc.Components.Schemas = schemas
		}
		if len(a.schemes) > 0 {
			a.doc.Components.SecuritySchemes = a.schemes
		}
	}

	a.doc.Tags = a.mergeTags()
	a.state = stateAssembled
	return a.doc, nil
}

// mergeTags keeps the declared tags in declaration order and appends the
// tags that operations use without declaring them, sorted by name.
func (a *assembler) mergeTags() []Tag {
	declared := make(map[string]bool, len(a.doc.Tags))
	for _, tag := range a.doc.Tags {
		declared[tag.Name] = true
	}

	var extra []string
	seen := make(map[string]bool)
	for _, item := range a.doc.Paths {
		for _, op := range item.operations() {
			for _, name := range op.Tags {
				if declared[name] || seen[name] {
					continue
				}
				seen[name] = true
				extra = append(extra, name)
			}
		}
	}
	slices.Sort(extra)

	tags := a.doc.Tags
	for _, name := range extra {
		tags = append(tags, Tag{Name: name})
	}
	return tags
}

// operationSlot returns the path item field for method, or nil when the
// method has no field.
func operationSlot(item *PathItem, method string) **Operation {
	switch method {
	case http.MethodGet:
		return &item.Get
	case http.MethodPost:
		return &item.Post
	case http.MethodPut:
		return &item.Put
	case http.MethodDelete:
		return &item.Delete
	case http.MethodPatch:
		return &item.Patch
	case http.MethodHead:
		return &item.Head
	case http.MethodOptions:
		return &item.Options
	case http.MethodTrace:
		return &item.Trace
	}
	return nil
}

// operations returns the non-nil operations of the path item in a fixed
// method order.
func (p *PathItem) operations() []*Operation {
	var ops []*Operation
	for _, op := range []*Operation{p.Get, p.Put, p.Post, p.Delete, p.Options, p.Head, p.Patch, p.Trace} {
		if op != nil {
			ops = append(ops, op)
		}
	}
	return ops
}

// OperationCount returns the number of operations across all paths.
func (d *Document) OperationCount() int {
	n := 0
	for _, item := range d.Paths {
		n += len(item.operations())
	}
	return n
}

// Operation returns the operation for path and method, or nil.
func (d *Document) Operation(path, method string) *Operation {
	item, ok := d.Paths[path]
	if !ok {
		return nil
	}
	if slot := operationSlot(item, method); slot != nil {
		return *slot
	}
	return nil
}
