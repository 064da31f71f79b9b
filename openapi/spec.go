package openapi

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vitalvas/routedoc/mux"
)

type securitySchemeEntry struct {
	key    string
	scheme *SecurityScheme
}

// Spec collects document configuration and per-route annotations and
// builds complete Documents from a route tree.
//
// Annotations live in a side-table keyed by route node; the tree itself
// carries no documentation state.
type Spec struct {
	info            Info
	servers         []Server
	tags            []Tag
	security        []SecurityRequirement
	securitySchemes []securitySchemeEntry
	externalDocs    *ExternalDocs

	routeOps         map[*mux.Route]*OperationBuilder
	resolver         Resolver
	logger           zerolog.Logger
	autoOperationIDs bool
}

// NewSpec creates a new spec builder with the given API info.
func NewSpec(info Info) *Spec {
	return &Spec{
		info:     info,
		routeOps: make(map[*mux.Route]*OperationBuilder),
		resolver: ReflectResolver{},
		logger:   zerolog.Nop(),
	}
}

// Info returns the API info the spec was created with.
func (s *Spec) Info() Info {
	return s.info
}

// AddServer adds a server to the document.
func (s *Spec) AddServer(server Server) *Spec {
	s.servers = append(s.servers, server)
	return s
}

// AddTag declares a tag. Declared tags are listed first, in declaration
// order.
func (s *Spec) AddTag(tag Tag) *Spec {
	s.tags = append(s.tags, tag)
	return s
}

// AddSecurityScheme registers a reusable security scheme in components.
// Registering the same key again replaces the scheme.
func (s *Spec) AddSecurityScheme(key string, scheme *SecurityScheme) *Spec {
	s.securitySchemes = append(s.securitySchemes, securitySchemeEntry{key: key, scheme: scheme})
	return s
}

// AddSecurity adds a document-level security requirement.
//
// See: https://spec.openapis.org/oas/v3.1.0#security-requirement-object
func (s *Spec) AddSecurity(key string, scopes ...string) *Spec {
	s.security = append(s.security, securityRequirement(key, scopes))
	return s
}

// SetExternalDocs sets the document-level external documentation link.
func (s *Spec) SetExternalDocs(url, description string) *Spec {
	s.externalDocs = &ExternalDocs{URL: url, Description: description}
	return s
}

// SetLogger sets the logger used for collision warnings and build
// summaries. The default discards everything.
func (s *Spec) SetLogger(logger zerolog.Logger) *Spec {
	s.logger = logger
	return s
}

// SetResolver replaces the type resolver. A nil resolver restores
// ReflectResolver.
func (s *Spec) SetResolver(resolver Resolver) *Spec {
	if resolver == nil {
		resolver = ReflectResolver{}
	}
	s.resolver = resolver
	return s
}

// AutoOperationIDs fills empty operation IDs with a name derived from the
// method and path, e.g. "getItemsById" for GET /items/{id}.
func (s *Spec) AutoOperationIDs() *Spec {
	s.autoOperationIDs = true
	return s
}

// Group creates a RouteGroup whose operations start from shared defaults.
func (s *Spec) Group() *RouteGroup {
	return &RouteGroup{spec: s}
}

// Route attaches a new OperationBuilder to a route node and returns it.
// The node is normally the method node returned by the verb helpers.
// Attaching to the same node again replaces the earlier builder.
func (s *Spec) Route(route *mux.Route) *OperationBuilder {
	b := newOperationBuilder()
	s.routeOps[route] = b
	return b
}

// Build walks the router in pre-order and assembles a complete Document
// from every annotated node. Each call starts from a fresh schema registry,
// so repeated builds produce equal documents.
func (s *Spec) Build(r *mux.Router) (*Document, error) {
	reg := NewRegistry(s.resolver).WithLogger(s.logger)
	a := newAssembler(s.info, reg, s.logger)

	if err := s.configure(a); err != nil {
		return nil, err
	}

	err := r.Walk(func(route *mux.Route, _ []*mux.Route) error {
		builder, ok := s.routeOps[route]
		if !ok {
			return nil
		}

		info, err := AnalyzeRoute(route)
		if err != nil {
			return err
		}

		op, err := builder.buildOperation(reg)
		if err != nil {
			return fmt.Errorf("%s %s: %w", info.Method, info.Path, err)
		}

		if s.autoOperationIDs && op.OperationID == "" {
			op.OperationID = operationID(info)
		}

		op.Parameters, err = reconcileParameters(op.Parameters, info.Params(), reg)
		if err != nil {
			return fmt.Errorf("%s %s: %w", info.Method, info.Path, err)
		}

		return a.addOperation(info.Path, info.Method, op)
	})
	if err != nil {
		return nil, err
	}

	doc, err := a.finish()
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("paths", len(doc.Paths)).
		Int("operations", doc.OperationCount()).
		Int("schemas", reg.Len()).
		Msg("openapi document built")

	return doc, nil
}

// configure applies the document-level configuration to a.
func (s *Spec) configure(a *assembler) error {
	for _, server := range s.servers {
		if err := a.addServer(server); err != nil {
			return err
		}
	}
	for _, tag := range s.tags {
		if err := a.addTag(tag); err != nil {
			return err
		}
	}
	for _, entry := range s.securitySchemes {
		if err := a.addSecurityScheme(entry.key, entry.scheme); err != nil {
			return err
		}
	}
	for _, req := range s.security {
		if err := a.addSecurity(req); err != nil {
			return err
		}
	}
	if s.externalDocs != nil {
		if err := a.setExternalDocs(s.externalDocs); err != nil {
			return err
		}
	}
	return nil
}
