package openapi

import "reflect"

var stringType = reflect.TypeFor[string]()

// reconcileParameters merges parameters inferred from the route tree into
// the explicitly configured ones. Explicit values always win: an existing
// parameter only gets fields it left unset.
//
// Existing parameters are matched by name alone, first match wins, so an
// explicit header parameter named like a path parameter absorbs it.
func reconcileParameters(params []*Parameter, inferred []InferredParam, reg *Registry) ([]*Parameter, error) {
	for _, inf := range inferred {
		existing := findParameter(params, inf.Name)

		if existing == nil {
			schema, err := reg.Resolve(stringType)
			if err != nil {
				return nil, err
			}
			p := &Parameter{
				Name:   inf.Name,
				In:     inf.In,
				Schema: schema,
			}
			if inf.Required {
				p.Required = boolPtr(true)
			}
			params = append(params, p)
			continue
		}

		if existing.Required == nil && inf.Required {
			existing.Required = boolPtr(true)
		}
		if existing.In == "" {
			existing.In = inf.In
		}
		if existing.Schema == nil && len(existing.Content) == 0 {
			schema, err := reg.Resolve(stringType)
			if err != nil {
				return nil, err
			}
			existing.Schema = schema
		}
	}
	return params, nil
}

func findParameter(params []*Parameter, name string) *Parameter {
	for _, p := range params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func boolPtr(v bool) *bool {
	return &v
}
