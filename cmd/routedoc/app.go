package main

import (
	"fmt"
	"time"

	"github.com/vitalvas/routedoc/internal/example"
	"github.com/vitalvas/routedoc/mux"
	"github.com/vitalvas/routedoc/openapi"
)

// newApplication returns the example router and its document
// configuration built from the loaded settings.
func (a *app) newApplication() (*mux.Router, *openapi.Spec, error) {
	r := mux.NewRouter()
	spec := openapi.NewSpec(a.cfg.Document.Info()).SetLogger(a.logger)
	if err := a.cfg.Document.Apply(spec); err != nil {
		return nil, nil, fmt.Errorf("apply document config: %w", err)
	}

	example.Register(r, spec, nil)
	return r, spec, nil
}

// buildDocument builds the document of a fresh application.
func (a *app) buildDocument() (*openapi.Document, error) {
	r, spec, err := a.newApplication()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	doc, err := spec.Build(r)
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}

	a.logger.Debug().
		Int("paths", len(doc.Paths)).
		Int("operations", doc.OperationCount()).
		Dur("duration", time.Since(start)).
		Msg("document built")

	return doc, nil
}
