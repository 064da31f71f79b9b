package openapi

import (
	"fmt"
	"strings"

	"github.com/erraggy/oastools/parser"
	"github.com/erraggy/oastools/validator"
)

// ValidationReport lists the problems found in a serialized document.
type ValidationReport struct {
	Version  string
	Errors   []string
	Warnings []string
}

// Valid reports whether no errors were found. Warnings are allowed.
func (r *ValidationReport) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns ErrInvalidDocument wrapped with the first errors, or nil.
func (r *ValidationReport) Err() error {
	if r.Valid() {
		return nil
	}
	const limit = 5
	shown := r.Errors
	if len(shown) > limit {
		shown = shown[:limit]
	}
	return fmt.Errorf("%w: %d errors: %s", ErrInvalidDocument, len(r.Errors), strings.Join(shown, "; "))
}

// ValidateBytes parses and validates a serialized JSON or YAML document.
func ValidateBytes(data []byte) (*ValidationReport, error) {
	parsed, err := parser.ParseWithOptions(parser.WithBytes(data))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	res, err := validator.ValidateWithOptions(validator.WithParsed(*parsed))
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}

	report := &ValidationReport{Version: res.Version}
	for _, e := range res.Errors {
		report.Errors = append(report.Errors, e.String())
	}
	for _, w := range res.Warnings {
		report.Warnings = append(report.Warnings, w.String())
	}
	return report, nil
}

// Validate serializes doc and validates the result.
func Validate(doc *Document) (*ValidationReport, error) {
	data, err := Marshal(doc, FormatJSON)
	if err != nil {
		return nil, err
	}
	return ValidateBytes(data)
}
