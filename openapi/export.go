package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a serialization format for documents.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultOutput is where Export writes when no path is given.
const DefaultOutput = "openapi/documentation.yaml"

// FormatFromPath picks the format from a file extension: ".yaml" and
// ".yml" select YAML, anything else JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat converts a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Marshal serializes doc. JSON output is indented with two spaces. YAML
// output keeps the field order of the JSON encoding.
func Marshal(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return marshalYAML(doc)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// marshalYAML goes through the JSON encoding so that the json tags and
// custom marshalers on the document types drive the YAML field names.
func marshalYAML(doc *Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("convert to yaml: %w", err)
	}
	resetStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// resetStyle drops the flow and quoting styles inherited from JSON so the
// output reads as block YAML. Strings that would otherwise be read back as
// another type keep their quotes.
func resetStyle(node *yaml.Node) {
	switch node.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		node.Style = 0
	case yaml.ScalarNode:
		if node.Tag == "!!str" && !ambiguousScalar(node.Value) {
			node.Style = 0
		}
	}
	for _, child := range node.Content {
		resetStyle(child)
	}
}

// ambiguousScalar reports whether a plain YAML scalar with this value
// would not resolve back to the same string.
func ambiguousScalar(value string) bool {
	var probe yaml.Node
	if err := yaml.Unmarshal([]byte(value), &probe); err != nil {
		return true
	}
	if len(probe.Content) != 1 {
		return true
	}
	n := probe.Content[0]
	return n.Kind != yaml.ScalarNode || n.Tag != "!!str" || n.Value != value
}

// Export serializes doc and writes it to path, creating parent
// directories. An empty path writes DefaultOutput. The format follows the
// file extension.
func Export(doc *Document, path string) error {
	if path == "" {
		path = DefaultOutput
	}
	return ExportFormat(doc, path, FormatFromPath(path))
}

// ExportFormat is Export with an explicit format.
func ExportFormat(doc *Document, path string, format Format) error {
	if path == "" {
		path = DefaultOutput
	}

	data, err := Marshal(doc, format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
