package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk representation of a configuration schema:
//
//	{
//	  "title": "Gerbera",
//	  "definitions": {"port": {"kind": "field", "type": "integer"}},
//	  "config": [{"key": "server", "children": [...]}]
//	}
type Document struct {
	Title       string          `json:"title,omitempty" yaml:"title,omitempty"`
	Definitions map[string]Node `json:"definitions,omitempty" yaml:"definitions,omitempty"`
	Config      []Node          `json:"config" yaml:"config"`
}

// ParseDocument decodes JSON or YAML schema payloads. The source string only
// decorates error messages.
func ParseDocument(data []byte, source string) (Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, fmt.Errorf("schema: document %s is empty", sourceLabel(source))
	}

	var doc Document
	jsonErr := json.Unmarshal(data, &doc)
	if jsonErr == nil {
		return doc, nil
	}

	doc = Document{}
	if yamlErr := yaml.Unmarshal(data, &doc); yamlErr == nil {
		return doc, nil
	}

	return Document{}, fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", sourceLabel(source), jsonErr)
}

// Schema returns the document as a rooted schema. The root group takes the
// document title as its label.
func (d Document) Schema() Schema {
	return Schema{
		Root: Node{
			Kind:     KindGroup,
			Label:    d.Title,
			Children: d.Config,
		},
		Definitions: d.Definitions,
	}
}

// Validate resolves the document, returning the first structural error.
func (d Document) Validate() error {
	_, err := Resolve(d.Schema())
	return err
}

// IsError reports whether err carries a *schema.Error.
func IsError(err error) bool {
	var target *Error
	return errors.As(err, &target)
}

func sourceLabel(source string) string {
	if strings.TrimSpace(source) == "" {
		return "<inline>"
	}
	return source
}
