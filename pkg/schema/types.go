package schema

import "strings"

// Kind distinguishes containers from leaves.
type Kind string

const (
	KindGroup Kind = "group"
	KindField Kind = "field"
)

// FieldType is the simplified enum for value kinds a field can hold.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
)

// Node is a single schema entry. Groups list their children in declaration
// order; that order is preserved all the way to the rendered output.
type Node struct {
	Key         string       `json:"key" yaml:"key"`
	Kind        Kind         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Label       string       `json:"label,omitempty" yaml:"label,omitempty"`
	Type        FieldType    `json:"type,omitempty" yaml:"type,omitempty"`
	Default     any          `json:"default,omitempty" yaml:"default,omitempty"`
	Help        string       `json:"help,omitempty" yaml:"help,omitempty"`
	Choices     []string     `json:"choices,omitempty" yaml:"choices,omitempty"`
	Ref         string       `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Constraints *Constraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Children    []Node       `json:"children,omitempty" yaml:"children,omitempty"`
}

// Constraints bound the values a field accepts. Numeric bounds apply to
// integer/number fields, length bounds and patterns to strings.
type Constraints struct {
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum      []any    `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// Schema couples the root group with the shared definitions its nodes may
// reference.
type Schema struct {
	Root        Node
	Definitions map[string]Node
}

// IsGroup reports whether the node behaves as a container. Nodes without an
// explicit kind are groups when they declare children.
func (n Node) IsGroup() bool {
	return n.kind() == KindGroup
}

func (n Node) kind() Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(string(n.Kind)))) {
	case KindGroup, "section":
		return KindGroup
	case KindField, "":
		if n.Kind == "" && len(n.Children) > 0 {
			return KindGroup
		}
		return KindField
	default:
		return n.Kind
	}
}

// FieldTypeOf returns the declared type, falling back to string.
func (n Node) FieldTypeOf() FieldType {
	switch FieldType(strings.ToLower(strings.TrimSpace(string(n.Type)))) {
	case FieldTypeInteger, "int":
		return FieldTypeInteger
	case FieldTypeNumber, "float":
		return FieldTypeNumber
	case FieldTypeBoolean, "bool":
		return FieldTypeBoolean
	default:
		return FieldTypeString
	}
}

// HasChoice reports whether the node belongs to the named choice profile.
// Nodes without declared choices belong to every profile.
func (n Node) HasChoice(id string) bool {
	if len(n.Choices) == 0 {
		return true
	}
	for _, choice := range n.Choices {
		if strings.EqualFold(strings.TrimSpace(choice), id) {
			return true
		}
	}
	return false
}
