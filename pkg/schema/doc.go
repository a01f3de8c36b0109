// Package schema models the declarative structure of a configuration tree:
// groups that nest other nodes and fields that carry a typed value. Documents
// are decoded from JSON or YAML and may share subtrees through
// `#/definitions/<name>` references. Resolve expands references and enforces
// the structural rules the tree builder relies on (unique sibling keys, no
// cycles, fields never have children); violations surface as *Error values.
package schema
