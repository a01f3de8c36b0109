package tree

import "fmt"

// WarningKind classifies non-fatal issues found while building a tree.
type WarningKind string

const (
	// WarningUnmatchedValue marks a value entry whose path matches no field.
	WarningUnmatchedValue WarningKind = "unmatched_value"
	// WarningMissingDefault marks a field with neither value nor default.
	WarningMissingDefault WarningKind = "missing_default"
	// WarningDuplicateValue marks a path reported more than once; the first
	// entry is used.
	WarningDuplicateValue WarningKind = "duplicate_value"
	// WarningInvalidValue marks a seeded value that fails the field's
	// constraints.
	WarningInvalidValue WarningKind = "invalid_value"
)

// Warning is a resolution warning. Building continues after a warning.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Path    string      `json:"path"`
	Message string      `json:"message,omitempty"`
}

func (w Warning) String() string {
	if w.Message == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Path)
	}
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Path, w.Message)
}

// WarningHandler receives warnings as they are produced.
type WarningHandler func(Warning)
