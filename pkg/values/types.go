package values

import (
	"strings"

	"github.com/goliatone/go-configgrid/pkg/schema"
)

// Status mirrors the change markers a configuration backend reports for each
// value.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusChanged   Status = "changed"
	StatusAdded     Status = "added"
	StatusRemoved   Status = "killed"
	StatusReset     Status = "reset"
	StatusManual    Status = "manual"
)

// Entry binds a value to a field path. Value is nil when the backend only
// reported metadata for the path.
type Entry struct {
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
	Meta  Meta   `json:"meta"`
}

// Meta carries per-field information reported alongside values.
type Meta struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Source      string `json:"source,omitempty"`
	Status      Status `json:"status,omitempty"`
}

// HasValue reports whether the entry carries an explicit value.
func (e Entry) HasValue() bool {
	return e.Value != nil
}

// FormatValue renders a scalar the way it is seeded into inputs. See
// schema.FormatValue.
func FormatValue(value any) string {
	return schema.FormatValue(value)
}

func normalizeStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return ""
	case StatusUnchanged:
		return StatusUnchanged
	case StatusChanged:
		return StatusChanged
	case StatusAdded:
		return StatusAdded
	case StatusRemoved, "removed":
		return StatusRemoved
	case StatusReset:
		return StatusReset
	case StatusManual:
		return StatusManual
	default:
		return Status(strings.ToLower(strings.TrimSpace(raw)))
	}
}
