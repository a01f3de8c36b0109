package tree

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-configgrid/pkg/schema"
	"github.com/goliatone/go-configgrid/pkg/values"
)

// ErrContract wraps every structural mismatch reported by Verify.
var ErrContract = errors.New("tree: contract violation")

// Stats tallies a render tree.
type Stats struct {
	Containers int `json:"containers"`
	Groups     int `json:"groups"`
	Leaves     int `json:"leaves"`
}

// Measure counts containers (ul), group items, and field leaves.
func Measure(root Node) Stats {
	var stats Stats
	Walk(root, func(node Node) bool {
		switch node.Kind {
		case KindContainer:
			stats.Containers++
		case KindGroup:
			stats.Groups++
		case KindField:
			stats.Leaves++
		}
		return true
	})
	return stats
}

// Verify checks a built tree against the schema and store it came from:
// one container per group (root included), one leaf per field, unique ids,
// and each leaf seeded with the resolved value. Hidden choice nodes still
// count; only filtered trees (see chooser.Filter) are expected to differ.
func Verify(s schema.Schema, store *values.Store, root Node) error {
	resolved, err := schema.Resolve(s)
	if err != nil {
		return fmt.Errorf("tree: verify: %w", err)
	}

	var problems []error
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf("%w: "+format, append([]any{ErrContract}, args...)...))
	}

	expected := schema.Stats{}
	fields := make(map[string]schema.Node)
	schema.Walk(resolved, func(path string, node schema.Node) {
		if node.Kind == schema.KindGroup {
			expected.Groups++
			return
		}
		expected.Fields++
		fields[path] = node
	})

	got := Measure(root)
	if got.Containers != expected.Groups {
		fail("containers = %d, want %d", got.Containers, expected.Groups)
	}
	if got.Leaves != expected.Fields {
		fail("leaves = %d, want %d", got.Leaves, expected.Fields)
	}

	ids := make(map[string]struct{})
	Walk(root, func(node Node) bool {
		if node.ID == "" {
			return true
		}
		if _, dup := ids[node.ID]; dup {
			fail("duplicate id %q", node.ID)
		}
		ids[node.ID] = struct{}{}
		return true
	})

	for path, field := range fields {
		leaf, ok := Find(root, LineID(path))
		if !ok {
			fail("missing leaf for %q", path)
			continue
		}
		if leaf.Path != path {
			fail("leaf %q carries path %q", LineID(path), leaf.Path)
		}
		want, _ := ResolveValue(field, path, store)
		if got := leaf.Value(); got != want {
			fail("leaf %q value = %q, want %q", path, got, want)
		}
	}

	return errors.Join(problems...)
}
