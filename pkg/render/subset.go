package render

import (
	"strings"

	"github.com/goliatone/go-configgrid/pkg/schema"
	"github.com/goliatone/go-configgrid/pkg/tree"
)

// FieldSubset narrows rendering to part of the tree. Paths keeps the listed
// subtrees (and the groups leading to them); Types keeps leaves whose field
// type is listed. Both filters must match when both are set.
type FieldSubset struct {
	Paths []string
	Types []string
}

// Empty reports whether the subset filters nothing.
func (s FieldSubset) Empty() bool {
	return len(s.Paths) == 0 && len(s.Types) == 0
}

// ApplySubset returns a copy of root without the leaves outside subset.
// Groups left without leaves are pruned so renderers do not emit empty
// sections. The root container is always kept.
func ApplySubset(root tree.Node, subset FieldSubset) tree.Node {
	matcher := newSubsetMatcher(subset)
	if matcher.empty() {
		return root
	}
	out := root.Clone()
	matcher.prune(&out)
	return out
}

type subsetMatcher struct {
	paths []string
	types map[string]struct{}
}

func newSubsetMatcher(subset FieldSubset) subsetMatcher {
	m := subsetMatcher{types: normaliseTokens(subset.Types)}
	for _, path := range subset.Paths {
		if normalized := schema.NormalizePath(path); normalized != "" {
			m.paths = append(m.paths, normalized)
		}
	}
	return m
}

func (m subsetMatcher) empty() bool {
	return len(m.paths) == 0 && len(m.types) == 0
}

// prune reports whether node still holds at least one leaf.
func (m subsetMatcher) prune(node *tree.Node) bool {
	if node.Kind == tree.KindField {
		return m.matches(*node)
	}
	kept := node.Children[:0]
	found := false
	for _, child := range node.Children {
		switch child.Kind {
		case tree.KindField, tree.KindGroup, tree.KindContainer:
			if !m.prune(&child) {
				continue
			}
			found = true
		}
		kept = append(kept, child)
	}
	node.Children = kept
	return found
}

func (m subsetMatcher) matches(leaf tree.Node) bool {
	if len(m.paths) > 0 && !withinAny(leaf.Path, m.paths) {
		return false
	}
	if len(m.types) > 0 {
		if _, ok := m.types[normaliseToken(leaf.Attr("data-type"))]; !ok {
			return false
		}
	}
	return true
}

func withinAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+schema.PathSeparator) {
			return true
		}
	}
	return false
}

func normaliseTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		for _, token := range parseTokenList(value) {
			out[token] = struct{}{}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseTokenList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if token := normaliseToken(part); token != "" {
			out = append(out, token)
		}
	}
	return out
}

func normaliseToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
