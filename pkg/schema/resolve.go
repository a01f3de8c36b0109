package schema

import (
	"fmt"
	"strings"
)

const definitionsPrefix = "#/definitions/"

// Resolve expands references and normalises kinds, returning a root group
// whose subtree contains only plain groups and fields. The input is not
// modified.
func Resolve(s Schema) (Node, error) {
	r := resolver{
		definitions: s.Definitions,
		active:      make(map[string]struct{}),
	}
	root, err := r.resolve(s.Root, "", true)
	if err != nil {
		return Node{}, err
	}
	if root.Kind != KindGroup {
		return Node{}, newError("", "", ErrInvalidNode, "root must be a group")
	}
	return root, nil
}

// Stats counts the groups (root included) and fields of a resolved tree.
type Stats struct {
	Groups int
	Fields int
}

// Count resolves the schema and tallies its nodes.
func Count(s Schema) (Stats, error) {
	root, err := Resolve(s)
	if err != nil {
		return Stats{}, err
	}
	var stats Stats
	Walk(root, func(_ string, node Node) {
		if node.Kind == KindGroup {
			stats.Groups++
			return
		}
		stats.Fields++
	})
	return stats, nil
}

// Walk visits a resolved tree depth-first in declaration order. The root is
// reported with an empty path.
func Walk(root Node, visit func(path string, node Node)) {
	var walk func(path string, node Node)
	walk = func(path string, node Node) {
		visit(path, node)
		for _, child := range node.Children {
			walk(JoinPath(path, child.Key), child)
		}
	}
	walk("", root)
}

type resolver struct {
	definitions map[string]Node
	active      map[string]struct{}
}

func (r *resolver) resolve(node Node, parentPath string, isRoot bool) (Node, error) {
	var expanded []string
	defer func() {
		for _, name := range expanded {
			delete(r.active, name)
		}
	}()

	path := JoinPath(parentPath, node.Key)
	for node.Ref != "" {
		ref := node.Ref
		name, ok := definitionName(ref)
		if !ok {
			return Node{}, newError(path, ref, ErrUnknownRef, "only #/definitions/<name> references are supported")
		}
		if _, seen := r.active[name]; seen {
			return Node{}, newError(path, ref, ErrCycle, "")
		}
		def, ok := r.definitions[name]
		if !ok {
			return Node{}, newError(path, ref, ErrUnknownRef, "")
		}
		r.active[name] = struct{}{}
		expanded = append(expanded, name)
		node = mergeDefinition(node, def, name)
		path = JoinPath(parentPath, node.Key)
	}

	// Paths and ids trim their segments, so siblings must compare trimmed.
	node.Key = strings.TrimSpace(node.Key)
	if !isRoot {
		if err := validateKey(node.Key); err != nil {
			return Node{}, newError(path, "", ErrInvalidNode, err.Error())
		}
	}

	kind := node.kind()
	out := node
	out.Kind = kind
	out.Ref = ""
	out.Children = nil
	if len(node.Choices) > 0 {
		out.Choices = append([]string(nil), node.Choices...)
	}

	switch kind {
	case KindGroup:
		out.Type = ""
		out.Default = nil
		out.Constraints = nil
		if len(node.Children) == 0 {
			return out, nil
		}
		out.Children = make([]Node, 0, len(node.Children))
		seen := make(map[string]struct{}, len(node.Children))
		for _, child := range node.Children {
			resolved, err := r.resolve(child, path, false)
			if err != nil {
				return Node{}, err
			}
			if _, exists := seen[resolved.Key]; exists {
				return Node{}, newError(JoinPath(path, resolved.Key), "", ErrDuplicateKey, "")
			}
			seen[resolved.Key] = struct{}{}
			out.Children = append(out.Children, resolved)
		}
	case KindField:
		if len(node.Children) > 0 {
			return Node{}, newError(path, "", ErrInvalidNode, "field declares children")
		}
		out.Type = node.FieldTypeOf()
	default:
		return Node{}, newError(path, "", ErrInvalidNode, fmt.Sprintf("unknown kind %q", node.Kind))
	}

	return out, nil
}

// mergeDefinition overlays the referencing node on top of its definition: the
// reference site keeps its own key, label, help, and choices when set.
func mergeDefinition(site, def Node, name string) Node {
	out := def
	out.Ref = def.Ref
	if site.Key != "" {
		out.Key = site.Key
	} else if out.Key == "" {
		out.Key = name
	}
	if site.Label != "" {
		out.Label = site.Label
	}
	if site.Help != "" {
		out.Help = site.Help
	}
	if len(site.Choices) > 0 {
		out.Choices = site.Choices
	}
	if site.Default != nil {
		out.Default = site.Default
	}
	return out
}

func definitionName(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, definitionsPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, definitionsPrefix)
	return name, name != ""
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty key")
	}
	if strings.Contains(key, PathSeparator) {
		return fmt.Errorf("key %q contains %q", key, PathSeparator)
	}
	return nil
}
