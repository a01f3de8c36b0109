package tree

import (
	"sort"
	"strings"
)

// Kind identifies the structural role of a render node.
type Kind string

const (
	KindContainer Kind = "container"
	KindGroup     Kind = "group"
	KindField     Kind = "field"
	KindCaption   Kind = "caption"
	KindLabel     Kind = "label"
	KindInput     Kind = "input"
	KindHelp      Kind = "help"
)

// CSS classes emitted by the builder. Leaf items use "grb-" + ItemType.
const (
	ClassList         = "grb-config-list"
	ClassRoot         = "grb-config-root"
	ClassGroup        = "grb-config-group"
	ClassCaption      = "grb-config-caption"
	ClassLabel        = "grb-config-label"
	ClassInput        = "grb-config-input"
	ClassHelp         = "grb-config-help"
	ClassInvalid      = "grb-invalid"
	ClassStatusPrefix = "grb-status-"
)

// Node is the in-memory render tree handed to renderers. It is a plain value:
// builders create a fresh tree per call and transformations return copies.
type Node struct {
	ID       string            `json:"id,omitempty"`
	Kind     Kind              `json:"kind"`
	Element  string            `json:"element"`
	Classes  []string          `json:"classes,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Path     string            `json:"path,omitempty"`
	Choices  []string          `json:"choices,omitempty"`
	Children []Node            `json:"children,omitempty"`
}

// HasClass reports whether the node carries class.
func (n Node) HasClass(class string) bool {
	idx := sort.SearchStrings(n.Classes, class)
	return idx < len(n.Classes) && n.Classes[idx] == class
}

// AddClass inserts classes keeping the set sorted and unique.
func (n *Node) AddClass(classes ...string) {
	for _, class := range classes {
		class = strings.TrimSpace(class)
		if class == "" {
			continue
		}
		idx := sort.SearchStrings(n.Classes, class)
		if idx < len(n.Classes) && n.Classes[idx] == class {
			continue
		}
		n.Classes = append(n.Classes, "")
		copy(n.Classes[idx+1:], n.Classes[idx:])
		n.Classes[idx] = class
	}
}

// RemoveClass drops class from the set.
func (n *Node) RemoveClass(class string) {
	idx := sort.SearchStrings(n.Classes, class)
	if idx < len(n.Classes) && n.Classes[idx] == class {
		n.Classes = append(n.Classes[:idx], n.Classes[idx+1:]...)
	}
	if len(n.Classes) == 0 {
		n.Classes = nil
	}
}

// Attr returns an attribute value or "".
func (n Node) Attr(name string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// SetAttr assigns an attribute; empty values remove it.
func (n *Node) SetAttr(name, value string) {
	if value == "" {
		if n.Attrs != nil {
			delete(n.Attrs, name)
			if len(n.Attrs) == 0 {
				n.Attrs = nil
			}
		}
		return
	}
	if n.Attrs == nil {
		n.Attrs = make(map[string]string, 4)
	}
	n.Attrs[name] = value
}

// AttrNames returns attribute names sorted for deterministic output.
func (n Node) AttrNames() []string {
	names := make([]string, 0, len(n.Attrs))
	for name := range n.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Input returns the input child of a field leaf.
func (n Node) Input() (Node, bool) {
	for _, child := range n.Children {
		if child.Kind == KindInput {
			return child, true
		}
	}
	return Node{}, false
}

// Value returns the seeded value of a field leaf's input.
func (n Node) Value() string {
	input, ok := n.Input()
	if !ok {
		return ""
	}
	return input.Attr("value")
}

// InnerText concatenates the text of the node and its descendants in
// document order, separating fragments with a single space.
func (n Node) InnerText() string {
	var parts []string
	Walk(n, func(node Node) bool {
		if text := strings.TrimSpace(node.Text); text != "" {
			parts = append(parts, text)
		}
		return true
	})
	return strings.Join(parts, " ")
}

// Clone returns a deep copy.
func (n Node) Clone() Node {
	out := n
	if n.Classes != nil {
		out.Classes = append([]string(nil), n.Classes...)
	}
	if n.Choices != nil {
		out.Choices = append([]string(nil), n.Choices...)
	}
	if n.Attrs != nil {
		out.Attrs = make(map[string]string, len(n.Attrs))
		for key, value := range n.Attrs {
			out.Attrs[key] = value
		}
	}
	if n.Children != nil {
		out.Children = make([]Node, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

// Walk visits nodes depth-first in document order. Returning false from visit
// skips the node's children.
func Walk(root Node, visit func(Node) bool) {
	if !visit(root) {
		return
	}
	for _, child := range root.Children {
		Walk(child, visit)
	}
}

// Find returns the first node with the given id.
func Find(root Node, id string) (Node, bool) {
	var (
		found Node
		ok    bool
	)
	Walk(root, func(node Node) bool {
		if ok {
			return false
		}
		if node.ID == id {
			found, ok = node, true
			return false
		}
		return true
	})
	return found, ok
}

// Collect returns every node of the given kind in document order.
func Collect(root Node, kind Kind) []Node {
	var out []Node
	Walk(root, func(node Node) bool {
		if node.Kind == kind {
			out = append(out, node)
		}
		return true
	})
	return out
}
