package chooser

import (
	"strings"

	"github.com/goliatone/go-configgrid/pkg/tree"
)

// Classes applied by Apply.
const (
	ClassChoicePrefix = "grb-choice-"
	ClassMatch        = "grb-choice-match"
	ClassHidden       = "grb-choice-hidden"
)

// Apply marks the tree for profile p and returns an annotated copy; the input
// is never modified. A nil profile returns root unchanged.
//
// A node belongs to the profile when it and every ancestor group either list
// no choices or list p.ID. Matching leaves gain ClassMatch, the rest
// ClassHidden. Groups without a matching leaf are hidden too.
func Apply(root tree.Node, p *Profile) tree.Node {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return root
	}
	out := root.Clone()
	out.AddClass(ClassChoicePrefix + classToken(p.ID))
	out.SetAttr("data-choice", p.ID)
	mark(&out, p.ID, true)
	return out
}

// Filter applies p and prunes hidden items. Containers of surviving groups are
// kept even when they end up empty.
func Filter(root tree.Node, p *Profile) tree.Node {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return root
	}
	out := Apply(root, p)
	prune(&out)
	return out
}

func mark(node *tree.Node, id string, allowed bool) bool {
	switch node.Kind {
	case tree.KindField:
		match := allowed && includes(node.Choices, id)
		setMatch(node, match)
		return match
	case tree.KindGroup:
		allowed = allowed && includes(node.Choices, id)
		matched := false
		for i := range node.Children {
			if mark(&node.Children[i], id, allowed) {
				matched = true
			}
		}
		setMatch(node, matched)
		return matched
	default:
		matched := false
		for i := range node.Children {
			if mark(&node.Children[i], id, allowed) {
				matched = true
			}
		}
		return matched
	}
}

func prune(node *tree.Node) {
	if len(node.Children) == 0 {
		return
	}
	kept := node.Children[:0]
	for _, child := range node.Children {
		if child.HasClass(ClassHidden) {
			continue
		}
		prune(&child)
		kept = append(kept, child)
	}
	node.Children = kept
}

func setMatch(node *tree.Node, match bool) {
	if match {
		node.AddClass(ClassMatch)
		node.RemoveClass(ClassHidden)
		return
	}
	node.AddClass(ClassHidden)
	node.RemoveClass(ClassMatch)
}

func includes(choices []string, id string) bool {
	if len(choices) == 0 {
		return true
	}
	for _, choice := range choices {
		if strings.EqualFold(strings.TrimSpace(choice), id) {
			return true
		}
	}
	return false
}

func classToken(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(id))
}
