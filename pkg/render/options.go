package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-configgrid/pkg/chooser"
	"github.com/goliatone/go-configgrid/pkg/tree"
)

// RenderOptions describe per-request data renderers use to decorate the tree
// without changing how it was built.
type RenderOptions struct {
	// Title is shown above the tree. Renderers fall back to the root's
	// data-title attribute.
	Title string
	// Choice is the active profile, already applied to the tree.
	Choice *chooser.Profile
	// Profiles lists the selectable profiles for the chooser bar.
	Profiles []chooser.Profile
	// Theme carries the resolved go-theme selection.
	Theme *theme.RendererConfig
	// Errors surfaces backend validation feedback keyed by value path
	// ("/server/port", "server.port"). Unknown paths become tree-level
	// messages.
	Errors map[string][]string
	// Subset limits output to the listed subtrees.
	Subset FieldSubset
}

// Prepared is the tree a renderer should emit plus the messages that could
// not be attached to a node.
type Prepared struct {
	Root   tree.Node
	Title  string
	Errors []string
}

// Prepare applies the subset and error options to a copy of root.
func Prepare(root tree.Node, options RenderOptions) Prepared {
	out := ApplySubset(root, options.Subset)
	mapping := MapErrorPayload(out, options.Errors)
	out = ApplyErrors(out, mapping)

	title := options.Title
	if title == "" {
		title = root.Attr("data-title")
	}
	return Prepared{Root: out, Title: title, Errors: mapping.Form}
}
