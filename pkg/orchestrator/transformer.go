package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-configgrid/pkg/schema"
	"github.com/goliatone/go-configgrid/pkg/tree"
)

// Transformer rewrites the built tree before the chooser is applied.
// Implementations can relabel nodes, attach attributes, or add classes.
type Transformer interface {
	Transform(ctx context.Context, root *tree.Node) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, root *tree.Node) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, root *tree.Node) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, root)
}

// PresetTransformer applies declarative overrides keyed by node path. The
// document is JSON or YAML:
//
//	{
//	  "title": "Media Server",
//	  "nodes": {
//	    "server/port": {"label": "UPnP Port", "help": "Restart required", "classes": ["wide"]},
//	    "import": {"attrs": {"data-collapsed": "true"}}
//	  }
//	}
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Title string               `json:"title" yaml:"title"`
	Nodes map[string]nodePatch `json:"nodes" yaml:"nodes"`
}

type nodePatch struct {
	Label   string            `json:"label" yaml:"label"`
	Help    string            `json:"help" yaml:"help"`
	Classes []string          `json:"classes" yaml:"classes"`
	Attrs   map[string]string `json:"attrs" yaml:"attrs"`
}

// NewPresetTransformer constructs a transformer from raw JSON or YAML bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := json.Unmarshal(data, &document); err != nil {
		document = presetDocument{}
		if yamlErr := yaml.Unmarshal(data, &document); yamlErr != nil {
			return nil, fmt.Errorf("preset transformer: parse document: %w", err)
		}
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the patches onto root. A patch naming a path the tree does
// not hold is an error so stale presets surface early.
func (t *PresetTransformer) Transform(ctx context.Context, root *tree.Node) error {
	if root == nil {
		return errors.New("preset transformer: tree is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.document.Title != "" {
		root.SetAttr("data-title", t.document.Title)
	}
	for rawPath, patch := range t.document.Nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := schema.NormalizePath(rawPath)
		node := findNodeByPath(root, path)
		if node == nil {
			return fmt.Errorf("preset transformer: node %q not found", path)
		}
		applyNodePatch(node, patch)
	}
	return nil
}

func applyNodePatch(node *tree.Node, patch nodePatch) {
	if label := strings.TrimSpace(patch.Label); label != "" {
		for i := range node.Children {
			child := &node.Children[i]
			if child.Kind == tree.KindLabel || child.Kind == tree.KindCaption {
				child.Text = label
				break
			}
		}
	}
	if help := strings.TrimSpace(patch.Help); help != "" {
		replaced := false
		for i := range node.Children {
			if node.Children[i].Kind == tree.KindHelp {
				node.Children[i].Text = help
				replaced = true
				break
			}
		}
		if !replaced {
			node.Children = insertHelp(node, help)
		}
	}
	node.AddClass(patch.Classes...)
	for name, value := range patch.Attrs {
		node.SetAttr(name, value)
	}
}

// insertHelp places a help paragraph where the builder would have: after the
// label/input pair of a field, after the caption of a group.
func insertHelp(node *tree.Node, text string) []tree.Node {
	help := tree.Node{Kind: tree.KindHelp, Element: "p", Text: text}
	help.AddClass(tree.ClassHelp)

	if node.Kind == tree.KindField {
		return append(node.Children, help)
	}
	out := make([]tree.Node, 0, len(node.Children)+1)
	for i, child := range node.Children {
		out = append(out, child)
		if child.Kind == tree.KindCaption {
			out = append(out, help)
			out = append(out, node.Children[i+1:]...)
			return out
		}
	}
	return append(out, help)
}

func findNodeByPath(root *tree.Node, path string) *tree.Node {
	if path == "" {
		return nil
	}
	if root.Path == path && (root.Kind == tree.KindField || root.Kind == tree.KindGroup) {
		return root
	}
	for i := range root.Children {
		if found := findNodeByPath(&root.Children[i], path); found != nil {
			return found
		}
	}
	return nil
}
