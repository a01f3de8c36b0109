package orchestrator

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-configgrid/pkg/schema"
	"github.com/goliatone/go-configgrid/pkg/tree"
	"github.com/goliatone/go-configgrid/pkg/values"
)

func transformerTree(t *testing.T) tree.Node {
	t.Helper()
	s := schema.Schema{Root: schema.Node{Kind: schema.KindGroup, Children: []schema.Node{
		{Key: "server", Children: []schema.Node{
			{Key: "port", Type: schema.FieldTypeInteger, Default: 49152},
			{Key: "name", Help: "Shown to clients"},
		}},
	}}}
	root, err := tree.New().Build(s, values.NewStore(nil))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return root
}

func childText(node tree.Node, kind tree.Kind) string {
	for _, child := range node.Children {
		if child.Kind == kind {
			return child.Text
		}
	}
	return ""
}

func TestPresetTransformer_PatchesNodes(t *testing.T) {
	transformer, err := NewPresetTransformer([]byte(`{
		"title": "Media Server",
		"nodes": {
			"/server/port": {"label": "UPnP Port", "help": "Restart required", "classes": ["wide"]},
			"server/name": {"help": "Friendly name"},
			"server": {"help": "Network settings", "attrs": {"data-collapsed": "true"}}
		}
	}`))
	if err != nil {
		t.Fatalf("new transformer: %v", err)
	}

	root := transformerTree(t)
	if err := transformer.Transform(context.Background(), &root); err != nil {
		t.Fatalf("transform: %v", err)
	}

	if root.Attr("data-title") != "Media Server" {
		t.Fatalf("title not applied")
	}
	port, _ := tree.Find(root, tree.LineID("server/port"))
	if childText(port, tree.KindLabel) != "UPnP Port" || childText(port, tree.KindHelp) != "Restart required" {
		t.Fatalf("port patch not applied: %+v", port.Children)
	}
	if !port.HasClass("wide") {
		t.Fatalf("class not added")
	}
	name, _ := tree.Find(root, tree.LineID("server/name"))
	if childText(name, tree.KindHelp) != "Friendly name" {
		t.Fatalf("existing help not replaced")
	}

	group, _ := tree.Find(root, tree.GroupID("server"))
	if group.Attr("data-collapsed") != "true" {
		t.Fatalf("group attrs not applied")
	}
	if group.Children[0].Kind != tree.KindCaption || group.Children[1].Kind != tree.KindHelp || group.Children[2].Kind != tree.KindContainer {
		t.Fatalf("group help inserted out of order")
	}
}

func TestPresetTransformer_YAMLFromFS(t *testing.T) {
	files := fstest.MapFS{
		"preset.yaml": {Data: []byte("nodes:\n  server/port:\n    label: Port\n")},
	}
	transformer, err := NewPresetTransformerFromFS(files, "preset.yaml")
	if err != nil {
		t.Fatalf("new transformer: %v", err)
	}
	root := transformerTree(t)
	if err := transformer.Transform(context.Background(), &root); err != nil {
		t.Fatalf("transform: %v", err)
	}
	port, _ := tree.Find(root, tree.LineID("server/port"))
	if childText(port, tree.KindLabel) != "Port" {
		t.Fatalf("yaml preset not applied")
	}
}

func TestPresetTransformer_Errors(t *testing.T) {
	if _, err := NewPresetTransformer(nil); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := NewPresetTransformer([]byte("{nodes: [")); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := NewPresetTransformerFromFS(nil, "x"); err == nil {
		t.Fatalf("expected error for nil filesystem")
	}

	transformer, err := NewPresetTransformer([]byte(`{"nodes": {"server/missing": {"label": "x"}}}`))
	if err != nil {
		t.Fatalf("new transformer: %v", err)
	}
	root := transformerTree(t)
	err = transformer.Transform(context.Background(), &root)
	if err == nil || !strings.Contains(err.Error(), "server/missing") {
		t.Fatalf("expected missing node error, got %v", err)
	}
	if err := transformer.Transform(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil tree")
	}
}

func TestOrchestrator_RunsTransformers(t *testing.T) {
	var seen int
	counter := TransformerFunc(func(_ context.Context, root *tree.Node) error {
		seen = tree.Measure(*root).Leaves
		root.SetAttr("data-transformed", "yes")
		return nil
	})

	s := schema.Schema{Root: schema.Node{Kind: schema.KindGroup, Children: []schema.Node{{Key: "a"}, {Key: "b"}}}}
	result, err := New(WithTransformers(counter)).Build(context.Background(), Config{Schema: &s})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if seen != 2 || result.Tree.Attr("data-transformed") != "yes" {
		t.Fatalf("transformer not run: seen=%d", seen)
	}
}
