package configgrid

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-configgrid/pkg/chooser"
	"github.com/goliatone/go-configgrid/pkg/loader"
	"github.com/goliatone/go-configgrid/pkg/schema"
	"github.com/goliatone/go-configgrid/pkg/testsupport"
	"github.com/goliatone/go-configgrid/pkg/tree"
	"github.com/goliatone/go-configgrid/pkg/values"
)

func TestBuildTree_FixtureScenario(t *testing.T) {
	s := testsupport.MustLoadSchema(t, testsupport.SetupFixture)
	store := testsupport.MustLoadStore(t, testsupport.ValuesFixture, testsupport.MetaFixture)

	root, err := BuildTree(s, store, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := Verify(s, store, root); err != nil {
		t.Fatalf("verify: %v", err)
	}

	stats := tree.Measure(root)
	if stats.Containers != 65 || stats.Leaves != 173 {
		t.Fatalf("expected 65 containers and 173 leaves, got %+v", stats)
	}
	leaves := tree.Collect(root, tree.KindField)
	if !strings.Contains(leaves[8].InnerText(), "Model Number") {
		t.Fatalf("leaf 8 text %q lacks Model Number", leaves[8].InnerText())
	}
	line, ok := tree.Find(root, "grb_line__server_modelNumber")
	if !ok || line.Value() != "2.2.0" {
		t.Fatalf("unexpected model number line %+v", line)
	}

	again, err := BuildTree(s, store, nil)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if diff := testsupport.CompareGolden(root, again); diff != "" {
		t.Fatalf("build is not idempotent (-first +second):\n%s", diff)
	}
}

func TestBuildTree_ChoiceAndErrors(t *testing.T) {
	s := schema.Schema{Root: schema.Node{Kind: schema.KindGroup, Children: []schema.Node{
		{Key: "basic"},
		{Key: "advanced", Choices: []string{"expert"}},
	}}}
	root, err := BuildTree(s, values.NewStore(nil), &chooser.Profile{ID: "minimal"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	basic, _ := tree.Find(root, tree.LineID("basic"))
	advanced, _ := tree.Find(root, tree.LineID("advanced"))
	if !basic.HasClass(chooser.ClassMatch) || !advanced.HasClass(chooser.ClassHidden) {
		t.Fatalf("choice classes not applied")
	}

	broken := schema.Schema{Root: schema.Node{Kind: schema.KindGroup, Children: []schema.Node{{Key: "a"}, {Key: "a"}}}}
	if _, err := BuildTree(broken, nil, nil); !schema.IsError(err) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestGenerateHTML(t *testing.T) {
	out, err := GenerateHTML(context.Background(), Config{
		Setup:  loader.SourceFromFile(testsupport.FixturePath(testsupport.SetupFixture)),
		Values: loader.SourceFromFile(testsupport.FixturePath(testsupport.ValuesFixture)),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), `id="grb_value__server_modelNumber"`) {
		t.Fatalf("expected model number input in output")
	}

	if _, err := GenerateHTML(context.Background(), Config{}); err == nil || !strings.HasPrefix(err.Error(), "configgrid: ") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestEmbeddedAssets(t *testing.T) {
	for _, name := range []string{"node.tpl", "grid.tpl", "page.tpl"} {
		if _, err := fs.ReadFile(EmbeddedTemplates(), name); err != nil {
			t.Fatalf("expected template %s: %v", name, err)
		}
	}
	data, err := fs.ReadFile(StylesheetFS(), "configgrid.css")
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), ".grb-config-list") {
		t.Fatalf("expected stylesheet to style the config list")
	}
}

func TestNewLoader(t *testing.T) {
	doc, err := NewLoader().Load(context.Background(), loader.SourceFromFile(testsupport.FixturePath(testsupport.ChooserFixture)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.Contains(string(doc.Raw()), "minimal") {
		t.Fatalf("unexpected chooser payload")
	}
}
