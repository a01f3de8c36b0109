package orchestrator

import (
	"context"
	"errors"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-configgrid/pkg/render"
	"github.com/goliatone/go-configgrid/pkg/schema"
)

func themeRequest() Request {
	s := schema.Schema{Root: schema.Node{Kind: schema.KindGroup, Children: []schema.Node{{Key: "port"}}}}
	return Request{Config: Config{Schema: &s}}
}

func TestOrchestrator_PassesThemeConfigToRenderer(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand": "#123456",
		},
	}

	selection := &theme.Selection{
		Theme:    "acme",
		Variant:  "custom-variant",
		Manifest: manifest,
	}

	selector := &stubThemeSelector{selection: selection}

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(
		WithRegistry(registry),
		WithDefaultRenderer(renderer.Name()),
		WithThemeSelector(selector),
	)

	req := themeRequest()
	req.ThemeName = "custom-theme"
	req.ThemeVariant = "custom-variant"
	if _, err := orch.Generate(context.Background(), req); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(selector.calls) != 1 {
		t.Fatalf("expected selector called once, got %d", len(selector.calls))
	}
	if selector.calls[0].name != "custom-theme" || selector.calls[0].variant != "custom-variant" {
		t.Fatalf("unexpected selector args: %+v", selector.calls[0])
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != selection.Theme || cfg.Variant != selection.Variant {
		t.Fatalf("theme mismatch: got %s/%s", cfg.Theme, cfg.Variant)
	}
	if cfg.AssetURL == nil {
		t.Fatalf("expected AssetURL resolver present")
	}
	if got := cfg.Partials["configgrid.node"]; got != defaultThemeFallbacks()["configgrid.node"] {
		t.Fatalf("partials not merged with fallbacks: got %s", got)
	}
	if cfg.Tokens["brand"] != manifest.Tokens["brand"] {
		t.Fatalf("tokens not propagated")
	}
	if cfg.CSSVars["--brand"] != manifest.Tokens["brand"] {
		t.Fatalf("css vars not derived from tokens")
	}
}

func TestOrchestrator_ManifestSelectorMergesVariant(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand": "#123456",
			"text":  "#111",
		},
		Templates: map[string]string{
			"configgrid.grid": "themes/acme/grid.tpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files: map[string]string{
				"configgrid.stylesheet": "theme.css",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"brand": "#654321",
				},
				Templates: map[string]string{
					"configgrid.node": "themes/acme/dark/node.tpl",
				},
				Assets: theme.Assets{
					Files: map[string]string{
						"configgrid.stylesheet": "theme.dark.css",
					},
				},
			},
		},
	}

	selector, err := NewManifestSelector("acme", "dark", manifest)
	if err != nil {
		t.Fatalf("selector: %v", err)
	}

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)
	orch := New(WithRegistry(registry), WithThemeSelector(selector))

	if _, err := orch.Generate(context.Background(), themeRequest()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	cfg := renderer.options.Theme
	if cfg == nil || cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("unexpected theme config %+v", cfg)
	}
	if cfg.Partials["configgrid.grid"] != "themes/acme/grid.tpl" {
		t.Fatalf("expected base template override, got %s", cfg.Partials["configgrid.grid"])
	}
	if cfg.Partials["configgrid.node"] != "themes/acme/dark/node.tpl" {
		t.Fatalf("expected variant template override, got %s", cfg.Partials["configgrid.node"])
	}
	if cfg.Partials["configgrid.page"] != defaultThemeFallbacks()["configgrid.page"] {
		t.Fatalf("fallback partial not applied for page")
	}
	if cfg.Tokens["brand"] != "#654321" || cfg.Tokens["text"] != "#111" {
		t.Fatalf("tokens not merged with variant override: %v", cfg.Tokens)
	}
	if cfg.CSSVars["--brand"] != "#654321" {
		t.Fatalf("css vars not derived from variant tokens, got %s", cfg.CSSVars["--brand"])
	}
	if got := cfg.AssetURL("configgrid.stylesheet"); got != "/assets/themes/acme/theme.dark.css" {
		t.Fatalf("unexpected stylesheet asset url: %s", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("expected empty url for unknown asset, got %s", got)
	}

	if _, err := selector.Select("other", ""); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
	if _, err := selector.Select("acme", "sepia"); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}

func TestOrchestrator_ThemeSelectionError(t *testing.T) {
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)
	orch := New(WithRegistry(registry), WithThemeSelector(&stubThemeSelector{err: errors.New("no themes")}))

	if _, err := orch.Generate(context.Background(), themeRequest()); err == nil {
		t.Fatalf("expected theme selection error")
	}
}

func TestNewManifestSelector_Errors(t *testing.T) {
	if _, err := NewManifestSelector("", "", &theme.Manifest{}); err == nil {
		t.Fatalf("expected error for unnamed manifest")
	}
	if _, err := NewManifestSelector("", "", &theme.Manifest{Name: "a"}, &theme.Manifest{Name: "a"}); err == nil {
		t.Fatalf("expected error for duplicate manifest")
	}
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}
