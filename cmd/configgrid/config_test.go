package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-configgrid/pkg/loader"
	"github.com/goliatone/go-configgrid/pkg/tree"
)

const sampleConfig = `
renderer = "text"
item_type = "values"
choice = "standard"
results_path = "data"
http_timeout = "5s"
setup = "setup.json"
values = "https://gerbera.local/api?req_type=config_load"

[theme]
name = "dark"
variant = "contrast"
asset_prefix = "/static"

[theme.tokens]
brand = "#101010"

[theme.variants.contrast]
brand = "#ffffff"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "configgrid.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadSettings(t *testing.T) {
	s, err := loadSettings(writeConfig(t, sampleConfig), true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := settings{
		Renderer:    "text",
		ItemType:    "values",
		Choice:      "standard",
		ResultsPath: "data",
		HTTPTimeout: "5s",
		Setup:       "setup.json",
		Values:      "https://gerbera.local/api?req_type=config_load",
		Theme: themeSettings{
			Name:     "dark",
			Variant:  "contrast",
			Prefix:   "/static",
			Tokens:   map[string]string{"brand": "#101010"},
			Variants: map[string]map[string]string{"contrast": {"brand": "#ffffff"}},
		},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSettings_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")
	if _, err := loadSettings(missing, false); err != nil {
		t.Fatalf("optional missing file should not fail: %v", err)
	}
	if _, err := loadSettings(missing, true); err == nil {
		t.Fatalf("expected error for required missing file")
	}
	if _, err := loadSettings(writeConfig(t, "renderer = ["), false); err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CONFIGGRID_RENDERER":      "json",
		"CONFIGGRID_THEME_VARIANT": "",
		"CONFIGGRID_VERIFY":        "yes",
		"OTHER_RENDERER":           "html",
	}
	s := settings{Renderer: "text", Theme: themeSettings{Variant: "contrast"}}
	s.applyEnv(func(name string) (string, bool) {
		value, ok := env[name]
		return value, ok
	})

	if s.Renderer != "json" {
		t.Fatalf("expected env renderer, got %q", s.Renderer)
	}
	if s.Theme.Variant != "" {
		t.Fatalf("expected empty env value to override, got %q", s.Theme.Variant)
	}
	if !s.Verify {
		t.Fatalf("expected verify from env")
	}
}

func TestSettingsConfig(t *testing.T) {
	s := settings{
		Setup:    "setup.json",
		Values:   "https://gerbera.local/values",
		ItemType: "values",
		Choice:   "expert",
	}
	cfg, err := s.config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Setup.Kind() != loader.SourceKindFile || cfg.Values.Kind() != loader.SourceKindURL {
		t.Fatalf("unexpected source kinds %s %s", cfg.Setup.Kind(), cfg.Values.Kind())
	}
	if cfg.Meta != nil || cfg.Chooser != nil {
		t.Fatalf("expected unset sources to stay nil")
	}
	if cfg.ItemType != tree.ItemType("values") || cfg.Choice != "expert" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	if _, err := (settings{}).config(); err == nil {
		t.Fatalf("expected error without setup")
	}
}

func TestSettingsOptions(t *testing.T) {
	if _, err := (settings{HTTPTimeout: "soon"}).options(); err == nil {
		t.Fatalf("expected invalid timeout error")
	}
	if _, err := (settings{Presets: filepath.Join(t.TempDir(), "none.json")}).options(); err == nil {
		t.Fatalf("expected missing presets error")
	}
	opts, err := (settings{HTTPTimeout: "2s", Renderer: "json"}).options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(opts) == 0 {
		t.Fatalf("expected orchestrator options")
	}
}

func TestThemeSelector(t *testing.T) {
	selector, err := (themeSettings{}).selector()
	if err != nil || selector != nil {
		t.Fatalf("expected no selector without a theme, got %v %v", selector, err)
	}

	selector, err = themeSettings{
		Name:     "dark",
		Tokens:   map[string]string{"brand": "#101010"},
		Variants: map[string]map[string]string{"contrast": {"brand": "#ffffff"}},
	}.selector()
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	selection, err := selector.Select("", "contrast")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if selection.Theme != "dark" || selection.Variant != "contrast" {
		t.Fatalf("unexpected selection %+v", selection)
	}
	if _, err := selector.Select("light", ""); err == nil {
		t.Fatalf("expected unknown theme error")
	}
}
