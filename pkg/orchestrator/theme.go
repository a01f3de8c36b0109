package orchestrator

import (
	"fmt"
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// defaultThemeFallbacks maps the partial keys renderers look up to the
// bundled templates, so a theme only overrides what it ships.
func defaultThemeFallbacks() map[string]string {
	return map[string]string{
		"configgrid.grid": "templates/grid.tpl",
		"configgrid.node": "templates/node.tpl",
		"configgrid.page": "templates/page.tpl",
	}
}

// ManifestSelector resolves themes from an in-memory manifest set. It
// satisfies theme.ThemeSelector for callers that ship their manifests with
// the binary.
type ManifestSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector indexes manifests by name. The first manifest is the
// default unless defaultTheme names another.
func NewManifestSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*ManifestSelector, error) {
	s := &ManifestSelector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
	for _, manifest := range manifests {
		if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
			return nil, fmt.Errorf("orchestrator: theme manifest requires a name")
		}
		if _, exists := s.manifests[manifest.Name]; exists {
			return nil, fmt.Errorf("orchestrator: theme %q already registered", manifest.Name)
		}
		s.manifests[manifest.Name] = manifest
		if s.defaultTheme == "" {
			s.defaultTheme = manifest.Name
		}
	}
	return s, nil
}

// Select returns the named theme and variant, falling back to the defaults
// for empty arguments.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = s.defaultVariant
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("orchestrator: theme %q not found", name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("orchestrator: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// rendererConfig flattens a selection into what renderers consume: variant
// tokens, templates and assets override the base manifest, tokens double as
// CSS custom properties.
func rendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: mergeStringMap(nil, fallbacks),
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}

	manifest := selection.Manifest
	if manifest == nil {
		cfg.AssetURL = func(string) string { return "" }
		return cfg
	}

	prefix := manifest.Assets.Prefix
	files := mergeStringMap(nil, manifest.Assets.Files)
	cfg.Partials = mergeStringMap(cfg.Partials, manifest.Templates)
	cfg.Tokens = mergeStringMap(cfg.Tokens, manifest.Tokens)
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		cfg.Partials = mergeStringMap(cfg.Partials, variant.Templates)
		cfg.Tokens = mergeStringMap(cfg.Tokens, variant.Tokens)
		files = mergeStringMap(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}
	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") || prefix == "" {
			return file
		}
		if strings.Contains(prefix, "://") {
			return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
		}
		return path.Join(prefix, file)
	}
	return cfg
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
