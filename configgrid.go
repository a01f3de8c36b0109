// Package configgrid renders hierarchical configuration trees from a
// declarative setup schema and the values a backend reports for it.
//
// BuildTree is the core entry point: it resolves the schema, seeds every field
// from the value store, and marks the tree for the active choice profile.
// NewOrchestrator and GenerateHTML add document loading and rendering on top.
package configgrid

import (
	"context"
	"fmt"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-configgrid/pkg/chooser"
	"github.com/goliatone/go-configgrid/pkg/orchestrator"
	"github.com/goliatone/go-configgrid/pkg/render"
	"github.com/goliatone/go-configgrid/pkg/schema"
	"github.com/goliatone/go-configgrid/pkg/tree"
	"github.com/goliatone/go-configgrid/pkg/values"
)

// RenderOptions describes per-request data renderers use to decorate the
// tree, such as backend errors or the active theme.
type RenderOptions = render.RenderOptions

// FieldSubset aliases render.FieldSubset for callers rendering part of a tree.
type FieldSubset = render.FieldSubset

// Config aliases orchestrator.Config: the typed widget options.
type Config = orchestrator.Config

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// BuildTree builds the render tree for s seeded from vals and marks it for
// choice. A nil choice leaves every node unmarked. Value anomalies never fail
// the build; structural schema errors return a *schema.Error.
func BuildTree(s schema.Schema, vals *values.Store, choice *chooser.Profile, options ...tree.Option) (tree.Node, error) {
	root, err := tree.New(options...).Build(s, vals)
	if err != nil {
		return tree.Node{}, err
	}
	return chooser.Apply(root, choice), nil
}

// Verify checks a tree built by BuildTree against its inputs.
func Verify(s schema.Schema, vals *values.Store, root tree.Node) error {
	return tree.Verify(s, vals, root)
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML loads the documents named by cfg, builds the tree, and renders
// it with the html renderer. It is the simplest entry point for callers that
// just want markup.
func GenerateHTML(ctx context.Context, cfg Config, options ...orchestrator.Option) ([]byte, error) {
	return Generate(ctx, Request{Config: cfg, Renderer: "html"}, options...)
}

// Generate runs the full pipeline for req.
func Generate(ctx context.Context, req Request, options ...orchestrator.Option) ([]byte, error) {
	out, err := orchestrator.New(options...).Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("configgrid: %w", err)
	}
	return out, nil
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}
