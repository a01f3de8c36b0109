package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	theme "github.com/goliatone/go-theme"

	internalLoader "github.com/goliatone/go-configgrid/internal/loader"
	"github.com/goliatone/go-configgrid/internal/logging"
	"github.com/goliatone/go-configgrid/pkg/chooser"
	"github.com/goliatone/go-configgrid/pkg/loader"
	"github.com/goliatone/go-configgrid/pkg/render"
	"github.com/goliatone/go-configgrid/pkg/renderers/html"
	"github.com/goliatone/go-configgrid/pkg/renderers/jsontree"
	"github.com/goliatone/go-configgrid/pkg/renderers/text"
	"github.com/goliatone/go-configgrid/pkg/schema"
	"github.com/goliatone/go-configgrid/pkg/tree"
	"github.com/goliatone/go-configgrid/pkg/values"
)

const defaultRendererName = "html"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom document loader.
func WithLoader(l loader.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = l
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithAdapters replaces the schema adapter registry.
func WithAdapters(registry *AdapterRegistry) Option {
	return func(o *Orchestrator) {
		o.adapters = registry
	}
}

// WithDefaultAdapter names the adapter used when no adapter claims a setup
// document.
func WithDefaultAdapter(name string) Option {
	return func(o *Orchestrator) {
		o.defaultAdapter = name
	}
}

// WithThemeSelector resolves theme/variant choices ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeFallbacks overrides the partials merged beneath a theme's
// templates.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = mergeStringMap(nil, fallbacks)
	}
}

// WithLogger routes build warnings and progress to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithContractCheck verifies every built tree against its schema and store
// before it is returned.
func WithContractCheck(enabled bool) Option {
	return func(o *Orchestrator) {
		o.contractCheck = enabled
	}
}

// WithResultsPath points the values decoder at a nested payload (gjson
// syntax), e.g. "data" for {"success": true, "data": {...}}.
func WithResultsPath(path string) Option {
	return func(o *Orchestrator) {
		o.resultsPath = strings.TrimSpace(path)
	}
}

// WithTransformers registers tree transformers run after the build.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		o.transformers = append(o.transformers, transformers...)
	}
}

// WithLabeler overrides how field keys become labels.
func WithLabeler(labeler tree.Labeler) Option {
	return func(o *Orchestrator) {
		o.labeler = labeler
	}
}

// Orchestrator coordinates the pipeline from setup/values documents to
// rendered output. Missing dependencies fall back to the built-in
// implementations: the internal loader, the native and OpenAPI adapters, and
// a registry holding the html, text and json renderers.
type Orchestrator struct {
	loader          loader.Loader
	registry        *render.Registry
	adapters        *AdapterRegistry
	defaultAdapter  string
	defaultRenderer string
	themeSelector   theme.ThemeSelector
	themeFallbacks  map[string]string
	logger          *slog.Logger
	contractCheck   bool
	resultsPath     string
	transformers    []Transformer
	labeler         tree.Labeler
	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		defaultAdapter:  AdapterNative,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Config is the typed form of the widget options: where each document lives
// plus the active choice and item type. Pre-parsed Schema, Store and Profiles
// bypass the loader.
type Config struct {
	Setup   loader.Source
	Values  loader.Source
	Meta    loader.Source
	Chooser loader.Source

	Schema   *schema.Schema
	Store    *values.Store
	Profiles chooser.Set

	// Choice names the active profile. A profile with a SourceRef swaps the
	// setup document for the referenced sibling.
	Choice string
	// ItemType selects the leaf class namespace ("config" or "values").
	ItemType tree.ItemType
	// Format forces a schema adapter instead of detection.
	Format string
	// Component names the OpenAPI component schema to import.
	Component string
	// Title overrides the setup document title.
	Title string
	// Filter prunes nodes hidden by the choice instead of only marking them.
	Filter bool
}

// Result is everything Build produced.
type Result struct {
	Schema   schema.Schema
	Store    *values.Store
	Profiles chooser.Set
	Choice   *chooser.Profile
	Tree     tree.Node
	Warnings []tree.Warning
	Stats    tree.Stats
}

// Request describes a render: the build configuration plus output settings.
type Request struct {
	Config

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// ThemeName and ThemeVariant are passed to the theme selector.
	ThemeName    string
	ThemeVariant string

	// RenderOptions carries per-request data such as backend errors or a
	// subset. Choice, Profiles and Theme are filled in when unset.
	RenderOptions render.RenderOptions
}

// Build loads the documents named by cfg and returns the annotated tree.
func (o *Orchestrator) Build(ctx context.Context, cfg Config) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := o.ready(); err != nil {
		return Result{}, err
	}

	profiles, err := o.resolveProfiles(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	choice := profiles.Resolve(cfg.Choice)

	s, err := o.resolveSchema(ctx, cfg, choice)
	if err != nil {
		return Result{}, err
	}

	store, err := o.resolveStore(ctx, cfg)
	if err != nil {
		return Result{}, err
	}

	var warnings []tree.Warning
	builderOptions := []tree.Option{
		tree.WithItemType(cfg.ItemType),
		tree.WithWarningHandler(func(w tree.Warning) {
			warnings = append(warnings, w)
			o.logger.Warn("tree build warning", "kind", w.Kind, "path", w.Path, "message", w.Message)
		}),
	}
	if o.labeler != nil {
		builderOptions = append(builderOptions, tree.WithLabeler(o.labeler))
	}
	root, err := tree.New(builderOptions...).Build(s, store)
	if err != nil {
		return Result{}, fmt.Errorf("orchestrator: build tree: %w", err)
	}

	if o.contractCheck {
		if err := tree.Verify(s, store, root); err != nil {
			return Result{}, fmt.Errorf("orchestrator: %w", err)
		}
	}

	for _, transformer := range o.transformers {
		if transformer == nil {
			continue
		}
		if err := transformer.Transform(ctx, &root); err != nil {
			return Result{}, fmt.Errorf("orchestrator: transform tree: %w", err)
		}
	}

	if cfg.Filter {
		root = chooser.Filter(root, choice)
	} else {
		root = chooser.Apply(root, choice)
	}

	stats := tree.Measure(root)
	o.logger.Debug("tree built",
		"containers", stats.Containers,
		"leaves", stats.Leaves,
		"warnings", len(warnings),
		"choice", choiceID(choice),
	)

	return Result{
		Schema:   s,
		Store:    store,
		Profiles: profiles,
		Choice:   choice,
		Tree:     root,
		Warnings: warnings,
		Stats:    stats,
	}, nil
}

// Generate builds the tree and renders it with the requested renderer.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	result, err := o.Build(ctx, req.Config)
	if err != nil {
		return nil, err
	}
	return o.Render(ctx, result, req)
}

// Render emits an already built result, filling render options from it.
func (o *Orchestrator) Render(ctx context.Context, result Result, req Request) ([]byte, error) {
	if err := o.ready(); err != nil {
		return nil, err
	}
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	options := req.RenderOptions
	if options.Choice == nil {
		options.Choice = result.Choice
	}
	if len(options.Profiles) == 0 && len(result.Profiles) > 0 {
		options.Profiles = result.Profiles.Sorted()
	}
	if options.Theme == nil && o.themeSelector != nil {
		selection, err := o.themeSelector.Select(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: select theme: %w", err)
		}
		options.Theme = rendererConfig(selection, o.themeFallbacks)
	}

	output, err := renderer.Render(ctx, result.Tree, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Renderers lists the registered renderer names.
func (o *Orchestrator) Renderers() []string {
	if o.registry == nil {
		return nil
	}
	return o.registry.List()
}

func (o *Orchestrator) resolveProfiles(ctx context.Context, cfg Config) (chooser.Set, error) {
	if cfg.Profiles != nil {
		return cfg.Profiles, nil
	}
	if cfg.Chooser == nil {
		return chooser.Set{}, nil
	}
	raw, err := o.load(ctx, cfg.Chooser, "chooser")
	if err != nil {
		return nil, err
	}
	set, err := chooser.ParseSet(raw)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse chooser: %w", err)
	}
	return set, nil
}

func (o *Orchestrator) resolveSchema(ctx context.Context, cfg Config, choice *chooser.Profile) (schema.Schema, error) {
	source := cfg.Setup
	if choice != nil && choice.SourceRef != "" {
		sibling, err := loader.Sibling(cfg.Setup, choice.SourceRef)
		if err != nil {
			return schema.Schema{}, fmt.Errorf("orchestrator: choice %q source: %w", choice.ID, err)
		}
		o.logger.Debug("choice switches setup source", "choice", choice.ID, "source", sibling.Location())
		source = sibling
	} else if cfg.Schema != nil {
		s := *cfg.Schema
		if cfg.Title != "" {
			s.Root.Label = cfg.Title
		}
		return s, nil
	}
	if source == nil {
		return schema.Schema{}, errors.New("orchestrator: setup source or schema is required")
	}

	raw, err := o.load(ctx, source, "setup")
	if err != nil {
		return schema.Schema{}, err
	}
	adapter, err := o.resolveAdapter(cfg.Format, raw)
	if err != nil {
		return schema.Schema{}, err
	}
	s, err := adapter.Parse(ctx, raw, AdapterHints{
		Location:  source.Location(),
		Component: cfg.Component,
		Title:     cfg.Title,
	})
	if err != nil {
		return schema.Schema{}, fmt.Errorf("orchestrator: parse setup with %s adapter: %w", adapter.Name(), err)
	}
	return s, nil
}

func (o *Orchestrator) resolveStore(ctx context.Context, cfg Config) (*values.Store, error) {
	if cfg.Store != nil {
		return cfg.Store, nil
	}

	var decodeOptions []values.DecodeOption
	if o.resultsPath != "" {
		decodeOptions = append(decodeOptions, values.WithResultsPath(o.resultsPath))
	}

	var valueEntries, metaEntries []values.Entry
	if cfg.Values != nil {
		raw, err := o.load(ctx, cfg.Values, "values")
		if err != nil {
			return nil, err
		}
		valueEntries, err = values.Decode(raw, append(decodeOptions, values.WithFormat(formatFor(cfg.Values)))...)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: decode values: %w", err)
		}
	}
	if cfg.Meta != nil {
		raw, err := o.load(ctx, cfg.Meta, "meta")
		if err != nil {
			return nil, err
		}
		metaEntries, err = values.Decode(raw, append(decodeOptions, values.WithFormat(formatFor(cfg.Meta)))...)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: decode meta: %w", err)
		}
	}

	return values.NewStore(values.Merge(valueEntries, metaEntries)), nil
}

func (o *Orchestrator) load(ctx context.Context, src loader.Source, what string) ([]byte, error) {
	if o.loader == nil {
		return nil, errors.New("orchestrator: loader is nil")
	}
	doc, err := o.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load %s: %w", what, err)
	}
	o.logger.Debug("document loaded", "kind", what, "source", src.Location())
	return doc.Raw(), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) ready() error {
	if !o.defaultsApplied {
		o.applyDefaults()
	}
	return o.initialiseErr
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.loader == nil {
		o.loader = internalLoader.New(loader.NewOptions())
	}
	if o.adapters == nil {
		o.adapters = DefaultAdapters()
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	if o.themeFallbacks == nil {
		o.themeFallbacks = defaultThemeFallbacks()
	}
	if o.registry == nil {
		registry, err := DefaultRegistry()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderers: %w", err)
		}
		o.registry = registry
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}

	o.defaultsApplied = true
}

// DefaultRegistry returns a registry holding the html, text and json
// renderers with their default options.
func DefaultRegistry() (*render.Registry, error) {
	registry := render.NewRegistry()
	htmlRenderer, err := html.New()
	if err != nil {
		return registry, err
	}
	for _, renderer := range []render.Renderer{htmlRenderer, text.New(), jsontree.New()} {
		if err := registry.Register(renderer); err != nil {
			return registry, err
		}
	}
	return registry, nil
}

func formatFor(src loader.Source) values.Format {
	location := strings.ToLower(src.Location())
	switch {
	case strings.HasSuffix(location, ".toml"):
		return values.FormatTOML
	case strings.HasSuffix(location, ".yaml"), strings.HasSuffix(location, ".yml"):
		return values.FormatYAML
	default:
		return values.FormatAuto
	}
}

func choiceID(p *chooser.Profile) string {
	if p == nil {
		return ""
	}
	return p.ID
}
