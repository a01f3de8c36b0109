package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-configgrid/pkg/openapi"
	"github.com/goliatone/go-configgrid/pkg/schema"
)

// Built-in adapter names.
const (
	AdapterNative  = "configgrid"
	AdapterOpenAPI = "openapi"
)

// AdapterHints carries request details a SchemaAdapter may need.
type AdapterHints struct {
	// Location names the source for error messages.
	Location string
	// Component selects the OpenAPI component schema to import.
	Component string
	// Title overrides the document title.
	Title string
}

// SchemaAdapter turns a raw setup document into a schema.
type SchemaAdapter interface {
	Name() string
	Detect(raw []byte) bool
	Parse(ctx context.Context, raw []byte, hints AdapterHints) (schema.Schema, error)
}

// AdapterRegistry stores schema adapters by name.
type AdapterRegistry struct {
	mu       sync.RWMutex
	adapters map[string]SchemaAdapter
}

// NewAdapterRegistry creates an empty adapter registry.
func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{
		adapters: make(map[string]SchemaAdapter),
	}
}

// DefaultAdapters returns a registry holding the native and OpenAPI adapters.
func DefaultAdapters() *AdapterRegistry {
	registry := NewAdapterRegistry()
	registry.MustRegister(NativeAdapter{})
	registry.MustRegister(OpenAPIAdapter{})
	return registry
}

// Register adds an adapter by its Name(). Duplicate names return an error.
func (r *AdapterRegistry) Register(adapter SchemaAdapter) error {
	if adapter == nil {
		return fmt.Errorf("orchestrator: adapter is required")
	}
	name := normalizeAdapterName(adapter.Name())
	if name == "" {
		return fmt.Errorf("orchestrator: adapter name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("orchestrator: adapter %q already registered", name)
	}

	r.adapters[name] = adapter
	return nil
}

// MustRegister panics on registration failure.
func (r *AdapterRegistry) MustRegister(adapter SchemaAdapter) {
	if err := r.Register(adapter); err != nil {
		panic(err)
	}
}

// Get retrieves an adapter by name.
func (r *AdapterRegistry) Get(name string) (SchemaAdapter, error) {
	key := normalizeAdapterName(name)
	if key == "" {
		return nil, fmt.Errorf("orchestrator: adapter name is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[key]
	if !ok {
		return nil, fmt.Errorf("orchestrator: adapter %q not found", key)
	}
	return adapter, nil
}

// List returns a sorted list of adapter names.
func (r *AdapterRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect returns all adapters that claim the payload, ordered by name.
func (r *AdapterRegistry) Detect(raw []byte) []SchemaAdapter {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	var matches []SchemaAdapter
	for _, name := range names {
		if adapter := r.adapters[name]; adapter != nil && adapter.Detect(raw) {
			matches = append(matches, adapter)
		}
	}
	return matches
}

func normalizeAdapterName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NativeAdapter parses the JSON/YAML setup document format
// ({"title", "definitions", "config"}).
type NativeAdapter struct{}

func (NativeAdapter) Name() string { return AdapterNative }

// Detect claims everything the OpenAPI adapter does not.
func (NativeAdapter) Detect(raw []byte) bool { return !openapi.Detect(raw) }

func (NativeAdapter) Parse(ctx context.Context, raw []byte, hints AdapterHints) (schema.Schema, error) {
	if err := ctx.Err(); err != nil {
		return schema.Schema{}, err
	}
	doc, err := schema.ParseDocument(raw, hints.Location)
	if err != nil {
		return schema.Schema{}, err
	}
	if hints.Title != "" {
		doc.Title = hints.Title
	}
	return doc.Schema(), nil
}

// OpenAPIAdapter imports a component schema from an OpenAPI 3 document.
type OpenAPIAdapter struct {
	// Validate runs kin-openapi document validation before importing.
	Validate bool
}

func (OpenAPIAdapter) Name() string { return AdapterOpenAPI }

func (OpenAPIAdapter) Detect(raw []byte) bool { return openapi.Detect(raw) }

func (a OpenAPIAdapter) Parse(ctx context.Context, raw []byte, hints AdapterHints) (schema.Schema, error) {
	var opts []openapi.Option
	if a.Validate {
		opts = append(opts, openapi.WithValidation())
	}
	if hints.Title != "" {
		opts = append(opts, openapi.WithTitle(hints.Title))
	}
	return openapi.Import(ctx, raw, hints.Component, opts...)
}
