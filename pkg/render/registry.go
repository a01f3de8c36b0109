package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownRenderer is returned by Get for names nothing registered.
var ErrUnknownRenderer = errors.New("render: unknown renderer")

// Registry stores renderers under their lowercased Name(). The orchestrator
// resolves output formats ("html", "text", "json") through it.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Renderer)}
}

func registryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds renderer. Names are case-insensitive and must be unique.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	key := registryKey(renderer.Name())
	if key == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[key]; taken {
		return fmt.Errorf("render: renderer %q already registered", key)
	}
	r.byName[key] = renderer
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get returns the renderer registered as name. Missing names wrap
// ErrUnknownRenderer and list what is available.
func (r *Registry) Get(name string) (Renderer, error) {
	if renderer, ok := r.Lookup(name); ok {
		return renderer, nil
	}
	return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownRenderer, name, strings.Join(r.List(), ", "))
}

// Lookup is Get without the error.
func (r *Registry) Lookup(name string) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.byName[registryKey(name)]
	return renderer, ok
}

// List returns the registered names sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// ContentType returns the media type the named renderer emits, or
// "application/octet-stream" when it is unknown.
func (r *Registry) ContentType(name string) string {
	if renderer, ok := r.Lookup(name); ok {
		if contentType := renderer.ContentType(); contentType != "" {
			return contentType
		}
	}
	return "application/octet-stream"
}
