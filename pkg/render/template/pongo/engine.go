package pongo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-configgrid/pkg/render/template"
)

// Extension is appended to template names that do not already carry it.
const Extension = ".tpl"

// Option configures the engine before construction.
type Option func(*Engine)

// WithFS loads templates from files.
func WithFS(files fs.FS) Option {
	return func(e *Engine) {
		e.files = files
	}
}

// Engine executes the node, grid and page templates on a pongo2 template
// set. Output is autoescaped; trusted markup goes through the safe filter.
type Engine struct {
	files fs.FS
	set   *pongo2.TemplateSet
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. A template filesystem is required.
func New(options ...Option) (*Engine, error) {
	engine := &Engine{}
	for _, opt := range options {
		if opt != nil {
			opt(engine)
		}
	}
	if engine.files == nil {
		return nil, errors.New("pongo: template filesystem is required")
	}
	engine.set = pongo2.NewSet("configgrid", pongo2.NewFSLoader(engine.files))
	return engine, nil
}

// Render executes the template called name ("node" loads node.tpl). A name
// containing template tags is executed inline instead.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is not initialised")
	}
	if !strings.HasSuffix(name, Extension) {
		name += Extension
	}
	// FromCache parses each file once per set.
	tmpl, err := e.set.FromCache(name)
	if err != nil {
		return "", fmt.Errorf("pongo: load template %q: %w", name, err)
	}
	return execute(tmpl, name, data, out)
}

// RenderString executes inline template source.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is not initialised")
	}
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("pongo: parse inline template: %w", err)
	}
	return execute(tmpl, "inline", data, out)
}

func execute(tmpl *pongo2.Template, name string, data any, out []io.Writer) (string, error) {
	ctx := pongo2.Context{}
	switch v := data.(type) {
	case nil:
	case pongo2.Context:
		ctx = v
	case map[string]any:
		ctx = v
	default:
		return "", fmt.Errorf("pongo: template %q needs map data, got %T", name, data)
	}

	rendered, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("pongo: execute template %q: %w", name, err)
	}
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}
