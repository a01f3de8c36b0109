package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-configgrid/pkg/render"
	rendertemplate "github.com/goliatone/go-configgrid/pkg/render/template"
	"github.com/goliatone/go-configgrid/pkg/render/template/pongo"
	"github.com/goliatone/go-configgrid/pkg/tree"
)

// StylesheetAssetKey is the theme asset key consulted for an external
// stylesheet. When the theme resolves it, the bundled CSS is not inlined.
const StylesheetAssetKey = "configgrid.stylesheet"

type Option func(*config)

type config struct {
	templateFS   fs.FS
	document     bool
	inlineStyles bool
}

// WithTemplatesFS supplies an alternate template bundle. It must provide
// node.tpl, grid.tpl and page.tpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithDocument wraps the grid in a standalone HTML page.
func WithDocument(enabled bool) Option {
	return func(cfg *config) {
		cfg.document = enabled
	}
}

// WithInlineStyles controls whether the bundled stylesheet is inlined when no
// theme stylesheet is available.
func WithInlineStyles(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = enabled
	}
}

// Renderer emits the render tree as HTML: ul/li lists, span captions and
// label/input pairs, carrying every id, class and attribute of the tree.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	document     bool
	inlineStyles bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), inlineStyles: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	engine, err := pongo.New(pongo.WithFS(cfg.templateFS))
	if err != nil {
		return nil, fmt.Errorf("html renderer: configure templates: %w", err)
	}

	return &Renderer{
		templates:    engine,
		document:     cfg.document,
		inlineStyles: cfg.inlineStyles,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, root tree.Node, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	prepared := render.Prepare(root, options)
	body, err := r.renderNode(ctx, prepared.Root)
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"title":  prepared.Title,
		"errors": prepared.Errors,
		"body":   body,
	}
	if options.Choice != nil {
		data["choice"] = options.Choice
	}
	if len(options.Profiles) > 0 {
		data["profiles"] = options.Profiles
	}
	stylesheet := ""
	if cfg := options.Theme; cfg != nil {
		data["theme_name"] = cfg.Theme
		data["theme_variant"] = cfg.Variant
		data["css_vars"] = cssVars(cfg)
		if cfg.AssetURL != nil {
			stylesheet = cfg.AssetURL(StylesheetAssetKey)
		}
	}
	if stylesheet != "" {
		data["stylesheet"] = stylesheet
	} else if r.inlineStyles {
		data["inline_styles"] = defaultStylesheet()
	}

	grid, err := r.templates.Render("grid", data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render grid: %w", err)
	}
	if !r.document {
		return []byte(grid), nil
	}

	page, err := r.templates.Render("page", map[string]any{
		"title": prepared.Title,
		"grid":  grid,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render page: %w", err)
	}
	return []byte(page), nil
}

func (r *Renderer) renderNode(ctx context.Context, node tree.Node) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var markup strings.Builder
	if node.Kind == tree.KindHelp {
		markup.WriteString(helpMarkup(node.Text))
	} else {
		for _, child := range node.Children {
			rendered, err := r.renderNode(ctx, child)
			if err != nil {
				return "", err
			}
			markup.WriteString(rendered)
		}
	}

	text := node.Text
	if node.Kind == tree.KindHelp {
		text = ""
	}

	attrs := make([]map[string]string, 0, len(node.Attrs))
	for _, name := range node.AttrNames() {
		attrs = append(attrs, map[string]string{"name": name, "value": node.Attrs[name]})
	}

	out, err := r.templates.Render("node", map[string]any{
		"element": elementName(node),
		"id":      node.ID,
		"classes": strings.Join(node.Classes, " "),
		"attrs":   attrs,
		"void":    isVoid(node.Element),
		"text":    text,
		"markup":  markup.String(),
	})
	if err != nil {
		return "", fmt.Errorf("html renderer: render %s: %w", node.ID, err)
	}
	return strings.TrimRight(out, "\n"), nil
}

func elementName(node tree.Node) string {
	if node.Element != "" {
		return node.Element
	}
	switch node.Kind {
	case tree.KindContainer:
		return "ul"
	case tree.KindGroup, tree.KindField:
		return "li"
	case tree.KindLabel:
		return "label"
	case tree.KindInput:
		return "input"
	case tree.KindHelp:
		return "p"
	default:
		return "span"
	}
}

func isVoid(element string) bool {
	switch element {
	case "input", "br", "hr", "img", "meta", "link":
		return true
	default:
		return false
	}
}

// cssVars flattens theme variables into an inline style declaration with
// stable ordering.
func cssVars(cfg *theme.RendererConfig) string {
	vars := cfg.CSSVars
	if len(vars) == 0 && len(cfg.Tokens) > 0 {
		vars = make(map[string]string, len(cfg.Tokens))
		for key, value := range cfg.Tokens {
			vars[key] = value
		}
	}
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	decls := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimSpace(key)
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		decls = append(decls, name+": "+vars[key])
	}
	return strings.Join(decls, "; ")
}
