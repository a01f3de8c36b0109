package jsontree

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-configgrid/pkg/chooser"
	"github.com/goliatone/go-configgrid/pkg/render"
	"github.com/goliatone/go-configgrid/pkg/tree"
)

// Option configures the JSON renderer.
type Option func(*Renderer)

// WithIndent pretty-prints the document with the given indent.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// WithQuery emits only the part of the document matched by a gjson path
// such as "tree.children.#.id".
func WithQuery(query string) Option {
	return func(r *Renderer) {
		r.query = query
	}
}

// Renderer serialises the prepared tree as JSON for tooling and golden tests.
type Renderer struct {
	indent string
	query  string
}

var _ render.Renderer = (*Renderer)(nil)

// Document is the JSON shape emitted by Render.
type Document struct {
	Title    string            `json:"title,omitempty"`
	Choice   *chooser.Profile  `json:"choice,omitempty"`
	Profiles []chooser.Profile `json:"profiles,omitempty"`
	Errors   []string          `json:"errors,omitempty"`
	Stats    tree.Stats        `json:"stats"`
	Tree     tree.Node         `json:"tree"`
}

func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

func (r *Renderer) Render(ctx context.Context, root tree.Node, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prepared := render.Prepare(root, options)
	doc := Document{
		Title:    prepared.Title,
		Choice:   options.Choice,
		Profiles: options.Profiles,
		Errors:   prepared.Errors,
		Stats:    tree.Measure(prepared.Root),
		Tree:     prepared.Root,
	}

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("jsontree: marshal: %w", err)
	}

	if r.query == "" {
		return out, nil
	}
	result := gjson.GetBytes(out, r.query)
	if !result.Exists() {
		return nil, fmt.Errorf("jsontree: query %q matched nothing", r.query)
	}
	return []byte(result.Raw), nil
}
