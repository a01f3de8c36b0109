package text

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-configgrid/pkg/chooser"
	"github.com/goliatone/go-configgrid/pkg/render"
	"github.com/goliatone/go-configgrid/pkg/tree"
)

// Option configures the text renderer.
type Option func(*Renderer)

// WithOutput detects the colour profile from w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Renderer) {
		if w != nil {
			r.lg = lipgloss.NewRenderer(w)
		}
	}
}

// WithHelp prints help lines under each field.
func WithHelp(enabled bool) Option {
	return func(r *Renderer) {
		r.showHelp = enabled
	}
}

// WithHidden keeps items the active choice marks hidden.
func WithHidden(enabled bool) Option {
	return func(r *Renderer) {
		r.showHidden = enabled
	}
}

// WithIndent sets the number of spaces per nesting level.
func WithIndent(n int) Option {
	return func(r *Renderer) {
		if n >= 0 {
			r.indent = n
		}
	}
}

// Renderer prints the tree as an indented outline for terminals.
type Renderer struct {
	lg         *lipgloss.Renderer
	indent     int
	showHelp   bool
	showHidden bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a text renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{lg: lipgloss.DefaultRenderer(), indent: 2}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "text"
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

type styles struct {
	title   lipgloss.Style
	caption lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	help    lipgloss.Style
	status  lipgloss.Style
	invalid lipgloss.Style
}

func (r *Renderer) styles(width int) styles {
	return styles{
		title:   r.lg.NewStyle().Bold(true).Underline(true),
		caption: r.lg.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:   r.lg.NewStyle().Width(width),
		value:   r.lg.NewStyle().Foreground(lipgloss.Color("10")),
		help:    r.lg.NewStyle().Faint(true),
		status:  r.lg.NewStyle().Foreground(lipgloss.Color("11")),
		invalid: r.lg.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (r *Renderer) Render(ctx context.Context, root tree.Node, options render.RenderOptions) ([]byte, error) {
	prepared := render.Prepare(root, options)
	st := r.styles(labelWidth(prepared.Root))

	var b strings.Builder
	if prepared.Title != "" {
		b.WriteString(st.title.Render(prepared.Title))
		b.WriteString("\n")
	}
	if options.Choice != nil {
		fmt.Fprintf(&b, "profile: %s\n", options.Choice.Caption)
	}
	for _, message := range prepared.Errors {
		b.WriteString(st.invalid.Render("! " + message))
		b.WriteString("\n")
	}

	if err := r.writeChildren(ctx, &b, prepared.Root, 0, st); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func (r *Renderer) writeChildren(ctx context.Context, b *strings.Builder, node tree.Node, depth int, st styles) error {
	for _, child := range node.Children {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.showHidden && child.HasClass(chooser.ClassHidden) {
			continue
		}
		switch child.Kind {
		case tree.KindContainer:
			if err := r.writeChildren(ctx, b, child, depth, st); err != nil {
				return err
			}
		case tree.KindGroup:
			r.writeGroup(b, child, depth, st)
			for _, list := range child.Children {
				if list.Kind != tree.KindContainer {
					continue
				}
				if err := r.writeChildren(ctx, b, list, depth+1, st); err != nil {
					return err
				}
			}
		case tree.KindField:
			r.writeField(b, child, depth, st)
		}
	}
	return nil
}

func (r *Renderer) writeGroup(b *strings.Builder, group tree.Node, depth int, st styles) {
	pad := strings.Repeat(" ", depth*r.indent)
	caption := group.Path
	for _, child := range group.Children {
		if child.Kind == tree.KindCaption {
			caption = child.Text
		}
	}
	b.WriteString(pad + st.caption.Render(caption))
	if msg := group.Attr("data-error"); msg != "" {
		b.WriteString(" " + st.invalid.Render("! "+msg))
	}
	b.WriteString("\n")
}

func (r *Renderer) writeField(b *strings.Builder, field tree.Node, depth int, st styles) {
	pad := strings.Repeat(" ", depth*r.indent)
	var label, help string
	for _, child := range field.Children {
		switch child.Kind {
		case tree.KindLabel:
			label = child.Text
		case tree.KindHelp:
			help = child.Text
		}
	}

	line := pad + st.label.Render(label) + " " + st.value.Render(field.Value())
	if status := fieldStatus(field); status != "" {
		line += " " + st.status.Render("["+status+"]")
	}
	if msg := field.Attr("data-error"); msg != "" {
		line += " " + st.invalid.Render("! "+msg)
	}
	b.WriteString(line)
	b.WriteString("\n")

	if r.showHelp && help != "" {
		b.WriteString(pad + strings.Repeat(" ", r.indent) + st.help.Render(help))
		b.WriteString("\n")
	}
}

func fieldStatus(field tree.Node) string {
	for _, class := range field.Classes {
		if strings.HasPrefix(class, tree.ClassStatusPrefix) {
			return strings.TrimPrefix(class, tree.ClassStatusPrefix)
		}
	}
	return ""
}

// labelWidth is the widest label, so values line up in one column.
func labelWidth(root tree.Node) int {
	width := 0
	for _, label := range tree.Collect(root, tree.KindLabel) {
		if w := lipgloss.Width(label.Text); w > width {
			width = w
		}
	}
	return width
}
