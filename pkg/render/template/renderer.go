package template

import (
	"io"
)

// TemplateRenderer executes named templates for the HTML renderer. Output is
// returned and, when writers are supplied, copied to each of them.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderString(source string, data any, out ...io.Writer) (string, error)
}
