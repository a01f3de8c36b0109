package render

import (
	"context"

	"github.com/goliatone/go-configgrid/pkg/tree"
)

// Renderer converts a render tree into a byte representation (HTML, terminal
// text, JSON). Implementations must not modify root.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, root tree.Node, options RenderOptions) ([]byte, error)
}
