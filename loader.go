package configgrid

import (
	internalLoader "github.com/goliatone/go-configgrid/internal/loader"
	"github.com/goliatone/go-configgrid/pkg/loader"
)

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...loader.Option) loader.Loader {
	cfg := loader.NewOptions(options...)
	return internalLoader.New(cfg)
}
