package configgrid

import (
	"io/fs"

	"github.com/goliatone/go-configgrid/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in html renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// StylesheetFS exposes the bundled stylesheet so Go applications can serve it
// next to rendered markup.
//
// Typical mount:
//
//	mux.Handle("/configgrid/",
//	  http.StripPrefix("/configgrid/",
//	    http.FileServerFS(configgrid.StylesheetFS()),
//	  ),
//	)
func StylesheetFS() fs.FS {
	return html.AssetsFS()
}
