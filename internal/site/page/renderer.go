// Package page renders the single-page site and drives the contact wizard
// through plain form posts.
package page

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const pageTemplate = "page.html"

// Renderer executes the embedded page template.
type Renderer struct {
	set  *pongo2.TemplateSet
	page *pongo2.Template
}

// NewRenderer compiles the templates once; a broken template fails here
// rather than on the first request.
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("page: open templates: %w", err)
	}

	set := pongo2.NewSet("site", pongo2.NewFSLoader(sub))
	page, err := set.FromFile(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("page: load template %q: %w", pageTemplate, err)
	}

	return &Renderer{set: set, page: page}, nil
}

// Render writes the full page to w.
func (r *Renderer) Render(w io.Writer, data pongo2.Context) error {
	if err := r.page.ExecuteWriter(data, w); err != nil {
		return fmt.Errorf("page: render: %w", err)
	}
	return nil
}

// StaticHandler serves the embedded stylesheet under /static/.
func StaticHandler() http.Handler {
	return http.FileServer(http.FS(staticFS))
}
