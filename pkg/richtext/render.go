// Package richtext renders markdown as HTML for pasting into rich text
// editors. Editors drop stylesheets on paste, so styling is inlined on each
// element.
package richtext

import (
	"bytes"
	"fmt"

	"github.com/yosssi/gohtml"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts GitHub flavored markdown to HTML. Raw HTML in the
// source is passed through. A Renderer is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer with tables, strikethrough, autolinks and
// task lists enabled.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts markdown to an HTML fragment.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// RenderStyled converts markdown to HTML with sheet inlined.
func (r *Renderer) RenderStyled(markdown string, sheet Stylesheet) (string, error) {
	out, err := r.Render(markdown)
	if err != nil {
		return "", err
	}
	return Annotate(out, sheet)
}

// FormatHTML pretty-prints HTML with stable indentation.
func FormatHTML(src string) string {
	return gohtml.Format(src)
}
