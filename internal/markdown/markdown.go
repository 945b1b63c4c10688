// Package markdown renders answer text to HTML for the chat transcript.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown source to HTML. Code blocks are highlighted with chroma, and
// GFM extensions (tables, strikethrough, autolinks) are enabled. The zero value is not
// usable; create one with New.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer configured for chat output.
func New() Renderer {
	return Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("monokai"),
				),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
	}
}

// Render converts markdown source to HTML. Raw HTML in the source is not passed through;
// goldmark escapes it, which keeps model output from injecting markup into the page.
func (r Renderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}
