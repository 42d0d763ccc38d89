// Package render converts document bodies to HTML and applies layout
// templates to produce final output.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// Converter turns Markdown bodies into HTML fragments.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter builds the Markdown engine. GFM tables/strikethrough and
// autolinks are enabled, and raw HTML passes through: tutorial posts embed
// iframes and code-highlighting markup.
func NewConverter() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(htmlrenderer.WithUnsafe()),
		),
	}
}

// Convert renders a Markdown body (front-matter already removed) to HTML.
// Bodies of .html source files should bypass this and be used verbatim.
func (c *Converter) Convert(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
