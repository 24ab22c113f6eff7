// Package markdown renders a translated Markdown document as a standalone
// HTML page.
package markdown

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ToPage renders md as a complete HTML page with the given title. Links
// open in a new tab.
func ToPage(md []byte, title string) string {
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.CompletePage,
		Title: title,
	})
	// A parser carries state and must not be reused across documents.
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Attributes)
	return string(markdown.Render(p.Parse(md), renderer))
}
