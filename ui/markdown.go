package ui

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderMarkdown turns a verdict explanation into HTML. Raw HTML in the source is
// dropped since explanations come from a remote service.
func renderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(markdown.ToHTML([]byte(src), p, r))
}
