package ingest

import (
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownToText flattens markdown content into plain text for the labeller.
// Fenced code blocks are skipped; they dominate keyword frequencies without
// describing the article.
func MarkdownToText(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(source))

	var builder strings.Builder
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.CodeBlock:
			return ast.SkipChildren
		case *ast.Text:
			builder.Write(n.Literal)
			builder.WriteByte(' ')
		case *ast.Code:
			builder.Write(n.Literal)
			builder.WriteByte(' ')
		}
		return ast.GoToNext
	})

	return strings.Join(strings.Fields(builder.String()), " ")
}
