package loader

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// markdownToText keeps the readable text of a markdown document. Code blocks
// and raw HTML are dropped; link and image targets are not text.
func markdownToText(src []byte) string {
	doc := markdown.Parser().Parse(text.NewReader(src))
	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock, ast.KindRawHTML:
			return ast.WalkSkipChildren, nil
		case ast.KindText:
			if entering {
				t := n.(*ast.Text)
				sb.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					sb.WriteByte('\n')
				}
			}
		case ast.KindString:
			if entering {
				sb.Write(n.(*ast.String).Value)
			}
		case ast.KindParagraph, ast.KindTextBlock, ast.KindHeading, ast.KindBlockquote:
			if !entering {
				sb.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
