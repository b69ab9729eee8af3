package classify

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/rgower/typeset/internal/block"
)

// Markdown classifies markdown source into an ordered block stream.
// No text content is lost or reordered; only container metadata is
// added.
func Markdown(source string) []block.Block {
	src := []byte(source)
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	var blocks []block.Block
	firstHeading := true

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			h := block.Heading(node.Level, string(node.Text(src)))
			if firstHeading && node.Level == 1 {
				h.TitleCandidate = true
			}
			firstHeading = false
			blocks = append(blocks, h)

		case *ast.Paragraph:
			runs := inlineRuns(node, src)
			if len(runs) == 0 {
				continue
			}
			p := block.StyledParagraph(runs...)
			tagTransliterated(&p)
			blocks = append(blocks, p)

		case *ast.Blockquote:
			q := blockquoteOf(node, src)
			if len(q.Lines) > 0 {
				blocks = append(blocks, q)
			}

		case *ast.List:
			l := listOf(node, src)
			if len(l.Items) > 0 {
				blocks = append(blocks, l)
			}

		case *ast.FencedCodeBlock:
			blocks = append(blocks, block.Code(rawLines(node, src)))

		case *ast.CodeBlock:
			blocks = append(blocks, block.Code(rawLines(node, src)))

		case *east.Table:
			t := tableOf(node, src)
			if len(t.Rows) > 0 {
				blocks = append(blocks, t)
			}

		case *ast.ThematicBreak:
			// Decorative rule, no text content to carry.

		default:
			if t := textOf(n, src); t != "" {
				blocks = append(blocks, block.Paragraph(t))
			}
		}
	}
	return blocks
}

// tagTransliterated marks an otherwise unstyled paragraph containing
// diacritics or non-Latin script for italic emphasis.
func tagTransliterated(p *block.Block) {
	if !HasNonLatin(p.Text) {
		return
	}
	for _, r := range p.Runs {
		if r.Bold || r.Italic || r.Code || r.Link != "" {
			return
		}
	}
	for i := range p.Runs {
		p.Runs[i].Italic = true
	}
}

func blockquoteOf(node *ast.Blockquote, src []byte) block.Block {
	var lines []string
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		t := textOf(c, src)
		if t == "" {
			continue
		}
		lines = append(lines, strings.Split(t, "\n")...)
	}
	return block.Blockquote(lines...)
}

func listOf(node *ast.List, src []byte) block.Block {
	l := block.Block{Kind: block.KindList, Ordered: node.IsOrdered()}
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		if t := textOf(c, src); t != "" {
			l.Items = append(l.Items, t)
		}
	}
	return l
}

func tableOf(node *east.Table, src []byte) block.Block {
	t := block.Block{Kind: block.KindTable}
	for r := node.FirstChild(); r != nil; r = r.NextSibling() {
		var row []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			row = append(row, textOf(c, src))
		}
		if len(row) > 0 {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// inlineRuns walks a block node's inline children and produces styled
// spans in source order.
func inlineRuns(n ast.Node, src []byte) []block.InlineRun {
	var runs []block.InlineRun
	collectRuns(n, src, block.InlineRun{}, &runs)
	return runs
}

func collectRuns(n ast.Node, src []byte, style block.InlineRun, out *[]block.InlineRun) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			r := style
			r.Text = string(node.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				r.Text += "\n"
			}
			appendRun(out, r)
		case *ast.String:
			r := style
			r.Text = string(node.Value)
			appendRun(out, r)
		case *ast.Emphasis:
			nested := style
			if node.Level >= 2 {
				nested.Bold = true
			} else {
				nested.Italic = true
			}
			collectRuns(c, src, nested, out)
		case *ast.CodeSpan:
			r := style
			r.Code = true
			r.Text = string(node.Text(src))
			appendRun(out, r)
		case *ast.Link:
			nested := style
			nested.Link = string(node.Destination)
			collectRuns(c, src, nested, out)
		case *ast.AutoLink:
			r := style
			url := string(node.URL(src))
			r.Text = url
			r.Link = url
			appendRun(out, r)
		default:
			collectRuns(c, src, style, out)
		}
	}
}

func appendRun(out *[]block.InlineRun, r block.InlineRun) {
	if r.Text == "" {
		return
	}
	*out = append(*out, r)
}

// rawLines returns the raw source lines of a code block.
func rawLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

// textOf gets the plain text content of a node, including nested
// inlines and sub-blocks.
func textOf(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if t, ok := n.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
			return
		}
		if s, ok := n.(*ast.String); ok {
			buf.Write(s.Value)
			return
		}
		if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if c.Type() == ast.TypeBlock && c != n.FirstChild() {
				buf.WriteByte('\n')
			}
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
