package block

import "strings"

// Kind identifies the variant of a Block. The set is closed: every
// consumer switches over all kinds.
type Kind string

const (
	KindHeading    Kind = "heading"
	KindParagraph  Kind = "paragraph"
	KindBlockquote Kind = "blockquote"
	KindList       Kind = "list"
	KindTable      Kind = "table"
	KindCode       Kind = "code"
)

// InlineRun is a span of paragraph text with inline formatting.
type InlineRun struct {
	Text   string `json:"text"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
	Code   bool   `json:"code,omitempty"`
	Link   string `json:"link,omitempty"`
}

// Block is the tagged union flowing through the conversion pipeline.
// Only the fields belonging to Kind are meaningful; the rest stay zero.
// Blocks are immutable once classified: structural processing attaches
// role metadata around them but never rewrites their text content.
type Block struct {
	Kind Kind `json:"kind"`

	// Heading fields.
	Level          int  `json:"level,omitempty"`
	TitleCandidate bool `json:"title_candidate,omitempty"`

	// Heading text, paragraph fallback text, code content.
	Text string `json:"text,omitempty"`

	// Paragraph inline spans. When empty, Text carries the paragraph.
	Runs []InlineRun `json:"runs,omitempty"`

	// Blockquote fields.
	Lines        []string `json:"lines,omitempty"`
	OpeningQuote bool     `json:"opening_quote,omitempty"`

	// List fields.
	Ordered bool     `json:"ordered,omitempty"`
	Items   []string `json:"items,omitempty"`

	// Table fields.
	Rows [][]string `json:"rows,omitempty"`
}

// Heading builds a heading block.
func Heading(level int, text string) Block {
	return Block{Kind: KindHeading, Level: level, Text: text}
}

// Paragraph builds a plain paragraph block.
func Paragraph(text string) Block {
	return Block{Kind: KindParagraph, Text: text}
}

// StyledParagraph builds a paragraph from inline runs.
func StyledParagraph(runs ...InlineRun) Block {
	return Block{Kind: KindParagraph, Runs: runs, Text: joinRuns(runs)}
}

// Blockquote builds a quote block from its lines.
func Blockquote(lines ...string) Block {
	return Block{Kind: KindBlockquote, Lines: lines}
}

// List builds a list block.
func List(ordered bool, items ...string) Block {
	return Block{Kind: KindList, Ordered: ordered, Items: items}
}

// Code builds a code block.
func Code(text string) Block {
	return Block{Kind: KindCode, Text: text}
}

func joinRuns(runs []InlineRun) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// PlainText returns the block's text content with no markup, in
// document order.
func (b Block) PlainText() string {
	switch b.Kind {
	case KindHeading, KindParagraph, KindCode:
		return b.Text
	case KindBlockquote:
		return strings.Join(b.Lines, "\n")
	case KindList:
		return strings.Join(b.Items, "\n")
	case KindTable:
		var sb strings.Builder
		for i, row := range b.Rows {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(strings.Join(row, " "))
		}
		return sb.String()
	}
	return ""
}

// StreamText flattens a block stream into its concatenated text
// content. Structural classification must never reorder content, so
// for any input the non-whitespace characters of StreamText match the
// non-whitespace characters of the source.
func StreamText(blocks []Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.PlainText())
	}
	return sb.String()
}
