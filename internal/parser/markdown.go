package parser

import (
	"io"

	"github.com/rgower/typeset/internal/block"
	"github.com/rgower/typeset/internal/classify"
)

// MarkdownParser handles Markdown files. The structure is already
// explicit, so the source arrives fully classified.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Source, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	blocks := classify.Markdown(string(src))

	title := titleFromFilename(filename)
	for _, b := range blocks {
		if b.Kind == block.KindHeading && b.TitleCandidate {
			title = b.Text
			break
		}
	}

	return &Source{Title: title, Blocks: blocks}, nil
}
