package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text files. The text is kept flat; all
// structure is inferred downstream.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Source, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Source{
		Title: titleFromFilename(filename),
		Text:  strings.Join(lines, "\n"),
	}, nil
}
