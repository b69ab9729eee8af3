package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rgower/typeset/internal/block"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no parser
	// handles.
	ErrUnsupportedFormat = errors.New("unsupported input format")
	// ErrEmptyInput is returned when a supported file yields no
	// usable content.
	ErrEmptyInput = errors.New("input contains no text content")
)

// Source is the parsed form of an input document. Inputs with
// explicit structure (markdown, docx, html, csv) arrive as blocks;
// flat inputs (plain text, pdf) arrive as raw text and go through
// structural inference.
type Source struct {
	Title  string
	Text   string
	Blocks []block.Block
}

// NeedsStructuring reports whether the source still requires the
// model-assisted or rule-based converter.
func (s *Source) NeedsStructuring() bool {
	return len(s.Blocks) == 0
}

// Parser converts raw document bytes into a Source.
type Parser interface {
	Parse(r io.Reader, filename string) (*Source, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Parse picks the parser for the filename, runs it, and rejects
// sources with no content. Format and emptiness errors are detected
// here, before any structuring work starts.
func Parse(r io.Reader, filename string) (*Source, error) {
	p, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	src, err := p.Parse(r, filename)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(src.Text) == "" && len(src.Blocks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyInput, filename)
	}
	return src, nil
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
