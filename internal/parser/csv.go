package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rgower/typeset/internal/block"
)

// CSVParser handles CSV files. The whole file becomes one Table
// block with the first row as the header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Source, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	src := &Source{Title: titleFromFilename(filename)}
	if len(records) == 0 {
		return src, nil
	}

	src.Blocks = []block.Block{{Kind: block.KindTable, Rows: records}}
	return src, nil
}
