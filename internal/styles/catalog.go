package styles

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Descriptor is the resolved visual style for one render tier. The
// structural core never interprets these values; they ride along with
// the element to the document sink.
type Descriptor struct {
	Font   string  `json:"font,omitempty"`
	SizePt float64 `json:"size_pt,omitempty"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
	Align  string  `json:"align,omitempty"`
}

// Catalog maps role names and heading levels to style descriptors.
type Catalog struct {
	byKey map[string]Descriptor
}

// Default returns the built-in catalog used when no reference template
// is configured.
func Default() *Catalog {
	return &Catalog{byKey: map[string]Descriptor{
		"title":    {Font: "Georgia", SizePt: 28, Bold: true, Align: "center"},
		"section":  {Font: "Georgia", SizePt: 22, Bold: true, Align: "center"},
		"chapter":  {Font: "Georgia", SizePt: 18, Bold: true, Align: "left"},
		"h3":       {Font: "Georgia", SizePt: 15, Bold: true, Align: "left"},
		"h4":       {Font: "Georgia", SizePt: 13, Bold: true, Align: "left"},
		"h5":       {Font: "Georgia", SizePt: 12, Bold: true, Italic: true, Align: "left"},
		"h6":       {Font: "Georgia", SizePt: 11, Italic: true, Align: "left"},
		"body":     {Font: "Georgia", SizePt: 11, Align: "justify"},
		"epigraph": {Font: "Georgia", SizePt: 11, Italic: true, Align: "left"},
	}}
}

// For resolves a style by role name, falling back to the render level
// and then to the body style.
func (c *Catalog) For(role string, level int) Descriptor {
	if d, ok := c.byKey[role]; ok {
		return d
	}
	switch level {
	case 0:
		if d, ok := c.byKey["title"]; ok {
			return d
		}
	case 1:
		if d, ok := c.byKey["section"]; ok {
			return d
		}
	case 2:
		if d, ok := c.byKey["chapter"]; ok {
			return d
		}
	default:
		if d, ok := c.byKey[fmt.Sprintf("h%d", level)]; ok {
			return d
		}
	}
	return c.byKey["body"]
}

// FromTemplate builds a catalog from a reference .docx template,
// overlaying styles found in word/styles.xml onto the defaults. Only
// the title, heading, and normal paragraph styles are consulted.
func FromTemplate(path string) (*Catalog, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", path, err)
	}
	defer zr.Close()

	data, err := readZipFile(&zr.Reader, "word/styles.xml")
	if err != nil {
		return nil, err
	}

	parsed, err := parseStyles(data)
	if err != nil {
		return nil, fmt.Errorf("parse styles.xml: %w", err)
	}

	cat := Default()
	for name, d := range parsed {
		for _, key := range catalogKeys(name) {
			base := cat.byKey[key]
			cat.byKey[key] = overlay(base, d)
		}
	}
	return cat, nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file %s not found in archive", name)
}

// parseStyles extracts font, size, weight, and alignment per style
// name from a WordprocessingML styles part.
func parseStyles(data []byte) (map[string]Descriptor, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	out := make(map[string]Descriptor)

	var inStyle bool
	var name string
	var current Descriptor

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "style":
				inStyle = true
				name = ""
				current = Descriptor{}
			case "name":
				if inStyle && name == "" {
					name = attrVal(t, "val")
				}
			case "rFonts":
				if inStyle {
					current.Font = attrVal(t, "ascii")
				}
			case "sz":
				if inStyle {
					// WordprocessingML sizes are half-points.
					if half, err := strconv.Atoi(attrVal(t, "val")); err == nil {
						current.SizePt = float64(half) / 2
					}
				}
			case "b":
				if inStyle {
					current.Bold = boolVal(t)
				}
			case "i":
				if inStyle {
					current.Italic = boolVal(t)
				}
			case "jc":
				if inStyle {
					current.Align = attrVal(t, "val")
				}
			}
		case xml.EndElement:
			if t.Name.Local == "style" && inStyle {
				if name != "" {
					out[name] = current
				}
				inStyle = false
			}
		}
	}
	return out, nil
}

func catalogKeys(styleName string) []string {
	switch styleName {
	case "Title":
		return []string{"title"}
	case "heading 1", "Heading 1":
		return []string{"section"}
	case "heading 2", "Heading 2":
		return []string{"chapter"}
	case "heading 3", "Heading 3":
		return []string{"h3"}
	case "heading 4", "Heading 4":
		return []string{"h4"}
	case "heading 5", "Heading 5":
		return []string{"h5"}
	case "heading 6", "Heading 6":
		return []string{"h6"}
	case "Normal":
		return []string{"body"}
	case "Quote", "Intense Quote":
		return []string{"epigraph"}
	}
	return nil
}

func overlay(base, d Descriptor) Descriptor {
	if d.Font != "" {
		base.Font = d.Font
	}
	if d.SizePt > 0 {
		base.SizePt = d.SizePt
	}
	if d.Bold {
		base.Bold = true
	}
	if d.Italic {
		base.Italic = true
	}
	if d.Align != "" {
		base.Align = d.Align
	}
	return base
}

func attrVal(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func boolVal(el xml.StartElement) bool {
	v := attrVal(el, "val")
	return v == "" || (v != "0" && v != "false")
}
