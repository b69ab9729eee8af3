package styles

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogLookup(t *testing.T) {
	cat := Default()

	title := cat.For("title", 0)
	if title.SizePt != 28 || !title.Bold || title.Align != "center" {
		t.Errorf("unexpected title style %+v", title)
	}

	chapter := cat.For("chapter", 2)
	if chapter.SizePt != 18 || !chapter.Bold {
		t.Errorf("unexpected chapter style %+v", chapter)
	}

	body := cat.For("body", 0)
	if body.Align != "justify" || body.Bold {
		t.Errorf("unexpected body style %+v", body)
	}
}

func TestCatalogLevelFallback(t *testing.T) {
	cat := Default()

	// Unknown role resolves through the render level.
	if got := cat.For("mystery", 2); got != cat.For("chapter", 2) {
		t.Errorf("level 2 should resolve to chapter style, got %+v", got)
	}
	if got := cat.For("mystery", 4); got != cat.For("h4", 4) {
		t.Errorf("level 4 should resolve to h4 style, got %+v", got)
	}

	// Level with no catalog entry falls back to body.
	if got := cat.For("mystery", 9); got != cat.For("body", 0) {
		t.Errorf("unknown level should fall back to body, got %+v", got)
	}
}

const sampleStylesXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Heading1">
    <w:name w:val="Heading 1"/>
    <w:rPr>
      <w:rFonts w:ascii="Garamond"/>
      <w:b/>
      <w:sz w:val="48"/>
    </w:rPr>
    <w:pPr>
      <w:jc w:val="center"/>
    </w:pPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Normal">
    <w:name w:val="Normal"/>
    <w:rPr>
      <w:rFonts w:ascii="Garamond"/>
      <w:sz w:val="24"/>
    </w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Quote">
    <w:name w:val="Quote"/>
    <w:rPr>
      <w:i/>
    </w:rPr>
  </w:style>
</w:styles>`

func TestParseStyles(t *testing.T) {
	parsed, err := parseStyles([]byte(sampleStylesXML))
	if err != nil {
		t.Fatalf("parseStyles failed: %v", err)
	}

	h1, ok := parsed["Heading 1"]
	if !ok {
		t.Fatal("expected Heading 1 style")
	}
	if h1.Font != "Garamond" {
		t.Errorf("expected font Garamond, got %q", h1.Font)
	}
	if h1.SizePt != 24 {
		t.Errorf("expected 24pt (48 half-points), got %f", h1.SizePt)
	}
	if !h1.Bold {
		t.Error("expected bold")
	}
	if h1.Align != "center" {
		t.Errorf("expected center alignment, got %q", h1.Align)
	}

	quote, ok := parsed["Quote"]
	if !ok {
		t.Fatal("expected Quote style")
	}
	if !quote.Italic {
		t.Error("expected italic quote")
	}
}

func TestFromTemplateOverlaysDefaults(t *testing.T) {
	path := writeTemplate(t, sampleStylesXML)

	cat, err := FromTemplate(path)
	if err != nil {
		t.Fatalf("FromTemplate failed: %v", err)
	}

	section := cat.For("section", 1)
	if section.Font != "Garamond" || section.SizePt != 24 {
		t.Errorf("expected Heading 1 overlay on section, got %+v", section)
	}

	body := cat.For("body", 0)
	if body.Font != "Garamond" || body.SizePt != 12 {
		t.Errorf("expected Normal overlay on body, got %+v", body)
	}
	// Alignment absent from the template keeps the default.
	if body.Align != "justify" {
		t.Errorf("expected default body alignment, got %q", body.Align)
	}

	// Styles not in the template keep their default descriptors.
	chapter := cat.For("chapter", 2)
	if chapter.Font != "Georgia" || chapter.SizePt != 18 {
		t.Errorf("expected untouched chapter style, got %+v", chapter)
	}
}

func TestFromTemplateMissingStylesPart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := FromTemplate(path); err == nil {
		t.Error("expected error for archive without word/styles.xml")
	}
}

func writeTemplate(t *testing.T, stylesXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/styles.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(stylesXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}
