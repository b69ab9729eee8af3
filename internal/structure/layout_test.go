package structure

import (
	"strings"
	"testing"

	"github.com/rgower/typeset/internal/block"
)

func testOptions() Options {
	return Options{
		TitleKeywords:       []string{"title"},
		SectionKeywords:     []string{"section", "part"},
		ChapterKeywords:     []string{"chapter"},
		DedicationKeywords:  []string{"dedication", "dedicated to"},
		ContentsKeywords:    []string{"contents", "table of contents"},
		PrefaceKeywords:     []string{"preface", "foreword"},
		BreakBeforeChapters: true,
		SeparatorPosition:   "before",
		HierListEnabled:     true,
		HierListKeywords:    []string{"roles", "principles"},
	}
}

func chapterDoc() []block.Block {
	return []block.Block{
		block.Heading(1, "Chapter One"),
		block.Paragraph("Hello world."),
		block.Heading(1, "Chapter Two"),
		block.Paragraph("Goodbye."),
	}
}

func TestArrange_ChapterPageBreaks(t *testing.T) {
	a := NewArranger(testOptions())
	els := a.Arrange(chapterDoc())

	if len(els) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(els))
	}
	if els[0].Role != RoleChapter || els[0].RenderLevel != 2 {
		t.Errorf("expected chapter role, got %+v", els[0])
	}
	if els[0].PageBreakBefore {
		t.Error("no page break before the first element")
	}
	if els[2].Role != RoleChapter || !els[2].PageBreakBefore {
		t.Errorf("expected page break before the second chapter, got %+v", els[2])
	}
	if els[1].Block.Text != "Hello world." || els[3].Block.Text != "Goodbye." {
		t.Error("paragraph text must pass through unmodified")
	}
}

func TestArrange_ChapterBoundaryInvariant(t *testing.T) {
	// Every chapter heading except the first gets exactly one break.
	blocks := []block.Block{
		block.Heading(1, "Chapter One"),
		block.Paragraph("a"),
		block.Heading(1, "Chapter Two"),
		block.Paragraph("b"),
		block.Heading(1, "Chapter Three"),
		block.Paragraph("c"),
	}
	a := NewArranger(testOptions())
	els := a.Arrange(blocks)

	breaks := 0
	for i, el := range els {
		if el.PageBreakBefore {
			breaks++
			if el.Role != RoleChapter {
				t.Errorf("element %d: break on non-chapter %+v", i, el)
			}
		}
	}
	if breaks != 2 {
		t.Errorf("expected 2 page breaks for 3 chapters, got %d", breaks)
	}
}

func TestArrange_SeparatorBefore(t *testing.T) {
	opts := testOptions()
	opts.SeparatorEnabled = true
	a := NewArranger(opts)
	els := a.Arrange(chapterDoc())

	if els[0].SeparatorBefore {
		t.Error("no separator before the first chapter, there is no boundary yet")
	}
	if !els[2].SeparatorBefore {
		t.Error("expected separator before the second chapter")
	}
	total := 0
	for _, el := range els {
		if el.SeparatorBefore {
			total++
		}
		if el.SeparatorAfter {
			t.Errorf("after-separators must not appear in before mode: %+v", el)
		}
	}
	if total != 1 {
		t.Errorf("exactly one separator per boundary, got %d", total)
	}
}

func TestArrange_SeparatorAfter(t *testing.T) {
	opts := testOptions()
	opts.SeparatorEnabled = true
	opts.SeparatorPosition = "after"
	a := NewArranger(opts)
	els := a.Arrange(chapterDoc())

	// The previous chapter's last content block carries the mark.
	if !els[1].SeparatorAfter {
		t.Errorf("expected separator after %q, got %+v", els[1].Block.Text, els[1])
	}
	// Final close marks the last block of the last chapter.
	if !els[3].SeparatorAfter {
		t.Errorf("expected closing separator after %q, got %+v", els[3].Block.Text, els[3])
	}
}

func TestArrange_AfterSeparatorSuppressedForIntroSections(t *testing.T) {
	opts := testOptions()
	opts.SeparatorEnabled = true
	opts.SeparatorPosition = "after"
	a := NewArranger(opts)

	blocks := []block.Block{
		block.Heading(1, "Table of Contents"),
		block.Paragraph("Chapter One ... 5"),
		block.Heading(1, "Chapter One"),
		block.Paragraph("Body."),
	}
	els := a.Arrange(blocks)
	if els[1].SeparatorAfter {
		t.Error("no separator after a table of contents")
	}
}

func TestArrange_DeferredPageBreakFromSpecialSection(t *testing.T) {
	a := NewArranger(testOptions())
	blocks := []block.Block{
		block.Heading(1, "Chapter One"),
		block.Paragraph("Body."),
		block.Heading(2, "Dedication"),
		block.Paragraph("Dedicated to the reader."),
		block.Heading(3, "A Sub Heading"),
		block.Paragraph("More."),
		block.Heading(1, "Chapter Two"),
	}
	els := a.Arrange(blocks)

	// The dedication heading itself carries no break.
	if els[2].PageBreakBefore {
		t.Error("special sections defer their page break")
	}
	// Headings that are neither chapters nor sections never break.
	if els[4].PageBreakBefore {
		t.Error("sub-headings never carry a page break")
	}
	// The deferred break lands on the next major section.
	if !els[6].PageBreakBefore {
		t.Error("deferred break must land on the next chapter")
	}
}

func TestArrange_HierarchicalListTracking(t *testing.T) {
	a := NewArranger(testOptions())
	blocks := []block.Block{
		block.Heading(2, "The Five Roles"),
		block.Paragraph("1. The Listener"),
		block.List(false, "hears without judging", "waits"),
		block.Paragraph("2. The Speaker"),
		block.Heading(2, "Closing Notes"),
		block.List(false, "a plain list"),
	}
	els := a.Arrange(blocks)

	for i := 1; i <= 3; i++ {
		if !els[i].InHierList {
			t.Errorf("element %d should be inside the hierarchical list: %+v", i, els[i])
		}
	}
	// An equal-level heading exits the mode.
	if els[5].InHierList {
		t.Error("list after the closing heading is not hierarchical")
	}
}

func TestArrange_HierarchicalListExitsOnPlainParagraph(t *testing.T) {
	a := NewArranger(testOptions())
	blocks := []block.Block{
		block.Heading(2, "Principles"),
		block.Paragraph("1. First principle"),
		block.Paragraph("An ordinary paragraph breaks the pattern."),
		block.List(false, "unrelated"),
	}
	els := a.Arrange(blocks)

	if !els[1].InHierList {
		t.Error("numbered paragraph belongs to the hierarchical list")
	}
	if els[2].InHierList || els[3].InHierList {
		t.Error("plain paragraph must end hierarchical-list mode")
	}
}

func TestArrange_OrderPreservation(t *testing.T) {
	blocks := []block.Block{
		block.Heading(1, "Title"),
		block.Blockquote("Sanskrit quote"),
		block.Paragraph("Translation"),
		block.Paragraph("Body"),
	}
	a := NewArranger(testOptions())
	els := a.Arrange(blocks)

	var texts []string
	for _, el := range els {
		texts = append(texts, el.Block.PlainText())
	}
	joined := strings.Join(texts, "\n")
	want := block.StreamText(blocks)
	if joined != want {
		t.Errorf("arrangement reordered content:\nwant %q\ngot  %q", want, joined)
	}
}

func TestArrange_ParagraphCountTracksChapter(t *testing.T) {
	// White-box check that chapter context resets per chapter.
	state := NewConversionState()
	state.OpenChapter("One", 0, false)
	state.Chapter.ParagraphsSinceStart = 7
	state.OpenChapter("Two", 8, false)
	if state.Chapter.Name != "Two" || state.Chapter.ParagraphsSinceStart != 0 {
		t.Errorf("chapter context must reset on open, got %+v", state.Chapter)
	}
}

func TestSpecialSectionFlags_OneShot(t *testing.T) {
	var f SpecialSectionFlags
	if !f.Set(SpecialDedication) {
		t.Error("first set must succeed")
	}
	if f.Set(SpecialDedication) {
		t.Error("second set must report already seen")
	}
	if !f.Seen(SpecialDedication) {
		t.Error("flag must be recorded")
	}
	if f.Seen(SpecialContents) {
		t.Error("unrelated flag must stay unset")
	}
}
