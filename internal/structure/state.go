package structure

// ChapterContext tracks the currently open chapter. It is reset every
// time a new chapter heading is recognized.
type ChapterContext struct {
	Name                 string
	StartedAt            int
	ParagraphsSinceStart int
	// Intro marks non-content chapters such as a table of contents
	// or preface. Separators placed after a chapter's last block are
	// suppressed for intro chapters.
	Intro bool
}

// Special names a one-shot document section.
type Special string

const (
	SpecialTitle      Special = "title"
	SpecialDedication Special = "dedication"
	SpecialContents   Special = "contents"
	SpecialPreface    Special = "preface"
	SpecialForeword   Special = "foreword"
)

// SpecialSectionFlags records which one-shot sections have been seen.
// Each flag can be set exactly once per document.
type SpecialSectionFlags struct {
	seen map[Special]bool
}

// Set marks the section as seen and reports whether this was the
// first time.
func (f *SpecialSectionFlags) Set(s Special) bool {
	if f.seen == nil {
		f.seen = make(map[Special]bool)
	}
	if f.seen[s] {
		return false
	}
	f.seen[s] = true
	return true
}

func (f *SpecialSectionFlags) Seen(s Special) bool {
	return f.seen[s]
}

// HierListContext tracks whether the stream is inside a hierarchical
// list section (a numbered list of named items with bullet sub-points).
type HierListContext struct {
	Active       bool
	HeadingLevel int
}

// ConversionState is the running structural context for one document.
// It is created per conversion, mutated strictly in document order,
// and discarded when the conversion completes. Nothing is shared
// between concurrent conversions.
type ConversionState struct {
	InChapter        bool
	Chapter          ChapterContext
	Flags            SpecialSectionFlags
	HierList         HierListContext
	PendingPageBreak bool
	SeenFirstHeading bool
	BlocksEmitted    int
}

func NewConversionState() *ConversionState {
	return &ConversionState{}
}

// OpenChapter closes the previous chapter context and starts a new one.
func (s *ConversionState) OpenChapter(name string, index int, intro bool) {
	s.InChapter = true
	s.Chapter = ChapterContext{Name: name, StartedAt: index, Intro: intro}
}
