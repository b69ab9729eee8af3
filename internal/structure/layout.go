package structure

import (
	"regexp"
	"strings"

	"github.com/rgower/typeset/internal/block"
	"github.com/rgower/typeset/internal/classify"
)

// Element is a classified block with its role metadata: the render
// tier and the page-break and separator decisions made at chapter
// boundaries. The sink renders elements in order and never needs the
// conversion state that produced them.
type Element struct {
	Block           block.Block `json:"block"`
	Role            Role        `json:"role"`
	RenderLevel     int         `json:"render_level"`
	PageBreakBefore bool        `json:"page_break_before,omitempty"`
	SeparatorBefore bool        `json:"separator_before,omitempty"`
	SeparatorAfter  bool        `json:"separator_after,omitempty"`
	InHierList      bool        `json:"in_hier_list,omitempty"`
}

// Options configures the structural pass.
type Options struct {
	TitleKeywords      []string
	SectionKeywords    []string
	ChapterKeywords    []string
	DedicationKeywords []string
	ContentsKeywords   []string
	PrefaceKeywords    []string

	BreakBeforeSections bool
	BreakBeforeChapters bool

	SeparatorEnabled  bool
	SeparatorPosition string // "before" or "after"

	HierListEnabled  bool
	HierListKeywords []string
	NumberedPattern  string

	SingleChapter bool
}

// Arranger applies the chapter state machine, the heading remapper,
// and the separator and page-break policy to a block stream.
type Arranger struct {
	opts     Options
	remapper *Remapper
	numbered *regexp.Regexp

	dedication []string
	contents   []string
	preface    []string
	hierList   []string
}

func NewArranger(opts Options) *Arranger {
	re := classify.DefaultNumberedPattern
	if opts.NumberedPattern != "" {
		if compiled, err := regexp.Compile(opts.NumberedPattern); err == nil {
			re = compiled
		}
	}
	return &Arranger{
		opts:       opts,
		remapper:   NewRemapper(opts.TitleKeywords, opts.SectionKeywords, opts.ChapterKeywords, opts.SingleChapter),
		numbered:   re,
		dedication: lowerAll(opts.DedicationKeywords),
		contents:   lowerAll(opts.ContentsKeywords),
		preface:    lowerAll(opts.PrefaceKeywords),
		hierList:   lowerAll(opts.HierListKeywords),
	}
}

// Arrange walks the block stream in order, threading an explicit
// ConversionState through each block, and returns the elements with
// all boundary decisions resolved. Text content is passed through
// unmodified and never reordered.
func (a *Arranger) Arrange(blocks []block.Block) []Element {
	state := NewConversionState()
	out := make([]Element, 0, len(blocks))

	for i, b := range blocks {
		if b.Kind == block.KindHeading {
			out = append(out, a.arrangeHeading(state, b, i, out))
		} else {
			out = append(out, a.arrangeBody(state, b))
		}
		state.BlocksEmitted++
	}

	// Final close for the last open chapter.
	if state.InChapter && len(out) > 0 && a.separatorAfter() && !state.Chapter.Intro {
		out[len(out)-1].SeparatorAfter = true
	}
	return out
}

func (a *Arranger) arrangeHeading(state *ConversionState, b block.Block, index int, out []Element) Element {
	role, level := a.remapper.Map(b, !state.SeenFirstHeading)
	state.SeenFirstHeading = true

	lower := strings.ToLower(b.Text)
	special := a.specialOf(lower)
	intro := special == SpecialContents || special == SpecialPreface || special == SpecialForeword

	el := Element{Block: b, Role: role, RenderLevel: level}

	if role == RoleTitle {
		state.Flags.Set(SpecialTitle)
	}

	switch {
	case special != "" && special != SpecialTitle:
		// Dedication, contents, and similar short sections defer
		// their page break until the next major section begins, so
		// they do not strand on their own page.
		if state.Flags.Set(special) {
			state.PendingPageBreak = true
		}
	case role == RoleChapter || role == RoleSection:
		first := state.BlocksEmitted == 0
		wantBreak := (role == RoleChapter && a.opts.BreakBeforeChapters) ||
			(role == RoleSection && a.opts.BreakBeforeSections)
		if !first && (wantBreak || state.PendingPageBreak) {
			el.PageBreakBefore = true
		}
		state.PendingPageBreak = false
	}

	if role == RoleChapter {
		a.placeSeparator(state, &el, out)
		state.OpenChapter(b.Text, index, intro)
	}

	// Hierarchical list sections open on a matching heading and close
	// on any heading at the same tier or above.
	if a.opts.HierListEnabled {
		if state.HierList.Active && level <= state.HierList.HeadingLevel {
			state.HierList = HierListContext{}
		}
		if matchAny(lower, a.hierList) {
			state.HierList = HierListContext{Active: true, HeadingLevel: level}
		}
	}
	return el
}

func (a *Arranger) arrangeBody(state *ConversionState, b block.Block) Element {
	el := Element{Block: b, Role: RoleBody, RenderLevel: 0}

	if state.InChapter && b.Kind == block.KindParagraph {
		state.Chapter.ParagraphsSinceStart++
	}

	if state.HierList.Active {
		switch b.Kind {
		case block.KindList:
			el.InHierList = true
		case block.KindParagraph:
			if a.numbered.MatchString(b.Text) {
				el.InHierList = true
			} else {
				// A plain paragraph breaks the numbered-item pattern.
				state.HierList = HierListContext{}
			}
		}
	}
	return el
}

// placeSeparator marks exactly one separator per chapter boundary,
// either on the incoming chapter heading or on the previous chapter's
// last block. After-position separators are skipped following intro
// sections such as a table of contents.
func (a *Arranger) placeSeparator(state *ConversionState, el *Element, out []Element) {
	if !a.opts.SeparatorEnabled || !state.InChapter {
		return
	}
	if a.separatorAfter() {
		if !state.Chapter.Intro && len(out) > 0 {
			out[len(out)-1].SeparatorAfter = true
		}
		return
	}
	el.SeparatorBefore = true
}

func (a *Arranger) separatorAfter() bool {
	return a.opts.SeparatorEnabled && a.opts.SeparatorPosition == "after"
}

func (a *Arranger) specialOf(lower string) Special {
	switch {
	case matchAny(lower, a.dedication):
		return SpecialDedication
	case matchAny(lower, a.contents):
		return SpecialContents
	case matchAny(lower, a.preface):
		return SpecialPreface
	}
	return ""
}
