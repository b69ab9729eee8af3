package structure

import (
	"strings"

	"github.com/rgower/typeset/internal/block"
)

// Role is the structural role assigned to a block.
type Role string

const (
	RoleTitle      Role = "title"
	RoleSection    Role = "section"
	RoleChapter    Role = "chapter"
	RoleSubheading Role = "subheading"
	RoleBody       Role = "body"
)

// Remapper decides the target heading tier for each Heading block.
// Source documents use level-1 headings for both chapters and generic
// top headings, so chapters are promoted to a fixed tier and deeper
// headings are shifted down to make room.
type Remapper struct {
	titleKeywords   []string
	sectionKeywords []string
	chapterKeywords []string
	singleChapter   bool
}

func NewRemapper(titleKeywords, sectionKeywords, chapterKeywords []string, singleChapter bool) *Remapper {
	return &Remapper{
		titleKeywords:   lowerAll(titleKeywords),
		sectionKeywords: lowerAll(sectionKeywords),
		chapterKeywords: lowerAll(chapterKeywords),
		singleChapter:   singleChapter,
	}
}

// Map assigns a role and render level to a heading. Rules are checked
// top to bottom and the first match wins:
//
//	title keyword                    -> Title, level 0
//	section or part keyword          -> Section, level 1
//	first heading in single-chapter
//	mode, chapter keyword, or
//	source level 1                   -> Chapter, level 2
//	anything else                    -> Subheading, source level + 1
//	                                    capped at 6
func (r *Remapper) Map(h block.Block, firstHeading bool) (Role, int) {
	lower := strings.ToLower(h.Text)

	if matchAny(lower, r.titleKeywords) {
		return RoleTitle, 0
	}
	if matchAny(lower, r.sectionKeywords) {
		return RoleSection, 1
	}
	if (firstHeading && r.singleChapter) || matchAny(lower, r.chapterKeywords) || h.Level == 1 {
		return RoleChapter, 2
	}
	level := h.Level + 1
	if level > 6 {
		level = 6
	}
	return RoleSubheading, level
}

func matchAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
