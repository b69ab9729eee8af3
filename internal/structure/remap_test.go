package structure

import (
	"testing"

	"github.com/rgower/typeset/internal/block"
)

func newTestRemapper(singleChapter bool) *Remapper {
	return NewRemapper(
		[]string{"title"},
		[]string{"section", "part"},
		[]string{"chapter"},
		singleChapter,
	)
}

func TestRemapper_DecisionOrder(t *testing.T) {
	r := newTestRemapper(false)

	tests := []struct {
		name      string
		heading   block.Block
		wantRole  Role
		wantLevel int
	}{
		{"title keyword wins", block.Heading(3, "Title Page"), RoleTitle, 0},
		{"section keyword", block.Heading(2, "Part Two"), RoleSection, 1},
		{"chapter keyword", block.Heading(3, "Chapter Seven"), RoleChapter, 2},
		{"source level one is a chapter", block.Heading(1, "The Beginning"), RoleChapter, 2},
		{"deep heading shifts down", block.Heading(3, "A Subsection"), RoleSubheading, 4},
		{"shift caps at six", block.Heading(6, "Tiny Heading"), RoleSubheading, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, level := r.Map(tt.heading, false)
			if role != tt.wantRole || level != tt.wantLevel {
				t.Errorf("Map(%q) = (%s, %d), want (%s, %d)",
					tt.heading.Text, role, level, tt.wantRole, tt.wantLevel)
			}
		})
	}
}

func TestRemapper_TitleBeatsChapter(t *testing.T) {
	// "title" is checked before "chapter" when both match.
	r := NewRemapper([]string{"title"}, nil, []string{"chapter"}, false)
	role, level := r.Map(block.Heading(1, "Title of the Chapter"), false)
	if role != RoleTitle || level != 0 {
		t.Errorf("expected title role, got (%s, %d)", role, level)
	}
}

func TestRemapper_SingleChapterFirstHeading(t *testing.T) {
	r := newTestRemapper(true)

	role, level := r.Map(block.Heading(4, "An Unmarked Opening"), true)
	if role != RoleChapter || level != 2 {
		t.Errorf("first heading in single-chapter mode must be a chapter, got (%s, %d)", role, level)
	}

	role, level = r.Map(block.Heading(4, "An Unmarked Opening"), false)
	if role != RoleSubheading || level != 5 {
		t.Errorf("later headings keep normal rules, got (%s, %d)", role, level)
	}
}
