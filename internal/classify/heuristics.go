package classify

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultNumberedPattern matches numbered list items like "1. " or "2) ".
var DefaultNumberedPattern = regexp.MustCompile(`^\d+[.)]\s+`)

var bulletMarkers = []string{"- ", "* ", "• ", "+ "}

// IsHeadingLine reports whether a raw text line looks like a heading:
// short, title-cased or uppercase, no terminal sentence punctuation and
// not a list item.
func IsHeadingLine(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" || len(s) >= 100 {
		return false
	}
	if IsBulletLine(s) || DefaultNumberedPattern.MatchString(s) {
		return false
	}
	switch s[len(s)-1] {
	case '.', '!', '?', ',', ';', ':':
		return false
	}
	return isTitleCase(s) || isAllUpper(s)
}

// IsBulletLine reports whether a line is a bullet list item. Lines that
// merely start with an asterisk are not bullets when the asterisk is
// markup: "**Name**: ..." dialogue and "*phrase*" pure italics are
// rejected.
func IsBulletLine(line string) bool {
	s := strings.TrimSpace(line)
	if strings.HasPrefix(s, "**") {
		return false
	}
	if strings.HasPrefix(s, "*") && !strings.HasPrefix(s, "* ") &&
		strings.HasSuffix(s, "*") && len(s) > 2 {
		return false
	}
	for _, m := range bulletMarkers {
		if strings.HasPrefix(s, m) {
			return true
		}
	}
	return false
}

// BulletText strips the bullet marker from a list item line.
func BulletText(line string) string {
	s := strings.TrimSpace(line)
	for _, m := range bulletMarkers {
		if strings.HasPrefix(s, m) {
			return strings.TrimSpace(s[len(m):])
		}
	}
	return s
}

// IsSeparatorLine reports whether a line is a decorative rule such as
// "---", "***" or "* * *".
func IsSeparatorLine(line string) bool {
	s := strings.ReplaceAll(strings.TrimSpace(line), " ", "")
	if len(s) < 3 {
		return false
	}
	for _, r := range s {
		switch r {
		case '-', '*', '_', '=', '~':
		default:
			return false
		}
	}
	return true
}

// HasNonLatin reports whether a string contains transliterated or
// non-Latin spans: combining diacritical marks, Latin letters with
// diacritics, or letters from non-Latin Unicode blocks. Such spans get
// italic emphasis in the block stream.
func HasNonLatin(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Mn) {
			return true
		}
		if r > unicode.MaxASCII && unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// isTitleCase reports whether every word starts with an uppercase
// letter (single lowercase connectives like "of" are tolerated).
func isTitleCase(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	upper := 0
	for _, w := range words {
		r := firstLetter(w)
		if r == 0 {
			continue
		}
		if unicode.IsUpper(r) {
			upper++
		} else if len(w) > 3 {
			// A long lowercase word means body text, not a title.
			return false
		}
	}
	return upper > 0 && upper*2 >= len(words)
}

func isAllUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsLower(r) {
			return false
		}
	}
	return letters > 0
}

func firstLetter(w string) rune {
	for _, r := range w {
		if unicode.IsLetter(r) {
			return r
		}
	}
	return 0
}
