package ai

import "strings"

// SplitChunks splits text at line boundaries so no chunk exceeds the
// character limit. Lines are never cut; a single oversize line forms
// its own chunk. Paragraph boundaries fall on blank lines, so in
// practice splits land between paragraphs.
func SplitChunks(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	lines := strings.Split(text, "\n")
	var chunks []string
	var current []string
	size := 0

	for _, line := range lines {
		lineSize := len(line) + 1
		if size+lineSize > limit && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = []string{line}
			size = lineSize
		} else {
			current = append(current, line)
			size += lineSize
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}
