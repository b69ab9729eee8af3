package ai

import (
	"fmt"
	"strings"
)

const basePrompt = `Convert the following plain text to well-structured markdown format.

Instructions:
1. Identify and mark headings based on context and formatting cues
2. Detect lists (both bulleted and numbered) and format appropriately
3. Recognize quotes, citations, and special blocks
4. Preserve all original text content exactly
5. Add markdown formatting only where it enhances structure
6. Use heading levels (# ## ###) based on document hierarchy
7. Format code blocks if you detect code snippets
8. Identify tables and convert to markdown table format

Important:
- Do not add any content that wasn't in the original
- Maintain the original tone and style
- Focus on structure, not rewriting
- If the text already has clear structure, preserve it

Return ONLY the markdown formatted text. Do not include any explanations, apologies, or commentary. Start directly with the converted markdown.`

const strictAddendum = `

STRICT MODE: fabrication is a hard failure.
- Output must contain exactly the sentences of the input, no more.
- NEVER invent dialogue. If the input has "John: hello" do not add
  "**Mary**: hi there" unless Mary's line exists in the input.
- NEVER expand, summarize, or paraphrase a sentence.
- Wrong: input "The rain stopped." -> output "The rain stopped, and a
  gentle calm settled over the valley." (added content)
- Right: input "The rain stopped." -> output "The rain stopped."
- If you are unsure whether a line is a heading, leave it as a plain
  paragraph rather than altering it.`

// BuildPrompt assembles the structuring prompt for one chunk. Chapter
// names extracted from the document's table of contents are passed
// into every chunk identically so headings stay consistent across
// chunk boundaries.
func BuildPrompt(text string, strict bool, chapterNames []string) string {
	var sb strings.Builder
	sb.WriteString(basePrompt)
	if strict {
		sb.WriteString(strictAddendum)
	}
	if len(chapterNames) > 0 {
		sb.WriteString("\n\nThe document's table of contents lists these chapters; use these exact names, each as a level-1 heading, when they appear in the text:\n")
		for _, name := range chapterNames {
			fmt.Fprintf(&sb, "- %s\n", name)
		}
	}
	sb.WriteString("\n\nText to convert:\n---\n")
	sb.WriteString(text)
	sb.WriteString("\n---")
	return sb.String()
}
