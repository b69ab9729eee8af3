package ai

import (
	"regexp"
	"strings"

	"github.com/rgower/typeset/internal/block"
	"github.com/rgower/typeset/internal/classify"
)

// Fallback is the deterministic rule-based converter used when every
// model attempt was rejected. It produces the same block types as the
// markdown classifier without any external call.
type Fallback struct {
	chapterKeywords []string
	quoteKeywords   []string
	numbered        *regexp.Regexp
}

func NewFallback(chapterKeywords, openingQuoteKeywords []string, numberedPattern string) *Fallback {
	re := classify.DefaultNumberedPattern
	if numberedPattern != "" {
		if compiled, err := regexp.Compile(numberedPattern); err == nil {
			re = compiled
		}
	}
	return &Fallback{
		chapterKeywords: lowerAll(chapterKeywords),
		quoteKeywords:   lowerAll(openingQuoteKeywords),
		numbered:        re,
	}
}

// Convert structures plain text into a block stream in one stateful
// pass. allowTopTier is false for non-first chunks: there, only the
// first heading may reach the top tier, so chunk boundaries cannot
// produce duplicate top-level titles.
func (f *Fallback) Convert(text string, allowTopTier bool) []block.Block {
	var (
		blocks     []block.Block
		paraLines  []string
		listItems  []string
		listOrder  bool
		quoteArmed bool
		quoteLines []string
		sawHeading bool
	)

	flushPara := func() {
		if len(paraLines) == 0 {
			return
		}
		t := strings.Join(paraLines, "\n")
		if classify.HasNonLatin(t) {
			blocks = append(blocks, block.StyledParagraph(block.InlineRun{Text: t, Italic: true}))
		} else {
			blocks = append(blocks, block.Paragraph(t))
		}
		paraLines = nil
	}
	flushList := func() {
		if len(listItems) == 0 {
			return
		}
		blocks = append(blocks, block.List(listOrder, listItems...))
		listItems = nil
	}
	flushQuote := func() {
		if len(quoteLines) > 0 {
			q := block.Blockquote(quoteLines...)
			q.OpeningQuote = true
			blocks = append(blocks, q)
			quoteLines = nil
		}
		quoteArmed = false
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			flushPara()
			flushList()
			if len(quoteLines) > 0 {
				flushQuote()
			}
			continue
		}

		if quoteArmed {
			if classify.IsSeparatorLine(trimmed) {
				flushQuote()
				continue
			}
			if len(trimmed) < 100 && classify.HasNonLatin(trimmed) {
				quoteLines = append(quoteLines, trimmed)
				if len(quoteLines) == 3 {
					flushQuote()
				}
				continue
			}
			flushQuote()
		}

		if classify.IsSeparatorLine(trimmed) {
			flushPara()
			flushList()
			continue
		}

		if classify.IsHeadingLine(trimmed) {
			flushPara()
			flushList()
			level := 2
			if containsAny(trimmed, f.chapterKeywords) {
				level = 1
			}
			// In a non-first chunk only the first heading may sit at
			// the top tier; later ones would duplicate a title the
			// previous chunk already emitted.
			if level == 1 && !allowTopTier && sawHeading {
				level = 2
			}
			h := block.Heading(level, trimmed)
			if !sawHeading && allowTopTier && level == 1 {
				h.TitleCandidate = true
			}
			sawHeading = true
			blocks = append(blocks, h)
			if containsAny(trimmed, f.quoteKeywords) {
				quoteArmed = true
			}
			continue
		}

		if classify.IsBulletLine(trimmed) {
			flushPara()
			if listOrder {
				flushList()
			}
			listOrder = false
			listItems = append(listItems, classify.BulletText(trimmed))
			continue
		}

		if f.numbered.MatchString(trimmed) {
			flushPara()
			if !listOrder {
				flushList()
			}
			listOrder = true
			listItems = append(listItems, trimmed)
			continue
		}

		// A plain line breaks the numbered-item pattern.
		flushList()
		paraLines = append(paraLines, line)
	}

	flushPara()
	flushList()
	flushQuote()
	return blocks
}

func containsAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
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
