package ai

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
)

// Attempt is one rung of the escalation ladder.
type Attempt struct {
	Model  string
	Strict bool
	Number int
}

// Models names the tiers available to the ladder.
type Models struct {
	Primary string
	Strong  string
	Fast    string
}

// Orchestrator drives the model-assisted conversion: chunking,
// per-chunk escalation, validation, and reassembly. Chunks are
// processed strictly in order, one model call at a time.
type Orchestrator struct {
	runner           Runner
	validator        *Validator
	logger           *slog.Logger
	ladder           []Attempt
	chunkThreshold   int
	contentsKeywords []string

	// OnProgress, when set, is invoked before every model call with
	// the zero-based chunk index, total chunk count, and attempt
	// number.
	OnProgress func(chunk, total, attempt int)
}

func NewOrchestrator(runner Runner, validator *Validator, logger *slog.Logger, models Models, chunkThreshold int, contentsKeywords []string) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if chunkThreshold <= 0 {
		chunkThreshold = 3000
	}
	return &Orchestrator{
		runner:    runner,
		validator: validator,
		logger:    logger,
		ladder: []Attempt{
			{Model: models.Primary, Strict: false, Number: 1},
			{Model: models.Primary, Strict: true, Number: 2},
			{Model: models.Strong, Strict: true, Number: 3},
			{Model: models.Fast, Strict: true, Number: 4},
		},
		chunkThreshold:   chunkThreshold,
		contentsKeywords: lowerAll(contentsKeywords),
	}
}

// Ladder returns a copy of the escalation ladder.
func (o *Orchestrator) Ladder() []Attempt {
	out := make([]Attempt, len(o.ladder))
	copy(out, o.ladder)
	return out
}

// Convert runs the full model-assisted path over a document. It
// returns ok=false when any chunk exhausts the ladder or the model is
// unavailable; the caller then falls back to the rule-based converter
// for the whole document.
func (o *Orchestrator) Convert(ctx context.Context, text string) (string, bool) {
	chapterNames, hasTOC := o.ExtractChapterNames(text)
	chunks := SplitChunks(text, o.chunkThreshold)

	o.logger.Info("starting model conversion",
		"chunks", len(chunks),
		"chars", len(text),
		"toc_chapters", len(chapterNames))

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		out, ok := o.convertChunk(ctx, chunk, chapterNames, i, len(chunks))
		if !ok {
			return "", false
		}
		parts = append(parts, out)
	}

	md := strings.Join(parts, "\n\n")
	md = CleanDuplicateTopHeadings(md, hasTOC)
	return md, true
}

func (o *Orchestrator) convertChunk(ctx context.Context, chunk string, chapterNames []string, index, total int) (string, bool) {
	for _, attempt := range o.ladder {
		if ctx.Err() != nil {
			return "", false
		}
		if o.OnProgress != nil {
			o.OnProgress(index, total, attempt.Number)
		}

		prompt := BuildPrompt(chunk, attempt.Strict, chapterNames)
		out, err := o.runner.Run(ctx, attempt.Model, prompt)
		if err != nil {
			if errors.Is(err, ErrModelUnavailable) {
				o.logger.Warn("model unavailable, abandoning model conversion", "error", err)
				return "", false
			}
			o.logger.Warn("model attempt failed",
				"chunk", index+1,
				"of", total,
				"attempt", attempt.Number,
				"model", attempt.Model,
				"strict", attempt.Strict,
				"error", err)
			continue
		}

		if o.validator != nil {
			res := o.validator.Validate(chunk, out)
			if !res.Passed {
				o.logger.Warn("model response rejected",
					"chunk", index+1,
					"of", total,
					"attempt", attempt.Number,
					"model", attempt.Model,
					"reason", res.Reason,
					"length_ratio", res.Metrics.LengthRatio)
				continue
			}
		}

		o.logger.Info("chunk converted",
			"chunk", index+1,
			"of", total,
			"attempt", attempt.Number,
			"model", attempt.Model)
		return out, true
	}

	o.logger.Error("escalation ladder exhausted", "chunk", index+1, "of", total)
	return "", false
}

var tocTrailerRe = regexp.MustCompile(`[.\s]*\d*\s*$`)

// ExtractChapterNames scans the document once for a table of contents
// and returns the chapter names listed there. The second return is
// true when a table of contents heading was found, even if it listed
// nothing usable.
func (o *Orchestrator) ExtractChapterNames(text string) ([]string, bool) {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || len(trimmed) >= 100 {
			continue
		}
		if containsAny(trimmed, o.contentsKeywords) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, false
	}

	var names []string
	blanks := 0
	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			blanks++
			if len(names) > 0 && blanks > 1 {
				break
			}
			continue
		}
		blanks = 0
		if len(trimmed) >= 100 {
			break
		}
		name := strings.TrimSpace(tocTrailerRe.ReplaceAllString(trimmed, ""))
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, true
}

var topHeadingRe = regexp.MustCompile(`^#\s+(.+)$`)

// CleanDuplicateTopHeadings drops repeated top-level headings that
// chunk boundaries can introduce, keeping the first occurrence of each.
// Applying it twice gives the same result as applying it once. When
// the document has a table of contents the heading names came from it,
// so repeats are intentional and nothing is removed.
func CleanDuplicateTopHeadings(md string, hasTOC bool) string {
	if hasTOC {
		return md
	}

	lines := strings.Split(md, "\n")
	seen := map[string]bool{}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if m := topHeadingRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			key := strings.ToLower(strings.Join(strings.Fields(m[1]), " "))
			if seen[key] {
				// Drop the duplicate and avoid stacking blank lines.
				if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
					out = out[:len(out)-1]
				}
				continue
			}
			seen[key] = true
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
