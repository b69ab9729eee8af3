package ai

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Metrics are the measurements behind a validation decision.
type Metrics struct {
	LengthRatio        float64  `json:"length_ratio"`
	DialogueLineCount  int      `json:"dialogue_line_count"`
	SuspiciousSpeakers []string `json:"suspicious_speakers,omitempty"`
}

// ValidationResult reports whether a model response may be used.
// Identical inputs always produce identical results.
type ValidationResult struct {
	Passed  bool    `json:"passed"`
	Reason  string  `json:"reason,omitempty"`
	Metrics Metrics `json:"metrics"`
}

// Validator rejects model output that added content absent from the
// original: expanded prose, invented dialogue, or generic fabricated
// speakers. It guarantees only that accepted output did not add or
// drop content, not that the structure is good.
type Validator struct {
	MaxLengthRatio    float64
	DialogueTolerance float64
}

func NewValidator(maxLengthRatio, dialogueTolerance float64) *Validator {
	if maxLengthRatio <= 1.0 {
		maxLengthRatio = 1.2
	}
	if dialogueTolerance <= 1.0 {
		dialogueTolerance = 1.5
	}
	return &Validator{MaxLengthRatio: maxLengthRatio, DialogueTolerance: dialogueTolerance}
}

// Generic speaker names models invent when hallucinating Q&A dialogue.
var suspiciousSpeakers = []string{
	"questioner",
	"student",
	"seeker",
	"interviewer",
	"moderator",
	"audience member",
	"disciple",
}

var (
	boldDialogueRe  = regexp.MustCompile(`(?m)^\s*\*\*([^*\n]+)\*\*\s*:`)
	plainDialogueRe = regexp.MustCompile(`(?m)^\s*([A-Z][A-Za-z .'-]{0,40}?)\s*:\s+\S`)
)

// Validate compares a candidate model response against the original
// input. The three checks are independent; any one failing rejects the
// candidate, and every failing check is named in the reason.
func (v *Validator) Validate(original, candidate string) ValidationResult {
	strippedOrig := StripMarkdown(original)
	strippedCand := StripMarkdown(candidate)

	var res ValidationResult
	var failures []string

	// Length ratio: expanded prose is the most common failure mode.
	origLen := len(strippedOrig)
	if origLen == 0 {
		origLen = 1
	}
	res.Metrics.LengthRatio = float64(len(strippedCand)) / float64(origLen)
	if res.Metrics.LengthRatio > v.MaxLengthRatio {
		failures = append(failures, fmt.Sprintf("length ratio %.2f exceeds ceiling %.2f",
			res.Metrics.LengthRatio, v.MaxLengthRatio))
	}

	// Dialogue count: bold speaker lines in the output must not
	// outnumber plain speaker lines in the original beyond tolerance.
	candSpeakers := boldDialogueRe.FindAllStringSubmatch(candidate, -1)
	origDialogue := plainDialogueRe.FindAllStringSubmatch(original, -1)
	res.Metrics.DialogueLineCount = len(candSpeakers)
	allowed := int(float64(len(origDialogue)) * v.DialogueTolerance)
	if len(candSpeakers) > allowed {
		failures = append(failures, fmt.Sprintf("dialogue lines %d exceed original %d (tolerance %.1fx)",
			len(candSpeakers), len(origDialogue), v.DialogueTolerance))
	}

	// Suspicious generic speakers must already exist in the original.
	lowerOrig := strings.ToLower(original)
	found := map[string]bool{}
	for _, m := range candSpeakers {
		name := strings.ToLower(strings.TrimSpace(m[1]))
		for _, sus := range suspiciousSpeakers {
			if name == sus && !strings.Contains(lowerOrig, sus) {
				found[name] = true
			}
		}
	}
	if len(found) > 0 {
		for name := range found {
			res.Metrics.SuspiciousSpeakers = append(res.Metrics.SuspiciousSpeakers, name)
		}
		sort.Strings(res.Metrics.SuspiciousSpeakers)
		failures = append(failures, fmt.Sprintf("suspicious speakers not present in original: %s",
			strings.Join(res.Metrics.SuspiciousSpeakers, ", ")))
	}

	res.Passed = len(failures) == 0
	res.Reason = strings.Join(failures, "; ")
	return res
}

var (
	headingMarkRe = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	quoteMarkRe   = regexp.MustCompile(`(?m)^>\s?`)
	listMarkRe    = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+[.)])\s+`)
	fenceLineRe   = regexp.MustCompile("(?m)^```[^\n]*$")
	emphasisRe    = regexp.MustCompile(`[*_]{1,3}`)
	backtickRe    = regexp.MustCompile("`+")
)

// StripMarkdown removes structural markdown syntax, leaving only the
// text content. Both sides of a comparison are stripped so formatting
// added by the model does not skew length measurements.
func StripMarkdown(s string) string {
	s = fenceLineRe.ReplaceAllString(s, "")
	s = headingMarkRe.ReplaceAllString(s, "")
	s = quoteMarkRe.ReplaceAllString(s, "")
	s = listMarkRe.ReplaceAllString(s, "")
	s = emphasisRe.ReplaceAllString(s, "")
	s = backtickRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
