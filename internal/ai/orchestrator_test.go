package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
)

// fakeRunner scripts model responses per call.
type fakeRunner struct {
	calls     []call
	responses []func(model, prompt string) (string, error)
}

type call struct {
	model  string
	strict bool
}

func (f *fakeRunner) Run(ctx context.Context, model, prompt string) (string, error) {
	f.calls = append(f.calls, call{model: model, strict: strings.Contains(prompt, "STRICT MODE")})
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next(model, prompt)
}

func respond(out string) func(string, string) (string, error) {
	return func(string, string) (string, error) { return out, nil }
}

func fail(err error) func(string, string) (string, error) {
	return func(string, string) (string, error) { return "", err }
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(r Runner, v *Validator) *Orchestrator {
	return NewOrchestrator(r, v, testLogger(),
		Models{Primary: "primary", Strong: "strong", Fast: "fast"},
		3000, []string{"contents", "table of contents"})
}

func TestOrchestrator_FirstAttemptAccepted(t *testing.T) {
	fr := &fakeRunner{responses: []func(string, string) (string, error){
		respond("# Chapter One\n\nHello world."),
	}}
	o := newTestOrchestrator(fr, nil)

	md, ok := o.Convert(context.Background(), "Chapter One\n\nHello world.")
	if !ok {
		t.Fatal("expected success")
	}
	if !strings.Contains(md, "# Chapter One") {
		t.Errorf("unexpected output %q", md)
	}
	if len(fr.calls) != 1 {
		t.Fatalf("later rungs must not run after a pass, got %d calls", len(fr.calls))
	}
	if fr.calls[0].model != "primary" || fr.calls[0].strict {
		t.Errorf("first rung must be primary/standard, got %+v", fr.calls[0])
	}
}

func TestOrchestrator_LadderEscalationOrder(t *testing.T) {
	fr := &fakeRunner{responses: []func(string, string) (string, error){
		fail(ErrModelTimeout),
		fail(ErrModelRefused),
		fail(errors.New("malformed")),
		respond("# Done\n\ntext"),
	}}
	o := newTestOrchestrator(fr, nil)

	_, ok := o.Convert(context.Background(), "some text")
	if !ok {
		t.Fatal("fourth rung should succeed")
	}

	want := []call{
		{model: "primary", strict: false},
		{model: "primary", strict: true},
		{model: "strong", strict: true},
		{model: "fast", strict: true},
	}
	if len(fr.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(fr.calls))
	}
	for i, w := range want {
		if fr.calls[i] != w {
			t.Errorf("rung %d: got %+v, want %+v", i+1, fr.calls[i], w)
		}
	}
}

func TestOrchestrator_ExhaustionReturnsNotOK(t *testing.T) {
	fr := &fakeRunner{responses: []func(string, string) (string, error){
		fail(ErrModelTimeout),
		fail(ErrModelTimeout),
		fail(ErrModelTimeout),
		fail(ErrModelTimeout),
	}}
	o := newTestOrchestrator(fr, nil)

	if _, ok := o.Convert(context.Background(), "some text"); ok {
		t.Fatal("expected failure after ladder exhaustion")
	}
	if len(fr.calls) != 4 {
		t.Errorf("expected exactly 4 attempts, got %d", len(fr.calls))
	}
}

func TestOrchestrator_UnavailableAbortsImmediately(t *testing.T) {
	fr := &fakeRunner{responses: []func(string, string) (string, error){
		fail(ErrModelUnavailable),
	}}
	o := newTestOrchestrator(fr, nil)

	if _, ok := o.Convert(context.Background(), "some text"); ok {
		t.Fatal("expected failure when the model executable is missing")
	}
	if len(fr.calls) != 1 {
		t.Errorf("no retries make sense with a missing executable, got %d calls", len(fr.calls))
	}
}

func TestOrchestrator_ValidationRejectionAdvancesLadder(t *testing.T) {
	original := "The rain stopped."
	inflated := strings.Repeat("The rain stopped and calm settled over the quiet valley below. ", 4)

	fr := &fakeRunner{responses: []func(string, string) (string, error){
		respond(inflated),
		respond("The rain stopped."),
	}}
	o := newTestOrchestrator(fr, NewValidator(1.2, 1.5))

	md, ok := o.Convert(context.Background(), original)
	if !ok {
		t.Fatal("second rung should pass validation")
	}
	if md != "The rain stopped." {
		t.Errorf("unexpected output %q", md)
	}
	if len(fr.calls) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(fr.calls))
	}
}

func TestOrchestrator_ChunksProcessedSequentially(t *testing.T) {
	// Two paragraphs over the threshold split into two chunks; each
	// returns its own heading.
	text := strings.Repeat("alpha line\n", 12) + "\n" + strings.Repeat("omega line\n", 12)
	n := 0
	fr := &fakeRunner{responses: []func(string, string) (string, error){
		func(_, prompt string) (string, error) {
			n++
			return fmt.Sprintf("## Part %d\n\ncontent", n), nil
		},
		func(_, prompt string) (string, error) {
			n++
			return fmt.Sprintf("## Part %d\n\ncontent", n), nil
		},
	}}
	o := NewOrchestrator(fr, nil, testLogger(), Models{Primary: "p", Strong: "s", Fast: "f"}, 150, nil)

	md, ok := o.Convert(context.Background(), text)
	if !ok {
		t.Fatal("expected success")
	}
	if strings.Index(md, "Part 1") > strings.Index(md, "Part 2") {
		t.Error("chunk results must be concatenated in order")
	}
}

func TestExtractChapterNames(t *testing.T) {
	text := strings.Join([]string{
		"My Book",
		"",
		"Table of Contents",
		"Chapter One .... 5",
		"Chapter Two .... 19",
		"",
		"",
		"Chapter One",
		"Body starts here.",
	}, "\n")

	o := newTestOrchestrator(&fakeRunner{}, nil)
	names, hasTOC := o.ExtractChapterNames(text)
	if !hasTOC {
		t.Fatal("expected a table of contents")
	}
	if len(names) != 2 || names[0] != "Chapter One" || names[1] != "Chapter Two" {
		t.Errorf("unexpected chapter names %v", names)
	}
}

func TestExtractChapterNames_NoTOC(t *testing.T) {
	o := newTestOrchestrator(&fakeRunner{}, nil)
	names, hasTOC := o.ExtractChapterNames("Chapter One\n\nBody.")
	if hasTOC || names != nil {
		t.Errorf("expected no table of contents, got %v", names)
	}
}

func TestCleanDuplicateTopHeadings(t *testing.T) {
	md := "# My Book\n\nIntro.\n\n# My Book\n\nMore text.\n\n# Other\n\nEnd."
	got := CleanDuplicateTopHeadings(md, false)

	if strings.Count(got, "# My Book") != 1 {
		t.Errorf("duplicate top heading not removed:\n%s", got)
	}
	if !strings.Contains(got, "# Other") {
		t.Error("distinct heading must survive")
	}
	for _, content := range []string{"Intro.", "More text.", "End."} {
		if !strings.Contains(got, content) {
			t.Errorf("content %q lost", content)
		}
	}
}

func TestCleanDuplicateTopHeadings_Idempotent(t *testing.T) {
	md := "# Title\n\ntext\n\n# Title\n\nmore"
	once := CleanDuplicateTopHeadings(md, false)
	twice := CleanDuplicateTopHeadings(once, false)
	if once != twice {
		t.Errorf("cleanup not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestCleanDuplicateTopHeadings_TOCKeepsRepeats(t *testing.T) {
	md := "# Chapter One\n\ntext\n\n# Chapter One\n\nmore"
	if got := CleanDuplicateTopHeadings(md, true); got != md {
		t.Error("with a table of contents, repeated headings are legitimate")
	}
}
