package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// Runner executes one model call and returns the raw text response.
type Runner interface {
	Run(ctx context.Context, model, prompt string) (string, error)
}

// CLIRunner invokes the model as a local subprocess:
//
//	<path> --model <id> --print <prompt>
//
// Success is exit code 0 with non-empty stdout. Each call is bounded
// by a wall-clock timeout; a timed-out call contributes no output.
type CLIRunner struct {
	Path    string
	Timeout time.Duration
	Stats   *Stats
}

func NewCLIRunner(path string, timeout time.Duration) *CLIRunner {
	if path == "" {
		path = "claude"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &CLIRunner{Path: path, Timeout: timeout, Stats: NewStats(time.Hour)}
}

func (r *CLIRunner) Run(ctx context.Context, model, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(callCtx, r.Path, "--model", model, "--print", prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if r.Stats != nil {
		r.Stats.Record(time.Since(start).Milliseconds())
	}

	if callCtx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%w after %s", ErrModelTimeout, r.Timeout)
	}
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrModelUnavailable, r.Path)
		}
		return "", fmt.Errorf("model %s: %v: %s", model, err, truncate(stderr.String(), 200))
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("model %s: empty response: %s", model, truncate(stderr.String(), 200))
	}

	out = StripCodeFence(out)
	if IsRefusal(out) {
		return "", ErrModelRefused
	}
	return out, nil
}

var codeFenceRe = regexp.MustCompile("(?s)^```(?:markdown|md)?\\s*(.*?)\\s*```$")

// StripCodeFence unwraps a response the model wrapped in a markdown
// code fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

var refusalPhrases = []string{
	"would you like me to continue",
	"could you please provide",
	"i cannot convert",
	"shall i proceed",
}

// IsRefusal detects conversational filler signaling the model did not
// complete the task. Such responses are rejected before validation.
func IsRefusal(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range refusalPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
