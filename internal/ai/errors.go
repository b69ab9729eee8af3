package ai

import (
	"errors"
	"fmt"
)

// Failure modes of a single model attempt. All of them are recovered
// locally by advancing the escalation ladder; only ladder exhaustion is
// visible to the caller, as an ok=false result rather than an error.
var (
	ErrModelTimeout     = errors.New("model call timed out")
	ErrModelUnavailable = errors.New("model executable not found")
	ErrModelRefused     = errors.New("model declined the conversion task")
)

// ValidationFailure reports that a model response was structurally
// plausible but rejected by the hallucination checks.
type ValidationFailure struct {
	Result ValidationResult
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Result.Reason)
}
