// Package validate implements the checkpoint validators: the transcript
// quality gate, the schema-driven structural validator, the metric
// fabrication detector, and the subject consistency detector. Every
// validator expresses its judgment through a three-valued Result status
// rather than errors; errors are reserved for unreadable input.
package validate

import "fmt"

// Status is the three-valued outcome of a validation checkpoint.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "pass"
	}
}

// ExitCode maps the status onto the stable process exit code contract:
// pass=0, warn=1, fail=2.
func (s Status) ExitCode() int {
	switch s {
	case StatusWarn:
		return 1
	case StatusFail:
		return 2
	default:
		return 0
	}
}

// Escalate returns the more severe of two statuses. Precedence is
// fail > warn > pass.
func (s Status) Escalate(other Status) Status {
	if other > s {
		return other
	}
	return s
}

// Result is produced fresh by every validator call and never mutated by the
// orchestrator, which only reads and aggregates.
type Result struct {
	Status    Status             `json:"status"`
	Score     *float64           `json:"score,omitempty"`
	Warnings  []string           `json:"warnings,omitempty"`
	Errors    []string           `json:"errors,omitempty"`
	SubScores map[string]float64 `json:"sub_scores,omitempty"`
}

// NewResult returns a passing result with no findings.
func NewResult() *Result {
	return &Result{Status: StatusPass}
}

// Warnf records a warning and escalates the status to warn unless it is
// already fail.
func (r *Result) Warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
	r.Status = r.Status.Escalate(StatusWarn)
}

// Errorf records an error and forces the status to fail.
func (r *Result) Errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Status = StatusFail
}

// Failed reports whether the result is fatal.
func (r *Result) Failed() bool {
	return r.Status == StatusFail
}
