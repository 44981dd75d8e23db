// Package checkpoint threads validators into an ordered, stoppable pipeline.
// Each checkpoint returns a three-valued result; pass continues, warn is
// accumulated and continues, fail stops the run immediately. All warnings
// and errors are retained so a failed run surfaces every problem at once.
package checkpoint

import (
	"context"
	"fmt"
	"log"
	"time"

	"talkdoc/internal/validate"
)

// State of an orchestrated run.
type State int

const (
	Running State = iota
	StoppedFail
	Completed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StoppedFail:
		return "stopped-fail"
	case Completed:
		return "completed"
	default:
		return "running"
	}
}

// Checkpoint is one validation stage. StopOnWarn marks checkpoints that a
// strict deployment treats as terminal on warn; in the default policy a warn
// never blocks.
type Checkpoint struct {
	Name       string
	Run        func(ctx context.Context) (*validate.Result, error)
	StopOnWarn bool
}

// Entry records the outcome of one executed checkpoint.
type Entry struct {
	Name     string
	Status   validate.Status
	Score    *float64
	Warnings []string
	Errors   []string
	Elapsed  time.Duration
}

// Report aggregates a whole run. Warnings are never dropped: they are
// surfaced at the end even when the run completes.
type Report struct {
	State    State
	Entries  []Entry
	Warnings []string
	Errors   []string
}

// Failed reports whether the run stopped on a failure.
func (r *Report) Failed() bool {
	return r.State == StoppedFail
}

// Orchestrator executes checkpoints in order with fail-fast semantics.
type Orchestrator struct {
	strict bool
}

// New creates an orchestrator. With strict set, checkpoints marked
// StopOnWarn become terminal when they warn.
func New(strict bool) *Orchestrator {
	return &Orchestrator{strict: strict}
}

// Execute runs the checkpoints in order. Once any checkpoint fails, no
// further checkpoint is invoked. A collaborator error (unreadable input,
// transport failure) is recorded as a failure since there is nothing
// meaningful to validate.
func (o *Orchestrator) Execute(ctx context.Context, checkpoints []Checkpoint) *Report {
	report := &Report{State: Running}

	for i, cp := range checkpoints {
		log.Printf("Checkpoint %d/%d: %s", i+1, len(checkpoints), cp.Name)

		start := time.Now()
		result, err := cp.Run(ctx)
		if err != nil {
			result = validate.NewResult()
			result.Errorf("%s: %v", cp.Name, err)
		}

		entry := Entry{
			Name:     cp.Name,
			Status:   result.Status,
			Score:    result.Score,
			Warnings: result.Warnings,
			Errors:   result.Errors,
			Elapsed:  time.Since(start),
		}
		report.Entries = append(report.Entries, entry)

		for _, w := range result.Warnings {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", cp.Name, w))
		}
		for _, e := range result.Errors {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", cp.Name, e))
		}

		switch result.Status {
		case validate.StatusFail:
			log.Printf("Checkpoint %s failed; stopping run", cp.Name)
			report.State = StoppedFail
			return report
		case validate.StatusWarn:
			if o.strict && cp.StopOnWarn {
				log.Printf("Checkpoint %s warned under strict policy; stopping run", cp.Name)
				report.State = StoppedFail
				return report
			}
			log.Printf("Checkpoint %s passed with %d warning(s)", cp.Name, len(result.Warnings))
		default:
			log.Printf("Checkpoint %s passed", cp.Name)
		}
	}

	report.State = Completed
	return report
}
