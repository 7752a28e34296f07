package live

import (
	"github.com/Brandon7CC/MODELFORGE/internal/pipeline"
	"github.com/Brandon7CC/MODELFORGE/internal/runner"
)

// EventKind identifies what a run event carries.
type EventKind int

const (
	EventRunStart EventKind = iota
	EventTaskStart
	EventStateChange
	EventAttemptRejected
	EventRepetitionEnd
	EventWarning
	EventTaskEnd
	EventRunEnd
)

// Event is a single observation emitted by the runner. Fields are
// populated according to Kind; unused fields stay zero.
type Event struct {
	Kind EventKind

	RunID     string
	TaskTotal int

	Task        string
	Repetitions int
	State       pipeline.State

	Attempt  int
	Critique string

	Repetition int
	Accepted   bool

	Warning string

	AcceptedTotal int
	RejectedTotal int

	Summary runner.Summary
}
