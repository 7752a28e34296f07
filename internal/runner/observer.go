package runner

import "github.com/Brandon7CC/MODELFORGE/internal/pipeline"

// RunObserver receives run lifecycle events for UI or logging.
type RunObserver interface {
	// OnRunStart signals the start of a run.
	OnRunStart(runID string, taskTotal int)
	// OnTaskStart signals the start of a task's repetitions.
	OnTaskStart(task string, repetitions int)
	// OnStateChange delivers a task state transition.
	OnStateChange(task string, state pipeline.State)
	// OnAttemptRejected delivers one rejected attempt inside a repetition.
	OnAttemptRejected(task string, attempt int, output, critique string)
	// OnRepetitionEnd signals one finished repetition.
	OnRepetitionEnd(task string, repetition int, accepted bool)
	// OnWarning delivers a non-fatal problem.
	OnWarning(task string, message string)
	// OnTaskEnd signals task completion with its accumulated tallies.
	OnTaskEnd(task string, accepted, rejected int)
	// OnRunEnd signals run completion.
	OnRunEnd(summary Summary)
}

// NopRunObserver discards all events.
type NopRunObserver struct{}

func (NopRunObserver) OnRunStart(string, int)                       {}
func (NopRunObserver) OnTaskStart(string, int)                      {}
func (NopRunObserver) OnStateChange(string, pipeline.State)         {}
func (NopRunObserver) OnAttemptRejected(string, int, string, string) {}
func (NopRunObserver) OnRepetitionEnd(string, int, bool)            {}
func (NopRunObserver) OnWarning(string, string)                     {}
func (NopRunObserver) OnTaskEnd(string, int, int)                   {}
func (NopRunObserver) OnRunEnd(Summary)                             {}

// pipelineObserver forwards task-level events to a RunObserver.
type pipelineObserver struct {
	obs RunObserver
}

func (p pipelineObserver) StateChanged(task string, state pipeline.State) {
	p.obs.OnStateChange(task, state)
}

func (p pipelineObserver) AttemptRejected(task string, attempt int, output, critique string) {
	p.obs.OnAttemptRejected(task, attempt, output, critique)
}

func (p pipelineObserver) Warning(task string, message string) {
	p.obs.OnWarning(task, message)
}
