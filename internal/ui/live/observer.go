// Package live renders run progress as a full-screen terminal table.
//
// A Controller bridges the runner's observer callbacks onto a buffered
// event channel consumed by a bubbletea program. Callbacks never block:
// if the UI falls behind, events are dropped rather than stalling the run.
package live

import (
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Brandon7CC/MODELFORGE/internal/pipeline"
	"github.com/Brandon7CC/MODELFORGE/internal/runner"
)

const eventBuffer = 256

// Controller implements runner.RunObserver and owns the UI program.
type Controller struct {
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	program *tea.Program
	runErr  error
}

// NewController returns a controller ready to be passed to the runner.
// Call Start before the run begins and Wait after it ends.
func NewController() *Controller {
	return &Controller{
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// Start launches the terminal program writing to out.
func (c *Controller) Start(out io.Writer, opts Options) {
	program := tea.NewProgram(
		newModel(c.events, opts),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	c.mu.Lock()
	c.program = program
	c.mu.Unlock()

	go func() {
		_, err := program.Run()
		c.mu.Lock()
		c.runErr = err
		c.mu.Unlock()
		close(c.done)
	}()
}

// Close stops feeding events. The program drains the channel and exits.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.events)
	})
}

// Wait blocks until the program has exited and returns its error.
func (c *Controller) Wait() error {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runErr
}

// send delivers an event without ever blocking the run.
func (c *Controller) send(ev Event) {
	defer func() {
		// Sending after Close races with run teardown; drop the event.
		_ = recover()
	}()
	select {
	case c.events <- ev:
	default:
	}
}

func (c *Controller) OnRunStart(runID string, taskTotal int) {
	c.send(Event{Kind: EventRunStart, RunID: runID, TaskTotal: taskTotal})
}

func (c *Controller) OnTaskStart(task string, repetitions int) {
	c.send(Event{Kind: EventTaskStart, Task: task, Repetitions: repetitions, State: pipeline.StatePending})
}

func (c *Controller) OnStateChange(task string, state pipeline.State) {
	c.send(Event{Kind: EventStateChange, Task: task, State: state})
}

func (c *Controller) OnAttemptRejected(task string, attempt int, output, critique string) {
	_ = output
	c.send(Event{Kind: EventAttemptRejected, Task: task, Attempt: attempt, Critique: critique})
}

func (c *Controller) OnRepetitionEnd(task string, repetition int, accepted bool) {
	c.send(Event{Kind: EventRepetitionEnd, Task: task, Repetition: repetition, Accepted: accepted})
}

func (c *Controller) OnWarning(task string, message string) {
	warning := message
	if task != "" {
		warning = task + ": " + message
	}
	c.send(Event{Kind: EventWarning, Warning: warning})
}

func (c *Controller) OnTaskEnd(task string, accepted, rejected int) {
	c.send(Event{Kind: EventTaskEnd, Task: task, AcceptedTotal: accepted, RejectedTotal: rejected})
}

func (c *Controller) OnRunEnd(summary runner.Summary) {
	c.send(Event{Kind: EventRunEnd, Summary: summary})
	c.Close()
}
