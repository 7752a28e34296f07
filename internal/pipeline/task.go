package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/Brandon7CC/MODELFORGE/internal/model"
)

// DefaultInvalidResponseCeiling bounds how many rejected or failed attempts
// one repetition tolerates before it is abandoned as rejected.
const DefaultInvalidResponseCeiling = 10

// State is the lifecycle position of a task within the current repetition.
type State string

const (
	StatePending     State = "PENDING"
	StateAgentRun    State = "AGENT_RUN"
	StatePostprocess State = "POSTPROCESS"
	StateEvaluate    State = "EVALUATE"
	StateAccepted    State = "ACCEPTED"
	StateRejected    State = "REJECTED"
)

// safeEvalModels lists model families vetted for evaluation duty. The check
// is advisory: an evaluator outside the list draws a warning, nothing more.
var safeEvalModels = []string{
	"mistral", "orca", "vicuna", "wizard", "llama",
	"mixtral", "gemini", "unicorn", "gpt", "bison",
}

// Role is the model configuration behind one pipeline stage.
type Role struct {
	BaseModel    string
	Temperature  float64
	SystemPrompt string
}

// Task is one unit of work: a prompt pushed through agent, optional
// postprocessor, and evaluator roles until accepted or out of attempts.
// PositiveResults and NegativeResults accumulate across repetitions.
type Task struct {
	Name          string
	Prompt        string
	RunCount      int
	Agent         Role
	Postprocessor *Role
	Evaluator     Role

	State           State
	PositiveResults []string
	NegativeResults []string
}

// Observer receives task progress. Implementations must not block; they are
// called inline from the execution loop.
type Observer interface {
	StateChanged(task string, state State)
	AttemptRejected(task string, attempt int, output, critique string)
	Warning(task string, message string)
}

// NopObserver discards all progress events.
type NopObserver struct{}

func (NopObserver) StateChanged(string, State)                {}
func (NopObserver) AttemptRejected(string, int, string, string) {}
func (NopObserver) Warning(string, string)                    {}

// Deps carries the collaborators a task needs to run. Registry and Observer
// may be nil; Ceiling below one falls back to the default.
type Deps struct {
	Factory  model.Factory
	Namer    model.Namer
	Registry *model.Registry
	Ceiling  int
	Observer Observer
}

func (d Deps) observer() Observer {
	if d.Observer == nil {
		return NopObserver{}
	}
	return d.Observer
}

func (d Deps) ceiling() int {
	if d.Ceiling < 1 {
		return DefaultInvalidResponseCeiling
	}
	return d.Ceiling
}

// ExecuteAndValidate runs one repetition of the task: agent attempts are
// evaluated and retried with critique feedback until one is accepted or the
// invalid-response ceiling is reached. Each rejected or failed attempt
// appends to NegativeResults; an acceptance appends to PositiveResults. The
// returned error is non-nil only when ctx was canceled mid-repetition.
func (t *Task) ExecuteAndValidate(ctx context.Context, deps Deps) (Verdict, error) {
	obs := deps.observer()
	t.warnUnvettedEvaluator(obs)

	var last Verdict
	previousOutput := ""
	critique := ""
	ceiling := deps.ceiling()
	for attempt := 1; attempt <= ceiling; attempt++ {
		if err := ctx.Err(); err != nil {
			return Verdict{}, err
		}

		prompt := t.Prompt
		if attempt > 1 {
			prompt = RetryPrompt(t.Prompt, previousOutput, critique)
		}

		t.setState(obs, StateAgentRun)
		output, err := t.runRole(ctx, deps, t.Agent, prompt)
		if err != nil {
			if rerr := t.failAttempt(ctx, deps, attempt, "", err); rerr != nil {
				return Verdict{}, rerr
			}
			previousOutput, critique, last = "", "", Verdict{}
			continue
		}

		if t.Postprocessor != nil {
			t.setState(obs, StatePostprocess)
			processed, err := t.runRole(ctx, deps, *t.Postprocessor, output)
			if err != nil {
				if rerr := t.failAttempt(ctx, deps, attempt, output, err); rerr != nil {
					return Verdict{}, rerr
				}
				previousOutput, critique, last = output, "", Verdict{}
				continue
			}
			output = processed
		}

		t.setState(obs, StateEvaluate)
		raw, err := t.runRole(ctx, deps, t.Evaluator, EvalPrompt(output))
		if err != nil {
			if rerr := t.failAttempt(ctx, deps, attempt, output, err); rerr != nil {
				return Verdict{}, rerr
			}
			previousOutput, critique, last = output, "", Verdict{}
			continue
		}

		verdict, err := ParseVerdict(raw)
		if err != nil {
			if rerr := t.failAttempt(ctx, deps, attempt, output, err); rerr != nil {
				return Verdict{}, rerr
			}
			previousOutput, critique, last = output, "", Verdict{}
			continue
		}

		last = verdict
		if verdict.Accepted {
			t.PositiveResults = append(t.PositiveResults, output)
			t.setState(obs, StateAccepted)
			return verdict, nil
		}
		t.recordRejection(obs, attempt, output, verdict.Critique)
		previousOutput, critique = output, verdict.Critique
	}
	return last, nil
}

// failAttempt converts a stage failure into a rejection of the current
// attempt, unless the failure was a context cancellation, which aborts the
// repetition instead.
func (t *Task) failAttempt(ctx context.Context, deps Deps, attempt int, output string, cause error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	obs := deps.observer()
	obs.Warning(t.Name, cause.Error())
	t.recordRejection(obs, attempt, output, "")
	return nil
}

func (t *Task) recordRejection(obs Observer, attempt int, output, critique string) {
	t.NegativeResults = append(t.NegativeResults, output)
	t.setState(obs, StateRejected)
	obs.AttemptRejected(t.Name, attempt, output, critique)
}

// runRole provisions an ephemeral model for the role, queries it once, and
// disposes it. The instance is registered for the duration of the query so
// an interrupt sweep can find it. Dispose failures are reported but never
// propagated.
func (t *Task) runRole(ctx context.Context, deps Deps, role Role, prompt string) (string, error) {
	handle, err := deps.Namer.Derive(role.BaseModel, role.Temperature, role.SystemPrompt)
	if err != nil {
		return "", fmt.Errorf("derive handle for %s: %w", role.BaseModel, err)
	}
	client, err := deps.Factory(handle)
	if err != nil {
		return "", err
	}
	if err := client.Create(ctx, handle); err != nil {
		return "", err
	}
	if deps.Registry != nil {
		deps.Registry.Add(handle, client)
	}
	defer func() {
		if err := client.Dispose(context.WithoutCancel(ctx), handle); err != nil {
			deps.observer().Warning(t.Name, err.Error())
		}
		if deps.Registry != nil {
			deps.Registry.Remove(handle)
		}
	}()
	output, err := client.Query(ctx, handle, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

func (t *Task) setState(obs Observer, state State) {
	t.State = state
	obs.StateChanged(t.Name, state)
}

// warnUnvettedEvaluator flags evaluator base models outside the vetted
// families. Execution continues either way.
func (t *Task) warnUnvettedEvaluator(obs Observer) {
	base := strings.ToLower(t.Evaluator.BaseModel)
	for _, family := range safeEvalModels {
		if strings.Contains(base, family) {
			return
		}
	}
	obs.Warning(t.Name, fmt.Sprintf("evaluator model %q is not a vetted evaluation model; verdicts may be unreliable", t.Evaluator.BaseModel))
}
