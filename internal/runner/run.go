package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Brandon7CC/MODELFORGE/internal/model"
	"github.com/Brandon7CC/MODELFORGE/internal/pipeline"
)

// ErrInterrupted reports a run stopped by context cancellation. The summary
// returned alongside it covers everything that finished before the stop.
var ErrInterrupted = errors.New("run interrupted")

// Deps carries injectable collaborators. Factory is required; the rest fall
// back to production defaults when zero.
type Deps struct {
	Factory  model.Factory
	Namer    model.Namer
	Registry *model.Registry
	RunID    func() (string, error)
	Now      func() time.Time
	Observer RunObserver
}

// Params configures one run.
type Params struct {
	// OutputPath receives the task set snapshot after every repetition.
	// Empty disables persistence.
	OutputPath string
	// Ceiling bounds rejected attempts per repetition; zero means default.
	Ceiling int
	Deps    Deps
}

// Run executes every task in the set sequentially, task by task and
// repetition by repetition, persisting the whole task set after each
// repetition. A canceled context stops the run between attempts and yields
// ErrInterrupted; the caller owns instance cleanup.
func Run(ctx context.Context, set *pipeline.TaskSet, params Params) (Summary, error) {
	deps := params.Deps
	if deps.Factory == nil {
		return Summary{}, fmt.Errorf("model factory is required")
	}
	registry := deps.Registry
	if registry == nil {
		registry = model.NewRegistry()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	obs := deps.Observer
	if obs == nil {
		obs = NopRunObserver{}
	}
	runID, err := ensureRunID(deps.RunID)
	if err != nil {
		return Summary{}, err
	}

	startedAt := now()
	obs.OnRunStart(runID, len(set.Tasks))

	taskDeps := pipeline.Deps{
		Factory:  deps.Factory,
		Namer:    deps.Namer,
		Registry: registry,
		Ceiling:  params.Ceiling,
		Observer: pipelineObserver{obs: obs},
	}

	interrupted := false
tasks:
	for _, task := range set.Tasks {
		obs.OnTaskStart(task.Name, task.RunCount)
		for repetition := 1; repetition <= task.RunCount; repetition++ {
			verdict, err := task.ExecuteAndValidate(ctx, taskDeps)
			if err != nil {
				interrupted = true
				break tasks
			}
			if params.OutputPath != "" {
				if err := SaveSnapshot(params.OutputPath, set); err != nil {
					return Summary{}, fmt.Errorf("save results: %w", err)
				}
			}
			obs.OnRepetitionEnd(task.Name, repetition, verdict.Accepted)
		}
		obs.OnTaskEnd(task.Name, len(task.PositiveResults), len(task.NegativeResults))
	}

	summary := summarize(runID, startedAt, now(), set)
	obs.OnRunEnd(summary)
	if interrupted {
		return summary, ErrInterrupted
	}
	return summary, nil
}

// Sweeper removes leftover managed instances by name prefix.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Cleanup disposes every registered instance, then sweeps the managed
// runtime for prefixed leftovers that escaped bookkeeping. It reports what it
// removed and never fails; sweep errors surface as warnings.
func Cleanup(ctx context.Context, registry *model.Registry, sweeper Sweeper, obs RunObserver) (disposed, swept int) {
	if obs == nil {
		obs = NopRunObserver{}
	}
	if registry != nil {
		disposed = registry.DisposeAll(ctx)
	}
	if sweeper != nil {
		n, err := sweeper.Sweep(ctx)
		if err != nil {
			obs.OnWarning("", fmt.Sprintf("sweep leftover instances: %v", err))
		}
		swept = n
	}
	return disposed, swept
}

func ensureRunID(generator func() (string, error)) (string, error) {
	if generator != nil {
		return generator()
	}
	return NewRunID()
}
