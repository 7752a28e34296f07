package cucumber

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cucumber/godog"
)

// featureState holds scenario state for the pipeline feature tests. Model
// clients are scripted fakes; everything else is the real runner.
type featureState struct {
	workDir     string
	resultsPath string

	taskName string
	runCount int
	ceiling  int

	agentReplies []string
	evalReplies  []string

	agentPrompts []string
	created      map[string]bool
	disposed     map[string]bool

	accepted int
	rejected int

	validateErr error
}

// InitializeScenario wires cucumber steps to the feature state.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, state.reset()
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		state.cleanup()
		return ctx, nil
	})

	ctx.Step(`^a task "([^"]*)" repeated (\d+) times$`, state.aTaskRepeated)
	ctx.Step(`^the invalid response ceiling is (\d+)$`, state.theCeilingIs)
	ctx.Step(`^the agent always replies "([^"]*)"$`, state.theAgentAlwaysReplies)
	ctx.Step(`^the agent replies in order:$`, state.theAgentRepliesInOrder)
	ctx.Step(`^the evaluator always accepts$`, state.theEvaluatorAlwaysAccepts)
	ctx.Step(`^the evaluator rejects with critique "([^"]*)" then accepts$`, state.theEvaluatorRejectsThenAccepts)
	ctx.Step(`^the evaluator always rejects with critique "([^"]*)"$`, state.theEvaluatorAlwaysRejects)
	ctx.Step(`^the evaluator always replies "([^"]*)"$`, state.theEvaluatorAlwaysRepliesRaw)
	ctx.Step(`^the run executes$`, state.theRunExecutes)
	ctx.Step(`^the run reports (\d+) accepted and (\d+) rejected$`, state.theRunReports)
	ctx.Step(`^the results file lists (\d+) positive results for "([^"]*)"$`, state.theResultsFileListsPositive)
	ctx.Step(`^the results file lists (\d+) negative results for "([^"]*)"$`, state.theResultsFileListsNegative)
	ctx.Step(`^every ephemeral model was disposed$`, state.everyModelWasDisposed)
	ctx.Step(`^a retry prompt contained "([^"]*)"$`, state.aRetryPromptContained)
	ctx.Step(`^a task file missing its evaluator$`, state.aTaskFileMissingEvaluator)
	ctx.Step(`^the task file is validated$`, state.theTaskFileIsValidated)
	ctx.Step(`^validation fails mentioning "([^"]*)"$`, state.validationFailsMentioning)
}

// reset prepares a fresh working directory and clears scenario state.
func (s *featureState) reset() error {
	dir, err := os.MkdirTemp("", "modelforge-cucumber-")
	if err != nil {
		return err
	}
	*s = featureState{
		workDir:     dir,
		resultsPath: filepath.Join(dir, "results.yaml"),
		runCount:    1,
		created:     map[string]bool{},
		disposed:    map[string]bool{},
	}
	return nil
}

// cleanup removes the scenario working directory.
func (s *featureState) cleanup() {
	if s.workDir != "" {
		_ = os.RemoveAll(s.workDir)
	}
}
