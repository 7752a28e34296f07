package cucumber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cucumber/godog"

	"github.com/Brandon7CC/MODELFORGE/internal/config"
	"github.com/Brandon7CC/MODELFORGE/internal/pipeline"
	"github.com/Brandon7CC/MODELFORGE/internal/runner"
)

func (s *featureState) aTaskRepeated(name string, runCount int) error {
	s.taskName = name
	s.runCount = runCount
	return nil
}

func (s *featureState) theCeilingIs(ceiling int) error {
	s.ceiling = ceiling
	return nil
}

func (s *featureState) theAgentAlwaysReplies(reply string) error {
	s.agentReplies = []string{reply}
	return nil
}

func (s *featureState) theAgentRepliesInOrder(table *godog.Table) error {
	s.agentReplies = nil
	for _, row := range table.Rows {
		if len(row.Cells) == 0 {
			return fmt.Errorf("agent reply row has no cells")
		}
		s.agentReplies = append(s.agentReplies, row.Cells[0].Value)
	}
	if len(s.agentReplies) == 0 {
		return fmt.Errorf("agent reply table is empty")
	}
	return nil
}

func (s *featureState) theEvaluatorAlwaysAccepts() error {
	s.evalReplies = []string{acceptVerdict()}
	return nil
}

func (s *featureState) theEvaluatorRejectsThenAccepts(critique string) error {
	s.evalReplies = []string{rejectVerdict(critique), acceptVerdict()}
	return nil
}

func (s *featureState) theEvaluatorAlwaysRejects(critique string) error {
	s.evalReplies = []string{rejectVerdict(critique)}
	return nil
}

func (s *featureState) theEvaluatorAlwaysRepliesRaw(reply string) error {
	s.evalReplies = []string{reply}
	return nil
}

// theRunExecutes loads the generated task file and runs it against the
// scripted clients, persisting the snapshot after every repetition.
func (s *featureState) theRunExecutes() error {
	configPath, err := s.writeTaskFile(s.taskFileYAML())
	if err != nil {
		return err
	}
	file, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load task file: %w", err)
	}
	set := pipeline.BuildTaskSet(file)
	_, err = runner.Run(context.Background(), set, runner.Params{
		OutputPath: s.resultsPath,
		Ceiling:    s.ceiling,
		Deps: runner.Deps{
			Factory:  s.factory,
			Observer: countingObserver{state: s},
		},
	})
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

func (s *featureState) aTaskFileMissingEvaluator() error {
	yaml := fmt.Sprintf(`tasks:
  - name: incomplete
    run_count: 1
    prompt: Write a single line of C declaring an int.
    agent:
      base_model: %s
      temperature: 0.6
`, agentBaseModel)
	_, err := s.writeTaskFile(yaml)
	return err
}

func (s *featureState) theTaskFileIsValidated() error {
	_, s.validateErr = config.Load(filepath.Join(s.workDir, "tasks.yaml"))
	return nil
}

// taskFileYAML renders the scenario's single task as a task file.
func (s *featureState) taskFileYAML() string {
	return fmt.Sprintf(`tasks:
  - name: %s
    run_count: %d
    prompt: Write a single line of C declaring an int set to 5.
    agent:
      base_model: %s
      temperature: 0.6
      system_prompt: You are a terse C programmer.
    evaluator:
      base_model: %s
      temperature: 0.2
      system_prompt: Accept only complete C statements.
`, s.taskName, s.runCount, agentBaseModel, evalBaseModel)
}

func (s *featureState) writeTaskFile(content string) (string, error) {
	path := filepath.Join(s.workDir, "tasks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write task file: %w", err)
	}
	return path, nil
}
