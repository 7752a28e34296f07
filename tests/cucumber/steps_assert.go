package cucumber

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Brandon7CC/MODELFORGE/internal/runner"
)

func (s *featureState) theRunReports(accepted, rejected int) error {
	if s.accepted != accepted || s.rejected != rejected {
		return fmt.Errorf("run reported %d accepted / %d rejected, want %d / %d",
			s.accepted, s.rejected, accepted, rejected)
	}
	return nil
}

func (s *featureState) theResultsFileListsPositive(count int, task string) error {
	snapshot, err := s.taskSnapshot(task)
	if err != nil {
		return err
	}
	if len(snapshot.PositiveResults) != count {
		return fmt.Errorf("task %q has %d positive results, want %d", task, len(snapshot.PositiveResults), count)
	}
	return nil
}

func (s *featureState) theResultsFileListsNegative(count int, task string) error {
	snapshot, err := s.taskSnapshot(task)
	if err != nil {
		return err
	}
	if len(snapshot.NegativeResults) != count {
		return fmt.Errorf("task %q has %d negative results, want %d", task, len(snapshot.NegativeResults), count)
	}
	return nil
}

func (s *featureState) everyModelWasDisposed() error {
	if len(s.created) == 0 {
		return fmt.Errorf("no ephemeral models were created")
	}
	var leaked []string
	for name := range s.created {
		if !s.disposed[name] {
			leaked = append(leaked, name)
		}
	}
	if len(leaked) > 0 {
		return fmt.Errorf("ephemeral models never disposed: %s", strings.Join(leaked, ", "))
	}
	return nil
}

func (s *featureState) aRetryPromptContained(text string) error {
	if len(s.agentPrompts) < 2 {
		return fmt.Errorf("agent was never queried with a retry prompt")
	}
	for _, prompt := range s.agentPrompts[1:] {
		if strings.Contains(prompt, text) {
			return nil
		}
	}
	return fmt.Errorf("no retry prompt contained %q (saw %d agent prompts)", text, len(s.agentPrompts))
}

func (s *featureState) validationFailsMentioning(text string) error {
	if s.validateErr == nil {
		return fmt.Errorf("validation passed, expected failure mentioning %q", text)
	}
	if !strings.Contains(s.validateErr.Error(), text) {
		return fmt.Errorf("validation error %q does not mention %q", s.validateErr, text)
	}
	return nil
}

// taskSnapshot reads the persisted results file and returns the named task.
func (s *featureState) taskSnapshot(task string) (runner.TaskSnapshot, error) {
	data, err := os.ReadFile(s.resultsPath)
	if err != nil {
		return runner.TaskSnapshot{}, fmt.Errorf("read results file: %w", err)
	}
	var snapshots []runner.TaskSnapshot
	if err := yaml.Unmarshal(data, &snapshots); err != nil {
		return runner.TaskSnapshot{}, fmt.Errorf("decode results file: %w", err)
	}
	for _, snapshot := range snapshots {
		if snapshot.TaskName == task {
			return snapshot, nil
		}
	}
	return runner.TaskSnapshot{}, fmt.Errorf("task %q not present in results file", task)
}
