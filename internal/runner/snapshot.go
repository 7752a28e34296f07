package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Brandon7CC/MODELFORGE/internal/pipeline"
)

// TaskSnapshot is one task's persisted form. Role configs render compactly;
// result lists accumulate across repetitions and runs of the same file.
type TaskSnapshot struct {
	TaskName            string   `yaml:"task_name"`
	TaskPrompt          string   `yaml:"task_prompt"`
	AgentConfig         string   `yaml:"agent_config"`
	PostprocessorConfig string   `yaml:"post_processor_config"`
	EvaluatorConfig     string   `yaml:"evaluator_config"`
	PositiveResults     []string `yaml:"positive_results"`
	NegativeResults     []string `yaml:"negative_results"`
}

// Snapshot converts the live task set to its persisted form.
func Snapshot(set *pipeline.TaskSet) []TaskSnapshot {
	snapshots := make([]TaskSnapshot, 0, len(set.Tasks))
	for _, task := range set.Tasks {
		postprocessor := "NONE"
		if task.Postprocessor != nil {
			postprocessor = describeRole(*task.Postprocessor)
		}
		snapshots = append(snapshots, TaskSnapshot{
			TaskName:            task.Name,
			TaskPrompt:          task.Prompt,
			AgentConfig:         fmt.Sprintf("%s * %d", describeRole(task.Agent), task.RunCount),
			PostprocessorConfig: postprocessor,
			EvaluatorConfig:     describeRole(task.Evaluator),
			PositiveResults:     task.PositiveResults,
			NegativeResults:     task.NegativeResults,
		})
	}
	return snapshots
}

func describeRole(role pipeline.Role) string {
	return fmt.Sprintf("%s w/%v", role.BaseModel, role.Temperature)
}

// SaveSnapshot replaces the snapshot file wholesale with the current task
// set. The payload lands on a temp file first and is renamed into place so an
// interrupt cannot leave a torn file.
func SaveSnapshot(path string, set *pipeline.TaskSet) error {
	if path == "" {
		return fmt.Errorf("snapshot path is required")
	}
	payload, err := yaml.Marshal(Snapshot(set))
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmpPath := path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	_, writeErr := file.Write(payload)
	syncErr := file.Sync()
	closeErr := file.Close()
	for _, err := range []error{writeErr, syncErr, closeErr} {
		if err != nil {
			_ = os.Remove(tmpPath)
			return err
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// LoadSnapshot reads a snapshot file back, for reporting and ingestion.
func LoadSnapshot(path string) ([]TaskSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snapshots []TaskSnapshot
	if err := yaml.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return snapshots, nil
}
