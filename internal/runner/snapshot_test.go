package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Brandon7CC/MODELFORGE/internal/pipeline"
)

func snapshotFixture() *pipeline.TaskSet {
	post := pipeline.Role{BaseModel: "llama2", Temperature: 0.1, SystemPrompt: "Strip prose."}
	return &pipeline.TaskSet{Tasks: []*pipeline.Task{
		{
			Name:            "c-snippet",
			Prompt:          "Write a C statement.",
			RunCount:        3,
			Agent:           pipeline.Role{BaseModel: "mistral", Temperature: 0.7},
			Postprocessor:   &post,
			Evaluator:       pipeline.Role{BaseModel: "wizardcoder", Temperature: 0.2},
			PositiveResults: []string{"int x = 5;"},
			NegativeResults: []string{"int x = 5"},
		},
		{
			Name:      "go-snippet",
			Prompt:    "Write a Go statement.",
			RunCount:  1,
			Agent:     pipeline.Role{BaseModel: "mistral", Temperature: 0.8},
			Evaluator: pipeline.Role{BaseModel: "wizardcoder", Temperature: 0.8},
		},
	}}
}

func TestSnapshotShape(t *testing.T) {
	snaps := Snapshot(snapshotFixture())
	if len(snaps) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(snaps))
	}
	first := snaps[0]
	if first.TaskName != "c-snippet" {
		t.Fatalf("task_name = %q", first.TaskName)
	}
	if first.AgentConfig != "mistral w/0.7 * 3" {
		t.Fatalf("agent_config = %q, want compact role rendering", first.AgentConfig)
	}
	if first.PostprocessorConfig != "llama2 w/0.1" {
		t.Fatalf("post_processor_config = %q", first.PostprocessorConfig)
	}
	if first.EvaluatorConfig != "wizardcoder w/0.2" {
		t.Fatalf("evaluator_config = %q", first.EvaluatorConfig)
	}
	if len(first.PositiveResults) != 1 || first.PositiveResults[0] != "int x = 5;" {
		t.Fatalf("positive_results = %q", first.PositiveResults)
	}
	if snaps[1].PostprocessorConfig != "NONE" {
		t.Fatalf("post_processor_config = %q, want NONE for absent role", snaps[1].PostprocessorConfig)
	}
}

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.yaml")
	set := snapshotFixture()
	if err := SaveSnapshot(path, set); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(loaded) != 2 || loaded[0].TaskName != "c-snippet" || loaded[1].TaskName != "go-snippet" {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded[0].NegativeResults[0] != "int x = 5" {
		t.Fatalf("negative_results = %q", loaded[0].NegativeResults)
	}
}

func TestSnapshotSaveOverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.yaml")
	set := snapshotFixture()
	if err := SaveSnapshot(path, set); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	trimmed := &pipeline.TaskSet{Tasks: set.Tasks[:1]}
	trimmed.Tasks[0].PositiveResults = append(trimmed.Tasks[0].PositiveResults, "int y = 6;")
	if err := SaveSnapshot(path, trimmed); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded = %d tasks, want the replacement only", len(loaded))
	}
	if len(loaded[0].PositiveResults) != 2 {
		t.Fatalf("positive_results = %q, want both entries", loaded[0].PositiveResults)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestSnapshotSaveRequiresPath(t *testing.T) {
	err := SaveSnapshot("", snapshotFixture())
	if err == nil || !strings.Contains(err.Error(), "path") {
		t.Fatalf("err = %v, want path requirement", err)
	}
}

func TestSnapshotFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.yaml")
	if err := SaveSnapshot(path, snapshotFixture()); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	for _, key := range []string{
		"task_name:", "task_prompt:", "agent_config:",
		"post_processor_config:", "evaluator_config:",
		"positive_results:", "negative_results:",
	} {
		if !strings.Contains(string(raw), key) {
			t.Fatalf("snapshot missing %q:\n%s", key, raw)
		}
	}
}
