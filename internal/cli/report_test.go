package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Brandon7CC/MODELFORGE/internal/pipeline"
	"github.com/Brandon7CC/MODELFORGE/internal/runner"
)

func writeSnapshotFixture(t *testing.T) string {
	t.Helper()
	set := &pipeline.TaskSet{Tasks: []*pipeline.Task{{
		Name:            "c-snippet",
		Prompt:          "Write a C snippet.",
		RunCount:        2,
		Agent:           pipeline.Role{BaseModel: "mistral", Temperature: 0.7, SystemPrompt: "You write C."},
		Evaluator:       pipeline.Role{BaseModel: "wizardcoder", Temperature: 0.2, SystemPrompt: "You judge C."},
		State:           pipeline.StateAccepted,
		PositiveResults: []string{"int x = 5;"},
		NegativeResults: []string{"nope"},
	}}}
	path := filepath.Join(t.TempDir(), "results.yaml")
	if err := runner.SaveSnapshot(path, set); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	return path
}

func TestReportCommandMarkdown(t *testing.T) {
	snapshotPath := writeSnapshotFixture(t)

	cmd := findCommand("report")
	if cmd == nil {
		t.Fatalf("report command not found")
	}
	var stdout, stderr bytes.Buffer
	code := cmd.Run([]string{"-format", "markdown", snapshotPath}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("unexpected exit %d, stderr: %s", code, stderr.String())
	}
	output := stdout.String()
	if !strings.Contains(output, "# Object listing") {
		t.Fatalf("expected markdown heading, got %q", output)
	}
	if !strings.Contains(output, "int x = 5;") {
		t.Fatalf("expected accepted output, got %q", output)
	}
	if strings.Contains(output, "nope") {
		t.Fatalf("rejected output leaked into listing: %q", output)
	}
}

func TestReportCommandHTMLToFile(t *testing.T) {
	snapshotPath := writeSnapshotFixture(t)
	outPath := filepath.Join(t.TempDir(), "report.html")

	cmd := findCommand("report")
	var stdout, stderr bytes.Buffer
	code := cmd.Run([]string{"-format", "html", "-o", outPath, snapshotPath}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("unexpected exit %d, stderr: %s", code, stderr.String())
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "<!doctype html>") {
		t.Fatalf("expected html document, got %q", string(data)[:min(len(data), 80)])
	}
	if !strings.Contains(stdout.String(), "Report written to "+outPath) {
		t.Fatalf("expected confirmation, got %q", stdout.String())
	}
}

func TestReportCommandRejectsBadFormat(t *testing.T) {
	snapshotPath := writeSnapshotFixture(t)

	cmd := findCommand("report")
	var stdout, stderr bytes.Buffer
	code := cmd.Run([]string{"-format", "pdf", snapshotPath}, &stdout, &stderr)
	if code != ExitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
	if !strings.Contains(stderr.String(), "invalid format") {
		t.Fatalf("expected format error, got %q", stderr.String())
	}
}

func TestReportCommandFindsLatestSnapshot(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"research_results_20240101-000000.yaml", "research_results_20240202-000000.yaml"} {
		set := &pipeline.TaskSet{Tasks: []*pipeline.Task{{
			Name:            "c-snippet",
			Prompt:          "Write a C snippet.",
			RunCount:        1,
			Agent:           pipeline.Role{BaseModel: "mistral", Temperature: 0.7},
			Evaluator:       pipeline.Role{BaseModel: "wizardcoder", Temperature: 0.2},
			PositiveResults: []string{"from " + name},
		}}}
		if err := runner.SaveSnapshot(filepath.Join(dir, name), set); err != nil {
			t.Fatalf("save snapshot: %v", err)
		}
	}
	t.Chdir(dir)

	cmd := findCommand("report")
	var stdout, stderr bytes.Buffer
	code := cmd.Run([]string{"-format", "markdown"}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("unexpected exit %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "from research_results_20240202-000000.yaml") {
		t.Fatalf("expected newest snapshot, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Using research_results_20240202-000000.yaml") {
		t.Fatalf("expected snapshot notice, got %q", stderr.String())
	}
}

func TestReportCommandMissingSnapshot(t *testing.T) {
	cmd := findCommand("report")
	var stdout, stderr bytes.Buffer
	code := cmd.Run([]string{filepath.Join(t.TempDir(), "absent.yaml")}, &stdout, &stderr)
	if code != ExitError {
		t.Fatalf("expected error exit, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Failed to load snapshot") {
		t.Fatalf("expected load error, got %q", stderr.String())
	}
}
