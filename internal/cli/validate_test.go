package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateCommandAcceptsGoodConfig(t *testing.T) {
	tasksPath := writeTaskFixture(t)

	cmd := findCommand("validate")
	if cmd == nil {
		t.Fatalf("validate command not found")
	}
	var stdout, stderr bytes.Buffer
	code := cmd.Run([]string{tasksPath}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("unexpected exit %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Config OK") {
		t.Fatalf("expected Config OK, got %q", stdout.String())
	}
}

func TestValidateCommandListsIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	body := "tasks:\n  - name: broken\n  - name: broken\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write tasks: %v", err)
	}

	cmd := findCommand("validate")
	var stdout, stderr bytes.Buffer
	code := cmd.Run([]string{path}, &stdout, &stderr)
	if code != ExitError {
		t.Fatalf("expected error exit, got %d", code)
	}
	output := stderr.String()
	if !strings.Contains(output, "Validation failed:") {
		t.Fatalf("expected validation header, got %q", output)
	}
	if !strings.Contains(output, "run_count") || !strings.Contains(output, "duplicate name") {
		t.Fatalf("expected aggregated issues, got %q", output)
	}
}

func TestValidateCommandRequiresPath(t *testing.T) {
	cmd := findCommand("validate")
	var stdout, stderr bytes.Buffer
	code := cmd.Run(nil, &stdout, &stderr)
	if code != ExitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Missing <tasks.yaml>") {
		t.Fatalf("expected missing-path error, got %q", stderr.String())
	}
}
