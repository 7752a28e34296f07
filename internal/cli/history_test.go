package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestHistoryCommandIngestsAndPrintsStats(t *testing.T) {
	snapshotPath := writeSnapshotFixture(t)
	dbPath := filepath.Join(t.TempDir(), "history.duckdb")

	cmd := findCommand("history")
	if cmd == nil {
		t.Fatalf("history command not found")
	}

	var stdout, stderr bytes.Buffer
	code := cmd.Run([]string{"-db", dbPath, snapshotPath}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("unexpected exit %d, stderr: %s", code, stderr.String())
	}
	output := stdout.String()
	if !strings.Contains(output, "Archived 2 new results (0 already present)") {
		t.Fatalf("expected ingest accounting, got %q", output)
	}
	if !strings.Contains(output, "c-snippet") {
		t.Fatalf("expected task stats, got %q", output)
	}

	stdout.Reset()
	stderr.Reset()
	code = cmd.Run([]string{"-db", dbPath, snapshotPath}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("unexpected exit %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Archived 0 new results (2 already present)") {
		t.Fatalf("expected idempotent ingest, got %q", stdout.String())
	}
}

func TestHistoryCommandStatsOnlyOnEmptyStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.duckdb")

	cmd := findCommand("history")
	var stdout, stderr bytes.Buffer
	code := cmd.Run([]string{"-db", dbPath}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("unexpected exit %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "History is empty") {
		t.Fatalf("expected empty notice, got %q", stdout.String())
	}
}

func TestHistoryCommandRequiresDB(t *testing.T) {
	cmd := findCommand("history")
	var stdout, stderr bytes.Buffer
	code := cmd.Run(nil, &stdout, &stderr)
	if code != ExitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Missing -db") {
		t.Fatalf("expected missing-db error, got %q", stderr.String())
	}
}
