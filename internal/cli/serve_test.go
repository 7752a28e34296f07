package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Brandon7CC/MODELFORGE/internal/reportserver"
)

func TestServeCommandRequiresSnapshotPath(t *testing.T) {
	cmd := findCommand("serve")
	if cmd == nil {
		t.Fatalf("serve command not found")
	}
	var stdout, stderr bytes.Buffer
	code := cmd.Run(nil, &stdout, &stderr)
	if code != ExitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Missing <results.yaml>") {
		t.Fatalf("expected missing-snapshot error, got %q", stderr.String())
	}
}

func TestServeCommandPassesConfig(t *testing.T) {
	snapshotPath := writeSnapshotFixture(t)

	var gotConfig reportserver.Config
	origServe := serveReport
	serveReport = func(_ context.Context, cfg reportserver.Config) error {
		gotConfig = cfg
		return nil
	}
	t.Cleanup(func() { serveReport = origServe })

	cmd := findCommand("serve")
	var stdout, stderr bytes.Buffer
	code := cmd.Run([]string{"--addr", "127.0.0.1:5050", "--db", "history.duckdb", snapshotPath}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("expected exit ok, got %d: %s", code, stderr.String())
	}
	if gotConfig.Addr != "127.0.0.1:5050" {
		t.Fatalf("unexpected addr: %s", gotConfig.Addr)
	}
	if gotConfig.SnapshotPath != snapshotPath {
		t.Fatalf("unexpected snapshot path: %s", gotConfig.SnapshotPath)
	}
	if gotConfig.DBPath != "history.duckdb" {
		t.Fatalf("unexpected db path: %s", gotConfig.DBPath)
	}
	if !strings.Contains(stdout.String(), "Serving report at http://127.0.0.1:5050") {
		t.Fatalf("expected address banner, got %q", stdout.String())
	}
}

func TestServeCommandRequiresExistingSnapshot(t *testing.T) {
	cmd := findCommand("serve")
	var stdout, stderr bytes.Buffer
	code := cmd.Run([]string{"absent.yaml"}, &stdout, &stderr)
	if code != ExitError {
		t.Fatalf("expected error exit, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Snapshot not found") {
		t.Fatalf("expected stat error, got %q", stderr.String())
	}
}
