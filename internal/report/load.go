// Package report turns persisted task snapshots into terminal markdown and
// HTML pages.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Brandon7CC/MODELFORGE/internal/runner"
)

// DefaultSnapshotPrefix matches the default output naming of the run command,
// so reports can find the newest results without an explicit path.
const DefaultSnapshotPrefix = "research_results_"

// Load reads a snapshot file and rejects empty ones.
func Load(path string) ([]runner.TaskSnapshot, error) {
	snapshots, err := runner.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("snapshot %s holds no tasks", path)
	}
	return snapshots, nil
}

// FindLatest returns the lexically newest default-named snapshot in dir.
// Default names embed a UTC timestamp, so lexical order is creation order.
func FindLatest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	candidates := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, DefaultSnapshotPrefix) && strings.HasSuffix(name, ".yaml") {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no %s*.yaml snapshots in %s", DefaultSnapshotPrefix, dir)
	}
	sort.Strings(candidates)
	return filepath.Join(dir, candidates[len(candidates)-1]), nil
}
