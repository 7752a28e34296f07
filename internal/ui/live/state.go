package live

import (
	"time"

	"github.com/Brandon7CC/MODELFORGE/internal/pipeline"
	"github.com/Brandon7CC/MODELFORGE/internal/runner"
)

// TaskRow is the live view of one task in the run.
type TaskRow struct {
	Name        string
	State       pipeline.State
	Repetitions int
	Repetition  int
	Accepted    int
	Rejected    int
	Note        string
	Done        bool
}

// State is everything the live view knows about the run so far. It is
// immutable from the model's point of view: Reduce returns a fresh copy.
type State struct {
	RunID     string
	TaskTotal int
	StartedAt time.Time

	Rows []TaskRow

	Accepted int
	Rejected int

	LastWarning string
	Finished    bool
	Summary     runner.Summary
}

func (s State) rowIndex(name string) int {
	for i := range s.Rows {
		if s.Rows[i].Name == name {
			return i
		}
	}
	return -1
}

func cloneRows(rows []TaskRow) []TaskRow {
	out := make([]TaskRow, len(rows))
	copy(out, rows)
	return out
}
