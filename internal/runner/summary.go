package runner

import (
	"time"

	"github.com/Brandon7CC/MODELFORGE/internal/pipeline"
)

// TaskSummary tallies one task after its repetitions.
type TaskSummary struct {
	Name     string
	Accepted int
	Rejected int
}

// Summary aggregates one run.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Tasks      []TaskSummary
	Accepted   int
	Rejected   int
}

// AcceptRate is the fraction of recorded outcomes that were acceptances.
func (s Summary) AcceptRate() float64 {
	total := s.Accepted + s.Rejected
	if total == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(total)
}

func summarize(runID string, startedAt, finishedAt time.Time, set *pipeline.TaskSet) Summary {
	summary := Summary{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Tasks:      make([]TaskSummary, 0, len(set.Tasks)),
	}
	for _, task := range set.Tasks {
		taskSummary := TaskSummary{
			Name:     task.Name,
			Accepted: len(task.PositiveResults),
			Rejected: len(task.NegativeResults),
		}
		summary.Tasks = append(summary.Tasks, taskSummary)
		summary.Accepted += taskSummary.Accepted
		summary.Rejected += taskSummary.Rejected
	}
	return summary
}
