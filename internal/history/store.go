// Package history archives task snapshots in a DuckDB database so results
// survive snapshot overwrites and stay queryable across runs.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"github.com/Brandon7CC/MODELFORGE/internal/runner"
)

//go:embed schema.sql
var schemaDDL string

// SchemaDDL returns the schema applied to history databases.
func SchemaDDL() string {
	return schemaDDL
}

// Store wraps one DuckDB database holding archived results.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. An empty path opens an
// in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema applies the schema DDL. It is idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return errors.New("history: db is nil")
	}
	_, err := s.db.ExecContext(ctx, schemaDDL)
	return err
}

// IngestStats tallies one ingest.
type IngestStats struct {
	Tasks       int
	NewResults  int
	SeenResults int
}

// Ingest archives a snapshot. Tasks are keyed by a fingerprint of their
// configuration and results by task, kind, and position, so re-ingesting the
// same snapshot inserts nothing new.
func (s *Store) Ingest(ctx context.Context, snapshotPath string, snapshots []runner.TaskSnapshot) (IngestStats, error) {
	var stats IngestStats
	if len(snapshots) == 0 {
		return stats, errors.New("history: nothing to ingest")
	}

	ingestID := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO ingests (ingest_id, snapshot_path, ingested_at) VALUES (?, ?, now())`,
		ingestID, snapshotPath,
	); err != nil {
		return stats, fmt.Errorf("record ingest: %w", err)
	}

	for _, snapshot := range snapshots {
		taskID, taskKey, err := s.upsertTask(ctx, snapshot)
		if err != nil {
			return stats, err
		}
		stats.Tasks++
		inserted, seen, err := s.insertResults(ctx, ingestID, taskID, taskKey, true, snapshot.PositiveResults)
		if err != nil {
			return stats, err
		}
		stats.NewResults += inserted
		stats.SeenResults += seen
		inserted, seen, err = s.insertResults(ctx, ingestID, taskID, taskKey, false, snapshot.NegativeResults)
		if err != nil {
			return stats, err
		}
		stats.NewResults += inserted
		stats.SeenResults += seen
	}
	return stats, nil
}

// upsertTask inserts the task row keyed by its configuration fingerprint and
// returns the surviving row's id and key.
func (s *Store) upsertTask(ctx context.Context, snapshot runner.TaskSnapshot) (string, string, error) {
	key, err := fingerprint(map[string]any{
		"task_name":             snapshot.TaskName,
		"task_prompt":           snapshot.TaskPrompt,
		"agent_config":          snapshot.AgentConfig,
		"post_processor_config": snapshot.PostprocessorConfig,
		"evaluator_config":      snapshot.EvaluatorConfig,
	})
	if err != nil {
		return "", "", err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (task_id, task_key, task_name, task_prompt, agent_config, post_processor_config, evaluator_config, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, now())
		 ON CONFLICT (task_key) DO NOTHING`,
		uuid.NewString(), key, snapshot.TaskName, snapshot.TaskPrompt,
		snapshot.AgentConfig, snapshot.PostprocessorConfig, snapshot.EvaluatorConfig,
	); err != nil {
		return "", "", fmt.Errorf("upsert task %s: %w", snapshot.TaskName, err)
	}
	var id string
	if err := s.db.QueryRowContext(ctx,
		`SELECT task_id FROM tasks WHERE task_key = ?`, key,
	).Scan(&id); err != nil {
		return "", "", fmt.Errorf("lookup task %s: %w", snapshot.TaskName, err)
	}
	return id, key, nil
}

func (s *Store) insertResults(ctx context.Context, ingestID, taskID, taskKey string, accepted bool, outputs []string) (inserted, seen int, err error) {
	for ordinal, output := range outputs {
		key, err := fingerprint(map[string]any{
			"task_key": taskKey,
			"accepted": accepted,
			"ordinal":  ordinal,
			"output":   output,
		})
		if err != nil {
			return inserted, seen, err
		}
		result, err := s.db.ExecContext(ctx,
			`INSERT INTO results (result_id, result_key, ingest_id, task_id, accepted, ordinal, output, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, now())
			 ON CONFLICT (result_key) DO NOTHING`,
			uuid.NewString(), key, ingestID, taskID, accepted, ordinal, output,
		)
		if err != nil {
			return inserted, seen, fmt.Errorf("insert result: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return inserted, seen, err
		}
		if affected > 0 {
			inserted++
		} else {
			seen++
		}
	}
	return inserted, seen, nil
}

// TaskStats is one task's archived tallies.
type TaskStats struct {
	Name     string
	Accepted int
	Rejected int
}

// AcceptRate is the fraction of archived results that were acceptances.
func (t TaskStats) AcceptRate() float64 {
	total := t.Accepted + t.Rejected
	if total == 0 {
		return 0
	}
	return float64(t.Accepted) / float64(total)
}

// Stats aggregates archived results per task, ordered by task name.
func (s *Store) Stats(ctx context.Context) ([]TaskStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.task_name,
		       count(*) FILTER (WHERE r.accepted) AS accepted,
		       count(*) FILTER (WHERE NOT r.accepted) AS rejected
		FROM tasks t
		LEFT JOIN results r ON r.task_id = t.task_id
		GROUP BY t.task_name
		ORDER BY t.task_name`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()
	var stats []TaskStats
	for rows.Next() {
		var item TaskStats
		if err := rows.Scan(&item.Name, &item.Accepted, &item.Rejected); err != nil {
			return nil, err
		}
		stats = append(stats, item)
	}
	return stats, rows.Err()
}
