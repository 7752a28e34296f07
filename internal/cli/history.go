package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/Brandon7CC/MODELFORGE/internal/history"
	"github.com/Brandon7CC/MODELFORGE/internal/report"
)

// runHistory builds the handler for the history command. With a snapshot
// argument it ingests the snapshot; it always prints per-task stats after.
func runHistory(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		dbPath := fs.String("db", "", "DuckDB history file")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if *dbPath == "" {
			fmt.Fprintln(stderr, "Missing -db")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if fs.NArg() > 1 {
			fmt.Fprintln(stderr, "Too many arguments")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		ctx := context.Background()
		store, err := history.Open(*dbPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open history: %v\n", err)
			return ExitError
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			fmt.Fprintf(stderr, "Failed to prepare history schema: %v\n", err)
			return ExitError
		}

		if snapshotPath := fs.Arg(0); snapshotPath != "" {
			snapshots, err := report.Load(snapshotPath)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load snapshot: %v\n", err)
				return ExitError
			}
			stats, err := store.Ingest(ctx, snapshotPath, snapshots)
			if err != nil {
				fmt.Fprintf(stderr, "Ingest failed: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Archived %d new results (%d already present)\n", stats.NewResults, stats.SeenResults)
		}

		taskStats, err := store.Stats(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to read stats: %v\n", err)
			return ExitError
		}
		if len(taskStats) == 0 {
			fmt.Fprintln(stdout, "History is empty")
			return ExitOK
		}
		for _, ts := range taskStats {
			fmt.Fprintf(stdout, "%-30s accepted %4d  rejected %4d  rate %6.2f%%\n",
				ts.Name, ts.Accepted, ts.Rejected, ts.AcceptRate()*100)
		}
		return ExitOK
	}
}
