package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Brandon7CC/MODELFORGE/internal/reportserver"
)

// serveReport is a test seam for running the report server.
var serveReport = reportserver.Serve

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		addr := fs.String("addr", "127.0.0.1:5000", "Address to listen on")
		dbPath := fs.String("db", "", "DuckDB history file to expose at /data/history.duckdb")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		snapshotPath := fs.Arg(0)
		if snapshotPath == "" {
			fmt.Fprintln(stderr, "Missing <results.yaml>")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if fs.NArg() > 1 {
			fmt.Fprintln(stderr, "Too many arguments")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if *addr == "" {
			fmt.Fprintln(stderr, "Missing --addr")
			return ExitUsage
		}
		if _, err := os.Stat(snapshotPath); err != nil {
			fmt.Fprintf(stderr, "Snapshot not found: %v\n", err)
			return ExitError
		}

		cfg := reportserver.Config{
			Addr:         *addr,
			SnapshotPath: snapshotPath,
			DBPath:       *dbPath,
		}
		fmt.Fprintf(stdout, "Serving report at http://%s\n", cfg.Addr)
		if err := serveReport(context.Background(), cfg); err != nil {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
