package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Brandon7CC/MODELFORGE/internal/report"
)

// runReport builds the handler for the report command.
func runReport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		format := fs.String("format", "terminal", "Output format: terminal, markdown, or html")
		outputPath := fs.String("o", "", "Write the report to a file instead of stdout")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 1 {
			fmt.Fprintln(stderr, "Too many arguments")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		snapshotPath := fs.Arg(0)
		if snapshotPath == "" {
			latest, err := report.FindLatest(".")
			if err != nil {
				fmt.Fprintf(stderr, "No snapshot given and none found: %v\n", err)
				return ExitError
			}
			snapshotPath = latest
			fmt.Fprintf(stderr, "Using %s\n", snapshotPath)
		}

		snapshots, err := report.Load(snapshotPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load snapshot: %v\n", err)
			return ExitError
		}

		var rendered string
		switch *format {
		case "terminal":
			markdown := report.BuildMarkdown(snapshots)
			rendered, err = report.RenderTerminal(markdown)
			if err != nil {
				rendered = markdown
			}
		case "markdown":
			rendered = report.BuildMarkdown(snapshots)
		case "html":
			rendered, err = report.RenderHTML(snapshots, time.Now())
			if err != nil {
				fmt.Fprintf(stderr, "Failed to render report: %v\n", err)
				return ExitError
			}
		default:
			fmt.Fprintf(stderr, "invalid format %q (expected terminal|markdown|html)\n", *format)
			return ExitUsage
		}

		if *outputPath != "" {
			if err := os.WriteFile(*outputPath, []byte(rendered), 0o644); err != nil {
				fmt.Fprintf(stderr, "Failed to write report: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Report written to %s\n", *outputPath)
			return ExitOK
		}
		fmt.Fprintln(stdout, rendered)
		return ExitOK
	}
}
