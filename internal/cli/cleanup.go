package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/Brandon7CC/MODELFORGE/internal/model"
)

// sweepRuntime is a test seam around the runtime sweep.
var sweepRuntime = func(ctx context.Context, host string) (int, error) {
	return model.NewOllamaClient(host).Sweep(ctx)
}

// runCleanup builds the handler for the cleanup command.
func runCleanup(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		ollamaHost := fs.String("ollama-host", "", "Ollama base URL (default $OLLAMA_HOST)")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 0 {
			fmt.Fprintln(stderr, "Too many arguments")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		swept, err := sweepRuntime(ctx, *ollamaHost)
		if err != nil {
			fmt.Fprintf(stderr, "Sweep failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Deleted %d model(s) with prefix %s\n", swept, model.NamePrefix)
		return ExitOK
	}
}
