package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Brandon7CC/MODELFORGE/internal/config"
	"github.com/Brandon7CC/MODELFORGE/internal/history"
	"github.com/Brandon7CC/MODELFORGE/internal/model"
	"github.com/Brandon7CC/MODELFORGE/internal/pipeline"
	"github.com/Brandon7CC/MODELFORGE/internal/report"
	"github.com/Brandon7CC/MODELFORGE/internal/runner"
	"github.com/Brandon7CC/MODELFORGE/internal/ui/live"
	"github.com/Brandon7CC/MODELFORGE/pkg/quota"
	"github.com/Brandon7CC/MODELFORGE/pkg/quota/httpclient"
	"github.com/Brandon7CC/MODELFORGE/pkg/quota/local"
)

// runPipeline is a test seam for the runner.
var runPipeline = runner.Run

const cleanupTimeout = 30 * time.Second

func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		uiMode := fs.String("ui", "auto", "Progress UI: auto, live, or plain")
		verbose := fs.Bool("verbose", false, "Print state transitions and attempt details")
		noColor := fs.Bool("no-color", false, "Disable ANSI styling")
		ceiling := fs.Int("ceiling", 0, "Invalid-response ceiling per repetition (0 = default)")
		dbPath := fs.String("db", "", "DuckDB file to archive results into after the run")
		ollamaHost := fs.String("ollama-host", "", "Ollama base URL (default $OLLAMA_HOST)")
		quotaMode := fs.String("quota", "off", "Hosted-provider quota: off, local, or remote")
		quotaLimits := fs.String("quota-limits", "", "Limit definitions YAML for -quota local")
		quotaURL := fs.String("quota-url", "", "quotad base URL for -quota remote")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		configPath := fs.Arg(0)
		if configPath == "" {
			fmt.Fprintln(stderr, "Missing <tasks.yaml>")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if fs.NArg() > 2 {
			fmt.Fprintln(stderr, "Too many arguments")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		outputPath := fs.Arg(1)
		if outputPath == "" {
			outputPath = defaultOutputPath(time.Now())
		}

		file, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load tasks: %v\n", err)
			return ExitError
		}
		set := pipeline.BuildTaskSet(file)

		limiter, err := buildLimiter(*quotaMode, *quotaLimits, *quotaURL)
		if err != nil {
			fmt.Fprintf(stderr, "Quota setup failed: %v\n", err)
			return ExitUsage
		}

		decision, err := resolveUIMode(*uiMode, *verbose, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		sweeper := model.NewOllamaClient(*ollamaHost)
		registry := model.NewRegistry()
		factory := model.NewFactory(model.FactoryConfig{
			OllamaHost: *ollamaHost,
			Limiter:    limiter,
		})

		var obs runner.RunObserver
		var controller *live.Controller
		if decision.useLive {
			controller = live.NewController()
			controller.Start(stdout, live.Options{NoColor: *noColor})
			obs = controller
		} else {
			obs = &runner.ConsoleObserver{Writer: stdout, Verbose: *verbose, NoColor: *noColor}
		}

		summary, runErr := runPipeline(ctx, set, runner.Params{
			OutputPath: outputPath,
			Ceiling:    *ceiling,
			Deps: runner.Deps{
				Factory:  factory,
				Registry: registry,
				Observer: obs,
			},
		})
		if controller != nil {
			controller.Close()
			if err := controller.Wait(); err != nil {
				fmt.Fprintf(stderr, "UI error: %v\n", err)
			}
		}

		if errors.Is(runErr, runner.ErrInterrupted) {
			stop()
			fmt.Fprintln(stderr, "Interrupted; removing ephemeral models...")
			cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
			defer cancel()
			disposed, swept := runner.Cleanup(cleanupCtx, registry, sweeper, &runner.ConsoleObserver{Writer: stderr, NoColor: *noColor})
			fmt.Fprintf(stderr, "Deleted %d models (%d swept)\n", disposed, swept)
			return ExitError
		}
		if runErr != nil {
			fmt.Fprintf(stderr, "Run failed: %v\n", runErr)
			return ExitError
		}

		printResults(stdout, set)
		fmt.Fprintf(stdout, "Run %s: %d accepted, %d rejected\n", summary.RunID, summary.Accepted, summary.Rejected)
		fmt.Fprintf(stdout, "Results: %s\n", outputPath)

		if *dbPath != "" {
			stats, err := archiveResults(context.Background(), *dbPath, outputPath, runner.Snapshot(set))
			if err != nil {
				fmt.Fprintf(stderr, "History ingest failed: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Archived %d new results (%d already present) to %s\n", stats.NewResults, stats.SeenResults, *dbPath)
		}
		return ExitOK
	}
}

// printResults renders the accepted outputs as a markdown object listing,
// styled for the terminal when possible.
func printResults(stdout io.Writer, set *pipeline.TaskSet) {
	markdown := report.BuildMarkdown(runner.Snapshot(set))
	rendered, err := report.RenderTerminal(markdown)
	if err != nil {
		rendered = markdown
	}
	fmt.Fprintln(stdout, rendered)
}

func archiveResults(ctx context.Context, dbPath, snapshotPath string, snapshots []runner.TaskSnapshot) (history.IngestStats, error) {
	store, err := history.Open(dbPath)
	if err != nil {
		return history.IngestStats{}, err
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		return history.IngestStats{}, err
	}
	return store.Ingest(ctx, snapshotPath, snapshots)
}

func buildLimiter(mode, limitsPath, url string) (quota.Limiter, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "off":
		return nil, nil
	case "local":
		if limitsPath == "" {
			return nil, fmt.Errorf("-quota local requires -quota-limits")
		}
		return local.NewMemoryLimiterFromFile(limitsPath)
	case "remote":
		if url == "" {
			return nil, fmt.Errorf("-quota remote requires -quota-url")
		}
		return httpclient.New(url), nil
	default:
		return nil, fmt.Errorf("invalid quota mode %q (expected off|local|remote)", mode)
	}
}

func defaultOutputPath(now time.Time) string {
	return fmt.Sprintf("research_results_%s.yaml", now.Format("20060102-150405"))
}
