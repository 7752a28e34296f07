package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/Brandon7CC/MODELFORGE/internal/runner"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem auto;max-width:60rem;padding:0 1rem;color:#1f2430}
h1{border-bottom:2px solid #1f2430;padding-bottom:.3rem}
section{margin:1.5rem 0;border:1px solid #d8dee9;border-radius:6px;padding:1rem}
dl{display:grid;grid-template-columns:max-content 1fr;gap:.2rem .8rem}
dt{font-weight:600}
pre{background:#f4f6f8;border-radius:4px;padding:.6rem;overflow-x:auto;white-space:pre-wrap}
.tally{color:#4c566a;font-size:.9rem}`

// ReportPage builds the HTML report for a snapshot.
func ReportPage(snapshots []runner.TaskSnapshot, generatedAt time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"<!doctype html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n"+
				"<title>MODELFORGE results</title>\n<style>%s</style>\n</head>\n<body>\n"+
				"<h1>MODELFORGE results</h1>\n<p class=\"tally\">generated %s · %d task(s)</p>\n",
			pageStyle,
			templ.EscapeString(generatedAt.UTC().Format(time.RFC3339)),
			len(snapshots),
		)
		if err != nil {
			return err
		}
		for _, snapshot := range snapshots {
			if err := taskSection(snapshot).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

func taskSection(snapshot runner.TaskSnapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		accepted := len(snapshot.PositiveResults)
		rejected := len(snapshot.NegativeResults)
		_, err := fmt.Fprintf(w,
			"<section>\n<h2>%s</h2>\n<dl>\n"+
				"<dt>prompt</dt><dd>%s</dd>\n"+
				"<dt>agent</dt><dd>%s</dd>\n"+
				"<dt>postprocessor</dt><dd>%s</dd>\n"+
				"<dt>evaluator</dt><dd>%s</dd>\n</dl>\n"+
				"<p class=\"tally\">%d accepted · %d rejected · %s accepted rate</p>\n",
			templ.EscapeString(snapshot.TaskName),
			templ.EscapeString(snapshot.TaskPrompt),
			templ.EscapeString(snapshot.AgentConfig),
			templ.EscapeString(snapshot.PostprocessorConfig),
			templ.EscapeString(snapshot.EvaluatorConfig),
			accepted, rejected, formatPercent(acceptRate(accepted, rejected)),
		)
		if err != nil {
			return err
		}
		if err := resultBlock(w, "Accepted", snapshot.PositiveResults); err != nil {
			return err
		}
		if err := resultBlock(w, "Rejected", snapshot.NegativeResults); err != nil {
			return err
		}
		_, err = io.WriteString(w, "</section>\n")
		return err
	})
}

func resultBlock(w io.Writer, title string, results []string) error {
	if _, err := fmt.Fprintf(w, "<h3>%s (%d)</h3>\n", title, len(results)); err != nil {
		return err
	}
	if len(results) == 0 {
		_, err := io.WriteString(w, "<p class=\"tally\">none</p>\n")
		return err
	}
	for _, result := range results {
		if _, err := fmt.Fprintf(w, "<pre>%s</pre>\n", templ.EscapeString(result)); err != nil {
			return err
		}
	}
	return nil
}
