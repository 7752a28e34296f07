package report

import (
	"fmt"
	"strings"

	"github.com/Brandon7CC/MODELFORGE/internal/runner"
)

// BuildMarkdown lists every accepted output across the snapshot as a
// numbered object listing.
func BuildMarkdown(snapshots []runner.TaskSnapshot) string {
	var b strings.Builder
	b.WriteString("# Object listing\n")
	index := 0
	for _, snapshot := range snapshots {
		for _, output := range snapshot.PositiveResults {
			index++
			fmt.Fprintf(&b, "## Object %d\n%s\n", index, output)
		}
	}
	return b.String()
}

// BuildTaskMarkdown renders one task's snapshot with its configuration and
// both result lists, for detailed inspection.
func BuildTaskMarkdown(snapshot runner.TaskSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", snapshot.TaskName)
	fmt.Fprintf(&b, "- agent: %s\n", snapshot.AgentConfig)
	fmt.Fprintf(&b, "- postprocessor: %s\n", snapshot.PostprocessorConfig)
	fmt.Fprintf(&b, "- evaluator: %s\n\n", snapshot.EvaluatorConfig)
	b.WriteString("## Accepted\n")
	writeResultList(&b, snapshot.PositiveResults)
	b.WriteString("## Rejected\n")
	writeResultList(&b, snapshot.NegativeResults)
	return b.String()
}

func writeResultList(b *strings.Builder, results []string) {
	if len(results) == 0 {
		b.WriteString("_none_\n\n")
		return
	}
	for i, result := range results {
		fmt.Fprintf(b, "%d. %s\n", i+1, strings.ReplaceAll(result, "\n", " "))
	}
	b.WriteString("\n")
}
