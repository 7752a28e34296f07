package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Brandon7CC/MODELFORGE/internal/runner"
)

// RenderHTML renders the report page into a string.
func RenderHTML(snapshots []runner.TaskSnapshot, generatedAt time.Time) (string, error) {
	var builder strings.Builder
	if err := ReportPage(snapshots, generatedAt).Render(context.Background(), &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

func acceptRate(accepted, rejected int) float64 {
	total := accepted + rejected
	if total == 0 {
		return 0
	}
	return float64(accepted) / float64(total)
}

// formatPercent returns a percentage string for report output.
func formatPercent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}
