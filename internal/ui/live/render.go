package live

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func styled(style lipgloss.Style, s string, noColor bool) string {
	if noColor {
		return s
	}
	return style.Render(s)
}

func tableStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	if noColor {
		styles.Header = lipgloss.NewStyle().Padding(0, 1)
		styles.Cell = lipgloss.NewStyle().Padding(0, 1)
		styles.Selected = lipgloss.NewStyle()
		return styles
	}
	styles.Header = styles.Header.Bold(true).BorderBottom(true)
	styles.Selected = lipgloss.NewStyle()
	return styles
}

func renderView(s State, tableView string, elapsed time.Duration, width int, noColor bool) string {
	done := 0
	for _, row := range s.Rows {
		if row.Done {
			done++
		}
	}

	header := fmt.Sprintf("%s  %s  %s",
		styled(titleStyle, "MODELFORGE", noColor),
		s.RunID,
		styled(dimStyle, fmt.Sprintf("elapsed %s", elapsed.Round(time.Second)), noColor),
	)

	summary := fmt.Sprintf("tasks %d/%d  %s  %s",
		done, s.TaskTotal,
		styled(goodStyle, fmt.Sprintf("accepted %d", s.Accepted), noColor),
		styled(badStyle, fmt.Sprintf("rejected %d", s.Rejected), noColor),
	)

	footer := styled(dimStyle, "q to quit", noColor)
	if s.LastWarning != "" {
		footer = styled(warningStyle, truncate("warning: "+s.LastWarning, width), noColor)
	}
	if s.Finished {
		footer = styled(titleStyle, fmt.Sprintf("run complete — %d accepted, %d rejected", s.Summary.Accepted, s.Summary.Rejected), noColor)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, summary, "", tableView, footer)
}
