package live

import (
	"fmt"
	"strings"
)

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func repetitionLabel(row TaskRow) string {
	if row.Repetitions <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d", row.Repetition, row.Repetitions)
}
