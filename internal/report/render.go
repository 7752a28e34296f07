package report

import "github.com/charmbracelet/glamour"

// RenderTerminal styles markdown for terminal display. Callers printing to a
// pipe should fall back to the plain markdown on error.
func RenderTerminal(markdown string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(markdown)
}
