package runner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/Brandon7CC/MODELFORGE/internal/pipeline"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiGray  = "\x1b[90m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiBlue  = "\x1b[34m"
)

type consoleStyle int

const (
	styleDefault consoleStyle = iota
	styleTask
	styleGood
	styleBad
	styleDim
)

// ConsoleObserver prints run progress to a writer, styling lines when the
// writer is a terminal. State transitions print only in verbose mode.
type ConsoleObserver struct {
	Writer  io.Writer
	Verbose bool
	NoColor bool
	// Now is a clock seam for repetition timing; nil means time.Now.
	Now func() time.Time

	repTotal   int
	repDone    int
	repStarted time.Time
	elapsed    time.Duration
}

func (c *ConsoleObserver) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *ConsoleObserver) OnRunStart(runID string, taskTotal int) {
	c.printf(styleTask, "run %s: %d task(s)", runID, taskTotal)
}

func (c *ConsoleObserver) OnTaskStart(task string, repetitions int) {
	c.repTotal = repetitions
	c.repDone = 0
	c.elapsed = 0
	c.repStarted = c.now()
	c.printf(styleTask, "task %s: %d repetition(s)", task, repetitions)
}

func (c *ConsoleObserver) OnStateChange(task string, state pipeline.State) {
	if !c.Verbose {
		return
	}
	c.printf(styleDim, "  %s -> %s", task, state)
}

func (c *ConsoleObserver) OnAttemptRejected(task string, attempt int, output, critique string) {
	line := fmt.Sprintf("❌ %s attempt %d rejected", task, attempt)
	if critique != "" {
		line += ": " + firstLine(critique)
	}
	c.printf(styleBad, "%s", line)
}

func (c *ConsoleObserver) OnRepetitionEnd(task string, repetition int, accepted bool) {
	progress := c.repetitionProgress()
	if accepted {
		c.printf(styleGood, "✅ %s repetition %d accepted%s", task, repetition, progress)
		return
	}
	c.printf(styleBad, "❌ %s repetition %d rejected%s", task, repetition, progress)
}

// repetitionProgress renders the i/n, percent, and timing tail of a
// repetition line, matching the pacing report of the plain progress log.
func (c *ConsoleObserver) repetitionProgress() string {
	now := c.now()
	took := now.Sub(c.repStarted)
	c.repStarted = now
	c.repDone++
	c.elapsed += took
	if c.repTotal < 1 {
		return ""
	}
	average := c.elapsed / time.Duration(c.repDone)
	return fmt.Sprintf(" (%d/%d, %d%%, %.1fs, avg %.1fs)",
		c.repDone, c.repTotal, 100*c.repDone/c.repTotal,
		took.Seconds(), average.Seconds())
}

func (c *ConsoleObserver) OnWarning(task string, message string) {
	if task == "" {
		c.printf(styleBad, "warning: %s", firstLine(message))
		return
	}
	c.printf(styleBad, "warning [%s]: %s", task, firstLine(message))
}

func (c *ConsoleObserver) OnTaskEnd(task string, accepted, rejected int) {
	c.printf(styleGood, "task %s done: %d accepted, %d rejected", task, accepted, rejected)
}

func (c *ConsoleObserver) OnRunEnd(summary Summary) {
	elapsed := summary.FinishedAt.Sub(summary.StartedAt).Round(10 * time.Millisecond)
	c.printf(styleGood, "run %s finished in %s: %d accepted, %d rejected",
		summary.RunID, elapsed, summary.Accepted, summary.Rejected)
}

func (c *ConsoleObserver) printf(style consoleStyle, format string, args ...any) {
	if c.Writer == nil {
		return
	}
	p := paletteFor(c.Writer, c.NoColor)
	fmt.Fprintf(c.Writer, "%s\n", p.apply(style, fmt.Sprintf(format, args...)))
}

// firstLine trims a message to its first line so multi-line model output
// cannot scramble the progress log.
func firstLine(message string) string {
	message = strings.TrimSpace(message)
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		message = message[:idx] + "…"
	}
	return message
}

type palette struct {
	enabled bool
}

func paletteFor(writer io.Writer, noColor bool) palette {
	if noColor {
		return palette{enabled: false}
	}
	return palette{enabled: shouldUseStyling(writer)}
}

func shouldUseStyling(writer io.Writer) bool {
	if writer == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if strings.EqualFold(os.Getenv("CLICOLOR"), "0") {
		return false
	}
	if file, ok := writer.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := writer.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}

func (p palette) apply(style consoleStyle, text string) string {
	if !p.enabled {
		return text
	}
	switch style {
	case styleTask:
		return ansiBold + ansiBlue + text + ansiReset
	case styleGood:
		return ansiBold + ansiGreen + text + ansiReset
	case styleBad:
		return ansiBold + ansiRed + text + ansiReset
	case styleDim:
		return ansiDim + ansiGray + text + ansiReset
	default:
		return text
	}
}
