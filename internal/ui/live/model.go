package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

const defaultTickInterval = 200 * time.Millisecond

// Options tune the live view.
type Options struct {
	// NoColor renders the view without ANSI styling.
	NoColor bool
	// TickInterval controls how often the elapsed clock refreshes.
	TickInterval time.Duration
	now          func() time.Time
}

func (o Options) tick() time.Duration {
	if o.TickInterval <= 0 {
		return defaultTickInterval
	}
	return o.TickInterval
}

func (o Options) clock() func() time.Time {
	if o.now == nil {
		return time.Now
	}
	return o.now
}

type eventMsg Event

type tickMsg time.Time

type model struct {
	events  <-chan Event
	state   State
	tbl     table.Model
	columns []table.Column
	now     func() time.Time
	started time.Time
	width   int
	height  int
	tickDur time.Duration
	noColor bool
}

func newModel(events <-chan Event, opts Options) model {
	now := opts.clock()
	columns := tableColumns(80)
	tbl := table.New(
		table.WithColumns(columns),
		table.WithHeight(10),
		table.WithFocused(false),
	)
	tbl.SetStyles(tableStyles(opts.NoColor))
	return model{
		events:  events,
		tbl:     tbl,
		columns: columns,
		now:     now,
		started: now(),
		width:   80,
		tickDur: opts.tick(),
		noColor: opts.NoColor,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.tickCmd())
}

func (m model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return eventMsg(ev)
	}
}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(m.tickDur, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTable()
		return m, nil

	case eventMsg:
		m.state = Reduce(m.state, Event(msg))
		m.refreshRows()
		return m, m.waitForEvent()

	case tickMsg:
		return m, m.tickCmd()
	}
	return m, nil
}

func (m *model) resizeTable() {
	m.columns = tableColumns(m.width)
	m.tbl.SetColumns(m.columns)
	height := m.height - 6
	if height < 4 {
		height = 4
	}
	m.tbl.SetHeight(height)
	m.refreshRows()
}

func (m *model) refreshRows() {
	m.tbl.SetRows(tableRows(m.state, m.columns))
}

func (m model) View() string {
	elapsed := m.now().Sub(m.started)
	return renderView(m.state, m.tbl.View(), elapsed, m.width, m.noColor)
}
