package live

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
)

const (
	colState    = 11
	colRep      = 7
	colAccepted = 4
	colRejected = 4
	minTaskCol  = 12
	minNoteCol  = 16
)

// tableColumns sizes the task and note columns to the available width,
// keeping the numeric columns fixed.
func tableColumns(width int) []table.Column {
	fixed := colState + colRep + colAccepted + colRejected
	free := width - fixed - 12
	taskWidth := free / 3
	if taskWidth < minTaskCol {
		taskWidth = minTaskCol
	}
	noteWidth := free - taskWidth
	if noteWidth < minNoteCol {
		noteWidth = minNoteCol
	}
	return []table.Column{
		{Title: "TASK", Width: taskWidth},
		{Title: "STATE", Width: colState},
		{Title: "REP", Width: colRep},
		{Title: "OK", Width: colAccepted},
		{Title: "NO", Width: colRejected},
		{Title: "LAST CRITIQUE", Width: noteWidth},
	}
}

func tableRows(s State, columns []table.Column) []table.Row {
	rows := make([]table.Row, 0, len(s.Rows))
	for _, row := range s.Rows {
		rows = append(rows, table.Row{
			truncate(row.Name, columns[0].Width),
			string(row.State),
			repetitionLabel(row),
			strconv.Itoa(row.Accepted),
			strconv.Itoa(row.Rejected),
			truncate(row.Note, columns[5].Width),
		})
	}
	return rows
}
