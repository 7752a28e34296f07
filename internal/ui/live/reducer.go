package live

// Reduce folds one run event into the view state. It never mutates the
// input state, so the model can keep the previous value while rendering.
func Reduce(s State, ev Event) State {
	switch ev.Kind {
	case EventRunStart:
		s.RunID = ev.RunID
		s.TaskTotal = ev.TaskTotal
		return s

	case EventTaskStart:
		rows := cloneRows(s.Rows)
		rows = append(rows, TaskRow{
			Name:        ev.Task,
			State:       ev.State,
			Repetitions: ev.Repetitions,
		})
		s.Rows = rows
		return s

	case EventStateChange:
		return s.updateRow(ev.Task, func(row *TaskRow) {
			row.State = ev.State
		})

	case EventAttemptRejected:
		return s.updateRow(ev.Task, func(row *TaskRow) {
			row.Note = firstLine(ev.Critique)
		})

	case EventRepetitionEnd:
		s = s.updateRow(ev.Task, func(row *TaskRow) {
			row.Repetition = ev.Repetition
			if ev.Accepted {
				row.Accepted++
			} else {
				row.Rejected++
			}
		})
		if ev.Accepted {
			s.Accepted++
		} else {
			s.Rejected++
		}
		return s

	case EventWarning:
		s.LastWarning = firstLine(ev.Warning)
		return s

	case EventTaskEnd:
		return s.updateRow(ev.Task, func(row *TaskRow) {
			row.Done = true
			row.Accepted = ev.AcceptedTotal
			row.Rejected = ev.RejectedTotal
		})

	case EventRunEnd:
		s.Finished = true
		s.Summary = ev.Summary
		return s
	}
	return s
}

func (s State) updateRow(name string, apply func(*TaskRow)) State {
	i := s.rowIndex(name)
	if i < 0 {
		return s
	}
	rows := cloneRows(s.Rows)
	apply(&rows[i])
	s.Rows = rows
	return s
}
