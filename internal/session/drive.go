package session

import tea "github.com/charmbracelet/bubbletea"

// Drive runs cmd and every command it leads to synchronously, feeding each
// message back through Update. It is meant for sessions without a
// Scheduler; ticks are discarded rather than waited on. The messages seen
// are passed to observe when it is non-nil.
func (m *Model) Drive(cmd tea.Cmd, observe func(tea.Msg)) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch msg := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case TickMsg:
			continue
		}
		if observe != nil {
			observe(msg)
		}
		queue = append(queue, m.Update(msg))
	}
}
