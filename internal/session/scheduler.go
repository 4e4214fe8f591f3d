package session

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Task names used by the session.
const (
	TaskConnect = "connect"
	TaskWinner  = "winner"
	TaskEntries = "entries"
)

// TickMsg fires a scheduled task. Ticks carry the generation of the task
// that armed them; ticks from a cancelled or replaced task are dropped.
type TickMsg struct {
	Task string
	gen  uint64
}

type task struct {
	interval time.Duration
	gen      uint64
	run      func() tea.Cmd
}

// Scheduler owns the session's named background tasks. It is driven from
// Update and is not safe for concurrent use.
type Scheduler struct {
	tasks map[string]*task
	gen   uint64
	tick  func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

// NewScheduler creates a scheduler with no tasks.
func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(map[string]*task),
		tick:  tea.Tick,
	}
}

// Every registers run to fire every interval, first after one interval.
// An existing task with the same name is cancelled.
func (s *Scheduler) Every(name string, interval time.Duration, run func() tea.Cmd) tea.Cmd {
	s.gen++
	t := &task{interval: interval, gen: s.gen, run: run}
	s.tasks[name] = t
	return s.arm(name, t)
}

// Once runs a task immediately and does not repeat it. Any repeating task
// with the same name is cancelled.
func (s *Scheduler) Once(name string, run func() tea.Cmd) tea.Cmd {
	delete(s.tasks, name)
	return run()
}

// Handle runs the task a tick belongs to and re-arms it. The next tick is
// armed whether or not the run succeeds.
func (s *Scheduler) Handle(msg TickMsg) tea.Cmd {
	t, ok := s.tasks[msg.Task]
	if !ok || t.gen != msg.gen {
		return nil
	}
	return tea.Batch(t.run(), s.arm(msg.Task, t))
}

// Cancel stops the named task. Its outstanding tick is ignored.
func (s *Scheduler) Cancel(name string) {
	delete(s.tasks, name)
}

// Stop cancels every task.
func (s *Scheduler) Stop() {
	for name := range s.tasks {
		delete(s.tasks, name)
	}
}

// Active lists the repeating tasks, sorted by name.
func (s *Scheduler) Active() []string {
	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) arm(name string, t *task) tea.Cmd {
	gen := t.gen
	return s.tick(t.interval, func(time.Time) tea.Msg {
		return TickMsg{Task: name, gen: gen}
	})
}
