// Package notify carries user-facing notices (network mismatch, confirmed
// transactions) from the session layer to whatever surface is showing them.
package notify

import (
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

const queueSize = 16

// Level classifies a notice for styling.
type Level int

const (
	Info Level = iota
	Success
	Warn
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Warn:
		return "warn"
	default:
		return "info"
	}
}

// Notifier receives user-facing notices.
type Notifier interface {
	Notify(level Level, text string)
}

// Msg is delivered to the Bubble Tea loop for each notice.
type Msg struct {
	Level Level
	Text  string
}

// Queue buffers notices raised from command goroutines until the UI loop
// picks them up through Wait.
type Queue struct {
	ch chan Msg
}

// NewQueue creates an empty notice queue.
func NewQueue() *Queue {
	return &Queue{ch: make(chan Msg, queueSize)}
}

// Notify enqueues a notice. When the buffer is full the oldest notice is
// dropped so callers never block.
func (q *Queue) Notify(level Level, text string) {
	msg := Msg{Level: level, Text: text}
	for {
		select {
		case q.ch <- msg:
			return
		default:
		}
		select {
		case <-q.ch:
		default:
		}
	}
}

// Wait returns a command that blocks until the next notice. It must be
// re-issued after every Msg, like a read loop.
func (q *Queue) Wait() tea.Cmd {
	return func() tea.Msg {
		return <-q.ch
	}
}

// Writer prints notices to a stream. Used by the headless commands.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a Writer targeting w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Notify(level Level, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.w, "[%s] %s\n", level, text)
}

// Discard drops every notice.
type Discard struct{}

func (Discard) Notify(Level, string) {}
