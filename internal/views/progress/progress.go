// Package progress draws the entries-versus-threshold bar. The fill
// eases toward its target on a harmonica spring.
package progress

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/sclottery/lottery-tui/internal/theme"
)

const fps = 60

// FrameMsg advances the animation by one frame.
type FrameMsg struct{}

// Model holds the bar state.
type Model struct {
	Entries uint64
	Minimum uint64

	spring    harmonica.Spring
	pos, vel  float64
	animating bool
}

// New creates an empty bar.
func New() Model {
	return Model{
		Minimum: 1,
		spring:  harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.5),
	}
}

// Set updates the counts and starts animating if the target moved.
func (m Model) Set(entries, minimum uint64) (Model, tea.Cmd) {
	if minimum == 0 {
		minimum = 1
	}
	m.Entries, m.Minimum = entries, minimum
	if m.animating || m.settled() {
		return m, nil
	}
	m.animating = true
	return m, frame()
}

// Update steps the spring on FrameMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(FrameMsg); !ok || !m.animating {
		return m, nil
	}
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target())
	if m.settled() {
		m.pos, m.vel = m.target(), 0
		m.animating = false
		return m, nil
	}
	return m, frame()
}

// View renders the bar at width columns.
func (m Model) View(width int) string {
	label := fmt.Sprintf(" %d/%d entries", m.Entries, m.Minimum)
	barW := width - lipgloss.Width(label) - 2
	if barW < 10 {
		barW = 10
	}

	filled := int(math.Round(clamp(m.pos) * float64(barW)))
	bar := lipgloss.NewStyle().Foreground(theme.ProgressColor(m.target())).Render(strings.Repeat("█", filled)) +
		theme.StyleDimmed.Render(strings.Repeat("░", barW-filled))
	return " " + bar + label
}

// target is the fill share, capped at a full bar once the threshold is met.
func (m Model) target() float64 {
	return clamp(float64(m.Entries) / float64(m.Minimum))
}

func (m Model) settled() bool {
	return math.Abs(m.pos-m.target()) < 0.001 && math.Abs(m.vel) < 0.001
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return FrameMsg{} })
}
