// Package action renders the single primary control.
package action

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sclottery/lottery-tui/internal/present"
	"github.com/sclottery/lottery-tui/internal/theme"
)

// Model renders a resolved action as a button or a notice.
type Model struct {
	Action present.Action
	spin   spinner.Model
}

// New creates the control in its disconnected state.
func New() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorClover)
	return Model{Action: present.ConnectAction, spin: sp}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// Update advances the spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.spin, cmd = m.spin.Update(msg)
	return m, cmd
}

// View renders the control centered in width.
func (m Model) View(width int) string {
	var lines []string
	if h := m.Action.Headline(); h != "" {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGold).Render(h), "")
	}

	switch {
	case m.Action == present.LoadingAction:
		lines = append(lines, m.spin.View()+" "+theme.StyleDimmed.Render(m.Action.Label()))
	case m.Action.Interactive():
		style := theme.StyleButton
		if m.Action == present.AssignWinnerAction {
			style = style.Background(theme.ColorOwner)
		}
		lines = append(lines, style.Render(m.Action.Label()))
	case m.Action == present.PausedNotice:
		lines = append(lines, theme.StyleNotice.Foreground(theme.ColorPaused).Render(m.Action.Label()))
	default:
		lines = append(lines, theme.StyleNotice.Render(m.Action.Label()))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...))
}
