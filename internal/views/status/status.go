package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sclottery/lottery-tui/internal/lottery"
	"github.com/sclottery/lottery-tui/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Connected  bool
	Network    string
	Account    common.Address
	Phase      lottery.Phase
	EntryCount uint64
	Width      int
}

// New creates a status bar model for the named network.
func New(network string) Model {
	return Model{Network: network}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	if m.Connected {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● " + theme.ShortAddress(m.Account.Hex()))
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Not connected")
	}

	network := theme.StyleDimmed.Render(m.Network)

	phaseColor := theme.ColorHealthy
	if m.Phase == lottery.PhasePaused {
		phaseColor = theme.ColorPaused
	}
	phase := lipgloss.NewStyle().Foreground(phaseColor).Render(m.Phase.String())

	entries := fmt.Sprintf("We have received %d entries", m.EntryCount)

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + network
	if m.Connected {
		content += sep + phase + sep + entries
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
