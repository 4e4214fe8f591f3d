// Package about renders the lottery description panel.
package about

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/sclottery/lottery-tui/internal/theme"
)

const description = `# Smart Contract Lottery

Feeling lucky? Come try out our lottery on Ethereum.
Winners are randomly selected using chainlink!

* Each entry costs **0.01 ETH**, one per address.
* Once enough entries are in, the owner assigns a winner.
* Winners withdraw their prize from this screen.
`

// Model holds the panel's inputs.
type Model struct {
	Network  string
	Contract string
}

// View renders the panel as an overlay of the given width. If markdown
// rendering fails the raw text is shown instead.
func (m Model) View(width int) string {
	innerW := width - 8
	if innerW < 20 {
		innerW = 20
	}

	md := description + fmt.Sprintf("\nContract `%s` on %s.\n", m.Contract, m.Network)
	body := md
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(innerW),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			body = strings.TrimRight(out, "\n")
		}
	}

	help := theme.StyleDimmed.Render("esc:close")
	return lipgloss.NewStyle().
		Width(innerW+4).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(lipgloss.JoinVertical(lipgloss.Left, body, help))
}
