// Package theme provides the Lip Gloss color palette and reusable styles
// for the lottery TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Brand colors.
var (
	ColorClover = lipgloss.Color("#22c55e")
	ColorGold   = lipgloss.Color("#f59e0b")
	ColorOwner  = lipgloss.Color("#a855f7")
	ColorPaused = lipgloss.Color("#d97706")
)

// Event kind colors for the debug log.
var (
	ColorConn = lipgloss.Color("#3b82f6")
	ColorRead = lipgloss.Color("#06b6d4")
	ColorTx   = lipgloss.Color("#7c3aed")
	ColorNote = lipgloss.Color("#16a34a")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorDefault = lipgloss.Color("#9ca3af")
)

// ProgressColor returns the bar color for the share of the entry
// threshold reached so far.
func ProgressColor(pct float64) lipgloss.Color {
	switch {
	case pct >= 1:
		return ColorGold
	case pct >= 0.5:
		return ColorClover
	default:
		return ColorDimmed
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleButton = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBg).
		Background(ColorClover).
		Padding(0, 3)

	StyleNotice = lipgloss.NewStyle().
		Italic(true).
		Foreground(ColorBright).
		Padding(0, 1)
)

// ShortAddress abbreviates a hex address to 0x1234…abcd.
func ShortAddress(hex string) string {
	if len(hex) <= 12 {
		return hex
	}
	return hex[:6] + "…" + hex[len(hex)-4:]
}
