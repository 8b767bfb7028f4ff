package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kienminh/blockroom/internal/domain"
)

// Piece colors as the web client renders them.
var cellColors = map[domain.CellCode]lipgloss.Color{
	1: lipgloss.Color("#00FFFF"), // I cyan
	2: lipgloss.Color("#FFFF00"), // O yellow
	3: lipgloss.Color("#A020F0"), // T purple
	4: lipgloss.Color("#32CD32"), // S lime
	5: lipgloss.Color("#FF0000"), // Z red
	6: lipgloss.Color("#0000FF"), // J blue
	7: lipgloss.Color("#FFA500"), // L orange
}

var (
	colorMuted   = lipgloss.Color("#636363")
	colorAccent  = lipgloss.Color("#00FF88")
	colorDanger  = lipgloss.Color("#FF5252")
	colorEmptyBG = lipgloss.Color("#111111")

	styleBoardFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	styleEndedFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
	styleError = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)

	styleEmptyCell = lipgloss.NewStyle().Background(colorEmptyBG)
)
