package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kienminh/blockroom/internal/domain"
)

// renderBoard draws one participant's board as two terminal columns per cell
// so the aspect ratio roughly matches a square grid.
func renderBoard(b domain.Board) string {
	if len(b) == 0 {
		b = domain.NewBoard()
	}
	var sb strings.Builder
	for y, row := range b {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, cell := range row {
			if color, ok := cellColors[cell]; ok {
				sb.WriteString(lipgloss.NewStyle().Background(color).Render("  "))
			} else {
				sb.WriteString(styleEmptyCell.Render("  "))
			}
		}
	}
	return sb.String()
}

// renderCard draws one participant's full panel: name, score, level, status,
// board and upcoming piece.
func renderCard(p domain.Participant, snap domain.ParticipantSnapshot, isLocal, isWatched bool) string {
	title := p.DisplayName
	if isLocal {
		title += " (you)"
	}
	if isWatched && !isLocal {
		title += " (watching)"
	}

	head := styleTitle.Render(title)
	stats := fmt.Sprintf("score %d  level %d", snap.Score, snap.Level)
	status := string(snap.Status)
	if snap.NextPiece != "" {
		stats += "  next " + string(snap.NextPiece)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		head,
		stats,
		styleMuted.Render(status),
		renderBoard(snap.Board),
	)

	if snap.Status == domain.StatusEnded {
		return styleEndedFrame.Render(body)
	}
	return styleBoardFrame.Render(body)
}
