// Package tui renders the reconciled room view in the terminal. It is a thin
// layer over the reconciler's read-only state: no merge logic lives here.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kienminh/blockroom/internal/app"
	"github.com/kienminh/blockroom/internal/domain"
)

const dispatchTimeout = 3 * time.Second

type (
	stateChangedMsg struct{}
	phaseMsg        app.Phase
	actionErrMsg    struct{ err error }
)

// Model is the bubbletea model for one room session.
type Model struct {
	localID    domain.ParticipantID
	roster     domain.Roster
	rec        *app.Reconciler
	watcher    *app.Watcher
	dispatcher *app.Dispatcher
	coord      *app.Coordinator

	changes <-chan struct{}

	phase  app.Phase
	errMsg string
	width  int
}

func NewModel(localID domain.ParticipantID, roster domain.Roster, rec *app.Reconciler, watcher *app.Watcher, dispatcher *app.Dispatcher, coord *app.Coordinator) Model {
	return Model{
		localID:    localID,
		roster:     roster,
		rec:        rec,
		watcher:    watcher,
		dispatcher: dispatcher,
		coord:      coord,
		changes:    rec.Subscribe(),
		phase:      coord.Phase(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.waitForPhase())
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		<-ch
		return stateChangedMsg{}
	}
}

func (m Model) waitForPhase() tea.Cmd {
	ch := m.coord.Phases()
	return func() tea.Msg {
		return phaseMsg(<-ch)
	}
}

func (m Model) dispatch(action domain.Action) tea.Cmd {
	d := m.dispatcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := d.Dispatch(ctx, action); err != nil {
			return actionErrMsg{err: err}
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stateChangedMsg:
		return m, m.waitForChange()

	case phaseMsg:
		m.phase = app.Phase(msg)
		return m, m.waitForPhase()

	case actionErrMsg:
		m.errMsg = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.coord.Shutdown()
		return m, tea.Quit
	case "esc":
		m.errMsg = ""
		return m, nil
	case "left":
		return m, m.dispatch(domain.ActionMoveLeft)
	case "right":
		return m, m.dispatch(domain.ActionMoveRight)
	case "up":
		return m, m.dispatch(domain.ActionRotate)
	case "down":
		return m, m.dispatch(domain.ActionSoftDrop)
	case " ":
		return m, m.dispatch(domain.ActionHardDrop)
	case "tab":
		m.cycleWatched()
		return m, nil
	}
	return m, nil
}

// cycleWatched moves focus to the next still-active participant. Focus only
// ever changes on this explicit request.
func (m *Model) cycleWatched() {
	if m.phase != app.PhaseLocalEnded {
		return
	}
	candidates := m.watcher.Candidates()
	if len(candidates) == 0 {
		return
	}
	cur := m.watcher.Watching()
	next := candidates[0].ID
	for i, p := range candidates {
		if p.ID == cur && i+1 < len(candidates) {
			next = candidates[i+1].ID
			break
		}
	}
	if err := m.watcher.Watch(next); err != nil {
		m.errMsg = err.Error()
	}
}

func (m Model) View() string {
	var sections []string

	switch m.phase {
	case app.PhaseJoining:
		sections = append(sections, styleMuted.Render("joining room..."))
	case app.PhaseRoomComplete:
		sections = append(sections, m.viewRankings())
	default:
		sections = append(sections, m.viewBoards())
	}

	if m.errMsg != "" {
		sections = append(sections, styleError.Render(m.errMsg)+styleMuted.Render("  (esc to dismiss)"))
	}
	sections = append(sections, m.viewHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewBoards() string {
	states := m.rec.View()
	watched := m.watcher.Watching()

	cards := make([]string, 0, len(m.roster.Participants))
	for _, p := range m.roster.Participants {
		snap, ok := states[p.ID]
		if !ok {
			continue
		}
		cards = append(cards, renderCard(p, snap, p.ID == m.localID, p.ID == watched))
	}
	if len(cards) == 0 {
		return styleMuted.Render("waiting for first snapshot...")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m Model) viewRankings() string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("final standings"))
	sb.WriteByte('\n')
	for i, entry := range m.rec.Rankings() {
		line := fmt.Sprintf("%d. %-20s %6d", i+1, entry.DisplayName, entry.Score)
		if entry.ParticipantID == m.localID {
			line += "  <- you"
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (m Model) viewHelp() string {
	switch m.phase {
	case app.PhaseLocalEnded:
		return styleMuted.Render("tab: watch next player  q: quit")
	case app.PhaseRoomComplete:
		return styleMuted.Render("q: quit")
	default:
		return styleMuted.Render("arrows: move/rotate  space: drop  q: quit")
	}
}
