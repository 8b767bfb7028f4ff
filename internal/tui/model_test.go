package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kienminh/blockroom/internal/app"
	"github.com/kienminh/blockroom/internal/domain"
)

type stubGame struct {
	sent []domain.Action
}

func (s *stubGame) States(ctx context.Context, roomID domain.RoomID) (map[domain.ParticipantID]domain.ParticipantSnapshot, error) {
	return nil, nil
}

func (s *stubGame) SendAction(ctx context.Context, id domain.ParticipantID, action domain.Action) (domain.ParticipantSnapshot, error) {
	s.sent = append(s.sent, action)
	return domain.ParticipantSnapshot{Status: domain.StatusActive, Score: 1}, nil
}

func (s *stubGame) RoomComplete(ctx context.Context, roomID domain.RoomID) (bool, error) {
	return false, nil
}

func (s *stubGame) Rankings(ctx context.Context, roomID domain.RoomID) ([]domain.RankingEntry, error) {
	return nil, nil
}

type stubChannel struct{}

func (stubChannel) Connect(ctx context.Context) error { return nil }
func (stubChannel) Close()                            {}

func activeSnap(score int) domain.ParticipantSnapshot {
	return domain.ParticipantSnapshot{
		Board:  domain.NewBoard(),
		Score:  score,
		Level:  1,
		Status: domain.StatusActive,
	}
}

func newTestModel(t *testing.T) (Model, *app.Reconciler, *stubGame) {
	t.Helper()
	game := &stubGame{}
	roster := domain.Roster{
		RoomID: "r1",
		Participants: []domain.Participant{
			{ID: "me", DisplayName: "Minh"},
			{ID: "a", DisplayName: "An"},
		},
	}
	clock := clockwork.NewFakeClock()
	rec := app.NewReconciler("r1", "me")
	poller := app.NewPoller("r1", game, rec, time.Second, clock)
	coord := app.NewCoordinator(rec, poller, stubChannel{}, game, clock, 10*time.Second, time.Second)
	watcher := app.NewWatcher("me", roster, rec)
	dispatcher := app.NewDispatcher("me", game, rec)
	return NewModel("me", roster, rec, watcher, dispatcher, coord), rec, game
}

func TestView_JoiningShowsWaitMessage(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.Contains(t, m.View(), "joining room")
}

func TestView_ActiveRendersEveryKnownBoard(t *testing.T) {
	m, rec, _ := newTestModel(t)
	rec.ApplySnapshot(map[domain.ParticipantID]domain.ParticipantSnapshot{
		"me": activeSnap(120),
		"a":  activeSnap(80),
	})

	next, _ := m.Update(phaseMsg(app.PhaseActive))
	out := next.View()
	assert.Contains(t, out, "Minh")
	assert.Contains(t, out, "(you)")
	assert.Contains(t, out, "An")
	assert.Contains(t, out, "120")
	assert.Contains(t, out, "80")
}

func TestView_RoomCompleteShowsStandings(t *testing.T) {
	m, rec, _ := newTestModel(t)
	rec.Apply(domain.RoomCompleted{Rankings: []domain.RankingEntry{
		{ParticipantID: "a", DisplayName: "An", Score: 500},
		{ParticipantID: "me", DisplayName: "Minh", Score: 300},
	}})

	next, _ := m.Update(phaseMsg(app.PhaseRoomComplete))
	out := next.View()
	assert.Contains(t, out, "final standings")
	assert.Contains(t, out, "1. An")
	assert.Contains(t, out, "2. Minh")
	assert.Contains(t, out, "<- you")
}

func TestKeys_ArrowsDispatchActions(t *testing.T) {
	m, rec, game := newTestModel(t)
	rec.ApplySnapshot(map[domain.ParticipantID]domain.ParticipantSnapshot{"me": activeSnap(0)})

	next, _ := m.Update(phaseMsg(app.PhaseActive))
	model := next.(Model)

	for key, want := range map[string]domain.Action{
		"left":  domain.ActionMoveLeft,
		"right": domain.ActionMoveRight,
		"up":    domain.ActionRotate,
		"down":  domain.ActionSoftDrop,
		" ":     domain.ActionHardDrop,
	} {
		game.sent = nil
		_, cmd := model.Update(keyMsg(key))
		require.NotNil(t, cmd, "key %q should produce a dispatch command", key)
		cmd() // run the command synchronously
		require.Len(t, game.sent, 1, "key %q", key)
		assert.Equal(t, want, game.sent[0])
	}
}

func TestKeys_TabCyclesWatchedOnlyAfterLocalEnd(t *testing.T) {
	m, rec, _ := newTestModel(t)
	rec.ApplySnapshot(map[domain.ParticipantID]domain.ParticipantSnapshot{
		"me": activeSnap(0),
		"a":  activeSnap(0),
	})

	// still playing: tab does nothing
	next, _ := m.Update(phaseMsg(app.PhaseActive))
	model := next.(Model)
	next, _ = model.Update(keyMsg("tab"))
	model = next.(Model)
	assert.Equal(t, domain.ParticipantID("me"), model.watcher.Watching())

	rec.Apply(domain.ParticipantEnded{ParticipantID: "me", Final: domain.ParticipantSnapshot{Status: domain.StatusEnded}})
	next, _ = model.Update(phaseMsg(app.PhaseLocalEnded))
	model = next.(Model)
	next, _ = model.Update(keyMsg("tab"))
	model = next.(Model)
	assert.Equal(t, domain.ParticipantID("a"), model.watcher.Watching())
}

func TestKeys_EscDismissesActionError(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, _ := m.Update(actionErrMsg{err: assert.AnError})
	model := next.(Model)
	assert.Contains(t, model.View(), assert.AnError.Error())

	next, _ = model.Update(keyMsg("esc"))
	model = next.(Model)
	assert.NotContains(t, model.View(), assert.AnError.Error())
}

func TestKeys_QuitTearsDownSession(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}
