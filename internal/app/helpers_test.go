package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kienminh/blockroom/internal/domain"
)

// fakeGame is a controllable core.GameService double. Each behavior defaults
// to an empty success; tests override the funcs they care about.
type fakeGame struct {
	statesFn   func(ctx context.Context, roomID domain.RoomID) (map[domain.ParticipantID]domain.ParticipantSnapshot, error)
	sendFn     func(ctx context.Context, id domain.ParticipantID, action domain.Action) (domain.ParticipantSnapshot, error)
	completeFn func(ctx context.Context, roomID domain.RoomID) (bool, error)
	rankingsFn func(ctx context.Context, roomID domain.RoomID) ([]domain.RankingEntry, error)

	statesCalls   atomic.Int32
	sendCalls     atomic.Int32
	completeCalls atomic.Int32
	rankingsCalls atomic.Int32
}

func (f *fakeGame) States(ctx context.Context, roomID domain.RoomID) (map[domain.ParticipantID]domain.ParticipantSnapshot, error) {
	f.statesCalls.Add(1)
	if f.statesFn != nil {
		return f.statesFn(ctx, roomID)
	}
	return map[domain.ParticipantID]domain.ParticipantSnapshot{}, nil
}

func (f *fakeGame) SendAction(ctx context.Context, id domain.ParticipantID, action domain.Action) (domain.ParticipantSnapshot, error) {
	f.sendCalls.Add(1)
	if f.sendFn != nil {
		return f.sendFn(ctx, id, action)
	}
	return domain.ParticipantSnapshot{}, nil
}

func (f *fakeGame) RoomComplete(ctx context.Context, roomID domain.RoomID) (bool, error) {
	f.completeCalls.Add(1)
	if f.completeFn != nil {
		return f.completeFn(ctx, roomID)
	}
	return false, nil
}

func (f *fakeGame) Rankings(ctx context.Context, roomID domain.RoomID) ([]domain.RankingEntry, error) {
	f.rankingsCalls.Add(1)
	if f.rankingsFn != nil {
		return f.rankingsFn(ctx, roomID)
	}
	return nil, nil
}

// fakeChannel records teardown calls.
type fakeChannel struct {
	connects atomic.Int32
	closes   atomic.Int32
}

func (f *fakeChannel) Connect(ctx context.Context) error {
	f.connects.Add(1)
	return nil
}

func (f *fakeChannel) Close() { f.closes.Add(1) }

// activeSnap builds an ACTIVE snapshot with the given score.
func activeSnap(score int) domain.ParticipantSnapshot {
	return domain.ParticipantSnapshot{
		Board:  domain.NewBoard(),
		Score:  score,
		Level:  1,
		Status: domain.StatusActive,
	}
}

// endedSnap builds an ENDED snapshot with the given score.
func endedSnap(score int) domain.ParticipantSnapshot {
	s := activeSnap(score)
	s.Status = domain.StatusEnded
	return s
}

// recvPhase receives one phase transition with a timeout so tests never hang.
func recvPhase(t *testing.T, ch <-chan Phase, within time.Duration) Phase {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(within):
		t.Fatalf("timed out waiting for phase transition")
		return "" // unreachable
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, within time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached within %v", within)
}

func intPtr(v int) *int { return &v }

func statusPtr(s domain.SessionStatus) *domain.SessionStatus { return &s }
