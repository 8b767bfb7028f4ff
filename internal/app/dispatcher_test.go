package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kienminh/blockroom/internal/domain"
)

func TestDispatch_AppliesResultImmediately(t *testing.T) {
	rec := NewReconciler("r1", "me")
	rec.ApplySnapshot(map[domain.ParticipantID]domain.ParticipantSnapshot{"me": activeSnap(100)})

	game := &fakeGame{
		sendFn: func(_ context.Context, id domain.ParticipantID, action domain.Action) (domain.ParticipantSnapshot, error) {
			assert.Equal(t, domain.ParticipantID("me"), id)
			assert.Equal(t, domain.ActionMoveLeft, action)
			return activeSnap(140), nil
		},
	}
	d := NewDispatcher("me", game, rec)

	require.NoError(t, d.Dispatch(context.Background(), domain.ActionMoveLeft))

	snap, ok := rec.Snapshot("me")
	require.True(t, ok)
	assert.Equal(t, 140, snap.Score)
}

func TestDispatch_SilentNoOpAfterEnded(t *testing.T) {
	rec := NewReconciler("r1", "me")
	rec.ApplySnapshot(map[domain.ParticipantID]domain.ParticipantSnapshot{"me": endedSnap(100)})

	game := &fakeGame{}
	d := NewDispatcher("me", game, rec)

	require.NoError(t, d.Dispatch(context.Background(), domain.ActionRotate))
	assert.Zero(t, game.sendCalls.Load(), "input after game over must not reach the wire")
}

func TestDispatch_NoOpBeforeFirstState(t *testing.T) {
	rec := NewReconciler("r1", "me")
	game := &fakeGame{}
	d := NewDispatcher("me", game, rec)

	require.NoError(t, d.Dispatch(context.Background(), domain.ActionHardDrop))
	assert.Zero(t, game.sendCalls.Load())
}

func TestDispatch_RejectionLeavesStateUntouched(t *testing.T) {
	rec := NewReconciler("r1", "me")
	rec.ApplySnapshot(map[domain.ParticipantID]domain.ParticipantSnapshot{"me": activeSnap(100)})

	rejected := &domain.ActionRejectedError{Action: domain.ActionMoveRight, Message: "piece blocked"}
	game := &fakeGame{
		sendFn: func(context.Context, domain.ParticipantID, domain.Action) (domain.ParticipantSnapshot, error) {
			return domain.ParticipantSnapshot{}, rejected
		},
	}
	d := NewDispatcher("me", game, rec)

	err := d.Dispatch(context.Background(), domain.ActionMoveRight)
	var rej *domain.ActionRejectedError
	require.ErrorAs(t, err, &rej)

	snap, _ := rec.Snapshot("me")
	assert.Equal(t, 100, snap.Score)
}

func TestDispatch_RejectsUnknownAction(t *testing.T) {
	d := NewDispatcher("me", &fakeGame{}, NewReconciler("r1", "me"))
	assert.Error(t, d.Dispatch(context.Background(), domain.Action("TELEPORT")))
}
