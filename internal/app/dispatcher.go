package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/kienminh/blockroom/internal/core"
	"github.com/kienminh/blockroom/internal/domain"
)

// Dispatcher relays local input to the remote game engine, gated by the
// local participant's lifecycle state. Input after game over is deliberately
// a silent no-op, not an error.
type Dispatcher struct {
	localID domain.ParticipantID
	svc     core.GameService
	rec     *Reconciler
}

func NewDispatcher(localID domain.ParticipantID, svc core.GameService, rec *Reconciler) *Dispatcher {
	return &Dispatcher{localID: localID, svc: svc, rec: rec}
}

// Dispatch sends one action. On success the returned snapshot is applied to
// the canonical map immediately so input feels responsive despite the slow
// poll cadence. On failure local state is left untouched; the error is the
// caller's to surface.
func (d *Dispatcher) Dispatch(ctx context.Context, action domain.Action) error {
	if !action.Valid() {
		return fmt.Errorf("unknown action %q", action)
	}
	snap, ok := d.rec.Snapshot(d.localID)
	if !ok || snap.Status != domain.StatusActive {
		log.Debug().Str("module", "app.dispatcher").Str("action", string(action)).Msg("session not active, ignoring input")
		return nil
	}

	result, err := d.svc.SendAction(ctx, d.localID, action)
	if err != nil {
		return err
	}
	d.rec.ApplyActionResult(d.localID, result)
	return nil
}
