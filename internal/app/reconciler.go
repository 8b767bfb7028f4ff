// Package app holds the session state reconciliation engine and its
// immediate collaborators: poller, dispatcher, spectator selection and the
// lifecycle coordinator.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/kienminh/blockroom/internal/core"
	"github.com/kienminh/blockroom/internal/domain"
)

// Reconciler owns the canonical per-participant state map and the room
// lifecycle. It is the single merge authority between the snapshot poller and
// the push channel: both feed it, everything else only reads from it.
//
// The two sources race freely. What makes them commute is the terminal-state
// rule: once a participant is ENDED nothing may touch their entry again, so a
// stale poll arriving after a push-delivered end cannot resurrect anyone.
type Reconciler struct {
	mu        sync.Mutex
	roomID    domain.RoomID
	localID   domain.ParticipantID
	states    map[domain.ParticipantID]domain.ParticipantSnapshot
	lifecycle domain.RoomLifecycle
	rankings  []domain.RankingEntry

	// coalesced change signals; capacity 1 each, never block a writer
	subMu sync.Mutex
	subs  []chan struct{}
}

func NewReconciler(roomID domain.RoomID, localID domain.ParticipantID) *Reconciler {
	return &Reconciler{
		roomID:    roomID,
		localID:   localID,
		states:    make(map[domain.ParticipantID]domain.ParticipantSnapshot),
		lifecycle: domain.RoomInProgress,
	}
}

// Subscribe returns a channel that receives a coalesced signal after every
// mutation. Subscribers re-read the view; they never receive state through
// the channel.
func (r *Reconciler) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	r.subMu.Lock()
	r.subs = append(r.subs, ch)
	r.subMu.Unlock()
	return ch
}

func (r *Reconciler) notify() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Apply merges one push event. Applying the same event twice yields the same
// state as applying it once.
func (r *Reconciler) Apply(evt domain.PushEvent) {
	switch e := evt.(type) {
	case domain.SessionStart:
		log.Info().Str("module", "app.reconciler").Str("room", string(e.RoomID)).Msg("session started")
	case domain.TickUpdate:
		r.applyTick(e)
	case domain.ParticipantEnded:
		r.applyEnded(e)
	case domain.RoomCompleted:
		r.applyComplete(e.Rankings)
	}
}

// applyTick replaces exactly the fields the event carries, atomically. A tick
// for board+score never mixes a new board with a score from another update.
func (r *Reconciler) applyTick(e domain.TickUpdate) {
	r.mu.Lock()

	cur, known := r.states[e.ParticipantID]
	if cur.Status == domain.StatusEnded {
		r.mu.Unlock()
		return
	}
	if !known {
		// first sighting arrived via push before any poll
		cur.Status = domain.StatusActive
	}

	if e.Board != nil {
		cur.Board = e.Board.Clone()
	}
	if e.Score != nil {
		cur.Score = *e.Score
	}
	if e.Level != nil {
		cur.Level = *e.Level
	}
	if e.NextPiece != nil {
		cur.NextPiece = *e.NextPiece
	}
	if e.Status != nil && e.Status.Rank() >= cur.Status.Rank() {
		cur.Status = *e.Status
	}

	r.states[e.ParticipantID] = cur
	r.mu.Unlock()
	r.notify()
}

func (r *Reconciler) applyEnded(e domain.ParticipantEnded) {
	r.mu.Lock()
	cur, ok := r.states[e.ParticipantID]
	if ok && cur.Status == domain.StatusEnded {
		r.mu.Unlock()
		return
	}
	final := e.Final.Clone()
	final.Status = domain.StatusEnded
	r.states[e.ParticipantID] = final
	r.mu.Unlock()

	log.Info().Str("module", "app.reconciler").Str("participant", string(e.ParticipantID)).
		Int("score", final.Score).Msg("participant ended")
	r.notify()
}

func (r *Reconciler) applyComplete(rankings []domain.RankingEntry) {
	r.mu.Lock()
	if r.lifecycle == domain.RoomComplete {
		r.mu.Unlock()
		return
	}
	r.lifecycle = domain.RoomComplete
	r.rankings = append([]domain.RankingEntry(nil), rankings...)
	r.mu.Unlock()

	log.Info().Str("module", "app.reconciler").Str("room", string(r.roomID)).
		Int("rankings", len(rankings)).Msg("room complete")
	r.notify()
}

// ApplySnapshot merges a full poll result. Each participant is replaced
// wholesale unless already ENDED, which keeps a stale poll computed before a
// pushed end from rolling a finished participant back.
func (r *Reconciler) ApplySnapshot(states map[domain.ParticipantID]domain.ParticipantSnapshot) {
	r.mu.Lock()
	dirty := false
	for id, snap := range states {
		cur, ok := r.states[id]
		if ok && cur.Status == domain.StatusEnded {
			continue
		}
		if ok && snap.Status.Rank() < cur.Status.Rank() {
			snap.Status = cur.Status
		}
		r.states[id] = snap.Clone()
		dirty = true
	}
	r.mu.Unlock()
	if dirty {
		r.notify()
	}
}

// ApplyActionResult installs the snapshot returned by a confirmed action so
// local input is visible before the next poll tick. The terminal-state guard
// applies here too.
func (r *Reconciler) ApplyActionResult(id domain.ParticipantID, snap domain.ParticipantSnapshot) {
	r.ApplySnapshot(map[domain.ParticipantID]domain.ParticipantSnapshot{id: snap})
}

func (r *Reconciler) View() map[domain.ParticipantID]domain.ParticipantSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domain.ParticipantID]domain.ParticipantSnapshot, len(r.states))
	for id, snap := range r.states {
		out[id] = snap.Clone()
	}
	return out
}

func (r *Reconciler) Snapshot(id domain.ParticipantID) (domain.ParticipantSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.states[id]
	if !ok {
		return domain.ParticipantSnapshot{}, false
	}
	return snap.Clone(), true
}

func (r *Reconciler) Lifecycle() domain.RoomLifecycle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lifecycle
}

func (r *Reconciler) Rankings() []domain.RankingEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RankingEntry(nil), r.rankings...)
}

// LocalEnded reports whether the local participant's session is over.
func (r *Reconciler) LocalEnded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[r.localID].Status == domain.StatusEnded
}

// HasStates reports whether at least one snapshot has been merged, which is
// what the coordinator waits for before leaving JOINING.
func (r *Reconciler) HasStates() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states) > 0
}

// RunCompletionFallback covers the case where the ROOM_COMPLETE push never
// arrives: after a grace period it polls the completion predicate and fetches
// rankings itself. The push channel is a latency optimization, not the sole
// source of terminal truth.
func (r *Reconciler) RunCompletionFallback(ctx context.Context, clock clockwork.Clock, grace, every time.Duration, svc core.GameService) {
	select {
	case <-ctx.Done():
		return
	case <-clock.After(grace):
	}
	if r.Lifecycle() == domain.RoomComplete {
		return
	}
	log.Info().Str("module", "app.reconciler").Str("room", string(r.roomID)).
		Msg("no room completion push, falling back to polling")

	ticker := clock.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}
		if r.Lifecycle() == domain.RoomComplete {
			return
		}
		done, err := svc.RoomComplete(ctx, r.roomID)
		if err != nil {
			log.Warn().Err(err).Str("module", "app.reconciler").Msg("completion poll failed")
			continue
		}
		if !done {
			continue
		}
		rankings, err := svc.Rankings(ctx, r.roomID)
		if err != nil {
			log.Warn().Err(err).Str("module", "app.reconciler").Msg("rankings fetch failed")
			continue
		}
		r.applyComplete(rankings)
		return
	}
}
