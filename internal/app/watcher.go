package app

import (
	"errors"
	"sync"

	"github.com/kienminh/blockroom/internal/core"
	"github.com/kienminh/blockroom/internal/domain"
)

var (
	ErrNotInRoster  = errors.New("participant not in roster")
	ErrNotWatchable = errors.New("participant already ended")
)

// Watcher picks which participant's board the UI shows once the local session
// has ended. It defaults to the local participant's own final snapshot and
// only changes on explicit request: if the watched participant later ends,
// the view stays frozen on their final frame rather than auto-switching.
type Watcher struct {
	mu      sync.Mutex
	localID domain.ParticipantID
	roster  domain.Roster
	view    core.StateView
	watched domain.ParticipantID
}

func NewWatcher(localID domain.ParticipantID, roster domain.Roster, view core.StateView) *Watcher {
	return &Watcher{
		localID: localID,
		roster:  roster,
		view:    view,
		watched: localID,
	}
}

func (w *Watcher) Watching() domain.ParticipantID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watched
}

// Watch switches focus. The local participant is always a valid target;
// anyone else must still be ACTIVE at the moment of selection.
func (w *Watcher) Watch(id domain.ParticipantID) error {
	if !w.roster.Contains(id) {
		return ErrNotInRoster
	}
	if id != w.localID {
		snap, ok := w.view.Snapshot(id)
		if !ok || snap.Status == domain.StatusEnded {
			return ErrNotWatchable
		}
	}
	w.mu.Lock()
	w.watched = id
	w.mu.Unlock()
	return nil
}

// Displayed resolves the watched participant and their current snapshot.
func (w *Watcher) Displayed() (domain.Participant, domain.ParticipantSnapshot, bool) {
	id := w.Watching()
	p, ok := w.roster.Get(id)
	if !ok {
		return domain.Participant{}, domain.ParticipantSnapshot{}, false
	}
	snap, ok := w.view.Snapshot(id)
	return p, snap, ok
}

// Candidates lists the other participants still worth watching, in roster
// order.
func (w *Watcher) Candidates() []domain.Participant {
	out := make([]domain.Participant, 0)
	for _, p := range w.roster.Others(w.localID) {
		snap, ok := w.view.Snapshot(p.ID)
		if ok && snap.Status != domain.StatusEnded {
			out = append(out, p)
		}
	}
	return out
}
