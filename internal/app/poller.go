package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/kienminh/blockroom/internal/core"
	"github.com/kienminh/blockroom/internal/domain"
)

// Poller fetches the full per-participant state map on a fixed interval and
// feeds it to the reconciler. A tick that fires while a fetch is still
// outstanding is skipped, never queued, so slow responses can't stack
// requests. Fetch failures are logged and the loop keeps going; transient
// network errors must not kill the session view.
type Poller struct {
	roomID   domain.RoomID
	svc      core.GameService
	rec      *Reconciler
	interval time.Duration
	clock    clockwork.Clock

	// onFatal is invoked (at most once per error) for failures that end the
	// session, i.e. a refused credential. Optional.
	onFatal func(error)

	inflight atomic.Bool
	stopOnce sync.Once
	stopped  chan struct{}
}

func NewPoller(roomID domain.RoomID, svc core.GameService, rec *Reconciler, interval time.Duration, clock clockwork.Clock) *Poller {
	return &Poller{
		roomID:   roomID,
		svc:      svc,
		rec:      rec,
		interval: interval,
		clock:    clock,
		stopped:  make(chan struct{}),
	}
}

// OnFatal registers the escalation hook. Must be called before Start.
func (p *Poller) OnFatal(fn func(error)) { p.onFatal = fn }

// Start begins the polling loop in its own goroutine.
func (p *Poller) Start(ctx context.Context) {
	go p.loop(ctx)
}

// Stop cancels future fetches. An in-flight fetch may complete but its result
// is discarded. Safe to call any number of times.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopped) })
}

func (p *Poller) loop(ctx context.Context) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopped:
			return
		case <-ticker.Chan():
		}
		if !p.inflight.CompareAndSwap(false, true) {
			// previous fetch still outstanding: skip, don't queue
			continue
		}
		go p.fetch(ctx)
	}
}

func (p *Poller) fetch(ctx context.Context) {
	defer p.inflight.Store(false)

	states, err := p.svc.States(ctx, p.roomID)

	select {
	case <-p.stopped:
		// stopped while the request was in flight: discard the result
		return
	default:
	}

	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			log.Error().Str("module", "app.poller").Msg("credential refused, escalating")
			if p.onFatal != nil {
				p.onFatal(err)
			}
			return
		}
		log.Warn().Err(err).Str("module", "app.poller").Msg("state fetch failed, will retry next tick")
		return
	}
	p.rec.ApplySnapshot(states)
}
