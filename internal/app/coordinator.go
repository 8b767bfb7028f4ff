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

// Phase is the coordinator's lifecycle state machine.
type Phase string

const (
	PhaseJoining      Phase = "JOINING"
	PhaseActive       Phase = "ACTIVE"
	PhaseLocalEnded   Phase = "LOCAL_ENDED"
	PhaseRoomComplete Phase = "ROOM_COMPLETE"
)

// Coordinator drives the JOINING -> ACTIVE -> LOCAL_ENDED -> ROOM_COMPLETE
// progression and owns teardown of the poller and push channel. It is the
// sole caller of their stop methods; nothing here may leave a ticker or
// socket alive after the session intends to stop.
type Coordinator struct {
	rec     *Reconciler
	poller  *Poller
	channel core.PushChannel
	svc     core.GameService
	clock   clockwork.Clock

	grace          time.Duration
	completionPoll time.Duration

	mu    sync.Mutex
	phase Phase

	changes <-chan struct{}
	phases  chan Phase

	// onAuthExpired runs after teardown when a credential is refused; the
	// outer shell routes the user back to authentication.
	onAuthExpired func()

	stopOnce sync.Once
}

func NewCoordinator(rec *Reconciler, poller *Poller, channel core.PushChannel, svc core.GameService, clock clockwork.Clock, grace, completionPoll time.Duration) *Coordinator {
	c := &Coordinator{
		rec:            rec,
		poller:         poller,
		channel:        channel,
		svc:            svc,
		clock:          clock,
		grace:          grace,
		completionPoll: completionPoll,
		phase:          PhaseJoining,
		changes:        rec.Subscribe(),
		phases:         make(chan Phase, 4),
	}
	poller.OnFatal(func(error) { c.AuthExpired() })
	return c
}

// OnAuthExpired registers the escalation hook. Must be called before Run.
func (c *Coordinator) OnAuthExpired(fn func()) { c.onAuthExpired = fn }

func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Phases delivers each transition once, in order.
func (c *Coordinator) Phases() <-chan Phase { return c.phases }

// Run observes the reconciler until the room completes or ctx is cancelled,
// then tears everything down.
func (c *Coordinator) Run(ctx context.Context) {
	defer c.Shutdown()

	for {
		c.step(ctx)
		if c.Phase() == PhaseRoomComplete {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-c.changes:
		}
	}
}

// step applies every transition whose trigger currently holds. Checks run in
// machine order so a single change can carry the phase several steps (a
// participant can top out before we ever left JOINING).
func (c *Coordinator) step(ctx context.Context) {
	if c.Phase() == PhaseJoining && c.rec.HasStates() {
		c.transition(PhaseActive)
	}
	if c.Phase() == PhaseActive && c.rec.LocalEnded() {
		c.transition(PhaseLocalEnded)
		// the push channel may never deliver ROOM_COMPLETE; poll for it
		go c.rec.RunCompletionFallback(ctx, c.clock, c.grace, c.completionPoll, c.svc)
	}
	if c.Phase() == PhaseLocalEnded && c.rec.Lifecycle() == domain.RoomComplete {
		c.transition(PhaseRoomComplete)
	}
}

func (c *Coordinator) transition(next Phase) {
	c.mu.Lock()
	prev := c.phase
	c.phase = next
	c.mu.Unlock()

	log.Info().Str("module", "app.coordinator").Str("from", string(prev)).Str("to", string(next)).Msg("phase transition")
	select {
	case c.phases <- next:
	default:
	}
}

// Shutdown stops the poller first, then disconnects the push channel, in
// that order. Safe to call any number of times.
func (c *Coordinator) Shutdown() {
	c.stopOnce.Do(func() {
		log.Info().Str("module", "app.coordinator").Msg("tearing down")
		c.poller.Stop()
		c.channel.Close()
	})
}

// AuthExpired performs the normal teardown and escalates to the auth
// collaborator. Authentication failure is fatal to the session.
func (c *Coordinator) AuthExpired() {
	c.Shutdown()
	if c.onAuthExpired != nil {
		c.onAuthExpired()
	}
}
