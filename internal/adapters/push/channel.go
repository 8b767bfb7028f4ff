// Package push maintains the long-lived subscription to the room's event
// topic. It owns the websocket; everything above it only sees decoded
// domain.PushEvent values.
package push

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/kienminh/blockroom/internal/core"
	"github.com/kienminh/blockroom/internal/domain"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	writeWait  = 5 * time.Second
)

// Channel implements core.PushChannel over a gorilla websocket. The room has
// a short practical lifetime, so reconnects use a fixed delay rather than an
// exponential schedule. Duplicate delivery after a reconnect is possible;
// the reconciler tolerates it.
type Channel struct {
	url      string
	token    string
	clientID string
	delay    time.Duration
	handler  core.EventHandler

	closeOnce sync.Once
	closed    chan struct{}

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewChannel(pushURL string, roomID domain.RoomID, token string, delay time.Duration, handler core.EventHandler) *Channel {
	return &Channel{
		url:      fmt.Sprintf("%s/rooms/%s", strings.TrimRight(pushURL, "/"), roomID),
		token:    token,
		clientID: uuid.NewString(),
		delay:    delay,
		handler:  handler,
		closed:   make(chan struct{}),
	}
}

// Connect dials the topic once so the caller learns about a bad endpoint or
// refused credential immediately, then keeps the subscription alive in the
// background until Close or ctx cancellation.
func (ch *Channel) Connect(ctx context.Context) error {
	conn, err := ch.dial(ctx)
	if err != nil {
		return err
	}
	ch.setConn(conn)
	go ch.run(ctx, conn)
	return nil
}

// Close tears the subscription down. Safe to call any number of times.
func (ch *Channel) Close() {
	ch.closeOnce.Do(func() {
		close(ch.closed)
		ch.mu.Lock()
		if ch.conn != nil {
			_ = ch.conn.Close()
		}
		ch.mu.Unlock()
	})
}

func (ch *Channel) setConn(conn *websocket.Conn) {
	ch.mu.Lock()
	ch.conn = conn
	ch.mu.Unlock()
}

func (ch *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+ch.token)
	url := ch.url + "?client=" + ch.clientID

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, core.ErrUnauthorized
		}
		return nil, fmt.Errorf("dial %s: %w", ch.url, err)
	}
	return conn, nil
}

func (ch *Channel) run(ctx context.Context, conn *websocket.Conn) {
	bo := backoff.NewConstantBackOff(ch.delay)
	for {
		ch.readLoop(ctx, conn)

		select {
		case <-ch.closed:
			return
		case <-ctx.Done():
			return
		case <-time.After(bo.NextBackOff()):
		}

		var err error
		conn, err = ch.dial(ctx)
		if err != nil {
			if err == core.ErrUnauthorized {
				log.Error().Str("module", "adapters.push").Msg("resubscribe refused, credential invalid")
				return
			}
			log.Warn().Err(err).Str("module", "adapters.push").Msg("reconnect failed, will retry")
			continue
		}
		ch.setConn(conn)
		log.Info().Str("module", "adapters.push").Msg("resubscribed to room topic")
	}
}

func (ch *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	pingDone := make(chan struct{})
	defer close(pingDone)
	go ch.pingLoop(conn, pingDone)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch.closed:
			return
		default:
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Warn().Err(err).Str("module", "adapters.push").Msg("read error, connection lost")
				return
			}
			evt, err := domain.DecodePushEvent(data)
			if err != nil {
				// Malformed payloads never reach the reconciler.
				log.Warn().Err(err).Str("module", "adapters.push").Msg("dropping malformed event")
				continue
			}
			ch.handler(evt)
		}
	}
}

func (ch *Channel) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ch.closed:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
