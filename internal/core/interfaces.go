// Package core declares the ports between the reconciliation engine and its
// collaborators. Adapters own the transports; app code only sees these
// interfaces.
package core

import (
	"context"
	"errors"

	"github.com/kienminh/blockroom/internal/domain"
)

// ErrUnauthorized is returned by any remote call whose bearer credential was
// refused. It is fatal to the session: the caller tears down and escalates to
// the auth collaborator.
var ErrUnauthorized = errors.New("unauthorized")

// GameService is the client-facing API of the remote game-logic service.
type GameService interface {
	// States fetches the full per-participant state map of the room.
	States(ctx context.Context, roomID domain.RoomID) (map[domain.ParticipantID]domain.ParticipantSnapshot, error)

	// SendAction relays one input and returns the resulting snapshot for
	// that participant. A rejected action yields *domain.ActionRejectedError.
	SendAction(ctx context.Context, id domain.ParticipantID, action domain.Action) (domain.ParticipantSnapshot, error)

	// RoomComplete reports whether every participant has finished.
	RoomComplete(ctx context.Context, roomID domain.RoomID) (bool, error)

	// Rankings fetches the authoritative final standings.
	Rankings(ctx context.Context, roomID domain.RoomID) ([]domain.RankingEntry, error)
}

// RoomService is the room collaborator: membership and match start.
type RoomService interface {
	Room(ctx context.Context, roomID domain.RoomID) (domain.Roster, error)
	StartRoom(ctx context.Context, roomID domain.RoomID) error
}

// EventHandler receives decoded push events. Handlers run on the channel's
// read loop and must not block.
type EventHandler func(domain.PushEvent)

// PushChannel is a long-lived subscription to the room's event topic.
// Owned by whoever calls Connect; Close must be safe to call repeatedly.
type PushChannel interface {
	Connect(ctx context.Context) error
	Close()
}

// StateView is read-only access to the reconciled room state. Everything it
// returns is a copy; callers can never alias the canonical map.
type StateView interface {
	View() map[domain.ParticipantID]domain.ParticipantSnapshot
	Snapshot(id domain.ParticipantID) (domain.ParticipantSnapshot, bool)
	Lifecycle() domain.RoomLifecycle
	Rankings() []domain.RankingEntry
}
