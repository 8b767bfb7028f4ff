package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Push event type discriminators as they appear on the wire.
const (
	EventSessionStart     = "SESSION_START"
	EventTickUpdate       = "TICK_UPDATE"
	EventParticipantEnded = "PARTICIPANT_ENDED"
	EventRoomComplete     = "ROOM_COMPLETE"
)

var (
	ErrUnknownEventType   = errors.New("unknown push event type")
	ErrMissingParticipant = errors.New("push event missing participant id")
)

// PushEvent is the tagged union delivered over the room topic. Events are
// transient: applied once by the reconciler, never stored.
type PushEvent interface{ isPushEvent() }

// SessionStart announces the match has begun for everyone in the room.
type SessionStart struct {
	RoomID RoomID
}

// TickUpdate carries a partial refresh of one participant's session. Only the
// fields the event actually named are non-nil; absent fields must be left
// untouched by the merge.
type TickUpdate struct {
	ParticipantID ParticipantID
	Board         *Board
	Score         *int
	Level         *int
	Status        *SessionStatus
	NextPiece     *PieceKind
}

// ParticipantEnded is terminal for the named participant and carries their
// final frozen snapshot.
type ParticipantEnded struct {
	ParticipantID ParticipantID
	Final         ParticipantSnapshot
}

// RoomCompleted carries the authoritative standings, already ordered.
type RoomCompleted struct {
	Rankings []RankingEntry
}

func (SessionStart) isPushEvent()     {}
func (TickUpdate) isPushEvent()       {}
func (ParticipantEnded) isPushEvent() {}
func (RoomCompleted) isPushEvent()    {}

// DecodePushEvent parses one wire message into its event variant. Any payload
// that fails here is dropped at the channel boundary and never reaches the
// reconciler.
func DecodePushEvent(data []byte) (PushEvent, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	switch env.Type {
	case EventSessionStart:
		var p struct {
			RoomID RoomID `json:"roomId"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return SessionStart{RoomID: p.RoomID}, nil

	case EventTickUpdate:
		var p struct {
			ParticipantID ParticipantID  `json:"participantId"`
			Board         *Board         `json:"board"`
			Score         *int           `json:"score"`
			Level         *int           `json:"level"`
			Status        *SessionStatus `json:"status"`
			NextPiece     *PieceKind     `json:"nextPiece"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		if p.ParticipantID == "" {
			return nil, ErrMissingParticipant
		}
		if p.Status != nil && !p.Status.Valid() {
			return nil, fmt.Errorf("decode %s: bad status %q", env.Type, *p.Status)
		}
		return TickUpdate{
			ParticipantID: p.ParticipantID,
			Board:         p.Board,
			Score:         p.Score,
			Level:         p.Level,
			Status:        p.Status,
			NextPiece:     p.NextPiece,
		}, nil

	case EventParticipantEnded:
		var p struct {
			ParticipantID ParticipantID       `json:"participantId"`
			Final         ParticipantSnapshot `json:"finalSnapshot"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		if p.ParticipantID == "" {
			return nil, ErrMissingParticipant
		}
		p.Final.Status = StatusEnded
		return ParticipantEnded{ParticipantID: p.ParticipantID, Final: p.Final}, nil

	case EventRoomComplete:
		var p struct {
			Rankings []RankingEntry `json:"rankings"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return RoomCompleted{Rankings: p.Rankings}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, env.Type)
	}
}
