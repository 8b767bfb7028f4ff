// Package domain contains the entities shared by every layer, just data and
// small helpers. No transport or merge logic here.
package domain

import "errors"

const MaxDisplayNameLen = 36

var (
	ErrDisplayNameEmpty   = errors.New("display name empty")
	ErrDisplayNameTooLong = errors.New("display name too long")
)

type (
	ParticipantID string
	RoomID        string
)

// Participant is one player of a room. Created when room membership is
// fetched and immutable for the lifetime of the session.
type Participant struct {
	ID          ParticipantID `json:"id"`
	DisplayName string        `json:"displayName"`
}

// NewParticipant avoids raw literals in adapters and keeps validation in one
// place.
func NewParticipant(id ParticipantID, name string) (Participant, error) {
	if len(name) == 0 {
		return Participant{}, ErrDisplayNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return Participant{}, ErrDisplayNameTooLong
	}
	return Participant{ID: id, DisplayName: name}, nil
}

// Roster is the room membership list, ordered as the room collaborator
// returned it.
type Roster struct {
	RoomID       RoomID        `json:"roomId"`
	Participants []Participant `json:"participants"`
}

func (r Roster) Get(id ParticipantID) (Participant, bool) {
	for _, p := range r.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

func (r Roster) Contains(id ParticipantID) bool {
	_, ok := r.Get(id)
	return ok
}

// Others returns every participant except the given one, preserving roster
// order.
func (r Roster) Others(id ParticipantID) []Participant {
	out := make([]Participant, 0, len(r.Participants))
	for _, p := range r.Participants {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
