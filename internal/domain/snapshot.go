package domain

// SessionStatus is the lifecycle of one participant's game session. It only
// ever moves forward along ACTIVE < PAUSED < ENDED; once ENDED no further
// transition is accepted for the lifetime of the room instance.
type SessionStatus string

const (
	StatusActive SessionStatus = "ACTIVE"
	StatusPaused SessionStatus = "PAUSED"
	StatusEnded  SessionStatus = "ENDED"
)

// Rank orders statuses for monotonicity checks.
func (s SessionStatus) Rank() int {
	switch s {
	case StatusActive:
		return 0
	case StatusPaused:
		return 1
	case StatusEnded:
		return 2
	default:
		return -1
	}
}

func (s SessionStatus) Valid() bool { return s.Rank() >= 0 }

// Board dimensions of the remote game engine.
const (
	BoardRows = 20
	BoardCols = 10
)

// CellCode is one cell of the board matrix: 0 empty, 1..7 the piece kind that
// filled it (I, O, T, S, Z, J, L).
type CellCode int

type Board [][]CellCode

// NewBoard returns an empty BoardRows x BoardCols matrix.
func NewBoard() Board {
	b := make(Board, BoardRows)
	for y := range b {
		b[y] = make([]CellCode, BoardCols)
	}
	return b
}

func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for y, row := range b {
		out[y] = append([]CellCode(nil), row...)
	}
	return out
}

// PieceKind names an upcoming piece as the game service reports it.
type PieceKind string

const (
	PieceI PieceKind = "I"
	PieceO PieceKind = "O"
	PieceT PieceKind = "T"
	PieceS PieceKind = "S"
	PieceZ PieceKind = "Z"
	PieceJ PieceKind = "J"
	PieceL PieceKind = "L"
)

// ParticipantSnapshot is one participant's full game state as reported by
// either the poller or a push event. Mutated only by replacement.
type ParticipantSnapshot struct {
	Board     Board         `json:"board"`
	Score     int           `json:"score"`
	Level     int           `json:"level"`
	Status    SessionStatus `json:"status"`
	NextPiece PieceKind     `json:"nextPiece,omitempty"`
}

// Clone returns a deep copy so read-side consumers can never alias the
// canonical board.
func (s ParticipantSnapshot) Clone() ParticipantSnapshot {
	s.Board = s.Board.Clone()
	return s
}
