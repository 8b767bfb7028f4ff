package domain

// RoomLifecycle is the room-level state. Monotonic: once COMPLETE it never
// changes again.
type RoomLifecycle string

const (
	RoomInProgress RoomLifecycle = "IN_PROGRESS"
	RoomComplete   RoomLifecycle = "COMPLETE"
)

// RankingEntry is one row of the authoritative final standings. The order of
// the sequence is owned by the game service; clients keep it verbatim.
type RankingEntry struct {
	ParticipantID ParticipantID `json:"participantId"`
	DisplayName   string        `json:"displayName"`
	Score         int           `json:"score"`
}
