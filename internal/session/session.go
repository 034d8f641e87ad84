package session

import "math/rand/v2"

// Status represents the connection state of a session's channel.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// Session identifies one client lifetime. The ID is generated once at
// startup and never changes; Status transitions are driven by the
// connection manager only.
type Session struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// New creates a session with a fresh ID in the disconnected state.
func New() *Session {
	return &Session{
		ID:     NewID(),
		Status: StatusDisconnected,
	}
}

const idLetters = "abcdefghijklmnopqrstuvwxyz"

// NewID generates a short human-readable session ID: three lowercase
// letters followed by one decimal digit (e.g. "fox8"). Collisions across
// concurrent clients are possible but accepted; the peer is free to
// reject duplicates.
func NewID() string {
	id := make([]byte, 4)
	for i := 0; i < 3; i++ {
		id[i] = idLetters[rand.IntN(len(idLetters))]
	}
	id[3] = byte('0' + rand.IntN(10))
	return string(id)
}
