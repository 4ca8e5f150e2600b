package domain

import "time"

// Player represents a player in a room. ID is the player's current connection
// id and changes across reconnects; Name is the reconnection matching key.
type Player struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Connected      bool       `json:"connected"`
	DisconnectedAt *time.Time `json:"disconnectedAt,omitempty"`
	JoinedAt       time.Time  `json:"joinedAt"`
}

// NewPlayer creates a new connected player with the given connection id and name
func NewPlayer(id, name string) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Connected: true,
		JoinedAt:  time.Now(),
	}
}

// Disconnect marks the player as disconnected and records when
func (p *Player) Disconnect() {
	now := time.Now()
	p.Connected = false
	p.DisconnectedAt = &now
}

// Reconnect substitutes a new connection id and marks the player connected
func (p *Player) Reconnect(newID string) {
	p.ID = newID
	p.Connected = true
	p.DisconnectedAt = nil
}

// PlayerInfo is a value snapshot of a player for outbound payloads. Events are
// marshalled outside the room lock, so payloads must not alias live Player
// records.
type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// Info returns a value snapshot of the player
func (p *Player) Info() PlayerInfo {
	return PlayerInfo{
		ID:        p.ID,
		Name:      p.Name,
		Connected: p.Connected,
	}
}
