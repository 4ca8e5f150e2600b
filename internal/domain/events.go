package domain

import "time"

// EventType represents the type of game event
type EventType string

const (
	EventRoomCreated    EventType = "room-created"
	EventRoomJoined     EventType = "room-joined"
	EventPlayerJoined   EventType = "player-joined"
	EventPlayerLeft     EventType = "player-left"
	EventRoomState      EventType = "room-state"
	EventRoundStarted   EventType = "round-started"
	EventNoAnswers      EventType = "no-answers"
	EventAnswersShown   EventType = "answers-shown"
	EventResultsShown   EventType = "results-shown"
	EventGameOver       EventType = "game-over"
	EventNewGameStarted EventType = "new-game-started"
	EventError          EventType = "error"
)

// GameEvent is an outbound notification for room participants
type GameEvent struct {
	Type      EventType   `json:"type"`
	RoomCode  string      `json:"roomCode"`
	PlayerID  string      `json:"playerId,omitempty"` // Set when the event targets a single connection
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a room-wide event
func NewEvent(eventType EventType, roomCode string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewPlayerEvent creates an event targeting a single connection
func NewPlayerEvent(eventType EventType, roomCode, playerID string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		PlayerID:  playerID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Payload types for different events

// RoomCreatedPayload is sent to the host after creating a room
type RoomCreatedPayload struct {
	RoomCode string       `json:"roomCode"`
	Players  []PlayerInfo `json:"players"`
	IsHost   bool         `json:"isHost"`
	HostID   string       `json:"hostId"`
}

// RoomJoinedPayload is sent to a player after joining a room
type RoomJoinedPayload struct {
	RoomCode string       `json:"roomCode"`
	Players  []PlayerInfo `json:"players"`
	IsHost   bool         `json:"isHost"`
	HostID   string       `json:"hostId"`
}

// RosterPayload is broadcast when the roster changes
type RosterPayload struct {
	Players []PlayerInfo `json:"players"`
	HostID  string       `json:"hostId"`
}

// RoomStatePayload is sent to a reconnecting or late-loading player
type RoomStatePayload struct {
	RoomCode    string       `json:"roomCode"`
	Players     []PlayerInfo `json:"players"`
	IsHost      bool         `json:"isHost"`
	HostID      string       `json:"hostId"`
	GameState   GameState    `json:"gameState"`
	Question    string    `json:"question,omitempty"`
	SubjectName string    `json:"subjectName,omitempty"`
	RoundNumber int       `json:"roundNumber,omitempty"`
	Answers     []string  `json:"answers,omitempty"`
	VotedCount  int       `json:"votedCount,omitempty"`
}

// RoundStartedPayload is broadcast when a round begins
type RoundStartedPayload struct {
	Question    string `json:"question"`
	SubjectName string `json:"subjectName"`
	RoundNumber int    `json:"roundNumber"`
}

// NoAnswersPayload is broadcast when an answering phase closes with no submissions
type NoAnswersPayload struct {
	Message string `json:"message"`
}

// AnswersShownPayload is broadcast when voting opens. Clients must not reveal
// the AI index until results; it rides along so reconnecting mid-reveal works.
type AnswersShownPayload struct {
	Answers       []string `json:"answers"`
	AIAnswerIndex int      `json:"aiAnswerIndex"`
}

// ResultsShownPayload is broadcast when a voting phase closes
type ResultsShownPayload struct {
	Results       []PlayerResult `json:"results"`
	AIAnswerIndex int            `json:"aiAnswerIndex"`
	Answers       []string       `json:"answers"`
}

// GameOverPayload is broadcast when a player reaches the winning score
type GameOverPayload struct {
	Winner string         `json:"winner"`
	Scores map[string]int `json:"scores"`
}

// NewGameStartedPayload is broadcast when the host restarts after game over
type NewGameStartedPayload struct {
	Message string `json:"message"`
}

// ErrorPayload is sent when an action fails
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
