package ws

import "encoding/json"

// MessageType represents the type of an inbound WebSocket message
type MessageType string

// Client → Server message types. Server → Client traffic is the
// domain.GameEvent envelope; see internal/domain/events.go.
const (
	MsgCreateRoom       MessageType = "create-room"
	MsgJoinRoom         MessageType = "join-room"
	MsgRequestRoomState MessageType = "request-room-state"
	MsgStartGame        MessageType = "start-game"
	MsgSubmitAnswer     MessageType = "submit-answer"
	MsgSubmitVote       MessageType = "submit-vote"
	MsgSkipToAnswers    MessageType = "skip-to-answers"
	MsgPlayAgain        MessageType = "play-again"
	MsgPing             MessageType = "ping"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client message payloads

// CreateRoomPayload is the payload for create-room
type CreateRoomPayload struct {
	HostName string `json:"hostName"`
}

// JoinRoomPayload is the payload for join-room
type JoinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// RequestRoomStatePayload is the payload for request-room-state
type RequestRoomStatePayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// SubmitAnswerPayload is the payload for submit-answer
type SubmitAnswerPayload struct {
	Answer string `json:"answer"`
}

// SubmitVotePayload is the payload for submit-vote
type SubmitVotePayload struct {
	AnswerIndex int `json:"answerIndex"`
}

// Error codes
const (
	ErrCodeInvalidMessage   = "INVALID_MESSAGE"
	ErrCodeValidation       = "VALIDATION"
	ErrCodeRoomNotFound     = "ROOM_NOT_FOUND"
	ErrCodeRoomFull         = "ROOM_FULL"
	ErrCodeGameInProgress   = "GAME_IN_PROGRESS"
	ErrCodeNotEnoughPlayers = "NOT_ENOUGH_PLAYERS"
	ErrCodeNotHost          = "NOT_HOST"
	ErrCodeInvalidAction    = "INVALID_ACTION"
	ErrCodeNotInRoom        = "NOT_IN_ROOM"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)
