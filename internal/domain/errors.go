package domain

import "errors"

// Domain errors
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameInProgress     = errors.New("game already in progress")
	ErrNotEnoughPlayers   = errors.New("need at least 2 players")
	ErrInvalidPhase       = errors.New("invalid action for current phase")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNotHost            = errors.New("only host can perform this action")
	ErrEmptyName          = errors.New("name cannot be empty")
	ErrEmptyAnswer        = errors.New("answer cannot be empty")
	ErrInvalidAnswerIndex = errors.New("vote index out of range")
	ErrInvalidRoomCode    = errors.New("room code must be 4 letters")
	ErrAIGeneration       = errors.New("failed to generate AI answer")
)
