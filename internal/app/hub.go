package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"decoy/internal/config"
	"decoy/internal/domain"
)

const (
	// RoomCodeLength is the length of every room code
	RoomCodeLength = 4

	// StaleRoomTimeout is how long a fully-empty room may linger before the
	// periodic sweep removes it. The per-room grace timer normally wins.
	StaleRoomTimeout = 2 * time.Hour
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ"

// RoomHub owns every live room, keyed by code
type RoomHub struct {
	sessions map[string]*RoomSession
	mu       sync.RWMutex
	cfg      config.GameConfig
	gen      AnswerGenerator
	logger   *slog.Logger
	done     chan struct{}
}

// NewRoomHub creates a new room hub
func NewRoomHub(cfg config.GameConfig, gen AnswerGenerator, logger *slog.Logger) *RoomHub {
	hub := &RoomHub{
		sessions: make(map[string]*RoomSession),
		cfg:      cfg,
		gen:      gen,
		logger:   logger,
		done:     make(chan struct{}),
	}

	go hub.sweepLoop()

	return hub
}

// CreateRoom creates a new room hosted by the given connection and returns its session
func (h *RoomHub) CreateRoom(hostConnID string) (*RoomSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Generate unique room code, retried on collision
	var code string
	for attempts := 0; attempts < 10; attempts++ {
		candidate, err := generateRoomCode()
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}
		code = candidate
		if _, exists := h.sessions[code]; !exists {
			break
		}
	}

	if _, exists := h.sessions[code]; exists {
		return nil, fmt.Errorf("failed to generate unique room code")
	}

	room := domain.NewRoom(code, hostConnID)
	session := NewRoomSession(room, h.cfg, h.gen, h.logger, h.RemoveRoom)
	h.sessions[code] = session

	h.logger.Info("room created", "roomCode", code, "hostId", hostConnID)

	return session, nil
}

// GetRoom returns a room session by code
func (h *RoomHub) GetRoom(code string) (*RoomSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	return session, nil
}

// RemoveRoom removes and closes a room session
func (h *RoomHub) RemoveRoom(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.sessions[code]; ok {
		session.Close()
		delete(h.sessions, code)
		h.logger.Info("room removed", "roomCode", code)
	}
}

// RoomCount returns the number of live rooms
func (h *RoomHub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// PlayerCount returns the total number of players across all rooms
func (h *RoomHub) PlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		total += session.PlayerCount()
	}
	return total
}

// Close shuts down the hub and all sessions
func (h *RoomHub) Close() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, session := range h.sessions {
		session.Close()
	}
	h.sessions = make(map[string]*RoomSession)
}

// generateRoomCode generates a random 4-letter room code. rand.Int rejection
// samples, so every letter is equally likely.
func generateRoomCode() (string, error) {
	alphabetSize := big.NewInt(int64(len(RoomCodeChars)))

	code := make([]byte, RoomCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		code[i] = RoomCodeChars[n.Int64()]
	}

	return string(code), nil
}

// sweepLoop periodically removes rooms that somehow outlived their grace timer
func (h *RoomHub) sweepLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.sweepStaleRooms()
		}
	}
}

// sweepStaleRooms removes rooms with no connected players that have been around too long
func (h *RoomHub) sweepStaleRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	stale := make([]string, 0)

	for code, session := range h.sessions {
		if session.ConnectedCount() == 0 && now.Sub(session.CreatedAt()) > StaleRoomTimeout {
			stale = append(stale, code)
		}
	}

	for _, code := range stale {
		if session, ok := h.sessions[code]; ok {
			session.Close()
			delete(h.sessions, code)
			h.logger.Info("stale room swept", "roomCode", code)
		}
	}
}
