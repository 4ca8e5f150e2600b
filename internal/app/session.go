package app

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"decoy/internal/config"
	"decoy/internal/domain"
)

// AnswerGenerator produces the AI impostor answer for a round. Implementations
// must return one plain string styled to blend in with the player answers.
type AnswerGenerator interface {
	Generate(ctx context.Context, question string, answers []string, playerNames []string) (string, error)
}

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	GetPlayerID() string
	Close() error
}

// RoomSession wraps a room with its mutual-exclusion boundary, client registry,
// event broadcaster and the per-room timers. Every inbound event runs to
// completion under the room lock; the single suspension point is the AI
// provider call, during which the lock is released and the phase re-validated
// afterwards.
type RoomSession struct {
	room      *domain.Room
	cfg       config.GameConfig
	gen       AnswerGenerator
	mu        sync.Mutex
	clients   map[string]ClientConnection // connection id -> client
	clientsMu sync.RWMutex
	logger    *slog.Logger

	// At most one outstanding phase fallback timer; scheduling cancels the
	// previous one. cleanupTimer is the 30s empty-room grace timer.
	phaseTimer   *time.Timer
	cleanupTimer *time.Timer
	onEmpty      func(code string)

	// lastTemplate is the previous round's prompt template, excluded from the
	// next draw so back-to-back rounds never repeat a prompt.
	lastTemplate string

	// advancePending is set while an answering-phase close is in flight
	// (either the AI call, which runs without the lock, or the scheduled
	// no-answers restart). It makes the phase-end handler run at most once
	// per phase no matter which trigger fires it.
	advancePending bool

	events chan *domain.GameEvent
	done   chan struct{}
}

// NewRoomSession creates a session for the given room. onEmpty is invoked when
// the room's grace period expires with nobody connected.
func NewRoomSession(room *domain.Room, cfg config.GameConfig, gen AnswerGenerator, logger *slog.Logger, onEmpty func(code string)) *RoomSession {
	session := &RoomSession{
		room:    room,
		cfg:     cfg,
		gen:     gen,
		clients: make(map[string]ClientConnection),
		logger:  logger,
		onEmpty: onEmpty,
		events:  make(chan *domain.GameEvent, 100),
		done:    make(chan struct{}),
	}

	go session.eventLoop()

	return session
}

// Code returns the room code
func (s *RoomSession) Code() string {
	return s.room.Code
}

// CreatedAt returns when the room was created
func (s *RoomSession) CreatedAt() time.Time {
	return s.room.CreatedAt
}

// PlayerCount returns the roster size, connected or not
func (s *RoomSession) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.room.Players)
}

// ConnectedCount returns the number of connected players
func (s *RoomSession) ConnectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.ConnectedCount()
}

// State returns the current game state
func (s *RoomSession) State() domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.State
}

// CanJoin reports whether a brand-new player can still join
func (s *RoomSession) CanJoin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.State == domain.StateLobby && len(s.room.Players) < s.cfg.MaxPlayers
}

// RegisterClient registers a client connection for a connection id
func (s *RoomSession) RegisterClient(connID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[connID] = client
}

// UnregisterClient removes a client connection
func (s *RoomSession) UnregisterClient(connID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, connID)
}

// JoinOrReconnect adds a player to the room or reconciles an existing roster
// record under the same name with the new connection id. Any pending room
// cleanup is cancelled; reconnect always wins that race.
func (s *RoomSession) JoinOrReconnect(connID, name string) (*domain.Player, bool, error) {
	if name == "" {
		return nil, false, domain.ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Already connected under this connection id: nothing to do
	if existing, ok := s.room.FindPlayer(connID); ok && existing.Connected {
		return existing, false, nil
	}

	s.cancelCleanupLocked()

	// Name match, connected or not: reconnection. The score entry follows the
	// new connection id and the host pointer is re-targeted if needed.
	if record, ok := s.room.FindPlayerByName(name); ok {
		s.room.Reconnect(record, connID)
		s.logger.Info("player reconnected", "roomCode", s.room.Code, "name", name, "connId", connID)
		s.queueEvent(domain.NewEvent(domain.EventPlayerJoined, s.room.Code, s.rosterPayloadLocked()))
		return record, true, nil
	}

	if len(s.room.Players) >= s.cfg.MaxPlayers {
		return nil, false, domain.ErrRoomFull
	}

	player, err := s.room.AddPlayer(connID, name)
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("player joined", "roomCode", s.room.Code, "name", name, "connId", connID)
	s.queueEvent(domain.NewEvent(domain.EventPlayerJoined, s.room.Code, s.rosterPayloadLocked()))

	return player, false, nil
}

// Disconnect marks the player behind the connection as disconnected. The
// roster record and its score survive; the active round's answers and votes
// for this connection are purged, which can complete the running phase for
// the remaining players.
func (s *RoomSession) Disconnect(connID string) {
	s.mu.Lock()

	player, ok := s.room.MarkDisconnected(connID)
	if !ok {
		s.mu.Unlock()
		return
	}

	s.logger.Info("player disconnected", "roomCode", s.room.Code, "name", player.Name)
	s.queueEvent(domain.NewEvent(domain.EventPlayerLeft, s.room.Code, s.rosterPayloadLocked()))

	if s.room.ConnectedCount() == 0 {
		// Host created the room and left before anyone else arrived: no
		// grace period, the room dies now.
		if s.room.State == domain.StateLobby && len(s.room.Players) == 1 && s.room.IsHost(player.ID) {
			code := s.room.Code
			s.mu.Unlock()
			s.onEmpty(code)
			return
		}

		s.scheduleCleanupLocked()
		s.mu.Unlock()
		return
	}

	// The required response set shrank; the remaining players may now
	// complete the phase.
	state := s.room.State
	answersDone := s.room.State == domain.StateAnswering && s.room.AllConnectedAnswered()
	votesDone := s.room.State == domain.StateVoting && s.room.AllConnectedVoted()
	s.mu.Unlock()

	switch {
	case state == domain.StateAnswering && answersDone:
		s.finishAnswering()
	case state == domain.StateVoting && votesDone:
		s.finishVoting()
	}
}

// StartGame starts the first round (host only, lobby only, 2+ connected players)
func (s *RoomSession) StartGame(connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.room.IsHost(connID) {
		return domain.ErrNotHost
	}

	if s.room.State != domain.StateLobby {
		return domain.ErrInvalidPhase
	}

	if s.room.ConnectedCount() < s.cfg.MinPlayers {
		return domain.ErrNotEnoughPlayers
	}

	s.startRoundLocked()
	return nil
}

// startRoundLocked picks a subject uniformly among connected players, draws a
// prompt and opens the answering phase. Caller must hold the room lock.
func (s *RoomSession) startRoundLocked() {
	connected := s.room.ConnectedPlayers()
	subject := connected[rand.Intn(len(connected))]
	template := RandomQuestionExcluding([]string{s.lastTemplate})
	s.lastTemplate = template
	question := FillSubject(template, subject.Name)

	s.room.BeginRound(subject, question)

	s.logger.Info("round started",
		"roomCode", s.room.Code,
		"round", s.room.RoundNumber,
		"subject", subject.Name,
	)

	s.queueEvent(domain.NewEvent(domain.EventRoundStarted, s.room.Code, &domain.RoundStartedPayload{
		Question:    question,
		SubjectName: subject.Name,
		RoundNumber: s.room.RoundNumber,
	}))

	s.schedulePhaseLocked(s.cfg.AnswerDuration, s.answerTimeout)
}

// SubmitAnswer records an answer and closes the answering phase once every
// connected player has submitted.
func (s *RoomSession) SubmitAnswer(connID, text string) error {
	s.mu.Lock()
	if err := s.room.RecordAnswer(connID, text); err != nil {
		s.mu.Unlock()
		return err
	}
	complete := s.room.AllConnectedAnswered()
	s.mu.Unlock()

	if complete {
		s.finishAnswering()
	}
	return nil
}

// SubmitVote records a vote and closes the voting phase once every connected
// player has voted.
func (s *RoomSession) SubmitVote(connID string, index int) error {
	s.mu.Lock()
	if err := s.room.RecordVote(connID, index); err != nil {
		s.mu.Unlock()
		return err
	}
	complete := s.room.AllConnectedVoted()
	s.mu.Unlock()

	if complete {
		s.finishVoting()
	}
	return nil
}

// SkipToAnswers lets the host force the answering phase to close without
// waiting for the timeout. This is also the manual retry lever after an AI
// provider failure.
func (s *RoomSession) SkipToAnswers(connID string) error {
	s.mu.Lock()
	if !s.room.IsHost(connID) {
		s.mu.Unlock()
		return domain.ErrNotHost
	}
	if s.room.State != domain.StateAnswering {
		s.mu.Unlock()
		return domain.ErrInvalidPhase
	}
	s.mu.Unlock()

	s.finishAnswering()
	return nil
}

// PlayAgain resets all scores and schedules a fresh first round (host only,
// game over only). The lobby is skipped.
func (s *RoomSession) PlayAgain(connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.room.IsHost(connID) {
		return domain.ErrNotHost
	}

	if s.room.State != domain.StateGameOver {
		return domain.ErrInvalidPhase
	}

	s.room.ResetScores()

	s.queueEvent(domain.NewEvent(domain.EventNewGameStarted, s.room.Code, &domain.NewGameStartedPayload{
		Message: "New game starting...",
	}))

	s.schedulePhaseLocked(s.cfg.NewGameDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.room.State != domain.StateGameOver || s.room.ConnectedCount() == 0 {
			return
		}
		s.startRoundLocked()
	})

	return nil
}

// answerTimeout is the answering phase's fallback trigger
func (s *RoomSession) answerTimeout() {
	s.mu.Lock()
	expired := s.room.State == domain.StateAnswering
	s.mu.Unlock()

	if expired {
		s.finishAnswering()
	}
}

// finishAnswering closes the answering phase exactly once. With zero
// submissions the round self-loops after a notice; otherwise the AI answer is
// generated (lock released while waiting), the entries shuffled and voting
// opened. A provider failure leaves the room parked in answering for a later
// trigger to retry.
func (s *RoomSession) finishAnswering() {
	s.mu.Lock()

	if s.room.State != domain.StateAnswering || s.advancePending {
		s.mu.Unlock()
		return
	}

	s.cancelPhaseLocked()

	if len(s.room.Answers) == 0 {
		s.logger.Info("no answers submitted", "roomCode", s.room.Code, "round", s.room.RoundNumber)
		s.queueEvent(domain.NewEvent(domain.EventNoAnswers, s.room.Code, &domain.NoAnswersPayload{
			Message: "Too slow! Nobody answered. New round starting...",
		}))

		round := s.room.RoundNumber
		s.advancePending = true
		s.schedulePhaseLocked(s.cfg.NoAnswersDelay, func() {
			s.mu.Lock()
			s.advancePending = false
			if s.room.State != domain.StateAnswering || s.room.RoundNumber != round || s.room.ConnectedCount() == 0 {
				s.mu.Unlock()
				return
			}

			// An answer landed during the notice window; the round
			// proceeds with it instead of being thrown away.
			if len(s.room.Answers) > 0 {
				s.mu.Unlock()
				s.finishAnswering()
				return
			}

			s.startRoundLocked()
			s.mu.Unlock()
		})

		s.mu.Unlock()
		return
	}

	question := s.room.CurrentQuestion
	round := s.room.RoundNumber
	answers := make([]string, 0, len(s.room.Answers))
	names := make([]string, 0, len(s.room.Players))
	for _, p := range s.room.Players {
		names = append(names, p.Name)
		if text, ok := s.room.Answers[p.ID]; ok {
			answers = append(answers, text)
		}
	}
	s.advancePending = true
	s.mu.Unlock()

	aiAnswer, err := s.gen.Generate(context.Background(), question, answers, names)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.advancePending = false

	// A skip or timeout may have forced the room on while we waited; the
	// stale result is discarded rather than applied.
	if s.room.State != domain.StateAnswering || s.room.RoundNumber != round {
		return
	}

	if err != nil {
		s.logger.Error("ai answer generation failed", "roomCode", s.room.Code, "error", err)
		s.queueEvent(domain.NewEvent(domain.EventError, s.room.Code, &domain.ErrorPayload{
			Code:    "AI_GENERATION_FAILED",
			Message: "Failed to generate AI answer",
		}))
		return
	}

	s.room.PrepareVoting(aiAnswer)

	s.queueEvent(domain.NewEvent(domain.EventAnswersShown, s.room.Code, &domain.AnswersShownPayload{
		Answers:       s.room.EntryTexts(),
		AIAnswerIndex: s.room.AIAnswerIndex(),
	}))

	s.schedulePhaseLocked(s.cfg.VotingDuration, s.votingTimeout)
}

// votingTimeout is the voting phase's fallback trigger
func (s *RoomSession) votingTimeout() {
	s.mu.Lock()
	expired := s.room.State == domain.StateVoting
	s.mu.Unlock()

	if expired {
		s.finishVoting()
	}
}

// finishVoting closes the voting phase exactly once: results are computed and
// either the next round or game over is scheduled.
func (s *RoomSession) finishVoting() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.State != domain.StateVoting {
		return
	}

	s.cancelPhaseLocked()

	results, winner := s.room.CalculateResults(s.cfg.WinningScore)

	s.queueEvent(domain.NewEvent(domain.EventResultsShown, s.room.Code, &domain.ResultsShownPayload{
		Results:       results,
		AIAnswerIndex: s.room.AIAnswerIndex(),
		Answers:       s.room.EntryTexts(),
	}))

	if winner != nil {
		winnerName := winner.Name
		s.logger.Info("game won", "roomCode", s.room.Code, "winner", winnerName)

		s.schedulePhaseLocked(s.cfg.GameOverDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.room.State != domain.StateResults {
				return
			}
			s.room.SetGameOver()
			s.queueEvent(domain.NewEvent(domain.EventGameOver, s.room.Code, &domain.GameOverPayload{
				Winner: winnerName,
				Scores: s.scoresByNameLocked(),
			}))
		})
		return
	}

	s.schedulePhaseLocked(s.cfg.NextRoundDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.room.State != domain.StateResults || s.room.ConnectedCount() == 0 {
			return
		}
		s.startRoundLocked()
	})
}

// RoomState builds the snapshot sent to a reconnecting or late-loading player
func (s *RoomSession) RoomState(connID string) *domain.RoomStatePayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload := &domain.RoomStatePayload{
		RoomCode:  s.room.Code,
		Players:   s.room.PlayerInfos(),
		IsHost:    s.room.IsHost(connID),
		HostID:    s.room.HostID,
		GameState: s.room.State,
	}

	switch s.room.State {
	case domain.StateAnswering:
		payload.Question = s.room.CurrentQuestion
		payload.SubjectName = s.subjectNameLocked()
		payload.RoundNumber = s.room.RoundNumber
	case domain.StateVoting:
		payload.Question = s.room.CurrentQuestion
		payload.SubjectName = s.subjectNameLocked()
		payload.RoundNumber = s.room.RoundNumber
		payload.Answers = s.room.EntryTexts()
		payload.VotedCount = len(s.room.Votes)
	}

	return payload
}

// schedulePhaseLocked arms the per-room fallback timer, always cancelling the
// previous one first. Caller must hold the room lock; fn runs without it.
func (s *RoomSession) schedulePhaseLocked(d time.Duration, fn func()) {
	s.cancelPhaseLocked()
	s.phaseTimer = time.AfterFunc(d, fn)
}

// cancelPhaseLocked stops any outstanding fallback timer
func (s *RoomSession) cancelPhaseLocked() {
	if s.phaseTimer != nil {
		s.phaseTimer.Stop()
		s.phaseTimer = nil
	}
}

// scheduleCleanupLocked arms the empty-room grace timer
func (s *RoomSession) scheduleCleanupLocked() {
	s.cancelCleanupLocked()

	code := s.room.Code
	s.cleanupTimer = time.AfterFunc(s.cfg.RoomGracePeriod, func() {
		s.mu.Lock()
		empty := s.room.ConnectedCount() == 0
		s.mu.Unlock()

		if empty {
			s.onEmpty(code)
		}
	})
}

// cancelCleanupLocked stops any pending room deletion
func (s *RoomSession) cancelCleanupLocked() {
	if s.cleanupTimer != nil {
		s.cleanupTimer.Stop()
		s.cleanupTimer = nil
	}
}

// rosterPayloadLocked snapshots the roster for player-joined/player-left
// events. Payloads are marshalled by the event loop after the lock is
// released, so they carry value copies, never the live records.
func (s *RoomSession) rosterPayloadLocked() *domain.RosterPayload {
	return &domain.RosterPayload{
		Players: s.room.PlayerInfos(),
		HostID:  s.room.HostID,
	}
}

// subjectNameLocked returns the current round subject's name, if any
func (s *RoomSession) subjectNameLocked() string {
	if s.room.CurrentSubject == nil {
		return ""
	}
	return s.room.CurrentSubject.Name
}

// scoresByNameLocked re-keys the score map by player name for display
func (s *RoomSession) scoresByNameLocked() map[string]int {
	scores := make(map[string]int, len(s.room.Players))
	for _, p := range s.room.Players {
		scores[p.Name] = s.room.Scores[p.ID]
	}
	return scores
}

// queueEvent adds an event to the broadcast queue
func (s *RoomSession) queueEvent(event *domain.GameEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// SendTo sends an event directly to one connection, if registered
func (s *RoomSession) SendTo(connID string, event *domain.GameEvent) {
	s.clientsMu.RLock()
	client, ok := s.clients[connID]
	s.clientsMu.RUnlock()

	if ok {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "connId", connID, "error", err)
		}
	}
}

// eventLoop processes events and broadcasts to clients
func (s *RoomSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to appropriate clients
func (s *RoomSession) broadcastEvent(event *domain.GameEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	// If connection-specific, send only to that connection
	if event.PlayerID != "" {
		if client, ok := s.clients[event.PlayerID]; ok {
			if err := client.Send(event); err != nil {
				s.logger.Debug("failed to send to client", "connId", event.PlayerID, "error", err)
			}
		}
		return
	}

	for connID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "connId", connID, "error", err)
		}
	}
}

// Close shuts down the session and its timers
func (s *RoomSession) Close() {
	select {
	case <-s.done:
		return // Already closed
	default:
		close(s.done)
	}

	s.mu.Lock()
	s.cancelPhaseLocked()
	s.cancelCleanupLocked()
	s.mu.Unlock()

	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
