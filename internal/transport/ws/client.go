package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"decoy/internal/app"
	"decoy/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection. A client belongs to at
// most one room session, entered via create-room, join-room or
// request-room-state.
type Client struct {
	conn    *websocket.Conn
	hub     *app.RoomHub
	connID  string
	session *app.RoomSession
	send    chan []byte
	done    chan struct{}
	logger  *slog.Logger
	mu      sync.Mutex
	closed  bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *app.RoomHub, connID string, logger *slog.Logger) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		connID: connID,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// GetPlayerID returns the connection id for this client
func (c *Client) GetPlayerID() string {
	return c.connID
}

// Send implements app.ClientConnection
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped", "connId", c.connID)
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		if c.session != nil {
			c.session.UnregisterClient(c.connID)
			c.session.Disconnect(c.connID)
		}
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgCreateRoom:
		c.handleCreateRoom(msg.Payload)
	case MsgJoinRoom:
		c.handleJoinRoom(msg.Payload)
	case MsgRequestRoomState:
		c.handleRequestRoomState(msg.Payload)
	case MsgStartGame:
		c.handleStartGame()
	case MsgSubmitAnswer:
		c.handleSubmitAnswer(msg.Payload)
	case MsgSubmitVote:
		c.handleSubmitVote(msg.Payload)
	case MsgSkipToAnswers:
		c.handleSkipToAnswers()
	case MsgPlayAgain:
		c.handlePlayAgain()
	case MsgPing:
		// Nothing to do, the read deadline was already pushed
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleCreateRoom creates a room and joins the creator as its host
func (c *Client) handleCreateRoom(payload json.RawMessage) {
	var p CreateRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil || strings.TrimSpace(p.HostName) == "" {
		c.sendError(ErrCodeValidation, "Host name required")
		return
	}

	session, err := c.hub.CreateRoom(c.connID)
	if err != nil {
		c.sendError(ErrCodeInternalError, "Failed to create room")
		return
	}

	if _, _, err := session.JoinOrReconnect(c.connID, strings.TrimSpace(p.HostName)); err != nil {
		c.hub.RemoveRoom(session.Code())
		c.sendDomainError(err)
		return
	}

	c.session = session
	session.RegisterClient(c.connID, c)

	state := session.RoomState(c.connID)
	c.Send(domain.NewPlayerEvent(domain.EventRoomCreated, session.Code(), c.connID, &domain.RoomCreatedPayload{
		RoomCode: session.Code(),
		Players:  state.Players,
		IsHost:   true,
		HostID:   state.HostID,
	}))
}

// handleJoinRoom joins an existing room, reconnecting if the name matches a
// roster record
func (c *Client) handleJoinRoom(payload json.RawMessage) {
	var p JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(p.RoomCode))
	name := strings.TrimSpace(p.PlayerName)
	if len(code) != app.RoomCodeLength || name == "" {
		c.sendError(ErrCodeValidation, "Room code and player name required")
		return
	}

	session, err := c.hub.GetRoom(code)
	if err != nil {
		c.sendError(ErrCodeRoomNotFound, "Room not found")
		return
	}

	if _, _, err := session.JoinOrReconnect(c.connID, name); err != nil {
		c.sendDomainError(err)
		return
	}

	c.session = session
	session.RegisterClient(c.connID, c)

	state := session.RoomState(c.connID)
	c.Send(domain.NewPlayerEvent(domain.EventRoomJoined, code, c.connID, &domain.RoomJoinedPayload{
		RoomCode: code,
		Players:  state.Players,
		IsHost:   state.IsHost,
		HostID:   state.HostID,
	}))
}

// handleRequestRoomState attaches the connection to a room (reconnecting by
// name when possible) and replies with the current room snapshot
func (c *Client) handleRequestRoomState(payload json.RawMessage) {
	var p RequestRoomStatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(p.RoomCode))
	session, err := c.hub.GetRoom(code)
	if err != nil {
		c.sendError(ErrCodeRoomNotFound, "Room not found")
		return
	}

	// Re-attach by name when we can; a failed join still gets the snapshot
	if name := strings.TrimSpace(p.PlayerName); name != "" {
		if _, _, err := session.JoinOrReconnect(c.connID, name); err != nil {
			c.logger.Debug("room-state join skipped", "roomCode", code, "error", err)
		}
	}

	c.session = session
	session.RegisterClient(c.connID, c)

	c.Send(domain.NewPlayerEvent(domain.EventRoomState, code, c.connID, session.RoomState(c.connID)))
}

// handleStartGame handles a start-game message
func (c *Client) handleStartGame() {
	if c.session == nil {
		c.sendError(ErrCodeNotInRoom, "Join a room first")
		return
	}

	if err := c.session.StartGame(c.connID); err != nil {
		c.sendDomainError(err)
	}
}

// handleSubmitAnswer handles a submit-answer message
func (c *Client) handleSubmitAnswer(payload json.RawMessage) {
	if c.session == nil {
		c.sendError(ErrCodeNotInRoom, "Join a room first")
		return
	}

	var p SubmitAnswerPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	if err := c.session.SubmitAnswer(c.connID, p.Answer); err != nil {
		c.sendDomainError(err)
	}
}

// handleSubmitVote handles a submit-vote message
func (c *Client) handleSubmitVote(payload json.RawMessage) {
	if c.session == nil {
		c.sendError(ErrCodeNotInRoom, "Join a room first")
		return
	}

	var p SubmitVotePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	if err := c.session.SubmitVote(c.connID, p.AnswerIndex); err != nil {
		c.sendDomainError(err)
	}
}

// handleSkipToAnswers handles a skip-to-answers message
func (c *Client) handleSkipToAnswers() {
	if c.session == nil {
		c.sendError(ErrCodeNotInRoom, "Join a room first")
		return
	}

	if err := c.session.SkipToAnswers(c.connID); err != nil {
		c.sendDomainError(err)
	}
}

// handlePlayAgain handles a play-again message
func (c *Client) handlePlayAgain() {
	if c.session == nil {
		c.sendError(ErrCodeNotInRoom, "Join a room first")
		return
	}

	if err := c.session.PlayAgain(c.connID); err != nil {
		c.sendDomainError(err)
	}
}

// sendDomainError maps a domain error to a wire error code and reports it to
// this connection only
func (c *Client) sendDomainError(err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		c.sendError(ErrCodeRoomNotFound, "Room not found")
	case errors.Is(err, domain.ErrRoomFull):
		c.sendError(ErrCodeRoomFull, "Room is full")
	case errors.Is(err, domain.ErrGameInProgress):
		c.sendError(ErrCodeGameInProgress, "Game already in progress")
	case errors.Is(err, domain.ErrNotEnoughPlayers):
		c.sendError(ErrCodeNotEnoughPlayers, "Need at least 2 players")
	case errors.Is(err, domain.ErrNotHost):
		c.sendError(ErrCodeNotHost, "Only the host can do that")
	case errors.Is(err, domain.ErrInvalidPhase):
		c.sendError(ErrCodeInvalidAction, "Action not valid right now")
	case errors.Is(err, domain.ErrEmptyName), errors.Is(err, domain.ErrEmptyAnswer),
		errors.Is(err, domain.ErrInvalidAnswerIndex), errors.Is(err, domain.ErrInvalidRoomCode):
		c.sendError(ErrCodeValidation, err.Error())
	case errors.Is(err, domain.ErrPlayerNotFound):
		c.sendError(ErrCodeInvalidAction, "You are not in this round")
	default:
		c.sendError(ErrCodeInternalError, err.Error())
	}
}

// sendError sends an error event to this connection only
func (c *Client) sendError(code, message string) {
	roomCode := ""
	if c.session != nil {
		roomCode = c.session.Code()
	}

	c.Send(domain.NewPlayerEvent(domain.EventError, roomCode, c.connID, &domain.ErrorPayload{
		Code:    code,
		Message: message,
	}))
}
