package domain

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Room represents a single game session identified by a 4-letter code.
// All mutation happens under the owning session's lock.
type Room struct {
	Code            string            `json:"code"`
	HostID          string            `json:"hostId"`
	Players         []*Player         `json:"players"`
	State           GameState         `json:"state"`
	CurrentQuestion string            `json:"currentQuestion,omitempty"`
	CurrentSubject  *Player           `json:"currentSubject,omitempty"`
	Answers         map[string]string `json:"-"` // connection id -> submitted text
	AIAnswer        string            `json:"-"`
	ShuffledEntries []AnswerEntry     `json:"-"`
	Votes           map[string]int    `json:"-"` // connection id -> index into ShuffledEntries
	Scores          map[string]int    `json:"scores"`
	RoundNumber     int               `json:"roundNumber"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// NewRoom creates a new room in the lobby state
func NewRoom(code, hostID string) *Room {
	return &Room{
		Code:      code,
		HostID:    hostID,
		Players:   make([]*Player, 0),
		State:     StateLobby,
		Answers:   make(map[string]string),
		Votes:     make(map[string]int),
		Scores:    make(map[string]int),
		CreatedAt: time.Now(),
	}
}

// AddPlayer appends a new connected player with a zero score.
// New players may only join while the room is in the lobby.
func (r *Room) AddPlayer(connID, name string) (*Player, error) {
	if r.State != StateLobby {
		return nil, ErrGameInProgress
	}

	player := NewPlayer(connID, name)
	r.Players = append(r.Players, player)
	r.Scores[connID] = 0

	return player, nil
}

// FindPlayer returns the player with the given connection id
func (r *Room) FindPlayer(connID string) (*Player, bool) {
	for _, p := range r.Players {
		if p.ID == connID {
			return p, true
		}
	}
	return nil, false
}

// FindPlayerByName returns the roster record with the given name,
// connected or not. Name is the sole reconnection key.
func (r *Room) FindPlayerByName(name string) (*Player, bool) {
	for _, p := range r.Players {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Reconnect reconciles an existing roster record with a fresh connection id:
// the score entry and any live round state move to the new key and, if the
// record was the host, the host pointer follows it. Re-keying the shuffled
// entry keeps vote credit working for a player who answered, dropped and came
// back mid-voting.
func (r *Room) Reconnect(player *Player, newConnID string) {
	oldID := player.ID

	if score, ok := r.Scores[oldID]; ok {
		delete(r.Scores, oldID)
		r.Scores[newConnID] = score
	} else {
		r.Scores[newConnID] = 0
	}

	if text, ok := r.Answers[oldID]; ok {
		delete(r.Answers, oldID)
		r.Answers[newConnID] = text
	}

	if index, ok := r.Votes[oldID]; ok {
		delete(r.Votes, oldID)
		r.Votes[newConnID] = index
	}

	for i := range r.ShuffledEntries {
		if r.ShuffledEntries[i].AuthorID == oldID {
			r.ShuffledEntries[i].AuthorID = newConnID
		}
	}

	if r.HostID == oldID {
		r.HostID = newConnID
	}

	player.Reconnect(newConnID)
}

// MarkDisconnected flags the player as disconnected and purges their entries
// from the active round's answers and votes. Scores and the roster record
// itself survive for reconnection.
func (r *Room) MarkDisconnected(connID string) (*Player, bool) {
	player, ok := r.FindPlayer(connID)
	if !ok {
		return nil, false
	}

	player.Disconnect()
	delete(r.Answers, connID)
	delete(r.Votes, connID)

	return player, true
}

// PlayerInfos returns value snapshots of the roster in roster order
func (r *Room) PlayerInfos() []PlayerInfo {
	infos := make([]PlayerInfo, len(r.Players))
	for i, p := range r.Players {
		infos[i] = p.Info()
	}
	return infos
}

// ConnectedPlayers returns the currently connected players in roster order
func (r *Room) ConnectedPlayers() []*Player {
	connected := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Connected {
			connected = append(connected, p)
		}
	}
	return connected
}

// ConnectedCount returns the number of currently connected players
func (r *Room) ConnectedCount() int {
	count := 0
	for _, p := range r.Players {
		if p.Connected {
			count++
		}
	}
	return count
}

// IsHost checks if the given connection id is the host
func (r *Room) IsHost(connID string) bool {
	return r.HostID == connID
}

// BeginRound resets the per-round structures and moves the room into the
// answering phase with the given subject and resolved question text.
func (r *Room) BeginRound(subject *Player, question string) {
	r.CurrentSubject = subject
	r.CurrentQuestion = question
	r.Answers = make(map[string]string)
	r.Votes = make(map[string]int)
	r.AIAnswer = ""
	r.ShuffledEntries = nil
	r.RoundNumber++
	r.State = StateAnswering
}

// RecordAnswer stores the trimmed answer text for the connection, overwriting
// any prior submission by the same connection.
func (r *Room) RecordAnswer(connID, text string) error {
	if r.State != StateAnswering {
		return ErrInvalidPhase
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyAnswer
	}

	if _, ok := r.FindPlayer(connID); !ok {
		return ErrPlayerNotFound
	}

	r.Answers[connID] = text
	return nil
}

// AllConnectedAnswered reports whether every connected player has submitted
func (r *Room) AllConnectedAnswered() bool {
	connected := r.ConnectedCount()
	return connected > 0 && len(r.Answers) >= connected
}

// PrepareVoting builds the shuffled entry list from this round's submissions
// plus the AI answer and moves the room into the voting phase. The shuffle is
// a uniform random permutation.
func (r *Room) PrepareVoting(aiAnswer string) {
	r.AIAnswer = aiAnswer

	entries := make([]AnswerEntry, 0, len(r.Answers)+1)
	for _, p := range r.Players {
		if text, ok := r.Answers[p.ID]; ok {
			entries = append(entries, AnswerEntry{
				Text:       text,
				AuthorID:   p.ID,
				AuthorName: p.Name,
			})
		}
	}
	entries = append(entries, AnswerEntry{
		Text:       aiAnswer,
		AuthorID:   AIAuthorID,
		AuthorName: "AI",
		IsAI:       true,
	})

	rand.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})

	r.ShuffledEntries = entries
	r.State = StateVoting
}

// RecordVote stores the vote for the connection, overwriting any prior vote.
// The index must address an existing shuffled entry.
func (r *Room) RecordVote(connID string, index int) error {
	if r.State != StateVoting {
		return ErrInvalidPhase
	}

	if index < 0 || index >= len(r.ShuffledEntries) {
		return ErrInvalidAnswerIndex
	}

	if _, ok := r.FindPlayer(connID); !ok {
		return ErrPlayerNotFound
	}

	r.Votes[connID] = index
	return nil
}

// AllConnectedVoted reports whether every connected player has voted
func (r *Room) AllConnectedVoted() bool {
	connected := r.ConnectedCount()
	return connected > 0 && len(r.Votes) >= connected
}

// AIAnswerIndex returns the index of the AI entry in the shuffled list,
// or -1 if voting has not been prepared.
func (r *Room) AIAnswerIndex() int {
	for i, e := range r.ShuffledEntries {
		if e.IsAI {
			return i
		}
	}
	return -1
}

// entryIndexFor returns the shuffled index of the entry authored by the given
// connection, or -1 if that player submitted no answer this round.
func (r *Room) entryIndexFor(connID string) int {
	for i, e := range r.ShuffledEntries {
		if e.AuthorID == connID {
			return i
		}
	}
	return -1
}

// CalculateResults applies this round's point attribution, moves the room to
// the results state and returns per-player results plus the winner, if any.
//
// Each connected player earns +1 for voting the AI entry and +1 for every
// other connected player whose vote landed on their own answer. Players who
// submitted nothing have no entry and cannot earn the second credit.
func (r *Room) CalculateResults(winningScore int) ([]PlayerResult, *Player) {
	aiIndex := r.AIAnswerIndex()
	results := make([]PlayerResult, 0, len(r.Players))

	for _, player := range r.ConnectedPlayers() {
		points := 0
		events := make([]string, 0, 2)

		if votedIndex, ok := r.Votes[player.ID]; ok && votedIndex == aiIndex {
			points++
			events = append(events, "Guessed AI correctly!")
		}

		ownIndex := r.entryIndexFor(player.ID)
		if ownIndex >= 0 {
			for _, voter := range r.ConnectedPlayers() {
				if voter.ID == player.ID {
					continue
				}
				if votedIndex, ok := r.Votes[voter.ID]; ok && votedIndex == ownIndex {
					points++
					events = append(events, fmt.Sprintf("%s voted for your answer!", voter.Name))
				}
			}
		}

		r.Scores[player.ID] += points

		results = append(results, PlayerResult{
			PlayerID:     player.ID,
			PlayerName:   player.Name,
			PointsEarned: points,
			Events:       events,
			NewScore:     r.Scores[player.ID],
		})
	}

	r.State = StateResults

	return results, r.Winner(winningScore)
}

// Winner returns the first roster-order player whose cumulative score reached
// the winning score, or nil
func (r *Room) Winner(winningScore int) *Player {
	for _, p := range r.Players {
		if r.Scores[p.ID] >= winningScore {
			return p
		}
	}
	return nil
}

// SetGameOver moves the room into the game over state
func (r *Room) SetGameOver() {
	r.State = StateGameOver
}

// ResetScores zeroes every roster score for a fresh game
func (r *Room) ResetScores() {
	for _, p := range r.Players {
		r.Scores[p.ID] = 0
	}
}

// EntryTexts returns just the texts of the shuffled entries, in order
func (r *Room) EntryTexts() []string {
	texts := make([]string, len(r.ShuffledEntries))
	for i, e := range r.ShuffledEntries {
		texts[i] = e.Text
	}
	return texts
}
