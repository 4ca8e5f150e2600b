package domain

import (
	"strings"
	"testing"
)

func newLobbyRoom(t *testing.T, names ...string) *Room {
	t.Helper()

	room := NewRoom("ABCD", "conn-"+names[0])
	for _, name := range names {
		if _, err := room.AddPlayer("conn-"+name, name); err != nil {
			t.Fatalf("AddPlayer(%q): %v", name, err)
		}
	}
	return room
}

func TestAddPlayer_OnlyInLobby(t *testing.T) {
	room := newLobbyRoom(t, "ana", "bo")
	room.State = StateAnswering

	if _, err := room.AddPlayer("conn-new", "carl"); err != ErrGameInProgress {
		t.Fatalf("expected ErrGameInProgress, got %v", err)
	}
}

func TestReconnect_MovesScoreAndHost(t *testing.T) {
	room := newLobbyRoom(t, "ana", "bo")
	room.Scores["conn-ana"] = 7

	ana, _ := room.FindPlayer("conn-ana")
	ana.Disconnect()

	room.Reconnect(ana, "conn-ana-2")

	if !ana.Connected || ana.DisconnectedAt != nil {
		t.Fatalf("reconnected player should be connected with no disconnect timestamp")
	}
	if ana.ID != "conn-ana-2" {
		t.Fatalf("expected new connection id, got %q", ana.ID)
	}
	if got := room.Scores["conn-ana-2"]; got != 7 {
		t.Fatalf("score did not follow the new key: got %d, want 7", got)
	}
	if _, stale := room.Scores["conn-ana"]; stale {
		t.Fatalf("old score key should be gone")
	}
	if room.HostID != "conn-ana-2" {
		t.Fatalf("host pointer should follow the host's new connection id, got %q", room.HostID)
	}
}

func TestMarkDisconnected_PurgesRoundStateOnly(t *testing.T) {
	room := newLobbyRoom(t, "ana", "bo")
	room.BeginRound(room.Players[0], "What's ana's go-to dinner?")

	if err := room.RecordAnswer("conn-bo", "jail"); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	room.Scores["conn-bo"] = 3

	if _, ok := room.MarkDisconnected("conn-bo"); !ok {
		t.Fatalf("expected to find player")
	}

	if _, ok := room.Answers["conn-bo"]; ok {
		t.Fatalf("answers should be purged on disconnect")
	}
	if got := room.Scores["conn-bo"]; got != 3 {
		t.Fatalf("score must survive disconnect, got %d", got)
	}
	if len(room.Players) != 2 {
		t.Fatalf("roster record must survive disconnect")
	}
}

func TestAnswersNeverExceedConnectedCount(t *testing.T) {
	room := newLobbyRoom(t, "ana", "bo", "carl")
	room.BeginRound(room.Players[0], "prompt")

	for _, p := range room.Players {
		if err := room.RecordAnswer(p.ID, "something"); err != nil {
			t.Fatalf("RecordAnswer: %v", err)
		}
	}
	room.MarkDisconnected("conn-carl")

	if len(room.Answers) > room.ConnectedCount() {
		t.Fatalf("answers (%d) exceed connected players (%d)", len(room.Answers), room.ConnectedCount())
	}
}

func TestRecordAnswer_OverwritesAndTrims(t *testing.T) {
	room := newLobbyRoom(t, "ana", "bo")
	room.BeginRound(room.Players[0], "prompt")

	if err := room.RecordAnswer("conn-ana", "  first  "); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if err := room.RecordAnswer("conn-ana", "second"); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	if len(room.Answers) != 1 {
		t.Fatalf("resubmission must overwrite, got %d answers", len(room.Answers))
	}
	if got := room.Answers["conn-ana"]; got != "second" {
		t.Fatalf("expected latest answer, got %q", got)
	}

	if err := room.RecordAnswer("conn-ana", "   "); err != ErrEmptyAnswer {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}
}

func TestPrepareVoting_OneEntryPerSubmissionPlusAI(t *testing.T) {
	room := newLobbyRoom(t, "ana", "bo", "carl")
	room.BeginRound(room.Players[0], "prompt")

	room.RecordAnswer("conn-ana", "the moon")
	room.RecordAnswer("conn-bo", "jail")
	// carl never answers

	room.PrepareVoting("the gym obviously")

	if room.State != StateVoting {
		t.Fatalf("expected voting state, got %v", room.State)
	}
	if len(room.ShuffledEntries) != 3 {
		t.Fatalf("expected 2 player entries + 1 AI entry, got %d", len(room.ShuffledEntries))
	}

	aiCount := 0
	authors := map[string]bool{}
	for _, e := range room.ShuffledEntries {
		if e.IsAI {
			aiCount++
		}
		authors[e.AuthorID] = true
	}
	if aiCount != 1 {
		t.Fatalf("expected exactly one AI entry, got %d", aiCount)
	}
	if authors["conn-carl"] {
		t.Fatalf("non-responder must have no entry")
	}
}

func TestRecordVote_BoundsAndOverwrite(t *testing.T) {
	room := newLobbyRoom(t, "ana", "bo")
	room.BeginRound(room.Players[0], "prompt")
	room.RecordAnswer("conn-ana", "a")
	room.RecordAnswer("conn-bo", "b")
	room.PrepareVoting("c")

	if err := room.RecordVote("conn-ana", 3); err != ErrInvalidAnswerIndex {
		t.Fatalf("expected ErrInvalidAnswerIndex, got %v", err)
	}
	if err := room.RecordVote("conn-ana", -1); err != ErrInvalidAnswerIndex {
		t.Fatalf("expected ErrInvalidAnswerIndex, got %v", err)
	}

	room.RecordVote("conn-ana", 0)
	room.RecordVote("conn-ana", 2)
	if len(room.Votes) != 1 || room.Votes["conn-ana"] != 2 {
		t.Fatalf("revote must overwrite, got %v", room.Votes)
	}
}

// The worked example: prompt about P1, shuffled order [P2, AI, P1].
// P1 votes the AI entry (+1) and P2 votes P1's entry (+1 for P1).
func TestCalculateResults_WorkedExample(t *testing.T) {
	room := newLobbyRoom(t, "p1", "p2")
	room.BeginRound(room.Players[0], "What's p1's favorite place to poop?")

	room.RecordAnswer("conn-p1", "the moon")
	room.RecordAnswer("conn-p2", "jail")

	room.AIAnswer = "the gym, obviously"
	room.ShuffledEntries = []AnswerEntry{
		{Text: "jail", AuthorID: "conn-p2", AuthorName: "p2"},
		{Text: "the gym, obviously", AuthorID: AIAuthorID, AuthorName: "AI", IsAI: true},
		{Text: "the moon", AuthorID: "conn-p1", AuthorName: "p1"},
	}
	room.State = StateVoting

	room.RecordVote("conn-p1", 1) // the AI entry
	room.RecordVote("conn-p2", 2) // p1's entry

	results, winner := room.CalculateResults(10)

	if winner != nil {
		t.Fatalf("no winner expected, got %v", winner.Name)
	}
	if room.State != StateResults {
		t.Fatalf("expected results state, got %v", room.State)
	}

	byName := map[string]PlayerResult{}
	for _, r := range results {
		byName[r.PlayerName] = r
	}

	p1 := byName["p1"]
	if p1.NewScore != 2 || p1.PointsEarned != 2 {
		t.Fatalf("p1 expected 2 points, got %+v", p1)
	}
	if len(p1.Events) != 2 {
		t.Fatalf("p1 expected 2 events, got %v", p1.Events)
	}
	if p1.Events[0] != "Guessed AI correctly!" {
		t.Fatalf("unexpected first event: %q", p1.Events[0])
	}
	if !strings.Contains(p1.Events[1], "p2 voted for your answer!") {
		t.Fatalf("unexpected second event: %q", p1.Events[1])
	}

	p2 := byName["p2"]
	if p2.NewScore != 0 || p2.PointsEarned != 0 {
		t.Fatalf("p2 expected 0 points, got %+v", p2)
	}
}

func TestCalculateResults_NonSubmitterEarnsNoVoteCredit(t *testing.T) {
	room := newLobbyRoom(t, "ana", "bo", "carl")
	room.BeginRound(room.Players[0], "prompt")

	room.RecordAnswer("conn-ana", "a")
	room.RecordAnswer("conn-bo", "b")
	// carl submitted nothing and has no entry
	room.PrepareVoting("ai answer")

	// Everyone votes index 0, whatever it is
	room.RecordVote("conn-ana", 0)
	room.RecordVote("conn-bo", 0)
	room.RecordVote("conn-carl", 0)

	results, _ := room.CalculateResults(10)

	for _, r := range results {
		if r.PlayerName == "carl" {
			for _, e := range r.Events {
				if strings.Contains(e, "voted for your answer") {
					t.Fatalf("non-submitter cannot receive answer votes: %v", r.Events)
				}
			}
		}
		// Per-round gain is bounded by the connected player count
		if r.PointsEarned < 0 || r.PointsEarned > room.ConnectedCount() {
			t.Fatalf("points out of bounds: %+v", r)
		}
	}
}

func TestWinner_AtThreshold(t *testing.T) {
	room := newLobbyRoom(t, "ana", "bo")
	room.Scores["conn-ana"] = 9

	if w := room.Winner(10); w != nil {
		t.Fatalf("no winner below threshold, got %v", w.Name)
	}

	room.Scores["conn-ana"] = 10
	w := room.Winner(10)
	if w == nil || w.Name != "ana" {
		t.Fatalf("expected ana to win, got %v", w)
	}
}

func TestResetScores(t *testing.T) {
	room := newLobbyRoom(t, "ana", "bo")
	room.Scores["conn-ana"] = 10
	room.Scores["conn-bo"] = 4

	room.ResetScores()

	for id, score := range room.Scores {
		if score != 0 {
			t.Fatalf("score for %s not reset: %d", id, score)
		}
	}
}

func TestGameStateTransitions(t *testing.T) {
	cases := []struct {
		from, to GameState
		ok       bool
	}{
		{StateLobby, StateAnswering, true},
		{StateAnswering, StateVoting, true},
		{StateAnswering, StateAnswering, true},
		{StateVoting, StateResults, true},
		{StateResults, StateAnswering, true},
		{StateResults, StateGameOver, true},
		{StateGameOver, StateAnswering, true},
		{StateLobby, StateVoting, false},
		{StateVoting, StateAnswering, false},
		{StateGameOver, StateLobby, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestReconnect_DuringVotingKeepsVoteCredit(t *testing.T) {
	room := newLobbyRoom(t, "ana", "bo")
	room.BeginRound(room.Players[0], "What's ana's go-to dinner?")

	if err := room.RecordAnswer("conn-ana", "the moon"); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if err := room.RecordAnswer("conn-bo", "jail"); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	room.PrepareVoting("the gym obviously")

	// bo drops and comes back under a fresh connection mid-voting
	if _, ok := room.MarkDisconnected("conn-bo"); !ok {
		t.Fatalf("MarkDisconnected failed")
	}
	bo, _ := room.FindPlayerByName("bo")
	room.Reconnect(bo, "conn-bo-2")

	boEntry := -1
	for i, e := range room.ShuffledEntries {
		if e.AuthorID == "conn-bo-2" {
			boEntry = i
		}
	}
	if boEntry < 0 {
		t.Fatalf("bo's entry was not re-keyed to the new connection id")
	}

	// ana's vote lands on bo's answer
	if err := room.RecordVote("conn-ana", boEntry); err != nil {
		t.Fatalf("RecordVote: %v", err)
	}
	if err := room.RecordVote("conn-bo-2", (boEntry+1)%len(room.ShuffledEntries)); err != nil {
		t.Fatalf("RecordVote: %v", err)
	}

	results, _ := room.CalculateResults(10)

	for _, res := range results {
		if res.PlayerName != "bo" {
			continue
		}
		if res.PointsEarned < 1 {
			t.Fatalf("bo earned %d points, want at least 1 for ana's vote", res.PointsEarned)
		}
		found := false
		for _, ev := range res.Events {
			if ev == "ana voted for your answer!" {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing vote-credit event, got %v", res.Events)
		}
	}
	if room.Scores["conn-bo-2"] < 1 {
		t.Fatalf("score not credited under the new connection id: %v", room.Scores)
	}
}

func TestReconnect_RekeysAnswerAndVote(t *testing.T) {
	room := newLobbyRoom(t, "ana", "bo")
	room.BeginRound(room.Players[0], "What's ana's go-to dinner?")

	if err := room.RecordAnswer("conn-bo", "jail"); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	// Reconnect without a disconnect, e.g. a second tab taking over
	bo, _ := room.FindPlayerByName("bo")
	room.Reconnect(bo, "conn-bo-2")

	if _, ok := room.Answers["conn-bo"]; ok {
		t.Fatalf("answer still keyed by the stale connection id")
	}
	if got := room.Answers["conn-bo-2"]; got != "jail" {
		t.Fatalf("answer lost across reconnect: %q", got)
	}
}
