package domain

// GameState represents the current phase of a room
type GameState string

const (
	StateLobby     GameState = "lobby"     // Waiting for players to join
	StateAnswering GameState = "answering" // Players writing answers to the prompt
	StateVoting    GameState = "voting"    // Players voting on the shuffled answers
	StateResults   GameState = "results"   // Showing round results and scores
	StateGameOver  GameState = "game_over" // Someone reached the winning score
)

// String returns the string representation of the state
func (s GameState) String() string {
	return string(s)
}

// CanTransitionTo checks if a transition from the current state to the target state is valid
func (s GameState) CanTransitionTo(target GameState) bool {
	validTransitions := map[GameState][]GameState{
		StateLobby:     {StateAnswering},
		StateAnswering: {StateVoting, StateAnswering}, // Self-loop when a round closes with no answers
		StateVoting:    {StateResults},
		StateResults:   {StateAnswering, StateGameOver},
		StateGameOver:  {StateAnswering}, // Play again starts a round directly, no lobby in between
	}

	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == target {
			return true
		}
	}
	return false
}
