package domain

// PlayerResult is one player's outcome for a single round
type PlayerResult struct {
	PlayerID     string   `json:"playerId"`
	PlayerName   string   `json:"playerName"`
	PointsEarned int      `json:"pointsEarned"`
	Events       []string `json:"events"`
	NewScore     int      `json:"newScore"`
}
