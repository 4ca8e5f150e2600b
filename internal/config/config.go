package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	AI      AIConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Host string
	Env  string // "development" or "production"
}

// GameConfig holds game-related configuration
type GameConfig struct {
	MinPlayers      int
	MaxPlayers      int
	WinningScore    int
	AnswerDuration  time.Duration
	VotingDuration  time.Duration
	NextRoundDelay  time.Duration
	GameOverDelay   time.Duration
	NoAnswersDelay  time.Duration
	NewGameDelay    time.Duration
	RoomGracePeriod time.Duration
}

// AIConfig holds AI provider configuration
type AIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Game: GameConfig{
			MinPlayers:      getEnvInt("MIN_PLAYERS", 2),
			MaxPlayers:      getEnvInt("MAX_PLAYERS", 8),
			WinningScore:    getEnvInt("WINNING_SCORE", 10),
			AnswerDuration:  getEnvSeconds("ANSWER_SECONDS", 20),
			VotingDuration:  getEnvSeconds("VOTING_SECONDS", 30),
			NextRoundDelay:  getEnvSeconds("NEXT_ROUND_DELAY_SECONDS", 8),
			GameOverDelay:   getEnvSeconds("GAME_OVER_DELAY_SECONDS", 5),
			NoAnswersDelay:  getEnvSeconds("NO_ANSWERS_DELAY_SECONDS", 3),
			NewGameDelay:    getEnvSeconds("NEW_GAME_DELAY_SECONDS", 3),
			RoomGracePeriod: getEnvSeconds("ROOM_GRACE_SECONDS", 30),
		},
		AI: AIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			Timeout: getEnvSeconds("AI_TIMEOUT_SECONDS", 15),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as an integer or a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvSeconds returns an environment variable as a duration in seconds
func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}
