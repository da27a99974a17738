package config

import (
	"os"
	"strconv"
	"time"

	"github.com/soohoonc/jprty/internal/rooms"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Room timing defaults, milliseconds. Every room gets its own copy and
	// can be tuned per game.
	ReadingDelayMs   int
	BuzzWindowMs     int
	ResponseWindowMs int
	RevealDelayMs    int
	RetentionMs      int

	MaxPlayers int
	Rounds     int
	Difficulty string
}

func Load() Config {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ReadingDelayMs:   getEnvInt("READING_DELAY_MS", 3000),
		BuzzWindowMs:     getEnvInt("BUZZ_WINDOW_MS", 10000),
		ResponseWindowMs: getEnvInt("RESPONSE_WINDOW_MS", 15000),
		RevealDelayMs:    getEnvInt("REVEAL_DELAY_MS", 5000),
		RetentionMs:      getEnvInt("RETENTION_MS", 60000),
		MaxPlayers:       getEnvInt("MAX_PLAYERS", 8),
		Rounds:           getEnvInt("ROUNDS", 1),
		Difficulty:       getEnv("DIFFICULTY", "MEDIUM"),
	}
	return cfg
}

// RoomConfig converts the server settings into per-room defaults.
func (c Config) RoomConfig() rooms.Config {
	return rooms.Config{
		ReadingDelay:   time.Duration(c.ReadingDelayMs) * time.Millisecond,
		BuzzWindow:     time.Duration(c.BuzzWindowMs) * time.Millisecond,
		ResponseWindow: time.Duration(c.ResponseWindowMs) * time.Millisecond,
		RevealDelay:    time.Duration(c.RevealDelayMs) * time.Millisecond,
		Retention:      time.Duration(c.RetentionMs) * time.Millisecond,
		MaxPlayers:     c.MaxPlayers,
		Rounds:         c.Rounds,
		Difficulty:     c.Difficulty,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
