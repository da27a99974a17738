package rooms

import (
	"time"

	"github.com/soohoonc/jprty/internal/players"
)

type Status string

const (
	StatusWaiting  = Status("WAITING")
	StatusInGame   = Status("IN_GAME")
	StatusFinished = Status("FINISHED")
	StatusClosed   = Status("CLOSED")
)

// Config is per-room: timing windows are delivered with the room and may be
// tuned per game, they are not process-wide constants.
type Config struct {
	ReadingDelay   time.Duration // prompt shown before the buzzer opens
	BuzzWindow     time.Duration // how long claims are accepted
	ResponseWindow time.Duration // per-responder answer window
	RevealDelay    time.Duration // reveal shown before the next selection
	Retention      time.Duration // finished session kept for score queries
	MaxPlayers     int
	Rounds         int
	Difficulty     string
}

func DefaultConfig() Config {
	return Config{
		ReadingDelay:   3 * time.Second,
		BuzzWindow:     10 * time.Second,
		ResponseWindow: 15 * time.Second,
		RevealDelay:    5 * time.Second,
		Retention:      60 * time.Second,
		MaxPlayers:     8,
		Rounds:         1,
		Difficulty:     "MEDIUM",
	}
}

type Room struct {
	ID        string
	Code      string
	Status    Status
	Config    Config
	Players   *players.Store
	CreatedAt time.Time
}
