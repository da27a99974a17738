package db

import (
	"context"
	"fmt"
)

type PlayerScore struct {
	PlayerID string
	Name     string
	Score    int
	Rank     int
}

// Recorder is the persistence surface the game core depends on. Session and
// round creation happen during game start and may block it; answer and score
// recording are fire-and-forget appends that must never stall the game.
type Recorder interface {
	CreateSession(ctx context.Context, roomID, roomCode string) (string, error)
	CreateRound(ctx context.Context, sessionID string, number int) (string, error)
	RecordAnswer(ctx context.Context, roundID, promptID, playerID, answer string, correct bool) error
	FinishSession(ctx context.Context, sessionID string, scores []PlayerScore) error
}

func (d *DB) CreateSession(ctx context.Context, roomID, roomCode string) (string, error) {
	var id string
	err := d.conn.QueryRowContext(ctx, `
		INSERT INTO game_sessions (room_id, room_code)
		VALUES ($1, $2)
		RETURNING id
	`, roomID, roomCode).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return id, nil
}

func (d *DB) CreateRound(ctx context.Context, sessionID string, number int) (string, error) {
	var id string
	err := d.conn.QueryRowContext(ctx, `
		INSERT INTO rounds (session_id, number)
		VALUES ($1, $2)
		RETURNING id
	`, sessionID, number).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("creating round %d: %w", number, err)
	}
	return id, nil
}

func (d *DB) RecordAnswer(ctx context.Context, roundID, promptID, playerID, answer string, correct bool) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO answer_events (round_id, prompt_id, player_id, answer, correct)
		VALUES ($1, $2, $3, $4, $5)
	`, roundID, promptID, playerID, answer, correct)
	if err != nil {
		return fmt.Errorf("recording answer: %w", err)
	}
	return nil
}

func (d *DB) FinishSession(ctx context.Context, sessionID string, scores []PlayerScore) error {
	_, err := d.conn.ExecContext(ctx, `
		UPDATE game_sessions SET ended_at = now() WHERE id = $1
	`, sessionID)
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	for _, s := range scores {
		_, err := d.conn.ExecContext(ctx, `
			INSERT INTO session_scores (session_id, player_id, name, final_score, rank)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (session_id, player_id) DO UPDATE SET final_score = $4, rank = $5
		`, sessionID, s.PlayerID, s.Name, s.Score, s.Rank)
		if err != nil {
			return fmt.Errorf("recording final score for %s: %w", s.PlayerID, err)
		}
	}
	return nil
}

// NopRecorder satisfies Recorder without a database. Running without
// persistence is supported; live game state never depends on it.
type NopRecorder struct{}

func (NopRecorder) CreateSession(context.Context, string, string) (string, error) {
	return "", nil
}

func (NopRecorder) CreateRound(context.Context, string, int) (string, error) {
	return "", nil
}

func (NopRecorder) RecordAnswer(context.Context, string, string, string, string, bool) error {
	return nil
}

func (NopRecorder) FinishSession(context.Context, string, []PlayerScore) error {
	return nil
}
