package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wordle-score-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrPlayerNotFound = errors.New("player not found")
)

// PlayerRepository handles the static player directory. The table is
// seeded once at startup and only consulted as a fallback when the chat
// platform cannot resolve a display name.
type PlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a new PlayerRepository instance.
func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

// Seed inserts the given players, skipping any Slack ID that already
// exists. Returns the number of newly inserted rows.
func (r *PlayerRepository) Seed(ctx context.Context, players []model.Player) (int, error) {
	const query = `
		INSERT INTO players (slack_id, name)
		VALUES ($1, $2)
		ON CONFLICT (slack_id) DO NOTHING
	`

	inserted := 0
	for _, p := range players {
		tag, err := r.pool.Exec(ctx, query, p.SlackID, p.Name)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed player %s: %w", p.SlackID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// GetName retrieves the seeded display name for a Slack ID.
// Returns ErrPlayerNotFound if the player is not in the directory.
func (r *PlayerRepository) GetName(ctx context.Context, slackID string) (string, error) {
	const query = `SELECT name FROM players WHERE slack_id = $1`

	var name string
	err := r.pool.QueryRow(ctx, query, slackID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrPlayerNotFound
		}
		return "", fmt.Errorf("failed to get player name: %w", err)
	}

	return name, nil
}
