// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"wordle-score-bot/internal/model"
)

// ScoreRepository handles score data persistence.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new ScoreRepository instance.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// Insert stores a score record if its key is absent. The composite
// primary key (player_id, week_of_year, day_of_week, year) makes the
// insert the concurrency guard: ON CONFLICT DO NOTHING turns a duplicate
// into a no-op without any external locking. Returns whether a row was
// actually written.
func (r *ScoreRepository) Insert(ctx context.Context, rec *model.ScoreRecord) (bool, error) {
	const query = `
		INSERT INTO scores (player_id, week_of_year, day_of_week, year, score)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id, week_of_year, day_of_week, year) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query,
		rec.PlayerID, rec.WeekOfYear, rec.DayOfWeek, rec.Year, rec.Score)
	if err != nil {
		return false, fmt.Errorf("failed to insert score: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetByWeek retrieves all score records for a week of a given year.
func (r *ScoreRepository) GetByWeek(ctx context.Context, week, year int) ([]*model.ScoreRecord, error) {
	const query = `
		SELECT player_id, week_of_year, day_of_week, year, score
		FROM scores
		WHERE week_of_year = $1 AND year = $2
		ORDER BY player_id, day_of_week
	`

	rows, err := r.pool.Query(ctx, query, week, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get scores for week: %w", err)
	}
	defer rows.Close()

	var records []*model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		err := rows.Scan(
			&rec.PlayerID,
			&rec.WeekOfYear,
			&rec.DayOfWeek,
			&rec.Year,
			&rec.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}

	return records, nil
}

// Exists checks whether a score with the given dedup key is already stored.
func (r *ScoreRepository) Exists(ctx context.Context, playerID string, week int, day string, year int) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM scores
			WHERE player_id = $1 AND week_of_year = $2 AND day_of_week = $3 AND year = $4
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, playerID, week, day, year).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check score existence: %w", err)
	}

	return exists, nil
}
