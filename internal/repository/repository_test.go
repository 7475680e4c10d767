// Package repository tests use testcontainers-go to spin up a PostgreSQL
// container and are skipped when Docker is unavailable.
package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"wordle-score-bot/internal/model"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a connection pool
// Skips the test if Docker is not available
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	err = runMigrations(ctx, pool)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// runMigrations applies the database schema
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scores (
			player_id VARCHAR(100) NOT NULL,
			week_of_year INT NOT NULL,
			day_of_week VARCHAR(10) NOT NULL,
			year INT NOT NULL,
			score INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (player_id, week_of_year, day_of_week, year)
		)
	`)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS players (
			slack_id VARCHAR(100) PRIMARY KEY,
			name VARCHAR(100) NOT NULL
		)
	`)
	return err
}

// ============================================================================
// ScoreRepository Tests
// ============================================================================

func TestScoreRepository_Insert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewScoreRepository(pool)
	ctx := context.Background()

	rec := &model.ScoreRecord{
		PlayerID:   "U123",
		WeekOfYear: 2,
		DayOfWeek:  "Monday",
		Year:       2024,
		Score:      4,
	}

	inserted, err := repo.Insert(ctx, rec)
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestScoreRepository_InsertDuplicateIsNoOp(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewScoreRepository(pool)
	ctx := context.Background()

	rec := &model.ScoreRecord{
		PlayerID:   "U123",
		WeekOfYear: 2,
		DayOfWeek:  "Monday",
		Year:       2024,
		Score:      4,
	}

	inserted, err := repo.Insert(ctx, rec)
	require.NoError(t, err)
	require.True(t, inserted)

	// Same dedup key, different score: the duplicate is silently dropped
	// and the stored score is unchanged.
	dup := *rec
	dup.Score = 6
	inserted, err = repo.Insert(ctx, &dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	records, err := repo.GetByWeek(ctx, 2, 2024)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].Score)
}

func TestScoreRepository_SameDayDifferentWeekInserts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewScoreRepository(pool)
	ctx := context.Background()

	for _, week := range []int{2, 3} {
		inserted, err := repo.Insert(ctx, &model.ScoreRecord{
			PlayerID:   "U123",
			WeekOfYear: week,
			DayOfWeek:  "Monday",
			Year:       2024,
			Score:      3,
		})
		require.NoError(t, err)
		assert.True(t, inserted)
	}
}

func TestScoreRepository_GetByWeek(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewScoreRepository(pool)
	ctx := context.Background()

	seed := []*model.ScoreRecord{
		{PlayerID: "U1", WeekOfYear: 2, DayOfWeek: "Monday", Year: 2024, Score: 3},
		{PlayerID: "U1", WeekOfYear: 2, DayOfWeek: "Tuesday", Year: 2024, Score: 5},
		{PlayerID: "U2", WeekOfYear: 2, DayOfWeek: "Monday", Year: 2024, Score: 2},
		{PlayerID: "U1", WeekOfYear: 3, DayOfWeek: "Monday", Year: 2024, Score: 1}, // other week
		{PlayerID: "U1", WeekOfYear: 2, DayOfWeek: "Monday", Year: 2023, Score: 6}, // other year
	}
	for _, rec := range seed {
		_, err := repo.Insert(ctx, rec)
		require.NoError(t, err)
	}

	records, err := repo.GetByWeek(ctx, 2, 2024)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	for _, rec := range records {
		assert.Equal(t, 2, rec.WeekOfYear)
		assert.Equal(t, 2024, rec.Year)
	}
}

func TestScoreRepository_Exists(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewScoreRepository(pool)
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "U1", 2, "Monday", 2024)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Insert(ctx, &model.ScoreRecord{
		PlayerID: "U1", WeekOfYear: 2, DayOfWeek: "Monday", Year: 2024, Score: 4,
	})
	require.NoError(t, err)

	exists, err = repo.Exists(ctx, "U1", 2, "Monday", 2024)
	require.NoError(t, err)
	assert.True(t, exists)
}

// ============================================================================
// PlayerRepository Tests
// ============================================================================

func TestPlayerRepository_SeedAndGetName(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	players := []model.Player{
		{SlackID: "U1", Name: "alice"},
		{SlackID: "U2", Name: "bob"},
	}

	inserted, err := repo.Seed(ctx, players)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	name, err := repo.GetName(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	_, err = repo.GetName(ctx, "U999")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPlayerRepository_SeedIsIdempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	players := []model.Player{{SlackID: "U1", Name: "alice"}}

	inserted, err := repo.Seed(ctx, players)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	// Re-seeding keeps the original name.
	players[0].Name = "renamed"
	inserted, err = repo.Seed(ctx, players)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	name, err := repo.GetName(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
}
