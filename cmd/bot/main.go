// Package main is the entry point for the Wordle score bot.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordle-score-bot/internal/config"
	"wordle-score-bot/internal/model"
	"wordle-score-bot/internal/pkg/db"
	"wordle-score-bot/internal/repository"
	"wordle-score-bot/internal/schedule"
	"wordle-score-bot/internal/service"
	"wordle-score-bot/internal/slack"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	scoreRepo := repository.NewScoreRepository(dbPool.Pool)
	playerRepo := repository.NewPlayerRepository(dbPool.Pool)

	// Seed the player directory
	if err := seedPlayers(ctx, playerRepo, cfg.Players.SeedFile); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed player directory")
	}

	// Initialize Slack client and services
	chatClient := slack.NewClient(cfg.Slack.Token)
	scoreService := service.NewScoreService(scoreRepo, playerRepo, chatClient, time.Local)
	collector := service.NewCollectorService(
		chatClient,
		service.NewExtractor(),
		scoreService,
		cfg.Slack.Channel,
		cfg.Slack.PersonalID,
		time.Local,
	)

	// Register the two recurring jobs
	reportDay, err := cfg.Schedule.WeeklyReportWeekday()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid weekly report weekday")
	}

	now := time.Now()
	sched := schedule.NewScheduler()

	dailyFire := schedule.NextDailyFire(cfg.Schedule.DailyFetchHour, now)
	if err := sched.Add("daily-collect", dailyFire, 24*time.Hour, collector.RunDailyCollection); err != nil {
		log.Fatal().Err(err).Msg("Failed to register daily job")
	}
	log.Info().
		Int("hour", cfg.Schedule.DailyFetchHour).
		Time("first_fire", dailyFire).
		Msg("Daily collection scheduled")

	weeklyFire := schedule.NextWeeklyFire(cfg.Schedule.WeeklyReportHour, reportDay, now)
	if err := sched.Add("weekly-report", weeklyFire, 7*24*time.Hour, collector.RunWeeklyReport); err != nil {
		log.Fatal().Err(err).Msg("Failed to register weekly job")
	}
	log.Info().
		Str("day", reportDay.String()).
		Int("hour", cfg.Schedule.WeeklyReportHour).
		Dur("initial_delay", schedule.InitialDelay(cfg.Schedule.WeeklyReportHour, reportDay, now)).
		Msg("Weekly report scheduled")

	sched.Start(ctx)
	log.Info().Msg("Bot is running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown: stop future firings, let an in-flight run finish
	sched.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create scores table. The composite primary key is the
	// dedup key guarding against duplicate ingestion.
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scores (
			player_id VARCHAR(100) NOT NULL,
			week_of_year INT NOT NULL,
			day_of_week VARCHAR(10) NOT NULL,
			year INT NOT NULL,
			score INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (player_id, week_of_year, day_of_week, year)
		);
		CREATE INDEX IF NOT EXISTS idx_scores_week_year ON scores(week_of_year, year);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: scores table created")

	// Migration 2: Create players table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS players (
			slack_id VARCHAR(100) PRIMARY KEY,
			name VARCHAR(100) NOT NULL
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: players table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}

// seedPlayers loads the static player directory from a JSON file and
// inserts any players not already present. A missing seed file is fine;
// the directory is only a fallback for display name resolution.
func seedPlayers(ctx context.Context, repo *repository.PlayerRepository, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("file", path).Msg("No player seed file found, skipping")
			return nil
		}
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var players []model.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	inserted, err := repo.Seed(ctx, players)
	if err != nil {
		return err
	}

	log.Info().
		Int("seeded", inserted).
		Int("total", len(players)).
		Msg("Player directory seeded")
	return nil
}
