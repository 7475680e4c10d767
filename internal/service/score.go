package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"wordle-score-bot/internal/model"
)

// ScoreStore is the persistence surface the score service needs. The
// Insert contract is compare-and-insert: a duplicate dedup key is a
// no-op reported through the returned bool, never an error.
type ScoreStore interface {
	Insert(ctx context.Context, rec *model.ScoreRecord) (bool, error)
	GetByWeek(ctx context.Context, week, year int) ([]*model.ScoreRecord, error)
}

// NameDirectory is the seeded fallback for display names.
type NameDirectory interface {
	GetName(ctx context.Context, slackID string) (string, error)
}

// NameResolver resolves current display names through the chat platform.
type NameResolver interface {
	ResolveDisplayName(ctx context.Context, userID string) (string, error)
}

// ScoreService ingests score events and builds the weekly report.
type ScoreService struct {
	scores   ScoreStore
	players  NameDirectory
	resolver NameResolver
	timezone *time.Location
}

// NewScoreService creates a new ScoreService instance.
func NewScoreService(
	scores ScoreStore,
	players NameDirectory,
	resolver NameResolver,
	timezone *time.Location,
) *ScoreService {
	if timezone == nil {
		timezone = time.Local
	}
	return &ScoreService{
		scores:   scores,
		players:  players,
		resolver: resolver,
		timezone: timezone,
	}
}

// InsertScoreData persists a batch of score events, one record per
// (player, week, year, weekday). Weekend events are discarded by policy
// and duplicate keys are logged no-ops, which makes re-ingestion of an
// overlapping fetch window safe.
func (s *ScoreService) InsertScoreData(ctx context.Context, events []model.ScoreEvent) error {
	for _, ev := range events {
		ts, err := ParseSlackTimestamp(ev.Timestamp)
		if err != nil {
			log.Error().Err(err).Str("player", ev.PlayerID).Msg("Skipping event with bad timestamp")
			continue
		}

		local := ts.In(s.timezone)
		year, week := local.ISOWeek()
		day := local.Weekday()

		if day == time.Saturday || day == time.Sunday {
			log.Info().
				Str("player", ev.PlayerID).
				Str("day", day.String()).
				Msg("Weekend result discarded")
			continue
		}

		rec := &model.ScoreRecord{
			PlayerID:   ev.PlayerID,
			WeekOfYear: week,
			DayOfWeek:  day.String(),
			Year:       year,
			Score:      ev.Score,
		}

		inserted, err := s.scores.Insert(ctx, rec)
		if err != nil {
			return fmt.Errorf("failed to insert score data: %w", err)
		}
		if !inserted {
			log.Info().
				Str("player", ev.PlayerID).
				Int("week", week).
				Str("day", rec.DayOfWeek).
				Msg("Score already recorded, skipping")
			continue
		}

		log.Info().
			Str("player", ev.PlayerID).
			Int("week", week).
			Str("day", rec.DayOfWeek).
			Int("score", ev.Score).
			Msg("Score recorded")
	}

	return nil
}

// CalculateWeeklyReport builds the leaderboard for the current ISO week.
// Each player's total is adjusted as if every missed weekday had been a
// failed puzzle, so uneven participation ranks on a five-day baseline.
func (s *ScoreService) CalculateWeeklyReport(ctx context.Context) (string, error) {
	now := time.Now().In(s.timezone)
	year, week := now.ISOWeek()

	records, err := s.scores.GetByWeek(ctx, week, year)
	if err != nil {
		return "", fmt.Errorf("failed to load scores for week %d: %w", week, err)
	}

	standings := BuildStandings(records)
	for i := range standings {
		standings[i].DisplayName = s.displayName(ctx, standings[i].PlayerID)
	}

	return RenderReport(week, standings), nil
}

// BuildStandings groups score records by player, sums them, applies the
// missed-day penalty and sorts ascending (lower is better). Ties break
// on player ID so report output is deterministic.
func BuildStandings(records []*model.ScoreRecord) []model.Standing {
	totals := make(map[string]*model.Standing)
	for _, rec := range records {
		st, ok := totals[rec.PlayerID]
		if !ok {
			st = &model.Standing{PlayerID: rec.PlayerID}
			totals[rec.PlayerID] = st
		}
		st.TotalScore += rec.Score
		st.DaysPlayed++
	}

	standings := make([]model.Standing, 0, len(totals))
	for _, st := range totals {
		st.AdjustedScore = st.TotalScore + (model.WeekdaySessions-st.DaysPlayed)*model.FailureScore
		standings = append(standings, *st)
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].AdjustedScore != standings[j].AdjustedScore {
			return standings[i].AdjustedScore < standings[j].AdjustedScore
		}
		return standings[i].PlayerID < standings[j].PlayerID
	})

	return standings
}

// RenderReport formats the standings as a numbered list titled with the
// week number.
func RenderReport(week int, standings []model.Standing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Wordle Results Week %d", week)
	for i, st := range standings {
		fmt.Fprintf(&b, "\n%d. %s: %d", i+1, st.DisplayName, st.AdjustedScore)
	}
	return b.String()
}

// displayName resolves a player's name through the chat platform first so
// renames show up immediately, falls back to the seeded directory, and
// degrades to an empty string rather than failing the whole report.
func (s *ScoreService) displayName(ctx context.Context, playerID string) string {
	if s.resolver != nil {
		name, err := s.resolver.ResolveDisplayName(ctx, playerID)
		if err == nil && name != "" {
			return name
		}
		if err != nil {
			log.Warn().Err(err).Str("player", playerID).Msg("Display name resolution failed")
		}
	}

	if s.players != nil {
		name, err := s.players.GetName(ctx, playerID)
		if err == nil {
			return name
		}
		log.Warn().Err(err).Str("player", playerID).Msg("Player not in seeded directory")
	}

	return ""
}

// ParseSlackTimestamp converts a fractional-seconds epoch string like
// "1704807000.123456" into a time.Time. The fractional part may be
// absent; longer fractions are truncated to nanoseconds.
func ParseSlackTimestamp(ts string) (time.Time, error) {
	secPart, fracPart, _ := strings.Cut(ts, ".")

	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}

	var nanos int64
	if fracPart != "" {
		if len(fracPart) > 9 {
			fracPart = fracPart[:9]
		}
		for len(fracPart) < 9 {
			fracPart += "0"
		}
		nanos, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", ts, err)
		}
	}

	return time.Unix(sec, nanos), nil
}
