package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"wordle-score-bot/internal/model"
)

// ChatClient is the chat platform surface the collector consumes.
// FetchMessages degrades to an empty slice on platform failures; the
// adapter logs them at the call site.
type ChatClient interface {
	FetchMessages(ctx context.Context, channelID string, oldest, latest time.Time) []model.Message
	PostMessage(ctx context.Context, channelID, text string) error
	ResolveDisplayName(ctx context.Context, userID string) (string, error)
	OpenDirectConversation(ctx context.Context, userID string) (string, error)
}

// CollectorService owns the two job bodies: the daily collection run and
// the weekly report run. Within a run the sequence is strictly
// fetch -> extract -> ingest -> (weekly) aggregate-and-publish.
type CollectorService struct {
	chat       ChatClient
	extractor  *Extractor
	scores     *ScoreService
	channel    string
	personalID string
	timezone   *time.Location
}

// NewCollectorService creates a new CollectorService instance.
func NewCollectorService(
	chat ChatClient,
	extractor *Extractor,
	scores *ScoreService,
	channel string,
	personalID string,
	timezone *time.Location,
) *CollectorService {
	if timezone == nil {
		timezone = time.Local
	}
	return &CollectorService{
		chat:       chat,
		extractor:  extractor,
		scores:     scores,
		channel:    channel,
		personalID: personalID,
		timezone:   timezone,
	}
}

// RunDailyCollection ingests yesterday's channel messages and confirms
// the run over DM. An empty fetch window still confirms: the absence of
// results is itself worth knowing.
func (s *CollectorService) RunDailyCollection(ctx context.Context) error {
	now := time.Now().In(s.timezone)
	yesterday := now.AddDate(0, 0, -1)
	oldest := startOfDay(yesterday)
	latest := endOfDay(yesterday)

	if err := s.collect(ctx, oldest, latest); err != nil {
		return err
	}

	s.confirmCollection(ctx)
	return nil
}

// RunWeeklyReport ingests today's messages so the report includes
// results posted since the last daily run, then publishes the
// leaderboard to the channel.
func (s *CollectorService) RunWeeklyReport(ctx context.Context) error {
	now := time.Now().In(s.timezone)

	if err := s.collect(ctx, startOfDay(now), now); err != nil {
		return err
	}

	report, err := s.scores.CalculateWeeklyReport(ctx)
	if err != nil {
		return err
	}

	if err := s.chat.PostMessage(ctx, s.channel, report); err != nil {
		return fmt.Errorf("failed to publish weekly report: %w", err)
	}

	log.Info().Str("channel", s.channel).Msg("Weekly report published")
	return nil
}

// collect fetches one window and ingests whatever parses.
func (s *CollectorService) collect(ctx context.Context, oldest, latest time.Time) error {
	messages := s.chat.FetchMessages(ctx, s.channel, oldest, latest)
	if len(messages) == 0 {
		log.Info().
			Time("oldest", oldest).
			Time("latest", latest).
			Msg("No messages in fetch window")
		return nil
	}

	events := s.extractor.Extract(messages)
	return s.scores.InsertScoreData(ctx, events)
}

// confirmCollection DMs the configured personal account. Failures are
// logged only; a missing confirmation must not fail the collection run.
func (s *CollectorService) confirmCollection(ctx context.Context) {
	if s.personalID == "" {
		return
	}

	dm, err := s.chat.OpenDirectConversation(ctx, s.personalID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open confirmation DM")
		return
	}
	if err := s.chat.PostMessage(ctx, dm, "Daily Wordle results collected!"); err != nil {
		log.Error().Err(err).Msg("Failed to send collection confirmation")
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
