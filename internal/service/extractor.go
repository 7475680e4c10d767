// Package service provides business logic implementations.
package service

import (
	"regexp"

	"github.com/rs/zerolog/log"

	"wordle-score-bot/internal/model"
)

// Share formats as posted by the Wordle clients. The desktop client
// writes a plain puzzle number, the mobile client groups it with
// thousands separators. Attempts are a digit 1-6 or "X" for a failed
// puzzle.
var (
	desktopPattern = regexp.MustCompile(`Wordle \d+ ([1-6X])/\d+`)
	mobilePattern  = regexp.MustCompile(`Wordle \d+(?:,\d{3})* ([1-6X])/\d+`)
)

// Extractor parses raw channel messages into score events.
type Extractor struct{}

// NewExtractor creates a new Extractor instance.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns at most one score event per message. The desktop
// pattern is evaluated first; the mobile pattern only when it misses.
// Messages without a recognizable share are dropped silently: a chat
// channel is full of ordinary talk and that is not an error.
func (e *Extractor) Extract(messages []model.Message) []model.ScoreEvent {
	var events []model.ScoreEvent
	for _, msg := range messages {
		match := desktopPattern.FindStringSubmatch(msg.Text)
		if match == nil {
			match = mobilePattern.FindStringSubmatch(msg.Text)
		}
		if match == nil {
			continue
		}

		events = append(events, model.ScoreEvent{
			PlayerID:  msg.AuthorID,
			Score:     attemptsToScore(match[1]),
			Timestamp: msg.Timestamp,
		})
	}

	log.Info().
		Int("matches", len(events)).
		Int("messages", len(messages)).
		Msg("Wordle results extracted from batch")

	return events
}

// attemptsToScore maps the attempts token to a numeric score. The "X"
// failure marker counts as the fixed worst-case penalty.
func attemptsToScore(token string) int {
	if token == "X" {
		return model.FailureScore
	}
	return int(token[0] - '0')
}
