// Package slack adapts the Slack Web API to the narrow surface the
// collector and report services consume.
package slack

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	slackapi "github.com/slack-go/slack"

	"wordle-score-bot/internal/model"
)

// historyPageLimit bounds a single conversations.history call. The daily
// window of one channel never comes close to this.
const historyPageLimit = 200

// Client wraps the Slack Web API client.
type Client struct {
	api *slackapi.Client
}

// NewClient creates a Slack client from a bot token.
func NewClient(token string) *Client {
	return &Client{api: slackapi.New(token)}
}

// FetchMessages retrieves channel history between oldest and latest.
// API failures are logged and degrade to an empty slice so that a job run
// completes gracefully instead of aborting.
func (c *Client) FetchMessages(ctx context.Context, channelID string, oldest, latest time.Time) []model.Message {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slackapi.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    epochString(oldest),
		Latest:    epochString(latest),
		Limit:     historyPageLimit,
	})
	if err != nil {
		log.Error().Err(err).Str("channel", channelID).Msg("Failed to fetch channel history")
		return nil
	}

	messages := make([]model.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		messages = append(messages, model.Message{
			AuthorID:  m.User,
			Text:      m.Text,
			Timestamp: m.Timestamp,
		})
	}

	log.Info().
		Int("count", len(messages)).
		Str("channel", channelID).
		Msg("Messages found in channel")

	return messages
}

// PostMessage publishes a message to a channel or conversation.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID, slackapi.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("failed to post message to %s: %w", channelID, err)
	}
	return nil
}

// ResolveDisplayName looks up the current display name for a user ID.
// Best-effort: callers decide how to degrade when this fails.
func (c *Client) ResolveDisplayName(ctx context.Context, userID string) (string, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve user %s: %w", userID, err)
	}
	if user.Profile.DisplayName != "" {
		return user.Profile.DisplayName, nil
	}
	return user.RealName, nil
}

// OpenDirectConversation opens (or resumes) a DM with the given user and
// returns its channel ID.
func (c *Client) OpenDirectConversation(ctx context.Context, userID string) (string, error) {
	channel, _, _, err := c.api.OpenConversationContext(ctx, &slackapi.OpenConversationParameters{
		Users:    []string{userID},
		ReturnIM: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to open conversation with %s: %w", userID, err)
	}
	return channel.ID, nil
}

// epochString renders a time as the whole-second epoch string the history
// API expects for its oldest/latest window bounds.
func epochString(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
