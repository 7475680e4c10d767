// Package model defines the data models for the Wordle score bot.
package model

// Message is a raw chat message pulled from the channel history.
type Message struct {
	AuthorID  string
	Text      string
	Timestamp string // fractional-seconds epoch string, e.g. "1704807000.123456"
}

// ScoreEvent is a parsed Wordle result extracted from a single message.
// Score is 1-6 for a solved puzzle, 7 for the "X" failure marker.
type ScoreEvent struct {
	PlayerID  string
	Score     int
	Timestamp string
}

// ScoreRecord is one persisted score. The composite key
// (player_id, week_of_year, day_of_week, year) allows exactly one score
// per player per calendar day; re-inserting the same key is a no-op.
type ScoreRecord struct {
	PlayerID   string `db:"player_id"`
	WeekOfYear int    `db:"week_of_year"`
	DayOfWeek  string `db:"day_of_week"`
	Year       int    `db:"year"`
	Score      int    `db:"score"`
}

// Player maps an external Slack user ID to a display name. The table is
// seeded once at startup and serves as a fallback when the Slack API
// cannot resolve a name.
type Player struct {
	SlackID string `db:"slack_id" json:"slackId"`
	Name    string `db:"name" json:"name"`
}

// Standing is one row of the weekly leaderboard after the missed-day
// penalty has been applied. Lower adjusted scores rank higher.
type Standing struct {
	PlayerID      string
	DisplayName   string
	TotalScore    int
	DaysPlayed    int
	AdjustedScore int
}

// Scoring constants. A failed puzzle and each missed weekday count as the
// worst possible score.
const (
	FailureScore    = 7
	WeekdaySessions = 5
)
