package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"wordle-score-bot/internal/model"
)

func TestExtract(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name      string
		text      string
		wantScore int
		wantMatch bool
	}{
		{"desktop share", "Wordle 932 4/6", 4, true},
		{"desktop failure marker", "Wordle 932 X/6", 7, true},
		{"mobile share with separator", "Wordle 1,024 3/6 blah", 3, true},
		{"desktop hard mode suffix", "Wordle 932 2/6*", 2, true},
		{"share embedded in chatter", "look at this! Wordle 932 5/6\n⬛⬛🟨⬛⬛", 5, true},
		{"no wordle here", "no wordle here", 0, false},
		{"plain talk about wordle", "I love Wordle", 0, false},
		{"single attempt", "Wordle 850 1/6", 1, true},
		{"six attempts", "Wordle 850 6/6", 6, true},
		{"mobile failure", "Wordle 1,024 X/6", 7, true},
		{"empty message", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := e.Extract([]model.Message{{AuthorID: "U123", Text: tt.text, Timestamp: "1700000000.000100"}})
			if !tt.wantMatch {
				assert.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			assert.Equal(t, tt.wantScore, events[0].Score)
			assert.Equal(t, "U123", events[0].PlayerID)
			assert.Equal(t, "1700000000.000100", events[0].Timestamp)
		})
	}
}

func TestExtract_AtMostOnePerMessage(t *testing.T) {
	e := NewExtractor()

	// Two shares in one message: first match wins.
	events := e.Extract([]model.Message{{
		AuthorID:  "U1",
		Text:      "Wordle 932 4/6 and later Wordle 933 2/6",
		Timestamp: "1700000000.000100",
	}})
	require.Len(t, events, 1)
	assert.Equal(t, 4, events[0].Score)
}

func TestExtract_Batch(t *testing.T) {
	e := NewExtractor()

	events := e.Extract([]model.Message{
		{AuthorID: "U1", Text: "Wordle 932 4/6", Timestamp: "1700000000.000100"},
		{AuthorID: "U2", Text: "good morning", Timestamp: "1700000100.000200"},
		{AuthorID: "U3", Text: "Wordle 932 X/6", Timestamp: "1700000200.000300"},
	})

	require.Len(t, events, 2)
	assert.Equal(t, "U1", events[0].PlayerID)
	assert.Equal(t, 4, events[0].Score)
	assert.Equal(t, "U3", events[1].PlayerID)
	assert.Equal(t, 7, events[1].Score)
}

// TestExtractProperty generates shares in both client formats and checks
// the attempts token always maps to the right score.
func TestExtractProperty(t *testing.T) {
	e := NewExtractor()

	rapid.Check(t, func(t *rapid.T) {
		attempts := rapid.SampledFrom([]string{"1", "2", "3", "4", "5", "6", "X"}).Draw(t, "attempts")
		mobile := rapid.Bool().Draw(t, "mobile")
		prefix := rapid.StringMatching(`[a-z ]{0,12}`).Draw(t, "prefix")
		suffix := rapid.SampledFrom([]string{"", "*", " nice one", ": grid below"}).Draw(t, "suffix")

		var puzzle string
		if mobile {
			puzzle = fmt.Sprintf("%d,%03d", rapid.IntRange(1, 9).Draw(t, "thousands"), rapid.IntRange(0, 999).Draw(t, "rest"))
		} else {
			puzzle = fmt.Sprintf("%d", rapid.IntRange(1, 9999).Draw(t, "number"))
		}

		text := fmt.Sprintf("%sWordle %s %s/6%s", prefix, puzzle, attempts, suffix)
		events := e.Extract([]model.Message{{AuthorID: "U1", Text: text, Timestamp: "1700000000.0001"}})

		if len(events) != 1 {
			t.Fatalf("expected one event for %q, got %d", text, len(events))
		}

		want := 7
		if attempts != "X" {
			want = int(attempts[0] - '0')
		}
		if events[0].Score != want {
			t.Fatalf("score for %q = %d, want %d", text, events[0].Score, want)
		}
	})
}
