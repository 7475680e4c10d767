// Package schedule computes trigger instants for recurring jobs and runs
// them at a fixed rate.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// weekdays maps the seven valid names to their time.Weekday values.
// Anything outside this set is a configuration error.
var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday validates a weekday name against the fixed seven-value set.
// Matching is case-insensitive.
func ParseWeekday(name string) (time.Weekday, error) {
	if d, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("invalid weekday name %q", name)
}

// NextDailyFire returns today at hour:00:00 in now's location if that
// instant is still in the future, otherwise the same time tomorrow.
func NextDailyFire(hour int, now time.Time) time.Time {
	fire := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if fire.After(now) {
		return fire
	}
	return fire.AddDate(0, 0, 1)
}

// NextWeeklyFire returns the next occurrence of day at hour:00:00 that is
// strictly after now. When now is already past the same-week occurrence the
// result is exactly one week forward, never more.
func NextWeeklyFire(hour int, day time.Weekday, now time.Time) time.Time {
	daysAhead := (int(day) - int(now.Weekday()) + 7) % 7
	fire := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	fire = fire.AddDate(0, 0, daysAhead)
	if fire.After(now) {
		return fire
	}
	return fire.AddDate(0, 0, 7)
}

// InitialDelay returns the time remaining until the next weekly fire,
// truncated to whole seconds.
func InitialDelay(hour int, day time.Weekday, now time.Time) time.Duration {
	d := NextWeeklyFire(hour, day, now).Sub(now).Truncate(time.Second)
	if d < 0 {
		return 0
	}
	return d
}
