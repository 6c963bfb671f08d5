// Package schedule resolves NBA seasons from calendar dates and builds the
// day-picker window shown on the scores view.
package schedule

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fortuna/courtside/internal/nba"
)

const (
	DefaultDaysBefore = 2
	DefaultDaysAfter  = 2
)

// SeasonForDate returns the season t belongs to. Seasons start in October:
// October through December belong to that year's season, January through
// September to the previous year's.
func SeasonForDate(t time.Time) int {
	if t.Month() >= time.October {
		return t.Year()
	}
	return t.Year() - 1
}

// SeasonForISODate is SeasonForDate for a "YYYY-MM-DD" string.
func SeasonForISODate(day string) (int, error) {
	t, err := time.Parse(nba.DateLayout, day)
	if err != nil {
		return 0, fmt.Errorf("parsing date %q: %w", day, err)
	}
	return SeasonForDate(t), nil
}

// SeasonLabel formats a season the way it is usually printed: 2024 -> "2024-25".
func SeasonLabel(season int) string {
	return strconv.Itoa(season) + "-" + fmt.Sprintf("%02d", (season+1)%100)
}

// RecentSeasons returns the season containing now and the n-1 seasons
// before it, newest first.
func RecentSeasons(now time.Time, n int) []int {
	current := SeasonForDate(now)
	seasons := make([]int, 0, max(n, 0))
	for i := 0; i < n; i++ {
		seasons = append(seasons, current-i)
	}
	return seasons
}

// LocalISODate formats the calendar date of t in t's own location
// (callers pass local times), never converting to UTC first.
func LocalISODate(t time.Time) string {
	return t.Format(nba.DateLayout)
}

// ParseLocalISODate parses "YYYY-MM-DD" as midnight in loc.
func ParseLocalISODate(day string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(nba.DateLayout, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", day, err)
	}
	return t, nil
}

// SelectableWindow returns before+1+after consecutive calendar days centred
// on center, each at midnight in center's location.
func SelectableWindow(center time.Time, before, after int) []time.Time {
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}
	start := midnight(center).AddDate(0, 0, -before)
	end := midnight(center).AddDate(0, 0, after)
	return enumerateDates(start, end)
}

// Window is SelectableWindow rendered as ISO dates.
func Window(center time.Time, before, after int) []string {
	days := SelectableWindow(center, before, after)
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = LocalISODate(d)
	}
	return out
}

// Shift moves an ISO date by n days, interpreting it in loc.
func Shift(day string, n int, loc *time.Location) (string, error) {
	t, err := ParseLocalISODate(day, loc)
	if err != nil {
		return "", err
	}
	return LocalISODate(t.AddDate(0, 0, n)), nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// enumerateDates returns every calendar day from start to end inclusive.
func enumerateDates(start, end time.Time) []time.Time {
	if end.Before(start) {
		start, end = end, start
	}

	var dates []time.Time
	current := midnight(start)
	final := midnight(end)

	for !current.After(final) {
		dates = append(dates, current)
		current = current.AddDate(0, 0, 1)
	}

	return dates
}
