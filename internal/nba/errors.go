package nba

import "fmt"

// AggregationInputError reports a game or stat line that cannot be
// aggregated against the reference data it was given, typically because it
// references a team missing from that data.
type AggregationInputError struct {
	Kind   string // "game" or "stat line"
	ID     int
	TeamID int
	Reason string
}

func (e *AggregationInputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %d: %s", e.Kind, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s %d references unknown team %d", e.Kind, e.ID, e.TeamID)
}
