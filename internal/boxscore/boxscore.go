// Package boxscore summarises one game's player stat lines into team totals
// and scoring leaders.
package boxscore

import (
	"sort"

	"github.com/fortuna/courtside/internal/nba"
)

// DefaultTopN is the leaderboard length used when none is given.
const DefaultTopN = 3

// Totals sums counted stats over a team's lines.
type Totals struct {
	Points                 int `json:"points"`
	Rebounds               int `json:"rebounds"`
	Assists                int `json:"assists"`
	Steals                 int `json:"steals"`
	Blocks                 int `json:"blocks"`
	Turnovers              int `json:"turnovers"`
	FieldGoalsMade         int `json:"fgm"`
	FieldGoalsAttempted    int `json:"fga"`
	ThreePointersMade      int `json:"fg3m"`
	ThreePointersAttempted int `json:"fg3a"`
	FreeThrowsMade         int `json:"ftm"`
	FreeThrowsAttempted    int `json:"fta"`
}

func (t Totals) FieldGoalPct() float64 {
	return safeDiv(float64(t.FieldGoalsMade), float64(t.FieldGoalsAttempted))
}

func (t Totals) ThreePointPct() float64 {
	return safeDiv(float64(t.ThreePointersMade), float64(t.ThreePointersAttempted))
}

func (t Totals) FreeThrowPct() float64 {
	return safeDiv(float64(t.FreeThrowsMade), float64(t.FreeThrowsAttempted))
}

// Leader is one entry of a scoring leaderboard.
type Leader struct {
	PlayerID   int    `json:"player_id"`
	PlayerName string `json:"player_name"`
	Points     int    `json:"points"`
	Rebounds   int    `json:"rebounds"`
	Assists    int    `json:"assists"`
}

// TeamTotals sums the lines belonging to teamID.
func TeamTotals(lines []nba.StatLine, teamID int) Totals {
	var t Totals
	for _, l := range lines {
		if l.Team.ID != teamID {
			continue
		}
		t.Points += l.Points
		t.Rebounds += l.Rebounds
		t.Assists += l.Assists
		t.Steals += l.Steals
		t.Blocks += l.Blocks
		t.Turnovers += l.Turnovers
		t.FieldGoalsMade += l.FieldGoalsMade
		t.FieldGoalsAttempted += l.FieldGoalsAttempted
		t.ThreePointersMade += l.ThreePointersMade
		t.ThreePointersAttempted += l.ThreePointersAttempted
		t.FreeThrowsMade += l.FreeThrowsMade
		t.FreeThrowsAttempted += l.FreeThrowsAttempted
	}
	return t
}

// TopScorers returns teamID's n highest scorers. Equal scores keep their
// input order. n <= 0 means DefaultTopN.
func TopScorers(lines []nba.StatLine, teamID, n int) []Leader {
	if n <= 0 {
		n = DefaultTopN
	}

	leaders := make([]Leader, 0)
	for _, l := range lines {
		if l.Team.ID != teamID {
			continue
		}
		leaders = append(leaders, Leader{
			PlayerID:   l.Player.ID,
			PlayerName: l.Player.FullName(),
			Points:     l.Points,
			Rebounds:   l.Rebounds,
			Assists:    l.Assists,
		})
	}

	sort.SliceStable(leaders, func(i, j int) bool {
		return leaders[i].Points > leaders[j].Points
	})
	if len(leaders) > n {
		leaders = leaders[:n]
	}
	return leaders
}

// TeamBox is one side of a summarised game.
type TeamBox struct {
	Team    nba.Team       `json:"team"`
	Score   *int           `json:"score"`
	Totals  Totals         `json:"totals"`
	Leaders []Leader       `json:"leaders"`
	Lines   []nba.StatLine `json:"-"`
}

// Summary is the box score of one game.
type Summary struct {
	Game    nba.Game `json:"game"`
	Home    TeamBox  `json:"home"`
	Visitor TeamBox  `json:"visitor"`
}

// Summarize splits lines between the game's two teams and computes each
// side's totals and top n scorers. A line for any other team is an
// *nba.AggregationInputError.
func Summarize(game nba.Game, lines []nba.StatLine, n int) (*Summary, error) {
	home := TeamBox{Team: game.HomeTeam, Score: game.HomeScore}
	visitor := TeamBox{Team: game.VisitorTeam, Score: game.VisitorScore}

	for _, l := range lines {
		switch l.Team.ID {
		case game.HomeTeam.ID:
			home.Lines = append(home.Lines, l)
		case game.VisitorTeam.ID:
			visitor.Lines = append(visitor.Lines, l)
		default:
			return nil, &nba.AggregationInputError{Kind: "stat line", ID: l.ID, TeamID: l.Team.ID}
		}
	}

	home.Totals = TeamTotals(home.Lines, game.HomeTeam.ID)
	home.Leaders = TopScorers(home.Lines, game.HomeTeam.ID, n)
	visitor.Totals = TeamTotals(visitor.Lines, game.VisitorTeam.ID)
	visitor.Leaders = TopScorers(visitor.Lines, game.VisitorTeam.ID, n)

	return &Summary{Game: game, Home: home, Visitor: visitor}, nil
}

// safeDiv performs division with zero check
func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
