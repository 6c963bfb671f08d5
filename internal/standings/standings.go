// Package standings derives conference win/loss tables from game results.
package standings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fortuna/courtside/internal/nba"
)

// DefaultConference receives teams whose conference is missing or not
// recognised.
const DefaultConference = nba.West

// Row is one team's record. Rank is the row's 1-based position in its
// conference slice and is not stored.
type Row struct {
	Team       nba.Team
	Conference nba.Conference
	Wins       int
	Losses     int
	Pct        float64
}

// GamesBack is the number of games r trails leader by.
func (r Row) GamesBack(leader Row) float64 {
	return float64((leader.Wins-r.Wins)+(r.Losses-leader.Losses)) / 2
}

// Table is a season's standings split by conference, each sorted by rank.
type Table struct {
	Season int
	East   []Row
	West   []Row
}

// Conference returns the rows of one conference.
func (t *Table) Conference(c nba.Conference) []Row {
	if c == nba.East {
		return t.East
	}
	return t.West
}

// Find returns the row of a team and its 1-based rank.
func (t *Table) Find(teamID int) (Row, int, bool) {
	for _, rows := range [][]Row{t.East, t.West} {
		for i, r := range rows {
			if r.Team.ID == teamID {
				return r, i + 1, true
			}
		}
	}
	return Row{}, 0, false
}

// Entry is a row with its rank and games behind the conference leader.
type Entry struct {
	Row
	Rank      int
	GamesBack float64
}

// Entries flattens the table, East first, each conference in rank order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.East)+len(t.West))
	for _, rows := range [][]Row{t.East, t.West} {
		for i, r := range rows {
			out = append(out, Entry{Row: r, Rank: i + 1, GamesBack: r.GamesBack(rows[0])})
		}
	}
	return out
}

// FormatPct renders a win percentage the way standings print it: .667.
func FormatPct(pct float64) string {
	return strings.TrimPrefix(fmt.Sprintf("%.3f", pct), "0")
}

// FormatGamesBack renders games behind, with "-" for the leader.
func FormatGamesBack(gb float64) string {
	if gb == 0 {
		return "-"
	}
	return strconv.FormatFloat(gb, 'f', 1, 64)
}

// Compute tallies every played game into a record per team in teams and
// returns them ranked per conference. Unplayed games and ties are ignored.
// A played game naming a team outside teams fails the whole computation.
func Compute(games []nba.Game, teams []nba.Team) (*Table, error) {
	index := make(map[int]*Row, len(teams))
	order := make([]int, 0, len(teams))
	for _, t := range teams {
		if _, dup := index[t.ID]; dup {
			continue
		}
		conf, ok := nba.ParseConference(t.Conference)
		if !ok {
			conf = DefaultConference
		}
		index[t.ID] = &Row{Team: t, Conference: conf}
		order = append(order, t.ID)
	}

	for _, g := range games {
		if !g.Played() {
			continue
		}
		if g.HomeTeam.ID == g.VisitorTeam.ID {
			return nil, &nba.AggregationInputError{Kind: "game", ID: g.ID, TeamID: g.HomeTeam.ID, Reason: "home and visitor are the same team"}
		}
		home, visitor := index[g.HomeTeam.ID], index[g.VisitorTeam.ID]
		if home == nil {
			return nil, &nba.AggregationInputError{Kind: "game", ID: g.ID, TeamID: g.HomeTeam.ID}
		}
		if visitor == nil {
			return nil, &nba.AggregationInputError{Kind: "game", ID: g.ID, TeamID: g.VisitorTeam.ID}
		}

		winner, loser, ok := g.Winner()
		if !ok {
			continue
		}
		index[winner].Wins++
		index[loser].Losses++
	}

	table := &Table{}
	for _, id := range order {
		row := index[id]
		row.Pct = safeDiv(float64(row.Wins), float64(row.Wins+row.Losses))
		if row.Conference == nba.East {
			table.East = append(table.East, *row)
		} else {
			table.West = append(table.West, *row)
		}
	}
	rank(table.East)
	rank(table.West)
	return table, nil
}

// rank orders rows by win percentage, then wins, then team name.
func rank(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Pct != b.Pct {
			return a.Pct > b.Pct
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		an, bn := strings.ToLower(a.Team.DisplayName()), strings.ToLower(b.Team.DisplayName())
		if an != bn {
			return an < bn
		}
		return a.Team.ID < b.Team.ID
	})
}

// safeDiv performs division with zero check
func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
