package standings

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/fortuna/courtside/internal/nba"
	"github.com/fortuna/courtside/internal/pager"
)

// Engine loads a season's games and teams and computes its standings.
type Engine struct {
	pager  *pager.Pager
	logger *slog.Logger
}

func NewEngine(p *pager.Pager, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{pager: p, logger: logger.With("component", "standings")}
}

// Load fetches every regular-season game of season and ranks the teams.
// Any retrieval error aborts the load; no partial table is returned.
func (e *Engine) Load(ctx context.Context, season int) (*Table, error) {
	teams, err := pager.FetchAll[nba.Team](ctx, e.pager, "teams", nil)
	if err != nil {
		return nil, fmt.Errorf("loading teams: %w", err)
	}

	params := url.Values{}
	params.Set("seasons[]", strconv.Itoa(season))
	params.Set("postseason", "false")
	games, err := pager.FetchAll[nba.Game](ctx, e.pager, "games", params)
	if err != nil {
		return nil, fmt.Errorf("loading %d games: %w", season, err)
	}

	table, err := Compute(games, activeTeams(teams, games))
	if err != nil {
		return nil, fmt.Errorf("computing %d standings: %w", season, err)
	}
	table.Season = season

	e.logger.Info("standings computed",
		"season", season,
		"games", len(games),
		"east", len(table.East),
		"west", len(table.West),
	)
	return table, nil
}

// activeTeams drops defunct franchises the teams endpoint also lists: a team
// without a recognised conference is kept only when it played this season.
func activeTeams(teams []nba.Team, games []nba.Game) []nba.Team {
	playing := make(map[int]bool)
	for _, g := range games {
		playing[g.HomeTeam.ID] = true
		playing[g.VisitorTeam.ID] = true
	}

	out := make([]nba.Team, 0, len(teams))
	for _, t := range teams {
		if _, ok := nba.ParseConference(t.Conference); ok || playing[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
