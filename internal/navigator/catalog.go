package navigator

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/nba"
	"github.com/fortuna/courtside/internal/pager"
	"github.com/fortuna/courtside/internal/schedule"
	"github.com/fortuna/courtside/internal/standings"
)

// EntityReader reads single teams and players. *balldontlie.Client
// satisfies it.
type EntityReader interface {
	Team(ctx context.Context, id int) (*nba.Team, error)
	Player(ctx context.Context, id int) (*nba.Player, error)
}

// Sources are the collaborators the standard views load through.
type Sources struct {
	Entities   EntityReader
	Pager      *pager.Pager
	Standings  *standings.Engine
	BoxScores  *boxscore.Loader
	DaysBefore int
	DaysAfter  int
	// Now defaults to time.Now; its location decides what "today" is.
	Now func() time.Time
}

// ScoresData is the Scores view: one day's games and the day picker.
type ScoresData struct {
	Date   string
	Season int
	Days   []string
	Games  []nba.Game
}

// PlayersData is the Players view.
type PlayersData struct {
	Search  string
	Players []nba.Player
}

// TeamDetailData is a team with its roster.
type TeamDetailData struct {
	Team   nba.Team
	Roster []nba.Player
}

// NewCatalog builds the descriptors of the six views.
func NewCatalog(src Sources) Catalog {
	if src.Now == nil {
		src.Now = time.Now
	}
	c := &catalog{src: src}
	return Catalog{
		Scores:       {Title: "Scores", Load: c.scores, Apply: c.scoresShown},
		Standings:    {Title: "Standings", Load: c.standings},
		Teams:        {Title: "Teams", Load: c.teams},
		Players:      {Title: "Players", Load: c.players},
		TeamDetail:   {Title: "Team", Load: c.teamDetail},
		PlayerDetail: {Title: "Player", Load: c.playerDetail},
	}
}

type catalog struct {
	src Sources

	mu         sync.Mutex
	scoresDate string
}

func (c *catalog) scores(ctx context.Context, p Params) (any, error) {
	now := c.src.Now()
	date := p.Date
	if date == "" {
		date = schedule.LocalISODate(now)
	}
	season, err := schedule.SeasonForISODate(date)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("dates[]", date)
	params.Set("seasons[]", strconv.Itoa(season))
	games, err := pager.FetchAll[nba.Game](ctx, c.src.Pager, "games", params)
	if err != nil {
		return nil, fmt.Errorf("loading games for %s: %w", date, err)
	}

	return &ScoresData{
		Date:   date,
		Season: season,
		Days:   schedule.Window(now, c.src.DaysBefore, c.src.DaysAfter),
		Games:  games,
	}, nil
}

// scoresShown ends the box score session when the day on screen changes.
func (c *catalog) scoresShown(_ Params, data any) {
	d, ok := data.(*ScoresData)
	if !ok {
		return
	}
	c.enterScoresDate(d.Date)
}

func (c *catalog) enterScoresDate(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scoresDate != date && c.src.BoxScores != nil {
		c.src.BoxScores.Reset()
	}
	c.scoresDate = date
}

func (c *catalog) standings(ctx context.Context, p Params) (any, error) {
	season := p.Season
	if season == 0 {
		season = schedule.SeasonForDate(c.src.Now())
	}
	return c.src.Standings.Load(ctx, season)
}

func (c *catalog) teams(ctx context.Context, _ Params) (any, error) {
	all, err := pager.FetchAll[nba.Team](ctx, c.src.Pager, "teams", nil)
	if err != nil {
		return nil, fmt.Errorf("loading teams: %w", err)
	}

	teams := make([]nba.Team, 0, len(all))
	for _, t := range all {
		if _, ok := nba.ParseConference(t.Conference); ok {
			teams = append(teams, t)
		}
	}
	sort.SliceStable(teams, func(i, j int) bool {
		return strings.ToLower(teams[i].DisplayName()) < strings.ToLower(teams[j].DisplayName())
	})
	return teams, nil
}

func (c *catalog) players(ctx context.Context, p Params) (any, error) {
	search := strings.TrimSpace(p.Search)
	var (
		players []nba.Player
		err     error
	)
	if search == "" {
		players, err = pager.FetchPage[nba.Player](ctx, c.src.Pager, "players", nil)
	} else {
		params := url.Values{}
		params.Set("search", search)
		players, err = pager.FetchAll[nba.Player](ctx, c.src.Pager, "players", params)
	}
	if err != nil {
		return nil, fmt.Errorf("loading players: %w", err)
	}
	return &PlayersData{Search: search, Players: players}, nil
}

func (c *catalog) teamDetail(ctx context.Context, p Params) (any, error) {
	team, err := c.src.Entities.Team(ctx, p.TeamID)
	if err != nil {
		return nil, fmt.Errorf("loading team %d: %w", p.TeamID, err)
	}

	params := url.Values{}
	params.Set("team_ids[]", strconv.Itoa(team.ID))
	roster, err := pager.FetchPage[nba.Player](ctx, c.src.Pager, "players", params)
	if err != nil {
		return nil, fmt.Errorf("loading roster of team %d: %w", team.ID, err)
	}
	return &TeamDetailData{Team: *team, Roster: roster}, nil
}

func (c *catalog) playerDetail(ctx context.Context, p Params) (any, error) {
	player, err := c.src.Entities.Player(ctx, p.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("loading player %d: %w", p.PlayerID, err)
	}
	return player, nil
}
