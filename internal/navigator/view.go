package navigator

import "fmt"

// View identifies one screen of the application.
type View int

const (
	Scores View = iota
	Standings
	Teams
	Players
	TeamDetail
	PlayerDetail

	viewCount
)

var viewNames = [...]string{
	Scores:       "scores",
	Standings:    "standings",
	Teams:        "teams",
	Players:      "players",
	TeamDetail:   "team",
	PlayerDetail: "player",
}

func (v View) String() string {
	if v < 0 || v >= viewCount {
		return fmt.Sprintf("view(%d)", int(v))
	}
	return viewNames[v]
}

// IsDetail reports whether v focuses a single entity and keeps a way back to
// the view that opened it.
func (v View) IsDetail() bool {
	return v == TeamDetail || v == PlayerDetail
}

// Params are the inputs a view is loaded for. Only the fields relevant to
// the view are set, so two Params are equal exactly when they describe the
// same data.
type Params struct {
	Date     string // Scores, "YYYY-MM-DD"; empty means today
	Season   int    // Standings; 0 means the current season
	Search   string // Players
	TeamID   int    // TeamDetail
	PlayerID int    // PlayerDetail
}

// Intent is a named navigation request.
type Intent struct {
	View   View
	Params Params
}

func (i Intent) String() string {
	switch i.View {
	case Scores:
		return "open scores " + i.Params.Date
	case Standings:
		return fmt.Sprintf("open standings %d", i.Params.Season)
	case Players:
		return "open players " + i.Params.Search
	case TeamDetail:
		return fmt.Sprintf("open team %d", i.Params.TeamID)
	case PlayerDetail:
		return fmt.Sprintf("open player %d", i.Params.PlayerID)
	}
	return "open " + i.View.String()
}

func OpenScores(date string) Intent {
	return Intent{View: Scores, Params: Params{Date: date}}
}

func OpenStandings(season int) Intent {
	return Intent{View: Standings, Params: Params{Season: season}}
}

func OpenTeams() Intent {
	return Intent{View: Teams}
}

func OpenPlayers(search string) Intent {
	return Intent{View: Players, Params: Params{Search: search}}
}

func OpenTeam(id int) Intent {
	return Intent{View: TeamDetail, Params: Params{TeamID: id}}
}

func OpenPlayer(id int) Intent {
	return Intent{View: PlayerDetail, Params: Params{PlayerID: id}}
}

// Status is the load state of a view.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}
