package nba

import (
	"fmt"
	"strings"
	"time"
)

// Conference is one of the two top-level league partitions.
type Conference string

const (
	East Conference = "East"
	West Conference = "West"
)

// ParseConference maps an API conference value onto East or West.
// The second result is false when the value is not a recognised conference.
func ParseConference(raw string) (Conference, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "east", "eastern":
		return East, true
	case "west", "western":
		return West, true
	}
	return "", false
}

// Team represents an NBA franchise as returned by the stats API
type Team struct {
	ID           int    `json:"id"`
	Conference   string `json:"conference"`
	Division     string `json:"division"`
	City         string `json:"city"`
	Name         string `json:"name"`
	FullName     string `json:"full_name"`
	Abbreviation string `json:"abbreviation"`
}

// DisplayName prefers the full franchise name.
func (t Team) DisplayName() string {
	if t.FullName != "" {
		return t.FullName
	}
	if t.City != "" && t.Name != "" {
		return t.City + " " + t.Name
	}
	return t.Name
}

// Game represents one scheduled or completed game.
// HomeScore and VisitorScore are nil until the game has been played.
type Game struct {
	ID           int    `json:"id"`
	Date         string `json:"date"`
	Season       int    `json:"season"`
	Status       string `json:"status"`
	Period       int    `json:"period"`
	Time         string `json:"time"`
	Postseason   bool   `json:"postseason"`
	HomeTeam     Team   `json:"home_team"`
	VisitorTeam  Team   `json:"visitor_team"`
	HomeScore    *int   `json:"home_team_score"`
	VisitorScore *int   `json:"visitor_team_score"`
}

// Played reports whether both scores are present.
func (g Game) Played() bool {
	return g.HomeScore != nil && g.VisitorScore != nil
}

// Day returns the calendar date part of Date (YYYY-MM-DD).
func (g Game) Day() string {
	if len(g.Date) >= 10 {
		return g.Date[:10]
	}
	return g.Date
}

// Winner returns the winning and losing team ids of a played game.
// ok is false for unplayed games and ties.
func (g Game) Winner() (winner, loser int, ok bool) {
	if !g.Played() {
		return 0, 0, false
	}
	switch {
	case *g.HomeScore > *g.VisitorScore:
		return g.HomeTeam.ID, g.VisitorTeam.ID, true
	case *g.HomeScore < *g.VisitorScore:
		return g.VisitorTeam.ID, g.HomeTeam.ID, true
	}
	return 0, 0, false
}

// Player represents a player profile.
// Height/weight come in two shapes depending on the API revision.
type Player struct {
	ID           int    `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Position     string `json:"position"`
	Height       string `json:"height"`
	Weight       string `json:"weight"`
	HeightFeet   *int   `json:"height_feet"`
	HeightInches *int   `json:"height_inches"`
	WeightPounds *int   `json:"weight_pounds"`
	JerseyNumber string `json:"jersey_number"`
	College      string `json:"college"`
	Country      string `json:"country"`
	DraftYear    *int   `json:"draft_year"`
	DraftRound   *int   `json:"draft_round"`
	DraftNumber  *int   `json:"draft_number"`
	Team         *Team  `json:"team"`
}

// FullName joins first and last name.
func (p Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// HeightText prefers the "6-8" string and falls back to feet and inches.
func (p Player) HeightText() string {
	if p.Height != "" {
		return p.Height
	}
	if p.HeightFeet != nil && p.HeightInches != nil {
		return fmt.Sprintf("%d-%d", *p.HeightFeet, *p.HeightInches)
	}
	return ""
}

// WeightText returns the weight in pounds, if known.
func (p Player) WeightText() string {
	if p.Weight != "" {
		return p.Weight + " lb"
	}
	if p.WeightPounds != nil {
		return fmt.Sprintf("%d lb", *p.WeightPounds)
	}
	return ""
}

// GameRef is the abbreviated game object embedded in stat rows.
type GameRef struct {
	ID               int    `json:"id"`
	Date             string `json:"date"`
	Season           int    `json:"season"`
	HomeTeamID       int    `json:"home_team_id"`
	VisitorTeamID    int    `json:"visitor_team_id"`
	HomeTeamScore    int    `json:"home_team_score"`
	VisitorTeamScore int    `json:"visitor_team_score"`
}

// StatLine is one player's box score line for one game.
// Counted stats missing from the payload decode as zero.
type StatLine struct {
	ID                     int     `json:"id"`
	Minutes                string  `json:"min"`
	FieldGoalsMade         int     `json:"fgm"`
	FieldGoalsAttempted    int     `json:"fga"`
	ThreePointersMade      int     `json:"fg3m"`
	ThreePointersAttempted int     `json:"fg3a"`
	FreeThrowsMade         int     `json:"ftm"`
	FreeThrowsAttempted    int     `json:"fta"`
	OffensiveRebounds      int     `json:"oreb"`
	DefensiveRebounds      int     `json:"dreb"`
	Rebounds               int     `json:"reb"`
	Assists                int     `json:"ast"`
	Steals                 int     `json:"stl"`
	Blocks                 int     `json:"blk"`
	Turnovers              int     `json:"turnover"`
	PersonalFouls          int     `json:"pf"`
	Points                 int     `json:"pts"`
	Player                 Player  `json:"player"`
	Team                   Team    `json:"team"`
	Game                   GameRef `json:"game"`
}

// DateLayout is the API's calendar date format.
const DateLayout = "2006-01-02"

// StatusLabel returns the game status for display. Scheduled games carry
// their tip-off as an RFC3339 timestamp, which is shown as a clock time in loc.
func (g Game) StatusLabel(loc *time.Location) string {
	if t, err := time.Parse(time.RFC3339, g.Status); err == nil {
		return t.In(loc).Format("3:04 PM")
	}
	return g.Status
}
