package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/nba"
	"github.com/fortuna/courtside/internal/navigator"
	"github.com/fortuna/courtside/internal/schedule"
	"github.com/fortuna/courtside/internal/standings"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272a4"))
)

// emit writes v as JSON or renders it as text, depending on --output.
func (a *app) emit(cmd *cobra.Command, v any, render func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if a.output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	render(out)
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func heading(w io.Writer, text string) {
	fmt.Fprintln(w, headingStyle.Render(text))
}

func scoreText(score *int) string {
	if score == nil {
		return "-"
	}
	return strconv.Itoa(*score)
}

func writeScores(w io.Writer, d *navigator.ScoresData, loc *time.Location) {
	heading(w, fmt.Sprintf("Games on %s (%s season)", d.Date, schedule.SeasonLabel(d.Season)))
	if len(d.Games) == 0 {
		fmt.Fprintln(w, "No games scheduled.")
		return
	}
	t := newTable("Game", "Visitor", "", "Home", "", "Status")
	for _, g := range d.Games {
		t.Row(strconv.Itoa(g.ID),
			g.VisitorTeam.DisplayName(), scoreText(g.VisitorScore),
			g.HomeTeam.DisplayName(), scoreText(g.HomeScore),
			g.StatusLabel(loc))
	}
	fmt.Fprintln(w, t.Render())
}

func writeStandings(w io.Writer, tbl *standings.Table) {
	heading(w, schedule.SeasonLabel(tbl.Season)+" regular season")
	for _, conf := range []nba.Conference{nba.East, nba.West} {
		rows := tbl.Conference(conf)
		fmt.Fprintln(w)
		heading(w, string(conf)+"ern Conference")
		t := newTable("#", "Team", "W", "L", "PCT", "GB")
		for i, r := range rows {
			t.Row(strconv.Itoa(i+1), r.Team.DisplayName(),
				strconv.Itoa(r.Wins), strconv.Itoa(r.Losses),
				standings.FormatPct(r.Pct), standings.FormatGamesBack(r.GamesBack(rows[0])))
		}
		fmt.Fprintln(w, t.Render())
	}
}

func writeTeams(w io.Writer, teams []nba.Team) {
	t := newTable("ID", "Abbr", "Team", "Conference", "Division")
	for _, team := range teams {
		t.Row(strconv.Itoa(team.ID), team.Abbreviation, team.DisplayName(), team.Conference, team.Division)
	}
	fmt.Fprintln(w, t.Render())
}

func writePlayers(w io.Writer, players []nba.Player) {
	if len(players) == 0 {
		fmt.Fprintln(w, "No players found.")
		return
	}
	t := newTable("ID", "Player", "Pos", "Team")
	for _, p := range players {
		team := ""
		if p.Team != nil {
			team = p.Team.Abbreviation
		}
		t.Row(strconv.Itoa(p.ID), p.FullName(), p.Position, team)
	}
	fmt.Fprintln(w, t.Render())
}

func writeTeamDetail(w io.Writer, d *navigator.TeamDetailData) {
	heading(w, d.Team.DisplayName())
	fmt.Fprintf(w, "%s Conference, %s Division\n\n", d.Team.Conference, d.Team.Division)
	writePlayers(w, d.Roster)
}

func writePlayer(w io.Writer, p *nba.Player) {
	heading(w, p.FullName())
	t := newTable("Field", "Value")
	add := func(label, value string) {
		if value != "" {
			t.Row(label, value)
		}
	}
	add("ID", strconv.Itoa(p.ID))
	if p.Team != nil {
		add("Team", p.Team.DisplayName())
	}
	add("Position", p.Position)
	add("Jersey", p.JerseyNumber)
	add("Height", p.HeightText())
	add("Weight", p.WeightText())
	add("College", p.College)
	add("Country", p.Country)
	if p.DraftYear != nil {
		add("Draft", strconv.Itoa(*p.DraftYear))
	}
	fmt.Fprintln(w, t.Render())
}

func writeBoxScore(w io.Writer, s *boxscore.Summary) {
	heading(w, fmt.Sprintf("%s %s @ %s %s (%s)",
		s.Visitor.Team.Abbreviation, scoreText(s.Visitor.Score),
		s.Home.Team.Abbreviation, scoreText(s.Home.Score), s.Game.Status))

	totals := newTable("Team", "PTS", "REB", "AST", "STL", "BLK", "TO", "FG", "3P", "FT")
	leaders := newTable("Team", "Player", "PTS", "REB", "AST")
	for _, tb := range []boxscore.TeamBox{s.Visitor, s.Home} {
		t := tb.Totals
		totals.Row(tb.Team.Abbreviation,
			strconv.Itoa(t.Points), strconv.Itoa(t.Rebounds), strconv.Itoa(t.Assists),
			strconv.Itoa(t.Steals), strconv.Itoa(t.Blocks), strconv.Itoa(t.Turnovers),
			shooting(t.FieldGoalsMade, t.FieldGoalsAttempted),
			shooting(t.ThreePointersMade, t.ThreePointersAttempted),
			shooting(t.FreeThrowsMade, t.FreeThrowsAttempted))
		for _, l := range tb.Leaders {
			leaders.Row(tb.Team.Abbreviation, l.PlayerName,
				strconv.Itoa(l.Points), strconv.Itoa(l.Rebounds), strconv.Itoa(l.Assists))
		}
	}
	fmt.Fprintln(w, totals.Render())
	fmt.Fprintln(w)
	heading(w, "Top scorers")
	fmt.Fprintln(w, leaders.Render())
}

func shooting(made, attempted int) string {
	return fmt.Sprintf("%d/%d", made, attempted)
}

func writeDays(w io.Writer, days []string, today string) {
	t := newTable("Day", "Season", "")
	for _, day := range days {
		season, _ := schedule.SeasonForISODate(day)
		marker := ""
		if day == today {
			marker = "today"
		}
		t.Row(day, schedule.SeasonLabel(season), marker)
	}
	fmt.Fprintln(w, strings.TrimRight(t.Render(), "\n"))
}
