package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/nba"
	"github.com/fortuna/courtside/internal/navigator"
	"github.com/fortuna/courtside/internal/schedule"
	"github.com/fortuna/courtside/internal/standings"
)

var topLevel = []navigator.View{navigator.Scores, navigator.Standings, navigator.Teams, navigator.Players}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderBody())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := []string{titleStyle.Render("courtside")}
	for i, v := range topLevel {
		label := fmt.Sprintf("%d %s", i+1, m.nav.Title(v))
		if v == m.snap.Active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	if m.snap.Active.IsDetail() {
		tabs = append(tabs, activeTabStyle.Render(m.nav.Title(m.snap.Active)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderBody() string {
	var parts []string
	if m.snap.Data != nil {
		parts = append(parts, m.renderData())
	}
	switch m.snap.Status {
	case navigator.Loading:
		label := "Loading..."
		if m.snap.Data != nil {
			label = "Refreshing..."
		}
		parts = append(parts, m.spinner.View()+" "+label)
	case navigator.Failed:
		parts = append(parts, errorStyle.Render(m.snap.Message))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderData() string {
	loc := m.now().Location()
	switch data := m.snap.Data.(type) {
	case *navigator.ScoresData:
		out := renderScores(data, m.cursor, loc)
		if m.boxOpen() {
			out += "\n\n" + m.renderBoxPanel()
		}
		return out
	case *standings.Table:
		return renderStandings(data, m.cursor)
	case []nba.Team:
		return renderTeams(data, m.cursor)
	case *navigator.PlayersData:
		return renderPlayers(data, m.cursor)
	case *navigator.TeamDetailData:
		return renderTeamDetail(data, m.cursor)
	case *nba.Player:
		return renderPlayer(data)
	}
	return ""
}

func (m Model) renderBoxPanel() string {
	switch {
	case m.boxLoading:
		return boxStyle.Render(m.spinner.View() + " Loading box score...")
	case m.boxErr != "":
		return boxStyle.Render(errorStyle.Render(m.boxErr))
	case m.box != nil:
		return boxStyle.Render(renderBoxScore(m.box))
	}
	return ""
}

func (m Model) help() string {
	keys := []string{"1-4 views"}
	switch m.snap.Active {
	case navigator.Scores:
		keys = append(keys, "←/→ day", "↑/↓ select", "enter box score")
	case navigator.Standings:
		keys = append(keys, "←/→ season", "↑/↓ select", "enter team")
	case navigator.Teams:
		keys = append(keys, "↑/↓ select", "enter team")
	case navigator.Players:
		keys = append(keys, "/ search", "↑/↓ select", "enter player")
	case navigator.TeamDetail:
		keys = append(keys, "↑/↓ select", "enter player")
	case navigator.PlayerDetail:
		keys = append(keys, "enter team")
	}
	keys = append(keys, "esc back", "r refresh", "q quit")
	return strings.Join(keys, " • ")
}

func row(selected bool, text string) string {
	if selected {
		return selectedStyle.Render("> " + text)
	}
	return rowStyle.Render("  " + text)
}

func scoreText(score *int) string {
	if score == nil {
		return "-"
	}
	return strconv.Itoa(*score)
}

func renderScores(d *navigator.ScoresData, cursor int, loc *time.Location) string {
	var days []string
	for _, day := range d.Days {
		label := day
		if len(day) == len(nba.DateLayout) {
			label = day[5:]
		}
		if day == d.Date {
			days = append(days, activeDayStyle.Render(label))
		} else {
			days = append(days, dayStyle.Render(label))
		}
	}

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, days...),
		"",
		headingStyle.Render(fmt.Sprintf("Games on %s (%s season)", d.Date, schedule.SeasonLabel(d.Season))),
	}
	if len(d.Games) == 0 {
		lines = append(lines, helpStyle.Render("No games scheduled."))
	}
	for i, g := range d.Games {
		text := fmt.Sprintf("%-4s %4s  @  %-4s %4s   %s",
			g.VisitorTeam.Abbreviation, scoreText(g.VisitorScore),
			g.HomeTeam.Abbreviation, scoreText(g.HomeScore),
			g.StatusLabel(loc))
		lines = append(lines, row(i == cursor, text))
	}
	return strings.Join(lines, "\n")
}

func renderBoxScore(s *boxscore.Summary) string {
	lines := []string{
		headingStyle.Render(fmt.Sprintf("%s %s @ %s %s",
			s.Visitor.Team.Abbreviation, scoreText(s.Visitor.Score),
			s.Home.Team.Abbreviation, scoreText(s.Home.Score))),
	}
	for _, tb := range []boxscore.TeamBox{s.Visitor, s.Home} {
		t := tb.Totals
		lines = append(lines,
			"",
			headingStyle.Render(tb.Team.DisplayName()),
			fmt.Sprintf("PTS %d  REB %d  AST %d  STL %d  BLK %d  TO %d",
				t.Points, t.Rebounds, t.Assists, t.Steals, t.Blocks, t.Turnovers),
			fmt.Sprintf("FG %d/%d (%s)  3P %d/%d (%s)  FT %d/%d (%s)",
				t.FieldGoalsMade, t.FieldGoalsAttempted, percent(t.FieldGoalPct()),
				t.ThreePointersMade, t.ThreePointersAttempted, percent(t.ThreePointPct()),
				t.FreeThrowsMade, t.FreeThrowsAttempted, percent(t.FreeThrowPct())),
		)
		if len(tb.Leaders) == 0 {
			lines = append(lines, helpStyle.Render("No player stats yet."))
			continue
		}
		lines = append(lines, "Top scorers:")
		for _, l := range tb.Leaders {
			lines = append(lines, fmt.Sprintf("  %-24s %3d pts %3d reb %3d ast", l.PlayerName, l.Points, l.Rebounds, l.Assists))
		}
	}
	return strings.Join(lines, "\n")
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

func renderStandings(t *standings.Table, cursor int) string {
	lines := []string{headingStyle.Render(schedule.SeasonLabel(t.Season) + " regular season")}
	entries := t.Entries()
	var conf nba.Conference
	for i, e := range entries {
		if e.Conference != conf || i == 0 {
			conf = e.Conference
			lines = append(lines, "", headingStyle.Render(string(conf)+"ern Conference"),
				helpStyle.Render(fmt.Sprintf("  %-3s %-28s %3s %3s %5s %5s", "#", "Team", "W", "L", "PCT", "GB")))
		}
		text := fmt.Sprintf("%-3d %-28s %3d %3d %5s %5s",
			e.Rank, e.Team.DisplayName(), e.Wins, e.Losses, standings.FormatPct(e.Pct), standings.FormatGamesBack(e.GamesBack))
		lines = append(lines, row(i == cursor, text))
	}
	if len(entries) == 0 {
		lines = append(lines, helpStyle.Render("No teams."))
	}
	return strings.Join(lines, "\n")
}

func renderTeams(teams []nba.Team, cursor int) string {
	lines := []string{headingStyle.Render("Teams")}
	for i, t := range teams {
		text := fmt.Sprintf("%-4s %-28s %s / %s", t.Abbreviation, t.DisplayName(), t.Conference, t.Division)
		lines = append(lines, row(i == cursor, text))
	}
	return strings.Join(lines, "\n")
}

func renderPlayers(d *navigator.PlayersData, cursor int) string {
	title := "Players"
	if d.Search != "" {
		title = fmt.Sprintf("Players matching %q", d.Search)
	}
	lines := []string{headingStyle.Render(title)}
	if len(d.Players) == 0 {
		lines = append(lines, helpStyle.Render("No players found."))
	}
	for i, p := range d.Players {
		lines = append(lines, row(i == cursor, playerLine(p)))
	}
	return strings.Join(lines, "\n")
}

func playerLine(p nba.Player) string {
	team := ""
	if p.Team != nil {
		team = p.Team.Abbreviation
	}
	return fmt.Sprintf("%-28s %-4s %s", p.FullName(), p.Position, team)
}

func renderTeamDetail(d *navigator.TeamDetailData, cursor int) string {
	lines := []string{
		headingStyle.Render(d.Team.DisplayName()),
		fmt.Sprintf("%s Conference, %s Division", d.Team.Conference, d.Team.Division),
		"",
		headingStyle.Render("Roster"),
	}
	if len(d.Roster) == 0 {
		lines = append(lines, helpStyle.Render("No players listed."))
	}
	for i, p := range d.Roster {
		text := fmt.Sprintf("#%-3s %-28s %s", p.JerseyNumber, p.FullName(), p.Position)
		lines = append(lines, row(i == cursor, text))
	}
	return strings.Join(lines, "\n")
}

func renderPlayer(p *nba.Player) string {
	lines := []string{headingStyle.Render(p.FullName())}
	field := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%-10s %s", label, value))
		}
	}
	if p.Team != nil {
		field("Team", p.Team.DisplayName())
	}
	field("Position", p.Position)
	field("Jersey", p.JerseyNumber)
	field("Height", p.HeightText())
	field("Weight", p.WeightText())
	field("College", p.College)
	field("Country", p.Country)
	if p.DraftYear != nil {
		draft := strconv.Itoa(*p.DraftYear)
		if p.DraftRound != nil && p.DraftNumber != nil {
			draft += fmt.Sprintf(", round %d, pick %d", *p.DraftRound, *p.DraftNumber)
		}
		field("Draft", draft)
	} else {
		field("Draft", "Undrafted")
	}
	return strings.Join(lines, "\n")
}
