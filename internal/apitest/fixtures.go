package apitest

import "github.com/fortuna/courtside/internal/nba"

// Score returns a pointer to n, for building played games.
func Score(n int) *int { return &n }

// Team builds a team fixture.
func Team(id int, city, name, abbr, conference string) nba.Team {
	return nba.Team{
		ID:           id,
		Conference:   conference,
		City:         city,
		Name:         name,
		FullName:     city + " " + name,
		Abbreviation: abbr,
	}
}

// Final builds a completed regular-season game.
func Final(id int, date string, season int, home, visitor nba.Team, homeScore, visitorScore int) nba.Game {
	return nba.Game{
		ID:           id,
		Date:         date,
		Season:       season,
		Status:       "Final",
		Period:       4,
		HomeTeam:     home,
		VisitorTeam:  visitor,
		HomeScore:    Score(homeScore),
		VisitorScore: Score(visitorScore),
	}
}

// Scheduled builds a game that has not been played yet.
func Scheduled(id int, date string, season int, home, visitor nba.Team) nba.Game {
	return nba.Game{
		ID:          id,
		Date:        date,
		Season:      season,
		Status:      "7:30 pm ET",
		HomeTeam:    home,
		VisitorTeam: visitor,
	}
}

// Player builds a player fixture on team.
func Player(id int, first, last string, team nba.Team) nba.Player {
	return nba.Player{ID: id, FirstName: first, LastName: last, Team: &team}
}

// Line builds a box score line.
func Line(gameID int, player nba.Player, pts, reb, ast int) nba.StatLine {
	l := nba.StatLine{
		Points:   pts,
		Rebounds: reb,
		Assists:  ast,
		Player:   player,
		Game:     nba.GameRef{ID: gameID},
	}
	if player.Team != nil {
		l.Team = *player.Team
	}
	return l
}
