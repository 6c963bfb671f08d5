package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/nba"
	"github.com/fortuna/courtside/internal/navigator"
	"github.com/fortuna/courtside/internal/schedule"
	"github.com/fortuna/courtside/internal/standings"
)

func (a *app) scoresCommand() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Games and scores for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if date != "" {
				if _, err := schedule.SeasonForISODate(date); err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}
			data, err := a.load(cmd.Context(), navigator.OpenScores(date))
			if err != nil {
				return err
			}
			d := data.(*navigator.ScoresData)
			return a.emit(cmd, d, func(w io.Writer) { writeScores(w, d, a.now().Location()) })
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "day to show, YYYY-MM-DD (default today)")
	return cmd
}

func (a *app) standingsCommand() *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Regular-season standings by conference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.load(cmd.Context(), navigator.OpenStandings(season))
			if err != nil {
				return err
			}
			tbl := data.(*standings.Table)
			return a.emit(cmd, tbl, func(w io.Writer) { writeStandings(w, tbl) })
		},
	}
	cmd.Flags().IntVarP(&season, "season", "s", 0, "season start year, e.g. 2024 for 2024-25 (default current)")
	return cmd
}

func (a *app) teamsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List the current franchises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.load(cmd.Context(), navigator.OpenTeams())
			if err != nil {
				return err
			}
			teams := data.([]nba.Team)
			return a.emit(cmd, teams, func(w io.Writer) { writeTeams(w, teams) })
		},
	}
}

func (a *app) playersCommand() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Browse or search players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.load(cmd.Context(), navigator.OpenPlayers(search))
			if err != nil {
				return err
			}
			d := data.(*navigator.PlayersData)
			return a.emit(cmd, d, func(w io.Writer) { writePlayers(w, d.Players) })
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "name to search for")
	return cmd
}

func (a *app) teamCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "team <id>",
		Short: "Show a team and its roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			data, err := a.load(cmd.Context(), navigator.OpenTeam(id))
			if err != nil {
				return err
			}
			d := data.(*navigator.TeamDetailData)
			return a.emit(cmd, d, func(w io.Writer) { writeTeamDetail(w, d) })
		},
	}
}

func (a *app) playerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "player <id>",
		Short: "Show a player profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			data, err := a.load(cmd.Context(), navigator.OpenPlayer(id))
			if err != nil {
				return err
			}
			p := data.(*nba.Player)
			return a.emit(cmd, p, func(w io.Writer) { writePlayer(w, p) })
		},
	}
}

func (a *app) boxScoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "boxscore <game-id>",
		Short: "Team totals and top scorers of one game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			summary, err := a.summary(cmd, id)
			if err != nil {
				return err
			}
			return a.emit(cmd, summary, func(w io.Writer) { writeBoxScore(w, summary) })
		},
	}
}

func (a *app) summary(cmd *cobra.Command, gameID int) (*boxscore.Summary, error) {
	game, err := a.client.Game(cmd.Context(), gameID)
	if err != nil {
		return nil, a.fail("loading game", err)
	}
	summary, err := a.boxScores.Summary(cmd.Context(), *game)
	if err != nil {
		return nil, a.fail("loading box score", err)
	}
	return summary, nil
}

func (a *app) daysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "days",
		Short: "List the days the scores view can show",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := a.now()
			days := schedule.Window(now, a.cfg.Schedule.DaysBefore, a.cfg.Schedule.DaysAfter)
			today := schedule.LocalISODate(now)
			return a.emit(cmd, days, func(w io.Writer) { writeDays(w, days, today) })
		},
	}
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
