package cli

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/publisher"
	"github.com/fortuna/courtside/internal/schedule"
	"github.com/fortuna/courtside/internal/store"
)

type exportTargets struct {
	dsn         string
	redisURL    string
	metricsFile string
}

// resolve fills unset targets from the export section of the config.
func (t exportTargets) resolve(a *app) exportTargets {
	if t.dsn == "" {
		t.dsn = a.cfg.Export.DSN
	}
	if t.redisURL == "" {
		t.redisURL = a.cfg.Export.RedisURL
	}
	return t
}

func (a *app) exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export computed standings and box scores",
		Long: `Export computed data to PostgreSQL (standings snapshots), Redis streams
(standings.basketball_nba and boxscores.basketball_nba) or a Prometheus
text file with the request metrics of the run.`,
	}
	cmd.AddCommand(a.exportStandingsCommand(), a.exportBoxScoreCommand())
	return cmd
}

func (a *app) exportStandingsCommand() *cobra.Command {
	var (
		season  int
		targets exportTargets
	)
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Compute a season's standings and export them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := targets.resolve(a)
			if t.dsn == "" && t.redisURL == "" && t.metricsFile == "" {
				return errors.New("nothing to export: set --dsn, --redis-url or --metrics-file")
			}
			if season == 0 {
				season = schedule.SeasonForDate(a.now())
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			table, err := a.engine.Load(ctx, season)
			if err != nil {
				return a.fail("computing standings", err)
			}

			if t.dsn != "" {
				db, err := store.NewDatabase(ctx, t.dsn, a.logger)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.EnsureSchema(ctx); err != nil {
					return err
				}
				snap := store.NewSnapshot(table, a.now())
				if err := db.SaveStandings(ctx, snap); err != nil {
					return err
				}
				fmt.Fprintf(out, "saved standings snapshot %s (%d teams)\n", snap.ID, len(snap.Entries))
			}

			if t.redisURL != "" {
				pub, err := publisher.NewRedisPublisher(ctx, t.redisURL)
				if err != nil {
					return err
				}
				defer pub.Close()
				id, err := pub.PublishStandings(ctx, table)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "published standings to %s as %s\n", publisher.StandingsStream, id)
			}

			return a.writeMetrics(cmd, t.metricsFile)
		},
	}
	cmd.Flags().IntVarP(&season, "season", "s", 0, "season start year (default current)")
	cmd.Flags().StringVar(&targets.dsn, "dsn", "", "PostgreSQL DSN to store a snapshot in")
	cmd.Flags().StringVar(&targets.redisURL, "redis-url", "", "Redis URL to publish to")
	cmd.Flags().StringVar(&targets.metricsFile, "metrics-file", "", "write request metrics to this file")
	return cmd
}

func (a *app) exportBoxScoreCommand() *cobra.Command {
	var targets exportTargets
	cmd := &cobra.Command{
		Use:   "boxscore <game-id>",
		Short: "Summarize one game and publish it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t := targets.resolve(a)
			if t.redisURL == "" && t.metricsFile == "" {
				return errors.New("nothing to export: set --redis-url or --metrics-file")
			}

			summary, err := a.summary(cmd, id)
			if err != nil {
				return err
			}

			if t.redisURL != "" {
				pub, err := publisher.NewRedisPublisher(cmd.Context(), t.redisURL)
				if err != nil {
					return err
				}
				defer pub.Close()
				entry, err := pub.PublishBoxScore(cmd.Context(), summary)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "published game %d to %s as %s\n", id, publisher.BoxScoresStream, entry)
			}
			return a.writeMetrics(cmd, t.metricsFile)
		},
	}
	cmd.Flags().StringVar(&targets.redisURL, "redis-url", "", "Redis URL to publish to")
	cmd.Flags().StringVar(&targets.metricsFile, "metrics-file", "", "write request metrics to this file")
	return cmd
}

func (a *app) writeMetrics(cmd *cobra.Command, path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, a.client.Registry()); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote request metrics to %s\n", path)
	return nil
}
