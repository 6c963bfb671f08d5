// Package cli wires configuration, logging and the data stack into the
// courtside commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/balldontlie"
	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/navigator"
	"github.com/fortuna/courtside/internal/pager"
	"github.com/fortuna/courtside/internal/standings"
	"github.com/fortuna/courtside/internal/tui"
)

// Build info - set via -ldflags at build time
var (
	Version   = "dev"
	CommitID  = "unknown"
	BuildDate = "unknown"
)

type app struct {
	// persistent flags
	cfgFile  string
	apiKey   string
	baseURL  string
	prefix   string
	output   string
	logLevel string

	now func() time.Time

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	client    *balldontlie.Client
	pager     *pager.Pager
	engine    *standings.Engine
	boxScores *boxscore.Loader
	catalog   navigator.Catalog
}

// NewRootCommand builds the courtside command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{now: time.Now})
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "courtside",
		Short: "NBA scores, standings, teams and players from the BallDontLie API",
		Long: `courtside browses NBA data from the BallDontLie API.

Without a subcommand it opens the interactive viewer. The one-shot commands
print the same views as tables.`,
		Args:               cobra.NoArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE:               a.runTUI,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file path (default ~/.config/courtside/config.yaml)")
	flags.StringVar(&a.apiKey, "api-key", "", "BallDontLie API key")
	flags.StringVar(&a.baseURL, "base-url", "", "API base URL")
	flags.StringVar(&a.prefix, "prefix", "", "API path prefix, /nba/v1 or /v1")
	flags.StringVarP(&a.output, "output", "o", "table", "output format: table, json")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		a.tuiCommand(),
		a.scoresCommand(),
		a.standingsCommand(),
		a.teamsCommand(),
		a.playersCommand(),
		a.teamCommand(),
		a.playerCommand(),
		a.boxScoreCommand(),
		a.daysCommand(),
		a.exportCommand(),
		versionCommand(),
	)
	return root
}

func skipSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return true
	}
	return cmd.HasParent() && cmd.Parent().Name() == "completion"
}

func interactive(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || cmd == cmd.Root()
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if skipSetup(cmd) {
		return nil
	}
	if a.output != "table" && a.output != "json" {
		return fmt.Errorf("unknown output format %q", a.output)
	}

	overrides := map[string]any{}
	if a.apiKey != "" {
		overrides["api.key"] = a.apiKey
	}
	if a.baseURL != "" {
		overrides["api.base_url"] = a.baseURL
	}
	if a.prefix != "" {
		overrides["api.prefix"] = a.prefix
	}
	if a.logLevel != "" {
		overrides["logging.level"] = a.logLevel
	}
	cfg, err := config.Load(a.cfgFile, overrides)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	if interactive(cmd) {
		logger, closer, err := logging.NewFile(cfg.Logging.File, level)
		if err != nil {
			return err
		}
		a.logger, a.logCloser = logger, closer
	} else {
		a.logger = logging.New(cmd.ErrOrStderr(), level)
	}
	if cfg.File != "" {
		a.logger.Debug("loaded config", "file", cfg.File)
	}
	if cfg.API.Key == "" {
		a.logger.Warn("no API key configured, set BALLDONTLIE_API_KEY or api.key")
	}

	a.client = balldontlie.New(balldontlie.Config{
		BaseURL: cfg.API.BaseURL,
		Prefix:  cfg.API.Prefix,
		APIKey:  cfg.API.Key,
		Timeout: cfg.API.Timeout,
		Logger:  a.logger,
	})
	a.pager = pager.New(a.client,
		pager.WithPerPage(cfg.API.PerPage),
		pager.WithMaxPages(cfg.Pager.MaxPages),
		pager.WithLogger(a.logger),
	)
	a.engine = standings.NewEngine(a.pager, a.logger)
	a.boxScores = boxscore.NewLoader(a.pager, cfg.BoxScore.TopN, a.logger)
	a.catalog = navigator.NewCatalog(navigator.Sources{
		Entities:   a.client,
		Pager:      a.pager,
		Standings:  a.engine,
		BoxScores:  a.boxScores,
		DaysBefore: cfg.Schedule.DaysBefore,
		DaysAfter:  cfg.Schedule.DaysAfter,
		Now:        a.now,
	})
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.logCloser != nil {
		return a.logCloser.Close()
	}
	return nil
}

func (a *app) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive viewer",
		Args:  cobra.NoArgs,
		RunE:  a.runTUI,
	}
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	return tui.Run(cmd.Context(), tui.Options{
		Catalog:   a.catalog,
		BoxScores: a.boxScores,
		Logger:    a.logger,
		Now:       a.now,
	})
}

// load fills one view the way the interactive viewer would and returns its
// data, or the user-facing message as the error.
func (a *app) load(ctx context.Context, intent navigator.Intent) (any, error) {
	nav, err := navigator.New(a.catalog, navigator.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	nav.Navigate(ctx, intent)
	nav.Wait()

	snap := nav.Snapshot()
	if snap.Status == navigator.Failed {
		return nil, errors.New(snap.Message)
	}
	return snap.Data, nil
}

// fail logs err and returns its user-facing description.
func (a *app) fail(msg string, err error) error {
	a.logger.Error(msg, "error", err)
	return errors.New(navigator.Describe(err))
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "courtside %s (commit %s, built %s)\n", Version, CommitID, BuildDate)
		},
	}
}
