// Package tui is the interactive full-screen front end over the navigator.
package tui

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/nba"
	"github.com/fortuna/courtside/internal/navigator"
	"github.com/fortuna/courtside/internal/schedule"
	"github.com/fortuna/courtside/internal/standings"
)

// selectableSeasons is how far back the standings season picker goes.
const selectableSeasons = 5

// Navigator is the part of *navigator.Navigator the app drives.
type Navigator interface {
	Navigate(ctx context.Context, intent navigator.Intent)
	Back(ctx context.Context) bool
	Refresh(ctx context.Context)
	Title(v navigator.View) string
}

// BoxScores loads a game's box score summary. *boxscore.Loader satisfies it.
type BoxScores interface {
	Summary(ctx context.Context, game nba.Game) (*boxscore.Summary, error)
}

type snapshotMsg navigator.Snapshot

// snapshotFeed carries navigator snapshots into the program. publish never
// blocks, so the navigator can report from inside Update. Only the newest
// snapshot by Version is kept.
type snapshotFeed struct {
	mu     sync.Mutex
	latest navigator.Snapshot
	ready  chan struct{}
}

func newSnapshotFeed() *snapshotFeed {
	return &snapshotFeed{ready: make(chan struct{}, 1)}
}

func (f *snapshotFeed) publish(s navigator.Snapshot) {
	f.mu.Lock()
	if s.Version >= f.latest.Version {
		f.latest = s
	}
	f.mu.Unlock()

	select {
	case f.ready <- struct{}{}:
	default:
	}
}

// next waits for the next publish and returns the newest snapshot.
func (f *snapshotFeed) next(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case <-f.ready:
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		return snapshotMsg(f.latest)
	}
}

type boxScoreMsg struct {
	gameID  int
	summary *boxscore.Summary
	err     error
}

// Model is the bubbletea model. It renders the latest navigator snapshot and
// turns keys into navigation intents.
type Model struct {
	ctx       context.Context
	nav       Navigator
	boxScores BoxScores
	now       func() time.Time
	feed      *snapshotFeed

	snap   navigator.Snapshot
	cursor int

	// last parameters seen for the top-level views, reused by the number keys
	scoresDate   string
	season       int
	playerSearch string

	spinner   spinner.Model
	search    textinput.Model
	searching bool

	boxGame    int
	box        *boxscore.Summary
	boxErr     string
	boxLoading bool

	width  int
	height int
}

// NewModel creates the app model. now decides "today" and the display zone.
func NewModel(ctx context.Context, nav Navigator, boxScores BoxScores, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = headingStyle

	ti := textinput.New()
	ti.Placeholder = "Search players..."
	ti.Width = 30

	return Model{
		ctx:       ctx,
		nav:       nav,
		boxScores: boxScores,
		now:       now,
		snap:      navigator.Snapshot{Active: navigator.Scores},
		spinner:   sp,
		search:    ti,
	}
}

func (m Model) Init() tea.Cmd {
	m.navigate(navigator.OpenScores(""))
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case snapshotMsg:
		m.applySnapshot(navigator.Snapshot(msg))
		return m, m.listen()

	case boxScoreMsg:
		if msg.gameID == m.boxGame && m.boxLoading {
			m.boxLoading = false
			m.box = msg.summary
			m.boxErr = navigator.Describe(msg.err)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applySnapshot(snap navigator.Snapshot) {
	if snap.Version < m.snap.Version {
		return
	}
	if snap.Active != m.snap.Active || snap.Params != m.snap.Params {
		m.cursor = 0
		m.closeBox()
	}
	m.snap = snap

	switch snap.Active {
	case navigator.Scores:
		if d, ok := snap.Data.(*navigator.ScoresData); ok {
			m.scoresDate = d.Date
		} else if snap.Params.Date != "" {
			m.scoresDate = snap.Params.Date
		}
	case navigator.Standings:
		m.season = snap.Params.Season
	case navigator.Players:
		m.playerSearch = snap.Params.Search
	}
	m.clampCursor()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "1":
		m.navigate(navigator.OpenScores(m.scoresDate))
	case "2":
		m.navigate(navigator.OpenStandings(m.season))
	case "3":
		m.navigate(navigator.OpenTeams())
	case "4":
		m.navigate(navigator.OpenPlayers(m.playerSearch))
	case "left", "h":
		m.shift(-1)
	case "right", "l":
		m.shift(1)
	case "up", "k":
		m.cursor--
		m.clampCursor()
	case "down", "j":
		m.cursor++
		m.clampCursor()
	case "enter":
		return m.open()
	case "/":
		if m.snap.Active == navigator.Players {
			m.searching = true
			m.search.SetValue(m.playerSearch)
			return m, m.search.Focus()
		}
	case "esc":
		if m.boxOpen() {
			m.closeBox()
			return m, nil
		}
		m.nav.Back(m.ctx)
	case "r":
		m.nav.Refresh(m.ctx)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.navigate(navigator.OpenPlayers(strings.TrimSpace(m.search.Value())))
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// shift moves the day picker on Scores and the season picker on Standings.
// Right is always towards the present.
func (m Model) shift(n int) {
	switch m.snap.Active {
	case navigator.Scores:
		d, ok := m.snap.Data.(*navigator.ScoresData)
		if !ok {
			return
		}
		cur := indexOf(d.Days, d.Date)
		if cur < 0 {
			return
		}
		i := cur + n
		if i < 0 || i >= len(d.Days) {
			return
		}
		m.navigate(navigator.OpenScores(d.Days[i]))

	case navigator.Standings:
		seasons := schedule.RecentSeasons(m.now(), selectableSeasons)
		current := m.snap.Params.Season
		if current == 0 {
			current = seasons[0]
		}
		// seasons are newest first
		i := indexOf(seasons, current) - n
		if i < 0 || i >= len(seasons) {
			return
		}
		m.navigate(navigator.OpenStandings(seasons[i]))
	}
}

// open acts on the selected row: a box score on Scores, a detail view elsewhere.
func (m Model) open() (tea.Model, tea.Cmd) {
	switch data := m.snap.Data.(type) {
	case *navigator.ScoresData:
		if m.cursor >= len(data.Games) {
			return m, nil
		}
		game := data.Games[m.cursor]
		if m.boxOpen() && m.boxGame == game.ID {
			m.closeBox()
			return m, nil
		}
		if !game.Played() {
			m.boxGame = game.ID
			m.box = nil
			m.boxLoading = false
			m.boxErr = "No box score before the game is played."
			return m, nil
		}
		m.boxGame = game.ID
		m.box = nil
		m.boxErr = ""
		m.boxLoading = true
		return m, m.loadBoxScore(game)

	case *standings.Table:
		entries := data.Entries()
		if m.cursor < len(entries) {
			m.navigate(navigator.OpenTeam(entries[m.cursor].Team.ID))
		}
	case []nba.Team:
		if m.cursor < len(data) {
			m.navigate(navigator.OpenTeam(data[m.cursor].ID))
		}
	case *navigator.PlayersData:
		if m.cursor < len(data.Players) {
			m.navigate(navigator.OpenPlayer(data.Players[m.cursor].ID))
		}
	case *navigator.TeamDetailData:
		if m.cursor < len(data.Roster) {
			m.navigate(navigator.OpenPlayer(data.Roster[m.cursor].ID))
		}
	case *nba.Player:
		if data.Team != nil && data.Team.ID != 0 {
			m.navigate(navigator.OpenTeam(data.Team.ID))
		}
	}
	return m, nil
}

func (m Model) itemCount() int {
	switch data := m.snap.Data.(type) {
	case *navigator.ScoresData:
		return len(data.Games)
	case *standings.Table:
		return len(data.East) + len(data.West)
	case []nba.Team:
		return len(data)
	case *navigator.PlayersData:
		return len(data.Players)
	case *navigator.TeamDetailData:
		return len(data.Roster)
	}
	return 0
}

func (m *Model) clampCursor() {
	if n := m.itemCount(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) boxOpen() bool {
	return m.box != nil || m.boxLoading || m.boxErr != ""
}

func (m *Model) closeBox() {
	m.boxGame = 0
	m.box = nil
	m.boxErr = ""
	m.boxLoading = false
}

// navigate runs on the update goroutine so intents reach the navigator in
// key order. The navigator only starts the load; results come back through
// the feed.
func (m Model) navigate(intent navigator.Intent) {
	m.nav.Navigate(m.ctx, intent)
}

func (m Model) listen() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	return m.feed.next(m.ctx)
}

func (m Model) loadBoxScore(game nba.Game) tea.Cmd {
	loader, ctx := m.boxScores, m.ctx
	return func() tea.Msg {
		summary, err := loader.Summary(ctx, game)
		return boxScoreMsg{gameID: game.ID, summary: summary, err: err}
	}
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return -1
}

// Options configure Run.
type Options struct {
	Catalog   navigator.Catalog
	BoxScores BoxScores
	Logger    *slog.Logger
	Now       func() time.Time
}

// Run starts the full-screen app and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	feed := newSnapshotFeed()
	nav, err := navigator.New(opts.Catalog,
		navigator.WithLogger(opts.Logger),
		navigator.WithObserver(feed.publish),
	)
	if err != nil {
		return err
	}

	model := NewModel(ctx, nav, opts.BoxScores, opts.Now)
	model.feed = feed
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err = program.Run()

	cancel()
	nav.Wait()
	return err
}
