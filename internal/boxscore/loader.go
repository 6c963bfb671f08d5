package boxscore

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/fortuna/courtside/internal/nba"
	"github.com/fortuna/courtside/internal/pager"
)

// Loader fetches and summarises box scores on demand. Summaries are kept
// until Reset, which ends the current session.
type Loader struct {
	pager  *pager.Pager
	topN   int
	logger *slog.Logger
	group  singleflight.Group

	mu      sync.Mutex
	session uint64
	memo    map[int]*Summary
}

func NewLoader(p *pager.Pager, topN int, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		pager:  p,
		topN:   topN,
		logger: logger.With("component", "boxscore"),
		memo:   make(map[int]*Summary),
	}
}

// Summary returns the box score of game, fetching its stat lines the first
// time it is asked for in this session. Concurrent calls for the same game
// share one fetch.
func (l *Loader) Summary(ctx context.Context, game nba.Game) (*Summary, error) {
	l.mu.Lock()
	if s, ok := l.memo[game.ID]; ok {
		l.mu.Unlock()
		return s, nil
	}
	session := l.session
	l.mu.Unlock()

	key := strconv.FormatUint(session, 10) + "/" + strconv.Itoa(game.ID)
	v, err, _ := l.group.Do(key, func() (any, error) {
		params := url.Values{}
		params.Set("game_ids[]", strconv.Itoa(game.ID))
		lines, err := pager.FetchAll[nba.StatLine](ctx, l.pager, "stats", params)
		if err != nil {
			return nil, fmt.Errorf("loading box score %d: %w", game.ID, err)
		}

		summary, err := Summarize(game, lines, l.topN)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		if l.session == session {
			l.memo[game.ID] = summary
		}
		l.mu.Unlock()

		l.logger.Debug("box score loaded", "game_id", game.ID, "lines", len(lines))
		return summary, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Summary), nil
}

// Cached reports whether game's summary is held for this session.
func (l *Loader) Cached(gameID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.memo[gameID]
	return ok
}

// Reset drops every memoised summary. Fetches still in flight complete but
// are not retained.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.session++
	l.memo = make(map[int]*Summary)
}
