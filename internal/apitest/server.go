// Package apitest runs an in-memory stand-in for the stats API so gateway,
// pager and navigator code can be exercised over real HTTP.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/fortuna/courtside/internal/nba"
)

// Pagination selects how list endpoints describe their next page.
type Pagination int

const (
	Cursor Pagination = iota
	Pages
)

const (
	DefaultPrefix  = "/nba/v1"
	defaultPerPage = 25
)

type failure struct {
	status      int
	contentType string
	body        string
}

// Server is a fake stats API backed by fixture slices.
type Server struct {
	*httptest.Server

	prefix string
	key    string

	mu         sync.Mutex
	pagination Pagination
	teams      []nba.Team
	games      []nba.Game
	players    []nba.Player
	stats      []nba.StatLine
	hits       map[string]int
	failures   map[string]failure
	queries    map[string][]string
}

// Option configures a Server.
type Option func(*Server)

// WithPrefix serves the API under prefix instead of DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Server) { s.prefix = "/" + strings.Trim(prefix, "/") }
}

// WithKey rejects requests whose Authorization header is not key.
func WithKey(key string) Option {
	return func(s *Server) { s.key = key }
}

// New starts a fake API that is closed when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := &Server{
		prefix:   DefaultPrefix,
		hits:     make(map[string]int),
		failures: make(map[string]failure),
		queries:  make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// Prefix returns the path prefix the API is served under.
func (s *Server) Prefix() string { return s.prefix }

func (s *Server) router() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix(s.prefix).Subrouter()
	api.Use(s.countingMiddleware)
	api.Use(s.authMiddleware)
	api.Use(s.failureMiddleware)
	api.HandleFunc("/teams", s.listTeams).Methods("GET")
	api.HandleFunc("/teams/{id:[0-9]+}", s.getTeam).Methods("GET")
	api.HandleFunc("/players", s.listPlayers).Methods("GET")
	api.HandleFunc("/players/{id:[0-9]+}", s.getPlayer).Methods("GET")
	api.HandleFunc("/games", s.listGames).Methods("GET")
	api.HandleFunc("/games/{id:[0-9]+}", s.getGame).Methods("GET")
	api.HandleFunc("/stats", s.listStats).Methods("GET")
	return router
}

// SetPagination switches list endpoints between cursor and page metadata.
func (s *Server) SetPagination(p Pagination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pagination = p
}

func (s *Server) AddTeams(teams ...nba.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = append(s.teams, teams...)
}

func (s *Server) AddGames(games ...nba.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = append(s.games, games...)
}

func (s *Server) AddPlayers(players ...nba.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = append(s.players, players...)
}

func (s *Server) AddStats(lines ...nba.StatLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = append(s.stats, lines...)
}

// Fail makes every request to resource (e.g. "games", "teams/3") answer
// with the given status, content type and body.
func (s *Server) Fail(resource string, status int, contentType, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[resource] = failure{status: status, contentType: contentType, body: body}
}

// Recover clears an injected failure.
func (s *Server) Recover(resource string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, resource)
}

// Hits returns how many requests reached resource.
func (s *Server) Hits(resource string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[resource]
}

// Queries returns the raw query strings received for resource, in order.
func (s *Server) Queries(resource string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries[resource]...)
}

// resourceOf strips the API prefix: "/nba/v1/teams/3" -> "teams/3".
func (s *Server) resourceOf(r *http.Request) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, s.prefix), "/")
}

func (s *Server) countingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resource := s.resourceOf(r)
		s.mu.Lock()
		s.hits[resource]++
		s.queries[resource] = append(s.queries[resource], r.URL.RawQuery)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.key != "" && r.Header.Get("Authorization") != s.key {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[s.resourceOf(r)]
		s.mu.Unlock()
		if ok {
			if f.contentType != "" {
				w.Header().Set("Content-Type", f.contentType)
			}
			w.WriteHeader(f.status)
			fmt.Fprint(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listTeams(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	teams := append([]nba.Team(nil), s.teams...)
	s.mu.Unlock()
	// The teams endpoint is not paginated.
	respondJSON(w, http.StatusOK, map[string]any{"data": teams})
}

func (s *Server) getTeam(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teams {
		if t.ID == id {
			respondJSON(w, http.StatusOK, map[string]any{"data": t})
			return
		}
	}
	respondError(w, http.StatusNotFound, "team not found")
}

func (s *Server) listPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	teamIDs := intSet(q["team_ids[]"])

	s.mu.Lock()
	var out []nba.Player
	for _, p := range s.players {
		if search != "" && !strings.Contains(strings.ToLower(p.FirstName), search) &&
			!strings.Contains(strings.ToLower(p.LastName), search) {
			continue
		}
		if len(teamIDs) > 0 && (p.Team == nil || !teamIDs[p.Team.ID]) {
			continue
		}
		out = append(out, p)
	}
	s.mu.Unlock()
	s.respondPage(w, r, out)
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.ID == id {
			respondJSON(w, http.StatusOK, map[string]any{"data": p})
			return
		}
	}
	respondError(w, http.StatusNotFound, "player not found")
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dates := stringSet(q["dates[]"])
	seasons := intSet(q["seasons[]"])
	teamIDs := intSet(q["team_ids[]"])
	postseason := q.Get("postseason")

	s.mu.Lock()
	var out []nba.Game
	for _, g := range s.games {
		if len(dates) > 0 && !dates[g.Day()] {
			continue
		}
		if len(seasons) > 0 && !seasons[g.Season] {
			continue
		}
		if len(teamIDs) > 0 && !teamIDs[g.HomeTeam.ID] && !teamIDs[g.VisitorTeam.ID] {
			continue
		}
		if postseason != "" && strconv.FormatBool(g.Postseason) != postseason {
			continue
		}
		out = append(out, g)
	}
	s.mu.Unlock()
	s.respondPage(w, r, out)
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.games {
		if g.ID == id {
			respondJSON(w, http.StatusOK, map[string]any{"data": g})
			return
		}
	}
	respondError(w, http.StatusNotFound, "game not found")
}

func (s *Server) listStats(w http.ResponseWriter, r *http.Request) {
	gameIDs := intSet(r.URL.Query()["game_ids[]"])

	s.mu.Lock()
	var out []nba.StatLine
	for _, l := range s.stats {
		if len(gameIDs) > 0 && !gameIDs[l.Game.ID] {
			continue
		}
		out = append(out, l)
	}
	s.mu.Unlock()
	s.respondPage(w, r, out)
}

// respondPageOf slices items according to the request's per_page and
// page/cursor parameters and attaches matching metadata.
func respondPageOf[T any](w http.ResponseWriter, r *http.Request, mode Pagination, items []T) {
	q := r.URL.Query()
	perPage, err := strconv.Atoi(q.Get("per_page"))
	if err != nil || perPage <= 0 {
		perPage = defaultPerPage
	}

	var start int
	meta := map[string]any{"per_page": perPage}
	switch mode {
	case Pages:
		page, err := strconv.Atoi(q.Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		totalPages := (len(items) + perPage - 1) / perPage
		if totalPages == 0 {
			totalPages = 1
		}
		start = (page - 1) * perPage
		meta["current_page"] = page
		meta["total_pages"] = totalPages
		meta["total_count"] = len(items)
		if page < totalPages {
			meta["next_page"] = page + 1
		} else {
			meta["next_page"] = nil
		}
	default:
		start, _ = strconv.Atoi(q.Get("cursor"))
	}

	if start > len(items) {
		start = len(items)
	}
	end := min(start+perPage, len(items))
	if mode == Cursor && end < len(items) {
		meta["next_cursor"] = end
	}

	page := items[start:end]
	if page == nil {
		page = []T{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": page, "meta": meta})
}

func (s *Server) respondPage(w http.ResponseWriter, r *http.Request, items any) {
	s.mu.Lock()
	mode := s.pagination
	s.mu.Unlock()

	switch v := items.(type) {
	case []nba.Player:
		respondPageOf(w, r, mode, v)
	case []nba.Game:
		respondPageOf(w, r, mode, v)
	case []nba.StatLine:
		respondPageOf(w, r, mode, v)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"error": message, "status": status})
}

func intSet(values []string) map[int]bool {
	out := make(map[int]bool, len(values))
	for _, v := range values {
		if n, err := strconv.Atoi(v); err == nil {
			out[n] = true
		}
	}
	return out
}

func stringSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}
