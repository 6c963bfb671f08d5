package balldontlie_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fortuna/courtside/internal/apitest"
	"github.com/fortuna/courtside/internal/balldontlie"
	"github.com/fortuna/courtside/internal/nba"
)

func newClient(srv *apitest.Server, key string) *balldontlie.Client {
	return balldontlie.New(balldontlie.Config{
		BaseURL: srv.URL,
		Prefix:  srv.Prefix(),
		APIKey:  key,
	})
}

func TestGet_DecodesEnvelope(t *testing.T) {
	srv := apitest.New(t, apitest.WithKey("secret"))
	srv.AddTeams(
		apitest.Team(1, "Boston", "Celtics", "BOS", "East"),
		apitest.Team(2, "Denver", "Nuggets", "DEN", "West"),
	)
	client := newClient(srv, "secret")

	env, err := client.Get(context.Background(), "teams", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Meta != nil {
		t.Errorf("expected no meta for teams, got %+v", env.Meta)
	}

	teams, err := balldontlie.DecodeList[nba.Team](env, "teams")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
	if teams[0].Abbreviation != "BOS" || teams[1].FullName != "Denver Nuggets" {
		t.Errorf("unexpected teams: %+v", teams)
	}
}

func TestGet_SendsParamsAndPrefix(t *testing.T) {
	srv := apitest.New(t, apitest.WithPrefix("/v1"))
	bos := apitest.Team(1, "Boston", "Celtics", "BOS", "East")
	den := apitest.Team(2, "Denver", "Nuggets", "DEN", "West")
	srv.AddGames(
		apitest.Final(10, "2024-11-01", 2024, bos, den, 110, 100),
		apitest.Final(11, "2024-11-02", 2024, den, bos, 99, 101),
	)
	client := balldontlie.New(balldontlie.Config{BaseURL: srv.URL + "/", Prefix: "v1/"})

	params := url.Values{}
	params.Add("dates[]", "2024-11-02")
	env, err := client.Get(context.Background(), "games", params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	games, err := balldontlie.DecodeList[nba.Game](env, "games")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(games) != 1 || games[0].ID != 11 {
		t.Fatalf("expected game 11 only, got %+v", games)
	}
	if games[0].HomeScore == nil || *games[0].HomeScore != 99 {
		t.Errorf("home score not decoded: %+v", games[0])
	}
	if srv.Hits("games") != 1 {
		t.Errorf("expected 1 hit, got %d", srv.Hits("games"))
	}
}

func TestGet_BareList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id": 7, "full_name": "Miami Heat"}]`)
	}))
	defer srv.Close()

	client := balldontlie.New(balldontlie.Config{BaseURL: srv.URL})
	env, err := client.Get(context.Background(), "teams", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	teams, err := balldontlie.DecodeList[nba.Team](env, "teams")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(teams) != 1 || teams[0].ID != 7 {
		t.Errorf("unexpected teams: %+v", teams)
	}
}

func TestGet_RemoteErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantStatus  int
		wantDetail  string
	}{
		{
			name:        "JSON error body",
			status:      http.StatusTooManyRequests,
			contentType: "application/json",
			body:        `{"error": "rate limited"}`,
			wantStatus:  429,
			wantDetail:  "rate limited",
		},
		{
			name:        "HTML error page",
			status:      http.StatusBadGateway,
			contentType: "text/html; charset=utf-8",
			body:        "<html><head><title>502 Bad\n  Gateway</title></head><body><h1>oops</h1></body></html>",
			wantStatus:  502,
			wantDetail:  "502 Bad Gateway",
		},
		{
			name:       "HTML without content type",
			status:     http.StatusServiceUnavailable,
			body:       "<html><body><h1>Down for maintenance</h1></body></html>",
			wantStatus: 503,
			wantDetail: "Down for maintenance",
		},
		{
			name:       "malformed success body",
			status:     http.StatusOK,
			body:       "definitely not json",
			wantStatus: 200,
		},
		{
			name:       "object without data",
			status:     http.StatusOK,
			body:       `{"meta": {}}`,
			wantStatus: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.New(t)
			srv.Fail("games", tt.status, tt.contentType, tt.body)
			client := newClient(srv, "")

			_, err := client.Get(context.Background(), "games", nil)
			var rerr *balldontlie.RemoteError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected RemoteError, got %T: %v", err, err)
			}
			if rerr.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", rerr.Status, tt.wantStatus)
			}
			if rerr.Resource != "games" {
				t.Errorf("resource = %q, want games", rerr.Resource)
			}
			if rerr.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", rerr.Detail, tt.wantDetail)
			}
		})
	}
}

func TestGet_LongDetailKeepsWholeRunes(t *testing.T) {
	srv := apitest.New(t)
	text := "a" + strings.Repeat("é", 150)
	srv.Fail("games", http.StatusBadGateway, "text/html; charset=utf-8",
		"<html><body><h1>"+text+"</h1></body></html>")

	_, err := newClient(srv, "").Get(context.Background(), "games", nil)
	var rerr *balldontlie.RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RemoteError, got %T: %v", err, err)
	}
	if !utf8.ValidString(rerr.Detail) {
		t.Errorf("detail is not valid UTF-8: %q", rerr.Detail)
	}
	if len(rerr.Detail) > 200 || !strings.HasPrefix(text, rerr.Detail) || len(rerr.Detail) < 190 {
		t.Errorf("detail = %q (%d bytes)", rerr.Detail, len(rerr.Detail))
	}
}

func TestGet_Unauthorized(t *testing.T) {
	srv := apitest.New(t, apitest.WithKey("right"))
	client := newClient(srv, "wrong")

	_, err := client.Get(context.Background(), "teams", nil)
	var rerr *balldontlie.RemoteError
	if !errors.As(err, &rerr) || rerr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 RemoteError, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unauthorized") {
		t.Errorf("error should carry the API message: %v", err)
	}
}

func TestGet_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client := balldontlie.New(balldontlie.Config{BaseURL: addr})
	_, err := client.Get(context.Background(), "teams", nil)
	var rerr *balldontlie.RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if rerr.Status != 0 || rerr.Err == nil {
		t.Errorf("expected status 0 with a cause, got %+v", rerr)
	}
}

func TestGet_CancelledContext(t *testing.T) {
	srv := apitest.New(t)
	client := newClient(srv, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Get(ctx, "teams", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestTeamAndPlayer(t *testing.T) {
	srv := apitest.New(t)
	bos := apitest.Team(1, "Boston", "Celtics", "BOS", "East")
	srv.AddTeams(bos)
	srv.AddPlayers(apitest.Player(237, "Jayson", "Tatum", bos))
	client := newClient(srv, "")
	ctx := context.Background()

	team, err := client.Team(ctx, 1)
	if err != nil {
		t.Fatalf("Team: %v", err)
	}
	if team.DisplayName() != "Boston Celtics" {
		t.Errorf("unexpected team: %+v", team)
	}

	player, err := client.Player(ctx, 237)
	if err != nil {
		t.Fatalf("Player: %v", err)
	}
	if player.FullName() != "Jayson Tatum" || player.Team == nil || player.Team.ID != 1 {
		t.Errorf("unexpected player: %+v", player)
	}

	_, err = client.Team(ctx, 99)
	var rerr *balldontlie.RemoteError
	if !errors.As(err, &rerr) || !rerr.NotFound() {
		t.Errorf("expected not found, got %v", err)
	}
	if rerr != nil && rerr.Resource != "teams/99" {
		t.Errorf("resource = %q, want teams/99", rerr.Resource)
	}
}

func TestGame(t *testing.T) {
	srv := apitest.New(t)
	bos := apitest.Team(1, "Boston", "Celtics", "BOS", "East")
	den := apitest.Team(2, "Denver", "Nuggets", "DEN", "West")
	srv.AddGames(apitest.Final(10, "2024-11-01", 2024, bos, den, 110, 100))
	client := newClient(srv, "")

	game, err := client.Game(context.Background(), 10)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if !game.Played() || *game.HomeScore != 110 || game.VisitorTeam.Abbreviation != "DEN" {
		t.Errorf("unexpected game: %+v", game)
	}

	_, err = client.Game(context.Background(), 11)
	var rerr *balldontlie.RemoteError
	if !errors.As(err, &rerr) || !rerr.NotFound() {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestMetrics(t *testing.T) {
	srv := apitest.New(t)
	client := newClient(srv, "")
	ctx := context.Background()

	client.Get(ctx, "teams", nil)
	client.Get(ctx, "teams", nil)
	client.Team(ctx, 5)

	counter := client.RequestCounter()
	if got := testutil.ToFloat64(counter.WithLabelValues("teams", "ok")); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("teams", "status")); got != 1 {
		t.Errorf("status count = %v, want 1", got)
	}
	n, err := testutil.GatherAndCount(client.Registry(), "courtside_gateway_request_seconds")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Errorf("expected one latency series, got %d", n)
	}
}

func TestCursorDecoding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want balldontlie.Cursor
	}{
		{"number", `{"next_cursor": 25}`, "25"},
		{"string", `{"next_cursor": "abc"}`, "abc"},
		{"null", `{"next_cursor": null}`, ""},
		{"absent", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var meta balldontlie.Meta
			if err := json.Unmarshal([]byte(tt.raw), &meta); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if meta.NextCursor != tt.want {
				t.Errorf("cursor = %q, want %q", meta.NextCursor, tt.want)
			}
		})
	}
}

func TestMetaPage(t *testing.T) {
	next := 4
	tests := []struct {
		name string
		meta *balldontlie.Meta
		want int
	}{
		{"nil meta", nil, 0},
		{"more pages", &balldontlie.Meta{CurrentPage: 1, TotalPages: 3}, 2},
		{"last page", &balldontlie.Meta{CurrentPage: 3, TotalPages: 3}, 0},
		{"next_page only", &balldontlie.Meta{NextPage: &next}, 4},
		{"cursor meta", &balldontlie.Meta{NextCursor: "10"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.Page(); got != tt.want {
				t.Errorf("Page() = %d, want %d", got, tt.want)
			}
		})
	}
}
