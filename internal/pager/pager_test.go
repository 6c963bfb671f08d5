package pager_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/fortuna/courtside/internal/apitest"
	"github.com/fortuna/courtside/internal/balldontlie"
	"github.com/fortuna/courtside/internal/nba"
	"github.com/fortuna/courtside/internal/pager"
)

type record struct {
	ID int `json:"id"`
}

// scriptedGetter replays one envelope (or error) per call.
type scriptedGetter struct {
	pages   []*balldontlie.Envelope
	errs    map[int]error
	calls   int
	queries []url.Values
}

func (g *scriptedGetter) Get(ctx context.Context, resource string, params url.Values) (*balldontlie.Envelope, error) {
	call := g.calls
	g.calls++
	copied := url.Values{}
	for k, v := range params {
		copied[k] = append([]string(nil), v...)
	}
	g.queries = append(g.queries, copied)
	if err, ok := g.errs[call]; ok {
		return nil, err
	}
	if call >= len(g.pages) {
		return nil, fmt.Errorf("unexpected call %d", call)
	}
	return g.pages[call], nil
}

func envelope(t *testing.T, ids []int, meta *balldontlie.Meta) *balldontlie.Envelope {
	t.Helper()
	recs := make([]record, len(ids))
	for i, id := range ids {
		recs[i] = record{ID: id}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return &balldontlie.Envelope{Data: data, Meta: meta}
}

func ids(recs []record) []int {
	out := make([]int, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFetchAll_ThreePages(t *testing.T) {
	g := &scriptedGetter{pages: []*balldontlie.Envelope{
		envelope(t, []int{1, 2}, &balldontlie.Meta{CurrentPage: 1, TotalPages: 3}),
		envelope(t, []int{3, 4}, &balldontlie.Meta{CurrentPage: 2, TotalPages: 3}),
		envelope(t, []int{5}, &balldontlie.Meta{CurrentPage: 3, TotalPages: 3}),
	}}
	p := pager.New(g, pager.WithPerPage(2))

	got, err := pager.FetchAll[record](context.Background(), p, "games", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{1, 2, 3, 4, 5}; !equalInts(ids(got), want) {
		t.Errorf("records = %v, want %v", ids(got), want)
	}
	if g.calls != 3 {
		t.Errorf("gateway called %d times, want 3", g.calls)
	}
	for i, q := range g.queries {
		if q.Get("per_page") != "2" {
			t.Errorf("call %d: per_page = %q", i, q.Get("per_page"))
		}
	}
	if g.queries[1].Get("page") != "2" || g.queries[2].Get("page") != "3" {
		t.Errorf("unexpected page params: %v", g.queries)
	}
}

func TestFetchAll_FollowsCursor(t *testing.T) {
	g := &scriptedGetter{pages: []*balldontlie.Envelope{
		envelope(t, []int{1, 2}, &balldontlie.Meta{NextCursor: "2"}),
		envelope(t, []int{2, 3}, &balldontlie.Meta{NextCursor: "abc"}),
		envelope(t, []int{4}, &balldontlie.Meta{}),
	}}
	p := pager.New(g)

	got, err := pager.FetchAll[record](context.Background(), p, "stats", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// duplicates across pages are kept
	if want := []int{1, 2, 2, 3, 4}; !equalInts(ids(got), want) {
		t.Errorf("records = %v, want %v", ids(got), want)
	}
	if g.queries[1].Get("cursor") != "2" || g.queries[2].Get("cursor") != "abc" {
		t.Errorf("cursor not echoed: %v", g.queries)
	}
	if g.queries[0].Get("cursor") != "" {
		t.Errorf("first call should carry no cursor")
	}
}

func TestFetchAll_BareListAndNoMeta(t *testing.T) {
	g := &scriptedGetter{pages: []*balldontlie.Envelope{envelope(t, []int{9}, nil)}}
	got, err := pager.FetchAll[record](context.Background(), pager.New(g), "teams", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || g.calls != 1 {
		t.Errorf("expected a single call and record, got %d calls %v", g.calls, got)
	}
}

func TestFetchAll_Exhaustion(t *testing.T) {
	tests := []struct {
		name     string
		pages    []*balldontlie.Envelope
		maxPages int
		calls    int
	}{
		{
			name: "repeated cursor",
			pages: []*balldontlie.Envelope{
				envelope(t, []int{1}, &balldontlie.Meta{NextCursor: "7"}),
				envelope(t, []int{2}, &balldontlie.Meta{NextCursor: "7"}),
			},
			calls: 2,
		},
		{
			name: "page does not advance",
			pages: []*balldontlie.Envelope{
				envelope(t, []int{1}, &balldontlie.Meta{CurrentPage: 1, TotalPages: 4}),
				envelope(t, []int{2}, &balldontlie.Meta{CurrentPage: 1, TotalPages: 4}),
			},
			calls: 2,
		},
		{
			name: "too many pages",
			pages: []*balldontlie.Envelope{
				envelope(t, []int{1}, &balldontlie.Meta{NextCursor: "a"}),
				envelope(t, []int{2}, &balldontlie.Meta{NextCursor: "b"}),
				envelope(t, []int{3}, &balldontlie.Meta{NextCursor: "c"}),
			},
			maxPages: 2,
			calls:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &scriptedGetter{pages: tt.pages}
			p := pager.New(g, pager.WithMaxPages(tt.maxPages))

			got, err := pager.FetchAll[record](context.Background(), p, "games", nil)
			if got != nil {
				t.Errorf("expected no partial result, got %v", got)
			}
			var exhausted *pager.PaginationExhaustionError
			if !errors.As(err, &exhausted) {
				t.Fatalf("expected PaginationExhaustionError, got %v", err)
			}
			var remote *balldontlie.RemoteError
			if !errors.As(err, &remote) || remote.Resource != "games" {
				t.Errorf("exhaustion should also be a RemoteError, got %v", err)
			}
			if g.calls != tt.calls {
				t.Errorf("gateway called %d times, want %d", g.calls, tt.calls)
			}
		})
	}
}

func TestFetchAll_PropagatesFirstError(t *testing.T) {
	remote := &balldontlie.RemoteError{Status: http.StatusInternalServerError, Resource: "games"}
	g := &scriptedGetter{
		pages: []*balldontlie.Envelope{
			envelope(t, []int{1}, &balldontlie.Meta{NextCursor: "1"}),
		},
		errs: map[int]error{1: remote},
	}

	got, err := pager.FetchAll[record](context.Background(), pager.New(g), "games", nil)
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}
	if err != remote {
		t.Errorf("expected the gateway error unchanged, got %v", err)
	}
}

func TestFetchAll_DoesNotMutateParams(t *testing.T) {
	g := &scriptedGetter{pages: []*balldontlie.Envelope{
		envelope(t, []int{1}, &balldontlie.Meta{NextCursor: "1"}),
		envelope(t, []int{2}, &balldontlie.Meta{}),
	}}
	params := url.Values{"seasons[]": {"2024"}}

	if _, err := pager.FetchAll[record](context.Background(), pager.New(g), "games", params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 1 || params.Get("seasons[]") != "2024" {
		t.Errorf("params mutated: %v", params)
	}
	if g.queries[1].Get("seasons[]") != "2024" {
		t.Errorf("base params dropped on later pages: %v", g.queries[1])
	}
}

func TestFetchAll_AgainstFakeAPI(t *testing.T) {
	bos := apitest.Team(1, "Boston", "Celtics", "BOS", "East")
	den := apitest.Team(2, "Denver", "Nuggets", "DEN", "West")

	for _, mode := range []apitest.Pagination{apitest.Cursor, apitest.Pages} {
		t.Run(fmt.Sprintf("mode %d", mode), func(t *testing.T) {
			srv := apitest.New(t)
			srv.SetPagination(mode)
			for i := 1; i <= 5; i++ {
				srv.AddGames(apitest.Final(i, "2024-11-01", 2024, bos, den, 100+i, 90))
			}
			client := balldontlie.New(balldontlie.Config{BaseURL: srv.URL, Prefix: srv.Prefix()})
			p := pager.New(client, pager.WithPerPage(2))

			games, err := pager.FetchAll[nba.Game](context.Background(), p, "games", nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(games) != 5 {
				t.Fatalf("expected 5 games, got %d", len(games))
			}
			for i, g := range games {
				if g.ID != i+1 {
					t.Errorf("game %d has id %d", i, g.ID)
				}
			}
			if srv.Hits("games") != 3 {
				t.Errorf("expected 3 requests, got %d", srv.Hits("games"))
			}
		})
	}
}

func TestFetchPage(t *testing.T) {
	g := &scriptedGetter{pages: []*balldontlie.Envelope{
		envelope(t, []int{1, 2}, &balldontlie.Meta{NextCursor: "2"}),
	}}
	got, err := pager.FetchPage[record](context.Background(), pager.New(g, pager.WithPerPage(2)), "players", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || g.calls != 1 {
		t.Errorf("expected one page of 2, got %v after %d calls", got, g.calls)
	}
}
