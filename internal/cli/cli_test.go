package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/courtside/internal/apitest"
	"github.com/fortuna/courtside/internal/navigator"
)

const testKey = "test-key"

var (
	bos = apitest.Team(1, "Boston", "Celtics", "BOS", "East")
	den = apitest.Team(2, "Denver", "Nuggets", "DEN", "West")
	atl = apitest.Team(3, "Atlanta", "Hawks", "ATL", "East")
	old = apitest.Team(40, "Anderson", "Packers", "AND", "")
)

func newServer(t *testing.T) *apitest.Server {
	t.Helper()
	srv := apitest.New(t, apitest.WithKey(testKey))
	srv.AddTeams(bos, den, atl, old)
	srv.AddGames(
		apitest.Final(10, "2024-11-01", 2024, bos, den, 110, 100),
		apitest.Final(11, "2024-11-02", 2024, den, atl, 99, 101),
		apitest.Scheduled(12, "2024-11-02", 2024, bos, atl),
	)
	srv.AddPlayers(
		apitest.Player(1, "Jayson", "Tatum", bos),
		apitest.Player(2, "Jaylen", "Brown", bos),
		apitest.Player(3, "Nikola", "Jokic", den),
	)
	srv.AddStats(
		apitest.Line(10, apitest.Player(1, "Jayson", "Tatum", bos), 30, 8, 5),
		apitest.Line(10, apitest.Player(3, "Nikola", "Jokic", den), 28, 12, 10),
	)
	return srv
}

// run executes the command tree against srv with a fixed clock.
func run(t *testing.T, srv *apitest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BALLDONTLIE_API_KEY", "")
	t.Setenv("COURTSIDE_API_KEY", "")

	a := &app{now: func() time.Time {
		return time.Date(2024, time.November, 2, 20, 0, 0, 0, time.UTC)
	}}
	root := newRootCommand(a)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--base-url", srv.URL,
		"--prefix", srv.Prefix(),
		"--api-key", testKey,
		"--log-level", "error",
	}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
		not  []string
	}{
		{
			name: "scores for a day",
			args: []string{"scores", "--date", "2024-11-01"},
			want: []string{"Games on 2024-11-01 (2024-25 season)", "Denver Nuggets", "Boston Celtics", "110", "Final"},
		},
		{
			name: "scores default to today",
			args: []string{"scores"},
			want: []string{"Games on 2024-11-02", "Atlanta Hawks", "7:30 pm ET"},
		},
		{
			name: "standings",
			args: []string{"standings", "--season", "2024"},
			want: []string{"2024-25 regular season", "Eastern Conference", "Western Conference", "1.000", ".000"},
			not:  []string{"Anderson Packers"},
		},
		{
			name: "teams",
			args: []string{"teams"},
			want: []string{"Atlanta Hawks", "Boston Celtics", "Denver Nuggets"},
			not:  []string{"Anderson Packers"},
		},
		{
			name: "player search",
			args: []string{"players", "--search", "jok"},
			want: []string{"Nikola Jokic"},
			not:  []string{"Tatum"},
		},
		{
			name: "team detail",
			args: []string{"team", "1"},
			want: []string{"Boston Celtics", "Jayson Tatum", "Jaylen Brown"},
			not:  []string{"Jokic"},
		},
		{
			name: "player detail",
			args: []string{"player", "3"},
			want: []string{"Nikola Jokic", "Denver Nuggets"},
		},
		{
			name: "box score",
			args: []string{"boxscore", "10"},
			want: []string{"DEN 100 @ BOS 110 (Final)", "Top scorers", "Jayson Tatum", "30", "Nikola Jokic"},
		},
		{
			name: "day picker",
			args: []string{"days"},
			want: []string{"2024-10-31", "2024-11-02", "2024-11-04", "today"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, newServer(t), tt.args...)
			if err != nil {
				t.Fatalf("%v: %v", tt.args, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, not := range tt.not {
				if strings.Contains(out, not) {
					t.Errorf("output should not contain %q:\n%s", not, out)
				}
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing team", []string{"team", "99"}, "Nothing found for teams/99."},
		{"missing game", []string{"boxscore", "99"}, "Nothing found for games/99."},
		{"bad id", []string{"player", "abc"}, `invalid id "abc"`},
		{"bad date", []string{"scores", "--date", "11/02/2024"}, "invalid --date"},
		{"bad output", []string{"teams", "-o", "xml"}, `unknown output format "xml"`},
		{"nothing to export", []string{"export", "standings"}, "nothing to export"},
		{"bad redis url", []string{"export", "standings", "--season", "2024", "--redis-url", "not-a-url"}, "parsing redis url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, newServer(t), tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRejectedKey(t *testing.T) {
	srv := apitest.New(t, apitest.WithKey("another-key"))
	_, err := run(t, srv, "teams")
	if err == nil || err.Error() != "The stats service rejected the API key." {
		t.Errorf("error = %v", err)
	}
}

func TestJSONOutput(t *testing.T) {
	out, err := run(t, newServer(t), "scores", "--date", "2024-11-02", "-o", "json")
	if err != nil {
		t.Fatalf("scores: %v", err)
	}

	var data navigator.ScoresData
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if data.Date != "2024-11-02" || len(data.Games) != 2 {
		t.Errorf("unexpected data %+v", data)
	}
}

func TestExportStandingsMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courtside.prom")

	out, err := run(t, newServer(t), "export", "standings", "--season", "2024", "--metrics-file", path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "wrote request metrics to "+path) {
		t.Errorf("unexpected output %s", out)
	}

	metrics, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{
		`courtside_gateway_requests_total{outcome="ok",resource="teams"} 1`,
		`courtside_gateway_requests_total{outcome="ok",resource="games"} 1`,
		"courtside_gateway_request_seconds_bucket",
	} {
		if !strings.Contains(string(metrics), want) {
			t.Errorf("metrics missing %q:\n%s", want, metrics)
		}
	}
}

func TestExportBoxScoreMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courtside.prom")

	if _, err := run(t, newServer(t), "export", "boxscore", "10", "--metrics-file", path); err != nil {
		t.Fatalf("export: %v", err)
	}
	metrics, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(metrics), `resource="stats"`) {
		t.Errorf("metrics missing stats requests:\n%s", metrics)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, newServer(t), "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "courtside "+Version) {
		t.Errorf("unexpected version output %q", out)
	}
}
