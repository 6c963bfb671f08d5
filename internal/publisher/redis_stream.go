// Package publisher exports computed standings and box scores onto Redis
// streams for downstream consumers.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/nba"
	"github.com/fortuna/courtside/internal/schedule"
	"github.com/fortuna/courtside/internal/standings"
)

const (
	StandingsStream = "standings.basketball_nba"
	BoxScoresStream = "boxscores.basketball_nba"
)

// StreamClient is the part of *redis.Client the publisher needs.
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisPublisher publishes events to Redis streams
type RedisPublisher struct {
	client StreamClient
	now    func() time.Time
}

// NewStreamPublisher wraps an existing client.
func NewStreamPublisher(client StreamClient) *RedisPublisher {
	return &RedisPublisher{client: client, now: time.Now}
}

// NewRedisPublisher connects to redisURL and checks the connection.
func NewRedisPublisher(ctx context.Context, redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewStreamPublisher(client), nil
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// StandingsRow is one team in a published standings event.
type StandingsRow struct {
	Rank         int     `json:"rank"`
	TeamID       int     `json:"team_id"`
	Abbreviation string  `json:"abbreviation"`
	Name         string  `json:"name"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Pct          float64 `json:"pct"`
	GamesBack    float64 `json:"games_back"`
}

// StandingsEvent is the payload written to StandingsStream.
type StandingsEvent struct {
	Season      int            `json:"season"`
	SeasonLabel string         `json:"season_label"`
	East        []StandingsRow `json:"east"`
	West        []StandingsRow `json:"west"`
}

// NewStandingsEvent flattens a table into its published form.
func NewStandingsEvent(t *standings.Table) StandingsEvent {
	ev := StandingsEvent{
		Season:      t.Season,
		SeasonLabel: schedule.SeasonLabel(t.Season),
		East:        []StandingsRow{},
		West:        []StandingsRow{},
	}
	for _, e := range t.Entries() {
		row := StandingsRow{
			Rank:         e.Rank,
			TeamID:       e.Team.ID,
			Abbreviation: e.Team.Abbreviation,
			Name:         e.Team.DisplayName(),
			Wins:         e.Wins,
			Losses:       e.Losses,
			Pct:          e.Pct,
			GamesBack:    e.GamesBack,
		}
		if e.Conference == nba.East {
			ev.East = append(ev.East, row)
		} else {
			ev.West = append(ev.West, row)
		}
	}
	return ev
}

// PublishStandings publishes a season's standings and returns the stream entry id.
func (rp *RedisPublisher) PublishStandings(ctx context.Context, t *standings.Table) (string, error) {
	return rp.publish(ctx, StandingsStream, NewStandingsEvent(t))
}

// PublishBoxScore publishes one game's box score summary.
func (rp *RedisPublisher) PublishBoxScore(ctx context.Context, s *boxscore.Summary) (string, error) {
	return rp.publish(ctx, BoxScoresStream, s)
}

func (rp *RedisPublisher) publish(ctx context.Context, stream string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding %s event: %w", stream, err)
	}

	id, err := rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": rp.now().Unix(),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("publishing to %s: %w", stream, err)
	}
	return id, nil
}
