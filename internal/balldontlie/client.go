package balldontlie

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fortuna/courtside/internal/nba"
)

const (
	DefaultBaseURL = "https://api.balldontlie.io"
	DefaultPrefix  = "/nba/v1"
	DefaultTimeout = 15 * time.Second

	// maxBodyBytes bounds how much of a response is read into memory.
	maxBodyBytes = 16 << 20
)

// Config configures a Client. Zero values fall back to the defaults above.
type Config struct {
	BaseURL    string
	Prefix     string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	// Registry receives the client's request metrics. A private registry is
	// created when nil.
	Registry *prometheus.Registry
}

// Client issues single read requests against the stats API.
// It does not retry and does not cache.
type Client struct {
	baseURL    string
	prefix     string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	registry   *prometheus.Registry
	metrics    *metrics
}

// New creates a new API client
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	prefix = "/" + strings.Trim(prefix, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	return &Client{
		baseURL:    baseURL,
		prefix:     prefix,
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger.With("component", "gateway"),
		registry:   registry,
		metrics:    newMetrics(registry),
	}
}

// Registry returns the registry holding the client's request metrics.
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// Get performs one GET of resource with the given query parameters and
// returns the decoded body. Any non-2xx status or undecodable body is
// reported as a *RemoteError.
func (c *Client) Get(ctx context.Context, resource string, params url.Values) (*Envelope, error) {
	endpoint := c.endpoint(resource, params)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &RemoteError{Resource: resource, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		// The API expects the raw key, no "Bearer" scheme.
		req.Header.Set("Authorization", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(resource, outcomeTransport, time.Since(start))
		c.logger.Warn("request failed", "resource", resource, "error", err)
		return nil, &RemoteError{Resource: resource, Err: fmt.Errorf("making request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.observe(resource, outcomeTransport, time.Since(start))
		return nil, &RemoteError{Status: resp.StatusCode, Resource: resource, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.observe(resource, outcomeStatus, time.Since(start))
		rerr := &RemoteError{
			Status:   resp.StatusCode,
			Resource: resource,
			Detail:   errorDetail(resp.Header.Get("Content-Type"), body),
		}
		c.logger.Warn("non-success response", "resource", resource, "status", resp.StatusCode, "detail", rerr.Detail)
		return nil, rerr
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		c.metrics.observe(resource, outcomeMalformed, time.Since(start))
		c.logger.Warn("malformed envelope", "resource", resource, "error", err)
		return nil, &RemoteError{Status: resp.StatusCode, Resource: resource, Err: err}
	}

	c.metrics.observe(resource, outcomeOK, time.Since(start))
	c.logger.Debug("request complete", "resource", resource, "status", resp.StatusCode, "elapsed", time.Since(start))
	return env, nil
}

// Team fetches a single team by id.
func (c *Client) Team(ctx context.Context, id int) (*nba.Team, error) {
	env, err := c.Get(ctx, "teams/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	return DecodeOne[nba.Team](env, "teams")
}

// Player fetches a single player by id.
func (c *Client) Player(ctx context.Context, id int) (*nba.Player, error) {
	env, err := c.Get(ctx, "players/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	return DecodeOne[nba.Player](env, "players")
}

// Game fetches a single game by id.
func (c *Client) Game(ctx context.Context, id int) (*nba.Game, error) {
	env, err := c.Get(ctx, "games/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	return DecodeOne[nba.Game](env, "games")
}

func (c *Client) endpoint(resource string, params url.Values) string {
	u := c.baseURL + c.prefix + "/" + strings.TrimLeft(resource, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}
