package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"matchstats/internal/logging"
	"matchstats/internal/observability"
	"matchstats/internal/ratelimit"
)

const (
	// API base URLs
	americasBaseURL = "https://americas.api.riotgames.com"
	na1BaseURL      = "https://na1.api.riotgames.com"

	rankedSoloQueue = "RANKED_SOLO_5x5"

	defaultMatchCount  = 20
	defaultQueueID     = 420 // ranked solo/duo
	defaultHTTPTimeout = 30 * time.Second
)

// Metric labels per endpoint.
const (
	endpointAccount  = "account"
	endpointMatchIDs = "match_ids"
	endpointMatch    = "match"
	endpointTimeline = "timeline"
	endpointLeague   = "league"
)

// Client is a rate-limited Riot API client. Every request, including match id
// listing, takes its own permit from the shared limiter.
type Client struct {
	apiKey     string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	metrics    *observability.Metrics

	accountBaseURL  string
	matchBaseURL    string
	platformBaseURL string

	matchCount  int
	queueID     int
	seasonStart int64 // unix seconds, 0 disables the lower bound
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithAccountBaseURL sets the regional base URL of the account-v1 API.
func WithAccountBaseURL(u string) ClientOption {
	return func(c *Client) { c.accountBaseURL = u }
}

// WithMatchBaseURL sets the regional base URL of the match-v5 API.
func WithMatchBaseURL(u string) ClientOption {
	return func(c *Client) { c.matchBaseURL = u }
}

// WithPlatformBaseURL sets the platform base URL (na1, euw1, ...) of the league-v4 API.
func WithPlatformBaseURL(u string) ClientOption {
	return func(c *Client) { c.platformBaseURL = u }
}

// WithMatchCount bounds how many recent match ids are listed.
func WithMatchCount(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.matchCount = n
		}
	}
}

// WithQueueID restricts listed matches to one queue.
func WithQueueID(id int) ClientOption {
	return func(c *Client) { c.queueID = id }
}

// WithSeasonStart only lists matches played after the given unix time.
func WithSeasonStart(epochSeconds int64) ClientOption {
	return func(c *Client) { c.seasonStart = epochSeconds }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithMetrics records request outcomes and latencies.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a new Riot API client
func NewClient(apiKey string, limiter *ratelimit.Limiter, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("riot API key cannot be empty")
	}
	if limiter == nil {
		return nil, fmt.Errorf("riot client requires a rate limiter")
	}

	c := &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		limiter:         limiter,
		accountBaseURL:  americasBaseURL,
		matchBaseURL:    americasBaseURL,
		platformBaseURL: na1BaseURL,
		matchCount:      defaultMatchCount,
		queueID:         defaultQueueID,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// doRequest waits for a permit, performs the GET and decodes a 200 body into result.
// Non-200 statuses become an *APIError; nothing is retried here.
func (c *Client) doRequest(ctx context.Context, endpoint, rawURL string, result interface{}) error {
	logger := logging.Logger()

	if err := c.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ratelimit.ErrTimeout) {
			c.metrics.RateLimiterTimeout()
		}
		return fmt.Errorf("acquire permit for %s: %w", endpoint, err)
	}

	start := time.Now()
	err := c.get(ctx, endpoint, rawURL, result)
	c.metrics.ObserveRemote(endpoint, outcomeLabel(err), time.Since(start))

	var apiErr *APIError
	if errors.As(err, &apiErr) && !errors.Is(err, ErrNotFound) {
		logger.Warnf("riot API returned %d for %s", apiErr.StatusCode, endpoint)
	}
	return err
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Kind:       classifyStatus(resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// GetAccountByRiotID fetches account info by Riot ID (gameName#tagLine).
// Returns an error matching ErrNotFound when the account does not exist.
func (c *Client) GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*AccountResponse, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.accountBaseURL, url.PathEscape(gameName), url.PathEscape(tagLine))

	var account AccountResponse
	if err := c.doRequest(ctx, endpointAccount, u, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListRecentMatchIDs fetches the player's most recent match ids, newest first.
func (c *Client) ListRecentMatchIDs(ctx context.Context, puuid string) ([]string, error) {
	q := url.Values{}
	q.Set("queue", strconv.Itoa(c.queueID))
	q.Set("start", "0")
	q.Set("count", strconv.Itoa(c.matchCount))
	if c.seasonStart > 0 {
		q.Set("startTime", strconv.FormatInt(c.seasonStart, 10))
	}
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?%s",
		c.matchBaseURL, url.PathEscape(puuid), q.Encode())

	var matchIDs []string
	if err := c.doRequest(ctx, endpointMatchIDs, u, &matchIDs); err != nil {
		return nil, err
	}
	return matchIDs, nil
}

// GetMatch fetches match details
func (c *Client) GetMatch(ctx context.Context, matchID string) (*MatchResponse, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.matchBaseURL, url.PathEscape(matchID))

	var match MatchResponse
	if err := c.doRequest(ctx, endpointMatch, u, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// GetTimeline fetches match timeline
func (c *Client) GetTimeline(ctx context.Context, matchID string) (*TimelineResponse, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s/timeline", c.matchBaseURL, url.PathEscape(matchID))

	var timeline TimelineResponse
	if err := c.doRequest(ctx, endpointTimeline, u, &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

// GetSoloQueueEntry fetches the player's ranked solo/duo league entry.
// It returns nil without error when the player is unranked in that queue.
func (c *Client) GetSoloQueueEntry(ctx context.Context, puuid string) (*LeagueEntry, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", c.platformBaseURL, url.PathEscape(puuid))

	var entries []LeagueEntry
	if err := c.doRequest(ctx, endpointLeague, u, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].QueueType == rankedSoloQueue {
			return &entries[i], nil
		}
	}
	return nil, nil
}
