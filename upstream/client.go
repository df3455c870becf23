package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KaueAmbrosio/WebSiteEsporte/scores"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultBaseURL  = "https://www.thesportsdb.com/api/v1/json"
	DefaultAPIKey   = "1"
	DefaultLeagueID = "4328"
	DefaultTimeout  = 10 * time.Second

	// longest body excerpt carried in an UpstreamError
	maxErrorBody = 256
)

type Config struct {
	// Base URL of the provider, without the API key segment.
	BaseURL string
	// API key; it is part of the URL path for this provider.
	APIKey string
	// League and season are fixed for the lifetime of the client.
	LeagueID string
	Season   string
	// Timeout for a single request. DefaultTimeout is used if zero.
	Timeout time.Duration
	// HTTP client to use; one is created if nil.
	HTTPClient *http.Client
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

// Client fetches matches and standings from the sports data provider.
type Client struct {
	baseURL    string
	apiKey     string
	leagueID   string
	season     string
	httpClient *http.Client
	log        zerolog.Logger
}

// UpstreamError is returned when the provider answers with a non-2xx
// status, cannot be reached, or sends a body that does not parse.
// StatusCode is zero when no HTTP status is involved.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream error: status %d: %s", e.StatusCode, e.Message)
	}
	return "upstream error: " + e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewClient creates a provider client.
func NewClient(config Config) *Client {
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = log.Logger
	} else {
		logger = *config.Logger
	}
	c := &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		leagueID:   config.LeagueID,
		season:     config.Season,
		httpClient: config.HTTPClient,
		log:        logger.With().Str("component", "upstream").Logger(),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.apiKey == "" {
		c.apiKey = DefaultAPIKey
	}
	if c.leagueID == "" {
		c.leagueID = DefaultLeagueID
	}
	if c.httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c
}

// FetchMatches returns the league's upcoming and recent events.
func (c *Client) FetchMatches(ctx context.Context) ([]scores.MatchRecord, error) {
	var env eventsEnvelope
	if err := c.get(ctx, "eventsnextleague.php", url.Values{"id": {c.leagueID}}, &env); err != nil {
		return nil, err
	}
	return env.records(), nil
}

// FetchStandings returns the league table for the configured season.
func (c *Client) FetchStandings(ctx context.Context) ([]scores.StandingsRow, error) {
	params := url.Values{"l": {c.leagueID}}
	if c.season != "" {
		params.Set("s", c.season)
	}
	var env tableEnvelope
	if err := c.get(ctx, "lookuptable.php", params, &env); err != nil {
		return nil, err
	}
	return env.rows(), nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	return c.baseURL + "/" + url.PathEscape(c.apiKey) + "/" + path + "?" + params.Encode()
}

// get performs a GET request and decodes the JSON body into v.
// Any failure is returned as an *UpstreamError.
func (c *Client) get(ctx context.Context, path string, params url.Values, v interface{}) error {
	uri := c.endpoint(path, params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return &UpstreamError{Message: "could not create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("path", path).Msg("Requesting content from upstream")
	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Message: err.Error(), Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return &UpstreamError{StatusCode: res.StatusCode, Message: "could not read body", Err: err}
	}
	c.log.Trace().
		Str("path", path).
		Int("status", res.StatusCode).
		Dur("took", time.Since(start)).
		Msgf("Got response from upstream (%d bytes)", len(body))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &UpstreamError{StatusCode: res.StatusCode, Message: excerpt(body)}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &UpstreamError{Message: "invalid JSON: " + err.Error(), Err: err}
	}
	return nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	if s == "" {
		s = "empty body"
	}
	return s
}
