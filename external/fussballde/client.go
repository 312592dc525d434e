package fussballde

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/talentkick/fixturesync/internal/platform/logging"
	"github.com/talentkick/fixturesync/internal/platform/resilience"
	"github.com/talentkick/fixturesync/internal/usecase"
)

const (
	// The relay proxies the public fixture widget; the widget URL is
	// passed through as a query parameter and the relay token rides in
	// a header so it never appears in the URL.
	defaultRelayBaseURL = "https://relay.talentkick.app/api/fussballde"
	providerWidgetURL   = "https://www.fussball.de/ajax.team.next.games/-/team-id/%s"

	tokenHeader = "X-API-Token"
)

var errRelayTransient = crerr.New("fixture relay transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches upcoming fixtures for one team through the relay
// service. A fetch that fails after retries surfaces as an error so
// the caller can record a per-team warning; the sync batch, not the
// client, decides that one broken team page must not abort the run.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultRelayBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// ExtractTeamIdentifier implements usecase.FixtureProvider.
func (c *Client) ExtractTeamIdentifier(profileURL string) (string, bool) {
	return ExtractTeamID(profileURL)
}

type fixtureEnvelope struct {
	Success bool             `json:"success"`
	Error   string           `json:"error"`
	Data    []map[string]any `json:"data"`
}

// FetchUpcomingFixtures loads the next scheduled matches for a
// provider team. Rows without a recognizable calendar date are
// dropped. Transport failures, non-2xx relay responses, and
// undecodable payloads surface as errors after retries; an off-season
// team is only ever an empty successful envelope. Token material never
// appears in returned error text.
func (c *Client) FetchUpcomingFixtures(ctx context.Context, teamID, token string) ([]usecase.ExternalFixture, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("team identifier must not be empty")
	}

	raw, err := c.fetchRaw(ctx, teamID, token)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if crerr.Is(err, usecase.ErrDependencyUnavailable) {
			return nil, err
		}
		c.logger.WarnContext(ctx, "fixture fetch failed",
			"team_id", teamID,
			"error", sanitizeSensitiveText(err.Error(), token),
		)
		return nil, fmt.Errorf("fetch team %s: %s", teamID, sanitizeSensitiveText(err.Error(), token))
	}

	var envelope fixtureEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		c.logger.WarnContext(ctx, "fixture payload is not valid JSON", "team_id", teamID, "error", err)
		return nil, fmt.Errorf("decode fixture payload for team %s: %v", teamID, err)
	}
	if !envelope.Success {
		relayError := sanitizeSensitiveText(envelope.Error, token)
		c.logger.WarnContext(ctx, "relay reported an unsuccessful fixture lookup",
			"team_id", teamID,
			"relay_error", relayError,
		)
		if relayError == "" {
			relayError = "relay reported an unsuccessful lookup"
		}
		return nil, fmt.Errorf("relay lookup for team %s: %s", teamID, relayError)
	}

	out := make([]usecase.ExternalFixture, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		matchDate := NormalizeDate(stringByAlias(item, dateAliases))
		if matchDate == "" {
			c.logger.DebugContext(ctx, "skip fixture row without a usable date", "team_id", teamID)
			continue
		}

		out = append(out, usecase.ExternalFixture{
			MatchDate:   matchDate,
			MatchTime:   NormalizeTime(stringByAlias(item, timeAliases)),
			HomeTeam:    stringByAlias(item, homeTeamAliases),
			AwayTeam:    stringByAlias(item, awayTeamAliases),
			Location:    stringByAlias(item, locationAliases),
			Competition: stringByAlias(item, competitionAliases),
			Matchday:    stringByAlias(item, matchdayAliases),
			Result:      stringByAlias(item, resultAliases),
			SourceURL:   stringByAlias(item, sourceURLAliases),
		})
	}

	return out, nil
}

func (c *Client) fetchRaw(ctx context.Context, teamID, token string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fixture relay circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: fixture relay is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	values.Set("url", fmt.Sprintf(providerWidgetURL, url.PathEscape(teamID)))
	fullURL := c.baseURL + "?" + values.Encode()

	// Concurrent workers asking for the same team share one request.
	out, err, _ := c.flight.Do(teamID, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL, token)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errRelayTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL, token string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set(tokenHeader, token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errRelayTransient, sanitizeSensitiveText(err.Error(), token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errRelayTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: relay status=%d body=%s", errRelayTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("relay status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("relay request failed")
	}
	return nil, lastErr
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return value
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func abbreviateBody(body []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
