package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"nflpickem/pool/internal/metrics"
	"nflpickem/pool/internal/models"

	"github.com/rs/zerolog/log"
)

// DefaultEndpoints is the ordered list of scoreboard mirrors. The first
// endpoint that returns a non-empty successful parse wins.
var DefaultEndpoints = []string{
	"https://site.api.espn.com/apis/site/v2/sports/football/nfl",
	"https://site.web.api.espn.com/apis/site/v2/sports/football/nfl",
}

// Client fetches and parses NFL scoreboard data from the ESPN site API.
// The feed is treated as untrusted: every field is optional and
// malformed-capable, and a single bad event never aborts a batch.
type Client struct {
	endpoints  []string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a feed client. Each endpoint attempt is bounded by
// the given timeout; there is no retry beyond the mirror list.
func NewClient(endpoints []string, timeout time.Duration) *Client {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	return &Client{
		endpoints: endpoints,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: "nfl-pickem-pool/1.0",
	}
}

// FetchWeek fetches all games for a scheduling coordinate, falling back
// through the mirror endpoints on timeout, error, or empty result.
func (c *Client) FetchWeek(ctx context.Context, week int, seasonType models.SeasonType, year int) ([]*models.Game, error) {
	params := map[string]string{
		"week":       strconv.Itoa(week),
		"seasontype": strconv.Itoa(int(seasonType)),
		"year":       strconv.Itoa(year),
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		sb, err := c.getScoreboard(ctx, endpoint, params)
		if err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Str("endpoint", endpoint).
				Int("week", week).
				Msg("Scoreboard fetch failed, trying next endpoint")
			continue
		}

		games := c.parseEvents(sb.Events)
		if len(games) == 0 {
			lastErr = fmt.Errorf("endpoint %s returned no parseable events", endpoint)
			log.Warn().
				Str("endpoint", endpoint).
				Int("week", week).
				Msg("Scoreboard returned no events, trying next endpoint")
			continue
		}

		log.Info().
			Int("week", week).
			Int("year", year).
			Int("count", len(games)).
			Msg("Week games fetched")
		return games, nil
	}

	return nil, fmt.Errorf("all feed endpoints failed for week %d: %w", week, lastErr)
}

// CurrentWeek looks up the league's current scheduling coordinate. An
// empty scoreboard means offseason; the caller gets week 1 of the
// regular season with the year adjusted to the season most recently
// played.
func (c *Client) CurrentWeek(ctx context.Context) (models.WeekInfo, error) {
	var lastErr error
	for _, endpoint := range c.endpoints {
		sb, err := c.getScoreboard(ctx, endpoint, nil)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Str("endpoint", endpoint).Msg("Current week fetch failed, trying next endpoint")
			continue
		}

		now := time.Now()
		if len(sb.Events) == 0 {
			log.Info().Msg("No current games in scoreboard, assuming offseason")
			year := now.Year()
			if now.Month() < time.September {
				year--
			}
			return models.WeekInfo{Week: 1, SeasonType: models.Regular, Year: year}, nil
		}

		info := models.WeekInfo{
			Week:       sb.Week.Number,
			SeasonType: models.SeasonType(sb.Season.Type),
			Year:       sb.Season.Year,
		}
		if info.Week == 0 {
			info.Week = 1
		}
		if info.SeasonType == 0 {
			info.SeasonType = models.Regular
		}
		if info.Year == 0 {
			info.Year = now.Year()
		}

		log.Info().
			Int("week", info.Week).
			Int("season_type", int(info.SeasonType)).
			Int("year", info.Year).
			Msg("Current NFL week fetched")
		return info, nil
	}

	return models.WeekInfo{}, fmt.Errorf("all feed endpoints failed for current week: %w", lastErr)
}

// parseEvents converts raw events to canonical records. Events that
// fail to parse are logged and dropped; the batch continues.
func (c *Client) parseEvents(events []json.RawMessage) []*models.Game {
	now := time.Now()
	games := make([]*models.Game, 0, len(events))
	for _, raw := range events {
		g, err := parseEvent(raw, now)
		if err != nil {
			metrics.RecordParseError()
			log.Warn().Err(err).Msg("Dropping unparseable event")
			continue
		}
		games = append(games, g)
	}
	return games
}

func (c *Client) getScoreboard(ctx context.Context, endpoint string, params map[string]string) (*scoreboardResponse, error) {
	start := time.Now()

	url := fmt.Sprintf("%s/scoreboard", endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordFeedCall(endpoint, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordFeedCall(endpoint, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to read feed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RecordFeedCall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var sb scoreboardResponse
	if err := json.Unmarshal(body, &sb); err != nil {
		metrics.RecordFeedCall(endpoint, "malformed", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to decode scoreboard: %w", err)
	}

	metrics.RecordFeedCall(endpoint, "ok", time.Since(start).Seconds())
	log.Debug().
		Str("endpoint", endpoint).
		Int("events", len(sb.Events)).
		Int("size", len(body)).
		Msg("Scoreboard fetched")
	return &sb, nil
}
