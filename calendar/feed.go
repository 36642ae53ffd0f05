package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	defaultFeedBaseURL = "https://date.nager.at"
	feedHTTPTimeout    = 10 * time.Second
)

// FeedClient fetches public holidays from a Nager.Date-compatible feed.
// Responses are cached per year; when the feed is unreachable the built-in
// dataset is returned instead so calculations never block on the network.
type FeedClient struct {
	baseURL    string
	country    string
	httpClient *http.Client
	logger     *zap.Logger

	cacheMu sync.RWMutex
	cache   map[int][]Holiday
}

// feedHoliday is the raw Nager.Date PublicHolidays entry.
type feedHoliday struct {
	Date      string   `json:"date"` // YYYY-MM-DD
	LocalName string   `json:"localName"`
	Name      string   `json:"name"`
	Global    bool     `json:"global"`
	Counties  []string `json:"counties"` // e.g. "CA-ON"
	Types     []string `json:"types"`    // "Public", "Bank", "Observance", ...
}

// NewFeedClient creates a feed client for the given country code (e.g. "CA").
// baseURL may be empty to use the public Nager.Date endpoint.
func NewFeedClient(baseURL, country string, logger *zap.Logger) *FeedClient {
	if baseURL == "" {
		baseURL = defaultFeedBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedClient{
		baseURL:    baseURL,
		country:    country,
		httpClient: &http.Client{Timeout: feedHTTPTimeout},
		logger:     logger,
		cache:      make(map[int][]Holiday),
	}
}

// Holidays returns all holidays for a year, from cache, the feed, or the
// built-in dataset as a last resort.
func (c *FeedClient) Holidays(ctx context.Context, year int) ([]Holiday, error) {
	c.cacheMu.RLock()
	cached, ok := c.cache[year]
	c.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	holidays, err := c.fetchYear(ctx, year)
	if err != nil {
		c.logger.Warn("holiday feed unavailable, using built-in dataset",
			zap.Int("year", year),
			zap.Error(err))
		return DefaultHolidays(year), nil
	}

	c.cacheMu.Lock()
	c.cache[year] = holidays
	c.cacheMu.Unlock()
	return holidays, nil
}

// HolidaysForProvince returns the year's holidays scoped to one province.
func (c *FeedClient) HolidaysForProvince(ctx context.Context, year int, province string) ([]Holiday, error) {
	all, err := c.Holidays(ctx, year)
	if err != nil {
		return nil, err
	}
	return FilterProvince(all, province), nil
}

func (c *FeedClient) fetchYear(ctx context.Context, year int) ([]Holiday, error) {
	url := fmt.Sprintf("%s/api/v3/PublicHolidays/%d/%s", c.baseURL, year, c.country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holiday feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("holiday feed returned %d: %s", resp.StatusCode, body)
	}

	var raw []feedHoliday
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding holiday feed response: %w", err)
	}

	holidays := make([]Holiday, 0, len(raw))
	for _, fh := range raw {
		date, err := ParseDate(fh.Date)
		if err != nil {
			c.logger.Warn("skipping feed entry with bad date",
				zap.String("date", fh.Date),
				zap.String("name", fh.Name))
			continue
		}
		name := fh.LocalName
		if name == "" {
			name = fh.Name
		}
		if fh.Global {
			holidays = append(holidays, Holiday{
				Date:           date,
				Name:           name,
				Classification: ClassBank,
			})
			continue
		}
		// Regional entries are expanded into one holiday per county so the
		// (date, province) identity holds.
		for _, county := range fh.Counties {
			holidays = append(holidays, Holiday{
				Date:           date,
				Name:           name,
				Province:       trimCountry(county, c.country),
				Classification: ClassProvincial,
			})
		}
	}

	c.logger.Info("holiday feed fetched",
		zap.Int("year", year),
		zap.Int("holidays", len(holidays)))
	return holidays, nil
}

// trimCountry strips the "CA-" prefix from Nager.Date county codes.
func trimCountry(county, country string) string {
	prefix := country + "-"
	if len(county) > len(prefix) && county[:len(prefix)] == prefix {
		return county[len(prefix):]
	}
	return county
}
