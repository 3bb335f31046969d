// Package weather is the OpenWeatherMap client used to geocode trap sites
// and retrieve daily mean temperature/humidity. Every operation degrades to
// an empty result on HTTP failure; errors never cross this boundary, and
// the forecasting core falls back to the persistence convention when no
// data comes back.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/olivesense/trapcast-go/internal/config"
)

// Client is the OpenWeatherMap HTTP client.
type Client struct {
	httpClient     *http.Client
	geoBaseURL     string
	dataBaseURL    string
	historyBaseURL string
	apiKey         string
	logger         *logrus.Logger
}

// NewClient creates a weather client from configuration.
func NewClient(cfg *config.WeatherConfig, logger *logrus.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		geoBaseURL:     strings.TrimSuffix(cfg.GeoBaseURL, "/"),
		dataBaseURL:    strings.TrimSuffix(cfg.DataBaseURL, "/"),
		historyBaseURL: strings.TrimSuffix(cfg.HistoryBaseURL, "/"),
		apiKey:         cfg.APIKey,
		logger:         logger,
	}
}

// ValidateKey reports whether the configured API credential is accepted.
func (c *Client) ValidateKey(ctx context.Context) bool {
	params := url.Values{}
	params.Set("q", "Imola")
	params.Set("limit", "1")
	params.Set("appid", c.apiKey)

	var entries []geoEntry
	err := c.getJSON(ctx, c.geoBaseURL+"/direct", params, &entries)
	return err == nil
}

// SuggestCities returns up to five "Name, Country" strings matching the
// query, or an empty slice on any failure.
func (c *Client) SuggestCities(ctx context.Context, query string) []string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "5")
	params.Set("appid", c.apiKey)

	var entries []geoEntry
	if err := c.getJSON(ctx, c.geoBaseURL+"/direct", params, &entries); err != nil {
		c.logger.WithError(err).Debug("city suggestion lookup failed")
		return []string{}
	}

	suggestions := make([]string, 0, len(entries))
	for _, e := range entries {
		suggestions = append(suggestions, fmt.Sprintf("%s, %s", e.Name, e.Country))
	}
	return suggestions
}

// GeocodeCity resolves a city name to coordinates. ok is false when the
// lookup fails or returns no match.
func (c *Client) GeocodeCity(ctx context.Context, city string) (lat, lon float64, ok bool) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("limit", "1")
	params.Set("appid", c.apiKey)

	var entries []geoEntry
	if err := c.getJSON(ctx, c.geoBaseURL+"/direct", params, &entries); err != nil || len(entries) == 0 {
		return 0, 0, false
	}
	return entries[0].Lat, entries[0].Lon, true
}

// HistoricalDaily retrieves daily mean temperature/humidity for a
// coordinate over an inclusive date range, aggregating the hourly history
// endpoint. Returns nil on any failure.
func (c *Client) HistoricalDaily(ctx context.Context, lat, lon float64, start, end time.Time) []Daily {
	var result []Daily
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC).Unix()

		params := url.Values{}
		params.Set("lat", formatFloat(lat))
		params.Set("lon", formatFloat(lon))
		params.Set("type", "hour")
		params.Set("start", fmt.Sprintf("%d", dayStart))
		params.Set("end", fmt.Sprintf("%d", dayStart+86400))
		params.Set("units", "metric")
		params.Set("appid", c.apiKey)

		var resp historyResponse
		if err := c.getJSON(ctx, c.historyBaseURL+"/history/city", params, &resp); err != nil {
			c.logger.WithError(err).Debug("historical weather retrieval failed")
			return nil
		}

		var tempSum, humSum float64
		for _, item := range resp.List {
			tempSum += item.Main.Temp
			humSum += item.Main.Humidity
		}
		if n := len(resp.List); n > 0 {
			result = append(result, Daily{
				Date:        day,
				Temperature: tempSum / float64(n),
				Humidity:    humSum / float64(n),
			})
		}
	}
	return result
}

// ForecastDaily aggregates the 5-day/3-hour forecast to daily means over a
// bounded horizon. Returns nil on any failure.
func (c *Client) ForecastDaily(ctx context.Context, lat, lon float64, horizonDays int) []Daily {
	params := url.Values{}
	params.Set("lat", formatFloat(lat))
	params.Set("lon", formatFloat(lon))
	params.Set("units", "metric")
	params.Set("appid", c.apiKey)

	var resp forecastResponse
	if err := c.getJSON(ctx, c.dataBaseURL+"/forecast", params, &resp); err != nil {
		c.logger.WithError(err).Debug("forecast weather retrieval failed")
		return nil
	}

	type bucket struct {
		tempSum, humSum float64
		n               int
	}
	buckets := make(map[time.Time]*bucket)
	for _, item := range resp.List {
		t := time.Unix(item.Dt, 0).UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.tempSum += item.Main.Temp
		b.humSum += item.Main.Humidity
		b.n++
	}

	days := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	if len(days) > horizonDays {
		days = days[:horizonDays]
	}

	result := make([]Daily, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		result = append(result, Daily{
			Date:        day,
			Temperature: b.tempSum / float64(b.n),
			Humidity:    b.humSum / float64(b.n),
		})
	}
	return result
}

// getJSON performs a GET request and decodes the JSON response body.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "trapcast-go/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.WithError(cerr).Debug("error closing response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("weather service error (%d): %s", resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
