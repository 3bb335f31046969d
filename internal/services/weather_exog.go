package services

import (
	"context"
	"time"

	"github.com/olivesense/trapcast-go/internal/weather"
)

// weatherExogProvider adapts the OpenWeatherMap client to the pipeline's
// future-exogenous contract: it asks for the daily forecast and picks out
// the requested day, reporting ok=false when the API yields nothing.
type weatherExogProvider struct {
	client      *weather.Client
	horizonDays int
}

// NewWeatherExogProvider wraps a weather client as a FutureExogProvider.
func NewWeatherExogProvider(client *weather.Client, horizonDays int) FutureExogProvider {
	return &weatherExogProvider{client: client, horizonDays: horizonDays}
}

func (p *weatherExogProvider) NextDay(ctx context.Context, lat, lon float64, day time.Time) (float64, float64, bool) {
	want := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	for _, d := range p.client.ForecastDaily(ctx, lat, lon, p.horizonDays) {
		if d.Date.Equal(want) {
			return d.Temperature, d.Humidity, true
		}
	}
	return 0, 0, false
}
