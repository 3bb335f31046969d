package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivesense/trapcast-go/internal/config"
	"github.com/olivesense/trapcast-go/internal/dataset"
	"github.com/olivesense/trapcast-go/internal/forecast"
	"github.com/olivesense/trapcast-go/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig(path string) *config.Config {
	return &config.Config{
		Environment: "test",
		Dataset:     config.DatasetConfig{Path: path},
		Forecast:    config.ForecastConfig{OverlayDays: 30},
	}
}

// noisy returns a deterministic pseudo-random value in [-scale, scale].
func noisy(i int, scale float64) float64 {
	x := uint64(i)*6364136223846793005 + 1442695040888963407
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return scale * (float64(x%2000001)/1000000 - 1)
}

func writeRecordsCSV(t *testing.T, records []models.TrapRecord) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,temperature_mean,relativehumidity_mean,no. of Adult males\n")
	for _, r := range records {
		fmt.Fprintf(&b, "%s,%.4f,%.4f,%.4f\n", r.Date.Format("2006-01-02"), r.Temperature, r.Humidity, r.Captures)
	}
	path := filepath.Join(t.TempDir(), "captures.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// temperatureDrivenRecords builds a synthetic capture history where warm
// days produce clearly higher counts.
func temperatureDrivenRecords(n int) []models.TrapRecord {
	records := make([]models.TrapRecord, n)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		temp := 20 + noisy(i, 6)
		hum := 60 + noisy(i+1000, 10)
		captures := 2 + 1.5*temp + noisy(i+2000, 2)
		if captures < 0 {
			captures = 0
		}
		records[i] = models.TrapRecord{
			Date:        start.AddDate(0, 0, i),
			Temperature: temp,
			Humidity:    hum,
			Captures:    captures,
		}
	}
	return records
}

func newTestService(t *testing.T, records []models.TrapRecord, weather FutureExogProvider) *ForecastService {
	t.Helper()
	path := writeRecordsCSV(t, records)
	return NewForecastService(testConfig(path), dataset.NewCache(), weather, testLogger())
}

type stubExogProvider struct {
	temp, hum float64
	ok        bool
	calls     int
}

func (s *stubExogProvider) NextDay(_ context.Context, _, _ float64, _ time.Time) (float64, float64, bool) {
	s.calls++
	return s.temp, s.hum, s.ok
}

func TestForecastEndToEnd(t *testing.T) {
	svc := newTestService(t, temperatureDrivenRecords(40), nil)

	report, err := svc.Forecast(context.Background(), ForecastRequest{})
	require.NoError(t, err)

	f := report.Forecast
	assert.Equal(t, models.ExogSourcePersistence, f.ExogSource)
	assert.GreaterOrEqual(t, f.Point, 0)
	assert.LessOrEqual(t, f.Lower, f.Upper)
	assert.GreaterOrEqual(t, f.Lower, 0)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), f.Date)

	assert.Positive(t, report.ModelsEvaluated)
	assert.GreaterOrEqual(t, len(report.Diagnostics.Interpretations), 3)
	assert.NotZero(t, report.Diagnostics.RMSE)
	assert.True(t, report.Stationarity.Available)

	assert.Len(t, report.Actual, 30)
	assert.NotEmpty(t, report.Fitted)
	assert.LessOrEqual(t, len(report.Fitted), len(report.Actual))
}

func TestForecastDeterministic(t *testing.T) {
	svc := newTestService(t, temperatureDrivenRecords(40), nil)

	first, err := svc.Forecast(context.Background(), ForecastRequest{})
	require.NoError(t, err)
	second, err := svc.Forecast(context.Background(), ForecastRequest{})
	require.NoError(t, err)

	assert.Equal(t, first.Order, second.Order)
	assert.Equal(t, first.Forecast, second.Forecast)
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
}

func TestForecastWeatherExogRaisesWarmForecast(t *testing.T) {
	records := temperatureDrivenRecords(40)

	cold := newTestService(t, records, &stubExogProvider{temp: 12, hum: 60, ok: true})
	warm := newTestService(t, records, &stubExogProvider{temp: 32, hum: 60, ok: true})

	req := ForecastRequest{UseWeather: true, Lat: 44.35, Lon: 11.71}
	coldReport, err := cold.Forecast(context.Background(), req)
	require.NoError(t, err)
	warmReport, err := warm.Forecast(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.ExogSourceWeatherAPI, coldReport.Forecast.ExogSource)
	assert.Equal(t, models.ExogSourceWeatherAPI, warmReport.Forecast.ExogSource)
	assert.Greater(t, warmReport.Forecast.RawPoint, coldReport.Forecast.RawPoint)
}

func TestForecastWeatherFallbackToPersistence(t *testing.T) {
	stub := &stubExogProvider{ok: false}
	svc := newTestService(t, temperatureDrivenRecords(40), stub)

	report, err := svc.Forecast(context.Background(), ForecastRequest{UseWeather: true})
	require.NoError(t, err)
	assert.Equal(t, models.ExogSourcePersistence, report.Forecast.ExogSource)
	assert.Equal(t, 1, stub.calls)
}

func TestForecastWeatherNotRequested(t *testing.T) {
	stub := &stubExogProvider{temp: 25, hum: 60, ok: true}
	svc := newTestService(t, temperatureDrivenRecords(40), stub)

	report, err := svc.Forecast(context.Background(), ForecastRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.ExogSourcePersistence, report.Forecast.ExogSource)
	assert.Zero(t, stub.calls)
}

func TestForecastShortDecreasingSeries(t *testing.T) {
	// Five decreasing points: high orders fail per candidate, the projection
	// keeps the count bounds non-negative.
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	captures := []float64{10, 8, 6, 5, 2}
	humidity := []float64{64, 61, 60, 58, 53}
	records := make([]models.TrapRecord, 5)
	for i := range records {
		records[i] = models.TrapRecord{
			Date:        start.AddDate(0, 0, i),
			Temperature: 20 + float64(i),
			Humidity:    humidity[i],
			Captures:    captures[i],
		}
	}
	svc := newTestService(t, records, nil)

	report, err := svc.Forecast(context.Background(), ForecastRequest{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.Forecast.Point, 0)
	assert.GreaterOrEqual(t, report.Forecast.Lower, 0)
	assert.LessOrEqual(t, report.Forecast.Lower, report.Forecast.Upper)
	assert.Less(t, report.ModelsEvaluated, 32)
	assert.False(t, report.Stationarity.Available)
}

func TestForecastConstantSeriesNoValidModel(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := make([]models.TrapRecord, 20)
	for i := range records {
		records[i] = models.TrapRecord{
			Date:        start.AddDate(0, 0, i),
			Temperature: 21,
			Humidity:    60,
			Captures:    4,
		}
	}
	svc := newTestService(t, records, nil)

	_, err := svc.Forecast(context.Background(), ForecastRequest{})
	assert.ErrorIs(t, err, forecast.ErrNoValidModel)
}

func TestForecastMissingDataset(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "absent.csv"))
	svc := NewForecastService(cfg, dataset.NewCache(), nil, testLogger())

	_, err := svc.Forecast(context.Background(), ForecastRequest{})
	assert.Error(t, err)
}

func TestForecastUsesCache(t *testing.T) {
	cache := dataset.NewCache()
	path := writeRecordsCSV(t, temperatureDrivenRecords(40))
	svc := NewForecastService(testConfig(path), cache, nil, testLogger())

	_, err := svc.Forecast(context.Background(), ForecastRequest{})
	require.NoError(t, err)
	_, err = svc.Forecast(context.Background(), ForecastRequest{})
	require.NoError(t, err)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.GreaterOrEqual(t, stats.Hits, int64(1))
	assert.Equal(t, 1, stats.Entries)
}
