// Package services wires the forecasting core to its collaborators: the
// dataset cache, the weather client, and the HTTP handlers.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/olivesense/trapcast-go/internal/config"
	"github.com/olivesense/trapcast-go/internal/dataset"
	"github.com/olivesense/trapcast-go/internal/forecast"
	"github.com/olivesense/trapcast-go/internal/models"
)

// ForecastService runs the full pipeline per request: load (through the
// cache), prepare, probe, search, forecast, diagnose. There is no state
// beyond the prepared-table cache; identical inputs yield identical output.
type ForecastService struct {
	cfg     *config.Config
	cache   *dataset.Cache
	weather FutureExogProvider
	logger  *logrus.Logger
}

// FutureExogProvider supplies a next-day exogenous row from an external
// weather forecast. Implementations return ok=false on any failure, in
// which case the pipeline falls back to persistence.
type FutureExogProvider interface {
	NextDay(ctx context.Context, lat, lon float64, day time.Time) (temperature, humidity float64, ok bool)
}

// ForecastRequest selects the source of the future exogenous row. With
// UseWeather false (or when the provider yields nothing) the last observed
// row is used verbatim.
type ForecastRequest struct {
	UseWeather bool
	Lat        float64
	Lon        float64
}

// StationarityInfo is the informational ADF result; Available is false
// when the test was inapplicable.
type StationarityInfo struct {
	Available bool    `json:"available"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
}

// ForecastReport is everything the presentation layer needs: the selected
// order, the projected forecast, fit diagnostics, the stationarity signal,
// and actual/fitted tails for overlay plotting.
type ForecastReport struct {
	Order           forecast.Order          `json:"order"`
	Forecast        models.ForecastResult   `json:"forecast"`
	Diagnostics     models.DiagnosticReport `json:"diagnostics"`
	Stationarity    StationarityInfo        `json:"stationarity"`
	Actual          []models.TimePoint      `json:"actual"`
	Fitted          []models.TimePoint      `json:"fitted"`
	ModelsEvaluated int                     `json:"models_evaluated"`
}

// NewForecastService creates the pipeline service. weather may be nil when
// no API credential is configured.
func NewForecastService(cfg *config.Config, cache *dataset.Cache, weather FutureExogProvider, logger *logrus.Logger) *ForecastService {
	return &ForecastService{
		cfg:     cfg,
		cache:   cache,
		weather: weather,
		logger:  logger,
	}
}

// Forecast executes the pipeline and returns the one-step-ahead report.
// Dataset and search failures surface as errors the handler maps to
// "no forecast available" / "no valid model found" responses; they never
// abort the process.
func (s *ForecastService) Forecast(ctx context.Context, req ForecastRequest) (*ForecastReport, error) {
	prep, err := s.prepared()
	if err != nil {
		return nil, err
	}

	adf := forecast.ADF(prep.Captures, 0)

	search, err := forecast.SelectModel(prep.Captures, prep.Exog)
	if err != nil {
		return nil, err
	}
	model := search.Model

	s.logger.WithFields(logrus.Fields{
		"order":     model.Order.String(),
		"aic":       model.AIC,
		"evaluated": search.Evaluated,
	}).Info("model selected")

	nextDay := prep.Captures.LastTimestamp().AddDate(0, 0, 1)
	futureRow, exogSource := s.futureExogRow(ctx, req, prep, nextDay)

	raw, err := model.Forecast(futureRow)
	if err != nil {
		return nil, fmt.Errorf("forecast failed: %w", err)
	}

	// Normalize a possibly asymmetric interval, then project onto counts:
	// round, clamp at zero, reorder.
	rawLower := min64(raw.Lower, raw.Upper)
	rawUpper := max64(raw.Lower, raw.Upper)
	point, lower, upper := forecast.ProjectCounts(raw.Mean, rawLower, rawUpper)

	fittedTS, fittedVals := model.FittedValues()
	metrics := forecast.ComputeMetrics(prep.Captures, fittedTS, fittedVals)

	interpretations := forecast.InterpretOrder(model.Order, adf)
	interpretations = append(interpretations, forecast.InterpretFit(metrics.RMSE, metrics.Sigma)...)

	ratio, ratioOK := forecast.FitRatio(metrics.RMSE, metrics.Sigma)

	report := &ForecastReport{
		Order: model.Order,
		Forecast: models.ForecastResult{
			Date:       nextDay,
			Point:      point,
			Lower:      lower,
			Upper:      upper,
			RawPoint:   raw.Mean,
			RawLower:   rawLower,
			RawUpper:   rawUpper,
			ExogSource: exogSource,
		},
		Diagnostics: models.DiagnosticReport{
			MAE:             metrics.MAE,
			RMSE:            metrics.RMSE,
			AIC:             model.AIC,
			Ratio:           ratio,
			RatioAvailable:  ratioOK,
			Interpretations: interpretations,
		},
		ModelsEvaluated: search.Evaluated,
	}
	if adf != nil {
		report.Stationarity = StationarityInfo{
			Available: true,
			Statistic: adf.Statistic,
			PValue:    adf.PValue,
		}
	}

	report.Actual, report.Fitted = s.overlay(prep, fittedTS, fittedVals)
	return report, nil
}

// futureExogRow resolves the next period's exogenous values: the weather
// forecast when requested and available, otherwise the persistence
// convention (last observed row verbatim).
func (s *ForecastService) futureExogRow(ctx context.Context, req ForecastRequest, prep *dataset.Prepared, nextDay time.Time) ([]float64, string) {
	if req.UseWeather && s.weather != nil {
		if temp, hum, ok := s.weather.NextDay(ctx, req.Lat, req.Lon, nextDay); ok {
			return []float64{temp, hum}, models.ExogSourceWeatherAPI
		}
		s.logger.Debug("weather forecast unavailable, falling back to persistence")
	}
	return prep.Exog.LastRow(), models.ExogSourcePersistence
}

// overlay returns the trailing actual values and the fitted values joined
// to the same window, bounded by forecast.overlay_days.
func (s *ForecastService) overlay(prep *dataset.Prepared, fittedTS []time.Time, fittedVals []float64) (actual, fitted []models.TimePoint) {
	lookback := s.cfg.Forecast.OverlayDays
	n := prep.Captures.Len()
	start := n - lookback
	if start < 0 {
		start = 0
	}

	fittedByDay := make(map[int64]float64, len(fittedVals))
	for i, ts := range fittedTS {
		fittedByDay[ts.Unix()] = fittedVals[i]
	}

	for i := start; i < n; i++ {
		ts := prep.Captures.Timestamps[i]
		actual = append(actual, models.TimePoint{Date: ts, Value: prep.Captures.Values[i]})
		if fv, ok := fittedByDay[ts.Unix()]; ok {
			fitted = append(fitted, models.TimePoint{Date: ts, Value: fv})
		}
	}
	return actual, fitted
}

// prepared fetches the prepared table through the cache, loading and
// preparing the source table on a miss.
func (s *ForecastService) prepared() (*dataset.Prepared, error) {
	path := s.cfg.Dataset.Path
	if prep, ok := s.cache.Get(path); ok {
		return prep, nil
	}

	load, err := dataset.Load(path, s.cfg.Dataset.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	prep, err := dataset.Prepare(load)
	if err != nil {
		return nil, err
	}
	s.cache.Set(path, prep)
	return prep, nil
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
