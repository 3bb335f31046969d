package models

import "time"

// Exogenous row sources reported alongside a forecast.
const (
	ExogSourcePersistence = "persistence"
	ExogSourceWeatherAPI  = "weather_api"
)

// TrapRecord is one cleaned input row: a calendar day with its mean
// temperature, mean relative humidity, and adult-male capture count.
type TrapRecord struct {
	Date        time.Time `json:"date"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Captures    float64   `json:"captures"`
}

// ForecastResult is the one-step-ahead forecast for a single future day,
// projected onto count semantics: point and bounds are rounded to the
// nearest integer, clamped at zero, and reordered so Lower <= Upper.
// The raw real-valued outputs are retained for diagnostics and plotting.
type ForecastResult struct {
	Date  time.Time `json:"date"`
	Point int       `json:"point"`
	Lower int       `json:"lower"`
	Upper int       `json:"upper"`

	RawPoint float64 `json:"raw_point"`
	RawLower float64 `json:"raw_lower"`
	RawUpper float64 `json:"raw_upper"`

	// ExogSource records where the future exogenous row came from:
	// ExogSourceWeatherAPI or ExogSourcePersistence.
	ExogSource string `json:"exog_source"`
}

// TimePoint is one (timestamp, value) pair, used for fitted-value overlays
// and trend charts.
type TimePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DiagnosticReport carries the in-sample fit-error metrics of the selected
// model together with the ordered, advisory interpretation strings. It is
// derived per request and never persisted.
type DiagnosticReport struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	AIC  float64 `json:"aic"`

	// RatioAvailable is false when the actual series has degenerate spread,
	// in which case Ratio is meaningless and a low-variability note is
	// emitted instead of a ratio-based one.
	Ratio          float64 `json:"ratio"`
	RatioAvailable bool    `json:"ratio_available"`

	Interpretations []string `json:"interpretations"`
}
