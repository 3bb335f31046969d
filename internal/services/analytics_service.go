package services

import (
	"context"
	"math"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/sirupsen/logrus"

	"github.com/olivesense/trapcast-go/internal/config"
	"github.com/olivesense/trapcast-go/internal/dataset"
	"github.com/olivesense/trapcast-go/internal/models"
)

const movingAveragePeriod = 7

// AnalyticsService computes the dashboard aggregates over the cleaned
// records: KPI cards, smoothed trends, correlations, seasonal patterns,
// and distributions.
type AnalyticsService struct {
	cfg    *config.Config
	cache  *dataset.Cache
	logger *logrus.Logger
}

// KPI holds the headline figures for the selected period.
type KPI struct {
	TotalCaptures   float64   `json:"total_captures"`
	MeanTemperature float64   `json:"mean_temperature"`
	MeanHumidity    float64   `json:"mean_humidity"`
	PeakCaptures    float64   `json:"peak_captures"`
	PeakDate        time.Time `json:"peak_date"`
}

// TrendPoint is one day of the overview chart: raw captures plus 7-day
// moving averages of all three variables.
type TrendPoint struct {
	Date        time.Time `json:"date"`
	Captures    float64   `json:"captures"`
	CapturesMA7 float64   `json:"captures_ma7"`
	TempMA7     float64   `json:"temp_ma7"`
	HumidityMA7 float64   `json:"humidity_ma7"`
}

// NamedValue is one labeled aggregate (month or weekday mean).
type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// GridCell is one cell of the ISO-week x weekday mean-captures grid.
type GridCell struct {
	Week    int     `json:"week"`
	Weekday int     `json:"weekday"` // 0 = Monday
	Mean    float64 `json:"mean"`
}

// HistogramBin is one bin of the capture distribution.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// DashboardReport is the full analytics payload for a date range.
type DashboardReport struct {
	Empty            bool                          `json:"empty"`
	From             time.Time                     `json:"from"`
	To               time.Time                     `json:"to"`
	KPI              KPI                           `json:"kpi"`
	Trend            []TrendPoint                  `json:"trend"`
	Correlations     map[string]map[string]float64 `json:"correlations"`
	MonthlyPattern   []NamedValue                  `json:"monthly_pattern"`
	WeekdayPattern   []NamedValue                  `json:"weekday_pattern"`
	CalendarGrid     []GridCell                    `json:"calendar_grid"`
	CaptureHistogram []HistogramBin                `json:"capture_histogram"`
}

// NewAnalyticsService creates the dashboard analytics service.
func NewAnalyticsService(cfg *config.Config, cache *dataset.Cache, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{cfg: cfg, cache: cache, logger: logger}
}

// Dashboard aggregates the cleaned records restricted to [from, to]
// inclusive. Zero time bounds mean unbounded. An empty selection yields an
// empty report, not an error.
func (s *AnalyticsService) Dashboard(_ context.Context, from, to time.Time) (*DashboardReport, error) {
	prep, err := s.prepared()
	if err != nil {
		return nil, err
	}

	var subset []models.TrapRecord
	for _, r := range prep.Records {
		if !from.IsZero() && r.Date.Before(from) {
			continue
		}
		if !to.IsZero() && r.Date.After(to) {
			continue
		}
		subset = append(subset, r)
	}

	if len(subset) == 0 {
		return &DashboardReport{Empty: true, From: from, To: to}, nil
	}

	report := &DashboardReport{
		From: subset[0].Date,
		To:   subset[len(subset)-1].Date,
	}
	report.KPI = computeKPI(subset)
	report.Trend = computeTrend(subset)
	report.Correlations = computeCorrelations(subset)
	report.MonthlyPattern = monthlyPattern(subset)
	report.WeekdayPattern = weekdayPattern(subset)
	report.CalendarGrid = calendarGrid(subset)
	report.CaptureHistogram = captureHistogram(subset, 30)
	return report, nil
}

// Summary describes the loaded source table for the data-source page.
type Summary struct {
	Path        string          `json:"path"`
	RowsRead    int             `json:"rows_read"`
	RowsKept    int             `json:"rows_kept"`
	RowsDropped int             `json:"rows_dropped"`
	Days        int             `json:"days"`
	FirstDate   time.Time       `json:"first_date"`
	LastDate    time.Time       `json:"last_date"`
	Columns     []ColumnSummary `json:"columns"`
}

// ColumnSummary holds per-column descriptive statistics after preparation.
type ColumnSummary struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// DatasetSummary reports source-table shape and column statistics.
func (s *AnalyticsService) DatasetSummary(_ context.Context) (*Summary, error) {
	prep, err := s.prepared()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Path:        s.cfg.Dataset.Path,
		RowsRead:    prep.RowsRead,
		RowsKept:    prep.RowsKept,
		RowsDropped: prep.RowsRead - prep.RowsKept,
		Days:        prep.Captures.Len(),
		FirstDate:   prep.Captures.Timestamps[0],
		LastDate:    prep.Captures.LastTimestamp(),
	}

	summary.Columns = append(summary.Columns, columnSummary("captures", prep.Captures.Values))
	for _, name := range prep.Exog.Names {
		summary.Columns = append(summary.Columns, columnSummary(name, prep.Exog.Column(name)))
	}
	return summary, nil
}

func (s *AnalyticsService) prepared() (*dataset.Prepared, error) {
	path := s.cfg.Dataset.Path
	if prep, ok := s.cache.Get(path); ok {
		return prep, nil
	}
	load, err := dataset.Load(path, s.cfg.Dataset.Sheet)
	if err != nil {
		return nil, err
	}
	prep, err := dataset.Prepare(load)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"path": path,
		"days": prep.Captures.Len(),
	}).Debug("dataset prepared")
	s.cache.Set(path, prep)
	return prep, nil
}

func computeKPI(subset []models.TrapRecord) KPI {
	kpi := KPI{PeakCaptures: math.Inf(-1)}
	var tempSum, humSum float64
	for _, r := range subset {
		kpi.TotalCaptures += r.Captures
		tempSum += r.Temperature
		humSum += r.Humidity
		if r.Captures > kpi.PeakCaptures {
			kpi.PeakCaptures = r.Captures
			kpi.PeakDate = r.Date
		}
	}
	n := float64(len(subset))
	kpi.MeanTemperature = tempSum / n
	kpi.MeanHumidity = humSum / n
	return kpi
}

func computeTrend(subset []models.TrapRecord) []TrendPoint {
	captures := make([]float64, len(subset))
	temps := make([]float64, len(subset))
	hums := make([]float64, len(subset))
	for i, r := range subset {
		captures[i] = r.Captures
		temps[i] = r.Temperature
		hums[i] = r.Humidity
	}

	capMA := movingAverage(captures, movingAveragePeriod)
	tempMA := movingAverage(temps, movingAveragePeriod)
	humMA := movingAverage(hums, movingAveragePeriod)

	trendPoints := make([]TrendPoint, len(subset))
	for i, r := range subset {
		trendPoints[i] = TrendPoint{
			Date:        r.Date,
			Captures:    r.Captures,
			CapturesMA7: capMA[i],
			TempMA7:     tempMA[i],
			HumidityMA7: humMA[i],
		}
	}
	return trendPoints
}

// movingAverage computes a trailing simple moving average aligned to the
// input, using an expanding mean for the first period-1 positions so every
// day has a value.
func movingAverage(values []float64, period int) []float64 {
	out := make([]float64, len(values))

	sum := 0.0
	head := period - 1
	if head > len(values) {
		head = len(values)
	}
	for i := 0; i < head; i++ {
		sum += values[i]
		out[i] = sum / float64(i+1)
	}
	if len(values) < period {
		return out
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	full := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
	copy(out[period-1:], full)
	return out
}

var corrColumns = []string{"temperature", "humidity", "captures"}

func computeCorrelations(subset []models.TrapRecord) map[string]map[string]float64 {
	cols := map[string][]float64{
		"temperature": make([]float64, len(subset)),
		"humidity":    make([]float64, len(subset)),
		"captures":    make([]float64, len(subset)),
	}
	for i, r := range subset {
		cols["temperature"][i] = r.Temperature
		cols["humidity"][i] = r.Humidity
		cols["captures"][i] = r.Captures
	}

	matrix := make(map[string]map[string]float64, len(corrColumns))
	for _, a := range corrColumns {
		matrix[a] = make(map[string]float64, len(corrColumns))
		for _, b := range corrColumns {
			matrix[a][b] = pearson(cols[a], cols[b])
		}
	}
	return matrix
}

// pearson computes the Pearson correlation coefficient; degenerate inputs
// yield 0.
func pearson(a, b []float64) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}
	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

func monthlyPattern(subset []models.TrapRecord) []NamedValue {
	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)
	for _, r := range subset {
		sums[r.Date.Month()] += r.Captures
		counts[r.Date.Month()]++
	}

	var pattern []NamedValue
	for m := time.January; m <= time.December; m++ {
		if counts[m] == 0 {
			continue
		}
		pattern = append(pattern, NamedValue{
			Name:  m.String(),
			Value: sums[m] / float64(counts[m]),
		})
	}
	return pattern
}

var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func weekdayPattern(subset []models.TrapRecord) []NamedValue {
	var sums, counts [7]float64
	for _, r := range subset {
		idx := mondayIndexed(r.Date.Weekday())
		sums[idx] += r.Captures
		counts[idx]++
	}

	var pattern []NamedValue
	for i, name := range weekdayNames {
		if counts[i] == 0 {
			continue
		}
		pattern = append(pattern, NamedValue{Name: name, Value: sums[i] / counts[i]})
	}
	return pattern
}

func calendarGrid(subset []models.TrapRecord) []GridCell {
	type key struct {
		week, weekday int
	}
	sums := make(map[key]float64)
	counts := make(map[key]int)
	var order []key
	for _, r := range subset {
		_, week := r.Date.ISOWeek()
		k := key{week: week, weekday: mondayIndexed(r.Date.Weekday())}
		if counts[k] == 0 {
			order = append(order, k)
		}
		sums[k] += r.Captures
		counts[k]++
	}

	cells := make([]GridCell, 0, len(order))
	for _, k := range order {
		cells = append(cells, GridCell{
			Week:    k.week,
			Weekday: k.weekday,
			Mean:    sums[k] / float64(counts[k]),
		})
	}
	return cells
}

func captureHistogram(subset []models.TrapRecord, bins int) []HistogramBin {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range subset {
		lo = math.Min(lo, r.Captures)
		hi = math.Max(hi, r.Captures)
	}
	if hi == lo {
		return []HistogramBin{{Low: lo, High: hi, Count: len(subset)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{Low: lo + float64(i)*width, High: lo + float64(i+1)*width}
	}
	for _, r := range subset {
		idx := int((r.Captures - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func columnSummary(name string, values []float64) ColumnSummary {
	cs := ColumnSummary{Name: name, Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, v := range values {
		cs.Min = math.Min(cs.Min, v)
		cs.Max = math.Max(cs.Max, v)
		sum += v
	}
	if len(values) > 0 {
		cs.Mean = sum / float64(len(values))
	} else {
		cs.Min, cs.Max = 0, 0
	}
	return cs
}
