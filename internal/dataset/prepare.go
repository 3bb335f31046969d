package dataset

import (
	"errors"
	"sort"
	"time"

	"github.com/olivesense/trapcast-go/internal/models"
)

// ErrEmptyDataset is returned when no usable rows survive cleaning.
// Callers must treat forecasting as unavailable and not proceed to search.
var ErrEmptyDataset = errors.New("dataset is empty after cleaning")

// Exogenous column order of the prepared matrix.
var exogNames = []string{"temperature", "humidity"}

// Prepared is the forecasting core's view of one source table: the target
// series renamed "captures" and the exogenous matrix (temperature,
// humidity), sharing one contiguous daily index with no missing values.
type Prepared struct {
	Captures *models.ObservationSeries
	Exog     *models.ExogenousMatrix

	// Records are the cleaned, date-sorted input rows before reindexing,
	// kept for dashboard aggregation.
	Records []models.TrapRecord

	RowsRead int
	RowsKept int
}

// Prepare turns cleaned records into the daily-indexed series and matrix:
// sort by date (later duplicates of a day win), reindex to the full daily
// calendar between the first and last date, and interpolate each numeric
// column independently in both directions. Interior gaps are filled
// linearly between their bounding values; edge gaps take the nearest
// available value.
func Prepare(load *LoadResult) (*Prepared, error) {
	if load == nil || len(load.Records) == 0 {
		return nil, ErrEmptyDataset
	}

	records := make([]models.TrapRecord, len(load.Records))
	copy(records, load.Records)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	byDay := make(map[int64]models.TrapRecord, len(records))
	for _, r := range records {
		byDay[dayKey(r.Date)] = r
	}

	start := records[0].Date
	end := records[len(records)-1].Date
	days := int(end.Sub(start).Hours()/24) + 1

	timestamps := make([]time.Time, days)
	temps := make([]float64, days)
	hums := make([]float64, days)
	captures := make([]float64, days)
	present := make([]bool, days)

	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		timestamps[i] = day
		if r, ok := byDay[dayKey(day)]; ok {
			temps[i] = r.Temperature
			hums[i] = r.Humidity
			captures[i] = r.Captures
			present[i] = true
		}
	}

	interpolate(temps, present)
	interpolate(hums, present)
	interpolate(captures, present)

	rows := make([][]float64, days)
	for i := 0; i < days; i++ {
		rows[i] = []float64{temps[i], hums[i]}
	}

	deduped := make([]models.TrapRecord, 0, len(byDay))
	for i := 0; i < days; i++ {
		if r, ok := byDay[dayKey(timestamps[i])]; ok {
			deduped = append(deduped, r)
		}
	}

	return &Prepared{
		Captures: models.NewObservationSeries("captures", timestamps, captures),
		Exog: &models.ExogenousMatrix{
			Names:      exogNames,
			Timestamps: timestamps,
			Rows:       rows,
		},
		Records:  deduped,
		RowsRead: load.RowsRead,
		RowsKept: len(load.Records),
	}, nil
}

func dayKey(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

// interpolate fills the positions where present is false, in place. A gap
// bounded by known values on both sides is filled linearly; a gap touching
// either edge takes the nearest known value.
func interpolate(values []float64, present []bool) {
	n := len(values)

	prev := -1
	for i := 0; i < n; i++ {
		if present[i] {
			prev = i
			continue
		}

		next := -1
		for j := i + 1; j < n; j++ {
			if present[j] {
				next = j
				break
			}
		}

		switch {
		case prev >= 0 && next >= 0:
			span := float64(next - prev)
			frac := float64(i-prev) / span
			values[i] = values[prev] + (values[next]-values[prev])*frac
		case prev >= 0:
			values[i] = values[prev]
		case next >= 0:
			values[i] = values[next]
		}
	}
}
