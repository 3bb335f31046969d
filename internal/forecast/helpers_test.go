package forecast

import (
	"time"

	"github.com/olivesense/trapcast-go/internal/models"
)

var testEpoch = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func dailySeries(name string, values []float64) *models.ObservationSeries {
	timestamps := make([]time.Time, len(values))
	for i := range values {
		timestamps[i] = testEpoch.AddDate(0, 0, i)
	}
	return models.NewObservationSeries(name, timestamps, values)
}

func dailyExog(names []string, rows [][]float64) *models.ExogenousMatrix {
	timestamps := make([]time.Time, len(rows))
	for i := range rows {
		timestamps[i] = testEpoch.AddDate(0, 0, i)
	}
	return &models.ExogenousMatrix{Names: names, Timestamps: timestamps, Rows: rows}
}

// noisy returns a deterministic pseudo-random value in [-scale, scale] so
// tests avoid exact fits without depending on a random source.
func noisy(i int, scale float64) float64 {
	x := uint64(i)*6364136223846793005 + 1442695040888963407
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return scale * (float64(x%2000001)/1000000 - 1)
}
