package models

import (
	"math"
	"time"
)

// ObservationSeries is an ordered, strictly daily-indexed sequence of values
// for one scalar variable. The index is contiguous: series preparation fills
// calendar gaps by interpolation before a series is constructed, so every
// day between the first and last timestamp is present exactly once.
type ObservationSeries struct {
	Name       string
	Timestamps []time.Time
	Values     []float64
}

// NewObservationSeries creates a named series from parallel timestamp and
// value slices. The slices are owned by the caller and not copied.
func NewObservationSeries(name string, timestamps []time.Time, values []float64) *ObservationSeries {
	return &ObservationSeries{
		Name:       name,
		Timestamps: timestamps,
		Values:     values,
	}
}

// Len returns the number of observations.
func (s *ObservationSeries) Len() int {
	return len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *ObservationSeries) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// Variance calculates the sample variance of the series.
func (s *ObservationSeries) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s.Values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(s.Values)-1)
}

// Std calculates the sample standard deviation of the series.
func (s *ObservationSeries) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Last returns the final value of the series, or NaN when empty.
func (s *ObservationSeries) Last() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// LastTimestamp returns the final timestamp, or the zero time when empty.
func (s *ObservationSeries) LastTimestamp() time.Time {
	if len(s.Timestamps) == 0 {
		return time.Time{}
	}
	return s.Timestamps[len(s.Timestamps)-1]
}

// IsContiguousDaily reports whether consecutive timestamps are exactly one
// calendar day apart.
func (s *ObservationSeries) IsContiguousDaily() bool {
	for i := 1; i < len(s.Timestamps); i++ {
		if !s.Timestamps[i].Equal(s.Timestamps[i-1].AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

// ExogenousMatrix holds, for each timestamp of a target series, one row of
// covariate values in a fixed column order. It shares the contiguity
// guarantee of the series it accompanies.
type ExogenousMatrix struct {
	Names      []string
	Timestamps []time.Time
	Rows       [][]float64
}

// Len returns the number of rows.
func (m *ExogenousMatrix) Len() int {
	return len(m.Rows)
}

// LastRow returns a copy of the final covariate row, or nil when empty.
// The last observed row is the persistence convention for next-period
// exogenous values when no external forecast is supplied.
func (m *ExogenousMatrix) LastRow() []float64 {
	if len(m.Rows) == 0 {
		return nil
	}
	row := make([]float64, len(m.Rows[len(m.Rows)-1]))
	copy(row, m.Rows[len(m.Rows)-1])
	return row
}

// Column returns a copy of the values of the named covariate, or nil when
// the name is unknown.
func (m *ExogenousMatrix) Column(name string) []float64 {
	idx := -1
	for i, n := range m.Names {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	col := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		col[i] = row[idx]
	}
	return col
}
