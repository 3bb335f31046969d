package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitRejectsInvalidOrders(t *testing.T) {
	series := dailySeries("captures", []float64{1, 2, 3, 4, 5, 6, 7, 8})

	_, err := Fit(series, nil, Order{P: -1})
	assert.Error(t, err)

	_, err = Fit(series, nil, Order{D: 2})
	assert.Error(t, err)
}

func TestFitRejectsMismatchedExog(t *testing.T) {
	series := dailySeries("captures", []float64{1, 2, 3, 4, 5, 6, 7, 8})
	exog := dailyExog([]string{"temperature"}, [][]float64{{20}, {21}, {22}})

	_, err := Fit(series, exog, Order{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exogenous matrix")
}

func TestFitRejectsInsufficientObservations(t *testing.T) {
	series := dailySeries("captures", []float64{10, 8, 6, 4, 2})

	_, err := Fit(series, nil, Order{P: 3, Q: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient observations")
}

func TestFitMeanOnlyModel(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 12 + noisy(i, 2)
	}
	series := dailySeries("captures", values)

	model, err := Fit(series, nil, Order{})
	require.NoError(t, err)

	// With no AR, MA, or exogenous terms the intercept is the sample mean
	require.Len(t, model.RegCoeffs, 1)
	assert.InDelta(t, mean(values), model.RegCoeffs[0], 1e-9)
	assert.Positive(t, model.Variance)
	assert.False(t, math.IsNaN(model.AIC))

	pf, err := model.Forecast(nil)
	require.NoError(t, err)
	assert.InDelta(t, mean(values), pf.Mean, 1e-9)

	half := 1.959963984540054 * math.Sqrt(model.Variance)
	assert.InDelta(t, pf.Mean-half, pf.Lower, 1e-9)
	assert.InDelta(t, pf.Mean+half, pf.Upper, 1e-9)
}

func TestFitConstantSeriesDegenerate(t *testing.T) {
	values := make([]float64, 15)
	for i := range values {
		values[i] = 9
	}
	series := dailySeries("captures", values)

	_, err := Fit(series, nil, Order{})
	assert.Error(t, err)

	_, err = Fit(series, nil, Order{P: 1})
	assert.Error(t, err)

	_, err = Fit(series, nil, Order{D: 1})
	assert.Error(t, err)
}

func TestFitExogenousEffect(t *testing.T) {
	n := 40
	values := make([]float64, n)
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		temp := 18 + noisy(i, 5)
		hum := 60 + noisy(i+1000, 10)
		rows[i] = []float64{temp, hum}
		values[i] = 3 + 2*temp + 0.1*hum + noisy(i+2000, 1)
	}
	series := dailySeries("captures", values)
	exog := dailyExog([]string{"temperature", "humidity"}, rows)

	model, err := Fit(series, exog, Order{})
	require.NoError(t, err)
	require.Len(t, model.RegCoeffs, 3)
	assert.InDelta(t, 2.0, model.RegCoeffs[1], 0.2)

	// A warmer next day must raise the raw forecast
	cold, err := model.Forecast([]float64{15, 60})
	require.NoError(t, err)
	warm, err := model.Forecast([]float64{30, 60})
	require.NoError(t, err)
	assert.Greater(t, warm.Mean, cold.Mean)
}

func TestFitDifferencedModelIntegratesForecast(t *testing.T) {
	// Upward trend with noise: differencing makes it level
	n := 30
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 5 + 2*float64(i) + noisy(i, 0.5)
	}
	series := dailySeries("captures", values)

	model, err := Fit(series, nil, Order{D: 1})
	require.NoError(t, err)

	pf, err := model.Forecast(nil)
	require.NoError(t, err)

	// The one-step forecast continues from the last level plus roughly the
	// mean daily increment
	last := values[n-1]
	assert.Greater(t, pf.Mean, last)
	assert.InDelta(t, last+2, pf.Mean, 1.0)
}

func TestFittedValuesAlignment(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 10 + float64(i) + noisy(i, 1)
	}
	series := dailySeries("captures", values)

	model, err := Fit(series, nil, Order{D: 1})
	require.NoError(t, err)

	timestamps, fitted := model.FittedValues()
	require.Len(t, timestamps, 19)
	require.Len(t, fitted, 19)

	// Differencing consumes the first observation
	assert.Equal(t, series.Timestamps[1], timestamps[0])
	assert.Equal(t, series.LastTimestamp(), timestamps[len(timestamps)-1])
}

func TestForecastRejectsWrongExogWidth(t *testing.T) {
	n := 20
	values := make([]float64, n)
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 10 + noisy(i, 2)
		rows[i] = []float64{20 + noisy(i+500, 3)}
	}
	model, err := Fit(dailySeries("captures", values), dailyExog([]string{"temperature"}, rows), Order{})
	require.NoError(t, err)

	_, err = model.Forecast(nil)
	assert.Error(t, err)

	_, err = model.Forecast([]float64{20, 60})
	assert.Error(t, err)
}

func TestFitARMACoefficientsBounded(t *testing.T) {
	n := 60
	u := make([]float64, n)
	// Strongly autocorrelated errors
	u[0] = noisy(0, 1)
	for i := 1; i < n; i++ {
		u[i] = 0.8*u[i-1] + noisy(i, 1)
	}

	ar, ma, err := fitARMA(u, 2, 2)
	require.NoError(t, err)
	require.Len(t, ar, 2)
	require.Len(t, ma, 2)
	for _, c := range ar {
		assert.LessOrEqual(t, math.Abs(c), 0.99)
	}
	for _, c := range ma {
		assert.LessOrEqual(t, math.Abs(c), 0.9)
	}
	assert.Greater(t, ar[0], 0.3)
}

func TestFitARMAZeroVarianceErrors(t *testing.T) {
	u := make([]float64, 30)
	_, _, err := fitARMA(u, 1, 0)
	assert.Error(t, err)
}

func TestOrderString(t *testing.T) {
	assert.Equal(t, "(2,1,3)", Order{P: 2, D: 1, Q: 3}.String())
}
