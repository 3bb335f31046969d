package forecast

import (
	"math"

	"github.com/olivesense/trapcast-go/internal/models"
)

// ADFResult holds the outcome of an augmented Dickey-Fuller unit-root test.
// The null hypothesis is that the series has a unit root; a p-value below
// 0.05 is the practical indication of stationarity. The result feeds the
// interpreter only and never constrains the order search.
type ADFResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	NObs      int
}

// ADF runs the augmented Dickey-Fuller test (constant, no trend) on the
// series. It returns nil when the test is inapplicable: short or degenerate
// series must produce an "unavailable" signal, not a failure.
func ADF(series *models.ObservationSeries, maxLag int) *ADFResult {
	n := series.Len()
	if n < 10 {
		return nil
	}

	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Pow(float64(n-1), 1.0/3.0)))
	}
	if maxLag >= n-1 {
		maxLag = n - 2
	}

	delta := diff(series.Values)

	// Regression: delta_y_t = alpha + beta*y_{t-1} + sum(gamma_i*delta_y_{t-i}).
	// The test statistic is the t-stat of beta.
	nObs := n - maxLag - 1
	if nObs < 10 {
		return nil
	}

	y := make([]float64, nObs)
	x := make([][]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := i + maxLag
		y[i] = delta[t]

		x[i] = make([]float64, 2+maxLag)
		x[i][0] = 1
		x[i][1] = series.Values[t]
		for j := 1; j <= maxLag; j++ {
			x[i][1+j] = delta[t-j]
		}
	}

	coeffs, se := olsRegression(x, y)
	if coeffs == nil || se == nil || len(se) < 2 || se[1] == 0 {
		return nil
	}

	tStat := coeffs[1] / se[1]
	if math.IsNaN(tStat) || math.IsInf(tStat, 0) {
		return nil
	}

	return &ADFResult{
		Statistic: tStat,
		PValue:    mackinnonPValue(tStat),
		Lags:      maxLag,
		NObs:      nObs,
	}
}

// mackinnonPValue approximates the ADF p-value for the constant-only
// regression by interpolating MacKinnon (1994) critical values.
func mackinnonPValue(stat float64) float64 {
	switch {
	case stat < -3.96:
		return 0.001
	case stat < -3.43:
		return 0.01
	case stat < -2.86:
		return 0.05
	case stat < -2.57:
		return 0.10
	case stat < -1.94:
		return 0.25
	case stat < -1.62:
		return 0.50
	default:
		return math.Min(0.5+(stat+1.62)*0.25, 0.99)
	}
}
