package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/olivesense/trapcast-go/internal/models"
)

// Metrics holds in-sample fit-error measures computed over the inner join
// of actual and fitted values. Timestamps present on one side only, such as
// the first observations consumed by differencing, are excluded.
type Metrics struct {
	MAE   float64
	RMSE  float64
	Sigma float64 // sample standard deviation of the joined actuals
	N     int
}

// ComputeMetrics evaluates MAE and RMSE between the target series and the
// model's fitted values, restricted to timestamps present in both.
func ComputeMetrics(actual *models.ObservationSeries, fittedTimestamps []time.Time, fittedValues []float64) Metrics {
	fitted := make(map[int64]float64, len(fittedValues))
	for i, ts := range fittedTimestamps {
		if i < len(fittedValues) {
			fitted[ts.Unix()] = fittedValues[i]
		}
	}

	var joined []float64
	var absSum, sqSum float64
	for i, ts := range actual.Timestamps {
		fv, ok := fitted[ts.Unix()]
		if !ok {
			continue
		}
		diff := actual.Values[i] - fv
		absSum += math.Abs(diff)
		sqSum += diff * diff
		joined = append(joined, actual.Values[i])
	}

	n := len(joined)
	if n == 0 {
		return Metrics{}
	}

	return Metrics{
		MAE:   absSum / float64(n),
		RMSE:  math.Sqrt(sqSum / float64(n)),
		Sigma: math.Sqrt(variance(joined)),
		N:     n,
	}
}

// The interpreter is a pure decision table over (order component, numeric
// threshold). Each rule maps a bucket to an advisory sentence; the output
// never feeds back into model selection or forecast values.

type bucketRule struct {
	max     int // inclusive upper bound of the bucket
	message string
}

var pRules = []bucketRule{
	{0, "p = %d: the contribution of past observations is limited."},
	{2, "p = %d: the model exploits moderate memory of recent values."},
	{math.MaxInt, "p = %d: deeper temporal dependency is present in the series."},
}

var qRules = []bucketRule{
	{0, "q = %d: the residual noise is largely unstructured."},
	{2, "q = %d: the model captures short-term shocks in the residual."},
	{math.MaxInt, "q = %d: the residual shows more complex structure."},
}

func bucketMessage(rules []bucketRule, value int) string {
	for _, r := range rules {
		if value <= r.max {
			return fmt.Sprintf(r.message, value)
		}
	}
	return ""
}

// InterpretOrder derives the qualitative reading of the selected (p,d,q)
// tuple, branching on the stationarity probe where the probe is available.
// A nil adf selects the "unavailable" branches.
func InterpretOrder(order Order, adf *ADFResult) []string {
	msgs := make([]string, 0, 3)
	msgs = append(msgs, interpretD(order.D, adf))
	msgs = append(msgs, bucketMessage(pRules, order.P))
	msgs = append(msgs, bucketMessage(qRules, order.Q))
	return msgs
}

func interpretD(d int, adf *ADFResult) string {
	switch {
	case d == 0 && adf != nil && adf.PValue < 0.05:
		return "d = 0: the series already appears stationary (ADF p-value < 0.05)."
	case d == 0:
		return "d = 0: no differencing applied; stationarity appears handled by the AR/MA or exogenous terms."
	case adf == nil:
		return fmt.Sprintf("d = %d: differencing degree selected to improve model stability.", d)
	case adf.PValue >= 0.05:
		return fmt.Sprintf("d = %d: differencing applied to address trend/non-stationarity (ADF p-value >= 0.05).", d)
	default:
		return fmt.Sprintf("d = %d: the model prefers differencing to optimize the fit despite a stationarity signal.", d)
	}
}

// Ratio buckets for RMSE relative to the natural variability of the series.
// Boundary values fall into the higher bucket: a ratio of exactly 0.5 reads
// as "in line", exactly 1.0 as "exceeds".
var ratioRules = []struct {
	below   float64
	message string
}{
	{0.5, "Average deviations are contained relative to the natural variability of the series."},
	{1.0, "Average deviations are in line with the natural variability; the model captures much of the signal."},
	{math.Inf(1), "Average deviations exceed the natural variability; consider more data or additional explanatory factors."},
}

const lowVariabilityNote = "The natural variability of the series is very low: small deviations can weigh relatively more."
const fidelityHint = "Hint: compare the fitted profile with observed peaks to spot lags or attenuation."

// InterpretFit turns the fit-quality ratio RMSE/sigma into advisory notes.
// A degenerate sigma (zero, NaN, or effectively no spread) yields the
// low-variability note instead of a ratio-based one.
func InterpretFit(rmse, sigma float64) []string {
	if sigma == 0 || math.IsNaN(sigma) {
		return []string{lowVariabilityNote}
	}

	ratio := rmse / sigma
	for _, r := range ratioRules {
		if ratio < r.below {
			return []string{r.message, fidelityHint}
		}
	}
	return nil
}

// FitRatio returns RMSE/sigma and whether it is defined.
func FitRatio(rmse, sigma float64) (float64, bool) {
	if sigma == 0 || math.IsNaN(sigma) {
		return 0, false
	}
	return rmse / sigma, true
}
