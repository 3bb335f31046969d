package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/olivesense/trapcast-go/internal/models"
)

// Order is an ARIMAX order candidate (p, d, q): autoregressive lag count,
// differencing degree, and moving-average lag count.
type Order struct {
	P int `json:"p"`
	D int `json:"d"`
	Q int `json:"q"`
}

func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

// Model is a fitted regression-with-ARMA-errors model: the target series,
// differenced D times, is regressed on an intercept and the (equally
// differenced) exogenous columns, and the regression errors follow an
// ARMA(P,Q) process estimated by Yule-Walker / method of moments.
// Stationarity and invertibility are not enforced; coefficients are only
// loosely bounded so that no order candidate is rejected on region grounds.
type Model struct {
	Order     Order
	RegCoeffs []float64 // intercept first, then one per exogenous column
	ARCoeffs  []float64
	MACoeffs  []float64
	Variance  float64 // innovation variance
	LogLik    float64
	AIC       float64

	fittedTimestamps []time.Time
	fitted           []float64 // original scale, aligned to timestamps[D:]

	numExog     int
	lastLevel   float64   // last undifferenced target value, for integration
	lastExogRow []float64 // last undifferenced exogenous row
	lastErrors  []float64 // most-recent-first ARMA error values (length P)
	lastInnov   []float64 // most-recent-first innovations (length Q)
}

// PointForecast is a raw one-step-ahead forecast: predicted mean and a
// two-sided 95% interval, before count projection.
type PointForecast struct {
	Mean  float64
	Lower float64
	Upper float64
}

// Fit estimates a regression-with-ARMA-errors model of the given order
// against the target series and exogenous matrix. A fit error marks the
// candidate as unusable; the order search skips it and continues.
func Fit(y *models.ObservationSeries, exog *models.ExogenousMatrix, order Order) (*Model, error) {
	if order.P < 0 || order.D < 0 || order.Q < 0 {
		return nil, errors.New("order components must be non-negative")
	}
	if order.D > 1 {
		return nil, errors.New("differencing degrees above 1 are not supported")
	}

	n := y.Len()
	numExog := 0
	if exog != nil {
		if exog.Len() != n {
			return nil, fmt.Errorf("exogenous matrix has %d rows, target has %d", exog.Len(), n)
		}
		numExog = len(exog.Names)
	}

	yd := diffN(y.Values, order.D)
	nEff := len(yd)
	kReg := 1 + numExog
	if nEff <= kReg+order.P+order.Q {
		return nil, fmt.Errorf("insufficient observations for order %s: %d effective points, %d parameters",
			order, nEff, kReg+order.P+order.Q)
	}

	// Design matrix on the differenced scale.
	x := make([][]float64, nEff)
	for t := 0; t < nEff; t++ {
		x[t] = make([]float64, kReg)
		x[t][0] = 1
	}
	for j := 0; j < numExog; j++ {
		col := columnDiffed(exog, j, order.D)
		for t := 0; t < nEff; t++ {
			x[t][1+j] = col[t]
		}
	}

	beta, _ := olsRegression(x, yd)
	if beta == nil || !allFinite(beta) {
		return nil, errors.New("exogenous regression is singular")
	}

	// Regression errors carry the serial structure the ARMA part models.
	u := make([]float64, nEff)
	for t := 0; t < nEff; t++ {
		pred := 0.0
		for j := 0; j < kReg; j++ {
			pred += beta[j] * x[t][j]
		}
		u[t] = yd[t] - pred
	}

	arCoeffs, maCoeffs, err := fitARMA(u, order.P, order.Q)
	if err != nil {
		return nil, err
	}

	// One-pass CSS recursion: innovations e_t = u_t - sum(phi_i u_{t-i})
	// - sum(theta_j e_{t-j}), with pre-sample terms taken as zero.
	innov := make([]float64, nEff)
	uHat := make([]float64, nEff)
	for t := 0; t < nEff; t++ {
		pred := 0.0
		for i := 0; i < order.P && t-i-1 >= 0; i++ {
			pred += arCoeffs[i] * u[t-i-1]
		}
		for j := 0; j < order.Q && t-j-1 >= 0; j++ {
			pred += maCoeffs[j] * innov[t-j-1]
		}
		uHat[t] = pred
		innov[t] = u[t] - pred
	}

	startIdx := order.P
	if order.Q > startIdx {
		startIdx = order.Q
	}
	sse := 0.0
	count := 0
	for t := startIdx; t < nEff; t++ {
		sse += innov[t] * innov[t]
		count++
	}
	dof := count - order.P - order.Q
	if dof < 1 {
		dof = count
	}
	if count == 0 {
		return nil, errors.New("no residuals after warm-up")
	}
	sigma2 := sse / float64(dof)
	if sigma2 <= 0 || math.IsNaN(sigma2) || math.IsInf(sigma2, 0) {
		return nil, errors.New("degenerate innovation variance")
	}

	// Gaussian log-likelihood and AIC; k counts regression, AR, MA
	// coefficients and the innovation variance.
	nf := float64(nEff)
	logLik := -nf/2*math.Log(2*math.Pi) - nf/2*math.Log(sigma2) - sse/(2*sigma2)
	k := kReg + order.P + order.Q + 1
	aic := -2*logLik + 2*float64(k)

	// Fitted values back on the original scale. For d=1 the prediction of
	// level t is the previous observed level plus the predicted difference,
	// so the first D training timestamps have no fitted value.
	fitted := make([]float64, nEff)
	for t := 0; t < nEff; t++ {
		pred := 0.0
		for j := 0; j < kReg; j++ {
			pred += beta[j] * x[t][j]
		}
		fitted[t] = pred + uHat[t]
	}
	if order.D == 1 {
		for t := 0; t < nEff; t++ {
			fitted[t] += y.Values[t]
		}
	}
	if !allFinite(fitted) {
		return nil, errors.New("non-finite fitted values")
	}

	fittedTimestamps := make([]time.Time, nEff)
	copy(fittedTimestamps, y.Timestamps[order.D:])

	lastErrors := make([]float64, order.P)
	for i := 0; i < order.P; i++ {
		lastErrors[i] = u[nEff-1-i]
	}
	lastInnov := make([]float64, order.Q)
	for j := 0; j < order.Q; j++ {
		lastInnov[j] = innov[nEff-1-j]
	}

	var lastExogRow []float64
	if exog != nil {
		lastExogRow = exog.LastRow()
	}

	return &Model{
		Order:            order,
		RegCoeffs:        beta,
		ARCoeffs:         arCoeffs,
		MACoeffs:         maCoeffs,
		Variance:         sigma2,
		LogLik:           logLik,
		AIC:              aic,
		fittedTimestamps: fittedTimestamps,
		fitted:           fitted,
		numExog:          numExog,
		lastLevel:        y.Last(),
		lastExogRow:      lastExogRow,
		lastErrors:       lastErrors,
		lastInnov:        lastInnov,
	}, nil
}

// Forecast produces the raw one-step-ahead forecast given the next period's
// exogenous row. The 95% interval uses the one-step innovation variance.
func (m *Model) Forecast(futureExog []float64) (*PointForecast, error) {
	if len(futureExog) != m.numExog {
		return nil, fmt.Errorf("expected %d exogenous values, got %d", m.numExog, len(futureExog))
	}

	// Future design row on the differenced scale.
	xNext := make([]float64, 1+m.numExog)
	xNext[0] = 1
	for j := 0; j < m.numExog; j++ {
		if m.Order.D == 1 {
			xNext[1+j] = futureExog[j] - m.lastExogRow[j]
		} else {
			xNext[1+j] = futureExog[j]
		}
	}

	uNext := 0.0
	for i := 0; i < m.Order.P; i++ {
		uNext += m.ARCoeffs[i] * m.lastErrors[i]
	}
	for j := 0; j < m.Order.Q; j++ {
		uNext += m.MACoeffs[j] * m.lastInnov[j]
	}

	ydNext := uNext
	for j := range xNext {
		ydNext += m.RegCoeffs[j] * xNext[j]
	}

	yNext := ydNext
	if m.Order.D == 1 {
		yNext += m.lastLevel
	}

	if math.IsNaN(yNext) || math.IsInf(yNext, 0) {
		return nil, errors.New("non-finite forecast")
	}

	half := 1.959963984540054 * math.Sqrt(m.Variance)
	return &PointForecast{
		Mean:  yNext,
		Lower: yNext - half,
		Upper: yNext + half,
	}, nil
}

// FittedValues returns the in-sample fitted values on the original scale,
// aligned to the training timestamps from index D onward.
func (m *Model) FittedValues() ([]time.Time, []float64) {
	timestamps := make([]time.Time, len(m.fittedTimestamps))
	copy(timestamps, m.fittedTimestamps)
	values := make([]float64, len(m.fitted))
	copy(values, m.fitted)
	return timestamps, values
}

// fitARMA estimates zero-mean ARMA coefficients for the regression errors.
// AR terms come from the Yule-Walker equations; MA terms are moment
// estimates from the autocorrelation of the AR residuals, bounded away from
// the unit circle rather than constrained to it.
func fitARMA(u []float64, p, q int) (arCoeffs, maCoeffs []float64, err error) {
	arCoeffs = make([]float64, p)
	maCoeffs = make([]float64, q)
	if p == 0 && q == 0 {
		return arCoeffs, maCoeffs, nil
	}

	if variance(u) == 0 {
		return nil, nil, errors.New("zero-variance regression errors")
	}

	if p > 0 {
		ac := acf(u, p)
		if ac == nil {
			return nil, nil, errors.New("degenerate autocorrelation")
		}
		if phi := yuleWalker(ac, p); phi != nil {
			copy(arCoeffs, phi)
		}
		for i := range arCoeffs {
			arCoeffs[i] = clamp(arCoeffs[i], -0.99, 0.99)
		}
	}

	if q > 0 {
		arResid := make([]float64, len(u))
		for t := 0; t < len(u); t++ {
			pred := 0.0
			for i := 0; i < p && t-i-1 >= 0; i++ {
				pred += arCoeffs[i] * u[t-i-1]
			}
			arResid[t] = u[t] - pred
		}
		ac := acf(arResid, q)
		if ac != nil {
			for j := 0; j < q; j++ {
				maCoeffs[j] = clamp(ac[j+1], -0.9, 0.9)
			}
		}
	}

	if !allFinite(arCoeffs) || !allFinite(maCoeffs) {
		return nil, nil, errors.New("non-finite ARMA coefficients")
	}
	return arCoeffs, maCoeffs, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// columnDiffed returns the j-th exogenous column differenced d times.
func columnDiffed(exog *models.ExogenousMatrix, j, d int) []float64 {
	col := make([]float64, exog.Len())
	for t, row := range exog.Rows {
		col[t] = row[j]
	}
	return diffN(col, d)
}
