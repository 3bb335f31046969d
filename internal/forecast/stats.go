// Package forecast implements the ARIMAX forecasting core: an augmented
// Dickey-Fuller stationarity probe, a regression-with-ARMA-errors estimator,
// an exhaustive order search over a bounded (p,d,q) grid, one-step-ahead
// forecasting with count projection, and rule-based fit diagnostics.
package forecast

import "math"

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - m
		sumSq += diff * diff
	}
	return sumSq / float64(len(values)-1)
}

// diff returns the first difference of values, one element shorter.
func diff(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	result := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		result[i-1] = values[i] - values[i-1]
	}
	return result
}

// diffN applies first differencing d times.
func diffN(values []float64, d int) []float64 {
	result := values
	for i := 0; i < d; i++ {
		result = diff(result)
	}
	return result
}

// acf computes the sample autocorrelation function up to maxLag, with
// acf[0] = 1. Returns nil for degenerate input.
func acf(values []float64, maxLag int) []float64 {
	n := len(values)
	if n < 2 || maxLag < 0 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	m := mean(values)
	c0 := 0.0
	for _, v := range values {
		c0 += (v - m) * (v - m)
	}
	if c0 == 0 {
		return nil
	}

	result := make([]float64, maxLag+1)
	result[0] = 1
	for k := 1; k <= maxLag; k++ {
		ck := 0.0
		for i := 0; i < n-k; i++ {
			ck += (values[i] - m) * (values[i+k] - m)
		}
		result[k] = ck / c0
	}
	return result
}

// yuleWalker estimates AR coefficients from an autocorrelation sequence
// using the Levinson-Durbin recursion.
func yuleWalker(autocorr []float64, order int) []float64 {
	if order <= 0 || len(autocorr) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = autocorr[1]
	if order == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]
	for i := 1; i < order; i++ {
		if v <= 0 {
			break
		}
		lambda := autocorr[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * autocorr[i-j]
		}
		lambda /= v

		newPhi := make([]float64, i+1)
		for j := 0; j < i; j++ {
			newPhi[j] = phi[j] - lambda*phi[i-1-j]
		}
		newPhi[i] = lambda
		copy(phi, newPhi)

		v *= 1 - lambda*lambda
	}
	return phi
}

// olsRegression performs ordinary least squares of y on the design matrix x.
// Returns the coefficient vector and per-coefficient standard errors, or
// (nil, nil) when the normal equations are singular. Standard errors are nil
// when there are no residual degrees of freedom.
func olsRegression(x [][]float64, y []float64) (coeffs, stdErrors []float64) {
	n := len(y)
	if n == 0 || len(x) != n {
		return nil, nil
	}
	k := len(x[0])

	xtx := make([][]float64, k)
	for i := range xtx {
		xtx[i] = make([]float64, k)
	}
	xty := make([]float64, k)

	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			xty[j] += x[i][j] * y[i]
			for l := 0; l < k; l++ {
				xtx[j][l] += x[i][j] * x[i][l]
			}
		}
	}

	xtxInv := invertMatrix(xtx)
	if xtxInv == nil {
		return nil, nil
	}

	coeffs = make([]float64, k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			coeffs[i] += xtxInv[i][j] * xty[j]
		}
	}

	sse := 0.0
	for i := 0; i < n; i++ {
		pred := 0.0
		for j := 0; j < k; j++ {
			pred += coeffs[j] * x[i][j]
		}
		residual := y[i] - pred
		sse += residual * residual
	}

	if n <= k {
		return coeffs, nil
	}

	s2 := sse / float64(n-k)
	stdErrors = make([]float64, k)
	for i := 0; i < k; i++ {
		stdErrors[i] = math.Sqrt(s2 * xtxInv[i][i])
	}
	return coeffs, stdErrors
}

// invertMatrix inverts a square matrix via Gauss-Jordan elimination with
// partial pivoting. Returns nil for singular matrices.
func invertMatrix(m [][]float64) [][]float64 {
	n := len(m)
	if n == 0 {
		return nil
	}

	aug := make([][]float64, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]float64, 2*n)
		copy(aug[i][:n], m[i])
		aug[i][n+i] = 1
	}

	for i := 0; i < n; i++ {
		maxRow := i
		for k := i + 1; k < n; k++ {
			if math.Abs(aug[k][i]) > math.Abs(aug[maxRow][i]) {
				maxRow = k
			}
		}
		aug[i], aug[maxRow] = aug[maxRow], aug[i]

		if math.Abs(aug[i][i]) < 1e-10 {
			return nil
		}

		pivot := aug[i][i]
		for j := 0; j < 2*n; j++ {
			aug[i][j] /= pivot
		}

		for k := 0; k < n; k++ {
			if k == i {
				continue
			}
			factor := aug[k][i]
			for j := 0; j < 2*n; j++ {
				aug[k][j] -= factor * aug[i][j]
			}
		}
	}

	result := make([][]float64, n)
	for i := 0; i < n; i++ {
		result[i] = make([]float64, n)
		copy(result[i], aug[i][n:])
	}
	return result
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
