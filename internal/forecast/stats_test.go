package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndVariance(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.InDelta(t, 2.0, mean([]float64{1, 2, 3}), 1e-12)

	assert.Equal(t, 0.0, variance([]float64{5}))
	assert.InDelta(t, 1.0, variance([]float64{1, 2, 3}), 1e-12)
	assert.Equal(t, 0.0, variance([]float64{4, 4, 4, 4}))
}

func TestDiff(t *testing.T) {
	assert.Empty(t, diff([]float64{7}))
	assert.Equal(t, []float64{2, 3}, diff([]float64{1, 3, 6}))

	// Second differencing of a quadratic is constant
	values := []float64{0, 1, 4, 9, 16, 25}
	assert.Equal(t, []float64{2, 2, 2, 2}, diffN(values, 2))

	// d = 0 is the identity
	assert.Equal(t, values, diffN(values, 0))
}

func TestACF(t *testing.T) {
	t.Run("degenerate input returns nil", func(t *testing.T) {
		assert.Nil(t, acf([]float64{1}, 2))
		assert.Nil(t, acf([]float64{3, 3, 3, 3}, 2))
	})

	t.Run("lag zero is one", func(t *testing.T) {
		values := []float64{1, 2, 1, 3, 2, 4, 1, 5}
		result := acf(values, 3)
		require.Len(t, result, 4)
		assert.Equal(t, 1.0, result[0])
		for _, r := range result {
			assert.LessOrEqual(t, math.Abs(r), 1.0)
		}
	})

	t.Run("alternating series has negative lag-1 autocorrelation", func(t *testing.T) {
		values := []float64{1, -1, 1, -1, 1, -1, 1, -1, 1, -1}
		result := acf(values, 1)
		require.Len(t, result, 2)
		assert.Negative(t, result[1])
	})
}

func TestYuleWalker(t *testing.T) {
	t.Run("order one reads lag-1 autocorrelation", func(t *testing.T) {
		phi := yuleWalker([]float64{1, 0.7, 0.49}, 1)
		require.Len(t, phi, 1)
		assert.InDelta(t, 0.7, phi[0], 1e-12)
	})

	t.Run("geometric autocorrelation yields a pure AR(1)", func(t *testing.T) {
		rho := 0.6
		autocorr := []float64{1, rho, rho * rho, rho * rho * rho}
		phi := yuleWalker(autocorr, 2)
		require.Len(t, phi, 2)
		assert.InDelta(t, rho, phi[0], 1e-10)
		assert.InDelta(t, 0.0, phi[1], 1e-10)
	})

	t.Run("insufficient autocorrelations return nil", func(t *testing.T) {
		assert.Nil(t, yuleWalker([]float64{1, 0.5}, 2))
		assert.Nil(t, yuleWalker([]float64{1, 0.5}, 0))
	})
}

func TestOLSRegression(t *testing.T) {
	t.Run("recovers exact linear coefficients", func(t *testing.T) {
		x := [][]float64{{1, 0}, {1, 1}, {1, 2}, {1, 3}}
		y := []float64{2, 5, 8, 11} // y = 2 + 3x
		coeffs, se := olsRegression(x, y)
		require.Len(t, coeffs, 2)
		assert.InDelta(t, 2.0, coeffs[0], 1e-9)
		assert.InDelta(t, 3.0, coeffs[1], 1e-9)
		require.Len(t, se, 2)
		assert.InDelta(t, 0.0, se[0], 1e-6)
	})

	t.Run("collinear columns are singular", func(t *testing.T) {
		x := [][]float64{{1, 2}, {1, 2}, {1, 2}}
		y := []float64{1, 2, 3}
		coeffs, se := olsRegression(x, y)
		assert.Nil(t, coeffs)
		assert.Nil(t, se)
	})

	t.Run("saturated fit has no standard errors", func(t *testing.T) {
		x := [][]float64{{1, 0}, {1, 1}}
		y := []float64{1, 2}
		coeffs, se := olsRegression(x, y)
		require.NotNil(t, coeffs)
		assert.Nil(t, se)
	})
}

func TestInvertMatrix(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		inv := invertMatrix([][]float64{{1, 0}, {0, 1}})
		require.NotNil(t, inv)
		assert.InDelta(t, 1.0, inv[0][0], 1e-12)
		assert.InDelta(t, 0.0, inv[0][1], 1e-12)
	})

	t.Run("known two by two", func(t *testing.T) {
		// [[4,7],[2,6]] has inverse [[0.6,-0.7],[-0.2,0.4]]
		inv := invertMatrix([][]float64{{4, 7}, {2, 6}})
		require.NotNil(t, inv)
		assert.InDelta(t, 0.6, inv[0][0], 1e-9)
		assert.InDelta(t, -0.7, inv[0][1], 1e-9)
		assert.InDelta(t, -0.2, inv[1][0], 1e-9)
		assert.InDelta(t, 0.4, inv[1][1], 1e-9)
	})

	t.Run("singular returns nil", func(t *testing.T) {
		assert.Nil(t, invertMatrix([][]float64{{1, 2}, {2, 4}}))
		assert.Nil(t, invertMatrix(nil))
	})
}

func TestAllFinite(t *testing.T) {
	assert.True(t, allFinite([]float64{0, -1, 1e300}))
	assert.False(t, allFinite([]float64{0, math.NaN()}))
	assert.False(t, allFinite([]float64{math.Inf(1)}))
}
