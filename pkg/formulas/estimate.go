package formulas

import (
	"fmt"

	"github.com/markcheno/go-talib"
)

// ReturnsFromPrices converts a price series to simple percentage returns:
// Returns[i] = (Price[i+1] - Price[i]) / Price[i].
func ReturnsFromPrices(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

// MeanReturns estimates per-asset expected returns as the sample mean of
// each column of a T×N return-history matrix (rows are periods, columns are
// assets). All rows must have the same length.
func MeanReturns(history [][]float64) ([]float64, error) {
	series, err := columns(history)
	if err != nil {
		return nil, err
	}

	means := make([]float64, len(series))
	for i, s := range series {
		means[i] = Mean(s)
	}
	return means, nil
}

// EWMAReturns estimates per-asset expected returns as the final value of an
// exponential moving average over each asset's return series, weighting
// recent observations more heavily than the sample mean does. The span must
// be at least 2 and no longer than the history.
func EWMAReturns(history [][]float64, span int) ([]float64, error) {
	series, err := columns(history)
	if err != nil {
		return nil, err
	}
	if span < 2 {
		return nil, fmt.Errorf("EWMA span must be at least 2, got %d", span)
	}
	if len(history) < span {
		return nil, fmt.Errorf("EWMA span %d exceeds history length %d", span, len(history))
	}

	estimates := make([]float64, len(series))
	for i, s := range series {
		ema := talib.Ema(s, span)
		estimates[i] = ema[len(ema)-1]
	}
	return estimates, nil
}

// SampleCovariance estimates the asset covariance matrix from a T×N
// return-history matrix. At least two periods are required.
func SampleCovariance(history [][]float64) ([][]float64, error) {
	series, err := columns(history)
	if err != nil {
		return nil, err
	}
	if len(history) < 2 {
		return nil, fmt.Errorf("covariance estimation requires at least 2 periods, got %d", len(history))
	}

	n := len(series)
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := Covariance(series[i], series[j])
			cov[i][j] = c
			cov[j][i] = c
		}
	}
	return cov, nil
}

// columns transposes a T×N history matrix into per-asset series.
func columns(history [][]float64) ([][]float64, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("return history cannot be empty")
	}

	n := len(history[0])
	if n == 0 {
		return nil, fmt.Errorf("return history rows cannot be empty")
	}

	series := make([][]float64, n)
	for j := range series {
		series[j] = make([]float64, len(history))
	}
	for t, row := range history {
		if len(row) != n {
			return nil, fmt.Errorf("history row %d has %d assets, want %d", t, len(row), n)
		}
		for j, v := range row {
			series[j][t] = v
		}
	}
	return series, nil
}
