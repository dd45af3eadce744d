// Package technical holds price-series indicators.
package technical

import (
	"math"

	"github.com/seenimoa/stockdash/pkg/models"
)

// SMA calculates the Simple Moving Average for the given window.
// The result has the same length as data; the first window-1 entries,
// and every entry when data is shorter than the window, are NaN.
func SMA(data []float64, window int) []float64 {
	n := len(data)
	result := make([]float64, n)
	for i := range result {
		result[i] = math.NaN()
	}
	if window <= 0 || n < window {
		return result
	}

	sum := 0.0
	for i := 0; i < window; i++ {
		sum += data[i]
	}
	result[window-1] = sum / float64(window)

	for i := window; i < n; i++ {
		sum += data[i] - data[i-window]
		result[i] = sum / float64(window)
	}
	return result
}

// Closes extracts the close column of bars.
func Closes(bars []models.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
