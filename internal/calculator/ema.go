package calculator

import (
	"errors"
	"math"

	"TrendLens/internal/model"
)

// CalculateEMA computes the exponential moving average series of values.
// The smoothing factor is 2/(span+1) and the series is seeded with the first
// value, so y[t] = y[t-1] + a*(x[t]-y[t-1]). Positions backed by fewer than
// minPeriods observations are NaN.
func CalculateEMA(values []float64, span, minPeriods int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	if minPeriods < 0 {
		return nil, errors.New("min periods must not be negative")
	}
	ema := make([]float64, len(values))
	if len(values) == 0 {
		return ema, nil
	}

	alpha := 2.0 / float64(span+1)
	prev := values[0]
	for i, v := range values {
		if i > 0 {
			prev += alpha * (v - prev)
		}
		if i+1 < minPeriods {
			ema[i] = math.NaN()
		} else {
			ema[i] = prev
		}
	}
	return ema, nil
}

// CalculateCloseEMA returns the EMA of bar closes with minPeriods equal to span.
func CalculateCloseEMA(bars []model.OHLCV, span int) ([]float64, error) {
	return CalculateEMA(extractCloses(bars), span, span)
}

// PercentChange returns the open-to-close change in percent.
func PercentChange(open, close float64) float64 {
	if open == 0 {
		return 0
	}
	return 100 * (close/open - 1)
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
