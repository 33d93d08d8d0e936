package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendLens/internal/model"
)

func TestCalculateEMA_SeededRecursion(t *testing.T) {
	// span 3 -> alpha 0.5
	ema, err := CalculateEMA([]float64{1, 2, 3, 4, 5}, 3, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1.5, 2.25, 3.125, 4.0625}, ema, 1e-12)
}

func TestCalculateEMA_MinPeriodsMasksWarmup(t *testing.T) {
	ema, err := CalculateEMA([]float64{1, 2, 3, 4, 5}, 3, 3)
	require.NoError(t, err)
	require.Len(t, ema, 5)
	assert.True(t, math.IsNaN(ema[0]))
	assert.True(t, math.IsNaN(ema[1]))
	assert.InDelta(t, 2.25, ema[2], 1e-12)
	assert.InDelta(t, 4.0625, ema[4], 1e-12)
}

func TestCalculateEMA_ConstantSeries(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 42
	}
	ema, err := CalculateEMA(values, 10, 10)
	require.NoError(t, err)
	for i := 9; i < len(ema); i++ {
		assert.InDelta(t, 42.0, ema[i], 1e-9)
	}
}

func TestCalculateEMA_InvalidInput(t *testing.T) {
	_, err := CalculateEMA([]float64{1}, 0, 1)
	assert.Error(t, err)
	_, err = CalculateEMA([]float64{1}, 3, -1)
	assert.Error(t, err)

	ema, err := CalculateEMA(nil, 3, 3)
	require.NoError(t, err)
	assert.Empty(t, ema)
}

func TestCalculateCloseEMA(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 4)
	for i := range bars {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: float64(i + 1)}
	}
	ema, err := CalculateCloseEMA(bars, 3)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(ema[1]))
	assert.InDelta(t, 2.25, ema[2], 1e-12)
	assert.InDelta(t, 3.125, ema[3], 1e-12)
}

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 10.0, PercentChange(100, 110), 1e-9)
	assert.InDelta(t, -5.0, PercentChange(200, 190), 1e-9)
	assert.Equal(t, 0.0, PercentChange(0, 5))
}
