package calculator

import (
	"errors"
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrEmpty is returned by aggregations over no values.
var ErrEmpty = errors.New("no values provided")

// Mean returns the arithmetic mean.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmpty
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// Median returns the middle value, or the average of the two middle values
// for an even count. The input is not modified.
func Median(values []float64) (float64, error) {
	n := len(values)
	if n == 0 {
		return 0, ErrEmpty
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2], nil
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, nil
}

// Frequency returns count/total, or 0 when total is 0.
func Frequency(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

// Round rounds the exact binary value to the given decimal places, ties to
// even. 2.675 is stored as 2.67499... and rounds to 2.67.
func Round(value float64, places int32) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	d, err := decimal.NewFromString(strconv.FormatFloat(value, 'f', int(places), 64))
	if err != nil {
		return value
	}
	f, _ := d.Float64()
	return f
}

// ArgMin returns the index of the smallest value; the first one wins on ties.
func ArgMin(values []float64) (int, error) {
	if len(values) == 0 {
		return -1, ErrEmpty
	}
	idx := 0
	for i := 1; i < len(values); i++ {
		if values[i] < values[idx] {
			idx = i
		}
	}
	return idx, nil
}
