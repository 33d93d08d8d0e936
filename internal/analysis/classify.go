package analysis

import (
	"fmt"

	"TrendLens/internal/calculator"
	"TrendLens/internal/model"
)

// Classify places a day in a trend state from its close and the two EMAs.
// Comparisons against NaN are false, so undefined EMAs yield TrendMixed.
func Classify(close, fastEMA, slowEMA float64) model.Trend {
	switch {
	case close > fastEMA && fastEMA > slowEMA:
		return model.TrendRising
	case close < fastEMA && fastEMA < slowEMA:
		return model.TrendFalling
	default:
		return model.TrendMixed
	}
}

// BuildDailyRows derives percent change, fast and slow EMAs and the trend of
// every daily bar. The first slow-1 rows, where the slow EMA is still warming
// up, are dropped.
func BuildDailyRows(bars []model.OHLCV, fast, slow int) ([]model.DailyRow, error) {
	if fast <= 0 || slow <= 0 {
		return nil, fmt.Errorf("ema periods must be positive, got %d/%d", fast, slow)
	}
	if fast >= slow {
		return nil, fmt.Errorf("fast period %d must be shorter than slow period %d", fast, slow)
	}
	if len(bars) < slow {
		return nil, fmt.Errorf("need at least %d daily bars, got %d", slow, len(bars))
	}

	fastEMA, err := calculator.CalculateCloseEMA(bars, fast)
	if err != nil {
		return nil, fmt.Errorf("fast ema: %w", err)
	}
	slowEMA, err := calculator.CalculateCloseEMA(bars, slow)
	if err != nil {
		return nil, fmt.Errorf("slow ema: %w", err)
	}

	rows := make([]model.DailyRow, 0, len(bars)-slow+1)
	for i := slow - 1; i < len(bars); i++ {
		b := bars[i]
		rows = append(rows, model.DailyRow{
			Date:          b.Time,
			Open:          b.Open,
			Close:         b.Close,
			PercentChange: calculator.PercentChange(b.Open, b.Close),
			FastEMA:       fastEMA[i],
			SlowEMA:       slowEMA[i],
			Trend:         Classify(b.Close, fastEMA[i], slowEMA[i]),
		})
	}
	return rows, nil
}

// CloseDistribution counts red, green and unchanged days.
func CloseDistribution(rows []model.DailyRow) model.CloseStats {
	stats := model.CloseStats{Total: len(rows)}
	for _, r := range rows {
		switch {
		case r.Close < r.Open:
			stats.Red++
		case r.Close > r.Open:
			stats.Green++
		default:
			stats.Unchanged++
		}
	}
	return stats
}

// SummarizeTrend returns how often the trend occurs and the median and mean
// percent change of its days. Frequency is rounded to 4 places, changes to 3.
func SummarizeTrend(rows []model.DailyRow, trend model.Trend) model.TrendStats {
	var changes []float64
	for _, r := range rows {
		if r.Trend == trend {
			changes = append(changes, r.PercentChange)
		}
	}
	stats := model.TrendStats{
		Trend:     trend,
		Days:      len(changes),
		Frequency: calculator.Round(calculator.Frequency(len(changes), len(rows)), 4),
	}
	if median, err := calculator.Median(changes); err == nil {
		stats.MedianChange = calculator.Round(median, 3)
	}
	if mean, err := calculator.Mean(changes); err == nil {
		stats.MeanChange = calculator.Round(mean, 3)
	}
	return stats
}
