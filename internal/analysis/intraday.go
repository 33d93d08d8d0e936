package analysis

import (
	"sort"
	"time"

	"TrendLens/internal/calculator"
	"TrendLens/internal/model"
)

// DailyLows groups chronological intraday bars by calendar date and returns,
// for each date, the bar with the lowest low inside the session. The earliest
// bar wins on ties. Dates with no bar inside the session are omitted.
func DailyLows(bars []model.OHLCV, session Session) []model.IntradayLow {
	var lows []model.IntradayLow
	var day []model.OHLCV
	flush := func() {
		if len(day) == 0 {
			return
		}
		values := make([]float64, len(day))
		for i, b := range day {
			values[i] = b.Low
		}
		if idx, err := calculator.ArgMin(values); err == nil {
			b := day[idx]
			y, m, d := b.Time.Date()
			lows = append(lows, model.IntradayLow{
				Date: time.Date(y, m, d, 0, 0, 0, 0, b.Time.Location()),
				At:   b.Time,
				Low:  b.Low,
			})
		}
		day = day[:0]
	}

	currentKey := ""
	for _, b := range bars {
		key := b.DateKey()
		if key != currentKey {
			flush()
			currentKey = key
		}
		if session.Contains(b.Time.Hour()*60 + b.Time.Minute()) {
			day = append(day, b)
		}
	}
	flush()
	return lows
}

// LowTimesForTrend merges the daily rows in trend with the intraday lows on
// their date and describes when those lows printed. Days without intraday
// data are left out.
func LowTimesForTrend(rows []model.DailyRow, lows []model.IntradayLow, trend model.Trend) model.LowTimeStats {
	byDate := make(map[string]model.IntradayLow, len(lows))
	for _, l := range lows {
		byDate[l.Date.Format(model.DateLayout)] = l
	}

	stats := model.LowTimeStats{Trend: trend}
	counts := make(map[string]int)
	var minutes []float64
	for _, r := range rows {
		if r.Trend != trend {
			continue
		}
		low, ok := byDate[r.Date.Format(model.DateLayout)]
		if !ok {
			continue
		}
		at := FormatClock(low.MinuteOfDay())
		stats.Rows = append(stats.Rows, model.LowTimeRow{
			DailyRow: r,
			LowAt:    at,
			LowPrice: low.Low,
		})
		counts[at]++
		minutes = append(minutes, float64(low.MinuteOfDay()))
	}

	stats.Days = len(stats.Rows)
	if mean, err := calculator.Mean(minutes); err == nil {
		stats.MeanMinute = calculator.Round(mean, 2)
	}
	if median, err := calculator.Median(minutes); err == nil {
		stats.MedianMinute = median
	}

	for at, n := range counts {
		stats.Buckets = append(stats.Buckets, model.LowTimeBucket{
			TimeOfDay: at,
			Count:     n,
			Frequency: calculator.Round(calculator.Frequency(n, stats.Days), 4),
		})
	}
	sort.Slice(stats.Buckets, func(i, j int) bool {
		return stats.Buckets[i].TimeOfDay < stats.Buckets[j].TimeOfDay
	})
	return stats
}

// TopBuckets returns up to n buckets with the highest counts, earliest first on ties.
func TopBuckets(buckets []model.LowTimeBucket, n int) []model.LowTimeBucket {
	sorted := make([]model.LowTimeBucket, len(buckets))
	copy(sorted, buckets)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].TimeOfDay < sorted[j].TimeOfDay
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
