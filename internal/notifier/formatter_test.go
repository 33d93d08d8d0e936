package notifier

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendLens/internal/model"
	"TrendLens/internal/recorder"
)

func sampleReport() *model.Report {
	return &model.Report{
		Symbol:     "SPX",
		Source:     "csv",
		FirstDate:  time.Date(1997, 3, 4, 0, 0, 0, 0, time.UTC),
		LastDate:   time.Date(2020, 5, 29, 0, 0, 0, 0, time.UTC),
		FastPeriod: 10,
		SlowPeriod: 40,
		Close:      model.CloseStats{Total: 5812, Red: 2650, Green: 3100, Unchanged: 62},
		Trends: []model.TrendStats{
			{Trend: model.TrendRising, Days: 2397, Frequency: 0.4124, MedianChange: 0.081, MeanChange: 0.093},
			{Trend: model.TrendFalling, Days: 0},
			{Trend: model.TrendMixed, Days: 3415, Frequency: 0.5876, MedianChange: -0.012, MeanChange: -0.02},
		},
		Lows: []model.LowTimeStats{{
			Trend:        model.TrendRising,
			Days:         4,
			MeanMinute:   620.4,
			MedianMinute: 572.5,
			Buckets: []model.LowTimeBucket{
				{TimeOfDay: "09:30", Count: 2, Frequency: 0.5},
				{TimeOfDay: "09:35", Count: 1, Frequency: 0.25},
				{TimeOfDay: "15:55", Count: 1, Frequency: 0.25},
			},
		}},
	}
}

func TestFormatReport_Sections(t *testing.T) {
	text := FormatReport(sampleReport())

	assert.Contains(t, text, "SPX (csv) | 1997-03-04 .. 2020-05-29")
	assert.Contains(t, text, "Total days: 5,812")
	assert.Contains(t, text, "Days closing in red: 2,650, green: 3,100, unchanged: 62")
	assert.Contains(t, text, "RISING  (close > 10d > 40d): 41.24% of time (2,397 days) | median +0.081% | mean +0.093%")
	assert.Contains(t, text, "FALLING (close < 10d < 40d): 0 days | median n/a | mean n/a")
	assert.Contains(t, text, "Intraday Low Time (RISING days)")
	assert.Contains(t, text, "Mean low time: 10:20 | median: 09:33")
	assert.Contains(t, text, "  09:30  2 (50.00%)")
}

func TestFormatReport_WithoutLows(t *testing.T) {
	r := sampleReport()
	r.Lows = nil
	assert.NotContains(t, FormatReport(r), "Intraday Low Time")

	r.Lows = []model.LowTimeStats{{Trend: model.TrendFalling}}
	assert.Contains(t, FormatLowTimes(r), "No matching days with intraday data")
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No recorded runs", FormatHistory(nil))

	text := FormatHistory([]recorder.RunSummary{{
		RecordedAt: time.Date(2020, 6, 1, 8, 0, 0, 0, time.Local),
		Symbol:     "SPX", FirstDate: "1997-03-04", LastDate: "2020-05-29",
		RisingFreq: 0.4124, RisingMedian: 0.081,
	}})
	assert.True(t, strings.HasPrefix(text, "Recent runs:"))
	assert.Contains(t, text, "2020-06-01 08:00 SPX 1997-03-04..2020-05-29 rising 41.24% (median +0.081%)")
}

func TestConsoleNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf)
	require.NoError(t, n.SendWithRetry(context.Background(), "hello", 3))
	assert.Equal(t, "hello\n", buf.String())
}
