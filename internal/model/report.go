package model

import "time"

// CloseStats counts days by the sign of close minus open.
type CloseStats struct {
	Total     int
	Red       int
	Green     int
	Unchanged int
}

// TrendStats summarizes the days spent in one trend state.
type TrendStats struct {
	Trend        Trend
	Days         int
	Frequency    float64 // share of all days, 0.0 ~ 1.0
	MedianChange float64 // percent
	MeanChange   float64 // percent
}

// LowTimeRow joins a daily row with the time its intraday low printed.
type LowTimeRow struct {
	DailyRow
	LowAt    string // HH:MM
	LowPrice float64
}

// LowTimeBucket counts lows printed at one time of day.
type LowTimeBucket struct {
	TimeOfDay string // HH:MM
	Count     int
	Frequency float64
}

// LowTimeStats describes when intraday lows occur on days of one trend state.
type LowTimeStats struct {
	Trend        Trend
	Days         int
	MeanMinute   float64
	MedianMinute float64
	Buckets      []LowTimeBucket
	Rows         []LowTimeRow
}

// Report is the full output of one analysis run.
type Report struct {
	ID          string
	Symbol      string
	Source      string
	GeneratedAt time.Time
	FirstDate   time.Time
	LastDate    time.Time
	FastPeriod  int
	SlowPeriod  int
	Close       CloseStats
	Trends      []TrendStats
	Lows        []LowTimeStats
	Rows        []DailyRow
}

// TrendStatsFor returns the stats for trend t, if computed.
func (r *Report) TrendStatsFor(t Trend) (TrendStats, bool) {
	for _, s := range r.Trends {
		if s.Trend == t {
			return s, true
		}
	}
	return TrendStats{}, false
}
