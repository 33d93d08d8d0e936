package model

import (
	"fmt"
	"strings"
	"time"
)

// Trend classifies a day by the ordering of close, fast EMA and slow EMA.
type Trend string

const (
	TrendRising  Trend = "RISING"  // close > fast > slow
	TrendFalling Trend = "FALLING" // close < fast < slow
	TrendMixed   Trend = "MIXED"
)

// AllTrends lists every classification in report order.
var AllTrends = []Trend{TrendRising, TrendFalling, TrendMixed}

// ParseTrend accepts a trend name in any case.
func ParseTrend(s string) (Trend, error) {
	t := Trend(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllTrends {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown trend %q", s)
}

// DailyRow is one daily bar with its derived columns.
type DailyRow struct {
	Date          time.Time
	Open          float64
	Close         float64
	PercentChange float64
	FastEMA       float64
	SlowEMA       float64
	Trend         Trend
}

// IntradayLow is the bar holding the lowest low of a session.
type IntradayLow struct {
	Date time.Time
	At   time.Time
	Low  float64
}

// MinuteOfDay returns minutes since midnight of the low's bar.
func (l IntradayLow) MinuteOfDay() int {
	return l.At.Hour()*60 + l.At.Minute()
}
