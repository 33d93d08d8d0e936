package model

import "time"

// DateLayout is the key used to join daily and intraday series.
const DateLayout = "2006-01-02"

// OHLCV represents a single candlestick bar.
// Daily bars carry a midnight timestamp, intraday bars the bar's time of day.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// DateKey returns the calendar date of the bar in its own location.
func (b OHLCV) DateKey() string {
	return b.Time.Format(DateLayout)
}

// Dataset holds the raw daily and intraday series for one instrument.
type Dataset struct {
	Symbol       string
	Source       string
	DailyBars    []OHLCV
	IntradayBars []OHLCV
	LoadedAt     time.Time
}
