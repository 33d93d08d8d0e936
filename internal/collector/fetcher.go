package collector

import "TrendLens/internal/model"

// Fetcher defines the interface for loading price series.
// FetchIntradayBars returns nil, nil when the source has no intraday data.
type Fetcher interface {
	FetchDailyBars(symbol string) ([]model.OHLCV, error)
	FetchIntradayBars(symbol string) ([]model.OHLCV, error)
	Name() string
}
