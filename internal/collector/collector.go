package collector

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"TrendLens/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	DailyData    []model.OHLCV
	IntradayData []model.OHLCV
	DailyErr     error
	IntradayErr  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ string) ([]model.OHLCV, error) {
	return m.DailyData, m.DailyErr
}

func (m *MockFetcher) FetchIntradayBars(_ string) ([]model.OHLCV, error) {
	return m.IntradayData, m.IntradayErr
}

// Collector loads the daily and intraday series of one symbol.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol}
}

// Collect fetches both series concurrently. A failing daily series fails the
// collection; a failing intraday series is logged and left empty.
func (c *Collector) Collect() (*model.Dataset, error) {
	var daily, intraday []model.OHLCV
	var g errgroup.Group

	g.Go(func() error {
		bars, err := c.Fetcher.FetchDailyBars(c.Symbol)
		if err != nil {
			return fmt.Errorf("fetch daily bars: %w", err)
		}
		if len(bars) == 0 {
			return errors.New("fetch daily bars: no data")
		}
		daily = bars
		return nil
	})
	g.Go(func() error {
		bars, err := c.Fetcher.FetchIntradayBars(c.Symbol)
		if err != nil {
			log.Printf("[WARN] fetch intraday bars failed: %v, continuing without intraday data", err)
			return nil
		}
		intraday = bars
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[INFO] collected %s daily and %s intraday bars for %s from %s",
		humanize.Comma(int64(len(daily))), humanize.Comma(int64(len(intraday))), c.Symbol, c.Fetcher.Name())

	return &model.Dataset{
		Symbol:       c.Symbol,
		Source:       c.Fetcher.Name(),
		DailyBars:    daily,
		IntradayBars: intraday,
		LoadedAt:     time.Now(),
	}, nil
}
