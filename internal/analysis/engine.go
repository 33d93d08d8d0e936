package analysis

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"TrendLens/internal/model"
)

// Run computes the full report from a dataset.
func Run(ds *model.Dataset, opts Options) (*model.Report, error) {
	if ds == nil {
		return nil, errors.New("nil dataset")
	}

	// Step a: derived daily columns and trend states
	rows, err := BuildDailyRows(ds.DailyBars, opts.FastPeriod, opts.SlowPeriod)
	if err != nil {
		return nil, fmt.Errorf("build daily rows: %w", err)
	}

	report := &model.Report{
		ID:          uuid.NewString(),
		Symbol:      ds.Symbol,
		Source:      ds.Source,
		GeneratedAt: time.Now(),
		FirstDate:   rows[0].Date,
		LastDate:    rows[len(rows)-1].Date,
		FastPeriod:  opts.FastPeriod,
		SlowPeriod:  opts.SlowPeriod,
		Rows:        rows,
	}

	// Step b: close/open sign distribution
	report.Close = CloseDistribution(rows)

	// Step c: per-trend frequency and change
	for _, t := range model.AllTrends {
		report.Trends = append(report.Trends, SummarizeTrend(rows, t))
	}

	// Step d: time of the intraday low for the selected trend states
	if len(ds.IntradayBars) == 0 {
		log.Println("[WARN] no intraday bars, skipping low time analysis")
		return report, nil
	}
	lows := DailyLows(ds.IntradayBars, opts.Session)
	for _, t := range opts.LowTrends {
		stats := LowTimesForTrend(rows, lows, t)
		if stats.Days == 0 {
			log.Printf("[WARN] no %s day overlaps the intraday series", t)
		}
		report.Lows = append(report.Lows, stats)
	}
	return report, nil
}
