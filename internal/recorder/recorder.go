package recorder

import (
	"time"

	"TrendLens/internal/model"
)

// RunSummary is one stored analysis run.
type RunSummary struct {
	ID           string
	RecordedAt   time.Time
	Symbol       string
	FirstDate    string
	LastDate     string
	TotalDays    int
	RisingDays   int
	RisingFreq   float64
	RisingMedian float64
	RisingMean   float64
}

// Recorder persists analysis results for later comparison.
type Recorder interface {
	RecordReport(r *model.Report) error
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
