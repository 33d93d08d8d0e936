package scheduler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendLens/internal/analysis"
	"TrendLens/internal/collector"
	"TrendLens/internal/exporter"
	"TrendLens/internal/model"
	"TrendLens/internal/notifier"
	"TrendLens/internal/recorder"
)

type memRecorder struct {
	reports []*model.Report
	err     error
}

func (m *memRecorder) RecordReport(r *model.Report) error {
	if m.err != nil {
		return m.err
	}
	m.reports = append(m.reports, r)
	return nil
}

func (m *memRecorder) RecentRuns(limit int) ([]recorder.RunSummary, error) {
	var runs []recorder.RunSummary
	for i := len(m.reports) - 1; i >= 0 && len(runs) < limit; i-- {
		r := m.reports[i]
		runs = append(runs, recorder.RunSummary{ID: r.ID, RecordedAt: r.GeneratedAt, Symbol: r.Symbol})
	}
	return runs, nil
}

func (m *memRecorder) Close() error { return nil }

var start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// risingDataset is a steadily rising daily series with intraday bars on the
// last day whose low prints at 09:40.
func risingDataset(days int) *collector.MockFetcher {
	daily := make([]model.OHLCV, days)
	for i := range daily {
		c := 100 + float64(i)
		daily[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c - 0.5, High: c + 1, Low: c - 1, Close: c}
	}
	last := daily[days-1].Time
	var intraday []model.OHLCV
	for i := 0; i < 6; i++ {
		at := last.Add(9*time.Hour + 30*time.Minute + time.Duration(i*5)*time.Minute)
		low := 150.0
		if i == 2 {
			low = 140
		}
		intraday = append(intraday, model.OHLCV{Time: at, Open: 151, High: 152, Low: low, Close: 151})
	}
	return &collector.MockFetcher{DailyData: daily, IntradayData: intraday}
}

func newTestScheduler(t *testing.T, fetcher collector.Fetcher) (*Scheduler, *bytes.Buffer, *memRecorder, string) {
	t.Helper()
	dir := t.TempDir()
	var out bytes.Buffer
	rec := &memRecorder{}
	s := NewScheduler(context.Background(),
		collector.NewCollector(fetcher, "SPX"),
		analysis.DefaultOptions(),
		exporter.NewExporter(dir),
		notifier.NewConsoleNotifier(&out),
		rec)
	return s, &out, rec, dir
}

func TestRunNow_FullPipeline(t *testing.T) {
	s, out, rec, dir := newTestScheduler(t, risingDataset(60))

	report, err := s.RunNow()
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Same(t, report, s.LastReport())
	require.Len(t, rec.reports, 1)
	assert.Equal(t, report.ID, rec.reports[0].ID)

	assert.Contains(t, out.String(), "Daily Close Stats")
	assert.Contains(t, out.String(), "Intraday Low Time (RISING days)")
	assert.Contains(t, out.String(), "09:40  1 (100.00%)")

	_, err = os.Stat(filepath.Join(dir, "spx_daily_trends.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "spx_low_time_distribution.csv"))
	assert.NoError(t, err)
}

func TestRunNow_CollectFailure(t *testing.T) {
	s, out, rec, _ := newTestScheduler(t, &collector.MockFetcher{DailyErr: errors.New("boom")})

	_, err := s.RunNow()
	require.Error(t, err)
	assert.Contains(t, out.String(), "Data collection failed")
	assert.Empty(t, rec.reports)
	assert.Nil(t, s.LastReport())
}

func TestRunNow_TooFewBars(t *testing.T) {
	s, out, _, _ := newTestScheduler(t, risingDataset(10))

	_, err := s.RunNow()
	require.Error(t, err)
	assert.Contains(t, out.String(), "Analysis failed")
}

func TestRunNow_RecorderFailureIsLogged(t *testing.T) {
	s, out, rec, _ := newTestScheduler(t, risingDataset(60))
	rec.err = errors.New("disk full")

	_, err := s.RunNow()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Daily Close Stats")
}

func TestHandleCommand(t *testing.T) {
	s, out, _, _ := newTestScheduler(t, risingDataset(60))

	assert.Contains(t, s.HandleCommand("/trends"), "No analysis has run yet")
	assert.Contains(t, s.HandleCommand("/lows"), "No analysis has run yet")
	assert.Equal(t, "No recorded runs", s.HandleCommand("/history"))

	assert.Empty(t, s.HandleCommand("/report"))
	assert.Contains(t, out.String(), "TrendLens | SPX (mock)")

	assert.Contains(t, s.HandleCommand("/trends"), "Trend States (close vs 10d vs 40d EMA)")
	assert.Contains(t, s.HandleCommand("/lows"), "Intraday Low Time (RISING days)")
	assert.Contains(t, s.HandleCommand("/history"), "Recent runs:")
	assert.Contains(t, s.HandleCommand("/help"), "/report")
	assert.Contains(t, s.HandleCommand("what"), "Available commands")
}

func TestHandleCommand_LowsWithoutIntraday(t *testing.T) {
	f := risingDataset(60)
	f.IntradayData = nil
	s, _, _, _ := newTestScheduler(t, f)

	_, err := s.RunNow()
	require.NoError(t, err)
	assert.Equal(t, "No intraday data in the last run", s.HandleCommand("/lows"))
}

// overlapFetcher records how many daily loads run at the same time.
type overlapFetcher struct {
	*collector.MockFetcher
	active  int32
	maxSeen int32
}

func (f *overlapFetcher) FetchDailyBars(symbol string) ([]model.OHLCV, error) {
	n := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)
	for {
		seen := atomic.LoadInt32(&f.maxSeen)
		if n <= seen || atomic.CompareAndSwapInt32(&f.maxSeen, seen, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return f.MockFetcher.FetchDailyBars(symbol)
}

func TestRunNow_RunsDoNotOverlap(t *testing.T) {
	f := &overlapFetcher{MockFetcher: risingDataset(60)}
	s, _, rec, _ := newTestScheduler(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RunNow()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&f.maxSeen))
	assert.Len(t, rec.reports, 4)
}

func TestRegister(t *testing.T) {
	s, _, _, _ := newTestScheduler(t, risingDataset(60))
	assert.NoError(t, s.Register("0 30 16 * * 1-5"))
	assert.Error(t, s.Register("not a cron"))
}
