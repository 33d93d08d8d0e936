package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"TrendLens/internal/model"
)

var (
	dateLayouts     = []string{"2006-01-02", "2006/01/02", "01/02/2006", "20060102"}
	timeLayouts     = []string{"15:04:05", "15:04", "150405"}
	dateTimeLayouts = []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02T15:04:05"}
)

// CSVFetcher implements Fetcher over flat OHLC files such as the
// Date,Open,High,Low,Close,Volume,OpenInt exports of stooq.
type CSVFetcher struct {
	DailyPath    string
	IntradayPath string
	Location     *time.Location
}

// NewCSVFetcher creates a fetcher reading timestamps in UTC.
// An empty intradayPath means the source has no intraday series.
func NewCSVFetcher(dailyPath, intradayPath string) *CSVFetcher {
	return &CSVFetcher{DailyPath: dailyPath, IntradayPath: intradayPath, Location: time.UTC}
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchDailyBars(_ string) ([]model.OHLCV, error) {
	if f.DailyPath == "" {
		return nil, errors.New("daily csv path is empty")
	}
	return f.readFile(f.DailyPath, false)
}

func (f *CSVFetcher) FetchIntradayBars(_ string) ([]model.OHLCV, error) {
	if f.IntradayPath == "" {
		return nil, nil
	}
	return f.readFile(f.IntradayPath, true)
}

func (f *CSVFetcher) readFile(path string, intraday bool) ([]model.OHLCV, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	bars, skipped, err := ParseBars(file, intraday, loc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if skipped > 0 {
		log.Printf("[WARN] %s: skipped %d malformed rows", path, skipped)
	}
	log.Printf("[INFO] loaded %s bars from %s", humanize.Comma(int64(len(bars))), path)
	return bars, nil
}

// columnIndices maps the known OHLC columns to their header positions; -1 means absent.
type columnIndices struct {
	date, time, dateTime           int
	open, high, low, close, volume int
}

func findColumnIndices(header []string) columnIndices {
	cols := columnIndices{-1, -1, -1, -1, -1, -1, -1, -1}
	for i, h := range header {
		switch normalizeHeader(h) {
		case "date", "day":
			cols.date = i
		case "time":
			cols.time = i
		case "datetime", "timestamp":
			cols.dateTime = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close", "last":
			cols.close = i
		case "volume", "vol":
			cols.volume = i
		}
	}
	return cols
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.Trim(strings.TrimSpace(h), "<>")
	return strings.ToLower(strings.TrimSpace(h))
}

func (c columnIndices) validate(intraday bool) error {
	var missing []string
	if c.date < 0 && c.dateTime < 0 {
		missing = append(missing, "date")
	}
	if intraday && c.time < 0 && c.dateTime < 0 {
		missing = append(missing, "time")
	}
	if c.open < 0 {
		missing = append(missing, "open")
	}
	if c.low < 0 {
		missing = append(missing, "low")
	}
	if c.close < 0 {
		missing = append(missing, "close")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ParseBars reads OHLC rows from CSV data with a header line. Rows that fail
// to parse are skipped and counted. The result is sorted chronologically,
// whatever the order of the input.
func ParseBars(r io.Reader, intraday bool, loc *time.Location) ([]model.OHLCV, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, errors.New("empty file")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols := findColumnIndices(header)
	if err := cols.validate(intraday); err != nil {
		return nil, 0, err
	}

	var bars []model.OHLCV
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, skipped, fmt.Errorf("read row: %w", err)
		}
		bar, err := parseRow(record, cols, intraday, loc)
		if err != nil {
			skipped++
			continue
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, skipped, nil
}

func parseRow(record []string, cols columnIndices, intraday bool, loc *time.Location) (model.OHLCV, error) {
	ts, err := parseTimestamp(record, cols, intraday, loc)
	if err != nil {
		return model.OHLCV{}, err
	}
	bar := model.OHLCV{Time: ts}
	if bar.Open, err = floatField(record, cols.open); err != nil {
		return model.OHLCV{}, err
	}
	if bar.Low, err = floatField(record, cols.low); err != nil {
		return model.OHLCV{}, err
	}
	if bar.Close, err = floatField(record, cols.close); err != nil {
		return model.OHLCV{}, err
	}
	// optional columns
	bar.High, _ = floatField(record, cols.high)
	bar.Volume, _ = floatField(record, cols.volume)
	return bar, nil
}

func parseTimestamp(record []string, cols columnIndices, intraday bool, loc *time.Location) (time.Time, error) {
	if cols.date < 0 {
		raw, err := field(record, cols.dateTime)
		if err != nil {
			return time.Time{}, err
		}
		ts, err := parseWithLayouts(raw, dateTimeLayouts, loc)
		if err != nil {
			return time.Time{}, err
		}
		if !intraday {
			ts = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)
		}
		return ts, nil
	}

	raw, err := field(record, cols.date)
	if err != nil {
		return time.Time{}, err
	}
	d, err := parseWithLayouts(raw, dateLayouts, loc)
	if err != nil {
		return time.Time{}, err
	}
	if !intraday || cols.time < 0 {
		return d, nil
	}
	rawTime, err := field(record, cols.time)
	if err != nil {
		return time.Time{}, err
	}
	tod, err := parseWithLayouts(rawTime, timeLayouts, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, loc), nil
}

func parseWithLayouts(raw string, layouts []string, loc *time.Location) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

func field(record []string, idx int) (string, error) {
	if idx < 0 || idx >= len(record) {
		return "", errors.New("column out of range")
	}
	return strings.TrimSpace(record[idx]), nil
}

func floatField(record []string, idx int) (float64, error) {
	raw, err := field(record, idx)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", raw)
	}
	return v, nil
}
