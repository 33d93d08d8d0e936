// Package exporter writes analysis reports as CSV files.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"TrendLens/internal/model"
)

// Exporter writes report tables into one directory.
type Exporter struct {
	Dir string
}

// NewExporter creates an exporter rooted at dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{Dir: dir}
}

// WriteCSV writes headers and records to name inside the export directory,
// replacing any existing file, and returns the full path.
func (e *Exporter) WriteCSV(name string, headers []string, records [][]string) (string, error) {
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	fullPath := filepath.Join(e.Dir, name)

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", name, err)
	}

	log.Printf("[INFO] wrote %s rows to %s", humanize.Comma(int64(len(records))), fullPath)
	return fullPath, nil
}

// ExportReport writes the daily table, the trend summary and, when present,
// the intraday low tables. It returns the written paths.
func (e *Exporter) ExportReport(r *model.Report) ([]string, error) {
	prefix := filePrefix(r.Symbol)
	var paths []string

	p, err := e.WriteCSV(prefix+"_daily_trends.csv",
		[]string{"Date", "Open", "Close", "PercentChange", "FastEMA", "SlowEMA", "Trend"},
		dailyRecords(r.Rows))
	if err != nil {
		return paths, fmt.Errorf("export daily trends: %w", err)
	}
	paths = append(paths, p)

	p, err = e.WriteCSV(prefix+"_trend_summary.csv",
		[]string{"Trend", "Days", "Frequency", "MedianChange", "MeanChange"},
		trendRecords(r.Trends))
	if err != nil {
		return paths, fmt.Errorf("export trend summary: %w", err)
	}
	paths = append(paths, p)

	if len(r.Lows) == 0 {
		return paths, nil
	}

	p, err = e.WriteCSV(prefix+"_intraday_lows.csv",
		[]string{"Date", "Trend", "PercentChange", "LowTime", "LowPrice"},
		lowRecords(r.Lows))
	if err != nil {
		return paths, fmt.Errorf("export intraday lows: %w", err)
	}
	paths = append(paths, p)

	p, err = e.WriteCSV(prefix+"_low_time_distribution.csv",
		[]string{"Trend", "TimeOfDay", "Count", "Frequency"},
		bucketRecords(r.Lows))
	if err != nil {
		return paths, fmt.Errorf("export low time distribution: %w", err)
	}
	paths = append(paths, p)

	return paths, nil
}

func dailyRecords(rows []model.DailyRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Date.Format(model.DateLayout),
			formatFloat(r.Open, -1),
			formatFloat(r.Close, -1),
			formatFloat(r.PercentChange, 4),
			formatFloat(r.FastEMA, 4),
			formatFloat(r.SlowEMA, 4),
			string(r.Trend),
		})
	}
	return records
}

func trendRecords(stats []model.TrendStats) [][]string {
	records := make([][]string, 0, len(stats))
	for _, s := range stats {
		records = append(records, []string{
			string(s.Trend),
			strconv.Itoa(s.Days),
			formatFloat(s.Frequency, -1),
			formatFloat(s.MedianChange, -1),
			formatFloat(s.MeanChange, -1),
		})
	}
	return records
}

func lowRecords(lows []model.LowTimeStats) [][]string {
	var records [][]string
	for _, l := range lows {
		for _, r := range l.Rows {
			records = append(records, []string{
				r.Date.Format(model.DateLayout),
				string(l.Trend),
				formatFloat(r.PercentChange, 4),
				r.LowAt,
				formatFloat(r.LowPrice, -1),
			})
		}
	}
	return records
}

func bucketRecords(lows []model.LowTimeStats) [][]string {
	var records [][]string
	for _, l := range lows {
		for _, b := range l.Buckets {
			records = append(records, []string{
				string(l.Trend),
				b.TimeOfDay,
				strconv.Itoa(b.Count),
				formatFloat(b.Frequency, -1),
			})
		}
	}
	return records
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// filePrefix turns a ticker such as "^GSPC" into a file-name friendly prefix.
func filePrefix(symbol string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(symbol) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "report"
	}
	return b.String()
}
