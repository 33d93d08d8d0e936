package notifier

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"TrendLens/internal/analysis"
	"TrendLens/internal/model"
	"TrendLens/internal/recorder"
)

// topBuckets is how many low times the text report lists.
const topBuckets = 5

// FormatReport renders the full text report.
func FormatReport(r *model.Report) string {
	var b strings.Builder
	b.WriteString(formatHeader(r))
	b.WriteString("\n")
	b.WriteString(FormatCloseStats(r))
	b.WriteString("\n")
	b.WriteString(FormatTrendStats(r))
	if len(r.Lows) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatLowTimes(r))
	}
	return b.String()
}

func formatHeader(r *model.Report) string {
	return fmt.Sprintf("TrendLens | %s (%s) | %s .. %s\n",
		r.Symbol, r.Source,
		r.FirstDate.Format(model.DateLayout), r.LastDate.Format(model.DateLayout))
}

// FormatCloseStats renders the close/open sign distribution.
func FormatCloseStats(r *model.Report) string {
	var b strings.Builder
	b.WriteString("======= Daily Close Stats =======\n")
	b.WriteString(fmt.Sprintf("Total days: %s\n", humanize.Comma(int64(r.Close.Total))))
	b.WriteString(fmt.Sprintf("Days closing in red: %s, green: %s, unchanged: %s\n",
		humanize.Comma(int64(r.Close.Red)),
		humanize.Comma(int64(r.Close.Green)),
		humanize.Comma(int64(r.Close.Unchanged))))
	return b.String()
}

// FormatTrendStats renders frequency and change per trend state.
func FormatTrendStats(r *model.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("======= Trend States (close vs %dd vs %dd EMA) =======\n", r.FastPeriod, r.SlowPeriod))
	for _, s := range r.Trends {
		b.WriteString(fmt.Sprintf("%-7s %s: ", s.Trend, trendRule(s.Trend, r.FastPeriod, r.SlowPeriod)))
		if s.Days == 0 {
			b.WriteString("0 days | median n/a | mean n/a\n")
			continue
		}
		b.WriteString(fmt.Sprintf("%.2f%% of time (%s days) | median %+.3f%% | mean %+.3f%%\n",
			s.Frequency*100, humanize.Comma(int64(s.Days)), s.MedianChange, s.MeanChange))
	}
	return b.String()
}

func trendRule(t model.Trend, fast, slow int) string {
	switch t {
	case model.TrendRising:
		return fmt.Sprintf("(close > %dd > %dd)", fast, slow)
	case model.TrendFalling:
		return fmt.Sprintf("(close < %dd < %dd)", fast, slow)
	default:
		return "(no ordering)"
	}
}

// FormatLowTimes renders when intraday lows printed for each analysed trend.
func FormatLowTimes(r *model.Report) string {
	var b strings.Builder
	for _, l := range r.Lows {
		b.WriteString(fmt.Sprintf("======= Intraday Low Time (%s days) =======\n", l.Trend))
		if l.Days == 0 {
			b.WriteString("No matching days with intraday data\n")
			continue
		}
		b.WriteString(fmt.Sprintf("Days with intraday data: %s\n", humanize.Comma(int64(l.Days))))
		b.WriteString(fmt.Sprintf("Mean low time: %s | median: %s\n",
			analysis.FormatClock(int(l.MeanMinute+0.5)), analysis.FormatClock(int(l.MedianMinute+0.5))))
		b.WriteString("Most frequent:\n")
		for _, bucket := range analysis.TopBuckets(l.Buckets, topBuckets) {
			b.WriteString(fmt.Sprintf("  %s  %d (%.2f%%)\n", bucket.TimeOfDay, bucket.Count, bucket.Frequency*100))
		}
	}
	return b.String()
}

// FormatHistory renders recently recorded runs.
func FormatHistory(runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "No recorded runs"
	}
	var b strings.Builder
	b.WriteString("Recent runs:\n")
	for _, run := range runs {
		b.WriteString(fmt.Sprintf("%s %s %s..%s rising %.2f%% (median %+.3f%%)\n",
			run.RecordedAt.Format("2006-01-02 15:04"), run.Symbol, run.FirstDate, run.LastDate,
			run.RisingFreq*100, run.RisingMedian))
	}
	return b.String()
}
