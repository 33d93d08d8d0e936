package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"TrendLens/internal/analysis"
	"TrendLens/internal/collector"
	"TrendLens/internal/exporter"
	"TrendLens/internal/model"
	"TrendLens/internal/notifier"
	"TrendLens/internal/recorder"

	"github.com/robfig/cron/v3"
)

// historyLimit is how many stored runs /history lists.
const historyLimit = 5

const helpText = "Available commands:\n" +
	"/report - rerun the analysis and send the full report\n" +
	"/trends - trend state statistics of the last run\n" +
	"/lows - intraday low times of the last run\n" +
	"/history - recently recorded runs\n" +
	"/help - this message"

// Scheduler runs the analysis pipeline on demand and on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Options   analysis.Options
	Exporter  *exporter.Exporter
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Ctx       context.Context

	runMu sync.Mutex // one pipeline at a time; runs share output paths
	mu    sync.Mutex
	last  *model.Report
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, opts analysis.Options, exp *exporter.Exporter, n notifier.Notifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Options:   opts,
		Exporter:  exp,
		Notifier:  n,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// Register schedules the pipeline on a cron expression with a seconds field.
func (s *Scheduler) Register(cronExpr string) error {
	if _, err := s.Cron.AddFunc(cronExpr, s.scheduledRun); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the pipeline immediately (one-shot mode / RUN_ON_START).
func (s *Scheduler) RunNow() (*model.Report, error) {
	return s.runAnalysis()
}

// LastReport returns the most recent successful report, or nil.
func (s *Scheduler) LastReport() *model.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) scheduledRun() {
	if _, err := s.runAnalysis(); err != nil {
		log.Printf("[ERROR] scheduled run: %v", err)
	}
}

// runAnalysis collects, analyses, exports, records and notifies. Export,
// record and notify failures are logged and do not fail the run.
func (s *Scheduler) runAnalysis() (*model.Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	log.Println("[INFO] running analysis")
	ds, err := s.Collector.Collect()
	if err != nil {
		s.trySend(fmt.Sprintf("Data collection failed: %v", err))
		return nil, fmt.Errorf("collect: %w", err)
	}

	report, err := analysis.Run(ds, s.Options)
	if err != nil {
		s.trySend(fmt.Sprintf("Analysis failed: %v", err))
		return nil, fmt.Errorf("analyze: %w", err)
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	if s.Exporter != nil {
		if _, err := s.Exporter.ExportReport(report); err != nil {
			log.Printf("[ERROR] export report: %v", err)
		}
	}
	if err := s.Recorder.RecordReport(report); err != nil {
		log.Printf("[ERROR] record report: %v", err)
	}

	s.trySend(notifier.FormatReport(report))
	log.Printf("[INFO] analysis %s finished", report.ID)
	return report, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/report":
		if _, err := s.runAnalysis(); err != nil {
			log.Printf("[ERROR] /report: %v", err)
		}
		return ""
	case "/trends":
		if r := s.LastReport(); r != nil {
			return notifier.FormatCloseStats(r) + "\n" + notifier.FormatTrendStats(r)
		}
		return "No analysis has run yet, send /report"
	case "/lows":
		r := s.LastReport()
		if r == nil {
			return "No analysis has run yet, send /report"
		}
		if len(r.Lows) == 0 {
			return "No intraday data in the last run"
		}
		return notifier.FormatLowTimes(r)
	case "/history":
		runs, err := s.Recorder.RecentRuns(historyLimit)
		if err != nil {
			log.Printf("[ERROR] load history: %v", err)
			return "Failed to load history"
		}
		return notifier.FormatHistory(runs)
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
