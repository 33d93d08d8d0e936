package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TrendLens/internal/collector"
	"TrendLens/internal/config"
	"TrendLens/internal/exporter"
	"TrendLens/internal/notifier"
	"TrendLens/internal/recorder"
	"TrendLens/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] TrendLens starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	opts, err := cfg.AnalysisOptions()
	if err != nil {
		log.Fatalf("[FATAL] analysis options: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Type {
	case "yahoo":
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	default:
		loc, err := cfg.Location()
		if err != nil {
			log.Fatalf("[FATAL] %v", err)
		}
		cf := collector.NewCSVFetcher(cfg.DataSource.DailyCSV, cfg.DataSource.IntradayCSV)
		cf.Location = loc
		fetcher = cf
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, cfg.Symbol)
	exp := exporter.NewExporter(cfg.Output.Dir)

	// Init notifier
	var n notifier.Notifier
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		n = notifier.NewConsoleNotifier(os.Stdout)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, opts, exp, n, rec)

	// One-shot mode
	if cfg.Schedule.Cron == "" {
		if _, err := sched.RunNow(); err != nil {
			log.Printf("[ERROR] %v", err)
			rec.Close()
			os.Exit(1)
		}
		log.Printf("[INFO] reports written to %s", cfg.Output.Dir)
		return
	}

	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing analysis now")
		go func() {
			if _, err := sched.RunNow(); err != nil {
				log.Printf("[ERROR] initial run: %v", err)
			}
		}()
	}

	log.Printf("[INFO] TrendLens is running on %q. Press Ctrl+C to stop.", cfg.Schedule.Cron)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] TrendLens stopped")
}
