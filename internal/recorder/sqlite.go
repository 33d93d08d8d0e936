package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"TrendLens/internal/model"
)

// SQLiteRecorder persists analysis runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id              TEXT PRIMARY KEY,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT,
			source          TEXT,
			first_date      TEXT,
			last_date       TEXT,
			fast_period     INTEGER,
			slow_period     INTEGER,
			total_days      INTEGER,
			red_days        INTEGER,
			green_days      INTEGER,
			unchanged_days  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON analysis_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS trend_stats (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL REFERENCES analysis_runs(id),
			trend         TEXT,
			days          INTEGER,
			frequency     REAL,
			median_change REAL,
			mean_change   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trend_run ON trend_stats(run_id)`,

		`CREATE TABLE IF NOT EXISTS low_time_stats (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL REFERENCES analysis_runs(id),
			trend         TEXT,
			days          INTEGER,
			mean_minute   REAL,
			median_minute REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_low_stats_run ON low_time_stats(run_id)`,

		`CREATE TABLE IF NOT EXISTS low_time_buckets (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES analysis_runs(id),
			trend       TEXT,
			time_of_day TEXT,
			count       INTEGER,
			frequency   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_low_buckets_run ON low_time_buckets(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordReport stores a report and its per-trend tables in one transaction.
func (r *SQLiteRecorder) RecordReport(rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO analysis_runs
		(id, timestamp, symbol, source, first_date, last_date, fast_period, slow_period,
		 total_days, red_days, green_days, unchanged_days)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		rep.ID, rep.GeneratedAt.Unix(), rep.Symbol, rep.Source,
		rep.FirstDate.Format(model.DateLayout), rep.LastDate.Format(model.DateLayout),
		rep.FastPeriod, rep.SlowPeriod,
		rep.Close.Total, rep.Close.Red, rep.Close.Green, rep.Close.Unchanged,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, s := range rep.Trends {
		if _, err := tx.Exec(`INSERT INTO trend_stats
			(run_id, trend, days, frequency, median_change, mean_change)
			VALUES (?,?,?,?,?,?)`,
			rep.ID, string(s.Trend), s.Days, s.Frequency, s.MedianChange, s.MeanChange,
		); err != nil {
			return fmt.Errorf("insert trend stats: %w", err)
		}
	}

	for _, l := range rep.Lows {
		if _, err := tx.Exec(`INSERT INTO low_time_stats
			(run_id, trend, days, mean_minute, median_minute)
			VALUES (?,?,?,?,?)`,
			rep.ID, string(l.Trend), l.Days, l.MeanMinute, l.MedianMinute,
		); err != nil {
			return fmt.Errorf("insert low time stats: %w", err)
		}
		for _, b := range l.Buckets {
			if _, err := tx.Exec(`INSERT INTO low_time_buckets
				(run_id, trend, time_of_day, count, frequency)
				VALUES (?,?,?,?,?)`,
				rep.ID, string(l.Trend), b.TimeOfDay, b.Count, b.Frequency,
			); err != nil {
				return fmt.Errorf("insert low time bucket: %w", err)
			}
		}
	}

	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first, with their RISING stats.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT a.id, a.timestamp, a.symbol, a.first_date, a.last_date, a.total_days,
			COALESCE(t.days, 0), COALESCE(t.frequency, 0), COALESCE(t.median_change, 0), COALESCE(t.mean_change, 0)
		FROM analysis_runs a
		LEFT JOIN trend_stats t ON t.run_id = a.id AND t.trend = ?
		ORDER BY a.timestamp DESC, a.rowid DESC
		LIMIT ?`, string(model.TrendRising), limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var s RunSummary
		var ts int64
		if err := rows.Scan(&s.ID, &ts, &s.Symbol, &s.FirstDate, &s.LastDate, &s.TotalDays,
			&s.RisingDays, &s.RisingFreq, &s.RisingMedian, &s.RisingMean); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.RecordedAt = time.Unix(ts, 0)
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
