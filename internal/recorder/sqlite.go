package recorder

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"DualHalfTrend/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
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

	log.Info().Str("component", "recorder").Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			interval    TEXT NOT NULL,
			source      TEXT,
			atr_period  INTEGER,
			atr_mode    TEXT,
			amplitude1  INTEGER,
			deviation1  REAL,
			amplitude2  INTEGER,
			deviation2  REAL,
			bars        INTEGER,
			last_bar    INTEGER,
			fast_trend  TEXT,
			slow_trend  TEXT,
			signals     INTEGER,
			duration_ms INTEGER,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			symbol     TEXT NOT NULL,
			interval   TEXT NOT NULL,
			bar_time   INTEGER NOT NULL,
			kind       TEXT NOT NULL,
			close      REAL,
			fast_trend TEXT,
			slow_trend TEXT,
			fast_line  REAL,
			slow_line  REAL,
			UNIQUE(symbol, interval, bar_time, kind)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_bar ON signals(symbol, bar_time)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return r.addColumns("runs", map[string]string{
		"atr_mode":   "TEXT",
		"deviation1": "REAL",
		"deviation2": "REAL",
	})
}

// addColumns brings a table created by an older schema up to date.
func (r *SQLiteRecorder) addColumns(table string, cols map[string]string) error {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("table info %s: %w", table, err)
	}
	have := make(map[string]bool)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("scan table info: %w", err)
		}
		have[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	names := make([]string, 0, len(cols))
	for name := range cols {
		if !have[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := r.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, name, cols[name])); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, name, err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	var lastBar any
	if !run.LastBar.IsZero() {
		lastBar = run.LastBar.Unix()
	}
	_, err := r.db.Exec(`INSERT INTO runs
		(id, timestamp, symbol, interval, source, atr_period, atr_mode,
		 amplitude1, deviation1, amplitude2, deviation2,
		 bars, last_bar, fast_trend, slow_trend, signals, duration_ms, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, time.Now().Unix(), run.Symbol, run.Interval, run.Source,
		run.ATRPeriod, run.ATRMode,
		run.Amplitude1, run.Deviation1, run.Amplitude2, run.Deviation2,
		run.Bars, lastBar, run.FastTrend.String(), run.SlowTrend.String(),
		run.Signals, run.Duration.Milliseconds(), run.Err,
	)
	return err
}

// nullable maps an absent value to SQL NULL.
func nullable(v model.Value) any {
	if !v.Valid {
		return nil
	}
	return v.V
}

func (r *SQLiteRecorder) RecordSignals(runID string, events []model.SignalEvent) error {
	if len(events) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO signals
		(run_id, symbol, interval, bar_time, kind, close, fast_trend, slow_trend, fast_line, slow_line)
		VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(runID, e.Symbol, e.Interval, e.BarTime.Unix(), string(e.Kind), e.Close,
			e.FastTrend.String(), e.SlowTrend.String(), nullable(e.FastLine), nullable(e.SlowLine)); err != nil {
			return fmt.Errorf("insert %s signal: %w", e.Kind, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecentSignals(symbol string, n int) ([]model.SignalEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT symbol, interval, bar_time, kind, close, fast_trend, slow_trend, fast_line, slow_line
		FROM signals WHERE symbol = ? ORDER BY bar_time DESC, id DESC LIMIT ?`, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []model.SignalEvent
	for rows.Next() {
		var (
			e                  model.SignalEvent
			barTime            int64
			kind, fast, slow   string
			fastLine, slowLine sql.NullFloat64
		)
		if err := rows.Scan(&e.Symbol, &e.Interval, &barTime, &kind, &e.Close, &fast, &slow, &fastLine, &slowLine); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		e.BarTime = time.Unix(barTime, 0).UTC()
		e.Kind = model.SignalKind(kind)
		if err := e.FastTrend.UnmarshalText([]byte(fast)); err != nil {
			return nil, err
		}
		if err := e.SlowTrend.UnmarshalText([]byte(slow)); err != nil {
			return nil, err
		}
		e.FastLine = model.Value{V: fastLine.Float64, Valid: fastLine.Valid}
		e.SlowLine = model.Value{V: slowLine.Float64, Valid: slowLine.Valid}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Str("component", "recorder").Msg("closing sqlite recorder")
	return r.db.Close()
}
