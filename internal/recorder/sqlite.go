package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sort"
	"sync"

	"FuturesDesk/internal/holding"
	"FuturesDesk/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists analytics output to a SQLite database.
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

	// WAL so dashboards can read while the job writes.
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
		`CREATE TABLE IF NOT EXISTS analytics_runs (
			id          TEXT PRIMARY KEY,
			symbol      TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			status      TEXT NOT NULL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON analytics_runs(symbol, started_at)`,

		`CREATE TABLE IF NOT EXISTS indicator_values (
			run_id     TEXT NOT NULL,
			symbol     TEXT NOT NULL,
			name       TEXT NOT NULL,
			value      REAL,
			state      TEXT NOT NULL,
			PRIMARY KEY (run_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS broker_summaries (
			run_id       TEXT NOT NULL,
			symbol       TEXT NOT NULL,
			broker       TEXT NOT NULL,
			total_volume INTEGER NOT NULL,
			net_long     INTEGER NOT NULL,
			net_short    INTEGER NOT NULL,
			net_position INTEGER NOT NULL,
			pressure     TEXT NOT NULL,
			PRIMARY KEY (run_id, broker)
		)`,

		`CREATE TABLE IF NOT EXISTS leaderboard_entries (
			run_id       TEXT NOT NULL,
			symbol       TEXT NOT NULL,
			trade_date   TEXT NOT NULL,
			side         TEXT NOT NULL,
			rank         INTEGER NOT NULL,
			broker       TEXT NOT NULL,
			holding      INTEGER NOT NULL,
			change       INTEGER NOT NULL,
			impact_score REAL NOT NULL,
			PRIMARY KEY (run_id, side, rank)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR REPLACE INTO analytics_runs
		(id, symbol, started_at, duration_ms, status, error) VALUES (?,?,?,?,?,?)`,
		evt.ID, evt.Symbol, evt.StartedAt.Unix(), evt.Duration.Milliseconds(), string(evt.Status), evt.Error,
	)
	return err
}

// RecordSnapshot stores the latest indicator values, broker summaries and leaderboard of a snapshot.
func (r *SQLiteRecorder) RecordSnapshot(runID string, snap *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for name, v := range IndicatorValues(snap) {
		var num interface{}
		if f, ok := v.Float(); ok {
			num = f
		}
		if _, err := tx.Exec(`INSERT INTO indicator_values (run_id, symbol, name, value, state) VALUES (?,?,?,?,?)`,
			runID, snap.Symbol, name, num, v.Kind().String()); err != nil {
			return fmt.Errorf("insert indicator %s: %w", name, err)
		}
	}

	for _, s := range snap.Summaries {
		if _, err := tx.Exec(`INSERT INTO broker_summaries
			(run_id, symbol, broker, total_volume, net_long, net_short, net_position, pressure)
			VALUES (?,?,?,?,?,?,?,?)`,
			runID, snap.Symbol, s.Broker, s.TotalVolume, s.NetLongChange, s.NetShortChange,
			s.NetPositionChange, string(holding.Classify(s.NetPositionChange))); err != nil {
			return fmt.Errorf("insert summary %s: %w", s.Broker, err)
		}
	}

	date := snap.Board.Date.Format("2006-01-02")
	for side, entries := range map[string][]model.LeaderboardEntry{"LONG": snap.Board.Long, "SHORT": snap.Board.Short} {
		for _, e := range entries {
			if _, err := tx.Exec(`INSERT INTO leaderboard_entries
				(run_id, symbol, trade_date, side, rank, broker, holding, change, impact_score)
				VALUES (?,?,?,?,?,?,?,?,?)`,
				runID, snap.Symbol, date, side, e.Rank, e.Broker, e.Holding, e.Change, e.ImpactScore); err != nil {
				return fmt.Errorf("insert leaderboard %s %s: %w", side, e.Broker, err)
			}
		}
	}

	return tx.Commit()
}

// Indicators loads the indicator values stored for a run.
func (r *SQLiteRecorder) Indicators(runID string) (map[string]model.Value, error) {
	rows, err := r.db.Query(`SELECT name, value, state FROM indicator_values WHERE run_id=?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]model.Value)
	for rows.Next() {
		var name, state string
		var num sql.NullFloat64
		if err := rows.Scan(&name, &num, &state); err != nil {
			return nil, err
		}
		switch state {
		case model.KindDefined.String():
			out[name] = model.Defined(num.Float64)
		case model.KindNotComputable.String():
			out[name] = model.NotComputable()
		default:
			out[name] = model.Undefined()
		}
	}
	return out, rows.Err()
}

// IndicatorValues flattens a snapshot's latest indicator points into named values.
func IndicatorValues(snap *model.Snapshot) map[string]model.Value {
	out := map[string]model.Value{
		"LAST_CLOSE": model.FromFloat(snap.LastClose),
		"SETTLEMENT": model.FromFloat(snap.Settlement),
		"CONTANGO":   snap.Contango,
		"RANGE_POS":  snap.Range.Position,
	}
	windows := make([]int, 0, len(snap.MA))
	for w := range snap.MA {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	for _, w := range windows {
		out[fmt.Sprintf("MA%d", w)] = last(snap.MA[w])
	}
	out[fmt.Sprintf("RSI%d", snap.RSIPeriod)] = last(snap.RSI)
	if n := len(snap.Basis); n > 0 {
		out["BASIS"] = snap.Basis[n-1].Basis
		out["BASIS_RATE"] = snap.Basis[n-1].Rate
	}
	if n := len(snap.OIChanges); n > 0 {
		out["OI_CHANGE"] = model.FromFloat(float64(snap.OIChanges[n-1].Absolute))
		out["OI_CHANGE_PCT"] = snap.OIChanges[n-1].Percent
	}
	return out
}

func last(series []model.Value) model.Value {
	if len(series) == 0 {
		return model.Undefined()
	}
	return series[len(series)-1]
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
