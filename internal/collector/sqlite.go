package collector

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"FuturesDesk/internal/adapter"
	"FuturesDesk/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteSource reads bars, open interest, holdings and contracts that an upstream
// ingester has written in wire format (YYYYMMDD trade dates).
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource opens (or creates) the market database and ensures its tables exist.
func NewSQLiteSource(dbPath string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SQLiteSource{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("[INFO] sqlite source opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteSource) Name() string { return "sqlite" }

func (s *SQLiteSource) Close() error { return s.db.Close() }

func (s *SQLiteSource) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bars (
			symbol        TEXT NOT NULL,
			trade_date    TEXT NOT NULL,
			open          REAL NOT NULL,
			high          REAL NOT NULL,
			low           REAL NOT NULL,
			close         REAL NOT NULL,
			vol           INTEGER NOT NULL DEFAULT 0,
			oi            INTEGER,
			PRIMARY KEY (symbol, trade_date)
		)`,
		`CREATE TABLE IF NOT EXISTS broker_holdings (
			symbol     TEXT NOT NULL,
			broker     TEXT NOT NULL,
			trade_date TEXT NOT NULL,
			long_hld   INTEGER,
			short_hld  INTEGER,
			long_chg   INTEGER,
			short_chg  INTEGER,
			vol        INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (symbol, broker, trade_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_holdings_date ON broker_holdings(symbol, trade_date)`,
		`CREATE TABLE IF NOT EXISTS contracts (
			symbol     TEXT PRIMARY KEY,
			exchange   TEXT NOT NULL DEFAULT '',
			multiplier REAL NOT NULL DEFAULT 0,
			tick_size  REAL NOT NULL DEFAULT 0,
			expiry     TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

func (s *SQLiteSource) loadBarRows(ctx context.Context, symbol string, from, to time.Time) ([]adapter.BarRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT trade_date, open, high, low, close, vol, oi FROM bars
		 WHERE symbol=? AND trade_date BETWEEN ? AND ? ORDER BY trade_date`,
		symbol, adapter.FormatTradeDate(from), adapter.FormatTradeDate(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []adapter.BarRow
	for rows.Next() {
		var r adapter.BarRow
		var oi sql.NullInt64
		if err := rows.Scan(&r.TradeDate, &r.Open, &r.High, &r.Low, &r.Close, &r.Vol, &oi); err != nil {
			return nil, err
		}
		if oi.Valid {
			v := oi.Int64
			r.OI = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteSource) FetchBars(ctx context.Context, symbol string, from, to time.Time) ([]model.Bar, error) {
	rows, err := s.loadBarRows(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("query bars %s: %w", symbol, err)
	}
	return adapter.NormalizeBars(rows)
}

func (s *SQLiteSource) FetchOpenInterest(ctx context.Context, symbol string, from, to time.Time) ([]model.PricePoint, error) {
	rows, err := s.loadBarRows(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("query open interest %s: %w", symbol, err)
	}
	return adapter.NormalizeOpenInterest(rows)
}

// FetchHoldingTrends groups holdings by broker. total_vol is the sum of daily vol over the range.
// Brokers with NULL holding columns are dropped with a warning.
func (s *SQLiteSource) FetchHoldingTrends(ctx context.Context, symbol string, from, to time.Time) ([]model.BrokerTrend, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT broker, trade_date, long_hld, short_hld, long_chg, short_chg, vol FROM broker_holdings
		 WHERE symbol=? AND trade_date BETWEEN ? AND ? ORDER BY broker, trade_date`,
		symbol, adapter.FormatTradeDate(from), adapter.FormatTradeDate(to))
	if err != nil {
		return nil, fmt.Errorf("query holdings %s: %w", symbol, err)
	}
	defer rows.Close()

	var trends []adapter.TrendRow
	for rows.Next() {
		var r adapter.HoldingRow
		var long, short, longChg, shortChg sql.NullInt64
		if err := rows.Scan(&r.Broker, &r.TradeDate, &long, &short, &longChg, &shortChg, &r.Vol); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		r.LongHld, r.ShortHld, r.LongChg, r.ShortChg = nullable(long), nullable(short), nullable(longChg), nullable(shortChg)
		if n := len(trends); n == 0 || trends[n-1].Broker != r.Broker {
			trends = append(trends, adapter.TrendRow{Broker: r.Broker})
		}
		tr := &trends[len(trends)-1]
		tr.TotalVol += r.Vol
		tr.Rows = append(tr.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out, rejected := adapter.NormalizeTrends(trends)
	for _, rj := range rejected {
		log.Printf("[WARN] %s broker %s dropped: %v", symbol, rj.Broker, rj.Err)
	}
	return out, nil
}

func (s *SQLiteSource) FetchContract(ctx context.Context, symbol string) (model.Contract, error) {
	c := model.Contract{Symbol: symbol}
	var expiry string
	err := s.db.QueryRowContext(ctx,
		`SELECT exchange, multiplier, tick_size, expiry FROM contracts WHERE symbol=?`, symbol,
	).Scan(&c.Exchange, &c.Multiplier, &c.TickSize, &expiry)
	if err != nil {
		return model.Contract{}, fmt.Errorf("query contract %s: %w", symbol, err)
	}
	if expiry != "" {
		if c.Expiry, err = adapter.ParseTradeDate(expiry); err != nil {
			return model.Contract{}, err
		}
	}
	return c, nil
}

// SaveBars upserts wire-format bars for symbol.
func (s *SQLiteSource) SaveBars(ctx context.Context, symbol string, bars []adapter.BarRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO bars
		(symbol, trade_date, open, high, low, close, vol, oi) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, b := range bars {
		var oi interface{}
		if b.OI != nil {
			oi = *b.OI
		}
		if _, err := stmt.ExecContext(ctx, symbol, b.TradeDate, b.Open, b.High, b.Low, b.Close, b.Vol, oi); err != nil {
			return fmt.Errorf("insert bar %s %s: %w", symbol, b.TradeDate, err)
		}
	}
	return tx.Commit()
}

// SaveHoldings upserts wire-format broker holding rows for symbol.
func (s *SQLiteSource) SaveHoldings(ctx context.Context, symbol string, holdings []adapter.HoldingRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO broker_holdings
		(symbol, broker, trade_date, long_hld, short_hld, long_chg, short_chg, vol) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, h := range holdings {
		if _, err := stmt.ExecContext(ctx, symbol, h.Broker, h.TradeDate,
			value(h.LongHld), value(h.ShortHld), value(h.LongChg), value(h.ShortChg), h.Vol); err != nil {
			return fmt.Errorf("insert holding %s %s: %w", h.Broker, h.TradeDate, err)
		}
	}
	return tx.Commit()
}

// SaveContract upserts contract metadata.
func (s *SQLiteSource) SaveContract(ctx context.Context, c model.Contract) error {
	expiry := ""
	if !c.Expiry.IsZero() {
		expiry = adapter.FormatTradeDate(c.Expiry)
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO contracts
		(symbol, exchange, multiplier, tick_size, expiry) VALUES (?,?,?,?,?)`,
		c.Symbol, c.Exchange, c.Multiplier, c.TickSize, expiry)
	return err
}

func nullable(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func value(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
