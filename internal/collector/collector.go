package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"FuturesDesk/internal/cache"
	"FuturesDesk/internal/calculator"
	"FuturesDesk/internal/holding"
	"FuturesDesk/internal/model"
)

// ErrNoBars is returned when the source has no bars for the requested range.
var ErrNoBars = errors.New("no bars in range")

// MockSource returns fixed data for development and testing.
type MockSource struct {
	Bars      map[string][]model.Bar
	OI        map[string][]model.PricePoint
	Trends    map[string][]model.BrokerTrend
	Contracts map[string]model.Contract
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) FetchBars(_ context.Context, symbol string, from, to time.Time) ([]model.Bar, error) {
	var out []model.Bar
	for _, b := range m.Bars[symbol] {
		if inRange(b.Date, from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockSource) FetchOpenInterest(_ context.Context, symbol string, from, to time.Time) ([]model.PricePoint, error) {
	var out []model.PricePoint
	for _, p := range m.OI[symbol] {
		if inRange(p.Date, from, to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockSource) FetchHoldingTrends(_ context.Context, symbol string, from, to time.Time) ([]model.BrokerTrend, error) {
	var out []model.BrokerTrend
	for _, tr := range m.Trends[symbol] {
		cp := model.BrokerTrend{Broker: tr.Broker, TotalVolume: tr.TotalVolume}
		for _, r := range tr.Records {
			if inRange(r.Date, from, to) {
				cp.Records = append(cp.Records, r)
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

func (m *MockSource) FetchContract(_ context.Context, symbol string) (model.Contract, error) {
	c, ok := m.Contracts[symbol]
	if !ok {
		return model.Contract{}, fmt.Errorf("unknown contract %s", symbol)
	}
	return c, nil
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// Options tunes what a Collector computes.
type Options struct {
	MAWindows     []int
	RSIPeriod     int
	LookbackDays  int
	TopN          int
	Spot          string
	ContangoPairs map[string]string
	ContractTTL   time.Duration
}

// Collector orchestrates data fetching and analytics for one symbol at a time.
type Collector struct {
	Source     Source
	Contracts  *cache.ContractCache
	Aggregator *holding.Aggregator
	Opts       Options
	Now        func() time.Time
}

// NewCollector creates a new Collector with its own contract cache.
func NewCollector(src Source, agg *holding.Aggregator, opts Options) *Collector {
	if opts.RSIPeriod == 0 {
		opts.RSIPeriod = calculator.DefaultRSIPeriod
	}
	return &Collector{
		Source:     src,
		Contracts:  cache.NewContractCache(opts.ContractTTL, src.FetchContract),
		Aggregator: agg,
		Opts:       opts,
		Now:        time.Now,
	}
}

// Collect fetches the lookback window for symbol and runs every engine over it.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.Snapshot, error) {
	now := c.Now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -c.Opts.LookbackDays)

	bars, err := c.Source.FetchBars(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoBars)
	}
	last := bars[len(bars)-1]

	snap := &model.Snapshot{
		Symbol:     symbol,
		From:       from,
		To:         to,
		Bars:       len(bars),
		LastClose:  last.Close,
		MA:         make(map[int][]model.Value, len(c.Opts.MAWindows)),
		RSIPeriod:  c.Opts.RSIPeriod,
		Settlement: calculator.SettlementPrice(last.High, last.Low, last.Close),
		Contango:   model.Undefined(),
		ComputedAt: now,
	}

	if contract, err := c.Contracts.Get(ctx, symbol); err != nil {
		log.Printf("[WARN] %s contract metadata unavailable: %v", symbol, err)
	} else {
		snap.Contract = contract
	}

	for _, w := range c.Opts.MAWindows {
		ma, err := calculator.CalculateMA(w, bars)
		if err != nil {
			log.Printf("[WARN] %s MA%d calculation failed: %v", symbol, w, err)
			continue
		}
		snap.MA[w] = ma
	}

	if rsi, err := calculator.CalculateRSI(bars, c.Opts.RSIPeriod); err != nil {
		log.Printf("[WARN] %s RSI calculation failed: %v", symbol, err)
	} else {
		snap.RSI = rsi
	}

	if r, err := calculator.CalculateRange(bars, calculator.MonthRangeBars); err != nil {
		log.Printf("[WARN] %s range calculation failed: %v", symbol, err)
	} else {
		snap.Range = r
	}

	oi, err := c.Source.FetchOpenInterest(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch open interest: %w", err)
	}
	snap.OIChanges = calculator.OpenInterestChange(oi)

	if c.Opts.Spot != "" {
		spot, err := c.Source.FetchBars(ctx, c.Opts.Spot, from, to)
		if err != nil {
			log.Printf("[WARN] %s spot bars unavailable: %v", c.Opts.Spot, err)
		} else {
			snap.Basis = calculator.BasisSeries(spot, bars)
		}
	}

	if far, ok := c.Opts.ContangoPairs[symbol]; ok {
		snap.Contango = c.contango(ctx, snap.Contract, last, far, from, to)
	}

	trends, err := c.Source.FetchHoldingTrends(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch holding trends: %w", err)
	}
	report, err := c.Aggregator.Report(ctx, trends)
	if err != nil {
		return nil, fmt.Errorf("aggregate holdings: %w", err)
	}
	snap.Summaries = report.Summaries
	for _, ex := range report.Excluded {
		snap.Excluded = append(snap.Excluded, fmt.Sprintf("%s(%s)", ex.Broker, ex.Reason))
	}

	board, err := c.Aggregator.Leaderboard(report.Records(), last.Date, c.Opts.TopN)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	snap.Board = board

	return snap, nil
}

// contango compares the near contract's last close with the far contract's close on the same day.
func (c *Collector) contango(ctx context.Context, near model.Contract, last model.Bar, farSymbol string, from, to time.Time) model.Value {
	farContract, err := c.Contracts.Get(ctx, farSymbol)
	if err != nil {
		log.Printf("[WARN] %s contract metadata unavailable: %v", farSymbol, err)
		return model.Undefined()
	}
	if near.Expiry.IsZero() || farContract.Expiry.IsZero() {
		return model.Undefined()
	}
	farBars, err := c.Source.FetchBars(ctx, farSymbol, from, to)
	if err != nil {
		log.Printf("[WARN] %s bars unavailable: %v", farSymbol, err)
		return model.Undefined()
	}
	i := sort.Search(len(farBars), func(i int) bool { return !farBars[i].Date.Before(last.Date) })
	if i == len(farBars) || !farBars[i].Date.Equal(last.Date) {
		return model.Undefined()
	}
	return calculator.AnnualizedContango(last.Close, farBars[i].Close, calculator.DaySpread(near.Expiry, farContract.Expiry))
}
