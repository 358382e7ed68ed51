// Package adapter normalizes upstream REST payloads into engine input.
package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"FuturesDesk/internal/model"
)

// TradeDateLayout is the upstream YYYYMMDD date format.
const TradeDateLayout = "20060102"

var (
	ErrMissingField  = errors.New("missing required field")
	ErrDuplicateDate = errors.New("duplicate trade date")
)

// BarRow is one daily bar as delivered upstream.
type BarRow struct {
	TradeDate string  `json:"trade_date"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Vol       int64   `json:"vol"`
	OI        *int64  `json:"oi,omitempty"`
}

// HoldingRow is one broker position report. Numeric fields are pointers so an
// absent field can be told apart from zero.
type HoldingRow struct {
	Broker    string `json:"broker"`
	TradeDate string `json:"trade_date"`
	LongHld   *int64 `json:"long_hld"`
	ShortHld  *int64 `json:"short_hld"`
	LongChg   *int64 `json:"long_chg"`
	ShortChg  *int64 `json:"short_chg"`
	Vol       int64  `json:"vol,omitempty"`
}

// TrendRow is a broker's holding trend with its total traded volume.
type TrendRow struct {
	Broker   string       `json:"broker"`
	TotalVol int64        `json:"total_vol"`
	Rows     []HoldingRow `json:"rows"`
}

// Rejection names a broker dropped during normalization.
type Rejection struct {
	Broker string
	Err    error
}

// ParseTradeDate parses a YYYYMMDD string into UTC midnight.
func ParseTradeDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TradeDateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse trade_date %q: %w", s, err)
	}
	return t, nil
}

// FormatTradeDate is the inverse of ParseTradeDate.
func FormatTradeDate(t time.Time) string {
	return t.UTC().Format(TradeDateLayout)
}

// NormalizeBars parses and sorts bars ascending. Duplicate dates are an error.
func NormalizeBars(rows []BarRow) ([]model.Bar, error) {
	bars := make([]model.Bar, 0, len(rows))
	for _, r := range rows {
		d, err := ParseTradeDate(r.TradeDate)
		if err != nil {
			return nil, err
		}
		bars = append(bars, model.Bar{Date: d, Open: r.Open, High: r.High, Low: r.Low, Close: r.Close, Volume: r.Vol})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	for i := 1; i < len(bars); i++ {
		if bars[i].Date.Equal(bars[i-1].Date) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, FormatTradeDate(bars[i].Date))
		}
	}
	return bars, nil
}

// NormalizeOpenInterest extracts the OI series from bar rows that carry one.
func NormalizeOpenInterest(rows []BarRow) ([]model.PricePoint, error) {
	points := make([]model.PricePoint, 0, len(rows))
	for _, r := range rows {
		if r.OI == nil {
			continue
		}
		d, err := ParseTradeDate(r.TradeDate)
		if err != nil {
			return nil, err
		}
		points = append(points, model.PricePoint{Date: d, OpenInterest: *r.OI})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	for i := 1; i < len(points); i++ {
		if points[i].Date.Equal(points[i-1].Date) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, FormatTradeDate(points[i].Date))
		}
	}
	return points, nil
}

// NormalizeHolding converts one row. Rows without a broker, date or any numeric field fail.
func NormalizeHolding(r HoldingRow) (model.HoldingRecord, error) {
	var missing []string
	if strings.TrimSpace(r.Broker) == "" {
		missing = append(missing, "broker")
	}
	if r.LongHld == nil {
		missing = append(missing, "long_hld")
	}
	if r.ShortHld == nil {
		missing = append(missing, "short_hld")
	}
	if r.LongChg == nil {
		missing = append(missing, "long_chg")
	}
	if r.ShortChg == nil {
		missing = append(missing, "short_chg")
	}
	if strings.TrimSpace(r.TradeDate) == "" {
		missing = append(missing, "trade_date")
	}
	if len(missing) > 0 {
		return model.HoldingRecord{}, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ","))
	}
	d, err := ParseTradeDate(r.TradeDate)
	if err != nil {
		return model.HoldingRecord{}, err
	}
	return model.HoldingRecord{
		Broker:      strings.TrimSpace(r.Broker),
		Date:        d,
		LongHeld:    *r.LongHld,
		ShortHeld:   *r.ShortHld,
		LongChange:  *r.LongChg,
		ShortChange: *r.ShortChg,
	}, nil
}

// NormalizeHoldings converts a flat list of rows, skipping malformed ones.
// Used for single-date leaderboard payloads.
func NormalizeHoldings(rows []HoldingRow) ([]model.HoldingRecord, []Rejection) {
	out := make([]model.HoldingRecord, 0, len(rows))
	var rejected []Rejection
	for _, r := range rows {
		rec, err := NormalizeHolding(r)
		if err != nil {
			rejected = append(rejected, Rejection{Broker: r.Broker, Err: err})
			continue
		}
		out = append(out, rec)
	}
	return out, rejected
}

// NormalizeTrends converts broker trends. A broker with any malformed row is dropped
// whole and reported as a rejection; the rest of the batch is kept.
func NormalizeTrends(rows []TrendRow) ([]model.BrokerTrend, []Rejection) {
	trends := make([]model.BrokerTrend, 0, len(rows))
	var rejected []Rejection
	for _, tr := range rows {
		trend := model.BrokerTrend{Broker: strings.TrimSpace(tr.Broker), TotalVolume: tr.TotalVol}
		var failed error
		for _, r := range tr.Rows {
			if r.Broker == "" {
				r.Broker = tr.Broker
			}
			rec, err := NormalizeHolding(r)
			if err != nil {
				failed = fmt.Errorf("row %s: %w", r.TradeDate, err)
				break
			}
			trend.Records = append(trend.Records, rec)
		}
		if failed != nil {
			rejected = append(rejected, Rejection{Broker: tr.Broker, Err: failed})
			continue
		}
		sort.SliceStable(trend.Records, func(i, j int) bool { return trend.Records[i].Date.Before(trend.Records[j].Date) })
		trends = append(trends, trend)
	}
	return trends, rejected
}

// DecodeTrends reads a JSON array of TrendRow.
func DecodeTrends(r io.Reader) ([]TrendRow, error) {
	var rows []TrendRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode holding trends: %w", err)
	}
	return rows, nil
}

// DecodeBars reads a JSON array of BarRow.
func DecodeBars(r io.Reader) ([]BarRow, error) {
	var rows []BarRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	return rows, nil
}
