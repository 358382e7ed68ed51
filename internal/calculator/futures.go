package calculator

import (
	"math"
	"time"

	"FuturesDesk/internal/model"
)

const daysPerYear = 365.0

// Basis returns futures - spot.
func Basis(spot, futures float64) model.Value {
	return model.FromFloat(futures - spot)
}

// BasisRate returns basis as a percentage of spot. NotComputable when spot is 0.
func BasisRate(spot, futures float64) model.Value {
	if spot == 0 {
		return model.NotComputable()
	}
	return model.FromFloat((futures - spot) / spot * 100)
}

// AnnualizedContango returns ln(far/near) * 365/daySpread * 100.
// Both prices must be positive and daySpread non-zero.
func AnnualizedContango(nearPrice, farPrice float64, daySpread int) model.Value {
	if nearPrice <= 0 || farPrice <= 0 || daySpread == 0 {
		return model.NotComputable()
	}
	return model.FromFloat(math.Log(farPrice/nearPrice) * daysPerYear / float64(daySpread) * 100)
}

// DaySpread returns the number of calendar days from near to far expiry.
func DaySpread(near, far time.Time) int {
	n := time.Date(near.Year(), near.Month(), near.Day(), 0, 0, 0, 0, time.UTC)
	f := time.Date(far.Year(), far.Month(), far.Day(), 0, 0, 0, 0, time.UTC)
	return int(f.Sub(n).Hours() / 24)
}

// OpenInterestChange returns one change per point after the first.
// Percent is NotComputable when the previous open interest is 0.
func OpenInterestChange(series []model.PricePoint) []model.OIChange {
	if len(series) < 2 {
		return []model.OIChange{}
	}
	out := make([]model.OIChange, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].OpenInterest
		abs := series[i].OpenInterest - prev
		pct := model.NotComputable()
		if prev != 0 {
			pct = model.FromFloat(float64(abs) / float64(prev) * 100)
		}
		out = append(out, model.OIChange{Date: series[i].Date, Absolute: abs, Percent: pct})
	}
	return out
}

// SettlementPrice returns the close-weighted average (high + low + 2*close) / 4.
func SettlementPrice(high, low, close float64) float64 {
	return (high + low + 2*close) / 4
}

// BasisSeries joins spot and futures bars on trade date and computes basis per common day.
// Both inputs must be ascending by date.
func BasisSeries(spot, futures []model.Bar) []model.BasisPoint {
	out := make([]model.BasisPoint, 0, min(len(spot), len(futures)))
	i, j := 0, 0
	for i < len(spot) && j < len(futures) {
		sd, fd := dayKey(spot[i].Date), dayKey(futures[j].Date)
		switch {
		case sd < fd:
			i++
		case sd > fd:
			j++
		default:
			s, f := spot[i].Close, futures[j].Close
			out = append(out, model.BasisPoint{
				Date:    futures[j].Date,
				Spot:    s,
				Futures: f,
				Basis:   Basis(s, f),
				Rate:    BasisRate(s, f),
			})
			i++
			j++
		}
	}
	return out
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
