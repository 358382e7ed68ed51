package calculator

import (
	"fmt"
	"math"

	"FuturesDesk/internal/model"
)

// MonthRangeBars is roughly one month of trading days.
const MonthRangeBars = 22

// CalculateRange scans the most recent lookback bars for the high/low envelope and
// places the last close within it (0.0~1.0). A flat range puts the close at 0.5.
func CalculateRange(bars []model.Bar, lookback int) (model.PriceRange, error) {
	if lookback <= 0 {
		return model.PriceRange{}, fmt.Errorf("range lookback %d: %w", lookback, ErrInvalidArgument)
	}
	if len(bars) == 0 {
		return model.PriceRange{}, fmt.Errorf("range over no bars: %w", ErrInvalidArgument)
	}
	n := len(bars)
	start := n - lookback
	if start < 0 {
		start = 0
	}
	high := math.Inf(-1)
	low := math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	r := model.PriceRange{Bars: n - start, High: high, Low: low}
	r.Position = rangePosition(bars[n-1].Close, high, low)
	return r, nil
}

func rangePosition(current, high, low float64) model.Value {
	if high == low {
		return model.Defined(0.5)
	}
	if high < low {
		return model.NotComputable()
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return model.FromFloat(pos)
}
