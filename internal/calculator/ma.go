package calculator

import (
	"fmt"
	"math"

	"FuturesDesk/internal/model"

	"github.com/shopspring/decimal"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: period must be positive, got %d", ErrInvalidArgument, period)
	}
	if len(prices) < period {
		return 0, fmt.Errorf("%w: need %d prices for SMA, got %d", ErrInvalidArgument, period, len(prices))
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateMA returns the close-price moving average for every bar, rounded to 2 decimals.
// The first windowSize-1 entries are Undefined. When windowSize exceeds len(bars) no window
// ever completes and every entry is Undefined; that is not an error.
func CalculateMA(windowSize int, bars []model.Bar) ([]model.Value, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidArgument, windowSize)
	}
	out := make([]model.Value, len(bars))
	closes := Closes(bars)
	for i := windowSize - 1; i < len(closes); i++ {
		mean, err := CalculateSMA(closes[i-windowSize+1:i+1], windowSize)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(mean) || math.IsInf(mean, 0) {
			out[i] = model.NotComputable()
			continue
		}
		out[i] = model.Defined(round2(mean))
	}
	return out, nil
}

// Closes extracts close prices in bar order.
func Closes(bars []model.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Latest returns the last defined value in a series.
func Latest(series []model.Value) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if f, ok := series[i].Float(); ok {
			return f, true
		}
	}
	return 0, false
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}
