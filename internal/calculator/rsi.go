package calculator

import (
	"fmt"

	"FuturesDesk/internal/model"
)

// DefaultRSIPeriod is the classic Wilder lookback.
const DefaultRSIPeriod = 14

// CalculateRSI computes the Wilder-smoothed RSI for every bar.
// Entries 0..period-1 are Undefined; the first value sits at index period and uses the
// arithmetic mean of the first period changes as the seed. With fewer than period+1 bars
// every entry is Undefined and no error is returned.
func CalculateRSI(bars []model.Bar, period int) ([]model.Value, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive, got %d", ErrInvalidArgument, period)
	}
	out := make([]model.Value, len(bars))
	if len(bars) < period+1 {
		return out, nil
	}

	closes := Closes(bars)

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = model.FromFloat(rsiFromAverages(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = model.FromFloat(rsiFromAverages(avgGain, avgLoss))
	}
	return out, nil
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
