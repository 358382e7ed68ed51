package holding

// Pressure classifies the sign of a net position change.
type Pressure string

const (
	Bullish Pressure = "bullish" // more net long
	Bearish Pressure = "bearish"
	Neutral Pressure = "neutral"
)

// Classify maps a signed net position delta to a Pressure.
func Classify(delta int64) Pressure {
	switch {
	case delta > 0:
		return Bullish
	case delta < 0:
		return Bearish
	default:
		return Neutral
	}
}
