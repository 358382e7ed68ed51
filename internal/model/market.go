package model

import "time"

// Bar represents a single daily candlestick bar.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// PricePoint is one open-interest observation.
type PricePoint struct {
	Date         time.Time
	OpenInterest int64
}

// OIChange is the day-over-day open-interest delta ending at Date.
type OIChange struct {
	Date     time.Time
	Absolute int64
	Percent  Value
}

// BasisPoint pairs spot and futures closes on the same trade date.
type BasisPoint struct {
	Date    time.Time
	Spot    float64
	Futures float64
	Basis   Value
	Rate    Value
}

// Contract holds static metadata for a futures contract.
type Contract struct {
	Symbol     string    `json:"symbol"`
	Exchange   string    `json:"exchange"`
	Multiplier float64   `json:"multiplier"`
	TickSize   float64   `json:"tick_size"`
	Expiry     time.Time `json:"expiry"`
}

// PriceRange is the high/low envelope of the most recent bars and where the last close sits in it.
type PriceRange struct {
	Bars     int
	High     float64
	Low      float64
	Position Value
}
