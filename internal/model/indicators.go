package model

import "time"

// Snapshot holds every derived metric computed for one symbol in one run.
type Snapshot struct {
	Symbol     string
	Contract   Contract
	From       time.Time
	To         time.Time
	Bars       int
	LastClose  float64
	MA         map[int][]Value // window size -> series
	RSIPeriod  int
	RSI        []Value
	Settlement float64
	Range      PriceRange
	Basis      []BasisPoint
	Contango   Value
	OIChanges  []OIChange
	Summaries  []BrokerSummary
	Excluded   []string
	Board      Leaderboard
	ComputedAt time.Time
}
