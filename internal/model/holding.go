package model

import "time"

// HoldingRecord is one broker's position report for one trade date.
type HoldingRecord struct {
	Broker      string    `json:"broker" validate:"required"`
	Date        time.Time `json:"trade_date" validate:"required"`
	LongHeld    int64     `json:"long_hld"`
	ShortHeld   int64     `json:"short_hld"`
	LongChange  int64     `json:"long_chg"`
	ShortChange int64     `json:"short_chg"`
}

// BrokerTrend is a broker's holding series for one symbol over a date range.
// TotalVolume is the upstream total_vol field for the same range.
type BrokerTrend struct {
	Broker      string          `validate:"required"`
	TotalVolume int64           `validate:"gte=0"`
	Records     []HoldingRecord `validate:"dive"`
}

// BrokerSummary aggregates a broker's position changes over a date range.
type BrokerSummary struct {
	Broker            string `json:"broker"`
	TotalVolume       int64  `json:"total_volume"`
	NetLongChange     int64  `json:"net_long_change"`
	NetShortChange    int64  `json:"net_short_change"`
	NetPositionChange int64  `json:"net_position_change"`
}

// LeaderboardEntry is one broker's rank on one side for one trade date.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	Broker      string  `json:"broker"`
	Holding     int64   `json:"holding"`
	Change      int64   `json:"change"`
	ImpactScore float64 `json:"impact_score"`
}

// Leaderboard holds the long and short rankings for a single trade date.
type Leaderboard struct {
	Date       time.Time          `json:"trade_date"`
	Long       []LeaderboardEntry `json:"long"`
	Short      []LeaderboardEntry `json:"short"`
	LongTotal  int64              `json:"long_total"`
	ShortTotal int64              `json:"short_total"`
}
