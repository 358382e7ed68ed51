package collector

import (
	"context"
	"time"

	"FuturesDesk/internal/model"
)

// Source supplies fully materialized market data. Date ranges are inclusive.
type Source interface {
	FetchBars(ctx context.Context, symbol string, from, to time.Time) ([]model.Bar, error)
	FetchOpenInterest(ctx context.Context, symbol string, from, to time.Time) ([]model.PricePoint, error)
	FetchHoldingTrends(ctx context.Context, symbol string, from, to time.Time) ([]model.BrokerTrend, error)
	FetchContract(ctx context.Context, symbol string) (model.Contract, error)
	Name() string
}
