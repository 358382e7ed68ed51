package holding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"FuturesDesk/internal/model"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// ExclusionReason explains why a broker is missing from a report.
type ExclusionReason string

const (
	ReasonZeroVolume   ExclusionReason = "zero_total_volume"
	ReasonZeroHoldings ExclusionReason = "zero_holdings"
	ReasonInvalid      ExclusionReason = "invalid_records"
)

// Exclusion records a broker dropped from the broker-dimension report.
type Exclusion struct {
	Broker string
	Reason ExclusionReason
	Err    error
}

// Report is the broker-dimension result for one symbol over one date range.
// Valid holds every trend that passed validation, inactive ones included, in input order.
type Report struct {
	Summaries []model.BrokerSummary
	Excluded  []Exclusion
	Valid     []model.BrokerTrend
}

// Records flattens the valid trends, e.g. as leaderboard input.
func (r *Report) Records() []model.HoldingRecord {
	var out []model.HoldingRecord
	for _, tr := range r.Valid {
		out = append(out, tr.Records...)
	}
	return out
}

// Aggregator turns per-broker holding trends into summaries and leaderboards.
// It keeps no state between calls and is safe for concurrent use.
type Aggregator struct {
	logger   *slog.Logger
	validate *validator.Validate
	workers  int
}

// NewAggregator creates an Aggregator. A nil logger falls back to slog.Default().
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		logger:   logger.With(slog.String("component", "holding_aggregator")),
		validate: validator.New(),
		workers:  runtime.GOMAXPROCS(0),
	}
}

// Report filters inactive or malformed brokers and summarizes the rest.
// A broker that appears in more than one trend is malformed.
// Summaries are sorted by broker identifier.
func (a *Aggregator) Report(ctx context.Context, trends []model.BrokerTrend) (*Report, error) {
	report := &Report{}
	counts := make(map[string]int, len(trends))
	for _, tr := range trends {
		counts[tr.Broker]++
	}
	active := make([]model.BrokerTrend, 0, len(trends))
	for _, tr := range trends {
		err := a.check(tr)
		if err == nil && counts[tr.Broker] > 1 {
			err = fmt.Errorf("broker %q has %d trends", tr.Broker, counts[tr.Broker])
		}
		if err != nil {
			a.logger.Warn("broker excluded",
				slog.String("broker", tr.Broker),
				slog.String("reason", string(ReasonInvalid)),
				slog.Any("error", err))
			report.Excluded = append(report.Excluded, Exclusion{Broker: tr.Broker, Reason: ReasonInvalid, Err: err})
			continue
		}
		report.Valid = append(report.Valid, tr)
		if reason, ok := Inactive(tr); ok {
			a.logger.Debug("broker filtered", slog.String("broker", tr.Broker), slog.String("reason", string(reason)))
			report.Excluded = append(report.Excluded, Exclusion{Broker: tr.Broker, Reason: reason})
			continue
		}
		active = append(active, tr)
	}

	summaries := make([]model.BrokerSummary, len(active))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range active {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summaries[i] = Summarize(active[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("summarize brokers: %w", err)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Broker < summaries[j].Broker })
	sort.SliceStable(report.Excluded, func(i, j int) bool { return report.Excluded[i].Broker < report.Excluded[j].Broker })
	report.Summaries = summaries
	return report, nil
}

// check validates required fields, broker consistency and (broker, date) uniqueness.
func (a *Aggregator) check(tr model.BrokerTrend) error {
	if err := a.validate.Struct(tr); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("field %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return err
	}
	seen := make(map[int]struct{}, len(tr.Records))
	for _, r := range tr.Records {
		if r.Broker != tr.Broker {
			return fmt.Errorf("record broker %q does not match trend broker %q", r.Broker, tr.Broker)
		}
		key := dayKey(r.Date)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate record for %s", r.Date.Format("2006-01-02"))
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Inactive reports whether a trend must be left out of the broker report.
// Either condition alone excludes the broker: zero total volume over the range,
// or no long or short holding on any day.
func Inactive(tr model.BrokerTrend) (ExclusionReason, bool) {
	if tr.TotalVolume == 0 {
		return ReasonZeroVolume, true
	}
	for _, r := range tr.Records {
		if r.LongHeld != 0 || r.ShortHeld != 0 {
			return "", false
		}
	}
	return ReasonZeroHoldings, true
}

// Summarize sums long and short changes across the trend.
func Summarize(tr model.BrokerTrend) model.BrokerSummary {
	s := model.BrokerSummary{Broker: tr.Broker, TotalVolume: tr.TotalVolume}
	for _, r := range tr.Records {
		s.NetLongChange += r.LongChange
		s.NetShortChange += r.ShortChange
	}
	s.NetPositionChange = s.NetLongChange - s.NetShortChange
	return s
}

// RankByNetPosition returns a copy ordered by net position change, largest first.
func RankByNetPosition(summaries []model.BrokerSummary) []model.BrokerSummary {
	out := append([]model.BrokerSummary(nil), summaries...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].NetPositionChange != out[j].NetPositionChange {
			return out[i].NetPositionChange > out[j].NetPositionChange
		}
		return out[i].Broker < out[j].Broker
	})
	return out
}
