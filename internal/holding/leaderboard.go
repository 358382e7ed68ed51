package holding

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"FuturesDesk/internal/calculator"
	"FuturesDesk/internal/model"
)

type side struct {
	broker  string
	holding int64
	change  int64
}

// Leaderboard ranks the long and short holders on a single trade date.
// Entries are ordered by holding descending with ties broken by broker identifier.
// Negative holdings count as 0. topN == 0 keeps every broker; topN < 0 is invalid.
// A broker with more than one record on the date is left out and logged.
// ImpactScore is the broker's share of the whole side, not just of the top N.
func (a *Aggregator) Leaderboard(records []model.HoldingRecord, date time.Time, topN int) (model.Leaderboard, error) {
	board := model.Leaderboard{Date: date}
	if topN < 0 {
		return board, fmt.Errorf("%w: topN must not be negative, got %d", calculator.ErrInvalidArgument, topN)
	}

	want := dayKey(date)
	var day []model.HoldingRecord
	seen := make(map[string]int)
	for _, r := range records {
		if dayKey(r.Date) != want {
			continue
		}
		if r.Broker == "" {
			a.logger.Warn("record without broker skipped", slog.Time("date", r.Date))
			continue
		}
		seen[r.Broker]++
		day = append(day, r)
	}

	var longs, shorts []side
	for _, r := range day {
		switch n := seen[r.Broker]; {
		case n == 1:
			longs = append(longs, side{broker: r.Broker, holding: clamp(r.LongHeld), change: r.LongChange})
			shorts = append(shorts, side{broker: r.Broker, holding: clamp(r.ShortHeld), change: r.ShortChange})
		case n > 1:
			a.logger.Warn("broker excluded from leaderboard",
				slog.String("broker", r.Broker),
				slog.Int("records", n),
				slog.Time("date", r.Date))
			seen[r.Broker] = 0 // warned once
		}
	}

	board.Long, board.LongTotal = rank(longs, topN)
	board.Short, board.ShortTotal = rank(shorts, topN)
	return board, nil
}

func rank(entries []side, topN int) ([]model.LeaderboardEntry, int64) {
	var total int64
	for _, e := range entries {
		total += e.holding
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].holding != entries[j].holding {
			return entries[i].holding > entries[j].holding
		}
		return entries[i].broker < entries[j].broker
	})
	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	out := make([]model.LeaderboardEntry, len(entries))
	for i, e := range entries {
		score := 0.0
		if total > 0 {
			score = float64(e.holding) / float64(total)
		}
		out[i] = model.LeaderboardEntry{
			Rank:        i + 1,
			Broker:      e.broker,
			Holding:     e.holding,
			Change:      e.change,
			ImpactScore: score,
		}
	}
	return out, total
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
