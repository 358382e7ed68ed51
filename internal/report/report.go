package report

import (
	"fmt"
	"sort"
	"strings"

	"FuturesDesk/internal/format"
	"FuturesDesk/internal/holding"
	"FuturesDesk/internal/model"
)

// FormatSnapshot renders a snapshot as a plain-text daily report.
func FormatSnapshot(snap *model.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 %s 日报 | %s\n\n", snap.Symbol, snap.To.Format("2006-01-02")))

	// Price and averages
	b.WriteString(fmt.Sprintf("收盘价: %s\n", format.FormatThousands(snap.LastClose, 2)))
	b.WriteString(fmt.Sprintf("结算价: %s\n", format.FormatThousands(snap.Settlement, 2)))
	windows := make([]int, 0, len(snap.MA))
	for w := range snap.MA {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	parts := make([]string, 0, len(windows))
	for _, w := range windows {
		parts = append(parts, fmt.Sprintf("MA%d: %s", w, format.FormatValue(last(snap.MA[w]), 2)))
	}
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, " | ") + "\n")
	}
	if snap.Range.Bars > 0 {
		b.WriteString(fmt.Sprintf("%d日区间: %s ~ %s (位置 %s)\n", snap.Range.Bars,
			format.FormatThousands(snap.Range.Low, 2), format.FormatThousands(snap.Range.High, 2),
			format.FormatPercentValue(scalePct(snap.Range.Position), 1)))
	}
	b.WriteString(fmt.Sprintf("RSI%d: %s\n\n", snap.RSIPeriod, format.FormatValue(last(snap.RSI), 2)))

	// Futures metrics
	if n := len(snap.Basis); n > 0 {
		bp := snap.Basis[n-1]
		b.WriteString(fmt.Sprintf("基差: %s (基差率 %s)\n", format.FormatValue(bp.Basis, 2), format.FormatPercentValue(bp.Rate, 2)))
	}
	b.WriteString(fmt.Sprintf("年化升贴水: %s\n", format.FormatPercentValue(snap.Contango, 2)))
	if n := len(snap.OIChanges); n > 0 {
		oi := snap.OIChanges[n-1]
		b.WriteString(fmt.Sprintf("持仓量变化: %s (%s)\n", format.FormatChange(oi.Absolute), format.FormatPercentValue(oi.Percent, 2)))
	}

	// Broker flows
	if len(snap.Summaries) > 0 {
		b.WriteString("\n🏦 席位净持仓变化:\n")
		for _, s := range holding.RankByNetPosition(snap.Summaries) {
			b.WriteString(fmt.Sprintf("  %s: %s (%s) 成交 %s\n",
				s.Broker, format.FormatChange(s.NetPositionChange), pressureLabel(holding.Classify(s.NetPositionChange)),
				format.FormatScaled(float64(s.TotalVolume), 2)))
		}
	}
	if len(snap.Excluded) > 0 {
		b.WriteString(fmt.Sprintf("  已排除: %s\n", strings.Join(snap.Excluded, ", ")))
	}

	writeSide(&b, "多头", snap.Board.Long, snap.Board.LongTotal)
	writeSide(&b, "空头", snap.Board.Short, snap.Board.ShortTotal)

	return b.String()
}

func writeSide(b *strings.Builder, label string, entries []model.LeaderboardEntry, total int64) {
	if len(entries) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("\n📈 %s持仓排名 (合计 %s):\n", label, format.FormatScaled(float64(total), 2)))
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("  %d. %s %s (%s) 占比 %s\n",
			e.Rank, e.Broker, format.FormatThousands(float64(e.Holding), 0),
			format.FormatChange(e.Change), format.FormatPercent(e.ImpactScore*100, 2)))
	}
}

func pressureLabel(p holding.Pressure) string {
	switch p {
	case holding.Bullish:
		return "偏多"
	case holding.Bearish:
		return "偏空"
	default:
		return "中性"
	}
}

func scalePct(v model.Value) model.Value {
	if f, ok := v.Float(); ok {
		return model.FromFloat(f * 100)
	}
	return v
}

func last(series []model.Value) model.Value {
	if len(series) == 0 {
		return model.Undefined()
	}
	return series[len(series)-1]
}
