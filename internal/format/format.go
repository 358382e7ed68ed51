// Package format turns engine outputs into display strings for the dashboard.
package format

import (
	"math"
	"strings"

	"FuturesDesk/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	UndefinedLabel     = "--"
	NotComputableLabel = "N/A"

	UnitNone = ""
	UnitWan  = "万"
	UnitYi   = "亿"
)

const (
	wan = 1e4
	yi  = 1e8
)

var nextUnit = map[string]string{UnitNone: UnitWan, UnitWan: UnitYi}

// Scaled is a value expressed in 万 or 亿 units.
type Scaled struct {
	Value      float64
	Unit       string
	Computable bool
}

// ScaleToChineseUnits picks 亿 for |v| >= 1e8, 万 for |v| >= 1e4, otherwise no unit.
// Non-finite input comes back with Computable false.
func ScaleToChineseUnits(v float64) Scaled {
	if !finite(v) {
		return Scaled{Computable: false}
	}
	abs := math.Abs(v)
	switch {
	case abs >= yi:
		return Scaled{Value: v / yi, Unit: UnitYi, Computable: true}
	case abs >= wan:
		return Scaled{Value: v / wan, Unit: UnitWan, Computable: true}
	default:
		return Scaled{Value: v, Unit: UnitNone, Computable: true}
	}
}

// FormatScaled renders v in Chinese units, e.g. "1.23亿". Rounding happens before
// the unit is fixed, so 99999999.9 renders as "1.00亿" rather than "10000.00万".
func FormatScaled(v float64, decimals int) string {
	s := ScaleToChineseUnits(v)
	if !s.Computable {
		return NotComputableLabel
	}
	if decimals < 0 {
		decimals = 0
	}
	d := decimal.NewFromFloat(s.Value).Round(int32(decimals))
	if next, ok := nextUnit[s.Unit]; ok && d.Abs().GreaterThanOrEqual(decimal.NewFromInt(wan)) {
		d = d.Div(decimal.NewFromInt(wan)).Round(int32(decimals))
		s.Unit = next
	}
	return d.StringFixed(int32(decimals)) + s.Unit
}

// FormatPercent renders v with a trailing percent sign.
func FormatPercent(v float64, decimals int) string {
	if !finite(v) {
		return NotComputableLabel
	}
	return fixed(v, decimals) + "%"
}

// FormatThousands renders v with comma separators and a fixed number of decimals.
func FormatThousands(v float64, decimals int) string {
	if !finite(v) {
		return NotComputableLabel
	}
	if decimals < 0 {
		decimals = 0
	}
	d := decimal.NewFromFloat(v).Round(int32(decimals))
	abs := d.Abs()
	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(humanize.Comma(abs.Truncate(0).IntPart()))
	if decimals > 0 {
		s := abs.StringFixed(int32(decimals))
		b.WriteString(s[strings.IndexByte(s, '.'):])
	}
	return b.String()
}

// FormatChange renders a signed integer delta with an explicit plus sign.
func FormatChange(delta int64) string {
	if delta > 0 {
		return "+" + humanize.Comma(delta)
	}
	return humanize.Comma(delta)
}

// FormatValue renders a tagged value, keeping the three states apart.
func FormatValue(v model.Value, decimals int) string {
	switch v.Kind() {
	case model.KindUndefined:
		return UndefinedLabel
	case model.KindNotComputable:
		return NotComputableLabel
	}
	f, _ := v.Float()
	return FormatThousands(f, decimals)
}

// FormatPercentValue is FormatPercent for tagged values.
func FormatPercentValue(v model.Value, decimals int) string {
	switch v.Kind() {
	case model.KindUndefined:
		return UndefinedLabel
	case model.KindNotComputable:
		return NotComputableLabel
	}
	f, _ := v.Float()
	return FormatPercent(f, decimals)
}

func fixed(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return decimal.NewFromFloat(v).StringFixed(int32(decimals))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
