package format

import (
	"math"
	"testing"

	"FuturesDesk/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestScaleToChineseUnits(t *testing.T) {
	tests := []struct {
		name  string
		in    float64
		value float64
		unit  string
	}{
		{"raw", 9999, 9999, UnitNone},
		{"wan boundary", 10000, 1, UnitWan},
		{"wan", 123456, 12.3456, UnitWan},
		{"yi boundary", 1e8, 1, UnitYi},
		{"yi", 2.5e9, 25, UnitYi},
		{"negative wan", -56000, -5.6, UnitWan},
		{"zero", 0, 0, UnitNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleToChineseUnits(tt.in)
			assert.True(t, got.Computable)
			assert.Equal(t, tt.unit, got.Unit)
			assert.InDelta(t, tt.value, got.Value, 1e-9)
		})
	}

	assert.False(t, ScaleToChineseUnits(math.NaN()).Computable)
	assert.False(t, ScaleToChineseUnits(math.Inf(-1)).Computable)
}

func TestFormatScaled(t *testing.T) {
	assert.Equal(t, "1.23亿", FormatScaled(123456789, 2))
	assert.Equal(t, "5.6万", FormatScaled(56000, 1))
	assert.Equal(t, "999", FormatScaled(999, 0))
	assert.Equal(t, NotComputableLabel, FormatScaled(math.Inf(1), 2))
}

func TestFormatScaled_RoundsBeforeChoosingUnit(t *testing.T) {
	assert.Equal(t, "1.00亿", FormatScaled(99999999.9, 2))
	assert.Equal(t, "-1.00亿", FormatScaled(-99999999.9, 2))
	assert.Equal(t, "1.00万", FormatScaled(9999.996, 2))
	assert.Equal(t, "1万", FormatScaled(9999.6, 0))
	assert.Equal(t, "9999.99万", FormatScaled(99999900, 2))
	assert.Equal(t, "100000.00亿", FormatScaled(1e13, 2))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.35%", FormatPercent(12.345, 2))
	assert.Equal(t, "-10.0%", FormatPercent(-10, 1))
	assert.Equal(t, "3%", FormatPercent(2.5, 0))
	assert.Equal(t, NotComputableLabel, FormatPercent(math.NaN(), 2))
	assert.NotContains(t, FormatPercent(math.NaN(), 2), "NaN")
}

func TestFormatThousands(t *testing.T) {
	assert.Equal(t, "1,234,567.89", FormatThousands(1234567.891, 2))
	assert.Equal(t, "1,000.00", FormatThousands(1000, 2))
	assert.Equal(t, "-1,234.6", FormatThousands(-1234.56, 1))
	assert.Equal(t, "-0.50", FormatThousands(-0.5, 2))
	assert.Equal(t, "12", FormatThousands(12.4, 0))
	assert.Equal(t, NotComputableLabel, FormatThousands(math.Inf(1), 2))
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "+1,200", FormatChange(1200))
	assert.Equal(t, "-35", FormatChange(-35))
	assert.Equal(t, "0", FormatChange(0))
}

func TestFormatValue_ThreeStates(t *testing.T) {
	assert.Equal(t, UndefinedLabel, FormatValue(model.Undefined(), 2))
	assert.Equal(t, NotComputableLabel, FormatValue(model.NotComputable(), 2))
	assert.Equal(t, "0.00", FormatValue(model.Defined(0), 2))

	assert.Equal(t, UndefinedLabel, FormatPercentValue(model.Undefined(), 2))
	assert.Equal(t, NotComputableLabel, FormatPercentValue(model.NotComputable(), 2))
	assert.Equal(t, "1.50%", FormatPercentValue(model.Defined(1.5), 2))
}
