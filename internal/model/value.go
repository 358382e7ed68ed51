package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind tags the state of a Value.
type Kind uint8

const (
	KindUndefined Kind = iota // insufficient history
	KindDefined
	KindNotComputable // division by zero, log of non-positive, non-finite input
)

func (k Kind) String() string {
	switch k {
	case KindDefined:
		return "defined"
	case KindNotComputable:
		return "not_computable"
	default:
		return "undefined"
	}
}

// Value is a derived number that may be missing for one of two distinct reasons.
// The zero Value is Undefined.
type Value struct {
	kind Kind
	f    float64
}

// Defined wraps a computed number. Non-finite input yields NotComputable.
func Defined(f float64) Value {
	return FromFloat(f)
}

// Undefined marks a point inside an indicator's warm-up window.
func Undefined() Value { return Value{} }

// NotComputable marks a point whose formula has no finite result.
func NotComputable() Value { return Value{kind: KindNotComputable} }

// FromFloat maps NaN and ±Inf to NotComputable.
func FromFloat(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NotComputable()
	}
	return Value{kind: KindDefined, f: f}
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsDefined() bool   { return v.kind == KindDefined }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// Float returns the number and whether it is defined.
func (v Value) Float() (float64, bool) {
	if v.kind != KindDefined {
		return 0, false
	}
	return v.f, true
}

// Or returns the number, or fallback when v is not defined.
func (v Value) Or(fallback float64) float64 {
	if v.kind != KindDefined {
		return fallback
	}
	return v.f
}

func (v Value) String() string {
	if v.kind != KindDefined {
		return v.kind.String()
	}
	return strconv.FormatFloat(v.f, 'f', -1, 64)
}

// MarshalJSON emits a number, null for Undefined, or "not_computable".
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindDefined:
		return json.Marshal(v.f)
	case KindNotComputable:
		return []byte(`"not_computable"`), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the three encodings produced by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*v = Undefined()
		return nil
	case `"not_computable"`:
		*v = NotComputable()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = FromFloat(f)
	return nil
}
