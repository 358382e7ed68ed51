package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestFromFloat_NonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if k := FromFloat(f).Kind(); k != KindNotComputable {
			t.Errorf("FromFloat(%v) kind = %s, want not_computable", f, k)
		}
	}
	if v := FromFloat(1.5); !v.IsDefined() || v.Or(0) != 1.5 {
		t.Errorf("FromFloat(1.5) = %v", v)
	}
}

func TestZeroValueIsUndefined(t *testing.T) {
	var v Value
	if !v.IsUndefined() {
		t.Fatalf("zero Value kind = %s", v.Kind())
	}
	if _, ok := v.Float(); ok {
		t.Error("undefined value reported a number")
	}
	if got := v.Or(-1); got != -1 {
		t.Errorf("Or fallback = %v, want -1", got)
	}
}

func TestValueJSON(t *testing.T) {
	series := []Value{Defined(12.5), Undefined(), NotComputable()}
	data, err := json.Marshal(series)
	if err != nil {
		t.Fatal(err)
	}
	if want := `[12.5,null,"not_computable"]`; string(data) != want {
		t.Fatalf("marshal = %s, want %s", data, want)
	}

	var back []Value
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	for i := range series {
		if back[i] != series[i] {
			t.Errorf("index %d: got %v, want %v", i, back[i], series[i])
		}
	}
}

func TestValueUnmarshal_Invalid(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`"abc"`), &v); err == nil {
		t.Error("expected error for non-numeric string")
	}
}
