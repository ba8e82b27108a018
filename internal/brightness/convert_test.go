package brightness

import (
	"math"
	"testing"
)

func TestPercentToValue(t *testing.T) {
	tests := []struct {
		percent, max, expected int64
	}{
		{50, 200, 100},
		{1, 200, 2},
		{1, 7, 0},
		{8, 7, 1}, // 0.56 rounds up
		{100, 255, 255},
		{33, 255, 84}, // 84.15
		{0, 255, 0},
		{-20, 200, -40},
		{-15, 7, -1}, // floor(-1.05 + 0.5)
		{math.MaxInt64, 200, math.MaxInt64},
		{math.MinInt64, 200, math.MinInt64},
		{math.MaxInt64 / 100, 100, math.MaxInt64 / 100},
	}

	for _, tt := range tests {
		if got := PercentToValue(tt.percent, tt.max); got != tt.expected {
			t.Errorf("PercentToValue(%d, %d) = %d, want %d", tt.percent, tt.max, got, tt.expected)
		}
	}
}

func TestValueToPercent(t *testing.T) {
	tests := []struct {
		value, max, expected int64
	}{
		{100, 200, 50},
		{1, 200, 1}, // 0.5 rounds up
		{0, 200, 0},
		{200, 200, 100},
		{84, 255, 33},
		{1, 7, 14},
		{math.MaxInt64, math.MaxInt64, 100},
		{math.MaxInt64 / 2, math.MaxInt64, 50},
	}

	for _, tt := range tests {
		if got := ValueToPercent(tt.value, tt.max); got != tt.expected {
			t.Errorf("ValueToPercent(%d, %d) = %d, want %d", tt.value, tt.max, got, tt.expected)
		}
	}
}

// A value survives a trip through percent within one unit while a percent
// step is at most two units wide; beyond that the error grows with max/200.
func TestRoundTripBound(t *testing.T) {
	for max := int64(1); max <= 1024; max++ {
		bound := 1 + max/200
		for v := int64(0); v <= max; v++ {
			back := PercentToValue(ValueToPercent(v, max), max)
			diff := back - v
			if diff < 0 {
				diff = -diff
			}
			if max <= 200 && diff > 1 {
				t.Fatalf("max=%d v=%d: round trip gave %d", max, v, back)
			}
			if diff > bound {
				t.Fatalf("max=%d v=%d: round trip gave %d, bound %d", max, v, back, bound)
			}
		}
	}
}

func TestConvert_PanicsOnNonPositiveMax(t *testing.T) {
	for _, fn := range []func(){
		func() { PercentToValue(1, 0) },
		func() { ValueToPercent(1, 0) },
		func() { ValueToPercent(1, -5) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Error("expected panic for max <= 0")
				}
			}()
			fn()
		}()
	}
}
