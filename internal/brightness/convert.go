package brightness

import (
	"fmt"
	"math"
	"math/big"
)

// PercentToValue converts a percent of max into raw brightness units,
// rounding to the nearest unit.
//
// max must be positive.
func PercentToValue(percent, max int64) int64 {
	mustPositiveMax(max)
	return mulAddDiv(percent, max, 50, 100)
}

// ValueToPercent converts raw brightness units into a percent of max,
// rounding to the nearest percent.
//
// max must be positive.
func ValueToPercent(value, max int64) int64 {
	mustPositiveMax(max)
	return mulAddDiv(value, 100, max/2, max)
}

func mustPositiveMax(max int64) {
	if max <= 0 {
		panic(fmt.Sprintf("brightness: max must be positive, got %d", max))
	}
}

// mulAddDiv returns floor((a*b + c) / d) for d > 0, saturated to the int64
// range. Intermediate overflow falls back to arbitrary precision.
func mulAddDiv(a, b, c, d int64) int64 {
	if p, ok := mul64(a, b); ok {
		if s, ok := add64(p, c); ok {
			return floorDiv(s, d)
		}
	}

	n := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	n.Add(n, big.NewInt(c))
	// Euclidean division equals floor division for a positive divisor.
	n.Div(n, big.NewInt(d))
	return saturate(n)
}

func mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

func add64(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

// addSat adds with saturation at the int64 bounds.
func addSat(a, b int64) int64 {
	if s, ok := add64(a, b); ok {
		return s
	}
	if b > 0 {
		return math.MaxInt64
	}
	return math.MinInt64
}

func floorDiv(a, d int64) int64 {
	q := a / d
	if a%d != 0 && a < 0 {
		q--
	}
	return q
}

var (
	bigMaxInt64 = big.NewInt(math.MaxInt64)
	bigMinInt64 = big.NewInt(math.MinInt64)
)

func saturate(n *big.Int) int64 {
	switch {
	case n.Cmp(bigMaxInt64) > 0:
		return math.MaxInt64
	case n.Cmp(bigMinInt64) < 0:
		return math.MinInt64
	default:
		return n.Int64()
	}
}
