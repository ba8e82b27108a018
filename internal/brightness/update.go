// Package brightness implements the update-expression grammar and the
// arithmetic that resolves an update against a device's current and
// maximum brightness.
//
// Everything in this package is pure: no I/O, no globals, no logging.
package brightness

import (
	"strconv"
	"strings"
)

// Kind identifies how an Update's value is interpreted.
type Kind int

const (
	// KindDirect sets the raw value.
	KindDirect Kind = iota
	// KindDelta adds a signed raw offset to the current value.
	KindDelta
	// KindAbsolute sets the raw value from a percent of max.
	KindAbsolute
	// KindRelative adds a signed percent offset to the current percent.
	KindRelative
)

func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindDelta:
		return "delta"
	case KindAbsolute:
		return "absolute"
	case KindRelative:
		return "relative"
	default:
		return "unknown"
	}
}

// Update is a single brightness change request. The zero value is Direct(0).
type Update struct {
	Kind  Kind
	Value int64
}

// Direct returns an update that sets the raw value to v.
func Direct(v int64) Update { return Update{Kind: KindDirect, Value: v} }

// Delta returns an update that adds v raw units to the current value.
func Delta(v int64) Update { return Update{Kind: KindDelta, Value: v} }

// Absolute returns an update that sets the value to p percent of max.
func Absolute(p int64) Update { return Update{Kind: KindAbsolute, Value: p} }

// Relative returns an update that adds p percent to the current percent.
func Relative(p int64) Update { return Update{Kind: KindRelative, Value: p} }

// IsPercent reports whether the value is expressed in percent of max.
func (u Update) IsPercent() bool {
	return u.Kind == KindAbsolute || u.Kind == KindRelative
}

// IsDelta reports whether the update is relative to the current state.
func (u Update) IsDelta() bool {
	return u.Kind == KindDelta || u.Kind == KindRelative
}

// String formats the update in the grammar accepted by Parse.
func (u Update) String() string {
	var b strings.Builder

	magnitude := uint64(u.Value)
	if u.Value < 0 {
		magnitude = -magnitude
	}

	if !u.IsDelta() && u.Value < 0 {
		// Not expressible in the grammar; keep it readable anyway.
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatUint(magnitude, 10))
	if u.IsPercent() {
		b.WriteByte('%')
	}
	if u.IsDelta() {
		if u.Value < 0 {
			b.WriteByte('-')
		} else {
			b.WriteByte('+')
		}
	}
	return b.String()
}
