package brightness

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidDevice is returned by Device.Validate for states the engine
// cannot compute against.
var ErrInvalidDevice = errors.New("invalid device state")

// Device is a snapshot of one brightness-controllable device.
// Invariant: Max > 0 and 0 <= Current <= Max.
type Device struct {
	ID      string `json:"id"`
	Class   string `json:"class"`
	Current int64  `json:"current"`
	Max     int64  `json:"max"`
}

// Validate checks the device invariant.
func (d Device) Validate() error {
	if d.Max <= 0 {
		return fmt.Errorf("%w: %s has max brightness %d", ErrInvalidDevice, d.Name(), d.Max)
	}
	if d.Current < 0 || d.Current > d.Max {
		return fmt.Errorf("%w: %s has brightness %d outside [0, %d]", ErrInvalidDevice, d.Name(), d.Current, d.Max)
	}
	return nil
}

// Name returns "class/id".
func (d Device) Name() string {
	return d.Class + "/" + d.ID
}

// Percent returns the current brightness as a rounded percent of max.
func (d Device) Percent() int64 {
	return ValueToPercent(d.Current, d.Max)
}

// ComputeTarget resolves u against the device's current brightness and
// clamps the result to [0, d.Max].
func ComputeTarget(d Device, u Update) int64 {
	return clamp(resolve(d.Current, d.Max, u), d.Max)
}

// ComputeFloor resolves floor the same way as ComputeTarget but seeded from
// d.Max, giving the minimum brightness allowed for the device.
func ComputeFloor(d Device, floor Update) int64 {
	return clamp(resolve(d.Max, d.Max, floor), d.Max)
}

func resolve(seed, max int64, u Update) int64 {
	switch u.Kind {
	case KindDelta:
		return addSat(seed, u.Value)
	case KindDirect:
		return u.Value
	case KindRelative:
		return PercentToValue(addSat(ValueToPercent(seed, max), u.Value), max)
	case KindAbsolute:
		return PercentToValue(u.Value, max)
	default:
		panic(fmt.Sprintf("brightness: unknown update kind %d", u.Kind))
	}
}

func clamp(v, max int64) int64 {
	if v > max {
		return max
	}
	if v < 0 {
		return 0
	}
	return v
}

// Plan is a fully computed brightness change for one device.
type Plan struct {
	Device  Device
	Update  Update
	Floor   Update
	Target  int64 // ComputeTarget(Device, Update)
	Minimum int64 // ComputeFloor(Device, Floor)
	Value   int64 // max(Target, Minimum), the value to persist
}

// NewPlan computes the value that applying u to d would persist.
func NewPlan(d Device, u, floor Update) Plan {
	p := Plan{
		Device:  d,
		Update:  u,
		Floor:   floor,
		Target:  ComputeTarget(d, u),
		Minimum: ComputeFloor(d, floor),
	}
	p.Value = p.Target
	if p.Minimum > p.Value {
		p.Value = p.Minimum
	}
	return p
}

// Changed reports whether the plan moves the device off its current value.
func (p Plan) Changed() bool {
	return p.Value != p.Device.Current
}

// Outcome is the result category of executing a Plan.
type Outcome int

const (
	// OutcomeApplied means the value was persisted and the device re-read.
	OutcomeApplied Outcome = iota
	// OutcomePretended means the value was computed but never written.
	OutcomePretended
	// OutcomeFailed means the write was attempted and failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomePretended:
		return "pretended"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Writer persists a brightness value and returns the authoritative state
// of the device afterwards.
type Writer interface {
	Write(ctx context.Context, d Device, value int64) (Device, error)
}

// Result describes what happened to a Plan.
// Device holds the re-read state for OutcomeApplied and the original
// snapshot otherwise; Plan.Value is always kept for diagnostics.
type Result struct {
	Plan    Plan
	Outcome Outcome
	Device  Device
	Err     error
}

// Apply executes p. With pretend set, w is never called.
func Apply(ctx context.Context, w Writer, p Plan, pretend bool) Result {
	if pretend {
		return Result{Plan: p, Outcome: OutcomePretended, Device: p.Device}
	}

	updated, err := w.Write(ctx, p.Device, p.Value)
	if err != nil {
		return Result{
			Plan:    p,
			Outcome: OutcomeFailed,
			Device:  p.Device,
			Err:     fmt.Errorf("failed to set %s to %d: %w", p.Device.Name(), p.Value, err),
		}
	}

	return Result{Plan: p, Outcome: OutcomeApplied, Device: updated}
}
