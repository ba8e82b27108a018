package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/brightctl/internal/brightness"
	"github.com/dokzlo13/brightctl/internal/config"
	"github.com/dokzlo13/brightctl/internal/device"
	"github.com/dokzlo13/brightctl/internal/ledger"
	"github.com/dokzlo13/brightctl/internal/storage"
)

// ErrNothingSaved is returned by Restore when none of the selected devices
// has a saved brightness.
var ErrNothingSaved = errors.New("no saved brightness")

// Target selects devices by class and id. Empty fields match anything.
type Target struct {
	Class  string
	Device string
}

// SetOptions controls how a change is applied.
type SetOptions struct {
	Pretend bool // compute and report only, never write
	Save    bool // save the current brightness before changing it
}

// App is the brightness controller: it resolves targets against the device
// repository, runs the computation engine and records what happened.
type App struct {
	services *Services
	floor    brightness.Update
}

// New creates an App with all services initialized from cfg.
func New(cfg *config.Config) (*App, error) {
	floor, err := cfg.FloorUpdate()
	if err != nil {
		return nil, fmt.Errorf("invalid floor: %w", err)
	}

	services, err := NewServices(cfg)
	if err != nil {
		return nil, err
	}

	return NewWithServices(services, floor), nil
}

// NewWithServices creates an App from already constructed services.
func NewWithServices(services *Services, floor brightness.Update) *App {
	return &App{services: services, floor: floor}
}

// Close releases all services.
func (a *App) Close() error {
	return a.services.Close()
}

// List returns every known device.
func (a *App) List(ctx context.Context) ([]brightness.Device, error) {
	return a.services.Devices.List(ctx)
}

// Find returns the first device matching t. A fully qualified target is
// read directly, so unrelated devices cannot get in the way.
func (a *App) Find(ctx context.Context, t Target) (brightness.Device, error) {
	if t.Class != "" && t.Device != "" {
		return a.services.Devices.Get(ctx, t.Class, t.Device)
	}

	devices, err := a.List(ctx)
	if err != nil {
		return brightness.Device{}, err
	}
	return device.Select(devices, t.Class, t.Device)
}

// Set parses expr and applies it to the device selected by t.
// A malformed expression is rejected before any device is read or written.
// The returned Result is meaningful even when err is non-nil after a
// failed write.
func (a *App) Set(ctx context.Context, t Target, expr string, opts SetOptions) (brightness.Result, error) {
	u, err := brightness.Parse(expr)
	if err != nil {
		return brightness.Result{}, err
	}

	d, err := a.Find(ctx, t)
	if err != nil {
		return brightness.Result{}, err
	}

	if opts.Save && !opts.Pretend {
		if err := a.services.Store.Save(d); err != nil {
			return brightness.Result{}, fmt.Errorf("failed to save %s: %w", d.Name(), err)
		}
	}

	res := a.apply(ctx, ledger.SourceSet, d, u, opts.Pretend)
	return res, res.Err
}

// Save records the current brightness of the selected devices.
// With all unset only the first match is saved.
func (a *App) Save(ctx context.Context, t Target, all bool) ([]brightness.Device, error) {
	devices, err := a.selectDevices(ctx, t, all)
	if err != nil {
		return nil, err
	}

	for _, d := range devices {
		if err := a.services.Store.Save(d); err != nil {
			return nil, fmt.Errorf("failed to save %s: %w", d.Name(), err)
		}
	}
	return devices, nil
}

// Restore re-applies saved brightness to the selected devices. Devices
// without a saved value are skipped. The floor still applies.
func (a *App) Restore(ctx context.Context, t Target, all, pretend bool) ([]brightness.Result, error) {
	devices, err := a.selectDevices(ctx, t, all)
	if err != nil {
		return nil, err
	}

	var results []brightness.Result
	var errs []error
	for _, d := range devices {
		saved, ok, err := a.services.Store.Load(d.Class, d.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to load saved brightness of %s: %w", d.Name(), err))
			continue
		}
		if !ok {
			log.Warn().Str("class", d.Class).Str("device", d.ID).Msg("No saved brightness, skipping")
			continue
		}

		res := a.apply(ctx, ledger.SourceRestore, d, brightness.Direct(saved.Value), pretend)
		results = append(results, res)
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}

	if len(results) == 0 && len(errs) == 0 {
		return nil, fmt.Errorf("%w for class %s and device name %s", ErrNothingSaved, orAny(t.Class), orAny(t.Device))
	}
	return results, errors.Join(errs...)
}

// Saved returns the stored snapshots matching t, ordered by class and id.
func (a *App) Saved(t Target) ([]storage.Saved, error) {
	all, err := a.services.Store.List()
	if err != nil {
		return nil, err
	}

	var matched []storage.Saved
	for _, s := range all {
		if (t.Class == "" || s.Class == t.Class) && (t.Device == "" || s.ID == t.Device) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

// Forget drops saved snapshots. With all set every snapshot of t.Class is
// removed (every snapshot when the class is empty); otherwise only the one
// of the selected device.
func (a *App) Forget(ctx context.Context, t Target, all bool) error {
	if all && t.Device == "" {
		return a.services.Store.Clear(t.Class)
	}

	class, id := t.Class, t.Device
	if class == "" || id == "" {
		d, err := a.Find(ctx, t)
		if err != nil {
			return err
		}
		class, id = d.Class, d.ID
	}
	return a.services.Store.Delete(class, id)
}

// History returns the most recent changes, newest first.
// With a non-empty target only that device's changes are returned.
func (a *App) History(t Target, limit int) ([]*ledger.Change, error) {
	if t.Class != "" && t.Device != "" {
		return a.services.Ledger.ForDevice(t.Class, t.Device, limit)
	}
	return a.services.Ledger.Recent(limit)
}

func orAny(s string) string {
	if s == "" {
		return "''"
	}
	return s
}

func (a *App) selectDevices(ctx context.Context, t Target, all bool) ([]brightness.Device, error) {
	if !all || (t.Class != "" && t.Device != "") {
		d, err := a.Find(ctx, t)
		if err != nil {
			return nil, err
		}
		return []brightness.Device{d}, nil
	}

	devices, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	return device.Filter(devices, t.Class, t.Device), nil
}

// apply runs one plan, records it in the ledger and fires hooks.
// Ledger and hook failures are logged and never change the outcome.
func (a *App) apply(ctx context.Context, source ledger.Source, d brightness.Device, u brightness.Update, pretend bool) brightness.Result {
	plan := brightness.NewPlan(d, u, a.floor)

	log.Debug().
		Str("class", d.Class).
		Str("device", d.ID).
		Str("update", u.String()).
		Int64("current", d.Current).
		Int64("target", plan.Target).
		Int64("minimum", plan.Minimum).
		Int64("value", plan.Value).
		Bool("changed", plan.Changed()).
		Bool("pretend", pretend).
		Msg("Computed brightness")

	res := brightness.Apply(ctx, a.services.Devices, plan, pretend)
	if res.Err != nil {
		log.Error().Err(res.Err).Int64("value", plan.Value).Msg("Failed to apply brightness")
	}

	change := ledger.FromResult(source, res)
	if err := a.services.Ledger.Append(&change); err != nil {
		log.Warn().Err(err).Msg("Failed to record change")
	}

	if res.Outcome == brightness.OutcomeApplied && a.services.Hooks != nil {
		if err := a.services.Hooks.OnChange(ctx, change); err != nil {
			log.Warn().Err(err).Msg("Change hook failed")
		}
	}

	return res
}
