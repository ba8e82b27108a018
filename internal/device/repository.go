// Package device discovers brightness-controllable devices and writes new
// brightness values to them.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/brightctl/internal/brightness"
)

// ErrDeviceNotFound is returned when no device matches a lookup.
var ErrDeviceNotFound = errors.New("device not found")

// Repository enumerates devices and persists brightness values.
// Every device it returns satisfies brightness.Device.Validate.
type Repository interface {
	// List returns all devices in a stable order.
	List(ctx context.Context) ([]brightness.Device, error)

	// Get reads a single device. Returns ErrDeviceNotFound if it does not exist.
	Get(ctx context.Context, class, id string) (brightness.Device, error)

	// Write sets the brightness and returns the re-read device state.
	Write(ctx context.Context, d brightness.Device, value int64) (brightness.Device, error)
}

// Multi combines several repositories. Devices are listed in repository order
// and lookups are routed to the first repository that knows the device.
type Multi []Repository

// List returns the devices of every repository. A repository that fails is
// logged and skipped; List only fails when every repository does.
func (m Multi) List(ctx context.Context) ([]brightness.Device, error) {
	var all []brightness.Device
	var errs []error
	for _, r := range m {
		devices, err := r.List(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warn().Err(err).Msg("Skipping device repository")
			errs = append(errs, err)
			continue
		}
		all = append(all, devices...)
	}
	if len(m) > 0 && len(errs) == len(m) {
		return nil, errors.Join(errs...)
	}
	return all, nil
}

// Get asks each repository in turn.
func (m Multi) Get(ctx context.Context, class, id string) (brightness.Device, error) {
	for _, r := range m {
		d, err := r.Get(ctx, class, id)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, ErrDeviceNotFound) {
			return brightness.Device{}, err
		}
	}
	return brightness.Device{}, fmt.Errorf("%w: %s/%s", ErrDeviceNotFound, class, id)
}

// Write routes to the repository that owns the device.
func (m Multi) Write(ctx context.Context, d brightness.Device, value int64) (brightness.Device, error) {
	for _, r := range m {
		if _, err := r.Get(ctx, d.Class, d.ID); err != nil {
			if errors.Is(err, ErrDeviceNotFound) {
				continue
			}
			return brightness.Device{}, err
		}
		return r.Write(ctx, d, value)
	}
	return brightness.Device{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, d.Name())
}

// Select picks the first device matching class and id. Empty filters match
// anything, so with neither set the first device is returned.
func Select(devices []brightness.Device, class, id string) (brightness.Device, error) {
	for _, d := range devices {
		if (class == "" || d.Class == class) && (id == "" || d.ID == id) {
			return d, nil
		}
	}
	return brightness.Device{}, fmt.Errorf("%w for class %s and device name %s", ErrDeviceNotFound, quoteOrEmpty(class), quoteOrEmpty(id))
}

// Filter returns every device matching class and id.
func Filter(devices []brightness.Device, class, id string) []brightness.Device {
	var matched []brightness.Device
	for _, d := range devices {
		if (class == "" || d.Class == class) && (id == "" || d.ID == id) {
			matched = append(matched, d)
		}
	}
	return matched
}

func quoteOrEmpty(s string) string {
	if s == "" {
		return "''"
	}
	return s
}
