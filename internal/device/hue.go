package device

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/amimof/huego"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/brightctl/internal/brightness"
)

const (
	// HueClass is the device class of lights on a Hue bridge.
	HueClass = "hue"

	hueMaxBrightness = 254
)

// Hue exposes the lights of a Hue bridge as devices with a maximum
// brightness of 254. A light that is off has brightness 0.
// Always fetches from the bridge - no caching, as the bridge is the source of truth.
type Hue struct {
	bridge *huego.Bridge
}

// NewHue creates a repository for the bridge at address.
func NewHue(address, token string) *Hue {
	return &Hue{bridge: huego.New(address, token)}
}

// List returns all lights ordered by numeric ID.
func (h *Hue) List(ctx context.Context) ([]brightness.Device, error) {
	lights, err := h.bridge.GetLightsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hue lights: %w", err)
	}

	sort.Slice(lights, func(i, j int) bool { return lights[i].ID < lights[j].ID })

	devices := make([]brightness.Device, 0, len(lights))
	for i := range lights {
		devices = append(devices, lightToDevice(&lights[i]))
	}
	return devices, nil
}

// Get reads one light.
func (h *Hue) Get(ctx context.Context, class, id string) (brightness.Device, error) {
	light, err := h.light(ctx, class, id)
	if err != nil {
		return brightness.Device{}, err
	}
	return lightToDevice(light), nil
}

// Write sets the light's brightness; 0 turns it off.
func (h *Hue) Write(ctx context.Context, d brightness.Device, value int64) (brightness.Device, error) {
	light, err := h.light(ctx, d.Class, d.ID)
	if err != nil {
		return brightness.Device{}, err
	}

	switch {
	case value <= 0:
		log.Info().Str("light", d.ID).Msg("Turning off light")
		err = light.OffContext(ctx)
	default:
		if value > hueMaxBrightness {
			value = hueMaxBrightness
		}
		log.Info().Str("light", d.ID).Int64("bri", value).Msg("Setting light brightness")
		err = light.BriContext(ctx, uint8(value))
	}
	if err != nil {
		return brightness.Device{}, fmt.Errorf("failed to set hue light %s: %w", d.ID, err)
	}

	return h.Get(ctx, d.Class, d.ID)
}

func (h *Hue) light(ctx context.Context, class, id string) (*huego.Light, error) {
	if class != HueClass {
		return nil, fmt.Errorf("%w: %s/%s", ErrDeviceNotFound, class, id)
	}

	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrDeviceNotFound, class, id)
	}

	light, err := h.bridge.GetLightContext(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to read hue light %s: %w", id, err)
	}
	return light, nil
}

func lightToDevice(light *huego.Light) brightness.Device {
	d := brightness.Device{
		ID:    strconv.Itoa(light.ID),
		Class: HueClass,
		Max:   hueMaxBrightness,
	}
	if light.State != nil && light.State.On {
		d.Current = int64(light.State.Bri)
		if d.Current > hueMaxBrightness {
			d.Current = hueMaxBrightness
		}
	}
	return d
}
