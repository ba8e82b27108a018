package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/brightctl/internal/brightness"
)

const (
	brightnessFile    = "brightness"
	maxBrightnessFile = "max_brightness"
)

// Sysfs reads devices laid out as <root>/<class>/<id>/{brightness,max_brightness},
// the way the kernel exposes backlights and LEDs under /sys/class.
type Sysfs struct {
	root    string
	classes []string
}

// NewSysfs creates a repository rooted at root that lists the given classes.
func NewSysfs(root string, classes []string) *Sysfs {
	return &Sysfs{
		root:    root,
		classes: append([]string(nil), classes...),
	}
}

// List returns every device of every configured class. Missing class
// directories are skipped, and so are devices that cannot be read or report
// an invalid state; those only fail when addressed through Get.
func (s *Sysfs) List(ctx context.Context) ([]brightness.Device, error) {
	var devices []brightness.Device

	for _, class := range s.classes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := os.ReadDir(filepath.Join(s.root, class))
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("class", class).Msg("Device class not present")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list class %s: %w", class, err)
		}

		// ReadDir sorts by name
		for _, entry := range entries {
			d, err := s.read(class, entry.Name())
			if err != nil {
				log.Warn().Err(err).Str("class", class).Str("device", entry.Name()).Msg("Skipping unreadable device")
				continue
			}
			devices = append(devices, d)
		}
	}

	return devices, nil
}

// Get reads a single device. class must be one of the configured classes.
func (s *Sysfs) Get(ctx context.Context, class, id string) (brightness.Device, error) {
	if err := ctx.Err(); err != nil {
		return brightness.Device{}, err
	}
	if !s.hasClass(class) || !validName(id) {
		return brightness.Device{}, fmt.Errorf("%w: %s/%s", ErrDeviceNotFound, class, id)
	}
	return s.read(class, id)
}

// Write stores value in the device's brightness file and re-reads it.
func (s *Sysfs) Write(ctx context.Context, d brightness.Device, value int64) (brightness.Device, error) {
	if err := ctx.Err(); err != nil {
		return brightness.Device{}, err
	}
	if !s.hasClass(d.Class) || !validName(d.ID) {
		return brightness.Device{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, d.Name())
	}

	path := filepath.Join(s.root, d.Class, d.ID, brightnessFile)
	// The permissions only matter if the file has to be created, which never
	// happens for a real sysfs attribute.
	if err := os.WriteFile(path, []byte(strconv.FormatInt(value, 10)), 0o644); err != nil {
		return brightness.Device{}, fmt.Errorf("failed to write device %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int64("value", value).Msg("Brightness written")

	return s.read(d.Class, d.ID)
}

func (s *Sysfs) read(class, id string) (brightness.Device, error) {
	dir := filepath.Join(s.root, class, id)

	current, err := readInt(filepath.Join(dir, brightnessFile))
	if errors.Is(err, os.ErrNotExist) {
		return brightness.Device{}, fmt.Errorf("%w: %s/%s", ErrDeviceNotFound, class, id)
	}
	if err != nil {
		return brightness.Device{}, err
	}

	max, err := readInt(filepath.Join(dir, maxBrightnessFile))
	if err != nil {
		return brightness.Device{}, err
	}

	d := brightness.Device{ID: id, Class: class, Current: current, Max: max}
	if err := d.Validate(); err != nil {
		return brightness.Device{}, err
	}
	return d, nil
}

func (s *Sysfs) hasClass(class string) bool {
	for _, c := range s.classes {
		if c == class {
			return true
		}
	}
	return false
}

func readInt(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := strings.TrimRight(string(data), "\n")
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: read %q: %w", path, text, err)
	}
	return v, nil
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
