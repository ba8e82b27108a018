package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dokzlo13/brightctl/internal/brightness"
)

// Config represents the application configuration
type Config struct {
	Sysfs    SysfsConfig    `yaml:"sysfs"`
	Hue      HueConfig      `yaml:"hue"`
	Database DatabaseConfig `yaml:"database"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Hooks    HooksConfig    `yaml:"hooks"`
	Log      LogConfig      `yaml:"log"`
	Floor    string         `yaml:"floor"` // Minimum brightness update expression, seeded from max (default: "1")
}

// SysfsConfig describes where brightness devices are discovered
type SysfsConfig struct {
	Root    string   `yaml:"root"`
	Classes []string `yaml:"classes"`
}

// HueConfig contains Hue bridge connection settings
type HueConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bridge  string `yaml:"bridge"`
	Token   string `yaml:"token"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LedgerConfig contains change history settings
type LedgerConfig struct {
	Retention *Duration `yaml:"retention"` // Entries older than this are pruned (default 720h, explicit 0 = keep forever)
}

// RetentionPeriod returns the configured retention, 0 meaning keep forever
func (l LedgerConfig) RetentionPeriod() time.Duration {
	if l.Retention == nil {
		return 0
	}
	return l.Retention.Duration()
}

// HooksConfig contains change hook settings
type HooksConfig struct {
	Script string `yaml:"script"` // Lua script defining on_change(change); empty disables hooks
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	Colors  bool   `yaml:"colors"`
	UseJSON bool   `yaml:"json"`
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{Log: LogConfig{Colors: true}}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file.
// A missing file is not an error when allowMissing is set; defaults are used instead.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	return Parse(data)
}

// Parse parses configuration from YAML bytes and applies defaults
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := expandEnvVars(string(data))

	cfg := Config{Log: LogConfig{Colors: true}}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Sysfs.Root == "" {
		c.Sysfs.Root = "/sys/class"
	}
	if len(c.Sysfs.Classes) == 0 {
		c.Sysfs.Classes = []string{"backlight", "leds"}
	}
	if c.Floor == "" {
		c.Floor = "1"
	}
	if c.Database.Path == "" {
		c.Database.Path = "/tmp/brightctl/state.sqlite"
	}
	if c.Ledger.Retention == nil {
		retention := Duration(30 * 24 * time.Hour)
		c.Ledger.Retention = &retention
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if _, err := c.FloorUpdate(); err != nil {
		return fmt.Errorf("invalid floor: %w", err)
	}
	for _, class := range c.Sysfs.Classes {
		if class == "" || strings.ContainsAny(class, `/\`) {
			return fmt.Errorf("invalid sysfs class %q", class)
		}
	}
	if c.Hue.Enabled && c.Hue.Bridge == "" {
		return fmt.Errorf("hue is enabled but hue.bridge is empty")
	}
	if c.Ledger.RetentionPeriod() < 0 {
		return fmt.Errorf("ledger retention must not be negative")
	}
	return nil
}

// FloorUpdate parses the configured floor expression
func (c *Config) FloorUpdate() (brightness.Update, error) {
	return brightness.Parse(c.Floor)
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
