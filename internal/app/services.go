package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/brightctl/internal/config"
	"github.com/dokzlo13/brightctl/internal/db"
	"github.com/dokzlo13/brightctl/internal/device"
	"github.com/dokzlo13/brightctl/internal/hooks"
	"github.com/dokzlo13/brightctl/internal/ledger"
	"github.com/dokzlo13/brightctl/internal/storage"
)

// Services is a container for everything the controller depends on.
// It manages initialization order and owns the resources that need closing.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB     *db.DB
	Ledger *ledger.Ledger
	Store  *storage.Store

	// Device access
	Devices device.Repository

	// Optional Lua hook script, nil when not configured
	Hooks *hooks.Runner
}

// NewServices creates all services from configuration.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	// Initialize database
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	s.DB = database

	s.Ledger = ledger.New(database.DB)
	s.Store = storage.NewStore(database.DB)

	// Sysfs devices first so an unqualified selection picks the backlight
	repos := device.Multi{device.NewSysfs(cfg.Sysfs.Root, cfg.Sysfs.Classes)}
	if cfg.Hue.Enabled {
		log.Debug().Str("bridge", cfg.Hue.Bridge).Msg("Hue bridge enabled")
		repos = append(repos, device.NewHue(cfg.Hue.Bridge, cfg.Hue.Token))
	}
	s.Devices = repos

	if cfg.Hooks.Script != "" {
		s.Hooks, err = hooks.Load(cfg.Hooks.Script)
		if err != nil {
			s.Close()
			return nil, err
		}
		if !s.Hooks.HasOnChange() {
			log.Warn().Str("script", cfg.Hooks.Script).Msg("Hook script defines no on_change function")
		}
	}

	if retention := cfg.Ledger.RetentionPeriod(); retention > 0 {
		if n, err := s.Ledger.DeleteOlderThan(retention); err != nil {
			log.Warn().Err(err).Msg("Failed to prune change ledger")
		} else if n > 0 {
			log.Debug().Int64("deleted", n).Msg("Pruned change ledger")
		}
	}

	return s, nil
}

// Close releases the database and the Lua VM.
func (s *Services) Close() error {
	if s.Hooks != nil {
		s.Hooks.Close()
	}
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}
