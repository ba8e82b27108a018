package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/dokzlo13/brightctl/internal/app"
	"github.com/dokzlo13/brightctl/internal/config"
)

const (
	flagConfig   = "config"
	flagClass    = "class"
	flagDevice   = "device"
	flagList     = "list"
	flagMachine  = "machine-readable"
	flagPretend  = "pretend"
	flagMinValue = "min-value"
	flagLogLevel = "log-level"
	flagSave     = "save"
	flagAll      = "all"
	flagLimit    = "limit"
)

func main() {
	ctx, cancel := app.SignalContext()
	defer cancel()

	if err := newCLI().RunContext(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("brightctl failed")
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:            "brightctl",
		Usage:           "read and control device brightness",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Usage:   "path to configuration file",
				EnvVars: []string{"BRIGHTCTL_CONFIG"},
				Value:   defaultConfigPath(),
			},
			&cli.StringFlag{Name: flagClass, Aliases: []string{"c"}, Usage: "device class, e.g. backlight or leds"},
			&cli.StringFlag{Name: flagDevice, Aliases: []string{"d"}, Usage: "device name"},
			&cli.BoolFlag{Name: flagList, Aliases: []string{"l"}, Usage: "list all devices"},
			&cli.BoolFlag{Name: flagMachine, Aliases: []string{"m"}, Usage: "produce machine readable output"},
			&cli.BoolFlag{Name: flagPretend, Aliases: []string{"p"}, Usage: "do not write anything, only report"},
			&cli.StringFlag{Name: flagMinValue, Aliases: []string{"n"}, Usage: "minimum brightness, e.g. 1 or 5%"},
			&cli.StringFlag{Name: flagLogLevel, Usage: "debug, info, warn or error"},
		},
		Action: withApp(info),
		Commands: []*cli.Command{
			{
				Name:    "info",
				Aliases: []string{"i"},
				Usage:   "show device information",
				Action:  withApp(info),
			},
			{
				Name:    "get",
				Aliases: []string{"g"},
				Usage:   "print the current brightness",
				Action:  withApp(get),
			},
			{
				Name:    "max",
				Aliases: []string{"m"},
				Usage:   "print the maximum brightness",
				Action:  withApp(maxBrightness),
			},
			{
				Name:      "set",
				Aliases:   []string{"s"},
				Usage:     "set the brightness",
				ArgsUsage: "<value|value+|value-|value%|value%+|value%->",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: flagSave, Usage: "save the current brightness before changing it"},
				},
				Action: withApp(set),
			},
			{
				Name:  "save",
				Usage: "save the current brightness for a later restore",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: flagAll, Aliases: []string{"a"}, Usage: "save every matching device"},
				},
				Action: withApp(save),
			},
			{
				Name:  "restore",
				Usage: "restore previously saved brightness",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: flagAll, Aliases: []string{"a"}, Usage: "restore every matching device"},
				},
				Action: withApp(restore),
			},
			{
				Name:   "saved",
				Usage:  "list saved brightness snapshots",
				Action: withApp(saved),
			},
			{
				Name:  "forget",
				Usage: "drop saved brightness",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: flagAll, Aliases: []string{"a"}, Usage: "drop every snapshot of the class, or all of them without --class"},
				},
				Action: withApp(forget),
			},
			{
				Name:  "history",
				Usage: "show recent brightness changes",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagLimit, Value: 20, Usage: "number of entries to show"},
				},
				Action: withApp(history),
			},
		},
	}
}

// withApp loads configuration, sets up logging and hands a ready App to fn.
func withApp(fn func(c *cli.Context, a *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		configPath := c.String(flagConfig)
		cfg, err := config.Load(configPath, !c.IsSet(flagConfig))
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if c.IsSet(flagMinValue) {
			cfg.Floor = c.String(flagMinValue)
		}
		if c.IsSet(flagLogLevel) {
			cfg.Log.Level = c.String(flagLogLevel)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		setupLogging(cfg.Log.Level, cfg.Log.UseJSON, cfg.Log.Colors)
		log.Debug().Str("config", configPath).Str("floor", cfg.Floor).Msg("Configuration loaded")

		application, err := app.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		defer application.Close()

		return fn(c, application)
	}
}

func target(c *cli.Context) app.Target {
	return app.Target{Class: c.String(flagClass), Device: c.String(flagDevice)}
}

func info(c *cli.Context, a *app.App) error {
	machine := c.Bool(flagMachine)

	if c.Bool(flagList) {
		devices, err := a.List(c.Context)
		if err != nil {
			return err
		}
		app.WriteDevices(c.App.Writer, devices, machine)
		return nil
	}

	d, err := a.Find(c.Context, target(c))
	if err != nil {
		return err
	}
	app.WriteDevice(c.App.Writer, d, machine)
	return nil
}

func get(c *cli.Context, a *app.App) error {
	d, err := a.Find(c.Context, target(c))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, d.Current)
	return nil
}

func maxBrightness(c *cli.Context, a *app.App) error {
	d, err := a.Find(c.Context, target(c))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, d.Max)
	return nil
}

func set(c *cli.Context, a *app.App) error {
	if c.NArg() != 1 {
		return fmt.Errorf("set expects exactly one value, got %d", c.NArg())
	}

	res, err := a.Set(c.Context, target(c), c.Args().First(), app.SetOptions{
		Pretend: c.Bool(flagPretend),
		Save:    c.Bool(flagSave),
	})
	if err != nil {
		return err
	}
	app.WriteResult(c.App.Writer, res, c.Bool(flagMachine))
	return nil
}

func save(c *cli.Context, a *app.App) error {
	if c.Bool(flagPretend) {
		log.Info().Msg("Pretend mode, nothing saved")
		return nil
	}

	devices, err := a.Save(c.Context, target(c), c.Bool(flagAll))
	if err != nil {
		return err
	}
	for _, d := range devices {
		log.Info().Str("class", d.Class).Str("device", d.ID).Int64("value", d.Current).Msg("Saved brightness")
	}
	return nil
}

func restore(c *cli.Context, a *app.App) error {
	results, err := a.Restore(c.Context, target(c), c.Bool(flagAll), c.Bool(flagPretend))
	for _, res := range results {
		app.WriteResult(c.App.Writer, res, c.Bool(flagMachine))
	}
	return err
}

func saved(c *cli.Context, a *app.App) error {
	snapshots, err := a.Saved(target(c))
	if err != nil {
		return err
	}
	app.WriteSaved(c.App.Writer, snapshots, c.Bool(flagMachine))
	return nil
}

func forget(c *cli.Context, a *app.App) error {
	if c.Bool(flagPretend) {
		log.Info().Msg("Pretend mode, nothing forgotten")
		return nil
	}
	return a.Forget(c.Context, target(c), c.Bool(flagAll))
}

func history(c *cli.Context, a *app.App) error {
	changes, err := a.History(target(c), c.Int(flagLimit))
	if err != nil {
		return err
	}
	app.WriteHistory(c.App.Writer, changes, c.Bool(flagMachine))
	return nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "brightctl.yaml"
	}
	return filepath.Join(dir, "brightctl", "config.yaml")
}

func setupLogging(level string, useJSON bool, colors bool) {
	// ISO 8601 format with timezone
	zerolog.TimeFieldFormat = time.RFC3339

	if useJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
			NoColor:    !colors,
		})
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}
