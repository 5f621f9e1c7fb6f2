package main

import (
	"class-seat-monitor/internal/config"
	"class-seat-monitor/internal/logger"
	"class-seat-monitor/internal/models"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

var version = "dev"

var (
	configPath string
	interval   string
	driver     string

	runFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "config",
			Usage:       "config file path (searched for when empty)",
			Destination: &configPath,
		},
		cli.StringSliceFlag{
			Name:  "course, c",
			Usage: `course to watch as "PREFIX CODE SECTION"; repeat or comma-separate for more`,
		},
		cli.StringFlag{
			Name:        "interval, i",
			Usage:       "check interval as -s SECONDS, -m MINUTES or SECONDS",
			Destination: &interval,
		},
		cli.BoolTFlag{
			Name:  "headless",
			Usage: "hide the browser window (default: true)",
		},
		cli.StringFlag{
			Name:        "driver",
			Usage:       "browser automation driver: playwright or rod",
			Destination: &driver,
		},
	}
)

func main() {
	app := cli.App{
		Name:      "class-seat-monitor",
		HelpName:  "class-seat-monitor",
		Usage:     "watch course sections for open seats",
		UsageText: "class-seat-monitor [command] [arguments...]",
		Version:   version,
		Flags:     runFlags,
		Action:    runAction,
		Commands: []cli.Command{
			{
				Name:   "run",
				Usage:  "check the courses every interval until interrupted",
				Flags:  runFlags,
				Action: runAction,
			},
			{
				Name:   "check",
				Usage:  "check every course once and exit",
				Flags:  runFlags,
				Action: checkAction,
			},
			{
				Name:   "notify-test",
				Usage:  "send a test notification through every enabled channel",
				Flags:  runFlags,
				Action: notifyTestAction,
			},
			{
				Name:   "courses",
				Usage:  "list the configured courses",
				Flags:  runFlags,
				Action: coursesAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration, applies command line overrides and builds
// the logger.
func setup(ctx *cli.Context) (*config.Config, zerolog.Logger, error) {
	fs := afero.NewOsFs()
	if configPath == "" {
		configPath = config.GetConfigPath(fs)
	}

	cfg, err := config.LoadOrDefault(fs, configPath)
	if err != nil {
		return nil, zerolog.Nop(), cli.NewExitError(fmt.Sprintf("failed to load config %s: %v", configPath, err), 1)
	}

	if err := applyFlags(ctx, cfg); err != nil {
		return nil, zerolog.Nop(), cli.NewExitError(err.Error(), 2)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, zerolog.Nop(), cli.NewExitError(err.Error(), 1)
	}
	log.Debug().Str("config", configPath).Msg("Configuration loaded")
	return cfg, log, nil
}

func applyFlags(ctx *cli.Context, cfg *config.Config) error {
	if values := ctx.StringSlice("course"); len(values) > 0 {
		courses, err := models.ParseCourseList(strings.Join(values, ","))
		if err != nil {
			return err
		}
		cfg.Courses = courses
	}
	if interval != "" {
		seconds, err := config.ParseInterval(interval)
		if err != nil {
			return err
		}
		cfg.Monitor.Interval = seconds
	}
	if ctx.IsSet("headless") {
		cfg.Monitor.Headless = ctx.BoolT("headless")
	}
	if driver != "" {
		cfg.Monitor.Driver = driver
	}
	return config.Validate(cfg)
}
