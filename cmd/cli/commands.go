package main

import (
	"bufio"
	"class-seat-monitor/internal/config"
	"class-seat-monitor/internal/models"
	"class-seat-monitor/internal/monitor"
	"class-seat-monitor/internal/notifier"
	"class-seat-monitor/internal/scheduler"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli"
)

const helpMenu = `
========================================
     CLASS AVAILABILITY CHECKER
========================================

Welcome to the Class Availability Checker!
This tool checks the availability of the classes you specify at regular intervals.

Instructions:
1. Enter the course prefix, course code, and section number for each class you want to check.
   Format: PREFIX CODE SECTION, e.g., CSE 1010 001
   If checking multiple classes, separate each class with a comma.
2. Enter the check interval in seconds or minutes.
   Format: -s SECONDS or -m MINUTES, e.g., -s 30 or -m 5

The results of every check are printed as they arrive.
To stop, press Ctrl+C.
`

// console prints notifications so they are visible even without a desktop.
var console = notifier.DelivererFunc(func(title, body string) error {
	fmt.Printf("\n*** %s ***\n%s\n\n", title, body)
	return nil
})

func runAction(ctx *cli.Context) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}

	if len(cfg.Courses) == 0 {
		if err := prompt(os.Stdin, os.Stdout, cfg); err != nil {
			return cli.NewExitError(err.Error(), 2)
		}
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := monitor.New(sigCtx, cfg, nil, log, console)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("Shutdown incomplete")
		}
	}()
	m.Status.Subscribe(func(e models.StatusEntry) { fmt.Println(e.String()) })

	fmt.Printf("Checking %s every %ds. Press Ctrl+C to stop.\n",
		models.JoinCourses(cfg.Courses), cfg.Monitor.Interval)

	runCfg := scheduler.NewConfig(cfg.Courses, cfg.Monitor.IntervalDuration())
	if err := m.Scheduler.Run(sigCtx, runCfg); err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	fmt.Println("Stopped.")
	return nil
}

// prompt asks for courses and an interval the way the interactive checker
// does. An unusable interval falls back to the default.
func prompt(in io.Reader, out io.Writer, cfg *config.Config) error {
	fmt.Fprint(out, helpMenu)
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "Enter the course prefix, course code, and section number for each class, separated by commas: ")
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	courses, err := models.ParseCourseList(line)
	if err != nil {
		return err
	}
	cfg.Courses = courses

	fmt.Fprint(out, "Enter the check interval in seconds (-s) or minutes (-m): ")
	line, err = reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	seconds, err := config.ParseInterval(line)
	if err != nil {
		fmt.Fprintln(out, "Invalid check interval. Defaulting to 5 minutes.")
		seconds = config.DefaultInterval
	}
	cfg.Monitor.Interval = seconds
	return nil
}

func checkAction(ctx *cli.Context) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}
	if len(cfg.Courses) == 0 {
		return cli.NewExitError(models.ErrNoCourses.Error(), 2)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := monitor.New(sigCtx, cfg, nil, log, console)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer m.Close()

	entries, err := m.Scheduler.RunOnce(sigCtx, cfg.Courses)
	if err != nil && !errors.Is(err, scheduler.ErrInterrupted) {
		return cli.NewExitError(err.Error(), 2)
	}

	fmt.Print(checkSummary(entries, len(cfg.Courses), err))
	if err != nil {
		return cli.NewExitError("", 130)
	}
	return nil
}

// checkSummary renders the result lines of one sweep over total courses.
func checkSummary(entries []models.StatusEntry, total int, err error) string {
	var sb strings.Builder
	open := 0
	for _, e := range entries {
		sb.WriteString(e.String() + "\n")
		if e.Outcome.IsAvailable() {
			open++
		}
	}
	if err != nil {
		fmt.Fprintf(&sb, "\nInterrupted after %d of %d courses; %d open so far.\n", len(entries), total, open)
		return sb.String()
	}
	fmt.Fprintf(&sb, "\n%d of %d sections have open seats.\n", open, len(entries))
	return sb.String()
}

func notifyTestAction(ctx *cli.Context) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}

	d := monitor.Deliverers(cfg, console)
	if err := sendTest(d, log); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Printf("Test notification sent through %d channel(s).\n", len(d))
	return nil
}

func sendTest(d notifier.Multi, log zerolog.Logger) error {
	if err := d.TestConnection(); err != nil {
		log.Error().Err(err).Msg("Test notification failed")
		return fmt.Errorf("test notification failed: %w", err)
	}
	return nil
}

func coursesAction(ctx *cli.Context) error {
	cfg, _, err := setup(ctx)
	if err != nil {
		return err
	}
	if len(cfg.Courses) == 0 {
		fmt.Printf("No courses configured in %s.\n", configPath)
		fmt.Println("Add them under the courses section, for example:")
		fmt.Println(strings.TrimSpace(`
courses:
  - prefix: CSE
    code: "1010"
    section: "001"`))
		return nil
	}
	for _, c := range cfg.Courses {
		fmt.Printf("  • %s\n", c)
	}
	return nil
}
