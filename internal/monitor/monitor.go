package monitor

import (
	"class-seat-monitor/internal/browser"
	"class-seat-monitor/internal/config"
	"class-seat-monitor/internal/models"
	"class-seat-monitor/internal/notifier"
	"class-seat-monitor/internal/probe"
	"class-seat-monitor/internal/scheduler"
	"class-seat-monitor/internal/status"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// AppName labels desktop notifications and email footers.
const AppName = "Class Seat Monitor"

// Monitor wires one browser session to a scheduler, a status log and a
// notification queue. It is built right before a run and closed after it.
type Monitor struct {
	Scheduler *scheduler.Scheduler
	Status    *status.Log

	queue   *notifier.Queue
	session browser.Session
	log     zerolog.Logger
}

// Deliverers returns the notification channels enabled in cfg followed by
// extra.
func Deliverers(cfg *config.Config, extra ...notifier.Deliverer) notifier.Multi {
	var out notifier.Multi
	if cfg.Notify.Desktop {
		out = append(out, notifier.NewDesktop(AppName))
	}
	if cfg.Notify.Email.Enabled {
		out = append(out, notifier.NewEmailNotifier(cfg.Notify.Email))
	}
	return append(out, extra...)
}

// New opens the browser session and assembles the pipeline. sink may be nil,
// in which case a fresh status log sized from cfg is used.
func New(ctx context.Context, cfg *config.Config, sink *status.Log, log zerolog.Logger, extra ...notifier.Deliverer) (*Monitor, error) {
	session, err := browser.Open(ctx, cfg.Monitor, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser: %w", err)
	}
	return NewWithSession(session, cfg, sink, log, extra...), nil
}

// NewWithSession is New over an already open session. The monitor takes
// ownership of session.
func NewWithSession(session browser.Session, cfg *config.Config, sink *status.Log, log zerolog.Logger, extra ...notifier.Deliverer) *Monitor {
	if sink == nil {
		sink = status.NewLog(cfg.Status.MaxEntries)
	}
	for _, c := range cfg.Courses {
		if !models.IsFixedWidthSection(c.Section) {
			log.Warn().Str("course", c.String()).Msg("Section is not three digits; the scheduler lists sections like 001")
		}
	}

	queue := notifier.NewQueue(
		Deliverers(cfg, extra...),
		cfg.Notify.QueueSize,
		cfg.Notify.MinSpacing,
		log,
	)
	p := probe.New(session, cfg.Monitor.SchedulerURL, cfg.Monitor.ProbeTimeout, log)
	sched := scheduler.New(p, sink, queue,
		scheduler.WithLogger(log),
		scheduler.WithCooldown(cfg.Notify.Cooldown),
	)

	return &Monitor{
		Scheduler: sched,
		Status:    sink,
		queue:     queue,
		session:   session,
		log:       log,
	}
}

// Close stops any active run, flushes pending notifications and closes the
// browser session.
func (m *Monitor) Close() error {
	return m.Shutdown(context.Background())
}

// Shutdown is Close bounded by ctx. Once ctx ends it stops waiting for the
// in-flight check, drops unsent notifications and closes the browser session
// regardless.
func (m *Monitor) Shutdown(ctx context.Context) error {
	var errs []error

	stopped := make(chan struct{})
	go func() {
		m.Scheduler.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("check still in progress: %w", ctx.Err()))
	}

	if err := m.queue.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("notifications not flushed: %w", err))
	}
	if err := m.session.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
	}
	return errors.Join(errs...)
}
