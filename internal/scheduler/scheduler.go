package scheduler

import (
	"class-seat-monitor/internal/models"
	"class-seat-monitor/internal/notifier"
	"class-seat-monitor/internal/probe"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// stopPollInterval bounds how long Stop waits for the inter-cycle sleep.
const stopPollInterval = 100 * time.Millisecond

var (
	ErrAlreadyRunning  = errors.New("scheduler is already running")
	ErrNoCourses       = errors.New("no courses to check")
	ErrInvalidInterval = errors.New("interval must be positive")
	ErrInterrupted     = errors.New("check interrupted before every course was probed")
)

// State is the scheduler's lifecycle state.
type State int32

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Config is what one run checks and how often.
type Config struct {
	Courses  []models.CourseIdentifier
	Interval time.Duration
}

// NewConfig builds a run config. Duplicate courses are dropped keeping the
// first occurrence.
func NewConfig(courses []models.CourseIdentifier, interval time.Duration) Config {
	return Config{
		Courses:  models.UniqueCourses(courses),
		Interval: interval,
	}
}

// Validate reports configuration errors that prevent a run from starting.
func (c Config) Validate() error {
	if len(c.Courses) == 0 {
		return ErrNoCourses
	}
	if c.Interval <= 0 {
		return ErrInvalidInterval
	}
	return nil
}

// Sink receives one entry per probe.
type Sink interface {
	Record(models.StatusEntry)
}

// Notifier receives a message for every available seat.
type Notifier interface {
	Notify(notifier.Message) bool
}

// Clock abstracts wall time so cycle timing can be tested.
type Clock interface {
	Now() time.Time
	Sleep(time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithCooldown suppresses repeat notifications for a course within d.
func WithCooldown(d time.Duration) Option {
	return func(s *Scheduler) { s.cooldown = d }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = log.With().Str("component", "scheduler").Logger() }
}

// Scheduler runs the poll loop: every interval it probes each course in
// order, records the outcome and raises a notification for open seats.
// Only one run is active at a time.
type Scheduler struct {
	prober   probe.Prober
	sink     Sink
	notifier Notifier
	clock    Clock
	cooldown time.Duration
	log      zerolog.Logger

	state atomic.Int32

	mu      sync.Mutex
	current *run

	// only touched by the loop goroutine
	lastNotified map[models.CourseIdentifier]time.Time
}

// New creates an idle scheduler.
func New(p probe.Prober, sink Sink, n Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		prober:   p,
		sink:     sink,
		notifier: n,
		clock:    realClock{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Running reports whether a run is active.
func (s *Scheduler) Running() bool {
	return s.State() == Running
}

// run is the bookkeeping of one active run.
type run struct {
	stop atomic.Bool
	done chan struct{}
}

// Start begins a run in the background. It returns ErrAlreadyRunning,
// ErrNoCourses or ErrInvalidInterval without changing state.
func (s *Scheduler) Start(cfg Config) error {
	r, err := s.begin(cfg)
	if err != nil {
		return err
	}
	go s.loop(context.Background(), r, s.copyConfig(cfg))
	return nil
}

// Run is the blocking form of Start. Cancelling ctx stops the run like Stop
// and also cancels the in-flight probe.
func (s *Scheduler) Run(ctx context.Context, cfg Config) error {
	r, err := s.begin(cfg)
	if err != nil {
		return err
	}
	s.loop(ctx, r, s.copyConfig(cfg))
	return nil
}

// Stop asks the active run to halt and waits for it. The probe in flight is
// allowed to finish; no cycle starts after Stop returns. Stop must not be
// called from a Prober, Sink or Notifier.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()

	if r == nil {
		return
	}
	r.stop.Store(true)
	<-r.done
}

// RunOnce probes every course once and returns the recorded entries. It
// shares the running guard with Start so it never overlaps a run. If ctx
// ends or Stop is called first, the entries recorded so far are returned
// with an error wrapping ErrInterrupted.
func (s *Scheduler) RunOnce(ctx context.Context, courses []models.CourseIdentifier) ([]models.StatusEntry, error) {
	cfg := Config{Courses: models.UniqueCourses(courses), Interval: time.Second}
	r, err := s.begin(cfg)
	if err != nil {
		return nil, err
	}
	defer s.finish(r)

	entries, completed := s.sweep(ctx, r, cfg, uuid.NewString(), 1)
	if !completed {
		if cause := ctx.Err(); cause != nil {
			return entries, fmt.Errorf("%w: %w", ErrInterrupted, cause)
		}
		return entries, ErrInterrupted
	}
	return entries, nil
}

func (s *Scheduler) begin(cfg Config) (*run, error) {
	if err := cfg.Validate(); err != nil {
		s.log.Warn().Err(err).Msg("Rejected start")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return nil, ErrAlreadyRunning
	}
	s.current = &run{done: make(chan struct{})}
	return s.current, nil
}

func (s *Scheduler) finish(r *run) {
	s.mu.Lock()
	s.current = nil
	s.state.Store(int32(Idle))
	s.mu.Unlock()
	close(r.done)
}

func (s *Scheduler) copyConfig(cfg Config) Config {
	courses := make([]models.CourseIdentifier, len(cfg.Courses))
	copy(courses, cfg.Courses)
	return Config{Courses: models.UniqueCourses(courses), Interval: cfg.Interval}
}

func (r *run) stopped(ctx context.Context) bool {
	return r.stop.Load() || ctx.Err() != nil
}

func (s *Scheduler) loop(ctx context.Context, r *run, cfg Config) {
	defer s.finish(r)

	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Logger()
	log.Info().
		Int("courses", len(cfg.Courses)).
		Dur("interval", cfg.Interval).
		Msg("Monitoring started")
	defer func() { log.Info().Msg("Monitoring stopped") }()

	for cycle := 1; ; cycle++ {
		cycleStart := s.clock.Now()

		if _, completed := s.sweep(ctx, r, cfg, runID, cycle); !completed {
			return
		}

		// anchor to the cycle start so probe latency does not add up
		next := cycleStart.Add(cfg.Interval)
		log.Debug().Int("cycle", cycle).Time("next", next).Msg("Cycle finished")
		if !s.waitUntil(ctx, r, next) {
			return
		}
	}
}

// sweep probes each course in order. It returns false if it was stopped
// before every course was probed.
func (s *Scheduler) sweep(ctx context.Context, r *run, cfg Config, runID string, cycle int) ([]models.StatusEntry, bool) {
	entries := make([]models.StatusEntry, 0, len(cfg.Courses))
	for _, course := range cfg.Courses {
		if r.stopped(ctx) {
			return entries, false
		}

		outcome := s.probe(ctx, course)
		entry := models.NewStatusEntry(s.clock.Now(), course, outcome)
		s.sink.Record(entry)
		entries = append(entries, entry)

		s.log.Info().
			Str("run_id", runID).
			Int("cycle", cycle).
			Str("course", course.String()).
			Stringer("outcome", outcome).
			Msg(entry.Message)

		if outcome.IsAvailable() {
			s.notify(course, entry)
		}
	}
	return entries, true
}

// probe isolates a single course so a crash cannot end the cycle.
func (s *Scheduler) probe(ctx context.Context, course models.CourseIdentifier) (outcome models.CheckOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("course", course.String()).Interface("panic", r).Msg("Probe panicked")
			outcome = models.IndeterminateOutcome(models.UnknownError, fmt.Sprint(r))
		}
	}()
	return s.prober.Probe(ctx, course)
}

func (s *Scheduler) notify(course models.CourseIdentifier, entry models.StatusEntry) {
	if s.lastNotified == nil {
		s.lastNotified = make(map[models.CourseIdentifier]time.Time)
	}
	if last, ok := s.lastNotified[course]; ok && s.cooldown > 0 && entry.Timestamp.Sub(last) < s.cooldown {
		s.log.Debug().Str("course", course.String()).Msg("Notification suppressed by cooldown")
		return
	}
	s.lastNotified[course] = entry.Timestamp

	s.notifier.Notify(notifier.Message{
		Title: "Seat open: " + course.String(),
		Body:  entry.Message,
	})
}

// waitUntil sleeps in short slices until t, returning false if the run was
// stopped first.
func (s *Scheduler) waitUntil(ctx context.Context, r *run, t time.Time) bool {
	for {
		if r.stopped(ctx) {
			return false
		}
		remaining := t.Sub(s.clock.Now())
		if remaining <= 0 {
			return true
		}
		s.clock.Sleep(min(remaining, stopPollInterval))
	}
}
