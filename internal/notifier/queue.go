package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Message is one alert for the user.
type Message struct {
	Title string
	Body  string
}

// Deliverer shows a message to the user. Delivery is best-effort.
type Deliverer interface {
	Deliver(title, body string) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(title, body string) error

func (f DelivererFunc) Deliver(title, body string) error { return f(title, body) }

// Multi delivers to every deliverer and joins their errors.
type Multi []Deliverer

func (m Multi) Deliver(title, body string) error {
	var errs []error
	for _, d := range m {
		if err := d.Deliver(title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TestTitle and TestBody make up the message sent by TestConnection.
const (
	TestTitle = "Test notification"
	TestBody  = "Notifications from Class Seat Monitor are working."
)

// connectionTester is a deliverer with its own test path.
type connectionTester interface {
	TestConnection() error
}

// TestConnection sends a test message through every deliverer, using a
// deliverer's own TestConnection when it has one, and joins the errors.
func (m Multi) TestConnection() error {
	var errs []error
	for _, d := range m {
		var err error
		if t, ok := d.(connectionTester); ok {
			err = t.TestConnection()
		} else {
			err = d.Deliver(TestTitle, TestBody)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Queue decouples callers from a slow deliverer. Notify never blocks; a
// single goroutine delivers queued messages in order, keeping at least
// spacing between two deliveries so the OS does not drop back-to-back
// toasts.
type Queue struct {
	deliverer Deliverer
	spacing   time.Duration
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	ch     chan Message
	done   chan struct{}

	quit     chan struct{}
	quitOnce sync.Once
}

// NewQueue starts the delivery goroutine. size bounds the number of pending
// messages.
func NewQueue(d Deliverer, size int, spacing time.Duration, log zerolog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	q := &Queue{
		deliverer: d,
		spacing:   spacing,
		log:       log.With().Str("component", "notifier").Logger(),
		ch:        make(chan Message, size),
		done:      make(chan struct{}),
		quit:      make(chan struct{}),
	}
	go q.run()
	return q
}

// Notify enqueues msg and returns immediately. It reports false when the
// message was dropped because the queue is full or closed.
func (q *Queue) Notify(msg Message) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.log.Warn().Str("title", msg.Title).Msg("Notifier closed, dropping notification")
		return false
	}
	select {
	case q.ch <- msg:
		return true
	default:
		q.log.Warn().Str("title", msg.Title).Int("pending", len(q.ch)).Msg("Notification queue full, dropping notification")
		return false
	}
}

// Pending returns the number of queued, undelivered messages.
func (q *Queue) Pending() int {
	return len(q.ch)
}

// Close stops accepting messages, delivers what is already queued and waits
// for the delivery goroutine to exit.
func (q *Queue) Close() {
	q.closeInput()
	<-q.done
}

// Shutdown is Close bounded by ctx. When ctx ends before the backlog is
// delivered, the remaining messages are dropped and ctx.Err is returned once
// the delivery in progress, if any, has returned.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.closeInput()
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
	}
	q.quitOnce.Do(func() { close(q.quit) })
	<-q.done
	return ctx.Err()
}

func (q *Queue) closeInput() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

func (q *Queue) run() {
	defer close(q.done)

	var last time.Time
	for msg := range q.ch {
		if !last.IsZero() {
			if wait := q.spacing - time.Since(last); wait > 0 {
				select {
				case <-time.After(wait):
				case <-q.quit:
				}
			}
		}
		select {
		case <-q.quit:
			q.log.Warn().Int("dropped", len(q.ch)+1).Msg("Shutdown deadline reached, dropping notifications")
			return
		default:
		}

		if err := q.deliverer.Deliver(msg.Title, msg.Body); err != nil {
			q.log.Error().Err(err).Str("title", msg.Title).Msg("Failed to deliver notification")
		} else {
			q.log.Info().Str("title", msg.Title).Msg("Notification delivered")
		}
		last = time.Now()
	}
}
