package browser

import (
	"class-seat-monitor/internal/config"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrWaitTimeout is returned by WaitForAny when no selector appeared in time.
	ErrWaitTimeout = errors.New("timed out waiting for page")
	// ErrElementNotFound is returned by FindScoped when nothing matches.
	ErrElementNotFound = errors.New("element not found")
	// ErrClosed is returned once a session has been closed.
	ErrClosed = errors.New("browser session closed")
)

// Session drives one browser page. Implementations are not safe for
// concurrent use; callers must serialize access.
type Session interface {
	// Navigate loads url and waits for the DOM.
	Navigate(ctx context.Context, url string) error
	// SubmitForm types query into the scheduler's text field and submits it.
	SubmitForm(ctx context.Context, query string) error
	// WaitForAny blocks until one of selectors is attached to the page and
	// returns it, or returns ErrWaitTimeout after timeout.
	WaitForAny(ctx context.Context, selectors []string, timeout time.Duration) (string, error)
	// FindScoped returns the first element matching selector, or
	// ErrElementNotFound.
	FindScoped(ctx context.Context, selector string) (Element, error)
	Close() error
}

// Element is a handle to one DOM node.
type Element interface {
	Checked() (bool, error)
	Text() (string, error)
	HTML() (string, error)
}

// Scheduler page selectors.
const (
	TextFieldSelector    = ".form-control"
	SubmitButtonSelector = ".msoe-submit-button"
	CheckboxSelector     = ".fs-checkbox-element"
	ErrorSelector        = ".flash-error"
)

// Open launches the driver named in cfg and returns a ready session.
func Open(ctx context.Context, cfg config.MonitorConfig, log zerolog.Logger) (Session, error) {
	switch cfg.Driver {
	case config.DriverRod:
		return NewRodSession(ctx, cfg, log)
	case config.DriverPlaywright, "":
		client, err := NewBrowserClient(cfg, log)
		if err != nil {
			return nil, err
		}
		if err := client.Start(cfg.Headless); err != nil {
			client.Close()
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown browser driver %q", cfg.Driver)
	}
}
