package browser

import (
	"class-seat-monitor/internal/config"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// RodSession is the go-rod implementation of Session. It talks to Chrome over
// the DevTools protocol directly and needs no Playwright driver install.
type RodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
	log      zerolog.Logger
}

// actionTimeoutFactor matches the Playwright driver's default timeout of four
// probe timeouts for page loads and element lookups.
const actionTimeoutFactor = 4

// NewRodSession launches Chrome and opens a blank page.
func NewRodSession(ctx context.Context, cfg config.MonitorConfig, log zerolog.Logger) (*RodSession, error) {
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync")
	if cfg.BrowserPath != "" {
		l = l.Bin(cfg.BrowserPath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	s := &RodSession{
		launcher: l,
		browser:  browser,
		page:     page,
		timeout:  actionTimeoutFactor * cfg.ProbeTimeout,
		log:      log.With().Str("component", "browser").Str("driver", config.DriverRod).Logger(),
	}
	s.log.Info().Bool("headless", cfg.Headless).Msg("Browser started")
	return s, nil
}

// bounded returns the page bound to ctx and the action timeout. rod retries
// element lookups until the context ends, so every call needs a deadline.
// Callers must release it with CancelTimeout.
func (s *RodSession) bounded(ctx context.Context) *rod.Page {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = actionTimeoutFactor * config.DefaultProbeTimeout
	}
	return s.page.Context(ctx).Timeout(timeout)
}

// Navigate implements Session.
func (s *RodSession) Navigate(ctx context.Context, url string) error {
	if s.page == nil {
		return ErrClosed
	}
	p := s.bounded(ctx)
	defer p.CancelTimeout()
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("failed waiting for %s to load: %w", url, err)
	}
	return nil
}

// SubmitForm implements Session.
func (s *RodSession) SubmitForm(ctx context.Context, query string) error {
	if s.page == nil {
		return ErrClosed
	}
	p := s.bounded(ctx)
	defer p.CancelTimeout()

	field, err := p.Element(TextFieldSelector)
	if err != nil {
		return fmt.Errorf("failed to find course field: %w", err)
	}
	if err := field.Input(query); err != nil {
		return fmt.Errorf("failed to fill course field: %w", err)
	}

	submit, err := p.Element(SubmitButtonSelector)
	if err != nil {
		return fmt.Errorf("failed to find submit button: %w", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to submit course form: %w", err)
	}
	return nil
}

// WaitForAny implements Session.
func (s *RodSession) WaitForAny(ctx context.Context, selectors []string, timeout time.Duration) (string, error) {
	if s.page == nil {
		return "", ErrClosed
	}
	if len(selectors) == 0 {
		return "", errors.New("no selectors to wait for")
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var matched string
	race := s.page.Context(waitCtx).Race()
	for _, sel := range selectors {
		sel := sel
		race = race.Element(sel).Handle(func(*rod.Element) error {
			matched = sel
			return nil
		})
	}

	if _, err := race.Do(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", ErrWaitTimeout
		}
		return "", fmt.Errorf("failed waiting for page: %w", err)
	}
	return matched, nil
}

// FindScoped implements Session.
func (s *RodSession) FindScoped(ctx context.Context, selector string) (Element, error) {
	if s.page == nil {
		return nil, ErrClosed
	}
	p := s.bounded(ctx)
	defer p.CancelTimeout()

	has, el, err := p.Has(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	if !has {
		return nil, fmt.Errorf("%s: %w", selector, ErrElementNotFound)
	}
	// detach from the bounded context released on return
	return rodElement{el: el.Context(ctx)}, nil
}

// Close closes the page and browser and kills the Chrome process.
func (s *RodSession) Close() error {
	var errs []error
	if s.page != nil {
		errs = append(errs, s.page.Close())
		s.page = nil
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
	s.log.Info().Msg("Browser closed")
	return errors.Join(errs...)
}

type rodElement struct {
	el *rod.Element
}

func (e rodElement) Checked() (bool, error) {
	v, err := e.el.Property("checked")
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}

func (e rodElement) Text() (string, error) { return e.el.Text() }
func (e rodElement) HTML() (string, error) { return e.el.HTML() }
