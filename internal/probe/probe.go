package probe

import (
	"class-seat-monitor/internal/browser"
	"class-seat-monitor/internal/models"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Prober checks one course. Every call returns exactly one outcome.
type Prober interface {
	Probe(ctx context.Context, course models.CourseIdentifier) models.CheckOutcome
}

// Probe checks seat availability on the scheduler page through a browser
// session. The session is owned by the caller; Probe only borrows it and
// serializes every call on it.
type Probe struct {
	mu      sync.Mutex
	session browser.Session
	url     string
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a probe against the scheduler at url. timeout bounds the wait
// for the results page.
func New(session browser.Session, url string, timeout time.Duration, log zerolog.Logger) *Probe {
	return &Probe{
		session: session,
		url:     url,
		timeout: timeout,
		log:     log.With().Str("component", "probe").Logger(),
	}
}

// Probe implements Prober. Automation failures and panics are folded into
// indeterminate outcomes instead of being returned.
func (p *Probe) Probe(ctx context.Context, course models.CourseIdentifier) (outcome models.CheckOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			outcome = models.IndeterminateOutcome(models.UnknownError, fmt.Sprint(r))
		}
		p.log.Debug().
			Str("course", course.String()).
			Stringer("outcome", outcome).
			Dur("took", time.Since(start)).
			Msg("Probe finished")
	}()

	return p.check(ctx, course)
}

func (p *Probe) check(ctx context.Context, course models.CourseIdentifier) models.CheckOutcome {
	if err := p.session.Navigate(ctx, p.url); err != nil {
		return classify(err)
	}
	if err := p.session.SubmitForm(ctx, course.String()); err != nil {
		return classify(err)
	}

	matched, err := p.session.WaitForAny(ctx, []string{browser.CheckboxSelector, browser.ErrorSelector}, p.timeout)
	if err != nil {
		return classify(err)
	}

	if matched == browser.ErrorSelector {
		return p.classifyError(ctx, course)
	}

	checkbox, err := p.session.FindScoped(ctx, checkboxSelector(course))
	if err != nil {
		return classify(err)
	}
	checked, err := checkbox.Checked()
	if err != nil {
		return classify(err)
	}
	if checked {
		return models.AvailableOutcome()
	}
	return models.UnavailableOutcome()
}

// classifyError inspects the scheduler's error container.
func (p *Probe) classifyError(ctx context.Context, course models.CourseIdentifier) models.CheckOutcome {
	container, err := p.session.FindScoped(ctx, browser.ErrorSelector)
	if err != nil {
		return classify(err)
	}
	text, err := container.Text()
	if err != nil {
		return classify(err)
	}
	text = CleanText(text)

	fragment, err := container.HTML()
	if err != nil {
		return classify(err)
	}
	listed, err := ListsCourse(fragment, course)
	if err != nil {
		p.log.Warn().Err(err).Str("course", course.String()).Msg("Could not parse error message")
		return models.IndeterminateOutcome(models.TransientError, text)
	}
	if listed {
		return models.IndeterminateOutcome(models.NotOffered, text)
	}
	return models.IndeterminateOutcome(models.TransientError, text)
}

// classify maps automation errors onto indeterminate reasons.
func classify(err error) models.CheckOutcome {
	switch {
	case errors.Is(err, browser.ErrWaitTimeout), errors.Is(err, context.DeadlineExceeded):
		return models.IndeterminateOutcome(models.Timeout, "")
	case errors.Is(err, browser.ErrElementNotFound):
		return models.IndeterminateOutcome(models.ElementNotFound, "")
	default:
		return models.IndeterminateOutcome(models.UnknownError, err.Error())
	}
}

func checkboxSelector(course models.CourseIdentifier) string {
	return fmt.Sprintf("input[name=%q]", course.CheckboxName())
}
