package browser

import (
	"class-seat-monitor/internal/config"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// BrowserClient is the Playwright implementation of Session.
type BrowserClient struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	cfg     config.MonitorConfig
	log     zerolog.Logger
}

// NewBrowserClient creates a new browser client
func NewBrowserClient(cfg config.MonitorConfig, log zerolog.Logger) (*BrowserClient, error) {
	// Browsers are not installed automatically; install Chromium once with:
	// go run github.com/playwright-community/playwright-go/cmd/playwright@latest install chromium
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start Playwright: %w", err)
	}

	return &BrowserClient{
		pw:  pw,
		cfg: cfg,
		log: log.With().Str("component", "browser").Str("driver", config.DriverPlaywright).Logger(),
	}, nil
}

// Start launches the browser
func (b *BrowserClient) Start(headless bool) error {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--log-level=3",
		},
	}
	if b.cfg.BrowserPath != "" {
		opts.ExecutablePath = playwright.String(b.cfg.BrowserPath)
	}

	browser, err := b.pw.Chromium.Launch(opts)
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	b.browser = browser

	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create browser context: %w", err)
	}
	b.context = browserContext

	page, err := b.context.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	timeoutMS := float64((actionTimeoutFactor * b.cfg.ProbeTimeout).Milliseconds())
	page.SetDefaultTimeout(timeoutMS)
	page.SetDefaultNavigationTimeout(timeoutMS)
	b.page = page

	b.log.Info().Bool("headless", headless).Msg("Browser started")
	return nil
}

// Navigate implements Session.
func (b *BrowserClient) Navigate(ctx context.Context, url string) error {
	if err := b.ready(ctx); err != nil {
		return err
	}
	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// SubmitForm implements Session.
func (b *BrowserClient) SubmitForm(ctx context.Context, query string) error {
	if err := b.ready(ctx); err != nil {
		return err
	}

	textField := b.page.Locator(TextFieldSelector).First()
	if err := textField.Fill(query); err != nil {
		return fmt.Errorf("failed to fill course field: %w", err)
	}

	submit := b.page.Locator(SubmitButtonSelector).First()
	if err := submit.Click(); err != nil {
		b.log.Debug().Err(err).Msg("Submit click failed, pressing Enter instead")
		if err := submit.Press("Enter"); err != nil {
			return fmt.Errorf("failed to submit course form: %w", err)
		}
	}
	return nil
}

// WaitForAny implements Session.
func (b *BrowserClient) WaitForAny(ctx context.Context, selectors []string, timeout time.Duration) (string, error) {
	if err := b.ready(ctx); err != nil {
		return "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	// playwright treats a zero timeout as unbounded
	if timeout <= 0 {
		return "", ErrWaitTimeout
	}

	first := b.page.Locator(strings.Join(selectors, ", ")).First()
	err := first.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return "", ErrWaitTimeout
	}
	if err != nil {
		return "", fmt.Errorf("failed waiting for page: %w", err)
	}

	for _, sel := range selectors {
		if count, _ := b.page.Locator(sel).Count(); count > 0 {
			return sel, nil
		}
	}
	// detached again between the wait and the count
	return "", ErrWaitTimeout
}

// FindScoped implements Session.
func (b *BrowserClient) FindScoped(ctx context.Context, selector string) (Element, error) {
	if err := b.ready(ctx); err != nil {
		return nil, err
	}
	loc := b.page.Locator(selector)
	count, err := loc.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%s: %w", selector, ErrElementNotFound)
	}
	return playwrightElement{loc: loc.First()}, nil
}

func (b *BrowserClient) ready(ctx context.Context) error {
	if b.page == nil {
		return ErrClosed
	}
	return ctx.Err()
}

// Close closes the browser
func (b *BrowserClient) Close() error {
	var errs []error
	if b.page != nil {
		errs = append(errs, b.page.Close())
		b.page = nil
	}
	if b.context != nil {
		errs = append(errs, b.context.Close())
		b.context = nil
	}
	if b.browser != nil {
		errs = append(errs, b.browser.Close())
		b.browser = nil
	}
	if b.pw != nil {
		errs = append(errs, b.pw.Stop())
		b.pw = nil
	}
	b.log.Info().Msg("Browser closed")
	return errors.Join(errs...)
}

type playwrightElement struct {
	loc playwright.Locator
}

func (e playwrightElement) Checked() (bool, error) { return e.loc.IsChecked() }
func (e playwrightElement) Text() (string, error)  { return e.loc.TextContent() }
func (e playwrightElement) HTML() (string, error)  { return e.loc.InnerHTML() }
