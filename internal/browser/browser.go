// Package browser drives a headless Chromium page through playwright-go.
package browser

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"netmigration/widcollector/helpers"
	"netmigration/widcollector/logger"
	"netmigration/widcollector/pkg/errors"
)

// ErrNoMatch is returned when none of the candidate selectors exist on the page
var ErrNoMatch = stderrors.New("no element matches")

// hides navigator.webdriver from portal scripts
const stealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

// Options configures a browser launch
type Options struct {
	Source         string
	Headless       bool
	ExecutablePath string
	Timeout        time.Duration
}

// Page is the subset of page operations collectors need. Selector arguments
// may hold a comma separated candidate list, tried in order.
type Page interface {
	Goto(ctx context.Context, url string) error
	FillFirst(ctx context.Context, selectors, value string) error
	ClickFirst(ctx context.Context, selectors string) error
	Press(ctx context.Context, selectors, key string) error
	ClickText(ctx context.Context, text string) error
	ClickRow(ctx context.Context, rowSelector string, index int, linkSelector string) error
	URL() string
	Content(ctx context.Context) (string, error)
	Close() error
}

// Launcher opens a page in a fresh browser
type Launcher interface {
	Launch(ctx context.Context, opts Options) (Page, error)
}

// ChromeArgs returns the Chromium flags used for portal sessions
func ChromeArgs(headless bool) []string {
	args := []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-gpu",
		"--window-size=1920,1080",
		"--disable-notifications",
		"--disable-popup-blocking",
		"--disable-blink-features=AutomationControlled",
	}
	if headless {
		args = append([]string{"--headless=new"}, args...)
	}
	return args
}

// PlaywrightLauncher launches Chromium through the playwright driver
type PlaywrightLauncher struct{}

// NewLauncher creates a playwright launcher
func NewLauncher() *PlaywrightLauncher {
	return &PlaywrightLauncher{}
}

func (l *PlaywrightLauncher) Launch(ctx context.Context, opts Options) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logger.ForBrowser().WithField("collector", opts.Source)

	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.NewConnection(opts.Source, "start playwright driver", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     ChromeArgs(opts.Headless),
	}
	if opts.ExecutablePath != "" {
		launch.ExecutablePath = playwright.String(opts.ExecutablePath)
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, errors.NewConnection(opts.Source, "launch chromium", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, errors.NewConnection(opts.Source, "create browser context", err)
	}
	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
		log.Warn().Err(err).Msg("Automation flag left visible")
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, errors.NewConnection(opts.Source, "open page", err)
	}
	if opts.Timeout > 0 {
		page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))
	}

	log.Debug().Bool("headless", opts.Headless).Msg("Browser launched")
	return &Session{source: opts.Source, pw: pw, browser: browser, page: page}, nil
}

// Session is an open playwright page and the browser that owns it
type Session struct {
	source  string
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page

	closeOnce sync.Once
	closeErr  error
}

var _ Page = (*Session)(nil)

func (s *Session) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	return s.wrap(err, "open "+url)
}

// first returns the first locator among the candidates that exists
func (s *Session) first(selectors string) (playwright.Locator, error) {
	for _, sel := range helpers.SplitSelectors(selectors) {
		loc := s.page.Locator(sel).First()
		n, err := loc.Count()
		if err != nil {
			return nil, s.wrap(err, "locate "+sel)
		}
		if n > 0 {
			return loc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoMatch, selectors)
}

func (s *Session) FillFirst(ctx context.Context, selectors, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc, err := s.first(selectors)
	if err != nil {
		return err
	}
	return s.wrap(loc.Fill(value), "fill "+selectors)
}

func (s *Session) ClickFirst(ctx context.Context, selectors string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc, err := s.first(selectors)
	if err != nil {
		return err
	}
	if err := loc.Click(); err != nil {
		return s.wrap(err, "click "+selectors)
	}
	return s.settle()
}

func (s *Session) Press(ctx context.Context, selectors, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc, err := s.first(selectors)
	if err != nil {
		return err
	}
	if err := loc.Press(key); err != nil {
		return s.wrap(err, "press "+key)
	}
	return s.settle()
}

func (s *Session) ClickText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := s.page.GetByText(text).First()
	n, err := loc.Count()
	if err != nil {
		return s.wrap(err, "locate "+text)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNoMatch, text)
	}
	if err := loc.Click(); err != nil {
		return s.wrap(err, "click "+text)
	}
	return s.settle()
}

// ClickRow clicks linkSelector inside the index-th row, or the row itself
// when it has no such link
func (s *Session) ClickRow(ctx context.Context, rowSelector string, index int, linkSelector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := s.page.Locator(rowSelector).Nth(index)
	target := row
	if linkSelector != "" {
		link := row.Locator(linkSelector).First()
		n, err := link.Count()
		if err != nil {
			return s.wrap(err, "locate row link")
		}
		if n > 0 {
			target = link
		}
	}
	if err := target.Click(); err != nil {
		return s.wrap(err, "open result row")
	}
	return s.settle()
}

func (s *Session) URL() string {
	return s.page.URL()
}

func (s *Session) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := s.page.Content()
	return html, s.wrap(err, "read page content")
}

// Close shuts the browser and the driver. Later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, err)
		}
		s.closeErr = stderrors.Join(errs...)
	})
	return s.closeErr
}

// settle waits for navigation triggered by the last action
func (s *Session) settle() error {
	err := s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	})
	return s.wrap(err, "wait for page")
}

// wrap maps playwright timeouts to timeout errors
func (s *Session) wrap(err error, action string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, playwright.ErrTimeout) {
		return errors.NewTimeout(s.source, action, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
