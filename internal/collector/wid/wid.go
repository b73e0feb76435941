// Package wid collects service records from the WID engineering portal.
//
// The portal has no API. A Collector drives a browser session: it logs in,
// opens the engineering search, looks up the service number and reads the
// labeled attribute table of the detail page.
package wid

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"netmigration/widcollector/config"
	"netmigration/widcollector/internal/browser"
	"netmigration/widcollector/internal/collector"
	"netmigration/widcollector/internal/collector/snapshot"
	"netmigration/widcollector/internal/extract"
	"netmigration/widcollector/internal/record"
	"netmigration/widcollector/logger"
	"netmigration/widcollector/pkg/errors"
)

// Name is the source-system tag of WID records
const Name = config.SourceWID

// Page selectors. Each is a candidate list tried in order.
const (
	UsernameSelector = "input[name='username'], #username, input[type='text']"
	PasswordSelector = "input[name='password'], #password, input[type='password']"
	LoginSelector    = "button[type='submit'], input[type='submit'], .login-button"
	ServiceSelector  = "input[id*='nroServicio'], input[id*='numeroEnlace']"
	SearchSelector   = "button[id*='buscar'], .ui-button-search"

	SearchLinkText = "Buscar Ingeniería"
	DetailTabText  = "Detalle"
	rowLink        = "a"
)

// Options configures a portal collector
type Options struct {
	Settings       config.SourceSettings
	Launcher       browser.Launcher
	ExecutablePath string
	Timeout        time.Duration
	Retry          collector.RetryPolicy
	// SnapshotDir enables saving detail pages under it when set
	SnapshotDir string
	Now         func() time.Time
}

// Collector is the WID portal implementation of collector.Collector
type Collector struct {
	opts Options
	log  *logger.Logger

	mu   sync.Mutex
	page browser.Page
}

var _ collector.Collector = (*Collector)(nil)

// New creates a portal collector. It does not touch the network.
func New(opts Options) *Collector {
	if opts.Launcher == nil {
		opts.Launcher = browser.NewLauncher()
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry = collector.DefaultRetryPolicy()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Collector{
		opts: opts,
		log:  logger.ForCollector(Name),
	}
}

func (c *Collector) Name() string { return Name }

// Connect opens a browser and logs in. A connected collector keeps its session.
func (c *Collector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page != nil {
		return nil
	}

	c.log.Info().Str("url", c.opts.Settings.BaseURL).Bool("headless", c.opts.Settings.Headless).Msg("Connecting")

	page, err := c.opts.Launcher.Launch(ctx, browser.Options{
		Source:         Name,
		Headless:       c.opts.Settings.Headless,
		ExecutablePath: c.opts.ExecutablePath,
		Timeout:        c.opts.Timeout,
	})
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeConnection) || ctx.Err() != nil {
			return err
		}
		return errors.NewConnection(Name, "launch browser", err)
	}

	if err := c.login(ctx, page); err != nil {
		if closeErr := page.Close(); closeErr != nil {
			c.log.Warn().Err(closeErr).Msg("Failed to close half-open session")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	c.page = page
	c.log.Info().Msg("Connected")
	return nil
}

func (c *Collector) login(ctx context.Context, page browser.Page) error {
	if err := page.Goto(ctx, c.opts.Settings.BaseURL); err != nil {
		return errors.NewConnection(Name, "open portal", err)
	}
	if err := page.FillFirst(ctx, UsernameSelector, c.opts.Settings.Username); err != nil {
		return errors.NewConnection(Name, "username input", err)
	}
	if err := page.FillFirst(ctx, PasswordSelector, c.opts.Settings.Password); err != nil {
		return errors.NewConnection(Name, "password input", err)
	}

	err := page.ClickFirst(ctx, LoginSelector)
	if stderrors.Is(err, browser.ErrNoMatch) {
		err = page.Press(ctx, PasswordSelector, "Enter")
	}
	if err != nil {
		return errors.NewConnection(Name, "submit login", err)
	}

	if strings.Contains(strings.ToLower(page.URL()), "login") {
		return errors.NewConnection(Name, "login rejected", nil)
	}
	return nil
}

// Disconnect closes the browser. It is a no-op without a session.
func (c *Collector) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page == nil {
		return nil
	}

	err := c.page.Close()
	c.page = nil
	c.log.Info().Msg("Disconnected")
	return err
}

func (c *Collector) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page != nil
}

type result struct {
	rec   *record.ServiceData
	found bool
}

// SearchByService runs the engineering search for serviceID under the retry policy
func (c *Collector) SearchByService(ctx context.Context, serviceID string) (*record.ServiceData, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page == nil {
		return nil, false, errors.NewNotConnected(Name)
	}
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return nil, false, errors.NewValidation(Name, "service id is required")
	}

	log := c.log.WithField("service_id", serviceID)
	log.Debug().Msg("Searching service")

	res, err := collector.Retry(ctx, Name, c.opts.Retry, func(ctx context.Context) (result, error) {
		return c.search(ctx, serviceID)
	})
	if err != nil {
		log.Error().Err(err).Msg("Search failed")
		return nil, false, err
	}
	if !res.found {
		log.Info().Msg("Service not found")
		return nil, false, nil
	}
	log.Info().Int("attributes", len(res.rec.RawData)).Msg("Service collected")
	return res.rec, true, nil
}

func (c *Collector) search(ctx context.Context, serviceID string) (result, error) {
	page := c.page

	// Without the menu link the page is already the search form
	if err := page.ClickText(ctx, SearchLinkText); err != nil && !stderrors.Is(err, browser.ErrNoMatch) {
		return result{}, stepError("open engineering search", err)
	}
	if err := page.FillFirst(ctx, ServiceSelector, serviceID); err != nil {
		return result{}, stepError("service number input", err)
	}
	err := page.ClickFirst(ctx, SearchSelector)
	if stderrors.Is(err, browser.ErrNoMatch) {
		err = page.Press(ctx, ServiceSelector, "Enter")
	}
	if err != nil {
		return result{}, stepError("submit search", err)
	}

	html, err := page.Content(ctx)
	if err != nil {
		return result{}, stepError("read results", err)
	}
	rows, err := extract.ResultRows(strings.NewReader(html))
	if err != nil {
		return result{}, stepError("parse results", err)
	}
	switch {
	case rows == 0:
		return result{}, nil
	case rows > 1:
		return result{}, errors.NewAmbiguous(Name, serviceID, rows)
	}

	if err := page.ClickRow(ctx, extract.ResultRowSelector, 0, rowLink); err != nil {
		return result{}, stepError("open detail", err)
	}
	if err := page.ClickText(ctx, DetailTabText); err != nil && !stderrors.Is(err, browser.ErrNoMatch) {
		return result{}, stepError("open detail tab", err)
	}

	html, err = page.Content(ctx)
	if err != nil {
		return result{}, stepError("read detail", err)
	}
	attrs, err := extract.Attributes(strings.NewReader(html))
	if err != nil {
		return result{}, stepError("parse detail", err)
	}
	if len(attrs) == 0 {
		return result{}, errors.NewExtraction(Name, "detail page has no attribute table", nil)
	}

	if c.opts.SnapshotDir != "" {
		if path, err := snapshot.Write(c.opts.SnapshotDir, Name, serviceID, []byte(html)); err != nil {
			c.log.Warn().Err(err).Str("service_id", serviceID).Msg("Snapshot not saved")
		} else {
			c.log.Debug().Str("path", path).Msg("Snapshot saved")
		}
	}

	rec, err := dictionary.Normalize(serviceID, Name, attrs, c.opts.Now().UTC())
	if err != nil {
		return result{}, err
	}
	return result{rec: &rec, found: true}, nil
}

// stepError classifies a failed page step. Typed errors and cancellation pass
// through; anything else is a retryable extraction failure.
func stepError(step string, err error) error {
	var ce *errors.CollectorError
	if stderrors.As(err, &ce) || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.NewExtraction(Name, step, err)
}

// SearchByGroup is not offered by the portal; a connected collector
// returns an empty result.
func (c *Collector) SearchByGroup(ctx context.Context, groupID string) ([]record.ServiceData, error) {
	if !c.IsConnected() {
		return nil, errors.NewNotConnected(Name)
	}
	c.log.Warn().Str("group", groupID).Msg("Group search is not available on the portal")
	return []record.ServiceData{}, nil
}
