package browser

import (
	"context"
	"fmt"
	"sync"

	"slotscout/internal/logger"
	"slotscout/internal/telemetry"

	"github.com/playwright-community/playwright-go"
)

// Session is a single leased browser with one open page. Closing it tears
// down the underlying browser and returns the lease to the pool. Close is
// safe to call more than once; the lease is released exactly once.
type Session interface {
	Page() playwright.Page
	Close() error
}

// Factory creates a fresh browser session. Each acquisition gets its own
// browser process so a crashed or wedged page never leaks into later jobs.
type Factory func(ctx context.Context) (Session, error)

type Pool struct {
	sem     chan struct{}
	factory Factory
	log     *logger.Logger
}

func NewPool(size int, factory Factory) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		sem:     make(chan struct{}, size),
		factory: factory,
		log:     logger.New("BrowserPool"),
	}
}

// Acquire blocks until a lease is free, then launches a fresh session.
// A launch failure releases the lease before returning.
func (p *Pool) Acquire(ctx context.Context) (Session, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	telemetry.BrowserLeasesInUse.Set(float64(len(p.sem)))

	sess, err := p.factory(ctx)
	if err != nil {
		<-p.sem
		telemetry.BrowserLeasesInUse.Set(float64(len(p.sem)))
		p.log.LogErrorf("browser launch failed: %v", err)
		return nil, fmt.Errorf("browser launch: %w", err)
	}
	return &leasedSession{inner: sess, release: func() {
		<-p.sem
		telemetry.BrowserLeasesInUse.Set(float64(len(p.sem)))
	}}, nil
}

// Available reports how many leases are currently free.
func (p *Pool) Available() int { return cap(p.sem) - len(p.sem) }

// InUse reports how many leases are currently held.
func (p *Pool) InUse() int { return len(p.sem) }

type leasedSession struct {
	inner   Session
	release func()
	once    sync.Once
	closeMu sync.Mutex
	err     error
}

func (l *leasedSession) Page() playwright.Page { return l.inner.Page() }

func (l *leasedSession) Close() error {
	l.closeMu.Lock()
	defer l.closeMu.Unlock()
	l.once.Do(func() {
		l.err = l.inner.Close()
		l.release()
	})
	return l.err
}

// LaunchOptions configures the default playwright-backed factory.
type LaunchOptions struct {
	ExecutablePath string
}

// NewFactory returns a Factory backed by headless Chromium. Each session
// runs its own playwright driver and browser process.
func NewFactory(opts LaunchOptions) Factory {
	return func(ctx context.Context) (Session, error) {
		pw, err := playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("playwright run: %w", err)
		}
		launch := playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(true),
			Args: []string{
				"--no-sandbox",
				"--disable-gpu",
				"--disable-dev-shm-usage",
				"--disable-blink-features=AutomationControlled",
				"--no-first-run",
				"--disable-default-apps",
				"--disable-extensions",
			},
		}
		if opts.ExecutablePath != "" {
			launch.ExecutablePath = playwright.String(opts.ExecutablePath)
		}
		browser, err := pw.Chromium.Launch(launch)
		if err != nil {
			_ = pw.Stop()
			return nil, fmt.Errorf("launch chromium: %w", err)
		}
		bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
			UserAgent: playwright.String("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		})
		if err != nil {
			_ = browser.Close()
			_ = pw.Stop()
			return nil, fmt.Errorf("new context: %w", err)
		}
		page, err := bctx.NewPage()
		if err != nil {
			_ = bctx.Close()
			_ = browser.Close()
			_ = pw.Stop()
			return nil, fmt.Errorf("new page: %w", err)
		}
		return &playwrightSession{pw: pw, browser: browser, bctx: bctx, page: page}, nil
	}
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
}

func (s *playwrightSession) Page() playwright.Page { return s.page }

func (s *playwrightSession) Close() error {
	var firstErr error
	if err := s.bctx.Close(); err != nil {
		firstErr = err
	}
	if err := s.browser.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.pw.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
