// Package rod provides a browser-backed fetcher for results pages that need
// JavaScript rendering.
package rod

import (
	"context"
	"time"

	"github.com/fwojciec/serpdump"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// DefaultFetchTimeout is the default timeout for a single page fetch.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements serpdump.Fetcher at compile time.
var _ serpdump.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browser   *Browser
	timeout   time.Duration
	userAgent string
	stealth   bool

	browserOpts []BrowserOption
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout for a single page fetch.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the browser's User-Agent for every page.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithStealth masks common headless browser fingerprints such as
// navigator.webdriver before each navigation.
func WithStealth() Option {
	return func(f *Fetcher) {
		f.stealth = true
	}
}

// WithBrowserOptions configures the Chrome process behind the Fetcher.
func WithBrowserOptions(opts ...BrowserOption) Option {
	return func(f *Fetcher) {
		f.browserOpts = append(f.browserOpts, opts...)
	}
}

// NewFetcher creates a new Fetcher and starts Chrome.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(f)
	}

	f.browser = NewBrowser(f.browserOpts...)
	if err := f.browser.Start(); err != nil {
		return nil, err
	}

	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.browser.NewPage()
	if err != nil {
		return "", err
	}
	defer page.Close()

	if f.stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			return "", err
		}
	}
	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return "", err
		}
	}

	// Set context for all subsequent operations
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	return page.HTML()
}

// Close stops Chrome. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.browser.Close()
}

// PID returns the process ID of the Chrome launcher, or 0 once closed.
func (f *Fetcher) PID() int {
	return f.browser.PID()
}
