package rod

import (
	"fmt"
	"sync"

	"github.com/fwojciec/serpdump"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRelaunchAfter is how many pages a Chrome process serves before it
// is replaced. Long-running servers otherwise see Chrome memory grow
// without bound.
const DefaultRelaunchAfter = 75

// DefaultLanguage is the browser UI language. It selects the results page
// locale when the search URL does not set hl.
const DefaultLanguage = "en-US"

// Browser owns a single Chrome process. The process is started on first use
// and replaced after a number of pages.
//
// Browser is safe for concurrent use.
type Browser struct {
	bin           string
	headful       bool
	lang          string
	relaunchAfter int

	mu     sync.Mutex
	conn   *rod.Browser
	proc   *launcher.Launcher
	served int
	closed bool
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithBin launches the Chrome or Chromium binary at path instead of the one
// rod finds or downloads.
func WithBin(path string) BrowserOption {
	return func(b *Browser) {
		b.bin = path
	}
}

// WithHeadful shows the browser window.
func WithHeadful() BrowserOption {
	return func(b *Browser) {
		b.headful = true
	}
}

// WithLanguage sets the browser UI language. Defaults to DefaultLanguage.
func WithLanguage(lang string) BrowserOption {
	return func(b *Browser) {
		b.lang = lang
	}
}

// WithRelaunchAfter sets how many pages a Chrome process serves before it is
// replaced. Values below 1 disable relaunching.
func WithRelaunchAfter(n int) BrowserOption {
	return func(b *Browser) {
		b.relaunchAfter = n
	}
}

// NewBrowser creates a Browser. Chrome is not started until Start or NewPage
// is called.
func NewBrowser(opts ...BrowserOption) *Browser {
	b := &Browser{
		lang:          DefaultLanguage,
		relaunchAfter: DefaultRelaunchAfter,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start launches Chrome if it is not running.
func (b *Browser) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return serpdump.Errorf(serpdump.EINVALID, "browser is closed")
	}
	if b.conn != nil {
		return nil
	}
	return b.relaunch()
}

// NewPage opens a blank tab. Chrome is started, or replaced once it has
// served the configured number of pages, before the tab is opened.
func (b *Browser) NewPage() (*rod.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, serpdump.Errorf(serpdump.EINVALID, "browser is closed")
	}
	if b.conn == nil {
		if err := b.relaunch(); err != nil {
			return nil, err
		}
	} else if b.relaunchAfter > 0 && b.served >= b.relaunchAfter {
		// Keep serving from the old process when the new one fails to start.
		_ = b.relaunch()
	}

	page, err := b.conn.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	b.served++
	return page, nil
}

// Served returns how many pages the current Chrome process has opened.
func (b *Browser) Served() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.served
}

// PID returns the process ID of the running Chrome launcher, or 0.
func (b *Browser) PID() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.proc == nil {
		return 0
	}
	return b.proc.PID()
}

// Close stops Chrome. Close is safe to call multiple times.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	err := stop(b.conn, b.proc)
	b.conn, b.proc = nil, nil
	return err
}

// relaunch starts a new Chrome process and stops the previous one.
// On failure the previous process stays in place. Must be called with mu held.
func (b *Browser) relaunch() error {
	conn, proc, err := b.launch()
	if err != nil {
		return err
	}
	_ = stop(b.conn, b.proc)
	b.conn, b.proc, b.served = conn, proc, 0
	return nil
}

func (b *Browser) launch() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("lang", b.lang).
		Leakless(true).
		Headless(!b.headful)
	if b.bin != "" {
		l = l.Bin(b.bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	conn := rod.New().ControlURL(u)
	if err := conn.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return conn, l, nil
}

func stop(conn *rod.Browser, proc *launcher.Launcher) error {
	var err error
	if conn != nil {
		err = conn.Close()
	}
	if proc != nil {
		proc.Kill()
	}
	return err
}
