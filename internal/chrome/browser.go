package chrome

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/nao1215/pageguard/internal/host"
	"github.com/nao1215/pageguard/internal/snapshot"
)

// DefaultNavigateTimeout bounds a page load.
const DefaultNavigateTimeout = 60 * time.Second

// Browser is a running Chromium instance.
type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *slog.Logger
	headless    bool
	execPath    string
	navTimeout  time.Duration
	mu          sync.Mutex
	tabs        map[string]*Tab
	activeTabID string
}

// Option configures a Browser.
type Option func(*Browser)

// WithHeadless controls whether the browser window is hidden.
func WithHeadless(headless bool) Option {
	return func(b *Browser) {
		b.headless = headless
	}
}

// WithExecPath sets the browser binary. Empty uses chromedp's lookup.
func WithExecPath(path string) Option {
	return func(b *Browser) {
		b.execPath = path
	}
}

// WithNavigateTimeout bounds every page load.
func WithNavigateTimeout(d time.Duration) Option {
	return func(b *Browser) {
		if d > 0 {
			b.navTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Browser) {
		b.logger = logger
	}
}

var _ host.Platform = (*Browser)(nil)

// NewBrowser starts a browser. It lives until ctx is cancelled or Close is
// called.
func NewBrowser(ctx context.Context, opts ...Option) (*Browser, error) {
	b := &Browser{
		headless:   true,
		navTimeout: DefaultNavigateTimeout,
		tabs:       make(map[string]*Tab),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if b.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(b.logf(slog.LevelDebug)),
		chromedp.WithErrorf(b.logf(slog.LevelWarn)),
	)
	b.ctx = browserCtx
	b.cancel = func() {
		cancelBrowser()
		cancelAlloc()
	}

	// start the browser process with a blank page
	if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
		b.cancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return b, nil
}

func (b *Browser) logf(level slog.Level) func(string, ...any) {
	return func(format string, args ...any) {
		b.logger.Log(context.Background(), level, fmt.Sprintf(format, args...), "component", "chromedp")
	}
}

// Open creates a new tab, installs the bridge and navigates to rawURL.
// The new tab becomes the active tab.
func (b *Browser) Open(ctx context.Context, rawURL string) (*Tab, error) {
	tab, err := newTab(b.ctx, b.logger)
	if err != nil {
		return nil, err
	}

	if err := tab.Navigate(ctx, rawURL, b.navTimeout); err != nil {
		tab.Close()
		return nil, err
	}

	b.mu.Lock()
	b.tabs[tab.ID()] = tab
	b.activeTabID = tab.ID()
	b.mu.Unlock()

	b.logger.Debug("opened tab", "tab", tab.ID(), "url", rawURL)
	return tab, nil
}

// Tab returns an open tab by ID.
func (b *Browser) Tab(id string) (*Tab, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tabs[id]
	return t, ok
}

// CloseTab closes a tab. Closing the active tab leaves no active tab.
func (b *Browser) CloseTab(id string) {
	b.mu.Lock()
	t, ok := b.tabs[id]
	delete(b.tabs, id)
	if b.activeTabID == id {
		b.activeTabID = ""
	}
	b.mu.Unlock()
	if ok {
		t.Close()
	}
}

// ActiveTab returns the most recently opened tab.
func (b *Browser) ActiveTab(ctx context.Context) (host.Tab, error) {
	b.mu.Lock()
	t, ok := b.tabs[b.activeTabID]
	b.mu.Unlock()
	if !ok {
		return host.Tab{}, host.ErrNoActiveTab
	}

	location, err := t.Location(ctx)
	if err != nil {
		return host.Tab{}, err
	}
	return host.Tab{ID: t.ID(), URL: location}, nil
}

// CollectPage runs the page information routine in the document of a tab.
func (b *Browser) CollectPage(ctx context.Context, tabID string) (snapshot.PageInfo, error) {
	t, ok := b.Tab(tabID)
	if !ok {
		return snapshot.PageInfo{}, fmt.Errorf("unknown tab %q", tabID)
	}
	return t.Collect(ctx)
}

// Close closes every tab and stops the browser.
func (b *Browser) Close() error {
	b.mu.Lock()
	tabs := b.tabs
	b.tabs = make(map[string]*Tab)
	b.activeTabID = ""
	b.mu.Unlock()

	for _, t := range tabs {
		t.Close()
	}
	b.cancel()
	return nil
}
