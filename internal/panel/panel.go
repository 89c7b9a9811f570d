// Package panel implements the summary panel: it loads the latest snapshot
// for the active tab's hostname, derives the security score and exposes the
// result as a View for rendering. A manual refresh re-collects the snapshot
// inside the tab, stores it, waits a short reload delay and loads again.
package panel

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/pageguard/internal/host"
	"github.com/nao1215/pageguard/internal/score"
	"github.com/nao1215/pageguard/internal/snapshot"
)

// Messages shown instead of data.
const (
	MessageNoData = "No data available for this page"
	MessageError  = "Error loading data"
)

// DefaultReloadDelay is how long Refresh waits before reloading the view.
const DefaultReloadDelay = 500 * time.Millisecond

// State is what the panel currently shows.
type State int

const (
	// StateLoading is shown before the first load completes.
	StateLoading State = iota
	// StateNoData is shown when no snapshot exists for the page.
	StateNoData
	// StateError is shown when loading failed.
	StateError
	// StateReady is shown when an assessment is available.
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateNoData:
		return "no_data"
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// View is the renderable state of the panel.
type View struct {
	State      State             `json:"state"`
	Hostname   string            `json:"hostname,omitempty"`
	Message    string            `json:"message,omitempty"`
	Assessment *score.Assessment `json:"assessment,omitempty"`
}

// Panel is the summary panel controller.
type Panel struct {
	platform    host.Platform
	repo        *snapshot.Repository
	logger      *slog.Logger
	reloadDelay time.Duration
	now         func() time.Time
}

// Option configures a Panel.
type Option func(*Panel)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Panel) {
		p.logger = logger
	}
}

// WithReloadDelay overrides DefaultReloadDelay.
func WithReloadDelay(d time.Duration) Option {
	return func(p *Panel) {
		if d >= 0 {
			p.reloadDelay = d
		}
	}
}

// New creates a panel reading through repo and refreshing through platform.
func New(platform host.Platform, repo *snapshot.Repository, opts ...Option) *Panel {
	p := &Panel{
		platform:    platform,
		repo:        repo,
		reloadDelay: DefaultReloadDelay,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Load builds the view for the active tab. Failures never escape: they are
// logged and reflected in the returned view.
func (p *Panel) Load(ctx context.Context) View {
	tab, err := p.platform.ActiveTab(ctx)
	if err != nil {
		p.logger.Error("error loading security data", "error", err)
		return View{State: StateError, Message: MessageError}
	}
	hostname, err := tab.Hostname()
	if err != nil {
		p.logger.Error("error loading security data", "url", tab.URL, "error", err)
		return View{State: StateError, Message: MessageError}
	}
	return p.LoadHost(ctx, hostname)
}

// LoadHost builds the view for a specific hostname.
func (p *Panel) LoadHost(ctx context.Context, hostname string) View {
	snap, err := p.repo.Load(ctx, hostname)
	if errors.Is(err, snapshot.ErrNoData) {
		return View{State: StateNoData, Hostname: hostname, Message: MessageNoData}
	}
	if err != nil {
		p.logger.Error("error loading security data", "hostname", hostname, "error", err)
		return View{State: StateError, Hostname: hostname, Message: MessageError}
	}

	return ReadyView(hostname, score.Assess(*snap))
}

// Refresh re-collects the snapshot inside the active tab, stores it, waits
// the reload delay and returns the reloaded view. On failure the error is
// logged and returned, and the caller keeps showing its previous view.
func (p *Panel) Refresh(ctx context.Context) (View, error) {
	if err := p.recollect(ctx); err != nil {
		p.logger.Error("error refreshing data", "error", err)
		return View{}, err
	}

	timer := time.NewTimer(p.reloadDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-timer.C:
	}
	return p.Load(ctx), nil
}

func (p *Panel) recollect(ctx context.Context) error {
	tab, err := p.platform.ActiveTab(ctx)
	if err != nil {
		return err
	}
	info, err := p.platform.CollectPage(ctx, tab.ID)
	if err != nil {
		return err
	}
	snap := snapshot.Compute(info, p.now())
	return p.repo.Save(ctx, snap.Hostname(), snap)
}
