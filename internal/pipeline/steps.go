package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nao1215/pageguard/internal/chrome"
	"github.com/nao1215/pageguard/internal/score"
	"github.com/nao1215/pageguard/internal/snapshot"
)

// Errors returned when a step runs before the step it depends on.
var (
	ErrNoPageInfo = errors.New("no page information collected")
	ErrNoSnapshot = errors.New("no snapshot computed")
)

// Collector gathers page information for an audit target.
type Collector interface {
	Collect(ctx context.Context, target string) (snapshot.PageInfo, error)
}

// BrowserCollector loads each target URL in a fresh browser tab, runs the
// collection routine and closes the tab.
type BrowserCollector struct {
	browser *chrome.Browser
}

// NewBrowserCollector creates a collector over browser.
func NewBrowserCollector(browser *chrome.Browser) *BrowserCollector {
	return &BrowserCollector{browser: browser}
}

// Collect implements Collector.
func (c *BrowserCollector) Collect(ctx context.Context, target string) (snapshot.PageInfo, error) {
	tab, err := c.browser.Open(ctx, target)
	if err != nil {
		return snapshot.PageInfo{}, err
	}
	defer c.browser.CloseTab(tab.ID())
	return tab.Collect(ctx)
}

// HTMLCollector reads targets as local HTML files and attributes them to a
// fixed page URL. Only statically present scripts are seen.
type HTMLCollector struct {
	pageURL string
	cookie  string
}

// NewHTMLCollector creates a collector for documents served at pageURL with
// the given document cookie string.
func NewHTMLCollector(pageURL, cookie string) *HTMLCollector {
	return &HTMLCollector{pageURL: pageURL, cookie: cookie}
}

// Collect implements Collector.
func (c *HTMLCollector) Collect(_ context.Context, target string) (snapshot.PageInfo, error) {
	f, err := os.Open(target) //nolint:gosec // user-selected input file
	if err != nil {
		return snapshot.PageInfo{}, err
	}
	defer f.Close()
	return snapshot.FromHTML(c.pageURL, f, c.cookie)
}

// CollectStep fills Audit.Info.
type CollectStep struct {
	collector Collector
	logger    *slog.Logger
}

// NewCollectStep creates a collect step.
func NewCollectStep(collector Collector, logger *slog.Logger) *CollectStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectStep{collector: collector, logger: logger}
}

// Name returns the step name.
func (s *CollectStep) Name() string {
	return "collect"
}

// Do executes the collect step.
func (s *CollectStep) Do(ctx context.Context, audit *Audit) error {
	info, err := s.collector.Collect(ctx, audit.Target)
	if err != nil {
		return fmt.Errorf("failed to collect %s: %w", audit.Target, err)
	}
	s.logger.Debug("collected page",
		"target", audit.Target,
		"scripts", info.ScriptCount,
		"field_count", info.PasswordFields,
	)
	audit.Info = &info
	return nil
}

// SnapshotStep computes Audit.Snapshot from Audit.Info.
type SnapshotStep struct {
	now func() time.Time
}

// NewSnapshotStep creates a snapshot step. A nil clock uses time.Now.
func NewSnapshotStep(now func() time.Time) *SnapshotStep {
	if now == nil {
		now = time.Now
	}
	return &SnapshotStep{now: now}
}

// Name returns the step name.
func (s *SnapshotStep) Name() string {
	return "snapshot"
}

// Do executes the snapshot step.
func (s *SnapshotStep) Do(_ context.Context, audit *Audit) error {
	if audit.Info == nil {
		return ErrNoPageInfo
	}
	snap := snapshot.Compute(*audit.Info, s.now())
	audit.Snapshot = &snap
	return nil
}

// StoreStep writes Audit.Snapshot to the repository under its hostname.
type StoreStep struct {
	repo *snapshot.Repository
}

// NewStoreStep creates a store step.
func NewStoreStep(repo *snapshot.Repository) *StoreStep {
	return &StoreStep{repo: repo}
}

// Name returns the step name.
func (s *StoreStep) Name() string {
	return "store"
}

// Do executes the store step.
func (s *StoreStep) Do(ctx context.Context, audit *Audit) error {
	if audit.Snapshot == nil {
		return ErrNoSnapshot
	}
	hostname := audit.Snapshot.Hostname()
	if hostname == "" {
		return fmt.Errorf("cannot store snapshot for %q: no hostname", audit.Snapshot.URL)
	}
	if err := s.repo.Save(ctx, hostname, *audit.Snapshot); err != nil {
		return err
	}
	audit.Stored = true
	return nil
}

// ScoreStep derives Audit.Assessment from Audit.Snapshot.
type ScoreStep struct{}

// NewScoreStep creates a score step.
func NewScoreStep() *ScoreStep {
	return &ScoreStep{}
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score"
}

// Do executes the score step.
func (s *ScoreStep) Do(_ context.Context, audit *Audit) error {
	if audit.Snapshot == nil {
		return ErrNoSnapshot
	}
	a := score.Assess(*audit.Snapshot)
	audit.Assessment = &a
	return nil
}

// AuditSteps returns the standard step sequence. A nil repo skips storing.
func AuditSteps(collector Collector, repo *snapshot.Repository, logger *slog.Logger) []Step {
	steps := []Step{
		NewCollectStep(collector, logger),
		NewSnapshotStep(nil),
	}
	if repo != nil {
		steps = append(steps, NewStoreStep(repo))
	}
	return append(steps, NewScoreStep())
}
