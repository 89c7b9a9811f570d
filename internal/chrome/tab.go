package chrome

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/nao1215/pageguard/internal/observer"
	"github.com/nao1215/pageguard/internal/snapshot"
)

// documentQueue is how many document announcements are buffered for a
// consumer that has not caught up.
const documentQueue = 8

// Tab is one browser tab with the bridge installed.
//
// Its observer.Document methods run in the tab's own browser context and
// may be called from any goroutine except the one delivering events to the
// sink.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
	id     string
	logger *slog.Logger

	mu   sync.Mutex
	sink func(observer.Event)

	documents chan string
	closeOnce sync.Once
}

var _ observer.Document = (*Tab)(nil)

func newTab(browserCtx context.Context, logger *slog.Logger) (*Tab, error) {
	ctx, cancel := chromedp.NewContext(browserCtx)
	t := &Tab{
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
		documents: make(chan string, documentQueue),
	}
	chromedp.ListenTarget(ctx, t.onTargetEvent)

	// the first Run allocates the target and must use the tab context itself
	err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return runtime.AddBinding(BindingName).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(bridgeScript).Do(ctx)
			return err
		}),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to prepare tab: %w", err)
	}
	t.id = chromedp.FromContext(ctx).Target.TargetID.String()
	return t, nil
}

// ID returns the tab's target ID.
func (t *Tab) ID() string {
	return t.id
}

// SetSink routes page events to fn, typically an Observer's Dispatch.
// Events arriving while no sink is set are dropped.
func (t *Tab) SetSink(fn func(observer.Event)) {
	t.mu.Lock()
	t.sink = fn
	t.mu.Unlock()
}

// Documents announces the URL of every top-level document once its DOM is
// ready, including the first one loaded by Navigate.
func (t *Tab) Documents() <-chan string {
	return t.documents
}

// Done is closed once the tab is closed or its browser is gone.
func (t *Tab) Done() <-chan struct{} {
	return t.ctx.Done()
}

// Navigate loads rawURL and waits for the load event.
func (t *Tab) Navigate(ctx context.Context, rawURL string, timeout time.Duration) error {
	runCtx, cancel := context.WithTimeout(t.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, chromedp.Navigate(rawURL)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", rawURL, err)
	}
	return nil
}

// Location returns the URL of the current document.
func (t *Tab) Location(ctx context.Context) (string, error) {
	var location string
	if err := t.run(ctx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read tab location: %w", err)
	}
	return location, nil
}

// Collect runs the page information routine in the current document.
func (t *Tab) Collect(ctx context.Context) (snapshot.PageInfo, error) {
	var info snapshot.PageInfo
	if err := t.run(ctx, chromedp.Evaluate(collectExpr, &info)); err != nil {
		return snapshot.PageInfo{}, fmt.Errorf("failed to collect page information: %w", err)
	}
	return info, nil
}

// Close closes the tab.
func (t *Tab) Close() {
	t.closeOnce.Do(func() {
		t.cancel()
	})
}

// PasswordFields implements observer.Document.
func (t *Tab) PasswordFields() ([]observer.FieldID, error) {
	var ids []string
	if err := t.invoke(&ids, "passwordFields"); err != nil {
		return nil, err
	}
	fields := make([]observer.FieldID, 0, len(ids))
	for _, id := range ids {
		fields = append(fields, observer.FieldID(id))
	}
	return fields, nil
}

// Attach implements observer.Document.
func (t *Tab) Attach(id observer.FieldID) error {
	var ok bool
	return t.invoke(&ok, "attach", string(id))
}

// CreateAdvisory implements observer.Document.
func (t *Tab) CreateAdvisory() error {
	var ok bool
	return t.invoke(&ok, "createAdvisory")
}

// RenderAdvisory implements observer.Document.
func (t *Tab) RenderAdvisory(a observer.Advisory) error {
	var ok bool
	return t.invoke(&ok, "render", a)
}

// FieldRect implements observer.Document.
func (t *Tab) FieldRect(id observer.FieldID) (observer.Rect, error) {
	var r observer.Rect
	err := t.invoke(&r, "fieldRect", string(id))
	return r, err
}

// ScrollOffset implements observer.Document.
func (t *Tab) ScrollOffset() (observer.Point, error) {
	var p observer.Point
	err := t.invoke(&p, "scrollOffset")
	return p, err
}

// WatchMutations implements observer.Document.
func (t *Tab) WatchMutations() error {
	var ok bool
	return t.invoke(&ok, "watchMutations")
}

// PageInfo implements observer.Document.
func (t *Tab) PageInfo() (snapshot.PageInfo, error) {
	var info snapshot.PageInfo
	err := t.invoke(&info, "pageInfo")
	return info, err
}

func (t *Tab) invoke(res any, method string, args ...any) error {
	expr, err := call(method, args...)
	if err != nil {
		return err
	}
	if err := t.run(context.Background(), chromedp.Evaluate(expr, res)); err != nil {
		return fmt.Errorf("bridge %s failed: %w", method, err)
	}
	return nil
}

// run executes actions in the tab, stopping early if ctx is done.
func (t *Tab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// onTargetEvent runs on chromedp's event goroutine and must not block or
// call back into the browser.
func (t *Tab) onTargetEvent(ev any) {
	called, ok := ev.(*runtime.EventBindingCalled)
	if !ok || called.Name != BindingName {
		return
	}

	m, err := decodeMessage(called.Payload)
	if err != nil {
		t.logger.Warn("ignoring bridge message", "tab", t.id, "error", err)
		return
	}
	if m.Type == messageReady {
		select {
		case t.documents <- m.Value:
		default:
			t.logger.Warn("dropping document announcement", "tab", t.id, "url", m.Value)
		}
		return
	}

	e, err := m.event()
	if err != nil {
		t.logger.Warn("ignoring bridge message", "tab", t.id, "error", err)
		return
	}
	t.mu.Lock()
	sink := t.sink
	t.mu.Unlock()
	if sink != nil {
		sink(e)
	}
}
