package observer

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/pageguard/internal/reactor"
	"github.com/nao1215/pageguard/internal/snapshot"
	"github.com/nao1215/pageguard/internal/strength"
)

// Timings controls how often the observer reacts to page events.
type Timings struct {
	// Input bounds how often strength feedback is re-rendered while typing.
	Input time.Duration
	// Position bounds how often the advisory is repositioned.
	Position time.Duration
	// Discovery bounds how often the document is rescanned after mutations.
	Discovery time.Duration
	// BlurGrace is how long the advisory stays up after a field loses focus.
	BlurGrace time.Duration
}

// DefaultTimings returns the standard observer timings.
func DefaultTimings() Timings {
	return Timings{
		Input:     300 * time.Millisecond,
		Position:  100 * time.Millisecond,
		Discovery: time.Second,
		BlurGrace: 200 * time.Millisecond,
	}
}

// Session is the per-page state of one observer.
type Session struct {
	initialized bool

	// tracked grows monotonically for the lifetime of the page.
	tracked map[FieldID]*trackedField

	// advisory is nil until the first field is found.
	advisory *Advisory

	blurTimer *reactor.Timer
}

type trackedField struct {
	input *reactor.Throttle[string]
}

func newSession() *Session {
	return &Session{tracked: make(map[FieldID]*trackedField)}
}

// Tracked reports whether a field has been registered.
func (s *Session) Tracked(id FieldID) bool {
	_, ok := s.tracked[id]
	return ok
}

// TrackedCount returns the number of registered fields.
func (s *Session) TrackedCount() int {
	return len(s.tracked)
}

// Advisory returns a copy of the advisory state and whether it exists.
func (s *Session) Advisory() (Advisory, bool) {
	if s.advisory == nil {
		return Advisory{}, false
	}
	return *s.advisory, true
}

// EvaluationFunc is called after every strength evaluation.
type EvaluationFunc func(field FieldID, result strength.Result)

// Observer drives one page.
type Observer struct {
	loop    *reactor.Loop
	doc     Document
	repo    *snapshot.Repository
	logger  *slog.Logger
	timings Timings

	onEvaluate EvaluationFunc

	session    *Session
	rediscover *reactor.Throttle[struct{}]
	reposition *reactor.Throttle[FieldID]
}

// Option configures an Observer.
type Option func(*Observer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Observer) {
		o.logger = logger
	}
}

// WithTimings overrides DefaultTimings.
func WithTimings(t Timings) Option {
	return func(o *Observer) {
		o.timings = t
	}
}

// WithEvaluationHook registers fn to be told about every evaluation.
func WithEvaluationHook(fn EvaluationFunc) Option {
	return func(o *Observer) {
		o.onEvaluate = fn
	}
}

// New creates an observer for doc running on loop. Snapshots are written
// through repo.
func New(loop *reactor.Loop, doc Document, repo *snapshot.Repository, opts ...Option) *Observer {
	o := &Observer{
		loop:    loop,
		doc:     doc,
		repo:    repo,
		timings: DefaultTimings(),
		session: newSession(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	o.rediscover = reactor.NewThrottle(loop, o.timings.Discovery, func(struct{}) {
		o.Discover()
	})
	o.reposition = reactor.NewThrottle(loop, o.timings.Position, o.positionAdvisory)
	return o
}

// Session returns the observer's session. It must only be inspected from the
// loop goroutine.
func (o *Observer) Session() *Session {
	return o.session
}

// Start queues initialization onto the loop.
func (o *Observer) Start(ctx context.Context) {
	o.loop.Post(func() { o.Initialize(ctx) })
}

// Run starts the observer and drives its loop until ctx is done.
func (o *Observer) Run(ctx context.Context) error {
	o.Start(ctx)
	return o.loop.Run(ctx)
}

// Dispatch queues a page event onto the loop. It is safe to call from any
// goroutine.
func (o *Observer) Dispatch(ev Event) {
	o.loop.Post(func() { o.Handle(ev) })
}

// Initialize discovers existing fields, records the page snapshot and starts
// the mutation watch. Only the first call has any effect.
func (o *Observer) Initialize(ctx context.Context) {
	if o.session.initialized {
		return
	}
	o.session.initialized = true

	o.Discover()
	if _, err := o.Analyze(ctx); err != nil {
		o.logger.Warn("page security snapshot not stored", "error", err)
	}
	if err := o.doc.WatchMutations(); err != nil {
		o.logger.Warn("mutation watch unavailable", "error", err)
	}
}

// Discover registers every password field not yet tracked.
func (o *Observer) Discover() {
	fields, err := o.doc.PasswordFields()
	if err != nil {
		o.logger.Warn("password field discovery failed", "error", err)
		return
	}
	for _, id := range fields {
		o.register(id)
	}
}

// Analyze computes the page snapshot and writes it to the store.
// The snapshot is returned even when the write fails.
func (o *Observer) Analyze(ctx context.Context) (snapshot.PageSnapshot, error) {
	info, err := o.doc.PageInfo()
	if err != nil {
		return snapshot.PageSnapshot{}, err
	}
	snap := snapshot.Compute(info, o.loop.Now())
	if err := o.repo.Save(ctx, snap.Hostname(), snap); err != nil {
		return snap, err
	}
	o.logger.Debug("page security snapshot stored",
		"url", snap.URL,
		"jar_entries", snap.CookieCount,
		"scripts", snap.ScriptCount,
		"third_party_scripts", snap.ThirdPartyScriptCount,
	)
	return snap, nil
}

// Handle processes one page event. It must run on the loop goroutine.
func (o *Observer) Handle(ev Event) {
	switch e := ev.(type) {
	case FieldEvent:
		o.handleField(e)
	case MutationEvent:
		o.handleMutation(e)
	}
}

func (o *Observer) register(id FieldID) {
	if o.session.Tracked(id) {
		return
	}
	o.ensureAdvisory()
	// A field that could not be attached stays untracked and is retried on
	// the next discovery.
	if err := o.doc.Attach(id); err != nil {
		o.logger.Warn("failed to attach to password field", "field", id, "error", err)
		return
	}

	field := &trackedField{}
	field.input = reactor.NewThrottle(o.loop, o.timings.Input, func(value string) {
		o.evaluate(id, value)
	})
	o.session.tracked[id] = field
	o.logger.Debug("password field tracked", "field", id)
}

func (o *Observer) ensureAdvisory() {
	if o.session.advisory != nil {
		return
	}
	if err := o.doc.CreateAdvisory(); err != nil {
		o.logger.Warn("failed to create advisory", "error", err)
		return
	}
	o.session.advisory = &Advisory{}
}

func (o *Observer) handleField(e FieldEvent) {
	field, ok := o.session.tracked[e.Field]
	if !ok {
		return
	}
	switch e.Kind {
	case Focus:
		o.cancelBlurHide()
		o.show()
		o.reposition.Call(e.Field)
	case Blur:
		o.cancelBlurHide()
		o.session.blurTimer = o.loop.AfterFunc(o.timings.BlurGrace, func() {
			o.session.blurTimer = nil
			o.hide()
		})
	case Input:
		field.input.Call(e.Value)
	}
}

func (o *Observer) handleMutation(e MutationEvent) {
	if e.mayAddFields() {
		o.rediscover.Call(struct{}{})
	}
}

func (o *Observer) evaluate(id FieldID, value string) {
	a := o.session.advisory
	if a == nil {
		return
	}
	if value == "" {
		o.hide()
		return
	}

	result := strength.Evaluate(value)
	if o.onEvaluate != nil {
		o.onEvaluate(id, result)
	}

	a.applyResult(result)
	a.Visible = true
	o.render()
	o.reposition.Call(id)
}

func (o *Observer) positionAdvisory(id FieldID) {
	a := o.session.advisory
	if a == nil {
		return
	}
	rect, err := o.doc.FieldRect(id)
	if err != nil {
		o.logger.Debug("field geometry unavailable", "field", id, "error", err)
		return
	}
	scroll, err := o.doc.ScrollOffset()
	if err != nil {
		o.logger.Debug("scroll offset unavailable", "error", err)
		return
	}
	a.placeBelow(rect, scroll)
	o.render()
}

func (o *Observer) show() {
	if a := o.session.advisory; a != nil && !a.Visible {
		a.Visible = true
		o.render()
	}
}

func (o *Observer) hide() {
	if a := o.session.advisory; a != nil && a.Visible {
		a.Visible = false
		o.render()
	}
}

func (o *Observer) cancelBlurHide() {
	if o.session.blurTimer != nil {
		o.session.blurTimer.Stop()
		o.session.blurTimer = nil
	}
}

func (o *Observer) render() {
	if err := o.doc.RenderAdvisory(*o.session.advisory); err != nil {
		o.logger.Debug("advisory render failed", "error", err)
	}
}
