package reactor

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"
	"time"
)

// Loop is a single-threaded event loop with timers.
//
// Post may be called from any goroutine. AfterFunc, Timer.Stop and Now are
// meant to be called from callbacks already running on the loop (or from the
// test goroutine driving Advance).
type Loop struct {
	clock  Clock
	logger *slog.Logger

	mu     sync.Mutex
	posted []func()
	notify chan struct{}

	timers timerQueue
	seq    uint64
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithClock sets the clock used by the loop. The default is SystemClock.
func WithClock(c Clock) LoopOption {
	return func(l *Loop) {
		l.clock = c
	}
}

// WithLoopLogger sets the logger used to report recovered callback panics.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop creates an idle Loop.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		clock:  SystemClock(),
		notify: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Now returns the loop's current time.
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// Post queues fn to run on the loop. It never blocks.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// Timer is a callback scheduled on a Loop.
type Timer struct {
	loop  *Loop
	due   time.Time
	seq   uint64
	fn    func()
	index int
}

// Stop cancels the timer. It reports whether the timer was still pending.
func (t *Timer) Stop() bool {
	if t == nil || t.index < 0 {
		return false
	}
	heap.Remove(&t.loop.timers, t.index)
	return true
}

// AfterFunc schedules fn to run on the loop once d has elapsed.
// Timers with the same due time fire in the order they were scheduled.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	l.seq++
	t := &Timer{
		loop: l,
		due:  l.clock.Now().Add(d),
		seq:  l.seq,
		fn:   fn,
	}
	heap.Push(&l.timers, t)
	return t
}

// Pending returns the number of scheduled timers.
func (l *Loop) Pending() int {
	return l.timers.Len()
}

// Run drives the loop in real time until ctx is done.
// It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.drainPosted()
		l.fireDue(l.clock.Now())

		var wake <-chan time.Time
		var timer *time.Timer
		if next, ok := l.nextDue(); ok {
			d := next.Sub(l.clock.Now())
			if d < 0 {
				d = 0
			}
			timer = time.NewTimer(d)
			wake = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-l.notify:
		case <-wake:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// Advance moves a ManualClock forward by d, running posted callbacks and
// every timer that falls due on the way, in due order. The clock is set to
// each timer's due time before the timer runs.
//
// Advance panics if the loop was not created with a ManualClock.
func (l *Loop) Advance(d time.Duration) {
	mc, ok := l.clock.(*ManualClock)
	if !ok {
		panic("reactor: Advance requires a ManualClock")
	}
	target := mc.Now().Add(d)

	l.drainPosted()
	for {
		next, ok := l.nextDue()
		if !ok || next.After(target) {
			break
		}
		mc.Set(next)
		l.fireDue(next)
		l.drainPosted()
	}
	mc.Set(target)
	l.drainPosted()
}

// Flush runs posted callbacks and timers due at the current time without
// moving the clock.
func (l *Loop) Flush() {
	l.drainPosted()
	l.fireDue(l.clock.Now())
	l.drainPosted()
}

func (l *Loop) drainPosted() {
	for {
		l.mu.Lock()
		batch := l.posted
		l.posted = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			l.call(fn)
		}
	}
}

func (l *Loop) fireDue(now time.Time) {
	for l.timers.Len() > 0 {
		t := l.timers[0]
		if t.due.After(now) {
			return
		}
		heap.Pop(&l.timers)
		l.call(t.fn)
	}
}

func (l *Loop) nextDue() (time.Time, bool) {
	if l.timers.Len() == 0 {
		return time.Time{}, false
	}
	return l.timers[0].due, true
}

// call runs fn, keeping the loop alive if it panics.
func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("reactor callback panicked", "panic", r)
		}
	}()
	fn()
}

// timerQueue is a min-heap of timers ordered by due time, then sequence.
type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*Timer) //nolint:forcetypeassert // only *Timer is ever pushed
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
