package reactor

import "time"

// Throttle rate-limits calls to a function running on a Loop.
//
// A call made when at least the delay has passed since the last execution
// runs immediately. Any other call schedules a single trailing execution at
// the end of the current window. Later calls inside the same window replace
// the arguments of the trailing execution, so only the most recent arguments
// are delivered, and the last call of a burst is never lost.
//
// Call must be invoked from the loop goroutine.
type Throttle[T any] struct {
	loop  *Loop
	delay time.Duration
	fn    func(T)

	executed bool
	last     time.Time

	pending    *Timer
	pendingArg T
}

// NewThrottle wraps fn so that it runs at most once per delay on loop.
func NewThrottle[T any](loop *Loop, delay time.Duration, fn func(T)) *Throttle[T] {
	return &Throttle[T]{
		loop:  loop,
		delay: delay,
		fn:    fn,
	}
}

// Call requests an execution of the wrapped function with arg.
func (t *Throttle[T]) Call(arg T) {
	now := t.loop.Now()
	if !t.executed || now.Sub(t.last) >= t.delay {
		// A newer call supersedes whatever was waiting for the window to close.
		t.dropPending()
		t.run(now, arg)
		return
	}

	t.pendingArg = arg
	if t.pending != nil {
		t.pending.Stop()
	}
	t.pending = t.loop.AfterFunc(t.delay-now.Sub(t.last), t.fireTrailing)
}

func (t *Throttle[T]) fireTrailing() {
	arg := t.pendingArg
	t.dropPending()
	t.run(t.loop.Now(), arg)
}

func (t *Throttle[T]) run(now time.Time, arg T) {
	t.executed = true
	t.last = now
	t.fn(arg)
}

func (t *Throttle[T]) dropPending() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	var zero T
	t.pendingArg = zero
}
