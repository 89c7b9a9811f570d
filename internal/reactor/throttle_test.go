package reactor

import (
	"slices"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type execution struct {
	arg int
	at  time.Duration
}

// newRecordingThrottle returns a throttle on a manual loop that records
// every execution relative to epoch.
func newRecordingThrottle(delay time.Duration) (*Loop, *ManualClock, *Throttle[int], *[]execution) {
	clock := NewManualClock(epoch)
	loop := NewLoop(WithClock(clock))
	var got []execution
	th := NewThrottle(loop, delay, func(arg int) {
		got = append(got, execution{arg: arg, at: loop.Now().Sub(epoch)})
	})
	return loop, clock, th, &got
}

func TestThrottleFirstCallRunsImmediately(t *testing.T) {
	t.Parallel()

	loop, _, th, got := newRecordingThrottle(100 * time.Millisecond)
	th.Call(1)

	want := []execution{{arg: 1, at: 0}}
	if !slices.Equal(*got, want) {
		t.Errorf("executions = %v, want %v", *got, want)
	}
	if loop.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", loop.Pending())
	}
}

func TestThrottleBurstKeepsLatestArguments(t *testing.T) {
	t.Parallel()

	loop, _, th, got := newRecordingThrottle(100 * time.Millisecond)

	th.Call(0)
	for _, at := range []int{10, 20, 30} {
		loop.Advance(10 * time.Millisecond)
		th.Call(at)
	}
	if loop.Pending() != 1 {
		t.Fatalf("expected exactly one trailing execution scheduled, got %d", loop.Pending())
	}
	loop.Advance(time.Second)

	want := []execution{{arg: 0, at: 0}, {arg: 30, at: 100 * time.Millisecond}}
	if !slices.Equal(*got, want) {
		t.Errorf("executions = %v, want %v", *got, want)
	}
}

func TestThrottleCallsAcrossBusyLoop(t *testing.T) {
	t.Parallel()

	// Calls at t=0, t=50 and t=120 with delay 100 where the loop does not get
	// to service its timers before the third call arrives.
	loop, clock, th, got := newRecordingThrottle(100 * time.Millisecond)

	th.Call(0)
	clock.Set(epoch.Add(50 * time.Millisecond))
	th.Call(50)
	clock.Set(epoch.Add(120 * time.Millisecond))
	th.Call(120)
	loop.Advance(time.Second)

	if len(*got) != 2 {
		t.Fatalf("expected exactly two executions, got %v", *got)
	}
	if (*got)[0] != (execution{arg: 0, at: 0}) {
		t.Errorf("first execution = %v, want immediate call with 0", (*got)[0])
	}
	second := (*got)[1]
	if second.arg != 120 {
		t.Errorf("second execution carried %d, want the t=120 arguments", second.arg)
	}
	if second.at < 100*time.Millisecond {
		t.Errorf("second execution at %v, want at or after 100ms", second.at)
	}
}

func TestThrottleCallsAcrossResponsiveLoop(t *testing.T) {
	t.Parallel()

	// Same call pattern, but the loop services the trailing timer at t=100
	// before the t=120 call, which then opens a new window.
	loop, _, th, got := newRecordingThrottle(100 * time.Millisecond)

	th.Call(0)
	loop.Advance(50 * time.Millisecond)
	th.Call(50)
	loop.Advance(70 * time.Millisecond)
	th.Call(120)
	loop.Advance(time.Second)

	want := []execution{
		{arg: 0, at: 0},
		{arg: 50, at: 100 * time.Millisecond},
		{arg: 120, at: 200 * time.Millisecond},
	}
	if !slices.Equal(*got, want) {
		t.Errorf("executions = %v, want %v", *got, want)
	}
}

func TestThrottleIdleWindowRunsImmediately(t *testing.T) {
	t.Parallel()

	loop, _, th, got := newRecordingThrottle(100 * time.Millisecond)

	th.Call(1)
	loop.Advance(100 * time.Millisecond)
	th.Call(2)
	loop.Advance(250 * time.Millisecond)
	th.Call(3)

	want := []execution{
		{arg: 1, at: 0},
		{arg: 2, at: 100 * time.Millisecond},
		{arg: 3, at: 350 * time.Millisecond},
	}
	if !slices.Equal(*got, want) {
		t.Errorf("executions = %v, want %v", *got, want)
	}
	if loop.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", loop.Pending())
	}
}

func TestThrottleAtMostOncePerWindow(t *testing.T) {
	t.Parallel()

	loop, _, th, got := newRecordingThrottle(100 * time.Millisecond)

	// Steady pressure: one call every 10ms for one second.
	for i := range 100 {
		th.Call(i)
		loop.Advance(10 * time.Millisecond)
	}
	loop.Advance(time.Second)

	for i := 1; i < len(*got); i++ {
		gap := (*got)[i].at - (*got)[i-1].at
		if gap < 100*time.Millisecond {
			t.Fatalf("executions %v and %v are only %v apart", (*got)[i-1], (*got)[i], gap)
		}
	}
	last := (*got)[len(*got)-1]
	if last.arg != 99 {
		t.Errorf("last execution carried %d, want the final call 99", last.arg)
	}
}
