// Package reactor provides the single-threaded event loop that page
// observers run on, together with the trailing-edge Throttle built on it.
//
// Every callback posted to a Loop or scheduled with AfterFunc runs on the
// goroutine that drives the loop, so handlers never need locks for the state
// they own. The loop can be driven in real time with Run, or deterministically
// with Advance when it was created with a ManualClock. Tests use the latter to
// check timer ordering and throttle windows without sleeping.
package reactor
