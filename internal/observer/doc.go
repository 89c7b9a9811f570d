// Package observer implements the page observer: it discovers password
// fields in a document, attaches focus, blur and input handling to each of
// them exactly once, keeps a single floating advisory element up to date with
// live strength feedback, watches the document for newly added fields, and
// writes a one-off security snapshot of the page to the shared store.
//
// All observer state lives in a Session owned by one Observer, and every
// handler runs on the Observer's reactor.Loop. Events produced by the page
// (focus, blur, input, DOM mutations) are handed to Dispatch from any
// goroutine and are queued onto the loop.
//
// The Document interface is the observer's only view of the page. The chrome
// package implements it over the DevTools protocol; tests use an in-memory
// fake.
package observer
