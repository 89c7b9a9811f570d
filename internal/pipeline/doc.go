// Package pipeline runs page security audits as a sequence of steps.
//
// An audit collects page information from a live tab or a static HTML
// document, computes the snapshot, stores it under the page's hostname and
// derives the security score. Each stage is a Step that receives the Audit
// and fills in its part. BatchProcessor runs one pipeline per target with
// bounded concurrency using errgroup.
package pipeline
