package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of audits run at once unless configured.
const DefaultConcurrency = 4

// BatchProcessor audits many targets concurrently.
// Every target gets a fresh pipeline from the factory.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent audits.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch audits every target and returns the audits in target order.
// A failed audit does not stop the others; its error is recorded in the
// Audit. The returned error is only non-nil when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*Audit, error) {
	audits := make([]*Audit, len(targets))
	err := bp.ProcessBatchWithCallback(ctx, targets, func(a *Audit, i int) {
		audits[i] = a
	})
	return audits, err
}

// ProcessBatchWithCallback audits every target and calls callback with each
// finished audit and its target index. The callback is called from worker
// goroutines, possibly concurrently, but each index is written only once.
func (bp *BatchProcessor) ProcessBatchWithCallback(ctx context.Context, targets []string, callback func(audit *Audit, index int)) error {
	bp.logger.Info("starting batch audit",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			audit := NewAudit(target)
			if err := bp.pipelineFactory().Execute(ctx, audit); err != nil {
				bp.logger.Warn("audit failed", "target", target, "error", err)
			}
			callback(audit, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch audit complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)
	return err
}
