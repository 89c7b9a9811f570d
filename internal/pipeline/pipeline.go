package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the audit filled in by
// the previous ones.
type Step interface {
	// Do executes the step. Returning an error stops the pipeline unless
	// it was built WithContinueOnError.
	Do(ctx context.Context, audit *Audit) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
	now             func() time.Time
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to run the remaining steps
// after one fails. The first error is still recorded in the audit.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given steps.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: append([]Step(nil), steps...),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// Execute runs all pipeline steps in sequence.
// Cancellation is checked before each step; a step in progress handles ctx
// itself.
func (p *Pipeline) Execute(ctx context.Context, audit *Audit) error {
	audit.StartedAt = p.now()
	defer func() {
		audit.FinishedAt = p.now()
	}()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", ctx.Err())
			audit.TimedOut = true
			p.record(audit, ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step", "step", step.Name(), "target", audit.Target)

		if err := step.Do(ctx, audit); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "target", audit.Target, "error", err)
			p.record(audit, err)
			if !p.continueOnError {
				return err
			}
		}

		audit.PerformedSteps = append(audit.PerformedSteps, step.Name())
	}
	return audit.Err
}

func (p *Pipeline) record(audit *Audit, err error) {
	if audit.Err != nil {
		return
	}
	audit.Err = err
	audit.ErrorMessage = err.Error()
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
