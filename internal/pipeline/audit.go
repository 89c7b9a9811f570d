package pipeline

import (
	"time"

	"github.com/nao1215/pageguard/internal/score"
	"github.com/nao1215/pageguard/internal/snapshot"
)

// Audit is the accumulated result of one pipeline run for one target.
type Audit struct {
	// Target is the URL or file the audit was started for.
	Target string `json:"target"`

	// Info is the raw page information, set by the collect step.
	Info *snapshot.PageInfo `json:"-"`

	// Snapshot is set by the snapshot step.
	Snapshot *snapshot.PageSnapshot `json:"snapshot,omitempty"`

	// Assessment is set by the score step.
	Assessment *score.Assessment `json:"assessment,omitempty"`

	// Stored is true once the snapshot was written to the store.
	Stored bool `json:"stored"`

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`

	// Err is the error that stopped the pipeline, if any.
	Err          error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`

	// TimedOut is set when the pipeline was cancelled.
	TimedOut bool `json:"timed_out,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewAudit creates an empty audit for target.
func NewAudit(target string) *Audit {
	return &Audit{
		Target:         target,
		PerformedSteps: make([]string, 0),
	}
}

// Hostname returns the audited page's hostname once a snapshot exists.
func (a *Audit) Hostname() string {
	if a.Snapshot == nil {
		return ""
	}
	return a.Snapshot.Hostname()
}

// Failed reports whether the pipeline stopped on an error.
func (a *Audit) Failed() bool {
	return a.Err != nil
}
