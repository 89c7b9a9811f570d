package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() to tell them apart.
var (
	// ErrInvalidThrottle is returned when any throttle window is not positive.
	ErrInvalidThrottle = errors.New("invalid throttle window: must be positive")

	// ErrInvalidBlurGrace is returned when the blur grace delay is negative.
	ErrInvalidBlurGrace = errors.New("invalid blur grace delay: must be non-negative")

	// ErrInvalidReloadDelay is returned when the panel reload delay is negative.
	ErrInvalidReloadDelay = errors.New("invalid reload delay: must be non-negative")

	// ErrInvalidTimeout is returned when the navigation timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid navigation timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoStoreDir is returned when a persistent store is requested without
	// a directory.
	ErrNoStoreDir = errors.New("no store directory: set --store-dir or use --memory")
)
