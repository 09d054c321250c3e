package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidSpacing indicates a negative first-cue offset or cue spacing.
	ErrInvalidSpacing = errors.New("cue spacing out of range")

	// ErrInvalidAnalysis indicates an analysis tuning value outside its valid range.
	ErrInvalidAnalysis = errors.New("analysis setting out of range")

	// ErrInvalidWorkers indicates a batch worker count outside the valid range.
	ErrInvalidWorkers = errors.New("worker count out of range")

	// ErrInvalidOutput indicates an unknown output format name.
	ErrInvalidOutput = errors.New("invalid output format")
)
