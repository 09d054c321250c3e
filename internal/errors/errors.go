// Package errors provides structured error types for cue point operations.
//
// Callers branch on the Kind of a CoreError: an input error means the locator or
// media will never work with the chosen backend, an analysis failure means the probe,
// decode or remote call failed and may succeed on retry or on another backend.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindInput represents a bad locator, scheme, or unsupported media.
	KindInput ErrorKind = iota
	// KindAnalysis represents a failed probe or remote call, or a missing stream.
	KindAnalysis
	// KindCommand represents an external tool that failed to run.
	KindCommand
	// KindFFprobeParse represents unreadable ffprobe output.
	KindFFprobeParse
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindNoFilesFound represents a batch directory with no videos.
	KindNoFilesFound
	// KindCancelled represents work abandoned after cancellation.
	KindCancelled
)

var kindNames = [...]string{
	KindInput:        "Input error",
	KindAnalysis:     "Analysis failure",
	KindCommand:      "Command error",
	KindFFprobeParse: "FFprobe parse error",
	KindConfig:       "Configuration error",
	KindNoFilesFound: "No files found",
	KindCancelled:    "Operation cancelled",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown error"
	}
	return kindNames[k]
}

// CommandError describes an ffmpeg or ffprobe invocation that did not succeed.
// ExitCode is -1 when the process never started.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	switch {
	case e.ExitCode < 0:
		return fmt.Sprintf("%s could not be started: %v", e.Command, e.Err)
	case e.Stderr != "":
		return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitCode, e.Stderr)
	default:
		return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Started reports whether the process ran at all.
func (e *CommandError) Started() bool {
	return e.ExitCode >= 0
}

// CoreError is the error type returned across package boundaries.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Underlying == nil {
		return e.Kind.String() + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is matches any *CoreError of the same kind, so errors.Is(err, &CoreError{Kind: k})
// works as a kind test.
func (e *CoreError) Is(target error) bool {
	var t *CoreError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, message string, underlying error) *CoreError {
	return &CoreError{Kind: kind, Message: message, Underlying: underlying}
}

// NewInputError reports a locator or media the analyzers cannot accept.
func NewInputError(message string) *CoreError {
	return newError(KindInput, message, nil)
}

// NewAnalysisError reports a failed analysis step.
func NewAnalysisError(message string, underlying error) *CoreError {
	return newError(KindAnalysis, message, underlying)
}

// NewCommandError wraps a CommandError.
func NewCommandError(cmdErr *CommandError) *CoreError {
	return newError(KindCommand, cmdErr.Error(), cmdErr)
}

// NewFFprobeParseError reports ffprobe output that could not be decoded.
func NewFFprobeParseError(message string, underlying error) *CoreError {
	return newError(KindFFprobeParse, message, underlying)
}

// NewConfigError reports an unreadable or invalid configuration.
func NewConfigError(message string, underlying error) *CoreError {
	return newError(KindConfig, message, underlying)
}

// NewNoFilesFoundError reports a directory without video files.
func NewNoFilesFoundError(dir string) *CoreError {
	return newError(KindNoFilesFound, "no video files found in "+dir, nil)
}

// NewCancelledError reports work abandoned after cancellation.
func NewCancelledError() *CoreError {
	return newError(KindCancelled, "operation was cancelled", nil)
}

// IsKind reports whether err wraps a CoreError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	return errors.As(err, &coreErr) && coreErr.Kind == kind
}

// IsInput reports whether err is an input error.
func IsInput(err error) bool {
	return IsKind(err, KindInput)
}

// IsAnalysis reports whether err is an analysis failure. Tool and probe output
// failures count as analysis failures from the caller's point of view.
func IsAnalysis(err error) bool {
	return IsKind(err, KindAnalysis) || IsKind(err, KindCommand) || IsKind(err, KindFFprobeParse)
}

func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

func IsNoFilesFound(err error) bool {
	return IsKind(err, KindNoFilesFound)
}

// WrapExecError converts an error from exec.Cmd into a command error, keeping the
// exit status when the process ran.
func WrapExecError(cmd string, err error, stderr string) *CoreError {
	cmdErr := &CommandError{Command: cmd, ExitCode: -1, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
		cmdErr.Stderr = stderr
	}
	return NewCommandError(cmdErr)
}
