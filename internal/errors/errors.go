// Package errors defines the failure taxonomy shared by the scene patcher.
// Every error that reaches a command boundary carries a Kind, the step that
// produced it and the identifier it was working on, so a diagnostic can be
// read without re-running the patch.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a patch failure
type Kind string

const (
	// ConfigMissing indicates a required setting or input is absent
	ConfigMissing Kind = "config_missing"
	// ResolutionFailure indicates a UUID, file or name lookup found nothing
	ResolutionFailure Kind = "resolution_failure"
	// ParseError indicates malformed serialized input
	ParseError Kind = "parse_error"
	// AnchorNotFound indicates a structural precondition on the graph failed
	AnchorNotFound Kind = "anchor_not_found"
	// RangeError indicates an externally supplied index is out of bounds
	RangeError Kind = "range_error"
	// IOFailure indicates a file could not be read or written
	IOFailure Kind = "io_failure"
)

// Title returns the upper-case header used when rendering the kind
func (k Kind) Title() string {
	return strings.ToUpper(strings.ReplaceAll(string(k), "_", " "))
}

// Error is a classified patch failure
type Error struct {
	// Kind is the failure category
	Kind Kind
	// Step names the pipeline step that failed (optional)
	Step string
	// Subject is the identifier being processed (UUID, path, node name...)
	Subject string
	// Err is the underlying cause
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	if e.Step != "" {
		b.WriteString(e.Step)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Subject != "" {
		fmt.Fprintf(&b, ": %s", e.Subject)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// AtStep records the step that produced the error. The first step recorded
// wins so that nested helpers do not mask the orchestrator's step name.
func (e *Error) AtStep(step string) *Error {
	if e.Step == "" {
		e.Step = step
	}
	return e
}

// New creates a classified error with a formatted detail message
func New(kind Kind, subject, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Subject: subject,
		Err:     fmt.Errorf(format, args...),
	}
}

// Wrap classifies an existing error
func Wrap(kind Kind, subject string, err error) *Error {
	return &Error{
		Kind:    kind,
		Subject: subject,
		Err:     err,
	}
}

// WithStep attaches a step to err. Unclassified errors are wrapped as IOFailure.
func WithStep(err error, step string) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if stderrors.As(err, &pe) {
		pe.AtStep(step)
		return err
	}
	return (&Error{Kind: IOFailure, Err: err}).AtStep(step)
}

// KindOf returns the kind of err, or "" when err is not classified
func KindOf(err error) Kind {
	var pe *Error
	if stderrors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// StepOf returns the step recorded on err, or ""
func StepOf(err error) string {
	var pe *Error
	if stderrors.As(err, &pe) {
		return pe.Step
	}
	return ""
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
