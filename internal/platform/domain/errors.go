package domain

import (
	"errors"
	"fmt"
)

// Sentinel categories. Every typed error below matches exactly one of them with errors.Is,
// which is what the HTTP layer switches on.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrForbidden        = errors.New("forbidden")
	ErrUnavailable      = errors.New("dependency unavailable")
	ErrPayment          = errors.New("payment failed")
	ErrPaymentRequired  = errors.New("payment must be confirmed before submission")
	ErrSessionAbandoned = errors.New("wizard session was abandoned")
	ErrUpstream         = errors.New("upstream rejected the request")
)

// ValidationError reports invalid input. Fields is keyed by field name and is empty for
// errors that are not tied to a single field.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// NewValidationError creates a ValidationError with a single message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NewFieldValidationError creates a ValidationError carrying per-field messages.
func NewFieldValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Message: "one or more fields are invalid", Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d fields)", e.Message, len(e.Fields))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError creates a NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a write that lost against a concurrent modification.
type ConflictError struct {
	Message string
}

// NewConflictError creates a ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// InvalidStateError reports an operation that the current state does not permit.
type InvalidStateError struct {
	From    string
	To      string
	Message string
}

// NewInvalidStateError creates an InvalidStateError for a rejected transition.
func NewInvalidStateError(from, to string) *InvalidStateError {
	return &InvalidStateError{
		From:    from,
		To:      to,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewInvalidOperationError creates an InvalidStateError for an action rejected in state.
func NewInvalidOperationError(state, message string) *InvalidStateError {
	return &InvalidStateError{From: state, Message: message}
}

func (e *InvalidStateError) Error() string { return e.Message }

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// ForbiddenError reports access to a resource owned by someone else.
type ForbiddenError struct {
	Message string
}

// NewForbiddenError creates a ForbiddenError.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func (e *ForbiddenError) Error() string { return e.Message }

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// FetchError reports that a lookup against a collaborator failed. The cause is kept for
// logging; only Error() is ever shown to a user.
type FetchError struct {
	Resource string
	Err      error
}

// NewFetchError wraps a lookup failure for the named resource.
func NewFetchError(resource string, err error) *FetchError {
	return &FetchError{Resource: resource, Err: err}
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not load %s, please retry", e.Resource)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrUnavailable }

// PaymentError reports a declined or failed charge.
type PaymentError struct {
	Code   string
	Reason string
}

// NewPaymentError creates a PaymentError.
func NewPaymentError(code, reason string) *PaymentError {
	return &PaymentError{Code: code, Reason: reason}
}

func (e *PaymentError) Error() string {
	if e.Reason == "" {
		return "payment failed"
	}
	return "payment failed: " + e.Reason
}

func (e *PaymentError) Is(target error) bool { return target == ErrPayment }

// SubmissionKind distinguishes server-side validation rejections from other failures.
type SubmissionKind string

const (
	SubmissionValidation SubmissionKind = "validation"
	SubmissionServer     SubmissionKind = "server"
)

// SubmissionError reports a failed create-event call. Message is the collaborator's own
// message and is surfaced verbatim.
type SubmissionError struct {
	Kind    SubmissionKind
	Message string
	Err     error
}

// NewSubmissionError creates a SubmissionError.
func NewSubmissionError(kind SubmissionKind, message string, err error) *SubmissionError {
	return &SubmissionError{Kind: kind, Message: message, Err: err}
}

func (e *SubmissionError) Error() string { return e.Message }

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool {
	if e.Kind == SubmissionValidation {
		return target == ErrValidation
	}
	return target == ErrUpstream
}
