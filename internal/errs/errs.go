// Package errs holds the error taxonomy shared by the remote store, the local cache and the
// reconciliation engine. Callers classify failures with errors.As.
package errs

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned by mutations issued before the first successful load or during a reload.
var ErrNotReady = errors.New("data is not loaded yet")

// AuthError missing or rejected credential
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
	}
	return "auth: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// RemoteError transport failure or non-2xx response from the remote store.
// StatusCode is 0 for transport failures.
type RemoteError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("remote error %d: %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("remote error: %s: %v", e.Message, e.Err)
	default:
		return "remote error: " + e.Message
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// CorruptDataError remote document exists but its content cannot be used
type CorruptDataError struct {
	Reason string
	Err    error
}

func (e *CorruptDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt data: %s: %v", e.Reason, e.Err)
	}
	return "corrupt data: " + e.Reason
}

func (e *CorruptDataError) Unwrap() error { return e.Err }

// NotFoundError referenced record or document is absent
type NotFoundError struct {
	Kind string // participant, competition, gist ...
	ID   string
	Err  error
}

func (e *NotFoundError) Error() string {
	msg := e.Kind + " not found"
	if e.ID != "" {
		msg = fmt.Sprintf("%s %q not found", e.Kind, e.ID)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ValidationError a required field is missing or a value is out of range
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFound shorthand for &NotFoundError{Kind: kind, ID: id}
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// Invalid shorthand for &ValidationError{Field: field, Reason: reason}
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsRemote(err error) bool {
	var target *RemoteError
	return errors.As(err, &target)
}

func IsCorrupt(err error) bool {
	var target *CorruptDataError
	return errors.As(err, &target)
}
