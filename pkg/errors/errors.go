package errors

import (
	goerrors "errors"
	"fmt"
)

// New creates a basic error from a message.
func New(msg string) error {
	return goerrors.New(msg)
}

// As is a re-export of the standard library's errors.As.
func As(err error, target interface{}) bool {
	return goerrors.As(err, target)
}

// ContextError annotates an error with what we were doing when it occurred.
type ContextError struct {
	Context string
	Err     error
}

func (err ContextError) Error() string {
	return fmt.Sprintf("%s: %s", err.Context, err.Err)
}

func (err ContextError) Unwrap() error {
	return err.Err
}

// WithContext wraps err with a short description of the operation that
// failed. Returns nil when err is nil so callers can wrap unconditionally.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return ContextError{Context: context, Err: err}
}

// FriendlyError is an error with a message meant to be shown directly to the
// user, without any wrapping context.
type FriendlyError struct {
	Message string
}

func (err FriendlyError) Error() string {
	return err.Message
}

func (err FriendlyError) FriendlyMessage() string {
	return err.Message
}

// NewFriendlyError creates a FriendlyError from a format string.
func NewFriendlyError(format string, args ...interface{}) error {
	return FriendlyError{Message: fmt.Sprintf(format, args...)}
}

// friendlier is implemented by errors that have a user-facing message.
type friendlier interface {
	FriendlyMessage() string
}

// GetPrintableMessage returns the message that should be shown to the user
// for err. If any error in the chain has a friendly message, that message is
// used. Otherwise it falls back to the default error string.
func GetPrintableMessage(err error) string {
	for cur := err; cur != nil; cur = goerrors.Unwrap(cur) {
		if friendly, ok := cur.(friendlier); ok {
			return friendly.FriendlyMessage()
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
