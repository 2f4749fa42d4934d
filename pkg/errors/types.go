package errors

import (
	"fmt"
)

// ErrUnexpectedPaging is returned when a single-item endpoint responds with
// pagination headers. This only happens when the server speaks a newer
// version of the API than this client understands.
var ErrUnexpectedPaging = NewFriendlyError(
	"Received unexpected paging data in a single item response.\n" +
		"This may be due to an incompatible Data Service API change.\n" +
		"Try upgrading dsclient.")

// MissingFieldError represents a missing required field.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", err.Field)
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// ServiceError is a failed response from the Data Service API. It carries
// enough information for the caller to decide whether the request is worth
// retrying. The client layer never retries on its own.
type ServiceError struct {
	StatusCode  int
	URLSuffix   string
	Reason      string
	Suggestion  string
	RequestData interface{}
}

func (err ServiceError) Error() string {
	return fmt.Sprintf("error %d on %s Reason:%s Suggestion:%s",
		err.StatusCode, err.URLSuffix, err.Reason, err.Suggestion)
}

// UploadError aborts the upload of a single file. A file whose upload failed
// part way through must be re-sent from scratch with a fresh upload session.
type UploadError struct {
	Path       string
	StatusCode int
	Reason     string
}

func (err UploadError) Error() string {
	if err.StatusCode != 0 {
		return fmt.Sprintf("upload of %q failed: %s (status %d)",
			err.Path, err.Reason, err.StatusCode)
	}
	return fmt.Sprintf("upload of %q failed: %s", err.Path, err.Reason)
}

// UserNotFound represents a user lookup that matched nobody exactly.
type UserNotFound struct {
	FullName string
}

func (err UserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", err.FullName)
}

// MultipleUsers represents a user lookup that matched more than one user, so
// we can't safely pick one.
type MultipleUsers struct {
	FullName string
}

func (err MultipleUsers) Error() string {
	return fmt.Sprintf("multiple users with name: %s", err.FullName)
}

// UnknownKind represents a child listing entry whose kind field isn't one we
// understand. Treated as a schema mismatch rather than skipped.
type UnknownKind struct {
	Kind string
}

func (err UnknownKind) Error() string {
	return fmt.Sprintf("unknown child kind %q", err.Kind)
}
