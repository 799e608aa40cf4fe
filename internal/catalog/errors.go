package catalog

import (
	"errors"
	"fmt"
)

// ErrWritesDisabled is returned by backends that cannot persist changes in the
// running deployment.
var ErrWritesDisabled = errors.New("catalog writes are disabled in this deployment; use catalogctl against a checkout and commit the data directory")

// ValidationError reports bad or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports an unknown app id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("app %q not found", e.ID)
}

// StorageError wraps a local filesystem failure.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RemoteWriteError reports a rejected commit to the remote store. Message
// carries the remote store's diagnostic text.
type RemoteWriteError struct {
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *RemoteWriteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("remote write %s failed (status %d): %s", e.Path, e.Status, msg)
	}
	return fmt.Sprintf("remote write %s failed: %s", e.Path, msg)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// RemoteConflictError reports that the remote object changed since its content
// hash was fetched.
type RemoteConflictError struct {
	Path    string
	Message string
}

func (e *RemoteConflictError) Error() string {
	return fmt.Sprintf("remote write %s conflicted: %s", e.Path, e.Message)
}

// PartialWriteError reports a multi-step mutation that failed after an earlier
// step was already persisted. Nothing is rolled back.
type PartialWriteError struct {
	Applied string
	Failed  string
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s succeeded but %s failed: %v", e.Applied, e.Failed, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
