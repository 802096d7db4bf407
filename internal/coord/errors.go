package coord

import (
	"errors"
	"fmt"

	"github.com/splitmind/a2amcp/internal/domain"
)

var (
	// ErrAgentNotFound is returned when an operation names a session that is
	// not registered in the project.
	ErrAgentNotFound = errors.New("agent not registered")

	// ErrNotLocked is returned when releasing a file that holds no lock.
	ErrNotLocked = errors.New("file not locked")

	// ErrTodoNotFound is returned when updating a todo that does not exist.
	ErrTodoNotFound = errors.New("todo not found")

	// ErrInterfaceNotFound is returned when querying an unregistered interface.
	ErrInterfaceNotFound = errors.New("interface not found")

	// ErrTimeout is returned when a query waits past its deadline without a
	// response arriving.
	ErrTimeout = errors.New("no response received")
)

// ConflictError reports a file lock held by another session.
type ConflictError struct {
	FilePath string
	Lock     domain.FileLock
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("file %s is locked by %s", e.FilePath, e.Lock.Session)
}

// NotOwnerError reports an attempt to release a lock owned by another session.
type NotOwnerError struct {
	FilePath string
	Holder   string
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("file %s is locked by %s, not you", e.FilePath, e.Holder)
}

// UnknownRecipientError reports a message addressed to a session that is not
// registered in the project.
type UnknownRecipientError struct {
	Session   string
	ProjectID string
}

func (e *UnknownRecipientError) Error() string {
	return fmt.Sprintf("agent %s not found in project %s", e.Session, e.ProjectID)
}
