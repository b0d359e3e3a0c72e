package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/client"
)

// ErrNotFound matches every NotFoundError via errors.Is.
var ErrNotFound = errors.New("user not found")

// NotFoundError is returned by FetchUserByID when the API answers 404.
type NotFoundError struct {
	ID int
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %d not found", e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Failures absorbed inside the service. They never reach callers.
var (
	errPageNotFound     = errors.New("users page not found")
	errUnexpectedStatus = errors.New("unexpected status")
	errDecode           = errors.New("decode response")
)

// failureKind names a transport failure for logs.
func failureKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case client.IsTimeout(err):
		return "timeout"
	default:
		return "network"
	}
}
