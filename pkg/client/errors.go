package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrInvalidBaseURL is returned by New when the base URL is missing or not absolute.
	ErrInvalidBaseURL = errors.New("invalid base url")
)

// ErrorClass represents a classification of transport failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors (other than 408).
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassTimeout represents 408 responses and expired deadlines.
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassNetwork represents connection level failures.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError represents a non-success response from the users API.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("users api %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("users api %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus categorizes a response status. Successful statuses have no class.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusRequestTimeout:
		return ErrorClassTimeout
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// classifyError categorizes a transport error.
func classifyError(err error) ErrorClass {
	if IsTimeout(err) {
		return ErrorClassTimeout
	}
	return ErrorClassNetwork
}

// IsTimeout reports whether err was caused by an expired deadline, either the
// client timeout or a deadline on the caller's context.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// shouldRetry determines if an error class is transient.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassTimeout, ErrorClassNetwork:
		return true
	default:
		// 4xx errors are permanent, retrying them only repeats the answer
		return false
	}
}
