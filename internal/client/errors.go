// ABOUTME: Failure classification for banking API calls
// ABOUTME: Separates server-side rejection from transport-level unreachability

package client

import (
	"errors"
	"fmt"
)

// RejectedError means the backend responded but refused the request:
// bad credentials, expired token, validation failure, insufficient funds.
// Retrying without changing the request will not help.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request rejected (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request rejected (status %d)", e.Status)
}

// UnreachableError means no usable response arrived: connection refused,
// timeout, or a malformed body on a success status. Safe to retry.
type UnreachableError struct {
	Op  string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// IsRejected reports whether err is a semantic refusal from the backend.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// IsUnreachable reports whether err is a transport-level failure.
func IsUnreachable(err error) bool {
	var ue *UnreachableError
	return errors.As(err, &ue)
}
