package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuth indicates the access token could not be acquired.
	// It is fatal and aborts the run.
	ErrAuth = errors.New("authentication failed")

	// ErrHeadingNotFound indicates the region marker heading is missing.
	// Classification is skipped for that resource.
	ErrHeadingNotFound = errors.New("heading not found")

	// ErrRemoteMutation indicates a single remote mutation call failed.
	ErrRemoteMutation = errors.New("remote mutation failed")

	// ErrLocalArtifactMissing indicates neither today's notice nor a
	// template for it exists. Delivery is skipped.
	ErrLocalArtifactMissing = errors.New("local notice artifact missing")

	// ErrAnchorNotFound indicates the notice has no paragraph matching the
	// configured heading. Delivery fails closed.
	ErrAnchorNotFound = errors.New("notice anchor not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrResourceDisabled indicates the requested resource is not configured.
	ErrResourceDisabled = errors.New("resource disabled")
)

// HeadingNotFoundError reports the marker that could not be located.
type HeadingNotFoundError struct {
	Heading string
}

func (e *HeadingNotFoundError) Error() string {
	return fmt.Sprintf("heading %q not found", e.Heading)
}

// Is matches ErrHeadingNotFound.
func (e *HeadingNotFoundError) Is(target error) bool {
	return target == ErrHeadingNotFound
}

// RemoteMutationError reports which remote call failed.
type RemoteMutationError struct {
	// Op is the operation name, e.g. "delete", "update", "resolve".
	Op string

	// Target is the position or identifier the call addressed.
	Target string

	Err error
}

func (e *RemoteMutationError) Error() string {
	return fmt.Sprintf("remote %s %s: %v", e.Op, e.Target, e.Err)
}

// Is matches ErrRemoteMutation.
func (e *RemoteMutationError) Is(target error) bool {
	return target == ErrRemoteMutation
}

func (e *RemoteMutationError) Unwrap() error {
	return e.Err
}

// IsSkip reports whether err only skips one resource for this run.
func IsSkip(err error) bool {
	return errors.Is(err, ErrHeadingNotFound) ||
		errors.Is(err, ErrLocalArtifactMissing) ||
		errors.Is(err, ErrAnchorNotFound)
}
