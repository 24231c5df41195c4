// Common service-level error values. Handlers translate these into HTTP
// status codes and user-facing messages; within the service layer they are
// wrapped with fmt.Errorf("...: %w", err) and checked with errors.Is.
package service

import "errors"

var (
	// ErrNotFound indicates the entity does not exist or is not owned by
	// the caller. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation is not applicable to
	// the post's current status (e.g. rescheduling a published post).
	ErrInvalidState = errors.New("invalid state for this operation")

	// ErrIllegalTransition is returned when a requested status change has
	// no edge in the lifecycle graph, or a concurrent writer already moved
	// the post elsewhere.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrInvalidInput covers malformed caller input: unparseable dates,
	// empty target lists, empty content.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCredentialUnavailable means no usable token exists for a target's
	// account (inactive account or expired credential).
	ErrCredentialUnavailable = errors.New("credential unavailable")

	// ErrRateLimited means the admission gate rejected the call.
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout means a platform call exceeded its per-attempt deadline.
	ErrTimeout = errors.New("publish attempt timed out")

	// ErrConnectorFailure wraps a downstream platform error.
	ErrConnectorFailure = errors.New("connector failure")

	// ErrInvalidProtocol guards short-link redirects against non-http(s)
	// destination schemes.
	ErrInvalidProtocol = errors.New("destination scheme must be http or https")
)
